// Package server exposes rate composition over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rshade/aws-rate-hook/internal/rate"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	currencyUSD       = "USD"
)

// RateComputer prices a request.
type RateComputer interface {
	ComputeRate(ctx context.Context, req rate.Request) (rate.ItemizedRate, error)
}

// Options configures a Server.
type Options struct {
	Addr     string
	Composer RateComputer
	// TimeUnit is reported when a request does not name one.
	TimeUnit string
	// Gatherer backs /metrics; prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
}

// Server serves /rate, /healthz and /metrics.
type Server struct {
	addr     string
	composer RateComputer
	timeUnit string
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// New creates a Server.
func New(opts Options, logger zerolog.Logger) *Server {
	s := &Server{
		addr:     opts.Addr,
		composer: opts.Composer,
		timeUnit: opts.TimeUnit,
		gatherer: opts.Gatherer,
		logger:   logger.With().Str("component", "server").Logger(),
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.timeUnit == "" {
		s.timeUnit = rate.DefaultTimeUnit
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/rate", s.handleRate)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("starting rate server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("shutdown failed")
		return err
	}
	s.logger.Info().Msg("rate server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, s.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// rateResponse is the body of a successful /rate call. Priced is false when
// the rate could not be determined.
type rateResponse struct {
	Priced   bool              `json:"priced"`
	Currency string            `json:"currency"`
	TimeUnit string            `json:"time_unit"`
	Rate     map[string]string `json:"rate"`
	Total    string            `json:"total,omitempty"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, s.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseRateQuery(r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, err.Error())
		return
	}

	itemized, err := s.composer.ComputeRate(r.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Msg("rate computation failed")
		writeError(w, s.logger, http.StatusInternalServerError, "rate computation failed")
		return
	}

	resp := rateResponse{
		Priced:   !itemized.Empty(),
		Currency: currencyUSD,
		TimeUnit: strings.ToUpper(req.TimeUnit),
		Rate:     make(map[string]string, len(itemized)),
	}
	if resp.TimeUnit == "" {
		resp.TimeUnit = s.timeUnit
	}
	for category, amount := range itemized {
		resp.Rate[string(category)] = amount.String()
	}
	if resp.Priced {
		resp.Total = itemized.Total().String()
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

// parseRateQuery reads environment, instance_type, region, time_unit and
// quantity. region and instance_type together describe an existing server.
func parseRateQuery(r *http.Request) (rate.Request, error) {
	q := r.URL.Query()
	req := rate.Request{
		Environment: q.Get("environment"),
		TimeUnit:    q.Get("time_unit"),
	}

	if it := q.Get("instance_type"); it != "" {
		req.FieldValues = append(req.FieldValues, rate.FieldValue{Field: "instance_type", Value: it})
	}
	if region := q.Get("region"); region != "" {
		req.Server = &rate.ServerRecord{RegionCode: region, InstanceType: q.Get("instance_type")}
	}

	if raw := q.Get("quantity"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return rate.Request{}, errors.New("quantity must be an integer")
		}
		req.Quantity = n
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Error().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, msg string) {
	writeJSON(w, logger, status, map[string]string{"error": msg})
}
