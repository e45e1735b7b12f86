package pricing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ErrMalformedCatalog is returned when the catalog lacks products or on-demand terms.
var ErrMalformedCatalog = errors.New("malformed pricing catalog")

// Splitter breaks the full catalog into a SKU index and a terms index so
// later lookups stream far less data.
type Splitter struct {
	logger zerolog.Logger
}

// NewSplitter returns a Splitter.
func NewSplitter(logger zerolog.Logger) *Splitter {
	return &Splitter{logger: logger}
}

// Split writes the catalog's "products" object to skuPath and its
// "terms.OnDemand" object to termsPath. It does nothing when both outputs
// already exist, so the expensive parse is paid once per catalog.
func (s *Splitter) Split(fullPath, skuPath, termsPath string) error {
	if fileExists(skuPath) && fileExists(termsPath) {
		return nil
	}

	start := time.Now()
	s.logger.Debug().Str("catalog", fullPath).Msg("splitting AWS pricing file")

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	var doc catalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", fullPath, err)
	}
	if isAbsent(doc.Products) {
		return fmt.Errorf("%w: missing products", ErrMalformedCatalog)
	}
	if isAbsent(doc.Terms.OnDemand) {
		return fmt.Errorf("%w: missing terms.OnDemand", ErrMalformedCatalog)
	}

	if err := writeRaw(skuPath, doc.Products); err != nil {
		return err
	}
	if err := writeRaw(termsPath, doc.Terms.OnDemand); err != nil {
		return err
	}

	s.logger.Debug().
		Str("offer_code", doc.OfferCode).
		Str("version", doc.Version).
		Str("publication_date", doc.PublicationDate).
		Int("products_bytes", len(doc.Products)).
		Int("terms_bytes", len(doc.Terms.OnDemand)).
		Dur("elapsed", time.Since(start)).
		Msg("split complete")
	return nil
}

func isAbsent(msg json.RawMessage) bool {
	trimmed := bytes.TrimSpace(msg)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func writeRaw(path string, data []byte) error {
	_, err := writeFileAtomic(path, func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	})
	return err
}
