package pricing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/rshade/aws-rate-hook/internal/lookup"
	"github.com/rshade/aws-rate-hook/internal/progress"
	"github.com/rshade/aws-rate-hook/internal/ratecache"
)

// prepareKey collapses concurrent fetch/split work within one process.
const prepareKey = "prepare"

// ResolverOptions configures a Resolver. Zero values fall back to defaults.
type ResolverOptions struct {
	// DataDir holds the downloaded catalog and its split indexes.
	DataDir string
	// CatalogURL is the EC2 offer file; DefaultCatalogURL when empty.
	CatalogURL string
	// SlowLookupThreshold logs a warning for lookups slower than this. Zero disables it.
	SlowLookupThreshold time.Duration

	Fetcher  *Fetcher
	Splitter *Splitter
	Cache    *ratecache.RateCache
	Progress progress.Sink
}

// Resolver turns a region and instance type into an on-demand hourly price,
// downloading and splitting the catalog on first use and caching every
// price it finds.
type Resolver struct {
	dataDir    string
	catalogURL string
	slow       time.Duration

	fetcher  *Fetcher
	splitter *Splitter
	cache    *ratecache.RateCache
	progress progress.Sink
	logger   zerolog.Logger

	group singleflight.Group
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions, logger zerolog.Logger) *Resolver {
	r := &Resolver{
		dataDir:    opts.DataDir,
		catalogURL: opts.CatalogURL,
		slow:       opts.SlowLookupThreshold,
		fetcher:    opts.Fetcher,
		splitter:   opts.Splitter,
		cache:      opts.Cache,
		progress:   opts.Progress,
		logger:     logger.With().Str("component", "resolver").Logger(),
	}
	if r.catalogURL == "" {
		r.catalogURL = DefaultCatalogURL
	}
	if r.fetcher == nil {
		r.fetcher = NewFetcher(nil, 0, logger)
	}
	if r.splitter == nil {
		r.splitter = NewSplitter(logger)
	}
	if r.cache == nil {
		r.cache = ratecache.New(ratecache.NewMemoryCache(), logger, nil)
	}
	if r.progress == nil {
		r.progress = progress.Discard
	}
	return r
}

// Paths returns the locations of the full catalog and the two split indexes.
func (r *Resolver) Paths() (full, skuIndex, termsIndex string) {
	return filepath.Join(r.dataDir, FullCatalogFile),
		filepath.Join(r.dataDir, SKUIndexFile),
		filepath.Join(r.dataDir, TermsIndexFile)
}

// Prepare makes sure the catalog is on disk and split. Concurrent callers
// share a single download and split. The shared work is not tied to any one
// caller's context; a cancelled caller stops waiting while the others still
// receive the result. The fetcher's own timeout bounds the download.
func (r *Resolver) Prepare(ctx context.Context) error {
	ch := r.group.DoChan(prepareKey, func() (any, error) {
		return nil, r.prepare(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Resolver) prepare(ctx context.Context) error {
	full, skuPath, termsPath := r.Paths()

	if !fileExists(full) {
		r.progress.Status("Downloading AWS pricing file")
	}
	if err := r.fetcher.EnsureLocalCopy(ctx, r.catalogURL, full); err != nil {
		return fmt.Errorf("failed to fetch pricing catalog: %w", err)
	}

	if !fileExists(skuPath) || !fileExists(termsPath) {
		r.progress.Status("Splitting AWS pricing file")
	}
	if err := r.splitter.Split(full, skuPath, termsPath); err != nil {
		return fmt.Errorf("failed to split pricing catalog: %w", err)
	}
	return nil
}

// LookupSKU prepares the catalog and returns the SKU for an instance type at
// a location title.
func (r *Resolver) LookupSKU(ctx context.Context, location, instanceType string) (lookup.Result[string], error) {
	if err := r.Prepare(ctx); err != nil {
		return lookup.Result[string]{}, err
	}
	_, skuPath, _ := r.Paths()
	progress.Statusf(r.progress, "Looking up SKU for %s in %s", instanceType, location)
	return FindSKU(ctx, location, instanceType, skuPath)
}

// HourlyRate returns the on-demand USD hourly price for instanceType in the
// region. A cached price is returned without touching the catalog. Prices
// that cannot be found are reported as NotFound and are not cached.
func (r *Resolver) HourlyRate(ctx context.Context, regionCode, location, instanceType string) (lookup.Result[decimal.Decimal], error) {
	log := r.logger.With().
		Str("region", regionCode).
		Str("instance_type", instanceType).
		Logger()

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if r.slow > 0 && elapsed > r.slow {
			log.Warn().
				Dur("elapsed", elapsed).
				Msg("pricing lookup took too long")
		}
	}()

	if price, ok := r.cache.Get(regionCode, instanceType); ok {
		log.Debug().
			Str("rate", price.String()).
			Str("location", location).
			Msg("using cached rate")
		return lookup.Found(price), nil
	}

	sku, err := r.LookupSKU(ctx, location, instanceType)
	if err != nil {
		return lookup.Result[decimal.Decimal]{}, err
	}
	skuID, ok := sku.Value()
	if !ok {
		log.Warn().
			Str("location", location).
			Msg("no product SKU found in the AWS pricing file")
		return lookup.NotFound[decimal.Decimal](sku.Reason()), nil
	}
	log = log.With().Str("sku", skuID).Logger()

	_, _, termsPath := r.Paths()
	progress.Statusf(r.progress, "Looking up hourly price for SKU %s", skuID)
	text, err := FindPrice(ctx, skuID, termsPath)
	if err != nil {
		return lookup.Result[decimal.Decimal]{}, err
	}
	raw, ok := text.Value()
	if !ok {
		log.Warn().Msg("no on-demand price found for SKU")
		return lookup.NotFound[decimal.Decimal](text.Reason()), nil
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return lookup.Result[decimal.Decimal]{}, fmt.Errorf("%w: price %q for SKU %s: %v",
			ErrMalformedCatalog, raw, skuID, err)
	}

	log.Debug().Str("rate", price.String()).Msg("resolved hourly price")
	r.cache.Set(regionCode, instanceType, price)
	return lookup.Found(price), nil
}
