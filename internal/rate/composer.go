package rate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// DefaultTimeUnit is used when neither the request nor the organization sets one.
const DefaultTimeUnit = "MONTH"

// ComposerOptions wires a Composer to its collaborators. Resolver is required.
type ComposerOptions struct {
	Resolver RateResolver
	Regions  RegionLocator
	Titles   LocationTitler
	Fallback FallbackRateSource
	// TimeUnit is the organization's billing time unit.
	TimeUnit string
}

// Composer builds itemized rates.
type Composer struct {
	resolver RateResolver
	regions  RegionLocator
	titles   LocationTitler
	fallback FallbackRateSource
	timeUnit string
	logger   zerolog.Logger
}

// NewComposer creates a Composer. Missing Regions and Fallback behave as if
// they know nothing; a missing Titles returns every region unknown.
func NewComposer(opts ComposerOptions, logger zerolog.Logger) *Composer {
	c := &Composer{
		resolver: opts.Resolver,
		regions:  opts.Regions,
		titles:   opts.Titles,
		fallback: opts.Fallback,
		timeUnit: opts.TimeUnit,
		logger:   logger.With().Str("component", "composer").Logger(),
	}
	if c.timeUnit == "" {
		c.timeUnit = DefaultTimeUnit
	}
	if c.regions == nil {
		c.regions = NewConfiguredRates(nil)
	}
	if c.fallback == nil {
		c.fallback = NewConfiguredRates(nil)
	}
	return c
}

// ComputeRate prices req. When the instance type, region, location title,
// time unit or hourly price cannot be determined a warning is logged and an
// empty rate is returned with a nil error. Errors from the catalog pipeline
// and the fallback source are returned.
func (c *Composer) ComputeRate(ctx context.Context, req Request) (ItemizedRate, error) {
	log := c.logger.With().
		Str("trace_id", uuid.NewString()).
		Str("environment", req.Environment).
		Logger()

	it := resolveInstanceType(req)
	instanceType, ok := it.Value()
	if !ok {
		log.Warn().Str("reason", it.Reason()).Msg("could not determine instance type, unable to calculate rate")
		return ItemizedRate{}, nil
	}
	log = log.With().Str("instance_type", instanceType).Logger()
	if family, _ := parseInstanceType(instanceType); family == "" {
		log.Warn().Msg("malformed instance type, unable to calculate rate")
		return ItemizedRate{}, nil
	}

	reg := c.resolveRegion(req)
	region, ok := reg.Value()
	if !ok {
		log.Warn().Str("reason", reg.Reason()).Msg("could not determine region, unable to calculate rate")
		return ItemizedRate{}, nil
	}
	log = log.With().Str("region", region).Logger()

	if c.titles == nil {
		log.Warn().Msg("no location titles available, unable to calculate rate")
		return ItemizedRate{}, nil
	}
	title := c.titles(region)
	location, ok := title.Value()
	if !ok {
		log.Warn().Str("reason", title.Reason()).Msg("unknown region location, unable to calculate rate")
		return ItemizedRate{}, nil
	}

	unit := req.TimeUnit
	if unit == "" {
		unit = c.timeUnit
	}
	hours, ok := HoursPer(unit)
	if !ok {
		log.Warn().Str("time_unit", unit).Msg("unknown rate time unit, unable to calculate rate")
		return ItemizedRate{}, nil
	}

	hourly, err := c.resolver.HourlyRate(ctx, region, location, instanceType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hourly rate for %s in %s: %w", instanceType, region, err)
	}
	price, ok := hourly.Value()
	if !ok {
		log.Warn().Str("reason", hourly.Reason()).Msg("no hourly rate found, unable to calculate rate")
		return ItemizedRate{}, nil
	}

	qty := effectiveQuantity(req.Quantity)
	hardware := price.Mul(decimal.NewFromInt(hours)).Mul(decimal.NewFromInt(qty))

	defaults, err := c.fallback.DefaultRate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to compute default rate: %w", err)
	}

	result := ItemizedRate{
		Hardware: hardware,
		Software: defaults[Software],
		Extra:    defaults[Extra],
	}

	log.Debug().
		Str("hourly", price.String()).
		Str("time_unit", unit).
		Int64("quantity", qty).
		Str("hardware", hardware.String()).
		Msg("computed rate")
	return result, nil
}

// resolveRegion prefers the server record over the environment's region.
func (c *Composer) resolveRegion(req Request) lookup.Result[string] {
	if req.Server != nil && req.Server.RegionCode != "" {
		return lookup.Found(req.Server.RegionCode)
	}
	return c.regions.RegionFor(req.Environment)
}

func effectiveQuantity(q int64) int64 {
	if q < 1 {
		return 1
	}
	return q
}
