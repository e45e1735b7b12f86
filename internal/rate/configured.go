package rate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// EnvironmentRates holds what the organization configured for one environment.
// Software and Extra are per server per billing time unit.
type EnvironmentRates struct {
	Region   string
	Software decimal.Decimal
	Extra    decimal.Decimal
}

// ConfiguredRates serves environment regions and the configured software and
// extra charges. It implements RegionLocator and FallbackRateSource.
type ConfiguredRates struct {
	envs map[string]EnvironmentRates
}

// NewConfiguredRates copies envs.
func NewConfiguredRates(envs map[string]EnvironmentRates) *ConfiguredRates {
	c := &ConfiguredRates{envs: make(map[string]EnvironmentRates, len(envs))}
	for name, r := range envs {
		c.envs[name] = r
	}
	return c
}

// RegionFor implements RegionLocator.
func (c *ConfiguredRates) RegionFor(environment string) lookup.Result[string] {
	env, ok := c.envs[environment]
	if !ok {
		return lookup.NotFound[string](fmt.Sprintf("environment %q is not configured", environment))
	}
	if env.Region == "" {
		return lookup.NotFound[string](fmt.Sprintf("environment %q has no region", environment))
	}
	return lookup.Found(env.Region)
}

// DefaultRate implements FallbackRateSource. Unconfigured environments
// contribute nothing; amounts are scaled by quantity.
func (c *ConfiguredRates) DefaultRate(_ context.Context, req Request) (ItemizedRate, error) {
	env, ok := c.envs[req.Environment]
	if !ok {
		return ItemizedRate{}, nil
	}
	qty := decimal.NewFromInt(effectiveQuantity(req.Quantity))
	return ItemizedRate{
		Software: env.Software.Mul(qty),
		Extra:    env.Extra.Mul(qty),
	}, nil
}
