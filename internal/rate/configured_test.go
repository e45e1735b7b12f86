package rate

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguredRates_RegionFor(t *testing.T) {
	c := NewConfiguredRates(map[string]EnvironmentRates{
		"prod":    {Region: "us-west-2"},
		"sandbox": {},
	})

	got := c.RegionFor("prod")
	region, ok := got.Value()
	require.True(t, ok)
	assert.Equal(t, "us-west-2", region)

	assert.Contains(t, c.RegionFor("sandbox").Reason(), "has no region")
	assert.Contains(t, c.RegionFor("qa").Reason(), "not configured")
}

func TestConfiguredRates_DefaultRate(t *testing.T) {
	c := NewConfiguredRates(map[string]EnvironmentRates{
		"prod": {
			Region:   "us-west-2",
			Software: decimal.RequireFromString("12.50"),
			Extra:    decimal.RequireFromString("3"),
		},
	})

	tests := []struct {
		name         string
		req          Request
		wantSoftware string
		wantExtra    string
	}{
		{name: "single server", req: Request{Environment: "prod", Quantity: 1}, wantSoftware: "12.5", wantExtra: "3"},
		{name: "scaled by quantity", req: Request{Environment: "prod", Quantity: 4}, wantSoftware: "50", wantExtra: "12"},
		{name: "zero quantity counts as one", req: Request{Environment: "prod"}, wantSoftware: "12.5", wantExtra: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.DefaultRate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSoftware, got[Software].String())
			assert.Equal(t, tt.wantExtra, got[Extra].String())
			assert.NotContains(t, got, Hardware)
		})
	}

	got, err := c.DefaultRate(context.Background(), Request{Environment: "qa"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewConfiguredRates_Copies(t *testing.T) {
	envs := map[string]EnvironmentRates{"prod": {Region: "us-west-2"}}
	c := NewConfiguredRates(envs)
	envs["prod"] = EnvironmentRates{Region: "eu-west-1"}

	region, _ := c.RegionFor("prod").Value()
	assert.Equal(t, "us-west-2", region)
}
