package rate

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// stubResolver serves fixed hourly prices keyed by "region:instanceType".
type stubResolver struct {
	prices map[string]string
	err    error
	calls  []string
}

func (s *stubResolver) HourlyRate(_ context.Context, region, location, instanceType string) (lookup.Result[decimal.Decimal], error) {
	s.calls = append(s.calls, region+"|"+location+"|"+instanceType)
	if s.err != nil {
		return lookup.Result[decimal.Decimal]{}, s.err
	}
	p, ok := s.prices[region+":"+instanceType]
	if !ok {
		return lookup.NotFound[decimal.Decimal]("no price"), nil
	}
	return lookup.Found(decimal.RequireFromString(p)), nil
}

type failingFallback struct{}

func (failingFallback) DefaultRate(context.Context, Request) (ItemizedRate, error) {
	return nil, errors.New("rates backend down")
}

func titles(codes map[string]string) LocationTitler {
	return func(code string) lookup.Result[string] {
		if t, ok := codes[code]; ok {
			return lookup.Found(t)
		}
		return lookup.NotFound[string]("unknown region " + code)
	}
}

func newTestComposer(t *testing.T, res RateResolver, buf *bytes.Buffer) *Composer {
	t.Helper()
	envs := NewConfiguredRates(map[string]EnvironmentRates{
		"prod": {
			Region:   "us-west-2",
			Software: decimal.RequireFromString("5"),
			Extra:    decimal.RequireFromString("1.25"),
		},
		"lab": {Region: "xx-nowhere-1"},
	})
	return NewComposer(ComposerOptions{
		Resolver: res,
		Regions:  envs,
		Titles:   titles(map[string]string{"us-west-2": "US West (Oregon)", "us-east-1": "US East (N. Virginia)"}),
		Fallback: envs,
		TimeUnit: "MONTH",
	}, zerolog.New(buf))
}

func TestComposer_MonthTimesQuantity(t *testing.T) {
	res := &stubResolver{prices: map[string]string{"us-west-2:m5.large": "0.10"}}
	var buf bytes.Buffer
	c := newTestComposer(t, res, &buf)

	got, err := c.ComputeRate(context.Background(), Request{
		Environment: "prod",
		FieldValues: []FieldValue{{Field: "instance_type", Value: "m5.large"}},
		TimeUnit:    "MONTH",
		Quantity:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, "144.00", got[Hardware].StringFixed(2))
	assert.Equal(t, "10", got[Software].String())
	assert.Equal(t, "2.5", got[Extra].String())
	assert.Equal(t, "156.50", got.Total().StringFixed(2))
	assert.Equal(t, []string{"us-west-2|US West (Oregon)|m5.large"}, res.calls)
}

func TestComposer_DefaultsAndPriority(t *testing.T) {
	res := &stubResolver{prices: map[string]string{
		"us-west-2:t3.micro": "0.0104",
		"us-east-1:c5.large": "0.085",
	}}

	tests := []struct {
		name         string
		req          Request
		wantHardware string
	}{
		{
			name:         "organization time unit and single quantity",
			req:          Request{Environment: "prod", FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}}},
			wantHardware: "7.488",
		},
		{
			name:         "negative quantity counts as one",
			req:          Request{Environment: "prod", TimeUnit: "HOUR", Quantity: -3, FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}}},
			wantHardware: "0.0104",
		},
		{
			name: "server record overrides fields and environment region",
			req: Request{
				Environment: "prod",
				Server:      &ServerRecord{InstanceType: "c5.large", RegionCode: "us-east-1"},
				FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}},
				TimeUnit:    "DAY",
			},
			wantHardware: "2.04",
		},
		{
			name:         "week is 192 hours",
			req:          Request{Environment: "prod", TimeUnit: "WEEK", FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}}},
			wantHardware: "1.9968",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got, err := newTestComposer(t, res, &buf).ComputeRate(context.Background(), tt.req)
			require.NoError(t, err)
			require.False(t, got.Empty())
			assert.True(t, got[Hardware].Equal(decimal.RequireFromString(tt.wantHardware)),
				"hardware %s, want %s", got[Hardware], tt.wantHardware)
		})
	}
}

func TestComposer_EmptyRate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		warning string
	}{
		{
			name:    "no instance type",
			req:     Request{Environment: "prod"},
			warning: "could not determine instance type",
		},
		{
			name:    "malformed instance type",
			req:     Request{Environment: "prod", FieldValues: []FieldValue{{Field: "instance_type", Value: "large"}}},
			warning: "malformed instance type",
		},
		{
			name:    "no region",
			req:     Request{Environment: "qa", FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}}},
			warning: "could not determine region",
		},
		{
			name:    "unknown region title",
			req:     Request{Environment: "lab", FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}}},
			warning: "unknown region location",
		},
		{
			name:    "unknown time unit",
			req:     Request{Environment: "prod", TimeUnit: "FORTNIGHT", FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}}},
			warning: "unknown rate time unit",
		},
		{
			name:    "missing price",
			req:     Request{Environment: "prod", FieldValues: []FieldValue{{Field: "instance_type", Value: "x1.huge"}}},
			warning: "no hourly rate found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			res := &stubResolver{prices: map[string]string{"us-west-2:t3.micro": "0.0104"}}

			got, err := newTestComposer(t, res, &buf).ComputeRate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.True(t, got.Empty(), "an unpriceable request is empty, not zero")
			assert.NotNil(t, got)
			assert.Contains(t, buf.String(), tt.warning)
			assert.Contains(t, buf.String(), `"level":"warn"`)
			assert.Contains(t, buf.String(), `"trace_id":`)
		})
	}
}

func TestComposer_Errors(t *testing.T) {
	req := Request{Environment: "prod", FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}}}

	t.Run("resolver error", func(t *testing.T) {
		var buf bytes.Buffer
		boom := errors.New("disk full")
		_, err := newTestComposer(t, &stubResolver{err: boom}, &buf).ComputeRate(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("fallback error", func(t *testing.T) {
		res := &stubResolver{prices: map[string]string{"us-west-2:t3.micro": "0.0104"}}
		c := NewComposer(ComposerOptions{
			Resolver: res,
			Regions:  NewConfiguredRates(map[string]EnvironmentRates{"prod": {Region: "us-west-2"}}),
			Titles:   titles(map[string]string{"us-west-2": "US West (Oregon)"}),
			Fallback: failingFallback{},
		}, zerolog.Nop())

		_, err := c.ComputeRate(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rates backend down")
	})
}

func TestComposer_MissingFallbackCategories(t *testing.T) {
	res := &stubResolver{prices: map[string]string{"us-west-2:t3.micro": "0.5"}}
	c := NewComposer(ComposerOptions{
		Resolver: res,
		Regions:  NewConfiguredRates(map[string]EnvironmentRates{"prod": {Region: "us-west-2"}}),
		Titles:   titles(map[string]string{"us-west-2": "US West (Oregon)"}),
		TimeUnit: "HOUR",
	}, zerolog.Nop())

	got, err := c.ComputeRate(context.Background(), Request{
		Environment: "prod",
		FieldValues: []FieldValue{{Field: "instance_type", Value: "t3.micro"}},
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.True(t, got[Software].IsZero())
	assert.True(t, got[Extra].IsZero())
	assert.Equal(t, "0.5", got[Hardware].String())
}

func TestItemizedRate(t *testing.T) {
	assert.True(t, ItemizedRate{}.Empty())
	assert.True(t, ItemizedRate(nil).Empty())
	r := ItemizedRate{Hardware: decimal.RequireFromString("1.5"), Extra: decimal.RequireFromString("0.25")}
	assert.False(t, r.Empty())
	assert.Equal(t, "1.75", r.Total().String())
}
