// Package rate composes itemized provisioning rates from the on-demand
// hardware price and per-environment software and extra charges.
package rate

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// Category names one line of an itemized rate.
type Category string

// Rate categories.
const (
	Hardware Category = "Hardware"
	Software Category = "Software"
	Extra    Category = "Extra"
)

// Categories lists every category in display order.
var Categories = []Category{Hardware, Software, Extra}

// ItemizedRate maps each category to its cost in USD for the billing time
// unit. An empty rate means the resource could not be priced; it is never a
// zero-cost item.
type ItemizedRate map[Category]decimal.Decimal

// Empty reports whether the rate could not be determined.
func (r ItemizedRate) Empty() bool {
	return len(r) == 0
}

// Total sums every category.
func (r ItemizedRate) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range r {
		total = total.Add(v)
	}
	return total
}

// ServerRecord holds the AWS details of an already provisioned server.
type ServerRecord struct {
	InstanceType string `json:"instance_type" yaml:"instance_type"`
	RegionCode   string `json:"region" yaml:"region"`
}

// FieldValue is one custom field value attached to an order.
type FieldValue struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

// PreconfigurationValueSet is a named bundle of field values chosen as a unit.
type PreconfigurationValueSet struct {
	Name   string       `json:"name" yaml:"name"`
	Values []FieldValue `json:"values" yaml:"values"`
}

// Request describes what to price.
type Request struct {
	// Environment is the deployment environment; it supplies the region when
	// Server does not and selects the configured software and extra rates.
	Environment       string                     `json:"environment" yaml:"environment"`
	Server            *ServerRecord              `json:"server,omitempty" yaml:"server,omitempty"`
	FieldValues       []FieldValue               `json:"field_values,omitempty" yaml:"field_values,omitempty"`
	Preconfigurations []PreconfigurationValueSet `json:"preconfigurations,omitempty" yaml:"preconfigurations,omitempty"`
	// TimeUnit is HOUR, DAY, WEEK, MONTH or YEAR. Empty uses the organization default.
	TimeUnit string `json:"time_unit,omitempty" yaml:"time_unit,omitempty"`
	// Quantity is the number of servers; values below one count as one.
	Quantity int64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// RateResolver returns the on-demand hourly price of an instance type.
type RateResolver interface {
	HourlyRate(ctx context.Context, regionCode, location, instanceType string) (lookup.Result[decimal.Decimal], error)
}

// RegionLocator finds the region an environment deploys into.
type RegionLocator interface {
	RegionFor(environment string) lookup.Result[string]
}

// LocationTitler converts a region code into the location title used by
// the pricing catalog.
type LocationTitler func(regionCode string) lookup.Result[string]

// FallbackRateSource supplies the Software and Extra figures for a request,
// already expressed in the request's billing time unit.
type FallbackRateSource interface {
	DefaultRate(ctx context.Context, req Request) (ItemizedRate, error)
}
