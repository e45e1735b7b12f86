package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/aws-rate-hook/internal/rate"
)

// Output formats for the rate command.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type rateFlags struct {
	environment  string
	instanceType string
	region       string
	timeUnit     string
	quantity     int64
	output       string
}

// rateReport is what the rate command prints in json and yaml form.
type rateReport struct {
	Environment  string            `json:"environment,omitempty" yaml:"environment,omitempty"`
	InstanceType string            `json:"instance_type" yaml:"instance_type"`
	Region       string            `json:"region,omitempty" yaml:"region,omitempty"`
	TimeUnit     string            `json:"time_unit" yaml:"time_unit"`
	Quantity     int64             `json:"quantity" yaml:"quantity"`
	Currency     string            `json:"currency" yaml:"currency"`
	Priced       bool              `json:"priced" yaml:"priced"`
	Rate         map[string]string `json:"rate" yaml:"rate"`
	Total        string            `json:"total,omitempty" yaml:"total,omitempty"`
}

func newRateCmd(opts *rootOptions) *cobra.Command {
	f := &rateFlags{}

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Compute the itemized rate for an instance type",
		Example: `  aws-rate-hook rate --environment prod --instance-type m5.large --quantity 2
  aws-rate-hook rate --region us-west-2 --instance-type t3.micro --time-unit HOUR -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRate(cmd, opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.environment, "environment", "e", "", "Environment whose region and configured rates apply")
	cmd.Flags().StringVarP(&f.instanceType, "instance-type", "i", "", "EC2 instance type, e.g. t3.micro")
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "Region code; overrides the environment's region")
	cmd.Flags().StringVarP(&f.timeUnit, "time-unit", "t", "", "Billing time unit (HOUR, DAY, WEEK, MONTH, YEAR); defaults to rate_time_unit")
	cmd.Flags().Int64VarP(&f.quantity, "quantity", "q", 1, "Number of servers")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputTable, "Output format: table, json or yaml")
	_ = cmd.MarkFlagRequired("instance-type")
	return cmd
}

func runRate(cmd *cobra.Command, opts *rootOptions, f *rateFlags) error {
	format := strings.ToLower(f.output)
	switch format {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported output format %q", f.output)
	}
	if f.environment == "" && f.region == "" {
		return errors.New("one of --environment or --region is required")
	}

	p, err := newPipeline(opts, progressSink(opts, format != outputTable))
	if err != nil {
		return err
	}

	req := rate.Request{
		Environment: f.environment,
		FieldValues: []rate.FieldValue{{Field: "instance_type", Value: f.instanceType}},
		TimeUnit:    f.timeUnit,
		Quantity:    f.quantity,
	}
	if f.region != "" {
		req.Server = &rate.ServerRecord{RegionCode: f.region, InstanceType: f.instanceType}
	}

	itemized, err := p.composer.ComputeRate(cmd.Context(), req)
	if err != nil {
		return err
	}

	report := rateReport{
		Environment:  f.environment,
		InstanceType: f.instanceType,
		Region:       f.region,
		TimeUnit:     strings.ToUpper(f.timeUnit),
		Quantity:     f.quantity,
		Currency:     "USD",
		Priced:       !itemized.Empty(),
		Rate:         make(map[string]string, len(itemized)),
	}
	if report.TimeUnit == "" {
		report.TimeUnit = opts.cfg.RateTimeUnit
	}
	for category, amount := range itemized {
		report.Rate[string(category)] = amount.String()
	}
	if report.Priced {
		report.Total = itemized.Total().String()
	}

	out := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderRateTable(out, report, itemized)
	}
}

func renderRateTable(out io.Writer, report rateReport, itemized rate.ItemizedRate) error {
	if !report.Priced {
		_, err := fmt.Fprintln(out, pterm.Warning.Sprintf("Unable to price %s; see the log for details", report.InstanceType))
		return err
	}

	data := pterm.TableData{{"Category", fmt.Sprintf("USD per %s", report.TimeUnit)}}
	for _, category := range rate.Categories {
		data = append(data, []string{string(category), itemized[category].StringFixed(4)})
	}
	data = append(data, []string{"Total", itemized.Total().StringFixed(4)})

	rendered, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, rendered)
	return err
}
