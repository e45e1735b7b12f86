package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/aws-rate-hook/internal/pricing"
)

func newSKUCmd(opts *rootOptions) *cobra.Command {
	var region, location, instanceType string

	cmd := &cobra.Command{
		Use:   "sku",
		Short: "Print the catalog SKU matched for an instance type and location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if location == "" {
				if region == "" {
					return errors.New("one of --region or --location is required")
				}
				title := pricing.LocationTitle(region)
				t, ok := title.Value()
				if !ok {
					return errors.New(title.Reason())
				}
				location = t
			}

			p, err := newPipeline(opts, progressSink(opts, true))
			if err != nil {
				return err
			}
			sku, err := p.resolver.LookupSKU(cmd.Context(), location, instanceType)
			if err != nil {
				return err
			}
			id, ok := sku.Value()
			if !ok {
				return errors.New(sku.Reason())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "", "Region code, e.g. us-west-2")
	cmd.Flags().StringVarP(&location, "location", "l", "", `Catalog location title, e.g. "US West (Oregon)"`)
	cmd.Flags().StringVarP(&instanceType, "instance-type", "i", "", "EC2 instance type")
	_ = cmd.MarkFlagRequired("instance-type")
	return cmd
}
