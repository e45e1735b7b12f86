package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPrefetchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch",
		Short: "Download and split the pricing catalog ahead of the first lookup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newPipeline(opts, progressSink(opts, false))
			if err != nil {
				return err
			}
			if err := p.resolver.Prepare(cmd.Context()); err != nil {
				return err
			}
			full, skuPath, termsPath := p.resolver.Paths()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n%s\n", full, skuPath, termsPath)
			return err
		},
	}
}
