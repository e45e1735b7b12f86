package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/aws-rate-hook/internal/progress"
	"github.com/rshade/aws-rate-hook/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rates over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newPipeline(opts, progress.NewLogSink(opts.logger))
			if err != nil {
				return err
			}
			if addr == "" {
				addr = opts.cfg.ListenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Addr:     addr,
				Composer: p.composer,
				TimeUnit: opts.cfg.RateTimeUnit,
				Gatherer: p.registry,
			}, opts.logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "listen", "", "Address to listen on; defaults to listen_addr")
	return cmd
}
