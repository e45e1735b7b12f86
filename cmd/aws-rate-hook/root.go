package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/aws-rate-hook/internal/config"
	"github.com/rshade/aws-rate-hook/internal/pricing"
	"github.com/rshade/aws-rate-hook/internal/progress"
	"github.com/rshade/aws-rate-hook/internal/rate"
	"github.com/rshade/aws-rate-hook/internal/ratecache"
)

// rootOptions holds the persistent flags and what PersistentPreRunE builds from them.
type rootOptions struct {
	configPath string
	logLevel   string
	logJSON    bool

	logger zerolog.Logger
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "aws-rate-hook",
		Short:         "On-demand EC2 rate resolver",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logJSON)
			if err != nil {
				return err
			}
			opts.logger = logger

			cfg, err := config.Load(opts.configPath, logger)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	cmd.SetVersionTemplate(`{{printf "aws-rate-hook version: %s\n" .Version}}`)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON instead of console text")

	cmd.AddCommand(
		newRateCmd(opts),
		newPrefetchCmd(opts),
		newSKUCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newLogger(w io.Writer, level string, asJSON bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	if !asJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// pipeline is the wired rate pipeline for one command invocation.
type pipeline struct {
	resolver *pricing.Resolver
	composer *rate.Composer
	registry *prometheus.Registry
}

func newPipeline(opts *rootOptions, sink progress.Sink) (*pipeline, error) {
	cfg, logger := opts.cfg, opts.logger

	registry := prometheus.NewRegistry()
	metrics, err := ratecache.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	resolver := pricing.NewResolver(pricing.ResolverOptions{
		DataDir:             cfg.DataDir,
		CatalogURL:          cfg.CatalogURL,
		SlowLookupThreshold: cfg.SlowLookupThreshold,
		Fetcher:             pricing.NewFetcher(nil, cfg.DownloadTimeout, logger),
		Splitter:            pricing.NewSplitter(logger),
		Cache:               ratecache.New(ratecache.NewMemoryCache(), logger, metrics),
		Progress:            sink,
	}, logger)

	envs, err := cfg.EnvironmentRates()
	if err != nil {
		return nil, err
	}
	configured := rate.NewConfiguredRates(envs)

	composer := rate.NewComposer(rate.ComposerOptions{
		Resolver: resolver,
		Regions:  configured,
		Titles:   pricing.LocationTitle,
		Fallback: configured,
		TimeUnit: cfg.RateTimeUnit,
	}, logger)

	return &pipeline{resolver: resolver, composer: composer, registry: registry}, nil
}

// progressSink picks the pterm console sink for human output and the log
// sink when stdout carries machine-readable data.
func progressSink(opts *rootOptions, machineOutput bool) progress.Sink {
	if machineOutput || opts.logJSON {
		return progress.NewLogSink(opts.logger)
	}
	return progress.NewConsoleSink()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "aws-rate-hook %s\n", version)
			return err
		},
	}
}
