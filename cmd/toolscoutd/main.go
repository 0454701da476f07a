package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"toolscout/internal/app"
	"toolscout/internal/buildinfo"
)

type rootOptions struct {
	configPath string
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := rootOptions{}

	root := &cobra.Command{
		Use:     "toolscoutd",
		Short:   "MCP server that discovers Python tools and recommends them for agent queries",
		Version: buildinfo.Version,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to config file (optional)")

	root.AddCommand(
		newServeCmd(logger, &opts),
		newScanCmd(logger, &opts),
		newValidateCmd(logger, &opts),
	)

	return root
}

func newServeCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	var (
		scanDirectory string
		transportMode string
		watch         bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tool discovery server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			serveCfg := app.ServeConfig{ConfigPath: opts.configPath}
			applyServeFlagOverrides(cmd.Flags(), &serveCfg, scanDirectory, transportMode, watch)

			return app.New(logger).Serve(ctx, serveCfg)
		},
	}

	cmd.Flags().StringVar(&scanDirectory, "scan-dir", "", "directory of Python tool classes to scan")
	cmd.Flags().StringVar(&transportMode, "transport", "", "transport mode: stdio or streamable-http")
	cmd.Flags().BoolVar(&watch, "watch", false, "rescan automatically when tool files change")

	return cmd
}

// applyServeFlagOverrides copies only the flags the user actually set,
// so config-file values survive when a flag is left at its default.
func applyServeFlagOverrides(flags *pflag.FlagSet, cfg *app.ServeConfig, scanDirectory, transportMode string, watch bool) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "scan-dir":
			cfg.ScanDirectory = scanDirectory
		case "transport":
			cfg.TransportMode = transportMode
		case "watch":
			cfg.Watch = watch
		}
	})
}

func newScanCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Scan a directory once and print the discovered tools as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var directory string
			if len(args) == 1 {
				directory = args[0]
			}
			return app.New(logger).Scan(cmd.Context(), app.ScanConfig{
				ConfigPath: opts.configPath,
				Directory:  directory,
			}, cmd.OutOrStdout())
		},
	}

	return cmd
}

func newValidateCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New(logger).ValidateConfig(cmd.Context(), app.ValidateConfig{
				ConfigPath: opts.configPath,
			})
		},
	}

	return cmd
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
