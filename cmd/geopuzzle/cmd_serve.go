package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geopuzzle/internal/api"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/storage"
	"geopuzzle/internal/worker"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// optionalArchive opens the archive when one is configured.
func optionalArchive(ctx context.Context) (storage.Archive, error) {
	if cfg.Archive.Path == "" {
		return nil, nil
	}
	return openArchive(ctx)
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the REST API under /api/v1. Authentication is enabled when API keys
are configured ([server] api_keys or GEOPUZZLE_API_KEYS). Plugin runs are
archived when an archive is configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		archive, err := optionalArchive(ctx)
		if err != nil {
			return err
		}
		if archive != nil {
			defer archive.Close()
		}

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		srv := api.NewServer(registry.Default(), archive, logger, api.Config{
			Port:        port,
			AuthEnabled: cfg.Server.AuthEnabled,
			APIKeys:     cfg.Server.APIKeys,
		})
		return srv.Run(ctx)
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Serve plugin requests from NATS",
	Long: `Subscribe to the [nats] subject in the [nats] queue group and answer each
{"plugin": "...", "inputs": {...}} request with the response envelope.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		archive, err := optionalArchive(ctx)
		if err != nil {
			return err
		}
		if archive != nil {
			defer archive.Close()
		}

		w := worker.New(registry.Default(), archive, logger, worker.Config{
			URL:     cfg.NATS.URL,
			Subject: cfg.NATS.Subject,
			Queue:   cfg.NATS.Queue,
		})
		return w.Run(ctx)
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run archive",
}

var runsParams storage.ListParams

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE: withArchive(func(cmd *cobra.Command, a storage.Archive, args []string) error {
		runs, err := a.ListRuns(cmd.Context(), runsParams)
		if err != nil {
			return err
		}
		if runs == nil {
			runs = []storage.Run{}
		}
		return printJSON(cmd, runs)
	}),
}

var runsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one archived run",
	Args:  cobra.ExactArgs(1),
	RunE: withArchive(func(cmd *cobra.Command, a storage.Archive, args []string) error {
		run, err := a.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, run)
	}),
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the archive",
	Args:  cobra.NoArgs,
	RunE: withArchive(func(cmd *cobra.Command, a storage.Archive, args []string) error {
		stats, err := a.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, stats)
	}),
}

// withArchive opens the configured archive around fn.
func withArchive(fn func(cmd *cobra.Command, a storage.Archive, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn("close archive", zap.Error(err))
			}
		}()
		return fn(cmd, a, args)
	}
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default: [server] port)")

	runsListCmd.Flags().StringVar(&runsParams.Plugin, "plugin", "", "Only runs of this plugin")
	runsListCmd.Flags().StringVar(&runsParams.Status, "status", "", "Only runs with this status")
	runsListCmd.Flags().IntVar(&runsParams.Limit, "limit", 20, "Maximum runs")
	runsListCmd.Flags().IntVar(&runsParams.Offset, "offset", 0, "Runs to skip")

	runsCmd.AddCommand(runsListCmd, runsGetCmd, runsStatsCmd)
}
