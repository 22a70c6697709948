// Command geopuzzle detects, converts and decodes geocache puzzle coordinates.
//
// Usage:
//
//	geopuzzle detect "NORD 48 32 296 EST 6 40 636"
//	geopuzzle convert 48.563117 6.646717
//	geopuzzle distance "N 48° 33.787'" "E 006° 38.803'" "N 48° 33.800'" "E 006° 38.900'"
//	geopuzzle formula "N48° 39.ABC E006° 11.DEF" --vars "A=2,B=3,C=8,D=6,E=8,F=5"
//	geopuzzle plugins
//	geopuzzle run hex --text "48 65 6C 6C 6F"
//	geopuzzle batch -i requests.jsonl -o responses.jsonl
//	geopuzzle serve
//	geopuzzle worker
//	geopuzzle runs list --plugin hex
//
// Settings come from geopuzzle.toml (see --config) and GEOPUZZLE_* variables.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"geopuzzle/internal/config"
	_ "geopuzzle/internal/plugins" // register all plugins via init()
	"geopuzzle/internal/registry"
)

var (
	// Global flags
	cfgPath string
	debug   bool
	pretty  bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "geopuzzle",
	Short: "Geocache puzzle coordinate toolkit",
	Long: `geopuzzle finds GPS coordinates in puzzle text, resolves coordinate
formulas and runs decoding plugins (hex, Roman numerals, chemical symbols,
letter values, base conversion) whose output is checked for coordinates.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadIfExists(cfgPath)
		if err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		if debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		reg := registry.Default()
		reg.SetLogger(logger)
		reg.SetScorer(cfg.Scorer())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "geopuzzle.toml", "Config file (skipped when missing)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(detectCmd, convertCmd, distanceCmd, formulaCmd)
	rootCmd.AddCommand(pluginsCmd, runCmd, batchCmd)
	rootCmd.AddCommand(serveCmd, workerCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printJSON writes v to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
