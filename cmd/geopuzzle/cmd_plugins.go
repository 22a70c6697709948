package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geopuzzle/internal/batch"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/storage"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered plugins in dispatch order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRIORITY\tNAME\tSCAN\tDESCRIPTION")
		for _, p := range registry.Default().Plugins() {
			_, scan := p.(registry.Checker)
			fmt.Fprintf(tw, "%d\t%s\t%v\t%s\n", p.Priority(), p.Name(), scan, p.Description())
		}
		return tw.Flush()
	},
}

var (
	runText    string
	runMode    string
	runInputs  []string
	runJSON    string
	runArchive bool
)

var runCmd = &cobra.Command{
	Use:   "run <plugin>",
	Short: "Execute one plugin and print its response envelope",
	Long: `Execute a plugin. Inputs come from --json, then --text/--mode, then
repeated --input key=value pairs:

  geopuzzle run hex --text "48 65 6C 6C 6F"
  geopuzzle run base_convert --text "110 1000" --input from=2 --input to=ascii
  geopuzzle run coordinates --json '{"mode":"convert","latitude":48.5,"longitude":6.6}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := runInputsFromFlags()
		if err != nil {
			return err
		}

		resp, err := registry.Default().Execute(args[0], inputs)
		if err != nil {
			return err
		}

		if runArchive {
			a, err := openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			run, err := storage.Save(cmd.Context(), a, resp)
			if err != nil {
				return err
			}
			logger.Info("run archived", zap.String("id", run.ID))
		}
		return printJSON(cmd, resp)
	},
}

func runInputsFromFlags() (registry.Inputs, error) {
	inputs := registry.Inputs{}
	if runJSON != "" {
		dec := json.NewDecoder(strings.NewReader(runJSON))
		dec.UseNumber()
		if err := dec.Decode(&inputs); err != nil {
			return nil, fmt.Errorf("--json: %w", err)
		}
	}
	if runText != "" {
		inputs["text"] = runText
	}
	if runMode != "" {
		inputs["mode"] = runMode
	}
	for _, kv := range runInputs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("--input %q: expected key=value", kv)
		}
		inputs[strings.TrimSpace(k)] = v
	}
	return inputs, nil
}

var (
	batchIn      string
	batchOut     string
	batchWorkers int
	batchArchive bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a JSONL file of plugin requests",
	Long: `Each input line is {"plugin": "...", "inputs": {...}}. Responses are written
as JSONL in input order. With --archive every run is stored in the configured
archive (a single batch insert on ClickHouse).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if batchIn != "" && batchIn != "-" {
			f, err := os.Open(batchIn)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()
			r = f
		}

		var w io.Writer = cmd.OutOrStdout()
		if batchOut != "" && batchOut != "-" {
			f, err := os.Create(batchOut)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()
			w = f
		}

		rn := &batch.Runner{
			Registry: registry.Default(),
			Workers:  cfg.Batch.Workers,
			Logger:   logger,
		}
		if batchWorkers > 0 {
			rn.Workers = batchWorkers
		}
		if batchArchive {
			a, err := openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			rn.Archive = a
		}

		st, err := rn.Run(cmd.Context(), r, w)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "stats: lines=%d skipped=%d success=%d errors=%d archived=%d\n",
			st.Lines, st.Skipped, st.Success, st.Errors, st.Archived)
		return nil
	},
}

// openArchive opens the configured run archive.
func openArchive(ctx context.Context) (storage.Archive, error) {
	if cfg.Archive.Path == "" {
		return nil, fmt.Errorf("no archive configured: set [archive] path or GEOPUZZLE_ARCHIVE")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return storage.Open(ctx, cfg.Archive.Path)
}

func init() {
	runCmd.Flags().StringVarP(&runText, "text", "t", "", "Input text")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "Plugin mode (decode, encode, detect...)")
	runCmd.Flags().StringArrayVar(&runInputs, "input", nil, "Extra input as key=value (repeatable)")
	runCmd.Flags().StringVar(&runJSON, "json", "", "All inputs as a JSON object")
	runCmd.Flags().BoolVar(&runArchive, "archive", false, "Store the run in the archive")

	batchCmd.Flags().StringVarP(&batchIn, "input", "i", "", "Input JSONL file (default: stdin)")
	batchCmd.Flags().StringVarP(&batchOut, "output", "o", "", "Output JSONL file (default: stdout)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Parallel workers (default: [batch] workers)")
	batchCmd.Flags().BoolVar(&batchArchive, "archive", false, "Store every run in the archive")
}
