// Package batch runs JSONL files of plugin requests in parallel.
//
// Each input line is {"plugin": "...", "inputs": {...}}; each output line is
// the response envelope, in input order.
package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"geopuzzle/internal/registry"
	"geopuzzle/internal/storage"
)

// Job is one input line.
type Job struct {
	Plugin string          `json:"plugin"`
	Inputs registry.Inputs `json:"inputs"`
}

// Stats counts what a batch did.
type Stats struct {
	Lines    int `json:"lines"`
	Skipped  int `json:"skipped"` // blank lines
	Success  int `json:"success"`
	Errors   int `json:"errors"`
	Archived int `json:"archived"`
}

// Runner executes batches against a registry.
type Runner struct {
	Registry *registry.Registry
	Archive  storage.Archive // optional
	Workers  int
	Logger   *zap.Logger
}

// Run reads jobs from r, executes them with at most Workers in flight and
// writes one response per job to w. A line that is not valid JSON produces
// an error envelope rather than aborting the batch.
func (rn *Runner) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	logger := rn.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var st Stats
	var lines [][]byte

	scanner := bufio.NewScanner(r)
	// JSON lines can be long.
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		st.Lines++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			st.Skipped++
			continue
		}
		lines = append(lines, bytes.Clone(line))
	}
	if err := scanner.Err(); err != nil {
		return st, fmt.Errorf("read input: %w", err)
	}

	responses := make([]*registry.Response, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(rn.Workers, 1))
	for i, line := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			responses[i] = rn.execute(line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return st, err
	}

	enc := json.NewEncoder(w)
	var runs []storage.Run
	for _, resp := range responses {
		if resp.Status == registry.StatusSuccess {
			st.Success++
		} else {
			st.Errors++
		}
		if err := enc.Encode(resp); err != nil {
			return st, fmt.Errorf("write output: %w", err)
		}

		if rn.Archive != nil && resp.PluginInfo.Name != "" {
			run, err := storage.NewRun(resp)
			if err != nil {
				logger.Warn("skip archiving run", zap.String("plugin", resp.PluginInfo.Name), zap.Error(err))
				continue
			}
			runs = append(runs, run)
		}
	}

	if len(runs) > 0 {
		if err := storage.SaveAll(ctx, rn.Archive, runs); err != nil {
			return st, fmt.Errorf("archive runs: %w", err)
		}
		st.Archived = len(runs)
	}

	logger.Info("batch finished",
		zap.Int("lines", st.Lines),
		zap.Int("success", st.Success),
		zap.Int("errors", st.Errors),
		zap.Int("archived", st.Archived))
	return st, nil
}

func (rn *Runner) execute(line []byte) *registry.Response {
	var job Job
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&job); err != nil {
		return registry.NewResponse("", nil).Fail("invalid request: %v", err)
	}
	if strings.TrimSpace(job.Plugin) == "" {
		return registry.NewResponse("", job.Inputs).Fail("plugin is required")
	}

	// Unknown plugins come back as an error envelope.
	resp, _ := rn.Registry.Execute(job.Plugin, job.Inputs)
	return resp
}
