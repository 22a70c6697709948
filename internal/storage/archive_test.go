package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopuzzle/internal/registry"
)

func sampleResponse(plugin string, confidence float64) *registry.Response {
	resp := registry.NewResponse(plugin, registry.Inputs{"text": "48 65 6C 6C 6F"})
	resp.AddResult("Hello", confidence, nil, nil)
	return resp.Finish()
}

func TestNewRun(t *testing.T) {
	run, err := NewRun(sampleResponse("hex", 0.9))
	require.NoError(t, err)

	assert.Len(t, run.ID, 36)
	assert.Equal(t, "hex", run.Plugin)
	assert.Equal(t, "success", run.Status)
	assert.Equal(t, 0.9, run.Confidence)
	assert.Equal(t, "Hello", run.BestText)
	assert.JSONEq(t, `{"text":"48 65 6C 6C 6F"}`, string(run.InputsJSON))

	var back registry.Response
	require.NoError(t, json.Unmarshal(run.ResponseJSON, &back))
	assert.Equal(t, "result_1", back.Summary.BestResultID)
}

func TestNewRunWithoutResults(t *testing.T) {
	run, err := NewRun(registry.NewResponse("hex", nil).Fail("text is required"))
	require.NoError(t, err)
	assert.Equal(t, "error", run.Status)
	assert.Zero(t, run.Confidence)
	assert.Empty(t, run.BestText)
}

// exerciseArchive runs the behaviour every backend must share.
func exerciseArchive(t *testing.T, a Archive) {
	t.Helper()
	ctx := context.Background()

	first, err := Save(ctx, a, sampleResponse("hex", 0.8))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := Save(ctx, a, sampleResponse("roman", 0.4))
	require.NoError(t, err)
	_, err = Save(ctx, a, registry.NewResponse("hex", nil).Fail("boom"))
	require.NoError(t, err)

	got, err := a.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "hex", got.Plugin)
	assert.Equal(t, "Hello", got.BestText)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	assert.JSONEq(t, string(first.ResponseJSON), string(got.ResponseJSON))

	_, err = a.GetRun(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := a.ListRuns(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	hex, err := a.ListRuns(ctx, ListParams{Plugin: "hex", Status: "success"})
	require.NoError(t, err)
	require.Len(t, hex, 1)
	assert.Equal(t, first.ID, hex[0].ID)

	page, err := a.ListRuns(ctx, ListParams{Plugin: "roman", Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)

	stats, err := a.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRuns)
	assert.Equal(t, map[string]int{"hex": 2, "roman": 1}, stats.ByPlugin)
	assert.Equal(t, map[string]int{"success": 2, "error": 1}, stats.ByStatus)
	assert.InDelta(t, 0.4, stats.MeanConfidence, 1e-9)
}

func TestSQLiteArchive(t *testing.T) {
	a, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	exerciseArchive(t, a)
}

func TestSQLiteArchiveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	a, err := OpenSQLite(path)
	require.NoError(t, err)
	run, err := Save(ctx, a, sampleResponse("hex", 1))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	got, err := b.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

// The server-backed archives run only when a DSN to an empty database is provided.
func TestServerArchives(t *testing.T) {
	for _, env := range []string{"GEOPUZZLE_TEST_POSTGRES", "GEOPUZZLE_TEST_CLICKHOUSE"} {
		t.Run(env, func(t *testing.T) {
			dsn := os.Getenv(env)
			if dsn == "" {
				t.Skipf("%s not set", env)
			}
			a, err := Open(context.Background(), dsn)
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })
			exerciseArchive(t, a)
		})
	}
}

func TestSaveAll(t *testing.T) {
	a, err := OpenSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	ctx := context.Background()

	var runs []Run
	for _, c := range []float64{0.2, 0.6} {
		r, err := NewRun(sampleResponse("hex", c))
		require.NoError(t, err)
		runs = append(runs, r)
	}
	require.NoError(t, SaveAll(ctx, a, runs))
	require.NoError(t, SaveAll(ctx, a, nil))

	stats, err := a.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRuns)
	assert.InDelta(t, 0.4, stats.MeanConfidence, 1e-9)
}
