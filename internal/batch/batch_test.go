package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "geopuzzle/internal/plugins"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/storage"
)

const input = `{"plugin":"hex","inputs":{"text":"48 65 6C 6C 6F"}}

{"plugin":"roman","inputs":{"mode":"encode","text":"2024"}}
{"plugin":"nope","inputs":{}}
not json
{"plugin":"coordinates","inputs":{"text":"N 48° 33.787' E 006° 38.803'"}}
`

func readResponses(t *testing.T, out *bytes.Buffer) []registry.Response {
	t.Helper()
	var resps []registry.Response
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var r registry.Response
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		resps = append(resps, r)
	}
	return resps
}

func TestRun(t *testing.T) {
	for _, workers := range []int{1, 4} {
		rn := &Runner{Registry: registry.Default(), Workers: workers}

		var out bytes.Buffer
		st, err := rn.Run(context.Background(), strings.NewReader(input), &out)
		require.NoError(t, err)

		assert.Equal(t, Stats{Lines: 6, Skipped: 1, Success: 3, Errors: 2}, st)

		resps := readResponses(t, &out)
		require.Len(t, resps, 5)

		// Output keeps input order regardless of worker count.
		assert.Equal(t, "hex", resps[0].PluginInfo.Name)
		assert.Equal(t, "Hello", resps[0].Results[0].TextOutput)
		assert.Equal(t, "roman", resps[1].PluginInfo.Name)
		assert.Equal(t, "MMXXIV", resps[1].Results[0].TextOutput)
		assert.Equal(t, registry.StatusError, resps[2].Status)
		assert.Equal(t, registry.StatusError, resps[3].Status)
		assert.Equal(t, "coordinates", resps[4].PluginInfo.Name)
	}
}

func TestRunArchives(t *testing.T) {
	archive, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	rn := &Runner{Registry: registry.Default(), Archive: archive, Workers: 2}
	var out bytes.Buffer
	st, err := rn.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	// The unparseable line has no plugin name and is not archived.
	assert.Equal(t, 4, st.Archived)

	stats, err := archive.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalRuns)
	assert.Equal(t, 1, stats.ByPlugin["nope"])
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rn := &Runner{Registry: registry.Default(), Workers: 1}
	_, err := rn.Run(ctx, strings.NewReader(input), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
