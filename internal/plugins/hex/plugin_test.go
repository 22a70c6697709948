package hex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopuzzle/internal/detect"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/scoring"
)

func run(t *testing.T, inputs registry.Inputs) *registry.Response {
	t.Helper()
	resp := New().Execute(&registry.Request{Inputs: inputs, Scorer: scoring.Default()})
	require.NotNil(t, resp)
	return resp
}

func TestEncode(t *testing.T) {
	resp := run(t, registry.Inputs{"mode": "encode", "text": "N 48"})
	require.Equal(t, registry.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "4E 20 34 38", resp.Results[0].TextOutput)
	assert.Equal(t, "result_1", resp.Summary.BestResultID)
}

func TestDecode(t *testing.T) {
	resp := run(t, registry.Inputs{"text": "48 65 6C 6C 6F"})
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Hello", resp.Results[0].TextOutput)
	assert.InDelta(t, 1.0, resp.Results[0].Confidence, 1e-9)
	assert.NotContains(t, resp.Results[0].Metadata, "coordinates")
}

func TestRoundTripWithCoordinates(t *testing.T) {
	plain := "N 48° 33.787' E 006° 38.803'"

	enc := run(t, registry.Inputs{"mode": "encode", "text": plain})
	require.Len(t, enc.Results, 1)

	dec := run(t, registry.Inputs{
		"text":       enc.Results[0].TextOutput,
		"origin_lat": "N 48° 33.787'",
		"origin_lon": "E 006° 38.803'",
	})
	require.Equal(t, registry.StatusSuccess, dec.Status)
	require.Len(t, dec.Results, 1)

	best := dec.Results[0]
	assert.Equal(t, plain, best.TextOutput)
	assert.Equal(t, 1.0, best.Confidence)

	got, ok := best.Metadata["coordinates"].(detect.Result)
	require.True(t, ok)
	assert.Equal(t, "N 48° 33.787'", got.DDMLat)
	assert.Equal(t, "E 006° 38.803'", got.DDMLon)
	assert.Contains(t, best.Metadata, "decimal")
	assert.Contains(t, best.Metadata, "distance")
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		inputs registry.Inputs
		status registry.Status
	}{
		{"odd digit count", registry.Inputs{"text": "4E 2"}, registry.StatusSuccess},
		{"prose in strict whole mode", registry.Inputs{"text": "see 4E 20"}, registry.StatusSuccess},
		{"empty text", registry.Inputs{"text": "  "}, registry.StatusError},
		{"unknown mode", registry.Inputs{"text": "4E", "mode": "rot13"}, registry.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := run(t, tt.inputs)
			assert.Equal(t, tt.status, resp.Status)
			assert.Empty(t, resp.Results)
		})
	}
}

func TestEmbeddedDecode(t *testing.T) {
	resp := run(t, registry.Inputs{"text": "code: 4869 here", "embedded": true})
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "code: Hi here", resp.Results[0].TextOutput)
}
