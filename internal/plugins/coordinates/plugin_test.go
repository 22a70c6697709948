package coordinates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopuzzle/internal/coords"
	"geopuzzle/internal/detect"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/scoring"
)

func exec(in registry.Inputs) *registry.Response {
	return New().Execute(&registry.Request{Inputs: in, Scorer: scoring.Default()})
}

func TestDetect(t *testing.T) {
	resp := exec(registry.Inputs{"text": "NORD XLVIII XXXII CCXCVI EST VI XL DCXXXVI"})
	require.Equal(t, registry.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 1)

	best := resp.Results[0]
	assert.Equal(t, "N 48° 32.296' E 6° 40.636'", best.TextOutput)
	assert.Equal(t, 1.0, best.Confidence)
	assert.Contains(t, best.Metadata, "decimal")
	assert.NotContains(t, best.Metadata, "distance")
}

func TestDetectWithOrigin(t *testing.T) {
	resp := exec(registry.Inputs{
		"text":       "N48° 39.286 E06°11.685",
		"origin_lat": "N48° 40.123",
		"origin_lon": "E06° 10.456",
	})
	require.Len(t, resp.Results, 1)

	dist, ok := resp.Results[0].Metadata["distance"].(coords.DistanceResult)
	require.True(t, ok)
	assert.InDelta(t, 2164.1, dist.Meters, 3)
	assert.Equal(t, coords.ProximityOK, dist.Status)
}

func TestDetectNothing(t *testing.T) {
	resp := exec(registry.Inputs{"text": "no coordinates in here"})
	assert.Equal(t, registry.StatusSuccess, resp.Status)
	assert.Empty(t, resp.Results)
	assert.Equal(t, "no coordinates found", resp.Summary.Message)
}

func TestConvert(t *testing.T) {
	resp := exec(registry.Inputs{"mode": "convert", "latitude": 48.563117, "longitude": "6.646717"})
	require.Equal(t, registry.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "N 48° 33.787' E 006° 38.803'", resp.Results[0].TextOutput)

	resp = exec(registry.Inputs{"mode": "convert", "latitude": -33.5, "longitude": -70.25})
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "S 33° 30.000' W 070° 15.000'", resp.Results[0].TextOutput)
}

func TestTrace(t *testing.T) {
	resp := exec(registry.Inputs{"mode": "trace", "text": "N 48° 33.787' E 006° 38.803'"})
	require.Len(t, resp.Results, 1)

	trace, ok := resp.Results[0].Metadata["trace"].(*detect.Trace)
	require.True(t, ok)
	assert.Equal(t, "flexible", trace.Winner)
	assert.Len(t, trace.Attempts, len(detect.Detectors()))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		in   registry.Inputs
	}{
		{"missing text", registry.Inputs{}},
		{"missing trace text", registry.Inputs{"mode": "trace"}},
		{"convert without longitude", registry.Inputs{"mode": "convert", "latitude": 48.5}},
		{"convert out of range", registry.Inputs{"mode": "convert", "latitude": 91.0, "longitude": 0.0}},
		{"unknown mode", registry.Inputs{"mode": "teleport"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := exec(tt.in)
			assert.Equal(t, registry.StatusError, resp.Status)
			assert.NotEmpty(t, resp.Summary.Message)
		})
	}
}
