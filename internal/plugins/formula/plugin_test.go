package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopuzzle/internal/formula"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/scoring"
)

func exec(in registry.Inputs) *registry.Response {
	return New().Execute(&registry.Request{Inputs: in, Scorer: scoring.Default()})
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name       string
		in         registry.Inputs
		want       string
		confidence float64
	}{
		{
			name:       "arithmetic groups",
			in:         registry.Inputs{"formula": "N48° 39.(8/4)(27/9)(2x2x2) E06°11.(3x2)(16x2/4)(25/5)"},
			want:       "N48° 39.238 E06°11.685",
			confidence: 1,
		},
		{
			name: "variables as text",
			in: registry.Inputs{
				"formula":   "N48° 39.ABC E006° 11.DEF",
				"variables": "A=2, B=3, C=8, D=6, E=8, F=5",
			},
			want:       "N48° 39.238 E006° 11.685",
			confidence: 1,
		},
		{
			name: "variables as object",
			in: registry.Inputs{
				"text":      "N48° 39.ABC E006° 11.685",
				"variables": map[string]any{"A": 2.0, "B": "3", "C": 8},
			},
			want:       "N48° 39.238 E006° 11.685",
			confidence: 1,
		},
		{
			name:       "unknown letters",
			in:         registry.Inputs{"formula": "N48° AB.238 E006° 11.685"},
			want:       "N48° AB.238 E006° 11.685",
			confidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := exec(tt.in)
			require.Equal(t, registry.StatusSuccess, resp.Status, resp.Summary.Message)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, tt.want, resp.Results[0].TextOutput)
			assert.Equal(t, tt.confidence, resp.Results[0].Confidence)
		})
	}
}

func TestExecuteWithOrigin(t *testing.T) {
	resp := exec(registry.Inputs{
		"formula":    "N48° 39.286 E06°11.685",
		"origin_lat": "N48° 40.123",
		"origin_lon": "E06° 10.456",
	})
	require.Len(t, resp.Results, 1)

	res, ok := resp.Results[0].Metadata["formula"].(*formula.Result)
	require.True(t, ok)
	require.NotNil(t, res.Distance)
	assert.InDelta(t, 2164.1, res.Distance.Meters, 3)
	assert.Equal(t, "formula complete", resp.Summary.Message)
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		in   registry.Inputs
	}{
		{"missing formula", registry.Inputs{}},
		{"malformed formula", registry.Inputs{"formula": "somewhere near the bridge"}},
		{"bad variables", registry.Inputs{"formula": "N48° 39.ABC E006° 11.685", "variables": "A2"}},
		{"non numeric variable", registry.Inputs{"formula": "N48° 39.ABC E006° 11.685", "variables": map[string]any{"A": "two"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, registry.StatusError, exec(tt.in).Status)
		})
	}
}

func TestVariables(t *testing.T) {
	got, err := Variables("a=1;B = 2")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, got)

	got, err = Variables(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Variables(42)
	assert.Error(t, err)

	_, err = Variables("AB=1")
	assert.Error(t, err)
}
