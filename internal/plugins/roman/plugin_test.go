package roman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopuzzle/internal/detect"
	"geopuzzle/internal/fragments"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/scoring"
)

const nordEst = "NORD XLVIII XXXII CCXCVI EST VI XL DCXXXVI"

func run(inputs registry.Inputs) *registry.Response {
	return New().Execute(&registry.Request{Inputs: inputs, Scorer: scoring.Default()})
}

func TestDecodeEmbeddedNumerals(t *testing.T) {
	resp := run(registry.Inputs{"text": nordEst})
	require.Equal(t, registry.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 1)

	best := resp.Results[0]
	assert.Equal(t, "NORD 48 32 296 EST 6 40 636", best.TextOutput)

	got, ok := best.Metadata["coordinates"].(detect.Result)
	require.True(t, ok, "decoded text should be recognised as a coordinate")
	assert.True(t, got.Exist)
	assert.Equal(t, "N 48° 32.296'", got.DDMLat)

	// 28 of 35 letters are numerals; the GPS bonus lifts that to the cap.
	assert.InDelta(t, 0.8, best.Metadata["fragment_score"], 1e-9)
	assert.Equal(t, 1.0, best.Confidence)
}

func TestDecodeStrictWholeRejectsProse(t *testing.T) {
	resp := run(registry.Inputs{"text": nordEst, "embedded": false})
	assert.Equal(t, registry.StatusSuccess, resp.Status)
	assert.Empty(t, resp.Results)
	assert.Equal(t, "no roman content found", resp.Summary.Message)
}

func TestDetectMode(t *testing.T) {
	resp := run(registry.Inputs{"text": nordEst, "mode": "detect"})
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "XLVIII XXXII CCXCVI VI XL DCXXXVI", resp.Results[0].TextOutput)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		status registry.Status
	}{
		{"N 48 E 6", "N XLVIII E VI", registry.StatusSuccess},
		{"1999 and 4000", "MCMXCIX and 4000", registry.StatusSuccess},
		{"no digits", "", registry.StatusError},
		{"0", "", registry.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			resp := run(registry.Inputs{"text": tt.text, "mode": "encode"})
			assert.Equal(t, tt.status, resp.Status)
			if tt.status == registry.StatusSuccess {
				require.Len(t, resp.Results, 1)
				assert.Equal(t, tt.want, resp.Results[0].TextOutput)
			}
		})
	}
}

func TestExtractorSkipsWordsWithOtherLetters(t *testing.T) {
	got := Extractor.Check("MIX IN MMXXIV", fragments.Options{Strict: true, Embedded: true})
	require.True(t, got.IsMatch)
	require.Len(t, got.Fragments, 2)
	assert.Equal(t, "MIX", got.Fragments[0].Value)
	assert.Equal(t, "MMXXIV", got.Fragments[1].Value)
}
