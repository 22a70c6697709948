package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopuzzle/internal/fragments"
	"geopuzzle/internal/registry"
)

func TestAllPluginsRegistered(t *testing.T) {
	var names []string
	for _, p := range registry.Default().Plugins() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{
		"coordinates", "formula", "hex", "roman", "chemical", "letter_value", "base_convert",
	}, names)
}

func TestDispatchRomanToCoordinates(t *testing.T) {
	resp, err := registry.Default().Execute("coordinates", registry.Inputs{
		"text": "NORD XLVIII XXXII CCXCVI EST VI XL DCXXXVI",
	})
	require.NoError(t, err)
	require.Equal(t, registry.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "N 48° 32.296' E 6° 40.636'", resp.Results[0].TextOutput)
	assert.Equal(t, "coordinates", resp.PluginInfo.Name)
	assert.GreaterOrEqual(t, resp.PluginInfo.ExecutionTimeMS, 0.0)
}

func TestDispatchUnknown(t *testing.T) {
	resp, err := registry.Default().Execute("rot47", registry.Inputs{"text": "x"})
	require.ErrorIs(t, err, registry.ErrUnknownPlugin)
	assert.Equal(t, registry.StatusError, resp.Status)
}

func TestScan(t *testing.T) {
	matches := registry.Default().Scan("48 65 6C 6C 6F", fragments.Options{Strict: true})
	require.NotEmpty(t, matches)

	var names []string
	for _, m := range matches {
		names = append(names, m.Plugin)
	}
	assert.Contains(t, names, "hex")
	assert.Contains(t, names, "base_convert")
	assert.NotContains(t, names, "roman")
}
