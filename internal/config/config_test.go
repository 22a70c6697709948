package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geopuzzle.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 0.5, cfg.Scoring.Printable)
	assert.Equal(t, 0.1, cfg.Scorer().Floor)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090
auth_enabled = true
api_keys = ["k1", "k2"]

[archive]
path = "runs.db"

[scoring]
printable = 0.6
words = 0.2
gps = 0.2
floor = 0.2

[batch]
workers = 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.AuthEnabled)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "runs.db", cfg.Archive.Path)
	assert.Equal(t, 8, cfg.Batch.Workers)

	s := cfg.Scorer()
	assert.Equal(t, 0.6, s.Weights.Printable)
	assert.Equal(t, 0.2, s.Floor)
	// Sections left out keep their defaults.
	assert.Equal(t, "geopuzzle.run", cfg.NATS.Subject)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GEOPUZZLE_PORT", "7000")
	t.Setenv("GEOPUZZLE_ARCHIVE", "postgres://localhost/geopuzzle")
	t.Setenv("GEOPUZZLE_WORKERS", "2")
	t.Setenv("GEOPUZZLE_API_KEYS", "a, b,")

	cfg, err := Load(writeConfig(t, "[server]\nport = 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/geopuzzle", cfg.Archive.Path)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, []string{"a", "b"}, cfg.Server.APIKeys)
	assert.True(t, cfg.Server.AuthEnabled)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad toml", body: "[server\nport = 1"},
		{name: "port out of range", body: "[server]\nport = 70000"},
		{name: "auth without keys", body: "[server]\nauth_enabled = true"},
		{name: "zero workers", body: "[batch]\nworkers = 0"},
		{name: "weight above one", body: "[scoring]\ngps = 1.5"},
		{name: "bad port env", env: map[string]string{"GEOPUZZLE_PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadIfExists(t *testing.T) {
	cfg, err := LoadIfExists(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
