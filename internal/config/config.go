// Package config loads settings from an optional TOML file, then from the
// environment (a .env file in the working directory is read first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"geopuzzle/internal/scoring"
)

type ServerConfig struct {
	Port        int      `toml:"port"`
	AuthEnabled bool     `toml:"auth_enabled"`
	APIKeys     []string `toml:"api_keys"`
}

type ArchiveConfig struct {
	// Path is a SQLite file, or a postgres:// or clickhouse:// DSN. Empty disables archiving.
	Path string `toml:"path"`
}

type ScoringConfig struct {
	Printable float64 `toml:"printable"`
	Words     float64 `toml:"words"`
	GPS       float64 `toml:"gps"`
	Floor     float64 `toml:"floor"`
}

type BatchConfig struct {
	Workers int `toml:"workers"`
}

type NATSConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
	Queue   string `toml:"queue"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Archive ArchiveConfig `toml:"archive"`
	Scoring ScoringConfig `toml:"scoring"`
	Batch   BatchConfig   `toml:"batch"`
	NATS    NATSConfig    `toml:"nats"`
}

// Default returns the built-in settings.
func Default() *Config {
	s := scoring.Default()
	return &Config{
		Server: ServerConfig{Port: 8080},
		Scoring: ScoringConfig{
			Printable: s.Weights.Printable,
			Words:     s.Weights.Words,
			GPS:       s.Weights.GPS,
			Floor:     s.Floor,
		},
		Batch: BatchConfig{Workers: 4},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "geopuzzle.run",
			Queue:   "geopuzzle",
		},
	}
}

// Load reads path (skipped when empty) over the defaults and applies the
// environment on top.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadIfExists is Load for a default path that may be missing.
func LoadIfExists(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		path = ""
	}
	return Load(path)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GEOPUZZLE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GEOPUZZLE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("GEOPUZZLE_API_KEYS"); v != "" {
		c.Server.APIKeys = splitCSV(v)
		c.Server.AuthEnabled = len(c.Server.APIKeys) > 0
	}
	if v := os.Getenv("GEOPUZZLE_ARCHIVE"); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv("GEOPUZZLE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GEOPUZZLE_WORKERS: %w", err)
		}
		c.Batch.Workers = n
	}
	if v := os.Getenv("GEOPUZZLE_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	return nil
}

// Validate rejects settings the commands cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.AuthEnabled && len(c.Server.APIKeys) == 0 {
		return errors.New("server.auth_enabled requires at least one api key")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}
	sc := c.Scoring
	for name, v := range map[string]float64{"printable": sc.Printable, "words": sc.Words, "gps": sc.GPS, "floor": sc.Floor} {
		if v < 0 || v > 1 {
			return fmt.Errorf("scoring.%s must be within [0, 1], got %v", name, v)
		}
	}
	return nil
}

// Scorer builds the brute-force scorer from the [scoring] section.
func (c *Config) Scorer() scoring.Scorer {
	return scoring.Scorer{
		Weights: scoring.Weights{
			Printable: c.Scoring.Printable,
			Words:     c.Scoring.Words,
			GPS:       c.Scoring.GPS,
		},
		Floor: c.Scoring.Floor,
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
