// Package config loads engine settings from a YAML file, applies
// environment overrides, and fills in defaults matching the reference
// hyperparameters of the streaming classifier.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Model holds word-vector hyperparameters.
type Model struct {
	VectorSize int   `yaml:"vector_size"`
	Epochs     int   `yaml:"epochs"`
	Window     int   `yaml:"window"`
	Negative   int   `yaml:"negative"`
	MinCount   int   `yaml:"min_count"`
	Workers    int   `yaml:"workers"`
	Seed       int64 `yaml:"seed"`
}

// Stream holds the batching and classification knobs.
type Stream struct {
	BatchSize      int     `yaml:"batch_size"`
	Confidence     float64 `yaml:"confidence"`
	TemporalTrend  bool    `yaml:"temporal_trend"`
	MergeThreshold float64 `yaml:"merge_threshold"`
}

// Server holds the HTTP front end settings.
type Server struct {
	Addr string `yaml:"addr"`
}

// Storage names the on-disk artifacts.
type Storage struct {
	SnapshotPath string `yaml:"snapshot_path"`
	RunDBPath    string `yaml:"run_db_path"`
}

type Config struct {
	Model   Model   `yaml:"model"`
	Stream  Stream  `yaml:"stream"`
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
}

// Default returns the configuration used when no file or overrides are
// given. Stream defaults follow the published PLStream settings.
func Default() *Config {
	return &Config{
		Model: Model{
			VectorSize: 20,
			Epochs:     5,
			Window:     5,
			Negative:   5,
			MinCount:   1,
			Seed:       1,
		},
		Stream: Stream{
			BatchSize:      250,
			Confidence:     0.5,
			TemporalTrend:  true,
			MergeThreshold: 0.8,
		},
		Server: Server{
			Addr: ":8080",
		},
		Storage: Storage{
			SnapshotPath: "plstream-wv.model",
			RunDBPath:    "plstream-run.db",
		},
	}
}

// Load reads path if it exists, layers environment overrides on top, and
// validates the result. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PLSTREAM_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Stream.BatchSize = n
		}
	}
	if v := os.Getenv("PLSTREAM_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Stream.Confidence = f
		}
	}
	if v := os.Getenv("PLSTREAM_TEMPORAL_TREND"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Stream.TemporalTrend = b
		}
	}
	if v := os.Getenv("PLSTREAM_VECTOR_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Model.VectorSize = n
		}
	}
	if v := os.Getenv("PLSTREAM_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PLSTREAM_SNAPSHOT_PATH"); v != "" {
		cfg.Storage.SnapshotPath = v
	}
	if v := os.Getenv("PLSTREAM_RUN_DB_PATH"); v != "" {
		cfg.Storage.RunDBPath = v
	}
}

func (c *Config) validate() error {
	if c.Model.VectorSize <= 0 {
		return fmt.Errorf("config: vector_size must be positive, got %d", c.Model.VectorSize)
	}
	if c.Stream.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be positive, got %d", c.Stream.BatchSize)
	}
	if c.Stream.Confidence < 0 {
		return fmt.Errorf("config: confidence must be non-negative, got %v", c.Stream.Confidence)
	}
	if c.Stream.MergeThreshold < 0 || c.Stream.MergeThreshold > 1 {
		return fmt.Errorf("config: merge_threshold must be in [0, 1], got %v", c.Stream.MergeThreshold)
	}
	return nil
}
