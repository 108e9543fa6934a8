package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the artifact client
// and CLI. The library never reads the environment directly; callers load a
// Config and pass its values on explicitly.
type Config struct {
	ServerURL string `env:"HYPHA_SERVER_URL"`
	Token     string `env:"HYPHA_TOKEN"`
	Workspace string `env:"HYPHA_WORKSPACE"`
	ClientID  string `env:"HYPHA_CLIENT_ID" envDefault:"hypha-artifact-cli"`
	LogLevel  string `env:"HYPHA_LOG_LEVEL" envDefault:"info"`

	// Transfer tuning.
	MultipartThreshold int64         `env:"HYPHA_MULTIPART_THRESHOLD" envDefault:"104857600"`
	ChunkSize          int64         `env:"HYPHA_CHUNK_SIZE" envDefault:"10485760"`
	MaxParallelUploads int           `env:"HYPHA_MAX_PARALLEL_UPLOADS" envDefault:"4"`
	HTTPTimeout        time.Duration `env:"HYPHA_HTTP_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.Workspace = strings.TrimSpace(cfg.Workspace)
	if cfg.MultipartThreshold <= 0 {
		cfg.MultipartThreshold = 100 * 1024 * 1024
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 10 * 1024 * 1024
	}
	if cfg.MaxParallelUploads <= 0 {
		cfg.MaxParallelUploads = 4
	}
	return cfg, nil
}

// Validate checks the fields every remote call needs.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("missing HYPHA_SERVER_URL environment variable")
	}
	if c.Token == "" {
		return fmt.Errorf("missing HYPHA_TOKEN environment variable")
	}
	if c.Workspace == "" {
		return fmt.Errorf("missing HYPHA_WORKSPACE environment variable")
	}
	return nil
}
