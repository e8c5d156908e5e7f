package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/copyleftdev/swarmlab/internal/logging"
	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
	"github.com/copyleftdev/swarmlab/internal/sandbox"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging logging.Config
	Sandbox struct {
		Algorithm      string  `env:"SANDBOX_ALGORITHM" envDefault:"cuckoo"`
		Landscape      string  `env:"SANDBOX_LANDSCAPE" envDefault:"ackley"`
		PopSize        int     `env:"SANDBOX_POP_SIZE" envDefault:"50"`
		Seed           uint32  `env:"SANDBOX_SEED" envDefault:"12345"`
		Epsilon        float64 `env:"SANDBOX_EPSILON" envDefault:"0.1"`
		MaxGenerations int     `env:"SANDBOX_MAX_GENERATIONS" envDefault:"0"`
		MaxSessions    int     `env:"SANDBOX_MAX_SESSIONS" envDefault:"64"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be served.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: HTTP_PORT must be in 1..65535, got %d", c.HTTP.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Sandbox.PopSize <= 0 {
		return fmt.Errorf("config: SANDBOX_POP_SIZE must be positive, got %d", c.Sandbox.PopSize)
	}
	if c.Sandbox.Epsilon < 0 {
		return fmt.Errorf("config: SANDBOX_EPSILON must be non-negative, got %v", c.Sandbox.Epsilon)
	}
	if c.Sandbox.MaxGenerations < 0 {
		return fmt.Errorf("config: SANDBOX_MAX_GENERATIONS must be non-negative, got %d", c.Sandbox.MaxGenerations)
	}
	if c.Sandbox.MaxSessions <= 0 {
		return fmt.Errorf("config: SANDBOX_MAX_SESSIONS must be positive, got %d", c.Sandbox.MaxSessions)
	}
	return nil
}

// SandboxSettings returns the settings new sessions start from.
func (c *Config) SandboxSettings() sandbox.Settings {
	s := sandbox.DefaultSettings()
	s.Algorithm = algorithm.ID(c.Sandbox.Algorithm)
	s.Landscape = landscape.ID(c.Sandbox.Landscape)
	s.Seed = c.Sandbox.Seed
	s.Epsilon = c.Sandbox.Epsilon
	s.MaxGenerations = c.Sandbox.MaxGenerations
	s.Algorithms.PopSize = c.Sandbox.PopSize
	return s
}
