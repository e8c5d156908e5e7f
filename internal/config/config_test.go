package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/swarmlab/internal/optimization/algorithm"
	"github.com/copyleftdev/swarmlab/internal/optimization/landscape"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 64, cfg.Sandbox.MaxSessions)

	s := cfg.SandboxSettings()
	assert.Equal(t, algorithm.CuckooID, s.Algorithm)
	assert.Equal(t, landscape.AckleyID, s.Landscape)
	assert.Equal(t, uint32(12345), s.Seed)
	assert.Equal(t, 0.1, s.Epsilon)
	assert.Equal(t, 0, s.MaxGenerations)
	assert.Equal(t, 50, s.Algorithms.PopSize)
	assert.Equal(t, 0.25, s.Algorithms.Cuckoo.Pa)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SANDBOX_ALGORITHM", "pso")
	t.Setenv("SANDBOX_LANDSCAPE", "rastrigin")
	t.Setenv("SANDBOX_POP_SIZE", "30")
	t.Setenv("SANDBOX_SEED", "7")
	t.Setenv("SANDBOX_EPSILON", "0.01")
	t.Setenv("SANDBOX_MAX_GENERATIONS", "500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Logging.Level, "non-development environments default to info")
	assert.Equal(t, "text", cfg.Logging.Format)

	s := cfg.SandboxSettings()
	assert.Equal(t, algorithm.PSOID, s.Algorithm)
	assert.Equal(t, landscape.RastriginID, s.Landscape)
	assert.Equal(t, 30, s.Algorithms.PopSize)
	assert.Equal(t, uint32(7), s.Seed)
	assert.Equal(t, 0.01, s.Epsilon)
	assert.Equal(t, 500, s.MaxGenerations)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port", "HTTP_PORT", "0"},
		{"log format", "LOG_FORMAT", "xml"},
		{"log level", "LOG_LEVEL", "chatty"},
		{"population", "SANDBOX_POP_SIZE", "0"},
		{"epsilon", "SANDBOX_EPSILON", "-0.5"},
		{"generations", "SANDBOX_MAX_GENERATIONS", "-1"},
		{"sessions", "SANDBOX_MAX_SESSIONS", "0"},
		{"unparsable", "SANDBOX_SEED", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
