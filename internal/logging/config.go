package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config holds the configuration for the logger. It is read from the
// environment as part of the service configuration.
type Config struct {
	// Level is the minimum log level to output (debug, info, warn, error, fatal).
	// Empty means info.
	Level string `env:"LOG_LEVEL"`
	// Format is the output format (json, text)
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	// Output is stdout, stderr or a file path opened for appending.
	Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// Validate reports an unknown level or format.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	_, err := ParseFormat(c.Format)
	return err
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	output, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	return New(level, output).WithFormat(format), nil
}

// ParseFormat converts a case-insensitive format name. Empty means JSON.
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "", string(JSONFormat):
		return JSONFormat, nil
	case string(TextFormat):
		return TextFormat, nil
	default:
		return "", fmt.Errorf("logging: unknown format %q, want json or text", format)
	}
}

// ParseLevel converts a case-insensitive level name. Empty means info.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DebugLevel, nil
	case "", "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL":
		return FatalLevel, nil
	default:
		return "", fmt.Errorf("logging: unknown level %q", level)
	}
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: opening %s: %w", output, err)
		}
		return file, nil
	}
}
