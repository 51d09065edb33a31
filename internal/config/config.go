// Package config reads runtime settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file. Variables already set in the environment take precedence over
// the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds runtime settings.
type Config struct {
	LogLevel  string `env:"EMOJI_MCP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"EMOJI_MCP_LOG_FORMAT" envDefault:"console"`

	// Palette is a CSV file loaded at startup. Empty keeps the fallback palette.
	Palette string `env:"EMOJI_MCP_PALETTE"`

	GridWidth int `env:"EMOJI_MCP_GRID_WIDTH" envDefault:"32"`
	MaxSize   int `env:"EMOJI_MCP_MAX_SIZE" envDefault:"800"`
	Workers   int `env:"EMOJI_MCP_WORKERS" envDefault:"0"`
}

// Load reads the given .env files, ignoring ones that do not exist, and then
// parses the environment. With no files it looks for ".env" in the working
// directory.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses settings from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be console or json", c.LogFormat)
	}
	if c.GridWidth <= 0 {
		return fmt.Errorf("grid width must be positive, got %d", c.GridWidth)
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("max size must be positive, got %d", c.MaxSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Logger builds a zap logger writing to stderr at the configured level.
// Stdout is reserved for protocol and grid output.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = c.LogFormat
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if c.LogFormat == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zc.Build()
}
