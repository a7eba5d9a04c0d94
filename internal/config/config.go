package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/loader"
)

// Config represents the complete configuration for the cropkit application.
// It covers the editor geometry constants, the image loader's retry policy,
// output formatting and the session server, and supports loading from
// configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Editor geometry constants
	Editor EditorConfig `mapstructure:"editor" yaml:"editor" json:"editor"`

	// Image dimension loader
	Loader LoaderConfig `mapstructure:"loader" yaml:"loader" json:"loader"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// EditorConfig contains the geometry constants of an editing session.
type EditorConfig struct {
	MinZoom float64 `mapstructure:"min_zoom" yaml:"min_zoom" json:"min_zoom"`
	MaxZoom float64 `mapstructure:"max_zoom" yaml:"max_zoom" json:"max_zoom"`
	HitSlop float64 `mapstructure:"hit_slop" yaml:"hit_slop" json:"hit_slop"`
}

// LoaderConfig contains image dimension retrieval settings.
type LoaderConfig struct {
	MaxRetries   int `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	RetryDelayMs int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms" json:"retry_delay_ms"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains editor session server settings.
type ServerConfig struct {
	Host              string `mapstructure:"host" yaml:"host" json:"host"`
	Port              int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin        string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB       int64  `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	SessionTimeoutSec int    `mapstructure:"session_timeout_sec" yaml:"session_timeout_sec" json:"session_timeout_sec"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains request rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
}

// DefaultConfig returns a configuration populated with defaults.
func DefaultConfig() Config {
	editorDefaults := editor.DefaultOptions()
	loaderDefaults := loader.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Editor: EditorConfig{
			MinZoom: editorDefaults.MinZoom,
			MaxZoom: editorDefaults.MaxZoom,
			HitSlop: editorDefaults.HitSlop,
		},
		Loader: LoaderConfig{
			MaxRetries:   loaderDefaults.MaxRetries,
			RetryDelayMs: int(loaderDefaults.RetryDelay / time.Millisecond),
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			MaxUploadMB:       50,
			SessionTimeoutSec: 300,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				RequestsPerHour:   1000,
			},
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "yaml"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Editor.MinZoom <= 0 {
		return fmt.Errorf("invalid editor.min_zoom: %g (must be positive)", c.Editor.MinZoom)
	}
	if c.Editor.MaxZoom < c.Editor.MinZoom {
		return fmt.Errorf("invalid editor.max_zoom: %g (must be >= min_zoom %g)",
			c.Editor.MaxZoom, c.Editor.MinZoom)
	}
	if c.Editor.HitSlop <= 0 {
		return fmt.Errorf("invalid editor.hit_slop: %g (must be positive)", c.Editor.HitSlop)
	}

	if c.Loader.MaxRetries <= 0 {
		return fmt.Errorf("invalid loader.max_retries: %d (must be positive)", c.Loader.MaxRetries)
	}
	if c.Loader.RetryDelayMs < 0 {
		return fmt.Errorf("invalid loader.retry_delay_ms: %d (must not be negative)", c.Loader.RetryDelayMs)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.SessionTimeoutSec <= 0 {
		return fmt.Errorf("invalid session timeout: %d (must be positive)", c.Server.SessionTimeoutSec)
	}

	return nil
}

// ToEditorOptions converts the config to the editor's option struct.
func (c *Config) ToEditorOptions() editor.Options {
	return editor.Options{
		MinZoom: c.Editor.MinZoom,
		MaxZoom: c.Editor.MaxZoom,
		HitSlop: c.Editor.HitSlop,
	}
}

// ToLoaderConfig converts the config to the loader's config struct.
func (c *Config) ToLoaderConfig() loader.Config {
	return loader.Config{
		MaxRetries: c.Loader.MaxRetries,
		RetryDelay: time.Duration(c.Loader.RetryDelayMs) * time.Millisecond,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
