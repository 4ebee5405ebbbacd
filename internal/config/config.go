// Package config defines the sourcetree configuration model and its
// loader. Settings come from a YAML file, environment variables and
// defaults, in that order of precedence.
package config

import "errors"

// Config is the top-level configuration struct for sourcetree.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Root    string        `mapstructure:"root"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	History HistoryConfig `mapstructure:"history"`
	Serve   ServeConfig   `mapstructure:"serve"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds tree metrics scan settings.
type MetricsConfig struct {
	Workers     int   `mapstructure:"workers"`
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// HistoryConfig holds commit walk and search settings.
type HistoryConfig struct {
	Limit       int  `mapstructure:"limit"`
	FirstParent bool `mapstructure:"first_parent"`
	MaxResults  int  `mapstructure:"max_results"`
	Lookahead   int  `mapstructure:"lookahead"`
}

// ServeConfig holds MCP server settings.
type ServeConfig struct {
	InstrumentAddr string `mapstructure:"instrument_addr"`
}

// Default values applied before any file or environment override.
const (
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultMetricsWorkers     = 0 // 0 means one worker per CPU
	DefaultMetricsMaxFileSize = 10 << 20
	DefaultHistoryLimit       = 50
	DefaultHistoryMaxResults  = 100
	DefaultHistoryLookahead   = 4
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidLogLevel indicates an unrecognized log level.
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
	// ErrInvalidLogFormat indicates an unrecognized log format.
	ErrInvalidLogFormat = errors.New("log.format must be text or json")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("metrics.workers must be non-negative")
	// ErrInvalidMaxFileSize indicates the file size cap is not positive.
	ErrInvalidMaxFileSize = errors.New("metrics.max_file_size must be positive")
	// ErrInvalidHistoryLimit indicates the history limit is negative.
	ErrInvalidHistoryLimit = errors.New("history.limit must be non-negative")
	// ErrInvalidMaxResults indicates the search result cap is negative.
	ErrInvalidMaxResults = errors.New("history.max_results must be non-negative")
	// ErrInvalidLookahead indicates the search lookahead is not positive.
	ErrInvalidLookahead = errors.New("history.lookahead must be positive")
)

// validLogLevels enumerates accepted log.level values.
var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if _, ok := validLogLevels[c.Log.Level]; !ok {
		return ErrInvalidLogLevel
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Metrics.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Metrics.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}

	if c.History.Limit < 0 {
		return ErrInvalidHistoryLimit
	}

	if c.History.MaxResults < 0 {
		return ErrInvalidMaxResults
	}

	if c.History.Lookahead <= 0 {
		return ErrInvalidLookahead
	}

	return nil
}
