// Package config centralizes tunable pipeline settings. Values come from
// three layers, each overriding the previous: compiled defaults, a YAML file,
// and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the operational bounds of the query pipeline.
type Config struct {
	// MaxIterations caps reasoning loop rounds per query.
	MaxIterations int `yaml:"max_iterations"`
	// MaxConsecutiveToolErrors aborts the loop after this many tool
	// failures in a row.
	MaxConsecutiveToolErrors int `yaml:"max_consecutive_tool_errors"`
	// MaxErrors is the recoverable error budget of one event stream.
	// Exceeding it turns the next error fatal.
	MaxErrors int `yaml:"max_errors"`
	// EventBufferSize is the capacity of the stream event channel.
	EventBufferSize int `yaml:"event_buffer_size"`

	// LockTimeout bounds waiting for a user's memory lock.
	LockTimeout time.Duration `yaml:"lock_timeout"`
	// BackendTimeout bounds a single reasoning backend call.
	BackendTimeout time.Duration `yaml:"backend_timeout"`
	// ToolTimeout bounds a single tool execution.
	ToolTimeout time.Duration `yaml:"tool_timeout"`
	// SaveTimeout bounds the asynchronous memory save that runs after the
	// answer has been streamed.
	SaveTimeout time.Duration `yaml:"save_timeout"`

	// CacheTTL is the lifetime of a cached answer.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// CacheEnabled disables the answer cache entirely when false.
	CacheEnabled bool `yaml:"cache_enabled"`

	// TruncationMarker is appended to every clipped document, excerpt and
	// history turn in the reasoning context.
	TruncationMarker string `yaml:"truncation_marker"`

	// HistoryTurns is the number of trailing conversation turns included
	// in the reasoning context.
	HistoryTurns int `yaml:"history_turns"`
	// MaxDocumentChars clips each document in full-document mode.
	MaxDocumentChars int `yaml:"max_document_chars"`
	// MaxExcerptChars clips each document excerpt in excerpt mode.
	MaxExcerptChars int `yaml:"max_excerpt_chars"`
	// MaxTurnChars clips each history turn's content.
	MaxTurnChars int `yaml:"max_turn_chars"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		MaxIterations:            8,
		MaxConsecutiveToolErrors: 3,
		MaxErrors:                3,
		EventBufferSize:          64,
		LockTimeout:              2 * time.Second,
		BackendTimeout:           60 * time.Second,
		ToolTimeout:              30 * time.Second,
		SaveTimeout:              10 * time.Second,
		CacheTTL:                 15 * time.Minute,
		CacheEnabled:             true,
		TruncationMarker:         "…",
		HistoryTurns:             10,
		MaxDocumentChars:         1500,
		MaxExcerptChars:          300,
		MaxTurnChars:             500,
	}
}

// FromEnv returns the defaults overridden by JURICORE_* environment
// variables. Unparsable values fall back to the default silently; callers
// wanting stricter handling should use Load with a file.
func FromEnv() *Config {
	return mergeEnv(Default())
}

// Load reads a YAML config file layered over the defaults, then applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c = mergeEnv(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func mergeEnv(base *Config) *Config {
	c := *base
	c.MaxIterations = GetEnvInt("JURICORE_MAX_ITERATIONS", c.MaxIterations)
	c.MaxConsecutiveToolErrors = GetEnvInt("JURICORE_MAX_CONSECUTIVE_TOOL_ERRORS", c.MaxConsecutiveToolErrors)
	c.MaxErrors = GetEnvInt("JURICORE_MAX_ERRORS", c.MaxErrors)
	c.EventBufferSize = GetEnvInt("JURICORE_EVENT_BUFFER_SIZE", c.EventBufferSize)
	c.LockTimeout = GetEnvDuration("JURICORE_LOCK_TIMEOUT", c.LockTimeout)
	c.BackendTimeout = GetEnvDuration("JURICORE_BACKEND_TIMEOUT", c.BackendTimeout)
	c.ToolTimeout = GetEnvDuration("JURICORE_TOOL_TIMEOUT", c.ToolTimeout)
	c.SaveTimeout = GetEnvDuration("JURICORE_SAVE_TIMEOUT", c.SaveTimeout)
	c.CacheTTL = GetEnvDuration("JURICORE_CACHE_TTL", c.CacheTTL)
	c.CacheEnabled = GetEnvBool("JURICORE_CACHE_ENABLED", c.CacheEnabled)
	c.TruncationMarker = GetEnv("JURICORE_TRUNCATION_MARKER", c.TruncationMarker)
	c.HistoryTurns = GetEnvInt("JURICORE_HISTORY_TURNS", c.HistoryTurns)
	c.MaxDocumentChars = GetEnvInt("JURICORE_MAX_DOCUMENT_CHARS", c.MaxDocumentChars)
	c.MaxExcerptChars = GetEnvInt("JURICORE_MAX_EXCERPT_CHARS", c.MaxExcerptChars)
	c.MaxTurnChars = GetEnvInt("JURICORE_MAX_TURN_CHARS", c.MaxTurnChars)
	return &c
}

// Validate rejects configurations that would stall or livelock the pipeline.
func (c *Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.MaxConsecutiveToolErrors < 1 {
		return fmt.Errorf("max_consecutive_tool_errors must be at least 1, got %d", c.MaxConsecutiveToolErrors)
	}
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}
	if c.EventBufferSize < 1 {
		return fmt.Errorf("event_buffer_size must be at least 1, got %d", c.EventBufferSize)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("lock_timeout must be positive, got %s", c.LockTimeout)
	}
	if c.HistoryTurns < 0 {
		return fmt.Errorf("history_turns must not be negative, got %d", c.HistoryTurns)
	}
	return nil
}
