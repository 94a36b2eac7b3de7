// Package config provides configuration loading for promptforge.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	DB    DBConfig    `yaml:"db"`
	LLM   LLMConfig   `yaml:"llm"`
	Cache CacheConfig `yaml:"cache"`
}

// DBConfig configures the sqlite store.
type DBConfig struct {
	// Path is the sqlite database file.
	Path string `yaml:"path"`
}

// LLMConfig configures outbound model calls.
type LLMConfig struct {
	// CallTimeout caps a single completion request.
	CallTimeout time.Duration `yaml:"call_timeout"`
	// StageTimeout caps one improvement stage end to end.
	StageTimeout time.Duration `yaml:"stage_timeout"`
}

// CacheConfig configures the in-memory transform cache tier.
type CacheConfig struct {
	// MaxEntries bounds the memory tier. The sqlite tier is unbounded.
	MaxEntries int `yaml:"max_entries"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DB: DBConfig{
			Path: "data/promptforge.db",
		},
		LLM: LLMConfig{
			CallTimeout:  60 * time.Second,
			StageTimeout: 2 * time.Minute,
		},
		Cache: CacheConfig{
			MaxEntries: 256,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DB.Path == "" {
		return fmt.Errorf("db.path is required")
	}
	if c.LLM.CallTimeout <= 0 {
		return fmt.Errorf("llm.call_timeout must be positive")
	}
	if c.LLM.StageTimeout <= 0 {
		return fmt.Errorf("llm.stage_timeout must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	return nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
