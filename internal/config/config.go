// Package config loads previewcore's YAML configuration, grounded on the
// teacher's defaults-overlay pattern in internal/policy/config.go: start
// from DefaultConfig, then let a YAML file overwrite only the fields it
// specifies.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures the classifier's Bedrock call (C3/A4).
type LLMConfig struct {
	Region              string  `yaml:"region"`
	ModelID             string  `yaml:"model_id"`
	MaxTokens           int     `yaml:"max_tokens"`
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	CacheTTLSeconds     int     `yaml:"cache_ttl_seconds"`
}

// Timeout returns the LLM call timeout as a time.Duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the classifier cache TTL as a time.Duration.
func (c LLMConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// NarrationConfig configures the narration adapter (C9/A4).
type NarrationConfig struct {
	ModelID        string `yaml:"model_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the narration call timeout as a time.Duration.
func (c NarrationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolverConfig points the deterministic layer resolver (C6) at its data.
type ResolverConfig struct {
	RegulationDir string   `yaml:"regulation_dir"`
	TaxonomyDir   string   `yaml:"taxonomy_dir"`
	AlwaysReview  []string `yaml:"always_review"`
}

// CacheConfig configures the shared Redis tier used by both the
// classifier draft cache and the whole-preview result cache.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	ResultTTLSecs int    `yaml:"result_ttl_seconds"`
}

// ResultTTL returns the preview result cache TTL as a time.Duration.
func (c CacheConfig) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLSecs) * time.Second
}

// ServerConfig configures A2's HTTP surface.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// Config is the top-level previewcore configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Narration NarrationConfig `yaml:"narration"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
}

// DefaultConfig returns the built-in configuration matching a fresh
// checkout with no config.yaml present.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Region:              "us-east-1",
			ModelID:             "anthropic.claude-3-haiku-20240307-v1:0",
			MaxTokens:           600,
			TimeoutSeconds:      8,
			ConfidenceThreshold: 0.6,
			CacheTTLSeconds:     900,
		},
		Narration: NarrationConfig{
			ModelID:        "anthropic.claude-3-haiku-20240307-v1:0",
			TimeoutSeconds: 4,
			Enabled:        true,
		},
		Resolver: ResolverConfig{
			RegulationDir: "./data/regulations",
			TaxonomyDir:   "./data/taxonomy",
		},
		Cache: CacheConfig{
			RedisAddr:     "",
			ResultTTLSecs: 600,
		},
		Server: ServerConfig{
			ListenAddr:  ":8080",
			MetricsPath: "/metrics",
		},
	}
}

// EnvVar names the environment variable that overrides the config file
// path, matching A1's "PREVIEWCORE_CONFIG env var or --config flag"
// resolution order.
const EnvVar = "PREVIEWCORE_CONFIG"

// Load reads configuration from path, or from PREVIEWCORE_CONFIG, or
// falls back to ./config.yaml. A missing file yields defaults; an
// unreadable-but-present or malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		path = "./config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
