// Package config loads promptgate's configuration from an optional YAML
// file, environment variables, and documented defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptgate/promptgate/internal/gate"
	"github.com/promptgate/promptgate/internal/workflow"
)

type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Gate     GateConfig     `yaml:"gate"`
	Parallel ParallelConfig `yaml:"parallel"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EndpointConfig describes the inference endpoint. Temperature defaults to
// 0 for deterministic structured output.
type EndpointConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// GateConfig controls the confidence gate. A zero threshold means unset and
// falls back to the 0.7 default.
type GateConfig struct {
	Threshold  float64 `yaml:"threshold"`
	Comparison string  `yaml:"comparison"`
}

type ParallelConfig struct {
	FailurePolicy string `yaml:"failure_policy"`
}

type HistoryConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			BaseURL:        "http://localhost:11434/v1",
			APIKey:         "ollama",
			Model:          "deepseek-r1:1.5b",
			Temperature:    0,
			TimeoutSeconds: 45,
		},
		Gate: GateConfig{
			Threshold:  0.7,
			Comparison: string(gate.CompareGTE),
		},
		Parallel: ParallelConfig{
			FailurePolicy: string(workflow.FailFast),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path, falling back to defaults for
// anything unset. An empty path skips the file entirely. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Endpoint.BaseURL == "" {
		c.Endpoint.BaseURL = defaults.Endpoint.BaseURL
	}
	if c.Endpoint.APIKey == "" {
		c.Endpoint.APIKey = defaults.Endpoint.APIKey
	}
	if c.Endpoint.Model == "" {
		c.Endpoint.Model = defaults.Endpoint.Model
	}
	if c.Endpoint.TimeoutSeconds <= 0 {
		c.Endpoint.TimeoutSeconds = defaults.Endpoint.TimeoutSeconds
	}
	if c.Gate.Threshold == 0 {
		c.Gate.Threshold = defaults.Gate.Threshold
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PROMPTGATE_BASE_URL"); v != "" {
		c.Endpoint.BaseURL = v
	}
	if v := os.Getenv("PROMPTGATE_API_KEY"); v != "" {
		c.Endpoint.APIKey = v
	}
	if v := os.Getenv("PROMPTGATE_MODEL"); v != "" {
		c.Endpoint.Model = v
	}
}

func (c *Config) validate() error {
	if c.Gate.Threshold < 0 || c.Gate.Threshold > 1 {
		return fmt.Errorf("gate threshold %v outside [0, 1]", c.Gate.Threshold)
	}
	if _, err := gate.ParseComparison(c.Gate.Comparison); err != nil {
		return err
	}
	if _, err := workflow.ParseFailurePolicy(c.Parallel.FailurePolicy); err != nil {
		return err
	}
	return nil
}

// GatePolicy builds the configured confidence gate policy.
func (c *Config) GatePolicy() gate.Policy {
	comparison, _ := gate.ParseComparison(c.Gate.Comparison)
	return gate.Policy{Threshold: c.Gate.Threshold, Comparison: comparison}
}

// FailurePolicy builds the configured parallel failure policy.
func (c *Config) FailurePolicy() workflow.FailurePolicy {
	policy, _ := workflow.ParseFailurePolicy(c.Parallel.FailurePolicy)
	return policy
}

// Timeout is the endpoint timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Endpoint.TimeoutSeconds) * time.Second
}

// HistoryPath resolves the history database location, defaulting to
// ~/.promptgate/history.duckdb.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".promptgate", "history.duckdb"), nil
}
