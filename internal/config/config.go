// Package config provides the probe's optional YAML configuration.
// It handles environment variable expansion, default value application,
// and endpoint validation. With no file at all the probe runs on Default().
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the node the probe targets when nothing overrides it.
const DefaultEndpoint = "http://localhost:8545"

// DefaultReportDir is where --json reports are written.
const DefaultReportDir = "reports"

// Config represents the configuration loaded from YAML.
type Config struct {
	Endpoint    string        `yaml:"endpoint"`               // JSON-RPC URL (supports ${VAR} env expansion)
	Timeout     time.Duration `yaml:"timeout,omitempty"`      // HTTP timeout per call; 0 disables it
	MetricsFile string        `yaml:"metrics_file,omitempty"` // Prometheus textfile output path
	ReportDir   string        `yaml:"report_dir,omitempty"`   // Directory for JSON reports
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Endpoint:  DefaultEndpoint,
		ReportDir: DefaultReportDir,
	}
}

// lowTimeout is the per-call timeout below which Warnings complains.
const lowTimeout = 500 * time.Millisecond

// Validate applies defaults and checks the endpoint URL. Suspicious but
// usable settings are left to Warnings.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.ReportDir == "" {
		c.ReportDir = DefaultReportDir
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	return ValidateEndpoint(c.Endpoint)
}

// Warnings lists settings that are valid but likely to cause failures.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Timeout > 0 && c.Timeout < lowTimeout {
		warnings = append(warnings, fmt.Sprintf("timeout is very low (%s); requests may fail under normal network jitter", c.Timeout))
	}
	return warnings
}

// ValidateEndpoint checks that endpoint is an absolute http or https URL.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q (missing scheme or host)", endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint scheme %q (expected http or https)", u.Scheme)
	}
	return nil
}

// Load reads and parses a YAML configuration file, expanding environment
// variables and validating the result.
//
// Environment variable expansion:
//
//	endpoint: ${NODE_RPC_URL} uses the NODE_RPC_URL environment variable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
