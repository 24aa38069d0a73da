// Package config provides YAML configuration parsing for the rpcpoll CLI.
//
// This package enables running rpcpoll as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	endpoint: https://rpc.example.com
//	poll_interval: 10s
//	request_timeout: 5s
//	status_port: 8080
//
//	polls:
//	  - name: head block
//	    method: eth_blockNumber
//	  - name: peers
//	    method: net_peerCount
//	    interval: 30s
//	    limit: 10
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval for production
// configs. This prevents accidental DoS of RPC providers with overly
// aggressive polling.
const minPollInterval = 1 * time.Second

// Config is the root configuration structure for the rpcpoll CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Endpoint is the JSON-RPC HTTP endpoint all polls are issued against.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Endpoint string `yaml:"endpoint"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// RequestTimeout is the per-request timeout. Defaults to 30s.
	// Accepts duration strings like "10s", "1m", "500ms".
	RequestTimeout Duration `yaml:"request_timeout"`

	// PollInterval is the default time between polls for tasks that do
	// not set their own interval. Defaults to 10s.
	PollInterval Duration `yaml:"poll_interval"`

	// StatusPort is the port for the status HTTP API (latest results as
	// JSON plus an SSE stream). Zero disables the status server.
	StatusPort int `yaml:"status_port"`

	// Polls defines the poll tasks to run.
	Polls []PollConfig `yaml:"polls"`
}

// PollConfig defines a single recurring poll task.
type PollConfig struct {
	// Name is the display name used to key results.
	Name string `yaml:"name"`

	// Method is the JSON-RPC method to invoke.
	Method string `yaml:"method"`

	// Params is the parameter value sent with every call. Any YAML value
	// is accepted and encoded as JSON. Omit for parameterless methods.
	Params Params `yaml:"params"`

	// Interval is the custom polling interval for this task.
	// If not specified, uses the global poll_interval.
	// Must be between 1s and 1h.
	Interval Duration `yaml:"interval"`

	// Limit is the number of successful polls after which the task stops
	// itself. Zero means unbounded.
	Limit uint64 `yaml:"limit"`
}

// Params holds an arbitrary YAML value destined for JSON encoding.
//
// YAML mappings, sequences, and scalars are all accepted; yaml.v3 decodes
// them into types that encoding/json can marshal directly.
type Params struct {
	value any
}

// UnmarshalYAML implements yaml.Unmarshaler for Params.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	p.value = v
	return nil
}

// Value returns the decoded parameter value, or nil if none was set.
func (p Params) Value() any {
	return p.value
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Endpoint and Header values.
// Defaults are applied for PollInterval (10s) and RequestTimeout (30s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(10 * time.Second)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = Duration(30 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	expanded, err := expandEnvVars(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	c.Endpoint = expanded

	parsedURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("endpoint must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", parsedURL.Scheme)
	}

	for k, v := range c.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		c.Headers[k] = expanded
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.RequestTimeout.Duration() < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s", c.RequestTimeout.Duration())
	}

	if c.StatusPort != 0 && (c.StatusPort < 1 || c.StatusPort > 65535) {
		return fmt.Errorf("status_port must be between 1 and 65535, got %d", c.StatusPort)
	}

	if len(c.Polls) == 0 {
		return errors.New("at least one poll must be defined")
	}

	// poll names key results in the store, so they must be unique
	seen := make(map[string]struct{}, len(c.Polls))
	for i := range c.Polls {
		p := &c.Polls[i]

		if p.Name == "" {
			return fmt.Errorf("polls[%d]: name is required", i)
		}
		if _, exists := seen[p.Name]; exists {
			return fmt.Errorf("polls[%d]: duplicate poll name %q", i, p.Name)
		}
		seen[p.Name] = struct{}{}

		if p.Method == "" {
			return fmt.Errorf("polls[%d] (%s): method is required", i, p.Name)
		}

		if p.Interval != 0 {
			if p.Interval.Duration() < time.Second {
				return fmt.Errorf("polls[%d] (%s): interval must be at least 1s, got %s",
					i, p.Name, p.Interval.Duration())
			}
			if p.Interval.Duration() > time.Hour {
				return fmt.Errorf("polls[%d] (%s): interval must not exceed 1h, got %s",
					i, p.Name, p.Interval.Duration())
			}
		}
	}

	return nil
}
