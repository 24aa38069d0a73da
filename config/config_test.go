package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
endpoint: https://rpc.example.com
polls:
  - name: head block
    method: eth_blockNumber
`

// TestParse_Defaults verifies that omitted global settings receive their
// documented defaults.
func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if got := cfg.PollInterval.Duration(); got != 10*time.Second {
		t.Errorf("poll_interval default = %v, want 10s", got)
	}
	if got := cfg.RequestTimeout.Duration(); got != 30*time.Second {
		t.Errorf("request_timeout default = %v, want 30s", got)
	}
	if cfg.StatusPort != 0 {
		t.Errorf("status_port default = %d, want 0 (disabled)", cfg.StatusPort)
	}
}

// TestParse_FullConfig verifies that every field round-trips from YAML.
func TestParse_FullConfig(t *testing.T) {
	yaml := `
endpoint: https://rpc.example.com
poll_interval: 15s
request_timeout: 5s
status_port: 8080
headers:
  X-Custom: value
polls:
  - name: head block
    method: eth_blockNumber
  - name: balance
    method: eth_getBalance
    params: ["0xabc", "latest"]
    interval: 30s
    limit: 10
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.Endpoint != "https://rpc.example.com" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}
	if got := cfg.PollInterval.Duration(); got != 15*time.Second {
		t.Errorf("poll_interval = %v, want 15s", got)
	}
	if got := cfg.RequestTimeout.Duration(); got != 5*time.Second {
		t.Errorf("request_timeout = %v, want 5s", got)
	}
	if cfg.StatusPort != 8080 {
		t.Errorf("status_port = %d, want 8080", cfg.StatusPort)
	}
	if got := cfg.Headers["X-Custom"]; got != "value" {
		t.Errorf("headers[X-Custom] = %q, want value", got)
	}
	if len(cfg.Polls) != 2 {
		t.Fatalf("got %d polls, want 2", len(cfg.Polls))
	}

	balance := cfg.Polls[1]
	if balance.Method != "eth_getBalance" {
		t.Errorf("method = %q", balance.Method)
	}
	if got := balance.Interval.Duration(); got != 30*time.Second {
		t.Errorf("interval = %v, want 30s", got)
	}
	if balance.Limit != 10 {
		t.Errorf("limit = %d, want 10", balance.Limit)
	}

	params, ok := balance.Params.Value().([]any)
	if !ok {
		t.Fatalf("params type = %T, want a sequence", balance.Params.Value())
	}
	if len(params) != 2 || params[0] != "0xabc" || params[1] != "latest" {
		t.Errorf("params = %v, want [0xabc latest]", params)
	}

	if cfg.Polls[0].Params.Value() != nil {
		t.Errorf("omitted params = %v, want nil", cfg.Polls[0].Params.Value())
	}
}

// TestParse_ValidationErrors walks the validation rules with one bad
// config each.
func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing endpoint",
			yaml:    "polls:\n  - name: a\n    method: m",
			wantErr: "endpoint is required",
		},
		{
			name:    "endpoint without scheme",
			yaml:    "endpoint: rpc.example.com\npolls:\n  - name: a\n    method: m",
			wantErr: "scheme",
		},
		{
			name:    "endpoint with bad scheme",
			yaml:    "endpoint: ftp://rpc.example.com\npolls:\n  - name: a\n    method: m",
			wantErr: "http or https",
		},
		{
			name:    "poll interval too small",
			yaml:    "endpoint: https://x.com\npoll_interval: 100ms\npolls:\n  - name: a\n    method: m",
			wantErr: "poll_interval must be at least",
		},
		{
			name:    "invalid status port",
			yaml:    "endpoint: https://x.com\nstatus_port: 70000\npolls:\n  - name: a\n    method: m",
			wantErr: "status_port",
		},
		{
			name:    "no polls",
			yaml:    "endpoint: https://x.com",
			wantErr: "at least one poll",
		},
		{
			name:    "poll without name",
			yaml:    "endpoint: https://x.com\npolls:\n  - method: m",
			wantErr: "name is required",
		},
		{
			name:    "duplicate poll names",
			yaml:    "endpoint: https://x.com\npolls:\n  - name: a\n    method: m\n  - name: a\n    method: m",
			wantErr: "duplicate poll name",
		},
		{
			name:    "poll without method",
			yaml:    "endpoint: https://x.com\npolls:\n  - name: a",
			wantErr: "method is required",
		},
		{
			name:    "poll interval below minimum",
			yaml:    "endpoint: https://x.com\npolls:\n  - name: a\n    method: m\n    interval: 500ms",
			wantErr: "interval must be at least 1s",
		},
		{
			name:    "poll interval above maximum",
			yaml:    "endpoint: https://x.com\npolls:\n  - name: a\n    method: m\n    interval: 2h",
			wantErr: "interval must not exceed 1h",
		},
		{
			name:    "invalid duration string",
			yaml:    "endpoint: https://x.com\npoll_interval: soon\npolls:\n  - name: a\n    method: m",
			wantErr: "invalid duration",
		},
		{
			name:    "malformed yaml",
			yaml:    "endpoint: [unclosed",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestParse_EnvExpansion verifies ${VAR} and ${VAR:-default} substitution
// in endpoint and header values.
func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("RPCPOLL_TEST_HOST", "rpc.example.com")
	t.Setenv("RPCPOLL_TEST_TOKEN", "secret")

	yaml := `
endpoint: https://${RPCPOLL_TEST_HOST}
headers:
  Authorization: Bearer ${RPCPOLL_TEST_TOKEN}
  X-Region: ${RPCPOLL_TEST_UNSET:-eu-west-1}
polls:
  - name: a
    method: eth_blockNumber
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.Endpoint != "https://rpc.example.com" {
		t.Errorf("endpoint = %q, want the expanded host", cfg.Endpoint)
	}
	if got := cfg.Headers["Authorization"]; got != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", got)
	}
	if got := cfg.Headers["X-Region"]; got != "eu-west-1" {
		t.Errorf("X-Region = %q, want the default eu-west-1", got)
	}
}

// TestParse_EnvExpansionMissingVar verifies that an unset variable with no
// default is an error.
func TestParse_EnvExpansionMissingVar(t *testing.T) {
	yaml := `
endpoint: https://${RPCPOLL_TEST_DEFINITELY_UNSET}
polls:
  - name: a
    method: eth_blockNumber
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected an error for the unset variable")
	}
	if !strings.Contains(err.Error(), "RPCPOLL_TEST_DEFINITELY_UNSET") {
		t.Errorf("error = %q, want it to name the variable", err.Error())
	}
}

// TestLoad verifies reading a config from disk, including the missing-file
// error path.
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rpcpoll.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Endpoint != "https://rpc.example.com" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
