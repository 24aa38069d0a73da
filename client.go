package rpcpoll

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/juju/clock"

	"github.com/jpalmerr/rpcpoll/internal/jsonrpc"
)

const defaultPollInterval = 10 * time.Second

// Client is a JSON-RPC transport handle shared by one or more pollers.
//
// Client is created with [NewClient] and closed with [Client.Close].
// Pollers never hold a Client directly; they hold a [ClientRef] obtained
// from [Client.Weak], which stops resolving once the client is closed.
// This keeps the client's lifecycle in the hands of its owner: a running
// poller cannot keep a closed client alive.
type Client struct {
	transport    *jsonrpc.Client
	pollInterval time.Duration
	logger       *slog.Logger
	clk          clock.Clock
	closed       atomic.Bool
}

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	headers        map[string]string
	requestTimeout time.Duration
	pollInterval   time.Duration
	logger         *slog.Logger
	clk            clock.Clock
}

// ClientOption is a function that configures a [Client] during construction.
//
// ClientOption implements the functional options pattern. Options return
// an error if validation fails.
//
// Built-in options: [WithHTTPHeaders], [WithRequestTimeout],
// [WithDefaultPollInterval], [WithClientLogger], [WithClock].
type ClientOption func(*clientConfig) error

// WithHTTPHeaders sets custom HTTP headers sent with every request.
//
// Pairs are given as alternating key, value arguments:
//
//	rpcpoll.WithHTTPHeaders("Authorization", "Bearer token")
//
// Returns an error if an odd number of arguments is given.
func WithHTTPHeaders(pairs ...string) ClientOption {
	return func(cfg *clientConfig) error {
		if len(pairs)%2 != 0 {
			return errors.New("headers must be key-value pairs")
		}
		if cfg.headers == nil {
			cfg.headers = make(map[string]string, len(pairs)/2)
		}
		for i := 0; i < len(pairs); i += 2 {
			cfg.headers[pairs[i]] = pairs[i+1]
		}
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout.
//
// Defaults to 30 seconds. A zero duration disables the timeout, in which
// case a hung call never completes its tick.
//
// Returns an error if the duration is negative.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return errors.New("request timeout must not be negative")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithDefaultPollInterval sets the poll interval that pollers created
// against this client inherit when they do not set their own.
//
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithDefaultPollInterval(d time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithClientLogger sets a custom [slog.Logger] used by pollers bound to
// this client. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the clock used to drive poll schedules.
//
// Defaults to [clock.WallClock]. Tests substitute a testclock to control
// tick timing deterministically.
//
// Returns an error if the clock is nil.
func WithClock(clk clock.Clock) ClientOption {
	return func(cfg *clientConfig) error {
		if clk == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clk = clk
		return nil
	}
}

// NewClient creates a new [Client] that sends JSON-RPC requests to endpoint.
//
// Example:
//
//	client, err := rpcpoll.NewClient("https://rpc.example.com",
//	    rpcpoll.WithDefaultPollInterval(5*time.Second),
//	    rpcpoll.WithRequestTimeout(10*time.Second),
//	)
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	cfg := &clientConfig{
		requestTimeout: 30 * time.Second,
		pollInterval:   defaultPollInterval,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := cfg.clk
	if clk == nil {
		clk = clock.WallClock
	}

	return &Client{
		transport: jsonrpc.NewClient(jsonrpc.Config{
			Endpoint: endpoint,
			Headers:  cfg.headers,
			Timeout:  cfg.requestTimeout,
		}),
		pollInterval: cfg.pollInterval,
		logger:       logger,
		clk:          clk,
	}, nil
}

// Request issues a single JSON-RPC call and returns the raw result.
//
// params must be pre-encoded JSON, or nil for methods without parameters.
// Returns [ErrClientUnavailable] if the client has been closed.
func (c *Client) Request(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	if c.closed.Load() {
		return nil, ErrClientUnavailable
	}
	return c.transport.Call(ctx, method, params)
}

// Weak returns a non-owning [ClientRef] for this client.
//
// The returned ref stops resolving as soon as [Client.Close] is called;
// it never keeps a closed client usable.
func (c *Client) Weak() *ClientRef {
	return &ClientRef{client: c}
}

// PollInterval returns the default poll interval for pollers bound to
// this client.
func (c *Client) PollInterval() time.Duration {
	return c.pollInterval
}

// Endpoint returns the URL this client sends requests to.
func (c *Client) Endpoint() string {
	return c.transport.Endpoint()
}

// Close marks the client closed and releases idle connections.
//
// After Close, every [ClientRef] derived from this client fails to
// resolve, so active pollers skip their remaining ticks rather than
// issuing requests against a dead transport. Close is idempotent.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.transport.Close()
}
