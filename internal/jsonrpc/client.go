package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when many
// pollers share one client
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// ErrNoResult indicates a JSON-RPC response that carried neither a result
// nor an error object.
var ErrNoResult = errors.New("JSON-RPC response has no result")

// Error is a JSON-RPC 2.0 error object returned by the remote server.
//
// Error implements the error interface so it can flow through the normal
// Go error paths. The Data field preserves any server-supplied detail
// payload for callers that want to inspect it.
type Error struct {
	// Code is the JSON-RPC error code (e.g., -32601 method not found).
	Code int `json:"code"`

	// Message is the short error description from the server.
	Message string `json:"message"`

	// Data contains optional additional error information.
	Data json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// request is the JSON-RPC 2.0 request envelope.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// response is the JSON-RPC 2.0 response envelope.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Config holds the construction parameters for a [Client].
type Config struct {
	// Endpoint is the HTTP URL requests are POSTed to.
	Endpoint string

	// Headers are custom HTTP headers sent with each request.
	Headers map[string]string

	// Timeout is the per-request timeout. Zero disables the timeout.
	Timeout time.Duration
}

// Client issues JSON-RPC 2.0 calls over HTTP POST.
//
// Client assigns monotonically increasing request ids and verifies that
// responses echo the id of the request they answer. Response bodies are
// limited to 1MB. The underlying HTTP client uses pooled connections, so
// a single Client can serve many concurrent pollers.
type Client struct {
	endpoint   string
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
	nextID     atomic.Uint64
}

// NewClient creates a new JSON-RPC [Client] from cfg.
//
// Timeouts are applied per-request via context rather than as a global
// client timeout, so a zero cfg.Timeout means requests only stop when
// their context does.
func NewClient(cfg Config) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		headers:  cfg.Headers,
		timeout:  cfg.Timeout,
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
	}
}

// Endpoint returns the URL this client sends requests to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call issues a single JSON-RPC request and returns the raw result.
//
// params must be pre-encoded JSON (or nil for methods without parameters).
// A server-reported error is returned as an [*Error]; a response with
// neither result nor error yields [ErrNoResult].
func (c *Client) Call(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := c.nextID.Add(1)
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if decoded.Error != nil {
		return nil, decoded.Error
	}
	if decoded.ID != id {
		return nil, fmt.Errorf("response id %d does not match request id %d", decoded.ID, id)
	}
	if len(decoded.Result) == 0 {
		return nil, ErrNoResult
	}

	return decoded.Result, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
