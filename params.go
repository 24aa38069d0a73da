package rpcpoll

import (
	"encoding/json"
	"fmt"
	"sync"
)

// paramsOnce serializes call parameters at most once per poller instance.
//
// The zero-value-like construction via newParamsOnce starts in the typed
// state; the first successful get encodes the value and transitions
// irreversibly to the encoded state, so every later tick returns the
// cached bytes without touching the encoder again. An encode failure
// leaves the state untouched, which means it recurs on every tick until
// the poller is stopped.
//
// get is safe for concurrent use: ticks may overlap when call latency
// exceeds the poll interval.
type paramsOnce struct {
	mu      sync.Mutex
	typed   any
	encoded json.RawMessage
	done    bool
}

// newParamsOnce creates a paramsOnce in the typed state.
//
// A nil value is treated as "no parameters": get returns nil bytes and
// the transition to the encoded state still happens exactly once.
func newParamsOnce(v any) *paramsOnce {
	return &paramsOnce{typed: v}
}

// get returns the encoded parameters, encoding the typed value on first use.
func (p *paramsOnce) get() (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return p.encoded, nil
	}

	if p.typed == nil {
		p.encoded = nil
		p.done = true
		return nil, nil
	}

	encoded, err := json.Marshal(p.typed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	p.encoded = encoded
	p.done = true
	p.typed = nil // typed value is no longer needed
	return p.encoded, nil
}

// encodedState reports whether the irreversible transition has happened.
func (p *paramsOnce) encodedState() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
