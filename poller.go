package rpcpoll

import (
	"encoding/json"
	"math"
	"sync"
	"time"
)

// fallbackPollInterval is used when a poller is built against a client
// ref that is already unresolvable, so no configured interval exists.
const fallbackPollInterval = 7 * time.Second

// noLimit is the internal sentinel for an unbounded poller.
const noLimit = math.MaxUint64

// Poller is a builder for a recurring JSON-RPC poll task.
//
// A Poller repeatedly invokes a single method with a fixed set of
// parameters and forwards each successful response to a callback. By
// default this happens every 10 seconds with no limit on the number of
// successful polls; both are configurable.
//
// Configuration happens before [Poller.Start]; the running poll loop is
// represented by the returned [Schedule].
//
// Example, polling eth_blockNumber every 5 seconds for 10 responses:
//
//	client, _ := rpcpoll.NewClient("https://rpc.example.com")
//	defer client.Close()
//
//	poller := rpcpoll.NewPoller(client.Weak(), "eth_blockNumber", nil).
//	    WithPollInterval(5 * time.Second).
//	    WithLimit(10)
//
//	sched, err := poller.Start(func(result json.RawMessage) {
//	    fmt.Printf("block: %s\n", result)
//	})
//	if err != nil {
//	    return err
//	}
//	<-sched.Done()
type Poller struct {
	client       *ClientRef
	method       string
	params       *paramsOnce
	pollInterval time.Duration
	limit        uint64

	mu    sync.Mutex
	sched *Schedule
}

// NewPoller creates a new poll task builder.
//
// params is the typed parameter value sent with every request; it is
// encoded lazily, at most once, on the first tick. nil means the method
// takes no parameters.
//
// The poll interval defaults to the client's configured default when the
// ref resolves at construction time, and to a 7 second fallback when it
// does not.
func NewPoller(client *ClientRef, method string, params any) *Poller {
	pollInterval := fallbackPollInterval
	if c, ok := client.Resolve(); ok {
		pollInterval = c.PollInterval()
	}

	return &Poller{
		client:       client,
		method:       method,
		params:       newParamsOnce(params),
		pollInterval: pollInterval,
		limit:        noLimit,
	}
}

// Method returns the JSON-RPC method this poller invokes.
func (p *Poller) Method() string {
	return p.method
}

// Limit returns the limit on the number of successful polls.
// Zero means unbounded.
func (p *Poller) Limit() uint64 {
	if p.limit == noLimit {
		return 0
	}
	return p.limit
}

// SetLimit sets a limit on the number of successful polls.
// Zero means unbounded.
func (p *Poller) SetLimit(limit uint64) {
	if limit == 0 {
		p.limit = noLimit
		return
	}
	p.limit = limit
}

// WithLimit sets a limit on the number of successful polls.
func (p *Poller) WithLimit(limit uint64) *Poller {
	p.SetLimit(limit)
	return p
}

// PollInterval returns the duration between polls.
func (p *Poller) PollInterval() time.Duration {
	return p.pollInterval
}

// SetPollInterval sets the duration between polls.
// Non-positive durations are ignored.
func (p *Poller) SetPollInterval(pollInterval time.Duration) {
	if pollInterval <= 0 {
		return
	}
	p.pollInterval = pollInterval
}

// WithPollInterval sets the duration between polls.
func (p *Poller) WithPollInterval(pollInterval time.Duration) *Poller {
	p.SetPollInterval(pollInterval)
	return p
}

// Start begins polling with the given response handler.
//
// Start resolves the client ref; if it no longer resolves,
// [ErrClientUnavailable] is returned and zero requests are issued.
// Otherwise the first poll is issued immediately, the recurring timer is
// registered, and the running [Schedule] is returned.
//
// The handler receives the raw JSON result of each successful call. It
// is invoked from tick goroutines, and because ticks may overlap it must
// tolerate concurrent and out-of-order invocations. Handler panics are
// recovered and logged; they do not stop the schedule.
func (p *Poller) Start(handler func(json.RawMessage)) (*Schedule, error) {
	client, ok := p.client.Resolve()
	if !ok {
		return nil, ErrClientUnavailable
	}

	sched := &Schedule{
		client:   p.client,
		method:   p.method,
		params:   p.params,
		handler:  handler,
		interval: p.pollInterval,
		limit:    p.limit,
		clk:      client.clk,
		logger:   client.logger,
		done:     make(chan struct{}),
	}

	p.mu.Lock()
	p.sched = sched
	p.mu.Unlock()

	sched.start()
	return sched, nil
}

// Stop stops the schedule produced by [Poller.Start] before its limit is
// reached. Idempotent; safe to call before Start, in which case it is a
// no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	sched := p.sched
	p.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}
}

// Stream is not supported.
//
// Converting a poller into a continuous stream would require the poll
// loop to outlive the builder with unbounded buffering between them;
// rpcpoll deliberately keeps delivery push-based. Stream always returns
// a nil channel and [ErrStreamingUnsupported] so callers can degrade
// gracefully at the call site.
func (p *Poller) Stream() (<-chan json.RawMessage, error) {
	return nil, ErrStreamingUnsupported
}
