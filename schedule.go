package rpcpoll

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
)

// Schedule is a running poll loop produced by [Poller.Start].
//
// A Schedule owns the recurring timer and the success counter for one
// poller. It moves through exactly two states: scheduled (timer active)
// and stopped (timer cleared, no further ticks). The transition to
// stopped happens once, triggered by whichever of limit-reached or
// [Schedule.Stop] occurs first; nothing leaves the stopped state.
//
// Each timer firing launches its tick in its own goroutine, so a slow
// call never delays the timer. There is deliberately no single-flight
// guard: when call latency exceeds the poll interval, multiple ticks'
// calls are concurrently in flight and completions may arrive out of
// issuance order. Handlers must tolerate this.
//
// Stopping only prevents future ticks. Calls already in flight run to
// completion, and a completion that lands after Stop still invokes the
// handler and increments the poll count.
type Schedule struct {
	client   *ClientRef
	method   string
	params   *paramsOnce
	handler  func(json.RawMessage)
	interval time.Duration
	limit    uint64
	clk      clock.Clock
	logger   *slog.Logger

	mu        sync.Mutex
	pollCount uint64
	stopped   bool
	done      chan struct{}
}

// start fires the immediate first tick and begins the timer loop.
func (s *Schedule) start() {
	go s.tick()
	go s.loop()
}

// loop drives one tick per timer firing until the schedule is stopped.
func (s *Schedule) loop() {
	timer := s.clk.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-timer.Chan():
			go s.tick()
			timer.Reset(s.interval)
		}
	}
}

// tick performs one poll: resolve the client, fetch the encoded params,
// issue the request, and on success deliver the response.
//
// All per-tick failures are logged and isolated; none of them stops the
// schedule. A tick whose client ref no longer resolves is a no-op, but
// the timer keeps running: only Stop or the success limit clear it.
func (s *Schedule) tick() {
	client, ok := s.client.Resolve()
	if !ok {
		s.logger.Debug("client unavailable, skipping poll", "method", s.method)
		return
	}

	params, err := s.params.get()
	if err != nil {
		s.logger.Error("failed to encode poll params", "method", s.method, "error", err)
		return
	}

	result, err := client.Request(context.Background(), s.method, params)
	if err != nil {
		s.logger.Warn("poll request failed", "method", s.method, "error", err)
		return
	}

	// count is incremented only on success, before the handler runs, so
	// the limit check sees the delivery that reached it
	s.mu.Lock()
	s.pollCount++
	count := s.pollCount
	s.mu.Unlock()

	s.invokeHandlerSafe(result)

	if count >= s.limit {
		s.Stop()
	}
}

// invokeHandlerSafe calls the response handler with panic recovery.
// If the handler panics, the full stack trace is logged with a
// correlation ID and the schedule keeps running.
func (s *Schedule) invokeHandlerSafe(result json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("poll handler panicked",
				"correlation_id", correlationID,
				"method", s.method,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.handler(result)
}

// Stop clears the recurring timer and marks the schedule stopped.
//
// Stop is idempotent and safe to call from any goroutine, including from
// inside a handler. In-flight calls are left to complete; their results
// are still delivered, but no further ticks are scheduled.
func (s *Schedule) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
}

// Stopped reports whether the schedule has been stopped, either
// explicitly or by reaching its success limit.
func (s *Schedule) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// PollCount returns the number of successful polls so far.
//
// The count is monotonically non-decreasing and only moves on successful
// calls; failed ticks leave it untouched.
func (s *Schedule) PollCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollCount
}

// Done returns a channel that is closed when the schedule stops.
//
// Useful for waiting on a limited poller:
//
//	sched, _ := poller.Start(handler)
//	<-sched.Done()
func (s *Schedule) Done() <-chan struct{} {
	return s.done
}
