// Package rpcpoll provides a lightweight SDK for polling JSON-RPC methods
// on a recurring timer.
//
// rpcpoll is designed as an SDK-first library: a [Client] owns the HTTP
// transport, and any number of [Poller] tasks borrow it through non-owning
// [ClientRef] handles. Each poller repeatedly invokes one method with a
// fixed set of parameters and forwards every successful response to a
// callback, stopping after an optional number of successes or on explicit
// stop.
//
// # Quick Start
//
// Poll eth_blockNumber every 5 seconds, 3 times:
//
//	client, _ := rpcpoll.NewClient("https://rpc.example.com")
//	defer client.Close()
//
//	poller := rpcpoll.NewPoller(client.Weak(), "eth_blockNumber", nil).
//	    WithPollInterval(5 * time.Second).
//	    WithLimit(3)
//
//	sched, err := poller.Start(func(result json.RawMessage) {
//	    fmt.Printf("block: %s\n", result)
//	})
//	if err != nil {
//	    return err
//	}
//	<-sched.Done() // closed after the third success
//
// # Failure Isolation
//
// A schedule keeps ticking through transient failures. Encoding errors,
// transport errors, and an unresolvable client ref each abort only the
// tick they occur in; they are logged and the timer keeps running. Only
// an explicit [Schedule.Stop] or the configured success limit clears the
// timer. A start against an already-closed client fails up front with
// [ErrClientUnavailable] and issues no requests.
//
// # Overlapping Ticks
//
// Ticks are issued on the timer regardless of whether earlier calls have
// completed. When call latency exceeds the poll interval, several calls
// are in flight at once and responses may arrive out of order. Handlers
// must tolerate this; rpcpoll favors this simplicity over a single-flight
// guarantee.
//
// # Architecture
//
// rpcpoll consists of several packages:
//
//   - rpcpoll (this package): Client, ClientRef, Poller, Schedule
//   - internal/jsonrpc: JSON-RPC 2.0 HTTP transport
//   - internal/store: in-memory poll records with pub/sub
//   - internal/server: status HTTP API with Server-Sent Events
//   - config: YAML configuration for the rpcpoll CLI
//
// The internal packages are not part of the public API and may change
// without notice.
package rpcpoll
