package rpcpoll

import "errors"

var (
	// ErrClientUnavailable is returned by [Poller.Start] when the poller's
	// [ClientRef] cannot be resolved at start time. No request is issued
	// in that case.
	ErrClientUnavailable = errors.New("client is closed or unavailable")

	// ErrStreamingUnsupported is returned by [Poller.Stream]. Converting a
	// poller into a continuous stream is not offered; consume responses
	// through the handler passed to [Poller.Start] instead.
	ErrStreamingUnsupported = errors.New("stream conversion is not supported; use Start with a handler")
)
