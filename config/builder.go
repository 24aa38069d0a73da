package config

import (
	"sort"

	"github.com/jpalmerr/rpcpoll"
)

// Poll pairs a configured poll task name with its SDK poller.
type Poll struct {
	// Name is the task's display name, used to key results.
	Name string

	// Poller is the ready-to-start SDK poller.
	Poller *rpcpoll.Poller
}

// BuildClient converts a validated configuration into an SDK [rpcpoll.Client].
//
// Additional options (logger, clock) can be appended by the caller.
func BuildClient(cfg *Config, extra ...rpcpoll.ClientOption) (*rpcpoll.Client, error) {
	opts := []rpcpoll.ClientOption{
		rpcpoll.WithRequestTimeout(cfg.RequestTimeout.Duration()),
		rpcpoll.WithDefaultPollInterval(cfg.PollInterval.Duration()),
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, rpcpoll.WithHTTPHeaders(mapToKeyValuePairs(cfg.Headers)...))
	}

	opts = append(opts, extra...)
	return rpcpoll.NewClient(cfg.Endpoint, opts...)
}

// BuildPolls converts the configured poll tasks into SDK pollers bound to
// client through a non-owning ref. None of the returned pollers is
// started; the caller owns their lifecycle.
func BuildPolls(cfg *Config, client *rpcpoll.Client) []Poll {
	ref := client.Weak()

	polls := make([]Poll, 0, len(cfg.Polls))
	for _, pc := range cfg.Polls {
		poller := rpcpoll.NewPoller(ref, pc.Method, pc.Params.Value())
		if pc.Interval != 0 {
			poller.SetPollInterval(pc.Interval.Duration())
		}
		poller.SetLimit(pc.Limit)
		polls = append(polls, Poll{Name: pc.Name, Poller: poller})
	}
	return polls
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
