package rpcpoll

// ClientRef is a non-owning handle to a [Client].
//
// A ClientRef never extends the client's lifetime: once the owner calls
// [Client.Close], resolution fails, including between two ticks of a
// running schedule. Every use site goes through an explicit
// resolve-or-fail step, which keeps liveness checking visible and
// testable instead of hiding it behind the handle.
type ClientRef struct {
	client *Client
}

// Resolve returns the underlying client, or false if the client has been
// closed or the ref was never bound.
func (r *ClientRef) Resolve() (*Client, bool) {
	if r == nil || r.client == nil || r.client.closed.Load() {
		return nil, false
	}
	return r.client, true
}
