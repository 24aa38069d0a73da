package store

import (
	"encoding/json"
	"time"
)

// Record represents the latest outcome of one poll task in storage.
//
// Record is the storage representation of a poll result, optimized for
// JSON serialization (used by the status API and SSE). It is decoupled
// from the SDK's types so the two can evolve independently.
type Record struct {
	// Name is the poll task's display name.
	Name string `json:"name"`

	// Method is the JSON-RPC method the task invokes.
	Method string `json:"method"`

	// Result is the raw JSON result of the most recent successful call.
	Result json.RawMessage `json:"result"`

	// Count is the number of successful polls so far.
	Count uint64 `json:"count"`

	// Stopped reports whether the task's schedule has stopped.
	Stopped bool `json:"stopped"`

	// ReceivedAt is the timestamp of the most recent update.
	ReceivedAt time.Time `json:"received_at"`
}

// Store defines the interface for storing and subscribing to poll records.
//
// Store implementations must be safe for concurrent access: records are
// written from tick goroutines, and ticks may overlap. The pub/sub
// mechanism allows live updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Update stores a record and notifies all subscribers.
	// Records are keyed by Name, so subsequent updates replace previous values.
	Update(record Record)

	// GetAll returns all currently stored records.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []Record

	// Subscribe returns a channel that receives record updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Record

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Record)
}
