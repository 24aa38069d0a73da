// Package store provides in-memory storage for poll records.
//
// This package is internal to rpcpoll and keeps the latest record for
// each named poll task, with a publish-subscribe mechanism for pushing
// live updates to consumers such as the status server's SSE endpoint.
//
// The main components are:
//
//   - [Record]: the stored outcome of one poll task
//   - [Store]: the storage interface
//   - [MemoryStore]: thread-safe in-memory implementation with pub/sub
//
// Users of the rpcpoll library should not need to interact with this
// package directly; it backs the rpcpoll CLI.
package store
