// Package jsonrpc provides the HTTP transport used by rpcpoll.
//
// This package is internal to rpcpoll and implements a minimal JSON-RPC 2.0
// client over HTTP POST. It handles request envelope construction, response
// decoding, and connection pooling.
//
// The main components are:
//
//   - [Client]: pooled HTTP client that issues JSON-RPC calls
//   - [Error]: a JSON-RPC error object returned by the remote server
//
// Users of the rpcpoll library should not need to interact with this
// package directly. Requests are issued through the main rpcpoll package.
package jsonrpc
