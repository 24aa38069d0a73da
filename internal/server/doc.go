// Package server provides the HTTP status API for the rpcpoll CLI.
//
// This package is internal to rpcpoll. It serves the latest poll records
// as JSON and streams live updates via Server-Sent Events, backed by the
// internal/store package.
//
// Users of the rpcpoll library should not need to interact with this
// package directly; the rpcpoll CLI starts it when a status port is
// configured.
package server
