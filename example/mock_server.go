package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// StartMockRPCServer runs a mock JSON-RPC endpoint that answers
// eth_blockNumber with an increasing block number and net_peerCount with
// a fixed value. Call this in a goroutine before creating the client.
func StartMockRPCServer(addr string) {
	var block atomic.Uint64
	block.Store(0x10_0000)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var result string
		switch req.Method {
		case "eth_blockNumber":
			result = fmt.Sprintf("0x%x", block.Add(1))
		case "net_peerCount":
			result = "0x19"
		default:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%q}`, req.ID, result)
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server failed", "error", err)
	}
}
