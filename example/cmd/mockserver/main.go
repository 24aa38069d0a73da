// Standalone mock JSON-RPC server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/rpcpoll watch -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

func main() {
	fmt.Println("Mock JSON-RPC server starting on :9999")
	fmt.Println("Methods: eth_blockNumber, eth_gasPrice, net_peerCount")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var block atomic.Uint64
	block.Store(0x12_0000)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "eth_blockNumber":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"0x%x"}`, req.ID, block.Add(1))
		case "eth_gasPrice":
			// jitter around 20 gwei
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"0x%x"}`, req.ID, 4_000_000_000+rand.Intn(2_000_000_000))
		case "net_peerCount":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"0x%x"}`, req.ID, 20+rand.Intn(10))
		default:
			slog.Info("unknown method", "method", req.Method)
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
		}
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
