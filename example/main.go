package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jpalmerr/rpcpoll"
)

func main() {
	// start mock server (see mock_server.go)
	go StartMockRPCServer(":9999")
	time.Sleep(100 * time.Millisecond)

	client, err := rpcpoll.NewClient("http://localhost:9999",
		rpcpoll.WithDefaultPollInterval(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println()
	fmt.Println("rpcpoll demo: polling eth_blockNumber every 5s, 3 times")
	fmt.Println()

	poller := rpcpoll.NewPoller(client.Weak(), "eth_blockNumber", nil).
		WithLimit(3)

	sched, err := poller.Start(func(result json.RawMessage) {
		fmt.Printf("block: %s\n", result)
	})
	if err != nil {
		slog.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	// the schedule stops itself after the third success
	<-sched.Done()
	fmt.Printf("done after %d polls\n", sched.PollCount())
}
