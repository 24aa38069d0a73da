package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/rpcpoll/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// startServer starts a server on a free port and returns its base URL.
func startServer(t *testing.T, st store.Store) string {
	t.Helper()

	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := NewServer(st, port, testLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

// TestServer_PollsEndpoint verifies that /api/polls returns the stored
// records as JSON.
func TestServer_PollsEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	st.Update(store.Record{
		Name:       "blocks",
		Method:     "eth_blockNumber",
		Result:     json.RawMessage(`"0x10"`),
		Count:      4,
		ReceivedAt: time.Now(),
	})

	baseURL := startServer(t, st)

	resp, err := http.Get(baseURL + "/api/polls")
	if err != nil {
		t.Fatalf("GET /api/polls failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var records []store.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Name != "blocks" || records[0].Count != 4 {
		t.Errorf("record = %+v, want the stored blocks record", records[0])
	}
}

// TestServer_PollsMethodNotAllowed verifies non-GET requests are rejected.
func TestServer_PollsMethodNotAllowed(t *testing.T) {
	baseURL := startServer(t, store.NewMemoryStore())

	resp, err := http.Post(baseURL+"/api/polls", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /api/polls failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

// TestServer_SSEStreamsUpdates verifies the SSE endpoint: headers, the
// initial snapshot, and a live update published after connecting.
func TestServer_SSEStreamsUpdates(t *testing.T) {
	st := store.NewMemoryStore()
	st.Update(store.Record{Name: "initial", Method: "eth_blockNumber", Count: 1})

	baseURL := startServer(t, st)

	resp, err := http.Get(baseURL + "/api/sse")
	if err != nil {
		t.Fatalf("GET /api/sse failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	reader := bufio.NewReader(resp.Body)

	readEvent := func() store.Record {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("failed to read SSE stream: %v", err)
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var rec store.Record
			if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &rec); err != nil {
				t.Fatalf("failed to decode SSE event %q: %v", line, err)
			}
			return rec
		}
	}

	if got := readEvent(); got.Name != "initial" {
		t.Errorf("first event = %+v, want the initial snapshot record", got)
	}

	// a live update published after the subscription was established;
	// republished a few times because the subscription races with the
	// initial snapshot
	go func() {
		for i := 0; i < 40; i++ {
			st.Update(store.Record{Name: "live", Method: "net_peerCount", Count: 2})
			time.Sleep(50 * time.Millisecond)
		}
	}()

	for {
		got := readEvent()
		if got.Name == "live" {
			break
		}
		if got.Name != "initial" {
			t.Fatalf("unexpected event %+v", got)
		}
	}
}

// TestServer_StartPortInUse verifies that Start reports a bind failure
// synchronously.
func TestServer_StartPortInUse(t *testing.T) {
	port := freePort(t)
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		t.Fatalf("failed to occupy port: %v", err)
	}
	defer ln.Close()

	srv := NewServer(store.NewMemoryStore(), port, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err == nil {
		t.Fatal("expected Start to fail for an occupied port")
	}
}

// TestServer_ShutdownOnContextCancel verifies that cancelling the start
// context stops the server.
func TestServer_ShutdownOnContextCancel(t *testing.T) {
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())

	srv := NewServer(store.NewMemoryStore(), port, testLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	resp, err := http.Get(baseURL + "/api/polls")
	if err != nil {
		t.Fatalf("GET before shutdown failed: %v", err)
	}
	resp.Body.Close()

	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := http.Get(baseURL + "/api/polls"); err != nil {
			return // server is down
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server still reachable after context cancellation")
}
