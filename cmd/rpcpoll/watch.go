package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/rpcpoll"
	"github.com/jpalmerr/rpcpoll/config"
	"github.com/jpalmerr/rpcpoll/internal/server"
	"github.com/jpalmerr/rpcpoll/internal/store"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// watchCmd runs the configured poll tasks until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the configured polls",
	Long: `Run all poll tasks from the configuration file.

Each task repeatedly invokes its JSON-RPC method at its interval and logs
every successful response. Tasks with a limit stop themselves after that
many successes; the command exits when every task has stopped, or when
interrupted (Ctrl+C) or sent SIGTERM.

When status_port is configured, the latest results are also served at
http://localhost:<port>/api/polls with an SSE stream at /api/sse.

Example:
  rpcpoll watch -c config.yaml
  rpcpoll watch --config /etc/rpcpoll/config.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"endpoint", cfg.Endpoint,
		"polls", len(cfg.Polls),
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	client, err := config.BuildClient(cfg, rpcpoll.WithClientLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	polls := config.BuildPolls(cfg, client)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recordStore := store.NewMemoryStore()

	if cfg.StatusPort != 0 {
		statusServer := server.NewServer(recordStore, cfg.StatusPort, logger)
		if err := statusServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
		logger.Info("status api available",
			"url", fmt.Sprintf("http://localhost:%d/api/polls", cfg.StatusPort),
		)
	}

	// start every poller; each handler publishes into the store
	var wg sync.WaitGroup
	for _, poll := range polls {
		name := poll.Name
		poller := poll.Poller

		// handlers run on tick goroutines, so the delivery counter is atomic
		var delivered atomic.Uint64
		sched, err := poller.Start(func(result json.RawMessage) {
			recordStore.Update(store.Record{
				Name:       name,
				Method:     poller.Method(),
				Result:     result,
				Count:      delivered.Add(1),
				ReceivedAt: time.Now(),
			})
			logger.Info("poll result",
				"poll", name,
				"method", poller.Method(),
				"result", string(result),
			)
		})
		if err != nil {
			return fmt.Errorf("failed to start poll %q: %w", name, err)
		}

		logger.Info("poll started",
			"poll", name,
			"method", poller.Method(),
			"interval", poller.PollInterval().String(),
			"limit", poller.Limit(),
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-sched.Done():
			case <-ctx.Done():
				sched.Stop()
			}

			// mark the task stopped in the store, keeping its last result
			final := store.Record{
				Name:       name,
				Method:     poller.Method(),
				Count:      sched.PollCount(),
				Stopped:    true,
				ReceivedAt: time.Now(),
			}
			for _, r := range recordStore.GetAll() {
				if r.Name == name {
					final.Result = r.Result
					break
				}
			}
			recordStore.Update(final)

			logger.Info("poll finished",
				"poll", name,
				"count", sched.PollCount(),
			)
		}()
	}

	// wait for all schedules to stop, then release the signal context so
	// a fully limited config exits without requiring an interrupt
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		<-done
	}

	logger.Info("rpcpoll stopped")
	return nil
}
