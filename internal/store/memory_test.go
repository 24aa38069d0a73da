package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
)

func record(name string, count uint64) Record {
	return Record{
		Name:       name,
		Method:     "eth_blockNumber",
		Result:     json.RawMessage(`"0x1"`),
		Count:      count,
		ReceivedAt: time.Now(),
	}
}

// TestMemoryStore_UpdateAndGetAll verifies basic storage and retrieval.
func TestMemoryStore_UpdateAndGetAll(t *testing.T) {
	s := NewMemoryStore()

	if got := s.GetAll(); len(got) != 0 {
		t.Errorf("new store holds %d records, want 0", len(got))
	}

	s.Update(record("blocks", 1))
	s.Update(record("peers", 1))

	records := s.GetAll()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

// TestMemoryStore_UpdateReplacesByName verifies that records are keyed by
// poll name, with later updates replacing earlier ones.
func TestMemoryStore_UpdateReplacesByName(t *testing.T) {
	s := NewMemoryStore()

	s.Update(record("blocks", 1))
	s.Update(record("blocks", 2))

	records := s.GetAll()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Count != 2 {
		t.Errorf("count = %d, want the replacing record's 2", records[0].Count)
	}
}

// TestMemoryStore_SubscribeReceivesUpdates verifies that a subscriber sees
// every update published after it subscribed.
func TestMemoryStore_SubscribeReceivesUpdates(t *testing.T) {
	s := NewMemoryStore()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	s.Update(record("blocks", 1))

	select {
	case got := <-ch:
		if got.Name != "blocks" || got.Count != 1 {
			t.Errorf("received %+v, want the published record", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for the subscribed update")
	}
}

// TestMemoryStore_MultipleSubscribers verifies fan-out to every subscriber.
func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	s := NewMemoryStore()
	a := s.Subscribe()
	b := s.Subscribe()
	defer s.Unsubscribe(a)
	defer s.Unsubscribe(b)

	s.Update(record("blocks", 1))

	for i, ch := range []<-chan Record{a, b} {
		select {
		case got := <-ch:
			if got.Name != "blocks" {
				t.Errorf("subscriber %d received %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive the update", i)
		}
	}
}

// TestMemoryStore_UnsubscribeClosesChannel verifies that Unsubscribe closes
// the channel and tolerates repeated and unknown channels.
func TestMemoryStore_UnsubscribeClosesChannel(t *testing.T) {
	s := NewMemoryStore()
	ch := s.Subscribe()

	s.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Error("expected a closed channel after Unsubscribe")
	}

	s.Unsubscribe(ch)                     // repeated
	s.Unsubscribe(make(<-chan Record))    // unknown
	s.Update(record("blocks", 1))         // must not send to the removed channel
}

// TestMemoryStore_SlowSubscriberDoesNotBlock verifies that a subscriber
// with a full buffer never blocks Update.
func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewMemoryStore()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// more updates than the subscription buffer holds
		for i := 0; i < 250; i++ {
			s.Update(record("blocks", uint64(i)))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Update blocked on a slow subscriber")
	}
}

// TestMemoryStore_ConcurrentAccess exercises Update, GetAll, and the
// subscription lifecycle from many goroutines; run with -race.
func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			name := fmt.Sprintf("poll-%d", n)
			for j := 0; j < 100; j++ {
				s.Update(record(name, uint64(j)))
				_ = s.GetAll()
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := s.Subscribe()
			for j := 0; j < 50; j++ {
				select {
				case <-ch:
				default:
				}
			}
			s.Unsubscribe(ch)
		}()
	}
	wg.Wait()

	if got := len(s.GetAll()); got != 8 {
		t.Errorf("got %d records, want 8", got)
	}
}
