package monitoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/types"
)

type fakeSink struct {
	mu      sync.Mutex
	batches [][]types.ErrorReport
	err     error
	block   chan struct{}
	sent    chan struct{}

	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeSink() *fakeSink {
	return &fakeSink{sent: make(chan struct{}, 16)}
}

func (s *fakeSink) ReportErrors(ctx context.Context, reports []types.ErrorReport) error {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxActive.Load()
		if n <= m || s.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	if s.block != nil {
		<-s.block
	}

	s.mu.Lock()
	err := s.err
	if err == nil {
		s.batches = append(s.batches, append([]types.ErrorReport(nil), reports...))
	}
	s.mu.Unlock()

	s.sent <- struct{}{}
	return err
}

func (s *fakeSink) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeSink) messages() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [][]string
	for _, batch := range s.batches {
		var msgs []string
		for _, r := range batch {
			msgs = append(msgs, r.Message)
		}
		out = append(out, msgs)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForSend(t *testing.T, sink *fakeSink) {
	t.Helper()
	select {
	case <-sink.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the monitor to flush")
	}
}

func TestFirstEntryIsFlushedImmediately(t *testing.T) {
	sink := newFakeSink()
	m := New(sink, discardLogger(), Options{FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	m.Capture(types.ErrorReport{Message: "first"})
	waitForSend(t, sink)

	got := sink.messages()
	if len(got) != 1 || len(got[0]) != 1 || got[0][0] != "first" {
		t.Fatalf("unexpected batches %v", got)
	}

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestEntriesAreBatchedUntilFlush(t *testing.T) {
	sink := newFakeSink()
	m := New(sink, discardLogger(), Options{FlushInterval: time.Hour})

	// no background loop: entries wait for an explicit flush
	m.Capture(types.ErrorReport{Message: "a"})
	m.Capture(types.ErrorReport{Message: "b"})
	m.Capture(types.ErrorReport{Message: "c"})

	if m.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", m.Pending())
	}

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := sink.messages()
	if len(got) != 1 || fmt.Sprint(got[0]) != "[a b c]" {
		t.Fatalf("unexpected batches %v", got)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d after flush", m.Pending())
	}
}

func TestFailedFlushIsRequeuedAtHead(t *testing.T) {
	sink := newFakeSink()
	sink.setErr(errors.New("api unavailable"))
	m := New(sink, discardLogger(), Options{FlushInterval: time.Hour})

	m.Capture(types.ErrorReport{Message: "a"})
	m.Capture(types.ErrorReport{Message: "b"})

	if err := m.Flush(context.Background()); err == nil {
		t.Fatal("expected the flush to fail")
	}
	<-sink.sent

	m.Capture(types.ErrorReport{Message: "c"})
	sink.setErr(nil)

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	<-sink.sent

	got := sink.messages()
	if len(got) != 1 || fmt.Sprint(got[0]) != "[a b c]" {
		t.Fatalf("expected the failed entries first, got %v", got)
	}
}

func TestQueueDropsOldestEntries(t *testing.T) {
	sink := newFakeSink()
	m := New(sink, discardLogger(), Options{FlushInterval: time.Hour, MaxQueue: 3})

	for _, msg := range []string{"1", "2", "3", "4", "5"} {
		m.Capture(types.ErrorReport{Message: msg})
	}
	if m.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", m.Pending())
	}

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := sink.messages(); fmt.Sprint(got[0]) != "[3 4 5]" {
		t.Errorf("expected the newest entries, got %v", got)
	}
}

func TestFlushesDoNotOverlap(t *testing.T) {
	sink := newFakeSink()
	sink.block = make(chan struct{})
	m := New(sink, discardLogger(), Options{FlushInterval: time.Hour})

	m.Capture(types.ErrorReport{Message: "a"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = m.Flush(context.Background())
	}()

	// wait until the first flush has taken the batch
	deadline := time.Now().Add(2 * time.Second)
	for sink.active.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first flush never started")
		}
		time.Sleep(time.Millisecond)
	}

	m.Capture(types.ErrorReport{Message: "b"})
	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("overlapping Flush returned %v", err)
	}
	if m.Pending() != 1 {
		t.Errorf("entry captured during a flush should stay buffered, Pending() = %d", m.Pending())
	}

	close(sink.block)
	wg.Wait()

	if sink.maxActive.Load() != 1 {
		t.Errorf("expected at most one concurrent flush, got %d", sink.maxActive.Load())
	}
}

func TestStopFlushesRemainingEntries(t *testing.T) {
	sink := newFakeSink()
	m := New(sink, discardLogger(), Options{FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	m.Capture(types.ErrorReport{Message: "a"})
	waitForSend(t, sink)

	m.Capture(types.ErrorReport{Message: "b"})
	waitForSend(t, sink)

	m.Capture(types.ErrorReport{Message: "c"})
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	var all []string
	for _, batch := range sink.messages() {
		all = append(all, batch...)
	}
	if fmt.Sprint(all) != "[a b c]" {
		t.Errorf("expected every entry to be reported, got %v", all)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d after Stop", m.Pending())
	}
}

func TestCaptureErrorIgnoresRequestErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	c := client.NewClient(server.URL, client.WithRetryPolicy(client.RetryPolicy{Timeout: time.Second}))

	sink := newFakeSink()
	m := New(sink, discardLogger(), Options{FlushInterval: time.Hour})

	_, badErr := c.Do(context.Background(), "/bad", client.RequestOptions{})
	m.CaptureError(badErr, "/cart", "req-1")
	if m.Pending() != 0 {
		t.Fatalf("a 400 response should not be captured")
	}

	_, unavailableErr := c.Do(context.Background(), "/down", client.RequestOptions{})
	m.CaptureError(unavailableErr, "/cart", "req-2")
	m.CaptureError(nil, "/cart", "req-3")

	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	sink.mu.Lock()
	report := sink.batches[0][0]
	sink.mu.Unlock()

	if report.Status != http.StatusServiceUnavailable || report.Kind != "http" || report.RequestID != "req-2" || report.Path != "/cart" {
		t.Errorf("unexpected report %+v", report)
	}
	if report.OccurredAt.IsZero() {
		t.Error("OccurredAt not set")
	}
}

func TestClientIsASink(t *testing.T) {
	var got atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/monitoring/errors" {
			got.Add(1)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	m := New(client.NewClient(server.URL), discardLogger(), Options{})
	m.Capture(types.ErrorReport{Message: "x"})

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got.Load() != 1 {
		t.Errorf("expected one report request, got %d", got.Load())
	}
}
