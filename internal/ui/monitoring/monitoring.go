// Package monitoring collects client-side errors from the web UI and reports them to the API in batches.
//
// A Monitor is created at startup and passed to the handlers that need it:
//
//	monitor := monitoring.New(apiClient, logger, monitoring.Options{FlushInterval: 10 * time.Second})
//	monitor.Start(ctx)
//	defer monitor.Stop(shutdownCtx)
//
// The first entry captured into an empty buffer is sent straight away; later entries are sent on the next tick.
package monitoring

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nickabs/shopfront/internal/ui/client"
	"github.com/nickabs/shopfront/internal/ui/types"
)

const (
	DefaultFlushInterval = 10 * time.Second
	DefaultMaxQueue      = 500
)

// Sink receives batches of error reports. *client.Client implements Sink.
type Sink interface {
	ReportErrors(ctx context.Context, reports []types.ErrorReport) error
}

type Options struct {
	FlushInterval time.Duration
	// MaxQueue bounds the number of unsent entries. When it is exceeded the oldest entries are dropped.
	MaxQueue int
}

type Monitor struct {
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	maxQueue int

	mu       sync.Mutex
	buffer   []types.ErrorReport
	flushing bool
	dropped  int

	trigger  chan struct{}
	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

func New(sink Sink, logger *slog.Logger, opts Options) *Monitor {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.MaxQueue <= 0 {
		opts.MaxQueue = DefaultMaxQueue
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		sink:     sink,
		logger:   logger.With(slog.String("component", "ui.monitoring")),
		interval: opts.FlushInterval,
		maxQueue: opts.MaxQueue,
		trigger:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the background flush loop until ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-m.trigger:
			_ = m.Flush(ctx)
		case <-ticker.C:
			_ = m.Flush(ctx)
		}
	}
}

// Stop ends the flush loop and makes a final attempt to send any buffered entries.
func (m *Monitor) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})

	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if started {
		select {
		case <-m.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return m.Flush(ctx)
}

// Capture buffers an error report.
func (m *Monitor) Capture(entry types.ErrorReport) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	m.mu.Lock()
	wasEmpty := len(m.buffer) == 0
	m.buffer = append(m.buffer, entry)
	m.trimLocked()
	m.mu.Unlock()

	if wasEmpty {
		select {
		case m.trigger <- struct{}{}:
		default:
		}
	}
}

// CaptureError records a failed API call. Only failures caused by the API being unavailable
// (network errors, timeouts, 5xx and 429 responses) are reported; request errors such as validation
// failures are the user's to fix and are ignored.
func (m *Monitor) CaptureError(err error, path, requestID string) {
	if err == nil {
		return
	}

	apiErr := client.AsApiError(err)
	if !apiErr.Temporary() {
		return
	}

	m.Capture(types.ErrorReport{
		Message:   apiErr.Message,
		Kind:      apiErr.Kind.String(),
		Status:    apiErr.Status,
		Path:      path,
		RequestID: requestID,
	})
}

// Flush sends the buffered entries to the sink. It is a no-op when the buffer is empty or another flush is in progress.
// Entries from a failed flush are put back at the head of the buffer.
func (m *Monitor) Flush(ctx context.Context) error {
	m.mu.Lock()
	if m.flushing || len(m.buffer) == 0 {
		m.mu.Unlock()
		return nil
	}
	m.flushing = true
	batch := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	err := m.sink.ReportErrors(ctx, batch)

	m.mu.Lock()
	m.flushing = false
	if err != nil {
		m.buffer = append(batch, m.buffer...)
		m.trimLocked()
	}
	dropped := m.dropped
	m.dropped = 0
	m.mu.Unlock()

	if dropped > 0 {
		m.logger.Warn("error monitor queue full, oldest entries dropped", slog.Int("dropped", dropped))
	}

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.logger.Warn("could not report errors to the API",
				slog.Int("entries", len(batch)),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	m.logger.Debug("reported errors to the API", slog.Int("entries", len(batch)))
	return nil
}

// Pending returns the number of buffered entries
func (m *Monitor) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}

func (m *Monitor) trimLocked() {
	if excess := len(m.buffer) - m.maxQueue; excess > 0 {
		m.buffer = append([]types.ErrorReport(nil), m.buffer[excess:]...)
		m.dropped += excess
	}
}
