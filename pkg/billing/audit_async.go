package billing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncAuditOptions controls buffering for the async audit writer.
type AsyncAuditOptions struct {
	BufferSize   int           // Max entries queued in memory before Insert rejects.
	WriteTimeout time.Duration // Per-entry storage timeout for the background worker.
}

// AsyncAuditWriter decouples audit persistence from the request path. The
// state mutation it records is already committed, so entries are written by
// a background worker detached from the caller's context; failures are
// escalated through the logger, never back to the mutation.
//
// AsyncAuditWriter implements AuditStore and wraps another AuditStore.
type AsyncAuditWriter struct {
	store   AuditStore
	log     *slog.Logger
	entries chan AuditEntry
	done    chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration

	// mu serializes Insert against Close: once Close holds the write lock
	// and flips closed, no further send can race the final drain, so every
	// entry Insert accepted is persisted.
	mu     sync.RWMutex
	closed bool
}

// NewAsyncAuditWriter starts the background worker. Close must be called to
// drain buffered entries on shutdown.
func NewAsyncAuditWriter(store AuditStore, log *slog.Logger, opts AsyncAuditOptions) *AsyncAuditWriter {
	if store == nil {
		panic("billing: audit store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	w := &AsyncAuditWriter{
		store:   store,
		log:     log,
		entries: make(chan AuditEntry, opts.BufferSize),
		done:    make(chan struct{}),
		timeout: opts.WriteTimeout,
	}

	w.wg.Add(1)
	go w.worker()

	return w
}

// Insert enqueues the entry without blocking. Returns ErrAuditWriterClosed
// after Close, or ErrAuditBufferFull when the buffer is saturated; the
// service treats either like any other audit failure and the committed
// mutation stands.
func (w *AsyncAuditWriter) Insert(_ context.Context, entry AuditEntry) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrAuditWriterClosed
	}

	select {
	case w.entries <- entry:
		return nil
	default:
		return ErrAuditBufferFull
	}
}

// Close stops accepting entries, waits for the worker, then drains anything
// still buffered. Returns ctx.Err if the context expires before the drain
// completes. The entries channel is never closed so a racing Insert can
// never panic on send.
func (w *AsyncAuditWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	alreadyClosed := w.closed
	w.closed = true
	w.mu.Unlock()

	if !alreadyClosed {
		close(w.done)
	}

	drained := make(chan struct{})
	go func() {
		w.wg.Wait()
		// The worker may exit between an Insert's closed check and its
		// send; with closed now set no further sends can happen, so one
		// final sweep empties the channel for good.
		w.drain()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AsyncAuditWriter) worker() {
	defer w.wg.Done()

	for {
		select {
		case entry := <-w.entries:
			w.write(entry)
		case <-w.done:
			w.drain()
			return
		}
	}
}

// drain writes buffered entries until the channel is empty.
func (w *AsyncAuditWriter) drain() {
	for {
		select {
		case entry := <-w.entries:
			w.write(entry)
		default:
			return
		}
	}
}

func (w *AsyncAuditWriter) write(entry AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.store.Insert(ctx, entry); err != nil {
		w.log.ErrorContext(ctx, "async billing audit write failed",
			"account_id", entry.AccountID, "provider_event_id", entry.ProviderEventID,
			"error", err)
	}
}
