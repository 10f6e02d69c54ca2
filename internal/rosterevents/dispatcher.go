package rosterevents

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const defaultQueueSize = 256

var (
	ErrQueueFull        = errors.New("roster event queue full")
	ErrDispatcherClosed = errors.New("roster event dispatcher closed")
)

// Dispatcher hands events to a single background worker so that writes never
// wait on the broker. Events are published in the order they were dispatched.
// A publish error, a full queue or a dispatch after Close is logged and
// reported to observe, never to the caller.
type Dispatcher struct {
	pub     Publisher
	log     *slog.Logger
	timeout time.Duration
	observe func(eventType string, err error)

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	done   chan struct{}
}

type queued struct {
	ctx context.Context
	e   Event
}

func NewDispatcher(pub Publisher, log *slog.Logger, observe func(eventType string, err error)) *Dispatcher {
	return newDispatcher(pub, log, observe, defaultQueueSize)
}

func newDispatcher(pub Publisher, log *slog.Logger, observe func(eventType string, err error), size int) *Dispatcher {
	if observe == nil {
		observe = func(string, error) {}
	}

	d := &Dispatcher{
		pub:     pub,
		log:     log,
		timeout: 2 * time.Second,
		observe: observe,
		queue:   make(chan queued, size),
		done:    make(chan struct{}),
	}

	if pub == nil {
		close(d.done)
		return d
	}

	go d.run()
	return d
}

// Dispatch enqueues e and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	if d == nil || d.pub == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.report(ctx, e, ErrDispatcherClosed)
		return
	}

	// the request may be finished by the time the broker answers
	select {
	case d.queue <- queued{ctx: context.WithoutCancel(ctx), e: e}:
	default:
		d.report(ctx, e, ErrQueueFull)
	}
}

// Close stops accepting events and waits for the queued ones to be published.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		if d.pub != nil {
			close(d.queue)
		}
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for q := range d.queue {
		d.publish(q.ctx, q.e)
	}
}

func (d *Dispatcher) publish(ctx context.Context, e Event) {
	pctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.report(ctx, e, d.pub.Publish(pctx, e))
}

func (d *Dispatcher) report(ctx context.Context, e Event, err error) {
	d.observe(e.Type, err)

	if err != nil {
		d.log.WarnContext(ctx, "roster event publish failed", "type", e.Type, "user_id", e.UserID, "err", err)
	}
}
