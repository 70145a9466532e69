package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"league-standings-service/internal/logging"
	"league-standings-service/internal/metrics"
)

// ErrCoordinatorClosed is returned for operations submitted after Close.
var ErrCoordinatorClosed = errors.New("browser coordinator closed")

const defaultQueueDepth = 64

// Operation runs against the shared session while holding the queue slot.
type Operation func(ctx context.Context, s Session) (any, error)

type result struct {
	value any
	err   error
}

type task struct {
	label    string
	op       Operation
	ctx      context.Context
	enqueued time.Time
	done     chan result
}

// Coordinator serializes all automated-browsing operations against one
// shared session. A single worker drains a FIFO queue one operation at a
// time; the session is launched lazily on first use and reused while it
// reports itself connected. One failed operation never aborts the queue.
type Coordinator struct {
	launcher Launcher
	logger   *slog.Logger
	metrics  *metrics.Recorder

	queue    chan *task
	done     chan struct{}
	stopOnce sync.Once

	// session is owned by the worker goroutine.
	session Session
}

// NewCoordinator constructs a Coordinator and starts its worker.
func NewCoordinator(l Launcher, logger *slog.Logger, recorder *metrics.Recorder) *Coordinator {
	c := &Coordinator{
		launcher: l,
		logger:   logger,
		metrics:  recorder,
		queue:    make(chan *task, defaultQueueDepth),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

// Submit enqueues an operation and waits for its result. The label is
// observability-only; it is attached to every log line and metric for the
// operation. A caller abandoning its context stops waiting, but a dequeued
// operation always runs to completion and its result is discarded.
func (c *Coordinator) Submit(ctx context.Context, label string, op Operation) (any, error) {
	t := &task{
		label:    label,
		op:       op,
		ctx:      ctx,
		enqueued: time.Now(),
		done:     make(chan result, 1),
	}

	logging.Info(c.logger, "queue operation submitted", logging.FieldLabel, label)

	select {
	case c.queue <- t:
	case <-c.done:
		return nil, ErrCoordinatorClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-t.done:
		return r.value, r.err
	case <-c.done:
		return nil, ErrCoordinatorClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker and closes the session. Operations still queued
// fail with ErrCoordinatorClosed.
func (c *Coordinator) Close() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

func (c *Coordinator) run() {
	for {
		select {
		case <-c.done:
			c.closeSession()
			return
		case t := <-c.queue:
			c.execute(t)
		}
	}
}

func (c *Coordinator) execute(t *task) {
	wait := time.Since(t.enqueued)
	start := time.Now()

	s, err := c.ensureSession()
	var value any
	if err == nil {
		logging.Info(c.logger, "queue operation executing",
			logging.FieldLabel, t.label,
			"queue_wait_ms", wait.Milliseconds(),
		)
		value, err = t.op(t.ctx, s)
		if err != nil && !s.Connected() {
			// Session failure: drop it so the next operation relaunches.
			c.closeSession()
		}
	}

	exec := time.Since(start)
	c.metrics.RecordQueueOperation(t.label, wait, exec, err)
	if err != nil {
		logging.Error(c.logger, "queue operation failed", err,
			logging.FieldLabel, t.label,
			logging.FieldDurationMS, exec.Milliseconds(),
		)
	} else {
		logging.Info(c.logger, "queue operation completed",
			logging.FieldLabel, t.label,
			logging.FieldDurationMS, exec.Milliseconds(),
		)
	}

	t.done <- result{value: value, err: err}
}

func (c *Coordinator) ensureSession() (Session, error) {
	if c.session != nil {
		if c.session.Connected() {
			return c.session, nil
		}
		c.closeSession()
	}

	logging.Info(c.logger, "launching browser session")
	s, err := c.launcher.Launch()
	if err != nil {
		logging.Error(c.logger, "browser session launch failed", err)
		return nil, err
	}
	c.session = s
	return s, nil
}

func (c *Coordinator) closeSession() {
	if c.session == nil {
		return
	}
	if err := c.session.Close(); err != nil {
		logging.Warn(c.logger, "browser session close failed", "error", err)
	}
	c.session = nil
}
