package onboarding

import (
	"context"
	"sync"
)

// Coalescer owns the single "current attempt" slot. The remote store is known
// to fire several change notifications for one sync session; swapping in a
// fresh context after cancelling the previous one guarantees that at most one
// reconciliation pass and one convergence waiter are ever active.
type Coalescer struct {
	base context.Context

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// NewCoalescer derives every attempt context from base; cancelling base
// cancels whatever attempt is in flight.
func NewCoalescer(base context.Context) *Coalescer {
	return &Coalescer{base: base}
}

// Swap cancels the in-flight attempt, if any, and returns a fresh context for
// the next one. The cancellation happens before the new context is handed
// out, so the superseded attempt observes it at its next checkpoint.
func (c *Coalescer) Swap() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	ctx, cancel := context.WithCancel(c.base)
	if c.closed {
		cancel()
		return ctx
	}
	c.cancel = cancel
	return ctx
}

// Close cancels the current attempt and makes any future Swap return an
// already-cancelled context.
func (c *Coalescer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
