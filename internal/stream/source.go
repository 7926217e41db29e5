// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the chunked streaming layer of parley: the chunk
// wire model, the newline-delimited network protocol, a timer-driven
// simulated source for tests and offline mode, and the completion client.
//
// Production code binds the consumer to NetworkSource; tests and offline
// mode bind the same consumer to SimulatedSource. Both satisfy Source.
package stream

import (
	"context"
	"sync"
)

// =============================================================================
// SOURCE INTERFACE
// =============================================================================

// Source produces a chunk sequence for one assistant response.
//
// Stream blocks until the sequence completes, fails, or ctx is cancelled.
// Cancellation is a silent stop: Stream returns nil, not ctx.Err(), so
// callers can distinguish a user abort from a genuine failure. Non-nil
// errors describe transport or protocol failures only.
type Source interface {
	Stream(ctx context.Context, onChunk Handler) error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// RELIABILITY: One in-flight stream per controller; starting a new stream
// first cancels the previous one so stale chunks can never interleave.

// Controller runs sources with start/cancel semantics. It owns at most one
// in-flight stream at a time.
type Controller struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewController creates an idle controller.
func NewController() *Controller {
	return &Controller{}
}

// Start cancels any in-flight stream, then runs src on a new goroutine.
// onChunk receives every chunk; done receives the terminal error (nil for
// normal completion or user cancellation) exactly once.
func (c *Controller) Start(src Source, onChunk Handler, done func(err error)) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go func() {
		err := src.Stream(ctx, onChunk)

		// Clear the cancel slot unless a newer stream replaced it.
		c.mu.Lock()
		if c.gen == gen {
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel()

		done(err)
	}()
}

// Cancel aborts the in-flight stream, if any. Safe to call when idle.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Active reports whether a stream is currently in flight.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}
