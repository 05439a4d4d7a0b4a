// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package engine

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// CancelSignal is a cooperative cancellation channel polled by the
// engine's readiness multiplexer loop, replacing an interrupt-driven
// global flag: closing it is a single one-shot event every reader
// observes simultaneously.
type CancelSignal struct {
	ch   chan struct{}
	once sync.Once
}

func NewCancelSignal() *CancelSignal {
	return &CancelSignal{ch: make(chan struct{})}
}

// Cancel closes the channel; safe to call multiple times or
// concurrently.
func (c *CancelSignal) Cancel() {
	c.once.Do(func() { close(c.ch) })
}

// Done reports whether Cancel has been called.
func (c *CancelSignal) Done() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// C exposes the underlying channel for select statements.
func (c *CancelSignal) C() <-chan struct{} {
	return c.ch
}

// NotifyOnInterrupt arranges for SIGINT/SIGTERM to cancel c and
// returns a function that stops the notification.
func NotifyOnInterrupt(c *CancelSignal) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			c.Cancel()
		case <-c.ch:
		}
	}()
	return func() {
		signal.Stop(sigCh)
	}
}
