// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package pacer gates per-packet emission on datagram streams to hit
// a target rate.
package pacer

import (
	"time"

	"golang.org/x/time/rate"
)

// Pacer is a single-token-bucket rate limiter. With burst 1 it behaves
// exactly like a timer with period Δ = 8·blockSize/rateBps that is
// re-armed on every permitted send: Allow() returns true no more than
// once per Δ, and refills continuously in between calls.
type Pacer struct {
	limiter *rate.Limiter
	period  time.Duration
}

// New creates a Pacer targeting rateBitsPerSec bits/s for blocks of
// blockSize bytes. Returns nil if rateBitsPerSec <= 0 (no pacing —
// callers should treat a nil Pacer as "always send").
func New(rateBitsPerSec int64, blockSize int) *Pacer {
	if rateBitsPerSec <= 0 || blockSize <= 0 {
		return nil
	}
	period := time.Duration(float64(8*blockSize) / float64(rateBitsPerSec) * float64(time.Second))
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(period), 1),
		period:  period,
	}
}

// ShouldSend reports whether the pacer currently permits a send,
// consuming the token if so. A nil Pacer always permits a send.
func (p *Pacer) ShouldSend() bool {
	if p == nil {
		return true
	}
	return p.limiter.Allow()
}

// Period returns the configured inter-packet interval Δ.
func (p *Pacer) Period() time.Duration {
	if p == nil {
		return 0
	}
	return p.period
}
