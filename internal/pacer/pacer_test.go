// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package pacer

import (
	"testing"
	"time"
)

func TestPacer_NilWhenNoRate(t *testing.T) {
	p := New(0, 1000)
	if p != nil {
		t.Fatal("expected nil pacer when rate is unset")
	}
	if !p.ShouldSend() {
		t.Fatal("nil pacer must always permit a send")
	}
}

func TestPacer_GatesToTargetRate(t *testing.T) {
	// 8000 bits/s with 1000-byte blocks => Δ = 8*1000/8000 = 1s
	p := New(8000, 1000)
	if p == nil {
		t.Fatal("expected non-nil pacer")
	}
	if p.Period() != time.Second {
		t.Fatalf("expected period 1s, got %v", p.Period())
	}

	if !p.ShouldSend() {
		t.Fatal("first send should be permitted immediately (initial token)")
	}
	if p.ShouldSend() {
		t.Fatal("second immediate send should be blocked before Δ elapses")
	}
}

func TestPacer_ReArmsAfterPeriod(t *testing.T) {
	// Fast period for a quick test: 8*100/800 = 1s... use a higher rate.
	p := New(800000, 100) // Δ = 8*100/800000 = 1ms
	if !p.ShouldSend() {
		t.Fatal("expected initial send permitted")
	}
	time.Sleep(5 * time.Millisecond)
	if !p.ShouldSend() {
		t.Fatal("expected send permitted again after period elapsed")
	}
}
