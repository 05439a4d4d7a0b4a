// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package engine is the control-channel state machine and data-loop
// driver: the Test aggregate, the client and server role loops, and
// the owned, ordered collection of Streams they drive. A single
// cooperative loop per role replaces a goroutine-per-connection model.
package engine

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/nishisan-dev/flowbench/internal/metrics"
	"github.com/nishisan-dev/flowbench/internal/mux"
	"github.com/nishisan-dev/flowbench/internal/pacer"
	"github.com/nishisan-dev/flowbench/internal/protocol"
	"github.com/nishisan-dev/flowbench/internal/report"
	"github.com/nishisan-dev/flowbench/internal/stream"
	"github.com/nishisan-dev/flowbench/internal/tcpinfo"
)

// Role distinguishes the two endpoints of a test.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// Test owns the control connection, the current protocol state, and
// the ordered collection of Streams for one test run. It is not
// shared across goroutines: the role loop that owns it never hands it
// to another goroutine.
type Test struct {
	Role    Role
	Cookie  string
	Params  protocol.Params
	Control net.Conn

	State State

	Streams []*stream.Stream

	Logger      *slog.Logger
	Reporter    *report.Reporter
	Cancel      *CancelSignal
	Interval    time.Duration
	Diagnostics bool

	mux         mux.Multiplexer
	tcpinfoRdr  tcpinfo.Reader
	startTime   time.Time
	isSender    bool // this side writes data (client unless Reverse, else server)
	nextStreamID int
}

// State is the control-channel state machine's current position,
// mirrored from protocol.State but scoped to the engine's driving
// logic.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateParamExchange
	StateCreatingStreams
	StateRunning
	StateExchangingResults
	StateDisplaying
	StateDone
)

// newTest builds the common Test scaffolding shared by client and
// server role constructors.
func newTest(role Role, logger *slog.Logger, cancel *CancelSignal) *Test {
	return &Test{
		Role:       role,
		State:      StateIdle,
		Logger:     logger.With("role", role.String()),
		Cancel:     cancel,
		mux:        newMultiplexer(),
		tcpinfoRdr: tcpinfo.NewReader(),
		nextStreamID: 1,
	}
}

// addStream wraps stream.New, assigning the Test's next sequential ID
// and registering it in the owned, ordered collection: an explicit
// slice instead of an intrusive linked list.
func (t *Test) addStream(conn net.Conn, rateBps int64) *stream.Stream {
	id := t.nextStreamID
	t.nextStreamID++

	var p *pacer.Pacer
	if t.Params.Datagram && rateBps > 0 {
		p = pacer.New(rateBps, t.Params.BlockSize)
	}

	s := stream.New(id, conn, t.Params.BlockSize, t.Params.Datagram, p, t.Diagnostics)
	t.Streams = append(t.Streams, s)
	metrics.ActiveStreams.Inc()
	return s
}

// closeStreams releases every data connection the Test owns.
func (t *Test) closeStreams() {
	for _, s := range t.Streams {
		s.Close()
		metrics.ActiveStreams.Dec()
	}
}

// totalBytes sums the direction-appropriate counter across all
// streams, used for the byte-target stop condition.
func (t *Test) totalBytes() int64 {
	var total int64
	for _, s := range t.Streams {
		if t.isSender {
			total += s.Result.BytesSent
		} else {
			total += s.Result.BytesReceived
		}
	}
	return total
}

func newMultiplexer() mux.Multiplexer {
	return mux.New()
}

// wrapErr is a small helper kept local to the package to avoid a
// proliferation of one-line fmt.Errorf wrappers at call sites.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("engine: %s: %w", op, err)
}
