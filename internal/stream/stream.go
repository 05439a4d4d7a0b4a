// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package stream implements the per-connection data-transfer object:
// owned send/receive buffer, counters, and protocol-specific
// send/receive behavior.
package stream

import (
	"math/rand"
	"net"
	"time"

	"github.com/nishisan-dev/flowbench/internal/pacer"
	"github.com/nishisan-dev/flowbench/internal/tcpinfo"
)

// State is the stream-local lifecycle state.
type State int

const (
	StateBegin State = iota
	StateRunning
	StateEnd
)

// Direction picks which of a Stream's counters a snapshot folds into
// an IntervalResult — bytes_transferred is direction-appropriate.
type Direction int

const (
	DirSend Direction = iota
	DirRecv
)

// Protocol is the per-protocol send/receive behavior, a tagged variant
// selected at stream creation rather than embedded dynamic dispatch:
// reliableProtocol or datagramProtocol.
type Protocol interface {
	// Send writes one block. Returns bytes written, or (0, nil) if the
	// pacer currently blocks the send (datagram only — never for
	// reliable-stream). A non-nil error is always fatal to the stream.
	Send(s *Stream) (int, error)

	// Recv reads up to one block. Returns bytes read, or (0, nil) if
	// nothing is currently available from a non-blocking read.
	Recv(s *Stream) (int, error)
}

// IntervalResult is one tick of the statistics pipeline for a stream.
type IntervalResult struct {
	BytesTransferred int64
	IntervalStart    time.Time
	IntervalEnd      time.Time
	IntervalDuration time.Duration
	TCPInfo          *tcpinfo.Info // nil unless reliable-stream diagnostics are enabled
}

// Result accumulates a stream's totals and interval history.
type Result struct {
	BytesSent     int64
	BytesReceived int64

	BytesSentThisInterval     int64
	BytesReceivedThisInterval int64

	StartTime time.Time
	EndTime   time.Time

	Intervals []IntervalResult

	lastIntervalEnd time.Time
}

// DatagramState is the per-datagram loss/jitter bookkeeping:
// packet_count, jitter (EWMA), prev_transit, cnt_error (lost),
// outoforder_packets.
type DatagramState struct {
	PacketCount       int64
	Jitter            float64 // seconds, RFC 1889 EWMA
	PrevTransit       float64 // seconds
	CntError          int64
	OutOfOrderPackets int64

	sendSeq uint32
	lastSeq uint32
	hasSeen bool
}

// Stream owns one data connection and its per-direction counters,
// send/receive buffer, and protocol-specific behavior.
type Stream struct {
	ID         int
	Conn       net.Conn
	LocalAddr  net.Addr
	RemoteAddr net.Addr

	BlockSize int
	Buffer    []byte // filled with pseudo-random bytes at creation

	Result   *Result
	Datagram *DatagramState // nil for reliable-stream

	State State

	proto Protocol
	pacer *pacer.Pacer

	diagnostics bool // reliable-stream TCP_INFO snapshot enabled (-T)
}

// New creates a Stream for conn. isDatagram selects the protocol
// variant; p is the rate pacer (nil disables pacing, always valid for
// reliable-stream).
func New(id int, conn net.Conn, blockSize int, isDatagram bool, p *pacer.Pacer, diagnostics bool) *Stream {
	buf := make([]byte, blockSize)
	fillRandom(buf)

	s := &Stream{
		ID:         id,
		Conn:       conn,
		LocalAddr:  conn.LocalAddr(),
		RemoteAddr: conn.RemoteAddr(),
		BlockSize:  blockSize,
		Buffer:     buf,
		Result: &Result{
			StartTime: time.Now(),
		},
		State:       StateBegin,
		pacer:       p,
		diagnostics: diagnostics,
	}
	s.Result.lastIntervalEnd = s.Result.StartTime

	if isDatagram {
		s.Datagram = &DatagramState{}
		s.proto = datagramProtocol{}
	} else {
		s.proto = reliableProtocol{}
	}
	return s
}

// fillRandom seeds a fresh PRNG from the current time on each call and
// fills buf; content is never validated, only size matters.
func fillRandom(buf []byte) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Read(buf)
}

// Send writes one block via the stream's protocol and, on success,
// advances the sent counters.
func (s *Stream) Send() (int, error) {
	n, err := s.proto.Send(s)
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.Result.BytesSent += int64(n)
		s.Result.BytesSentThisInterval += int64(n)
	}
	return n, nil
}

// Recv reads up to one block via the stream's protocol and, on
// success, advances the received counters.
func (s *Stream) Recv() (int, error) {
	n, err := s.proto.Recv(s)
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.Result.BytesReceived += int64(n)
		s.Result.BytesReceivedThisInterval += int64(n)
	}
	return n, nil
}

// Close releases the stream's data connection.
func (s *Stream) Close() error {
	s.Result.EndTime = time.Now()
	return s.Conn.Close()
}
