// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package engine

import (
	"time"

	"github.com/nishisan-dev/flowbench/internal/mux"
	"github.com/nishisan-dev/flowbench/internal/stream"
	"github.com/nishisan-dev/flowbench/internal/tcpinfo"
	"github.com/nishisan-dev/flowbench/internal/timer"
)

// pollTimeout matches the original's select()/poll() wait, 15 seconds
// (iperf_api.c); expiry is not fatal, it just iterates the loop so
// Cancel and the duration/byte-target checks get re-evaluated.
const pollTimeout = 15 * time.Second

// runDataLoop drives every stream through the RUNNING state until the
// duration or byte-target expires or Cancel fires. It is the single
// cooperative loop both client and server role drivers share (Design
// Note §9): one multiplexer wait per iteration instead of one
// blocking goroutine per stream.
func (t *Test) runDataLoop() error {
	t.startTime = time.Now()
	testTimer := timer.New(time.Duration(t.Params.Seconds) * time.Second)
	lastInterval := t.startTime

	fds := make(map[uintptr]*stream.Stream, len(t.Streams))
	var readFds, writeFds []uintptr
	for _, s := range t.Streams {
		fd, err := mux.FD(s.Conn)
		if err != nil {
			return wrapErr("resolving stream fd", err)
		}
		fds[fd] = s
		if t.isSender {
			writeFds = append(writeFds, fd)
		} else {
			readFds = append(readFds, fd)
		}
	}

	// Interval 0 means no interim reports; the final summary is still
	// produced once after the loop exits.
	interval := t.Interval
	reportInterim := interval > 0
	byteTarget := t.Params.Bytes

	for {
		if t.Cancel.Done() {
			return nil
		}
		if testTimer.Duration() > 0 && testTimer.Expired() {
			break
		}
		if byteTarget > 0 && t.totalBytes() >= byteTarget {
			break
		}

		readReady, writeReady, err := t.mux.Wait(readFds, writeFds, pollTimeout)
		if err != nil {
			return wrapErr("multiplexer wait", err)
		}

		if t.isSender {
			for fd := range writeReady {
				s := fds[fd]
				if _, err := s.Send(); err != nil {
					return wrapErr("stream send", err)
				}
			}
		} else {
			for fd := range readReady {
				s := fds[fd]
				if _, err := s.Recv(); err != nil {
					return wrapErr("stream recv", err)
				}
			}
		}

		if reportInterim {
			if now := time.Now(); now.Sub(lastInterval) >= interval {
				t.reportInterval(now)
				lastInterval = now
			}
		}
	}

	t.reportInterval(time.Now())
	return nil
}

// reportInterval snapshots every stream's interval counters, emits one
// report line per stream, and — when more than one stream is running —
// an aggregate SUM line for the same tick.
func (t *Test) reportInterval(now time.Time) {
	dir := stream.DirRecv
	if t.isSender {
		dir = stream.DirSend
	}

	var aggBytes int64
	var aggStart, aggEnd time.Time
	for _, s := range t.Streams {
		ir := s.Snapshot(now, dir, t.sampleDiagnostics(s))
		if t.Reporter != nil {
			t.Reporter.Interval(s.ID, t.startTime, ir)
		}
		aggBytes += ir.BytesTransferred
		aggStart, aggEnd = ir.IntervalStart, ir.IntervalEnd
	}

	if t.Reporter != nil && len(t.Streams) > 1 {
		t.Reporter.AggregateInterval(t.startTime, aggStart, aggEnd, aggBytes)
	}
}

// sampleDiagnostics reads TCP_INFO for a reliable stream when
// diagnostics are enabled; nil otherwise (datagram streams and
// platforms without TCP_INFO support both degrade silently).
func (t *Test) sampleDiagnostics(s *stream.Stream) *tcpinfo.Info {
	if !t.Diagnostics || t.Params.Datagram {
		return nil
	}
	fd, err := mux.FD(s.Conn)
	if err != nil {
		return nil
	}
	info, err := t.tcpinfoRdr.Read(fd)
	if err != nil {
		return nil
	}
	return info
}
