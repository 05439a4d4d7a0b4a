// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package stream

import (
	"time"

	"github.com/nishisan-dev/flowbench/internal/tcpinfo"
)

// Snapshot closes out the current interval: captures the bytes
// transferred in direction dir since the last snapshot, resets the
// interval counters, and returns the IntervalResult for the reporter.
// diag, when non-nil, carries a TCP_INFO sample for reliable streams.
func (s *Stream) Snapshot(now time.Time, dir Direction, diag *tcpinfo.Info) IntervalResult {
	r := s.Result

	var bytes int64
	switch dir {
	case DirSend:
		bytes = r.BytesSentThisInterval
	case DirRecv:
		bytes = r.BytesReceivedThisInterval
	}

	start := r.lastIntervalEnd
	ir := IntervalResult{
		BytesTransferred: bytes,
		IntervalStart:    start,
		IntervalEnd:      now,
		IntervalDuration: now.Sub(start),
		TCPInfo:          diag,
	}

	r.Intervals = append(r.Intervals, ir)
	r.lastIntervalEnd = now
	r.BytesSentThisInterval = 0
	r.BytesReceivedThisInterval = 0

	return ir
}
