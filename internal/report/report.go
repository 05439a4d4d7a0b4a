// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package report renders the human-readable transcript: one line per
// stream per interval while RUNNING, and a final per-stream plus
// aggregate summary at DISPLAY_RESULTS. This is the only component
// that writes to stdout rather than the structured logger — it is the
// test's output, not diagnostic logging.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/nishisan-dev/flowbench/internal/stream"
	"github.com/nishisan-dev/flowbench/internal/units"
)

// Reporter renders interval and summary lines in the -f unit format.
type Reporter struct {
	out    io.Writer
	format byte
}

func New(out io.Writer, format byte) *Reporter {
	if !units.ValidFormat(format) {
		format = 'a'
	}
	return &Reporter{out: out, format: format}
}

// Interval renders one stream's tick during RUNNING. testStart anchors
// the interval's start/end offsets to the beginning of the test.
func (r *Reporter) Interval(streamID int, testStart time.Time, ir stream.IntervalResult) {
	secs := ir.IntervalDuration.Seconds()
	var bps int64
	if secs > 0 {
		bps = int64(float64(ir.BytesTransferred) / secs)
	}
	startOffset := ir.IntervalStart.Sub(testStart).Seconds()
	endOffset := ir.IntervalEnd.Sub(testStart).Seconds()
	fmt.Fprintf(r.out, "[%3d] %6.2f-%-6.2f sec  %-14s  %s\n",
		streamID,
		startOffset,
		endOffset,
		units.Format(ir.BytesTransferred, byte(upperOf(r.format))),
		units.Format(bps, r.format),
	)
}

// AggregateInterval renders the SUM line for one RUNNING tick, summing
// bytes_transferred across every stream for that interval. Callers
// only invoke this when there is more than one stream.
func (r *Reporter) AggregateInterval(testStart time.Time, start, end time.Time, totalBytes int64) {
	secs := end.Sub(start).Seconds()
	var bps int64
	if secs > 0 {
		bps = int64(float64(totalBytes) / secs)
	}
	startOffset := start.Sub(testStart).Seconds()
	endOffset := end.Sub(testStart).Seconds()
	fmt.Fprintf(r.out, "[SUM] %6.2f-%-6.2f sec  %-14s  %s\n",
		startOffset,
		endOffset,
		units.Format(totalBytes, byte(upperOf(r.format))),
		units.Format(bps, r.format),
	)
}

// StreamSummary renders one stream's DISPLAY_RESULTS line.
func (r *Reporter) StreamSummary(streamID int, totalBytes int64, duration time.Duration, datagram bool, d *stream.DatagramState) {
	secs := duration.Seconds()
	var bps int64
	if secs > 0 {
		bps = int64(float64(totalBytes) / secs)
	}

	line := fmt.Sprintf("[%3d] 0.00-%-6.2f sec  %-14s  %-14s",
		streamID, secs,
		units.Format(totalBytes, byte(upperOf(r.format))),
		units.Format(bps, r.format),
	)
	if datagram && d != nil {
		lossPct := 0.0
		total := d.PacketCount + d.CntError
		if total > 0 {
			lossPct = float64(d.CntError) / float64(total) * 100
		}
		line += fmt.Sprintf("  %.3f ms  %d/%d (%.1f%%)", d.Jitter*1000, d.CntError, total, lossPct)
	}
	fmt.Fprintln(r.out, line)
}

// AggregateSummary renders the SUM line across all streams.
func (r *Reporter) AggregateSummary(totalBytes int64, duration time.Duration) {
	secs := duration.Seconds()
	var bps int64
	if secs > 0 {
		bps = int64(float64(totalBytes) / secs)
	}
	fmt.Fprintf(r.out, "[SUM] 0.00-%-6.2f sec  %-14s  %-14s\n",
		secs,
		units.Format(totalBytes, byte(upperOf(r.format))),
		units.Format(bps, r.format),
	)
}

// upperOf returns the uppercase (Bytes/s) variant of a -f letter so
// byte totals and bitrates can share one format knob per iperf3
// convention; 'a'/'A' pass through unchanged (adaptive picks its own
// unit regardless of case).
func upperOf(format byte) byte {
	switch format {
	case 'k':
		return 'K'
	case 'm':
		return 'M'
	case 'g':
		return 'G'
	default:
		return format
	}
}
