// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package engine

import (
	"encoding/json"
	"time"

	"github.com/nishisan-dev/flowbench/internal/metrics"
	"github.com/nishisan-dev/flowbench/internal/protocol"
)

// localSummaries converts this side's Streams into the wire format
// exchanged at EXCHANGE_RESULTS.
func (t *Test) localSummaries() []protocol.StreamSummary {
	summaries := make([]protocol.StreamSummary, 0, len(t.Streams))
	for _, s := range t.Streams {
		sum := protocol.StreamSummary{ID: s.ID}
		if t.isSender {
			sum.Bytes = s.Result.BytesSent
		} else {
			sum.Bytes = s.Result.BytesReceived
		}
		if s.Datagram != nil {
			sum.JitterMs = s.Datagram.Jitter * 1000
			sum.CntError = s.Datagram.CntError
			sum.PacketCount = s.Datagram.PacketCount
		}
		summaries = append(summaries, sum)

		direction := "sent"
		if !t.isSender {
			direction = "received"
		}
		metrics.BytesTransferred.WithLabelValues(t.Role.String(), direction).Add(float64(sum.Bytes))
		if s.Datagram != nil {
			metrics.StreamJitterSeconds.Observe(s.Datagram.Jitter)
		}
	}
	return summaries
}

// displayResults renders the DISPLAY_RESULTS transcript: one line per
// stream from whichever summary carries the transferred-byte count,
// plus the aggregate SUM line.
func (t *Test) displayResults(local, peer []protocol.StreamSummary) {
	if t.Reporter == nil {
		return
	}

	byID := make(map[int]protocol.StreamSummary, len(local)+len(peer))
	for _, s := range local {
		byID[s.ID] = s
	}
	for _, s := range peer {
		if existing, ok := byID[s.ID]; !ok || s.Bytes > existing.Bytes {
			byID[s.ID] = s
		}
	}

	duration := time.Since(t.startTime)
	var total int64
	for _, s := range t.Streams {
		sum, ok := byID[s.ID]
		if !ok {
			continue
		}
		total += sum.Bytes
		t.Reporter.StreamSummary(s.ID, sum.Bytes, duration, t.Params.Datagram, s.Datagram)
	}
	if len(t.Streams) > 1 {
		t.Reporter.AggregateSummary(total, duration)
	}
}

// resultsPayload builds the JSON blob archived to the optional
// results sink.
func (t *Test) resultsPayload(local, peer []protocol.StreamSummary) []byte {
	payload := struct {
		Cookie    string                     `json:"cookie"`
		Role      string                     `json:"role"`
		Datagram  bool                       `json:"datagram"`
		Streams   int                        `json:"streams"`
		Local     []protocol.StreamSummary   `json:"local"`
		Peer      []protocol.StreamSummary   `json:"peer"`
	}{
		Cookie:   t.Cookie,
		Role:     t.Role.String(),
		Datagram: t.Params.Datagram,
		Streams:  t.Params.Streams,
		Local:    local,
		Peer:     peer,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return []byte(`{"error":"marshal failed"}`)
	}
	return data
}
