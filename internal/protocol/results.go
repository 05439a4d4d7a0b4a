// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package protocol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// StreamSummary is one line of the results-exchange payload: the
// emitting side's view of a single stream. "Bytes" is that side's
// direction-appropriate counter (bytes sent on the sending side, bytes
// received on the receiving side); the payload itself carries no
// direction, only the raw number. Peer summaries are not written back
// onto the local streams' counters; the engine only merges them by id
// for the final report.
type StreamSummary struct {
	ID          int
	Bytes       int64
	JitterMs    float64
	CntError    int64
	PacketCount int64
}

// EncodeResults renders a set of StreamSummary as the ASCII payload
// carried after the htonl(size) prefix: one line per stream,
// "<id>:<bytes>,<jitter>,<cnt_error>,<packet_count>\n".
func EncodeResults(summaries []StreamSummary) string {
	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "%d:%d,%s,%d,%d\n",
			s.ID, s.Bytes, strconv.FormatFloat(s.JitterMs, 'f', -1, 64),
			s.CntError, s.PacketCount)
	}
	return b.String()
}

// ParseResults parses the ASCII payload back into StreamSummary
// values. Malformed lines are skipped rather than aborting the whole
// parse, matching the tolerant-of-noise posture the parameter blob
// takes; a stream whose summary fails to parse simply
// never receives peer numbers, which is visible in the final report.
func ParseResults(payload string) []StreamSummary {
	var out []StreamSummary
	sc := bufio.NewScanner(strings.NewReader(payload))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		idPart, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Split(rest, ",")
		if len(fields) != 4 {
			continue
		}
		id, err1 := strconv.Atoi(idPart)
		bytesVal, err2 := strconv.ParseInt(fields[0], 10, 64)
		jitter, err3 := strconv.ParseFloat(fields[1], 64)
		cntErr, err4 := strconv.ParseInt(fields[2], 10, 64)
		pktCount, err5 := strconv.ParseInt(fields[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		out = append(out, StreamSummary{
			ID:          id,
			Bytes:       bytesVal,
			JitterMs:    jitter,
			CntError:    cntErr,
			PacketCount: pktCount,
		})
	}
	return out
}

// WriteResults writes htonl(size) followed by the encoded payload.
func WriteResults(w io.Writer, summaries []StreamSummary) error {
	payload := EncodeResults(summaries)
	if err := binary.Write(w, binary.BigEndian, uint32(len(payload))); err != nil {
		return fmt.Errorf("writing results size: %w", err)
	}
	if _, err := io.WriteString(w, payload); err != nil {
		return fmt.Errorf("writing results payload: %w", err)
	}
	return nil
}

// ReadResults reads the size-prefixed results payload and parses it.
func ReadResults(r io.Reader) ([]StreamSummary, error) {
	var size uint32
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return nil, fmt.Errorf("reading results size: %w", err)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading results payload: %w", err)
	}
	return ParseResults(string(buf)), nil
}
