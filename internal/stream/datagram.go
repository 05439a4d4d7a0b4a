// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package stream

import (
	"fmt"
	"time"

	"github.com/nishisan-dev/flowbench/internal/protocol"
)

// datagramProtocol prefixes every packet with {seq, sec, usec} and
// tracks jitter (RFC 1889 EWMA) and loss/out-of-order counts on the
// receiving side.
type datagramProtocol struct{}

func (datagramProtocol) Send(s *Stream) (int, error) {
	if !s.pacer.ShouldSend() {
		return 0, nil
	}

	now := time.Now()
	h := protocol.DatagramHeader{
		Seq:  s.Datagram.sendSeq,
		Sec:  uint32(now.Unix()),
		Usec: uint32(now.Nanosecond() / 1000),
	}
	s.Datagram.sendSeq++
	h.Put(s.Buffer)

	n, err := s.Conn.Write(s.Buffer)
	if err != nil {
		return 0, fmt.Errorf("datagram send: %w", err)
	}
	return n, nil
}

func (datagramProtocol) Recv(s *Stream) (int, error) {
	n, err := s.Conn.Read(s.Buffer)
	if err != nil {
		return 0, nil
	}
	if n < protocol.DatagramHeaderSize {
		return n, nil
	}

	h := protocol.ParseDatagramHeader(s.Buffer)
	now := time.Now()
	arrival := float64(now.Unix()) + float64(now.Nanosecond())/1e9
	sent := float64(h.Sec) + float64(h.Usec)/1e6
	transit := arrival - sent

	d := s.Datagram
	d.PacketCount++

	if d.hasSeen {
		delta := transit - d.PrevTransit
		if delta < 0 {
			delta = -delta
		}
		d.Jitter += (delta - d.Jitter) / 16
	}
	d.PrevTransit = transit

	switch {
	case !d.hasSeen:
		d.hasSeen = true
		d.lastSeq = h.Seq
	case h.Seq == d.lastSeq+1:
		d.lastSeq = h.Seq
	case h.Seq > d.lastSeq:
		d.CntError += int64(h.Seq - d.lastSeq - 1)
		d.lastSeq = h.Seq
	default:
		d.OutOfOrderPackets++
	}

	return n, nil
}
