// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package protocol

import (
	"bytes"
	"testing"
)

func TestWriteReadState(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteState(&buf, StateTestRunning); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	got, err := ReadState(&buf)
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if got != StateTestRunning {
		t.Errorf("expected StateTestRunning, got %s", got)
	}
}

func TestReadState_Unknown(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xFE})
	if _, err := ReadState(buf); err == nil {
		t.Fatal("expected error for unknown state code")
	}
}

func TestCookie_RoundTrip(t *testing.T) {
	cookie, err := NewCookie()
	if err != nil {
		t.Fatalf("NewCookie: %v", err)
	}
	if len(cookie) != CookieSize {
		t.Fatalf("expected cookie length %d, got %d", CookieSize, len(cookie))
	}

	var buf bytes.Buffer
	if err := WriteCookie(&buf, cookie); err != nil {
		t.Fatalf("WriteCookie: %v", err)
	}
	got, err := ReadCookie(&buf)
	if err != nil {
		t.Fatalf("ReadCookie: %v", err)
	}
	if got != cookie {
		t.Errorf("expected cookie %q, got %q", cookie, got)
	}
}

func TestCookie_Unique(t *testing.T) {
	a, _ := NewCookie()
	b, _ := NewCookie()
	if a == b {
		t.Error("expected two distinct cookies")
	}
}

func TestParams_RoundTrip(t *testing.T) {
	p := Params{
		Datagram:   true,
		Streams:    4,
		Reverse:    true,
		WindowSize: 65536,
		RateBps:    1000000,
		MSS:        1400,
		NoDelay:    true,
		Bytes:      10485760,
		Seconds:    10,
		BlockSize:  8192,
	}

	var buf bytes.Buffer
	if err := WriteParams(&buf, p); err != nil {
		t.Fatalf("WriteParams: %v", err)
	}
	got, err := ReadParams(&buf)
	if err != nil {
		t.Fatalf("ReadParams: %v", err)
	}
	if got != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestParseParams_UnknownTokenTolerated(t *testing.T) {
	p := ParseParams("-u -P 2 -Z bogus -t 5")
	if !p.Datagram || p.Streams != 2 || p.Seconds != 5 {
		t.Errorf("unexpected parse result: %+v", p)
	}
}

func TestResults_RoundTrip(t *testing.T) {
	summaries := []StreamSummary{
		{ID: 1, Bytes: 123456, JitterMs: 0.42, CntError: 3, PacketCount: 1000},
		{ID: 2, Bytes: 654321, JitterMs: 0, CntError: 0, PacketCount: 2000},
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, summaries); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	got, err := ReadResults(&buf)
	if err != nil {
		t.Fatalf("ReadResults: %v", err)
	}
	if len(got) != len(summaries) {
		t.Fatalf("expected %d summaries, got %d", len(summaries), len(got))
	}
	for i := range summaries {
		if got[i] != summaries[i] {
			t.Errorf("summary %d mismatch: got %+v, want %+v", i, got[i], summaries[i])
		}
	}
}

func TestParseResults_SkipsMalformedLines(t *testing.T) {
	payload := "1:100,0.1,0,10\nnotaline\n2:200,0.2,1,20\n"
	got := ParseResults(payload)
	if len(got) != 2 {
		t.Fatalf("expected 2 valid summaries, got %d", len(got))
	}
}

func TestDatagramHeader_RoundTrip(t *testing.T) {
	h := DatagramHeader{Seq: 42, Sec: 1700000000, Usec: 123456}
	buf := make([]byte, DatagramHeaderSize)
	h.Put(buf)
	got := ParseDatagramHeader(buf)
	if got != h {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, h)
	}
}
