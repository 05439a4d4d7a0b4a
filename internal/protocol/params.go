// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package protocol

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Params is the subset of client CLI flags that travel to the server
// in the parameter blob.
type Params struct {
	Datagram   bool // -u
	Streams    int  // -P N
	Reverse    bool // -R
	WindowSize int  // -w BUF (bytes, 0 = unset)
	RateBps    int64 // -b RATE (bits/s, 0 = unset)
	MSS        int  // -m MSS
	NoDelay    bool // -N
	Bytes      int64 // -n BYTES
	Seconds    int  // -t SECS
	BlockSize  int  // -l BLKSIZE
}

// Encode renders Params as the space-separated token string the wire
// format carries (excluding the leading length byte).
func (p Params) Encode() string {
	var tokens []string
	if p.Datagram {
		tokens = append(tokens, "-u")
	} else {
		tokens = append(tokens, "-p")
	}
	if p.Streams > 0 {
		tokens = append(tokens, "-P", strconv.Itoa(p.Streams))
	}
	if p.Reverse {
		tokens = append(tokens, "-R")
	}
	if p.WindowSize > 0 {
		tokens = append(tokens, "-w", strconv.Itoa(p.WindowSize))
	}
	if p.RateBps > 0 {
		tokens = append(tokens, "-b", strconv.FormatInt(p.RateBps, 10))
	}
	if p.MSS > 0 {
		tokens = append(tokens, "-m", strconv.Itoa(p.MSS))
	}
	if p.NoDelay {
		tokens = append(tokens, "-N")
	}
	if p.Bytes > 0 {
		tokens = append(tokens, "-n", strconv.FormatInt(p.Bytes, 10))
	}
	if p.Seconds > 0 {
		tokens = append(tokens, "-t", strconv.Itoa(p.Seconds))
	}
	if p.BlockSize > 0 {
		tokens = append(tokens, "-l", strconv.Itoa(p.BlockSize))
	}
	return strings.Join(tokens, " ")
}

// ParseParams parses the space-separated token string back into
// Params. Unknown tokens are ignored for forward compatibility.
func ParseParams(s string) Params {
	var p Params
	fields := strings.Fields(s)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "-u":
			p.Datagram = true
		case "-p":
			p.Datagram = false
		case "-R":
			p.Reverse = true
		case "-N":
			p.NoDelay = true
		case "-P":
			if i+1 < len(fields) {
				i++
				p.Streams, _ = strconv.Atoi(fields[i])
			}
		case "-w":
			if i+1 < len(fields) {
				i++
				p.WindowSize, _ = strconv.Atoi(fields[i])
			}
		case "-b":
			if i+1 < len(fields) {
				i++
				p.RateBps, _ = strconv.ParseInt(fields[i], 10, 64)
			}
		case "-m":
			if i+1 < len(fields) {
				i++
				p.MSS, _ = strconv.Atoi(fields[i])
			}
		case "-n":
			if i+1 < len(fields) {
				i++
				p.Bytes, _ = strconv.ParseInt(fields[i], 10, 64)
			}
		case "-t":
			if i+1 < len(fields) {
				i++
				p.Seconds, _ = strconv.Atoi(fields[i])
			}
		case "-l":
			if i+1 < len(fields) {
				i++
				p.BlockSize, _ = strconv.Atoi(fields[i])
			}
		default:
			// unknown token, tolerated
		}
	}
	return p
}

// WriteParams writes the one-byte length prefix followed by the
// encoded token payload.
func WriteParams(w io.Writer, p Params) error {
	payload := p.Encode()
	if len(payload) > 255 {
		return fmt.Errorf("protocol: parameter payload too long (%d bytes)", len(payload))
	}
	if _, err := w.Write([]byte{byte(len(payload))}); err != nil {
		return fmt.Errorf("writing param length: %w", err)
	}
	if _, err := io.WriteString(w, payload); err != nil {
		return fmt.Errorf("writing param payload: %w", err)
	}
	return nil
}

// ReadParams reads the one-byte length prefix and the payload,
// returning the parsed Params.
func ReadParams(r io.Reader) (Params, error) {
	var lenByte [1]byte
	if _, err := io.ReadFull(r, lenByte[:]); err != nil {
		return Params{}, fmt.Errorf("reading param length: %w", err)
	}
	buf := make([]byte, lenByte[0])
	if _, err := io.ReadFull(r, buf); err != nil {
		return Params{}, fmt.Errorf("reading param payload: %w", err)
	}
	return ParseParams(string(buf)), nil
}
