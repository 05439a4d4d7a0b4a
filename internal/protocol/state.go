// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package protocol implements the flowbench control-channel wire
// format: single-byte state codes plus length-prefixed parameter and
// results payloads exchanged between client and server over one
// reliable stream kept open for the lifetime of a test.
package protocol

import (
	"errors"
	"fmt"
	"io"
)

// State is a single-byte control-channel state code.
type State byte

// Control-channel state codes. The listing order is not the order a
// test drives them in, and the numeric values are not sequential.
const (
	StateTestStart        State = 1
	StateParamExchange    State = 9
	StateCreateStreams    State = 10
	StateTestRunning      State = 2
	StateStreamRunning    State = 11
	StateExchangeResults  State = 13
	StateDisplayResults   State = 14
	StateIperfDone        State = 15
	StateClientTerminate  State = 16
	StateServerTerminate  State = 17
	StateAccessDenied     State = 18
	StateStreamBegin      State = 19
	StateStreamEnd        State = 20
	StateTestEnd          State = 12
)

var stateNames = map[State]string{
	StateTestStart:       "TEST_START",
	StateParamExchange:   "PARAM_EXCHANGE",
	StateCreateStreams:   "CREATE_STREAMS",
	StateTestRunning:     "TEST_RUNNING",
	StateStreamRunning:   "STREAM_RUNNING",
	StateExchangeResults: "EXCHANGE_RESULTS",
	StateDisplayResults:  "DISPLAY_RESULTS",
	StateIperfDone:       "IPERF_DONE",
	StateClientTerminate: "CLIENT_TERMINATE",
	StateServerTerminate: "SERVER_TERMINATE",
	StateAccessDenied:    "ACCESS_DENIED",
	StateStreamBegin:     "STREAM_BEGIN",
	StateStreamEnd:       "STREAM_END",
	StateTestEnd:         "TEST_END",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN_STATE_%d", byte(s))
}

// ErrUnknownState is returned by ReadState when the byte read does not
// correspond to a known state code.
var ErrUnknownState = errors.New("protocol: unknown state code")

// WriteState writes a single state-code byte to the control channel.
func WriteState(w io.Writer, s State) error {
	_, err := w.Write([]byte{byte(s)})
	if err != nil {
		return fmt.Errorf("writing state %s: %w", s, err)
	}
	return nil
}

// ReadState reads a single state-code byte from the control channel.
// Returns ErrUnknownState (wrapped) if the byte isn't a recognized code;
// the caller decides whether that is a protocol violation or an EOF
// that should be treated as a clean termination.
func ReadState(r io.Reader) (State, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	s := State(b[0])
	if _, ok := stateNames[s]; !ok {
		return s, fmt.Errorf("%w: %d", ErrUnknownState, b[0])
	}
	return s, nil
}
