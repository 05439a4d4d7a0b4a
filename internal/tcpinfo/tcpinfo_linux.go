// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

//go:build linux

package tcpinfo

import "golang.org/x/sys/unix"

var tcpStateNames = map[uint8]string{
	unix.BPF_TCP_ESTABLISHED: "ESTABLISHED",
	unix.BPF_TCP_SYN_SENT:    "SYN_SENT",
	unix.BPF_TCP_SYN_RECV:    "SYN_RECV",
	unix.BPF_TCP_FIN_WAIT1:   "FIN_WAIT1",
	unix.BPF_TCP_FIN_WAIT2:   "FIN_WAIT2",
	unix.BPF_TCP_TIME_WAIT:   "TIME_WAIT",
	unix.BPF_TCP_CLOSE:       "CLOSE",
	unix.BPF_TCP_CLOSE_WAIT:  "CLOSE_WAIT",
	unix.BPF_TCP_LAST_ACK:    "LAST_ACK",
	unix.BPF_TCP_LISTEN:      "LISTEN",
	unix.BPF_TCP_CLOSING:     "CLOSING",
}

// LinuxReader reads TCP_INFO via getsockopt(IPPROTO_TCP, TCP_INFO).
type LinuxReader struct{}

func NewReader() Reader { return LinuxReader{} }

func (LinuxReader) Read(fd uintptr) (*Info, error) {
	raw, err := unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
	if err != nil {
		return nil, err
	}
	name, ok := tcpStateNames[raw.State]
	if !ok {
		name = "UNKNOWN"
	}
	return &Info{
		State:        name,
		RTT:          raw.Rtt,
		RTTVar:       raw.Rttvar,
		SndCwnd:      raw.Snd_cwnd,
		SndMSS:       raw.Snd_mss,
		RcvMSS:       raw.Rcv_mss,
		Retransmits:  uint32(raw.Retransmits),
		TotalRetrans: raw.Total_retrans,
		SndSsthresh:  raw.Snd_ssthresh,
		RcvSsthresh:  raw.Rcv_ssthresh,
	}, nil
}
