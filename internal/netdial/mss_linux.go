// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

//go:build linux

package netdial

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// mssControl returns a net.Dialer.Control hook that sets TCP_MAXSEG
// before the three-way handshake completes, grounded on the pack's
// SyscallConn().Control() socket-option pattern.
func mssControl(mss int) func(string, string, syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var sysErr error
		err := c.Control(func(fd uintptr) {
			sysErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_MAXSEG, mss)
		})
		if err != nil {
			return err
		}
		return sysErr
	}
}
