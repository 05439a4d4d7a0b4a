// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

//go:build !linux

package netdial

import "syscall"

// mssControl is a no-op outside Linux: TCP_MAXSEG tuning before
// connect is not portably available via net.Dialer.Control.
func mssControl(mss int) func(string, string, syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		return nil
	}
}
