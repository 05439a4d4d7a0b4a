// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

//go:build !windows

package mux

import (
	"time"

	"golang.org/x/sys/unix"
)

// PollMultiplexer polls raw file descriptors with unix.Poll, grounded
// on the pack's raw-fd socket-option pattern (SyscallConn + Control)
// applied here to readiness rather than setsockopt.
type PollMultiplexer struct{}

func New() Multiplexer { return PollMultiplexer{} }

func (PollMultiplexer) Wait(readFds, writeFds []uintptr, timeout time.Duration) (map[uintptr]bool, map[uintptr]bool, error) {
	index := make(map[uintptr]int, len(readFds)+len(writeFds))
	var pollFds []unix.PollFd

	add := func(fd uintptr, events int16) {
		if i, ok := index[fd]; ok {
			pollFds[i].Events |= events
			return
		}
		index[fd] = len(pollFds)
		pollFds = append(pollFds, unix.PollFd{Fd: int32(fd), Events: events})
	}

	for _, fd := range readFds {
		add(fd, unix.POLLIN)
	}
	for _, fd := range writeFds {
		add(fd, unix.POLLOUT)
	}

	if len(pollFds) == 0 {
		time.Sleep(timeout)
		return nil, nil, nil
	}

	timeoutMs := int(timeout / time.Millisecond)
	n, err := unix.Poll(pollFds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	readReady := make(map[uintptr]bool, n)
	writeReady := make(map[uintptr]bool, n)
	for _, pf := range pollFds {
		if pf.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			readReady[uintptr(pf.Fd)] = true
		}
		if pf.Revents&(unix.POLLOUT|unix.POLLERR) != 0 {
			writeReady[uintptr(pf.Fd)] = true
		}
	}
	return readReady, writeReady, nil
}
