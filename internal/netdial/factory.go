// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package netdial is the connection factory for control and data
// connections: dialing, listening, socket buffer sizing, Nagle
// control, and (platform-specific) MSS clamping.
package netdial

import (
	"fmt"
	"net"
	"time"
)

// Options configures a dialed or accepted data/control connection.
type Options struct {
	Datagram   bool
	WindowSize int // socket send/receive buffer size in bytes, 0 = OS default
	MSS        int // 0 = OS default
	NoDelay    bool
}

// Dial connects to addr applying Options. Timeout bounds the connect
// attempt itself.
func Dial(addr string, timeout time.Duration, opts Options) (net.Conn, error) {
	network := "tcp"
	if opts.Datagram {
		network = "udp"
	}

	dialer := &net.Dialer{Timeout: timeout}
	if opts.MSS > 0 && !opts.Datagram {
		dialer.Control = mssControl(opts.MSS)
	}

	conn, err := dialer.Dial(network, addr)
	if err != nil {
		return nil, fmt.Errorf("netdial: dialing %s %s: %w", network, addr, err)
	}
	if err := applyOptions(conn, opts); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Listen opens a listener for control connections or a data-stream
// acceptor, applying Options to accepted connections via AcceptWith.
func Listen(addr string, datagram bool) (net.Listener, error) {
	network := "tcp"
	if datagram {
		return nil, fmt.Errorf("netdial: Listen does not apply to datagram sockets, use ListenPacket")
	}
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("netdial: listening on %s %s: %w", network, addr, err)
	}
	return ln, nil
}

// ListenPacket opens a connected-style UDP listener for a datagram
// data stream (the server learns the client's address from the first
// received packet).
func ListenPacket(addr string) (net.PacketConn, error) {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("netdial: listening on udp %s: %w", addr, err)
	}
	return pc, nil
}

// AcceptWith accepts one connection from ln and applies Options.
func AcceptWith(ln net.Listener, opts Options) (net.Conn, error) {
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("netdial: accepting: %w", err)
	}
	if err := applyOptions(conn, opts); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func applyOptions(conn net.Conn, opts Options) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // UDP connections don't carry these socket options the same way
	}

	if opts.NoDelay {
		if err := tcpConn.SetNoDelay(true); err != nil {
			return fmt.Errorf("netdial: setting TCP_NODELAY: %w", err)
		}
	}
	if opts.WindowSize > 0 {
		if err := tcpConn.SetReadBuffer(opts.WindowSize); err != nil {
			return fmt.Errorf("netdial: setting read buffer: %w", err)
		}
		if err := tcpConn.SetWriteBuffer(opts.WindowSize); err != nil {
			return fmt.Errorf("netdial: setting write buffer: %w", err)
		}
	}
	return nil
}
