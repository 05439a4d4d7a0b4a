// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package netdial

import (
	"fmt"
	"net"
)

// udpStreamConn adapts a single-port *net.UDPConn, learned remote
// address included, into a net.Conn so one datagram stream can share
// the Stream/multiplexer machinery built for connected sockets. Each
// datagram stream gets its own UDP port, a per-stream data connection
// simplified from a single demultiplexed socket.
type udpStreamConn struct {
	*net.UDPConn
	remote net.Addr
}

func (c *udpStreamConn) Read(b []byte) (int, error) {
	n, _, err := c.UDPConn.ReadFrom(b)
	return n, err
}

func (c *udpStreamConn) Write(b []byte) (int, error) {
	return c.UDPConn.WriteTo(b, c.remote)
}

func (c *udpStreamConn) RemoteAddr() net.Addr { return c.remote }

// DialDatagramStream connects a UDP socket for one datagram stream.
func DialDatagramStream(addr string) (net.Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("netdial: resolving %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("netdial: dialing udp %s: %w", addr, err)
	}
	return conn, nil
}

// AcceptDatagramStream listens on addr for the handshake packet that
// carries the stream's cookie, then returns a net.Conn bound to the
// sender's address for the remainder of the stream's lifetime.
func AcceptDatagramStream(addr string) (net.Conn, string, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("netdial: resolving %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, "", fmt.Errorf("netdial: listening udp %s: %w", addr, err)
	}

	buf := make([]byte, 256)
	n, remote, err := conn.ReadFrom(buf)
	if err != nil {
		conn.Close()
		return nil, "", fmt.Errorf("netdial: reading handshake: %w", err)
	}

	cookie := string(buf[:n])
	return &udpStreamConn{UDPConn: conn, remote: remote}, cookie, nil
}
