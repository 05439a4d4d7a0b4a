// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package mux

import (
	"net"
	"testing"
	"time"
)

func TestFD_TCPConn(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	fd, err := FD(client)
	if err != nil {
		t.Fatalf("FD: %v", err)
	}
	if fd == 0 {
		t.Fatal("expected non-zero fd")
	}
}

func TestMultiplexer_WriteReady(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	acceptCh := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		acceptCh <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	server := <-acceptCh
	defer server.Close()

	fd, err := FD(client)
	if err != nil {
		t.Fatalf("FD: %v", err)
	}

	m := New()
	_, writeReady, err := m.Wait(nil, []uintptr{fd}, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !writeReady[fd] {
		t.Fatal("expected newly connected socket to be write-ready")
	}
}
