// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package engine

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/nishisan-dev/flowbench/internal/protocol"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunClientServer_ReliableSingleStream(t *testing.T) {
	port := freePort(t)
	logger := discardLogger()

	serverCancel := NewCancelSignal()
	serverReady := make(chan struct{})
	serverErr := make(chan error, 1)

	go func() {
		serverCfg := ServerConfig{
			Port:     port,
			Interval: 20 * time.Millisecond,
			Format:   'a',
		}
		close(serverReady)
		serverErr <- RunServer(context.Background(), serverCfg, logger, serverCancel, io.Discard)
	}()

	<-serverReady
	// give the server a moment to bind both listeners before dialing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 50*time.Millisecond)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never started listening on %d: %v", port, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	clientCancel := NewCancelSignal()
	params := protocol.Params{
		Streams:   1,
		Bytes:     256 * 1024,
		BlockSize: 8 * 1024,
	}
	clientCfg := ClientConfig{
		Host:     "127.0.0.1",
		Port:     port,
		Params:   params,
		Interval: 20 * time.Millisecond,
		Format:   'a',
	}

	done := make(chan error, 1)
	go func() {
		done <- RunClient(context.Background(), clientCfg, logger, clientCancel, io.Discard)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunClient failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("client did not complete within timeout")
	}

	serverCancel.Cancel()
}

func TestRunClientServer_ReverseDirection(t *testing.T) {
	port := freePort(t)
	logger := discardLogger()

	serverCancel := NewCancelSignal()
	serverReady := make(chan struct{})

	go func() {
		serverCfg := ServerConfig{
			Port:     port,
			Interval: 20 * time.Millisecond,
			Format:   'a',
		}
		close(serverReady)
		_ = RunServer(context.Background(), serverCfg, logger, serverCancel, io.Discard)
	}()

	<-serverReady
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 50*time.Millisecond)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never started listening on %d: %v", port, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	clientCancel := NewCancelSignal()
	params := protocol.Params{
		Streams:   1,
		Reverse:   true,
		Bytes:     128 * 1024,
		BlockSize: 4 * 1024,
	}
	clientCfg := ClientConfig{
		Host:     "127.0.0.1",
		Port:     port,
		Params:   params,
		Interval: 20 * time.Millisecond,
		Format:   'a',
	}

	done := make(chan error, 1)
	go func() {
		done <- RunClient(context.Background(), clientCfg, logger, clientCancel, io.Discard)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunClient (reverse) failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("client did not complete within timeout")
	}

	serverCancel.Cancel()
}

