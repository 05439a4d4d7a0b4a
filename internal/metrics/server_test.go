// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"testing"
	"time"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestServer_DisabledWhenAddrEmpty(t *testing.T) {
	s := NewServer("", slog.New(slog.NewTextHandler(os.Stdout, nil)))
	if s != nil {
		t.Fatal("expected nil server for empty addr")
	}
	s.Start()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop on nil server should be a no-op: %v", err)
	}
}

func TestServer_ServesMetricsEndpoint(t *testing.T) {
	addr := freeAddr(t)
	s := NewServer(addr, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	s.Start()
	defer s.Stop(context.Background())

	time.Sleep(50 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
