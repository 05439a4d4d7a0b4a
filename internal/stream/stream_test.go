// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package stream

import (
	"net"
	"testing"
	"time"
)

func pipeConns(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	acceptCh := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			acceptCh <- nil
			return
		}
		acceptCh <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	server := <-acceptCh
	if server == nil {
		t.Fatal("accept failed")
	}
	return client, server
}

func TestReliableStream_SendRecv(t *testing.T) {
	client, server := pipeConns(t)
	defer client.Close()
	defer server.Close()

	sender := New(1, client, 1024, false, nil, false)
	receiver := New(1, server, 1024, false, nil, false)

	n, err := sender.Send()
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n != 1024 {
		t.Fatalf("expected 1024 bytes sent, got %d", n)
	}

	n, err = receiver.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if n != 1024 {
		t.Fatalf("expected 1024 bytes received, got %d", n)
	}

	if sender.Result.BytesSent != 1024 {
		t.Fatalf("expected sender BytesSent=1024, got %d", sender.Result.BytesSent)
	}
	if receiver.Result.BytesReceived != 1024 {
		t.Fatalf("expected receiver BytesReceived=1024, got %d", receiver.Result.BytesReceived)
	}
}

func TestDatagramStream_JitterAndLoss(t *testing.T) {
	client, server := pipeConns(t)
	defer client.Close()
	defer server.Close()

	sender := New(1, client, 256, true, nil, false)
	receiver := New(1, server, 256, true, nil, false)

	for i := 0; i < 3; i++ {
		if _, err := sender.Send(); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if _, err := receiver.Recv(); err != nil {
			t.Fatalf("recv %d: %v", i, err)
		}
	}

	if receiver.Datagram.PacketCount != 3 {
		t.Fatalf("expected 3 packets counted, got %d", receiver.Datagram.PacketCount)
	}
	if receiver.Datagram.CntError != 0 {
		t.Fatalf("expected no loss for in-order stream, got %d", receiver.Datagram.CntError)
	}
	if receiver.Datagram.Jitter < 0 {
		t.Fatalf("expected non-negative jitter, got %f", receiver.Datagram.Jitter)
	}
}

func TestSnapshot_ResetsIntervalCounters(t *testing.T) {
	client, server := pipeConns(t)
	defer client.Close()
	defer server.Close()

	sender := New(1, client, 512, false, nil, false)
	if _, err := sender.Send(); err != nil {
		t.Fatalf("send: %v", err)
	}

	ir := sender.Snapshot(time.Now(), DirSend, nil)
	if ir.BytesTransferred != 512 {
		t.Fatalf("expected interval bytes 512, got %d", ir.BytesTransferred)
	}
	if sender.Result.BytesSentThisInterval != 0 {
		t.Fatalf("expected interval counter reset to 0, got %d", sender.Result.BytesSentThisInterval)
	}
	if len(sender.Result.Intervals) != 1 {
		t.Fatalf("expected 1 recorded interval, got %d", len(sender.Result.Intervals))
	}
}
