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
	"time"

	"github.com/nishisan-dev/flowbench/internal/metrics"
	"github.com/nishisan-dev/flowbench/internal/netdial"
	"github.com/nishisan-dev/flowbench/internal/protocol"
	"github.com/nishisan-dev/flowbench/internal/report"
	"github.com/nishisan-dev/flowbench/internal/resultsink"
)

// ServerConfig is the subset of parsed configuration the server role
// needs.
type ServerConfig struct {
	Port        int
	Interval    time.Duration
	Diagnostics bool
	Format      byte
	Sink        *resultsink.Sink
}

// RunServer listens for control connections and serves tests one at a
// time, with accept and dispatch collapsed to a single cooperative
// loop per test.
func RunServer(ctx context.Context, cfg ServerConfig, logger *slog.Logger, cancel *CancelSignal, out io.Writer) error {
	ln, err := netdial.Listen(net.JoinHostPort("", strconv.Itoa(cfg.Port)), false)
	if err != nil {
		return wrapErr("listening for control connections", err)
	}
	defer ln.Close()

	dataLn, err := netdial.Listen(net.JoinHostPort("", strconv.Itoa(cfg.Port+1)), false)
	if err != nil {
		return wrapErr("listening for reliable-stream data connections", err)
	}
	defer dataLn.Close()

	// Closing the listeners on cancel unblocks Accept so the loop below
	// observes Done and returns.
	go func() {
		<-cancel.C()
		ln.Close()
		dataLn.Close()
	}()

	logger.Info("server listening", "control_port", cfg.Port, "data_port", cfg.Port+1)

	for {
		if cancel.Done() {
			return nil
		}
		control, err := ln.Accept()
		if err != nil {
			if cancel.Done() {
				return nil
			}
			logger.Warn("accepting control connection failed", "error", err)
			continue
		}

		if err := serveOneTest(ctx, control, dataLn, cfg, logger, cancel, out); err != nil {
			logger.Warn("test failed", "error", err)
			metrics.TestsCompleted.WithLabelValues("server", "error").Inc()
		} else {
			metrics.TestsCompleted.WithLabelValues("server", "ok").Inc()
		}
	}
}

func serveOneTest(ctx context.Context, control net.Conn, dataLn net.Listener, cfg ServerConfig, logger *slog.Logger, cancel *CancelSignal, out io.Writer) error {
	defer control.Close()

	t := newTest(RoleServer, logger, cancel)
	t.Control = control
	t.Interval = cfg.Interval
	t.Diagnostics = cfg.Diagnostics
	t.Reporter = report.New(out, cfg.Format)

	cookie, err := protocol.ReadCookie(control)
	if err != nil {
		return wrapErr("reading cookie", err)
	}
	t.Cookie = cookie

	params, err := protocol.ReadParams(control)
	if err != nil {
		return wrapErr("reading params", err)
	}
	t.Params = params
	t.isSender = params.Reverse

	if err := protocol.WriteState(control, protocol.StateCreateStreams); err != nil {
		return wrapErr("sending CREATE_STREAMS", err)
	}

	t.State = StateCreatingStreams
	if params.Datagram {
		for i := 0; i < params.Streams; i++ {
			addr := net.JoinHostPort("", strconv.Itoa(cfg.Port+1+i))
			conn, streamCookie, err := netdial.AcceptDatagramStream(addr)
			if err != nil {
				return wrapErr("accepting datagram stream", err)
			}
			if streamCookie != cookie {
				conn.Close()
				return wrapErr("validating stream cookie", protocol.ErrBadCookie)
			}
			t.addStream(conn, params.RateBps)
		}
	} else {
		for i := 0; i < params.Streams; i++ {
			conn, err := netdial.AcceptWith(dataLn, netdial.Options{
				WindowSize: params.WindowSize,
				NoDelay:    params.NoDelay,
			})
			if err != nil {
				return wrapErr("accepting data stream", err)
			}
			streamCookie, err := protocol.ReadCookie(conn)
			if err != nil || streamCookie != cookie {
				conn.Close()
				return wrapErr("validating stream cookie", protocol.ErrBadCookie)
			}
			t.addStream(conn, params.RateBps)
		}
	}

	if err := protocol.WriteState(control, protocol.StateTestStart); err != nil {
		return wrapErr("sending TEST_START", err)
	}
	if err := protocol.WriteState(control, protocol.StateTestRunning); err != nil {
		return wrapErr("sending TEST_RUNNING", err)
	}

	t.State = StateRunning
	if err := t.runDataLoop(); err != nil {
		return wrapErr("running data loop", err)
	}
	t.closeStreams()

	if _, err := protocol.ReadState(control); err != nil {
		return wrapErr("awaiting TEST_END", err)
	}

	t.State = StateExchangingResults
	localSummaries := t.localSummaries()
	if _, err := protocol.ReadState(control); err != nil {
		return wrapErr("awaiting EXCHANGE_RESULTS", err)
	}
	peerSummaries, err := protocol.ReadResults(control)
	if err != nil {
		return wrapErr("reading peer results", err)
	}
	if err := protocol.WriteResults(control, localSummaries); err != nil {
		return wrapErr("sending local results", err)
	}

	t.State = StateDisplaying
	t.displayResults(localSummaries, peerSummaries)

	if _, err := protocol.ReadState(control); err != nil {
		return wrapErr("awaiting IPERF_DONE", err)
	}
	t.State = StateDone

	if cfg.Sink != nil {
		payload := t.resultsPayload(localSummaries, peerSummaries)
		if err := cfg.Sink.Upload(ctx, cookie+".json", payload); err != nil {
			logger.Warn("results archive upload failed", "error", err)
		}
	}

	return nil
}
