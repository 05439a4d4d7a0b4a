// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package engine

import (
	"context"
	"fmt"
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

// ClientConfig is the subset of parsed configuration the client role
// needs, decoupled from the config package so engine has no import
// cycle back to it.
type ClientConfig struct {
	Host        string
	Port        int
	Params      protocol.Params
	Interval    time.Duration
	Diagnostics bool
	Format      byte
	Sink        *resultsink.Sink
}

// RunClient drives the client side of one test end to end: control
// handshake, stream creation, the data loop, results exchange, and
// the final report.
func RunClient(ctx context.Context, cfg ClientConfig, logger *slog.Logger, cancel *CancelSignal, out io.Writer) error {
	t := newTest(RoleClient, logger, cancel)
	t.Params = cfg.Params
	t.Interval = cfg.Interval
	t.Diagnostics = cfg.Diagnostics
	t.Reporter = report.New(out, cfg.Format)
	t.isSender = !cfg.Params.Reverse

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	t.State = StateConnecting
	conn, err := netdial.Dial(addr, 10*time.Second, netdial.Options{NoDelay: true})
	if err != nil {
		metrics.TestsCompleted.WithLabelValues("client", "connect_error").Inc()
		return wrapErr("connecting control channel", err)
	}
	t.Control = conn
	defer conn.Close()

	t.State = StateParamExchange
	cookie, err := protocol.NewCookie()
	if err != nil {
		return wrapErr("generating cookie", err)
	}
	t.Cookie = cookie
	if err := protocol.WriteCookie(conn, cookie); err != nil {
		return wrapErr("sending cookie", err)
	}

	if err := protocol.WriteParams(conn, t.Params); err != nil {
		return wrapErr("sending params", err)
	}

	state, err := protocol.ReadState(conn)
	if err != nil {
		return wrapErr("awaiting CREATE_STREAMS", err)
	}
	if state != protocol.StateCreateStreams {
		return fmt.Errorf("engine: unexpected state %s awaiting CREATE_STREAMS", state)
	}

	t.State = StateCreatingStreams
	if err := t.createStreams(cfg.Host, cfg.Port+1); err != nil {
		return wrapErr("creating streams", err)
	}

	state, err = protocol.ReadState(conn)
	if err != nil {
		return wrapErr("awaiting TEST_START", err)
	}
	if state != protocol.StateTestStart {
		return fmt.Errorf("engine: unexpected state %s awaiting TEST_START", state)
	}
	if _, err := protocol.ReadState(conn); err != nil {
		return wrapErr("awaiting TEST_RUNNING", err)
	}

	t.State = StateRunning
	if err := t.runDataLoop(); err != nil {
		metrics.TestsCompleted.WithLabelValues("client", "data_loop_error").Inc()
		return wrapErr("running data loop", err)
	}
	if t.Cancel.Done() {
		t.closeStreams()
		if err := protocol.WriteState(conn, protocol.StateClientTerminate); err != nil {
			return wrapErr("sending CLIENT_TERMINATE", err)
		}
		metrics.TestsCompleted.WithLabelValues("client", "interrupted").Inc()
		return fmt.Errorf("engine: test interrupted")
	}
	t.closeStreams()

	if err := protocol.WriteState(conn, protocol.StateTestEnd); err != nil {
		return wrapErr("sending TEST_END", err)
	}

	t.State = StateExchangingResults
	localSummaries := t.localSummaries()
	if err := protocol.WriteState(conn, protocol.StateExchangeResults); err != nil {
		return wrapErr("sending EXCHANGE_RESULTS", err)
	}
	if err := protocol.WriteResults(conn, localSummaries); err != nil {
		return wrapErr("sending local results", err)
	}
	peerSummaries, err := protocol.ReadResults(conn)
	if err != nil {
		return wrapErr("reading peer results", err)
	}

	t.State = StateDisplaying
	t.displayResults(localSummaries, peerSummaries)

	if err := protocol.WriteState(conn, protocol.StateIperfDone); err != nil {
		return wrapErr("sending IPERF_DONE", err)
	}
	t.State = StateDone

	if cfg.Sink != nil {
		payload := t.resultsPayload(localSummaries, peerSummaries)
		if err := cfg.Sink.Upload(ctx, cookie+".json", payload); err != nil {
			logger.Warn("results archive upload failed", "error", err)
		}
	}

	metrics.TestsCompleted.WithLabelValues("client", "ok").Inc()
	return nil
}

// createStreams dials Params.Streams data connections, each identified
// to the server by the shared cookie. Datagram tests
// dial one dedicated UDP port per stream starting at basePort; reliable
// tests share a single TCP address the server accepts on repeatedly.
func (t *Test) createStreams(host string, basePort int) error {
	if t.Params.Datagram {
		for i := 0; i < t.Params.Streams; i++ {
			addr := net.JoinHostPort(host, strconv.Itoa(basePort+i))
			conn, err := netdial.DialDatagramStream(addr)
			if err != nil {
				return wrapErr("dialing datagram stream", err)
			}
			if _, err := conn.Write([]byte(t.Cookie)); err != nil {
				conn.Close()
				return wrapErr("sending stream cookie", err)
			}
			t.addStream(conn, t.Params.RateBps)
		}
		return nil
	}

	dataAddr := net.JoinHostPort(host, strconv.Itoa(basePort))
	opts := netdial.Options{
		WindowSize: t.Params.WindowSize,
		MSS:        t.Params.MSS,
		NoDelay:    t.Params.NoDelay,
	}
	for i := 0; i < t.Params.Streams; i++ {
		conn, err := netdial.Dial(dataAddr, 10*time.Second, opts)
		if err != nil {
			return wrapErr("dialing data stream", err)
		}
		if err := protocol.WriteCookie(conn, t.Cookie); err != nil {
			conn.Close()
			return wrapErr("sending stream cookie", err)
		}
		t.addStream(conn, t.Params.RateBps)
	}
	return nil
}
