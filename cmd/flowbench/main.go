// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nishisan-dev/flowbench/internal/config"
	"github.com/nishisan-dev/flowbench/internal/engine"
	"github.com/nishisan-dev/flowbench/internal/logging"
	"github.com/nishisan-dev/flowbench/internal/metrics"
	"github.com/nishisan-dev/flowbench/internal/protocol"
	"github.com/nishisan-dev/flowbench/internal/resultsink"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "flowbench: %v\n", err)
		os.Exit(2)
	}

	if cfg.Version {
		fmt.Println(config.Version)
		os.Exit(0)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	metricsServer := metrics.NewServer(cfg.MetricsListen, logger)
	metricsServer.Start()
	defer metricsServer.Stop(context.Background())

	ctx := context.Background()
	sink, err := resultsink.New(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3AccessKey, cfg.S3SecretKey, logger)
	if err != nil {
		logger.Warn("results sink unavailable", "error", err)
	}

	cancel := engine.NewCancelSignal()
	stopNotify := engine.NotifyOnInterrupt(cancel)
	defer stopNotify()

	format := byte('a')
	if len(cfg.Format) > 0 {
		format = cfg.Format[0]
	}

	if cfg.Server {
		serverCfg := engine.ServerConfig{
			Port:        cfg.Port,
			Interval:    cfg.Interval,
			Diagnostics: cfg.Diagnostics,
			Format:      format,
			Sink:        sink,
		}
		if err := engine.RunServer(ctx, serverCfg, logger, cancel, os.Stdout); err != nil {
			logger.Error("server exited with error", "error", err)
			os.Exit(1)
		}
		return
	}

	params := protocol.Params{
		Datagram:   cfg.Datagram,
		Streams:    cfg.Streams,
		Reverse:    cfg.Reverse,
		WindowSize: cfg.WindowSize,
		RateBps:    cfg.RateBps,
		MSS:        cfg.MSS,
		NoDelay:    cfg.NoDelay,
		Bytes:      cfg.Bytes,
		Seconds:    int(cfg.Duration.Seconds()),
		BlockSize:  cfg.BlockSize,
	}

	clientCfg := engine.ClientConfig{
		Host:        cfg.ClientHost,
		Port:        cfg.Port,
		Params:      params,
		Interval:    cfg.Interval,
		Diagnostics: cfg.Diagnostics,
		Format:      format,
		Sink:        sink,
	}
	if err := engine.RunClient(ctx, clientCfg, logger, cancel, os.Stdout); err != nil {
		logger.Error("client exited with error", "error", err)
		os.Exit(1)
	}
}
