// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package hostinfo samples host CPU/memory/load telemetry: ambient, out
// of the core engine, carried from a system-monitor component. Neither
// the results archive nor the metrics exporter includes its samples.
package hostinfo

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a single point-in-time host telemetry sample.
type Snapshot struct {
	CPUPercent    float64
	MemoryPercent float64
	LoadAverage1  float64
}

// Collector takes Snapshots, logging (not failing) on partial
// collection errors — telemetry is best-effort and must never affect
// the measured test result.
type Collector struct {
	logger *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger.With("component", "hostinfo")}
}

func (c *Collector) Collect() Snapshot {
	var snap Snapshot

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		snap.CPUPercent = percentages[0]
	} else if err != nil {
		c.logger.Debug("cpu telemetry unavailable", "error", err)
	}

	if v, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = v.UsedPercent
	} else {
		c.logger.Debug("memory telemetry unavailable", "error", err)
	}

	if l, err := load.Avg(); err == nil {
		snap.LoadAverage1 = l.Load1
	} else {
		c.logger.Debug("load telemetry unavailable", "error", err)
	}

	return snap
}
