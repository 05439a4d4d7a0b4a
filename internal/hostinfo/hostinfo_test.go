// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package hostinfo

import (
	"log/slog"
	"os"
	"testing"
)

func TestCollector_CollectDoesNotPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	c := NewCollector(logger)
	snap := c.Collect()
	if snap.CPUPercent < 0 {
		t.Fatal("cpu percent must not be negative")
	}
}
