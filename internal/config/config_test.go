// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_ServerDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-s"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Server {
		t.Fatal("expected server role")
	}
	if cfg.BlockSize != defaultBlockSize {
		t.Fatalf("expected default reliable block size, got %d", cfg.BlockSize)
	}
}

func TestParse_DatagramPicksDatagramBlockSize(t *testing.T) {
	cfg, err := Parse([]string{"-c", "10.0.0.1", "-u"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.BlockSize != defaultDatagramBlockSize {
		t.Fatalf("expected default datagram block size, got %d", cfg.BlockSize)
	}
}

func TestParse_RejectsBothRoles(t *testing.T) {
	if _, err := Parse([]string{"-s", "-c", "10.0.0.1"}); err == nil {
		t.Fatal("expected error when both -s and -c are set")
	}
}

func TestParse_RejectsNoRole(t *testing.T) {
	if _, err := Parse([]string{}); err == nil {
		t.Fatal("expected error when neither -s nor -c is set")
	}
}

func TestParse_DefaultsFileDoesNotOverrideExplicitFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(path, []byte("port: 9999\nstreams: 4\n"), 0o644); err != nil {
		t.Fatalf("write defaults file: %v", err)
	}

	cfg, err := Parse([]string{"-c", "10.0.0.1", "-p", "6000", "-defaults", path})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != 6000 {
		t.Fatalf("expected explicit -p to win, got %d", cfg.Port)
	}
	if cfg.Streams != 4 {
		t.Fatalf("expected defaults file to set streams, got %d", cfg.Streams)
	}
}

func TestParse_InvalidPort(t *testing.T) {
	if _, err := Parse([]string{"-c", "10.0.0.1", "-p", "70000"}); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestParse_RejectsZeroDurationAndZeroBytes(t *testing.T) {
	if _, err := Parse([]string{"-c", "10.0.0.1", "-t", "0"}); err == nil {
		t.Fatal("expected error for -t 0 with no -n")
	}
}

func TestParse_ZeroDurationAllowedWithBytesTarget(t *testing.T) {
	cfg, err := Parse([]string{"-c", "10.0.0.1", "-t", "0", "-n", "1024"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Bytes != 1024 {
		t.Fatalf("expected bytes target 1024, got %d", cfg.Bytes)
	}
}

func TestParse_RejectsStreamsOverMax(t *testing.T) {
	if _, err := Parse([]string{"-c", "10.0.0.1", "-P", "129"}); err == nil {
		t.Fatal("expected error for stream count exceeding MAX_STREAMS")
	}
}

func TestParse_RejectsMSSOverMax(t *testing.T) {
	if _, err := Parse([]string{"-c", "10.0.0.1", "-M", "9001"}); err == nil {
		t.Fatal("expected error for MSS exceeding MAX_MSS")
	}
}

func TestParse_VersionFlagSkipsRoleValidation(t *testing.T) {
	cfg, err := Parse([]string{"-v"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Version {
		t.Fatal("expected Version flag set")
	}
}
