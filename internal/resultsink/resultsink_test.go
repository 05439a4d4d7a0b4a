// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package resultsink

import (
	"context"
	"testing"
)

func TestNew_NilWhenBucketEmpty(t *testing.T) {
	s, err := New(context.Background(), "", "", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil sink for empty bucket")
	}
}

func TestUpload_NoOpOnNilSink(t *testing.T) {
	var s *Sink
	if err := s.Upload(context.Background(), "key", []byte("payload")); err != nil {
		t.Fatalf("expected nil-receiver Upload to be a no-op, got %v", err)
	}
}
