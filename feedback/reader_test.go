// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package feedback

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

// manualSource records completions so tests decide when they fire.
type manualSource struct {
	mu      sync.Mutex
	pending []func([]uint32, error)
	clears  int
}

func (s *manualSource) Capture(done func([]uint32, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, done)
}

func (s *manualSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
}

func (s *manualSource) finish(t *testing.T, i int, samples []uint32, err error) {
	t.Helper()
	s.mu.Lock()
	if i >= len(s.pending) {
		s.mu.Unlock()
		t.Fatalf("no capture #%d issued", i)
	}
	done := s.pending[i]
	s.mu.Unlock()
	done(samples, err)
}

// asyncSource completes every capture on its own goroutine.
type asyncSource struct {
	samples []uint32
	err     error
}

func (s *asyncSource) Capture(done func([]uint32, error)) {
	go func() {
		time.Sleep(time.Millisecond)
		done(slices.Clone(s.samples), s.err)
	}()
}

func (s *asyncSource) Clear() {}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "Idle"},
		{InFlight, "InFlight"},
		{Ready, "Ready"},
		{State(9), "State(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if b, _ := tt.s.MarshalText(); string(b) != tt.want {
			t.Errorf("MarshalText() = %q, want %q", b, tt.want)
		}
	}
}

func TestStateUnmarshalText(t *testing.T) {
	var s State
	if err := s.UnmarshalText([]byte("Ready")); err != nil || s != Ready {
		t.Errorf("UnmarshalText(Ready) = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("Busy")); err == nil {
		t.Error("UnmarshalText accepted an unknown state")
	}
}

func TestReaderLifecycle(t *testing.T) {
	src := &manualSource{}
	r := NewReader(src, 4)

	if r.State() != Idle || r.HasData() {
		t.Fatalf("new reader state = %v", r.State())
	}
	if err := r.Capture(); err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if r.State() != InFlight {
		t.Fatalf("state = %v, want InFlight", r.State())
	}
	if err := r.Capture(); !errors.Is(err, ErrInFlight) {
		t.Errorf("second Capture() error = %v, want ErrInFlight", err)
	}
	if r.Samples() != nil {
		t.Error("Samples() non-nil while in flight")
	}

	data := []uint32{1, 2, 3, 4}
	src.finish(t, 0, data, nil)
	data[0] = 99 // reader must hold its own copy

	if !r.HasData() {
		t.Fatalf("state = %v, want Ready", r.State())
	}
	if got := r.Samples(); !slices.Equal(got, []uint32{1, 2, 3, 4}) {
		t.Errorf("Samples() = %v", got)
	}
	if err := r.Capture(); !errors.Is(err, ErrUnconsumed) {
		t.Errorf("Capture() while Ready error = %v, want ErrUnconsumed", err)
	}

	r.Consume()
	if r.State() != Idle || r.Samples() != nil {
		t.Errorf("after Consume state = %v", r.State())
	}
	if err := r.Capture(); err != nil {
		t.Errorf("Capture() after Consume error = %v", err)
	}
}

func TestReaderCaptureFailure(t *testing.T) {
	tests := []struct {
		name    string
		samples []uint32
		err     error
	}{
		{"transfer error", nil, errors.New("device lost")},
		{"short buffer", []uint32{1}, nil},
		{"empty buffer", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &manualSource{}
			r := NewReader(src, 4)
			if err := r.Capture(); err != nil {
				t.Fatal(err)
			}
			src.finish(t, 0, tt.samples, tt.err)
			if r.State() != Idle || r.HasData() {
				t.Errorf("state = %v, want Idle without data", r.State())
			}
			if r.Failures() != 1 {
				t.Errorf("Failures() = %d, want 1", r.Failures())
			}
		})
	}
}

func TestReaderStaleCompletion(t *testing.T) {
	src := &manualSource{}
	r := NewReader(src, 2)

	if err := r.Capture(); err != nil {
		t.Fatal(err)
	}
	r.Reset()
	if r.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", r.Generation())
	}
	if err := r.Capture(); err != nil {
		t.Fatalf("Capture() after Reset error = %v", err)
	}

	// The pre-reset capture lands first and must be ignored.
	src.finish(t, 0, []uint32{7, 7}, nil)
	if r.State() != InFlight {
		t.Fatalf("stale completion changed state to %v", r.State())
	}

	src.finish(t, 1, []uint32{8, 8}, nil)
	if got := r.Samples(); !slices.Equal(got, []uint32{8, 8}) {
		t.Errorf("Samples() = %v, want [8 8]", got)
	}
}

func TestReaderDuplicateCompletion(t *testing.T) {
	src := &manualSource{}
	r := NewReader(src, 1)
	if err := r.Capture(); err != nil {
		t.Fatal(err)
	}
	src.finish(t, 0, []uint32{5}, nil)
	r.Consume()
	src.finish(t, 0, []uint32{6}, nil)
	if r.State() != Idle {
		t.Errorf("second completion changed state to %v", r.State())
	}
}

func TestReaderClose(t *testing.T) {
	src := &manualSource{}
	r := NewReader(src, 1)
	if err := r.Capture(); err != nil {
		t.Fatal(err)
	}
	r.Close()
	r.Close()

	src.finish(t, 0, []uint32{1}, nil)
	if r.HasData() {
		t.Error("completion after Close produced data")
	}
	if err := r.Capture(); !errors.Is(err, ErrClosed) {
		t.Errorf("Capture() after Close error = %v, want ErrClosed", err)
	}
	if err := r.CaptureSync(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("CaptureSync() after Close error = %v, want ErrClosed", err)
	}
}

func TestReaderCaptureSync(t *testing.T) {
	r := NewReader(&asyncSource{samples: []uint32{3, 0, 3}}, 3)
	if err := r.CaptureSync(context.Background()); err != nil {
		t.Fatalf("CaptureSync() error = %v", err)
	}
	if got := r.Samples(); !slices.Equal(got, []uint32{3, 0, 3}) {
		t.Errorf("Samples() = %v", got)
	}
}

func TestReaderCaptureSyncJoinsInFlight(t *testing.T) {
	src := &manualSource{}
	r := NewReader(src, 1)
	if err := r.Capture(); err != nil {
		t.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() { errc <- r.CaptureSync(context.Background()) }()

	// Give CaptureSync a chance to observe the pending capture.
	time.Sleep(5 * time.Millisecond)
	src.finish(t, 0, []uint32{4}, nil)

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("CaptureSync() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("CaptureSync() did not return")
	}
	src.mu.Lock()
	issued := len(src.pending)
	src.mu.Unlock()
	if issued != 1 {
		t.Errorf("issued %d captures, want 1", issued)
	}
}

func TestReaderCaptureSyncFailure(t *testing.T) {
	r := NewReader(&asyncSource{err: errors.New("lost")}, 3)
	if err := r.CaptureSync(context.Background()); !errors.Is(err, ErrCaptureFailed) {
		t.Errorf("CaptureSync() error = %v, want ErrCaptureFailed", err)
	}
	if r.State() != Idle {
		t.Errorf("state = %v, want Idle", r.State())
	}
}

func TestReaderCaptureSyncCanceled(t *testing.T) {
	r := NewReader(&manualSource{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.CaptureSync(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("CaptureSync() error = %v, want context.Canceled", err)
	}
	if r.State() != InFlight {
		t.Errorf("state = %v, want InFlight", r.State())
	}
}

func TestReaderClearForwards(t *testing.T) {
	src := &manualSource{}
	r := NewReader(src, 1)
	r.Clear()
	r.Clear()
	if src.clears != 2 {
		t.Errorf("source cleared %d times, want 2", src.clears)
	}
}
