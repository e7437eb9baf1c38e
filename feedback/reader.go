// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package feedback

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the readback state of a Reader.
type State int32

const (
	// Idle means no capture is pending and no unconsumed samples are held.
	Idle State = iota
	// InFlight means a capture was issued and its completion has not arrived.
	InFlight
	// Ready means a capture completed and its samples await Consume.
	Ready
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case InFlight:
		return "InFlight"
	case Ready:
		return "Ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, v := range []State{Idle, InFlight, Ready} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("feedback: unknown state %q", text)
}

// Reader errors.
var (
	// ErrInFlight is returned by Capture while a previous capture is pending.
	ErrInFlight = errors.New("feedback: capture already in flight")

	// ErrUnconsumed is returned by Capture while captured samples have not
	// been consumed yet.
	ErrUnconsumed = errors.New("feedback: captured samples not consumed")

	// ErrCaptureFailed is returned by CaptureSync when the transfer failed,
	// delivered the wrong number of samples, or was superseded by Reset.
	ErrCaptureFailed = errors.New("feedback: capture failed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("feedback: reader closed")
)

// Source produces the per-pixel feedback samples.
type Source interface {
	// Capture starts an asynchronous transfer of the current sample buffer.
	// done must be called exactly once, from any goroutine, with the samples
	// on success or a non-nil error on failure. samples only need to stay
	// valid until done returns.
	Capture(done func(samples []uint32, err error))

	// Clear resets the sample buffer to all zeros before the next frame is
	// sampled.
	Clear()
}

// Reader tracks feedback readback as an Idle → InFlight → Ready → Idle state
// machine and owns the buffer captured samples are copied into.
//
// Every capture is tagged with the generation current when it was issued.
// Reset and Close advance the generation, so a completion that arrives later
// is discarded instead of overwriting fresh state.
//
// The state methods may be called from any goroutine; completions normally
// arrive on a goroutine owned by the Source.
type Reader struct {
	src Source

	mu       sync.Mutex
	state    State
	gen      uint64
	closed   bool
	samples  []uint32
	done     chan struct{} // closed when the current capture completes
	failures uint64
}

// NewReader creates a reader for a sample buffer of the given length.
func NewReader(src Source, size int) *Reader {
	if size < 0 {
		size = 0
	}
	done := make(chan struct{})
	close(done)
	return &Reader{
		src:     src,
		samples: make([]uint32, size),
		done:    done,
	}
}

// Size returns the expected number of samples per capture.
func (r *Reader) Size() int { return len(r.samples) }

// State returns the current readback state.
func (r *Reader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// HasData reports whether captured samples are waiting to be consumed.
func (r *Reader) HasData() bool { return r.State() == Ready }

// Generation returns the current capture generation.
func (r *Reader) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Failures returns how many captures completed with an error or a buffer of
// the wrong length.
func (r *Reader) Failures() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

// Capture issues an asynchronous capture. It moves the reader from Idle to
// InFlight and returns without waiting for the transfer.
func (r *Reader) Capture() error {
	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		return ErrClosed
	case r.state == InFlight:
		r.mu.Unlock()
		return ErrInFlight
	case r.state == Ready:
		r.mu.Unlock()
		return ErrUnconsumed
	}
	r.state = InFlight
	gen := r.gen
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	var once sync.Once
	r.src.Capture(func(samples []uint32, err error) {
		once.Do(func() {
			r.complete(gen, samples, err)
			close(done)
		})
	})
	return nil
}

// CaptureSync issues a capture and blocks until it completes or ctx is done.
// If a capture is already in flight it waits for that one instead of
// issuing another, and if unconsumed samples are waiting it returns at once.
// It returns nil only if the reader ends up Ready with samples from the
// current generation.
func (r *Reader) CaptureSync(ctx context.Context) error {
	err := r.Capture()
	if err != nil && !errors.Is(err, ErrInFlight) && !errors.Is(err, ErrUnconsumed) {
		return err
	}

	r.mu.Lock()
	done, gen := r.done, r.gen
	r.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen || r.state != Ready {
		return ErrCaptureFailed
	}
	return nil
}

func (r *Reader) complete(gen uint64, samples []uint32, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen || r.closed {
		slogger().Warn("feedback: discarding stale capture",
			"generation", gen, "current", r.gen)
		return
	}
	if err == nil && len(samples) != len(r.samples) {
		err = fmt.Errorf("got %d samples, want %d", len(samples), len(r.samples))
	}
	if err != nil {
		r.state = Idle
		r.failures++
		slogger().Warn("feedback: capture failed", "err", err)
		return
	}
	copy(r.samples, samples)
	r.state = Ready
}

// Samples returns the captured samples while the reader is Ready and nil
// otherwise. The slice is owned by the reader and stays unchanged until
// Consume or Reset.
func (r *Reader) Samples() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Ready {
		return nil
	}
	return r.samples
}

// Consume releases the captured samples, moving the reader from Ready to
// Idle. It is a no-op in any other state.
func (r *Reader) Consume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Ready {
		r.state = Idle
	}
}

// Clear forwards to the source, zeroing its sample buffer.
func (r *Reader) Clear() {
	r.src.Clear()
}

// Reset returns the reader to Idle and invalidates any capture in flight.
func (r *Reader) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state = Idle
}

// Close invalidates any capture in flight and rejects further captures.
// It is safe to call more than once.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.gen++
	r.state = Idle
}
