package rvt

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rvt/feedback"
)

// FrameStats summarizes one call to Volume.Update.
type FrameStats struct {
	// Frame is the frame counter the update ran at.
	Frame int
	// Enabled is false when the volume was disabled; all other fields are
	// then zero.
	Enabled bool

	// Analyzed is the number of requests produced by feedback analysis
	// this frame.
	Analyzed int
	// Requests is the number of analyzed requests applied this frame.
	Requests int

	Updates      int
	Hits         int
	Misses       int
	Deferred     int
	Dropped      int
	Evictions    int
	RenderErrors int

	// Rewritten reports whether the page-table writer was called.
	Rewritten bool
	// WriteFailed reports whether the page-table writer returned an error.
	WriteFailed bool

	// Readback is the readback state at the end of the update.
	Readback feedback.State
	// Resident is the number of resident pages at the end of the update.
	Resident int
}

func (s *FrameStats) addBatch(b Batch) {
	s.Updates = len(b.Updates)
	s.Hits = b.Hits
	s.Misses = b.Misses
	s.Deferred = b.Deferred
	s.Dropped = b.Dropped
	s.Evictions = b.Evictions
	s.RenderErrors = b.RenderErrors
}

// String returns a compact single-line form for logs.
func (s FrameStats) String() string {
	if !s.Enabled {
		return fmt.Sprintf("frame %d: disabled", s.Frame)
	}
	return fmt.Sprintf("frame %d: requests=%d updates=%d hits=%d misses=%d deferred=%d dropped=%d evictions=%d rewritten=%t readback=%v",
		s.Frame, s.Requests, s.Updates, s.Hits, s.Misses, s.Deferred, s.Dropped, s.Evictions, s.Rewritten, s.Readback)
}

// HUD renders the on-screen counter block for the given language.
func (s FrameStats) HUD(tag language.Tag) string {
	p := message.NewPrinter(tag)
	if !s.Enabled {
		return p.Sprintf("RVT:Off\n")
	}
	return p.Sprintf("RVT:On\nrequests:%d\nrender tile count:%d\nresident:%d\n",
		s.Requests, s.Misses, s.Resident)
}
