// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package feedback

import (
	"cmp"
	"slices"

	"github.com/gogpu/rvt/internal/parallel"
	"github.com/gogpu/rvt/page"
)

// DefaultSegments is the number of sample-buffer segments scanned in parallel.
const DefaultSegments = 6

// Executor runs a batch of independent tasks and returns once all of them
// have finished. *parallel.WorkerPool implements it.
type Executor interface {
	ExecuteAll(work []func())
}

// sequential runs tasks one after another on the caller.
type sequential struct{}

func (sequential) ExecuteAll(work []func()) {
	for _, fn := range work {
		fn()
	}
}

// segment is the private result of scanning one range of the buffer.
// ids keeps insertion order so the merge is deterministic.
type segment struct {
	ids []page.ID
	set map[page.ID]struct{}
}

func (s *segment) reset() {
	s.ids = s.ids[:0]
	clear(s.set)
}

func (s *segment) add(id page.ID) {
	if _, ok := s.set[id]; ok {
		return
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// Analyzer turns a captured sample buffer into a deduplicated request list
// ordered coarsest mip first.
//
// The buffer is cut into a fixed number of contiguous segments that are
// scanned concurrently. Each segment only records a sample when the run of
// equal samples it belongs to ends inside the segment, which skips the
// redundant inserts caused by neighbouring pixels requesting the same page.
// The run still open at the end of a segment is not recorded, so a page seen
// only there is missed for this frame and picked up on a later one.
//
// An Analyzer is not safe for concurrent use.
type Analyzer struct {
	exec     Executor
	segments []segment
	seen     map[page.ID]struct{}
}

// NewAnalyzer creates an analyzer that splits buffers into the given number
// of segments (DefaultSegments if not positive) and scans them on exec.
// A nil exec scans segments sequentially.
func NewAnalyzer(segments int, exec Executor) *Analyzer {
	if segments <= 0 {
		segments = DefaultSegments
	}
	if exec == nil {
		exec = sequential{}
	}
	a := &Analyzer{
		exec:     exec,
		segments: make([]segment, segments),
		seen:     make(map[page.ID]struct{}),
	}
	for i := range a.segments {
		a.segments[i].set = make(map[page.ID]struct{})
	}
	return a
}

// Segments returns the number of segments a buffer is split into.
func (a *Analyzer) Segments() int { return len(a.segments) }

// AnalyzeInto appends the requested pages found in samples to dst and
// returns the extended slice, sorted by descending raw ID value. Because the
// mip level sits in the high bits, coarser pages come first. samples must
// not be modified until AnalyzeInto returns.
func (a *Analyzer) AnalyzeInto(dst []page.ID, samples []uint32) []page.ID {
	ranges := parallel.Split(len(samples), len(a.segments))

	work := make([]func(), len(ranges))
	for i, r := range ranges {
		seg := &a.segments[i]
		work[i] = func() {
			seg.reset()
			scan(seg, samples[r.Start:r.End])
		}
	}
	a.exec.ExecuteAll(work)

	// Merge in segment order, not completion order.
	clear(a.seen)
	base := len(dst)
	for i := range a.segments {
		for _, id := range a.segments[i].ids {
			if _, ok := a.seen[id]; ok {
				continue
			}
			a.seen[id] = struct{}{}
			dst = append(dst, id)
		}
	}

	slices.SortFunc(dst[base:], func(x, y page.ID) int {
		return cmp.Compare(y, x)
	})

	slogger().Debug("feedback analyzed",
		"samples", len(samples),
		"segments", len(a.segments),
		"requests", len(dst)-base)
	return dst
}

// Analyze is AnalyzeInto with a fresh slice.
func (a *Analyzer) Analyze(samples []uint32) []page.ID {
	return a.AnalyzeInto(nil, samples)
}

// scan records the value of every nonzero run that ends within data.
func scan(seg *segment, data []uint32) {
	var last uint32
	for _, v := range data {
		if v == last {
			continue
		}
		if last != 0 {
			seg.add(page.ID(last))
		}
		last = v
	}
}
