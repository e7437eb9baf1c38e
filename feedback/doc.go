// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package feedback reads back the visibility feedback buffer and turns it
// into page requests.
//
// A Reader drives the asynchronous readback of the per-pixel sample buffer
// through a Source. Once samples are Ready, an Analyzer scans them in
// parallel segments and produces a deduplicated request list ordered
// coarsest mip first:
//
//	r := feedback.NewReader(src, width*height)
//	a := feedback.NewAnalyzer(feedback.DefaultSegments, pool)
//
//	if r.HasData() {
//	    requests = a.AnalyzeInto(requests[:0], r.Samples())
//	    r.Consume()
//	}
//	_ = r.Capture()
//	r.Clear()
package feedback
