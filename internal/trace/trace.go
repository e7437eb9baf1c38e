// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/xid"

	"github.com/gogpu/rvt"
)

// ErrUnknownKind is returned by New for an unsupported writer kind.
var ErrUnknownKind = errors.New("trace: unknown writer kind")

// Writer stores frame statistics.
type Writer interface {
	// Init creates the backing file. It must be called before Write.
	Init() error
	// Write buffers one frame and flushes when the buffer is full.
	Write(st rvt.FrameStats) error
	// Flush writes buffered frames.
	Flush() error
	// Close flushes and releases the backing file. It is safe to call more
	// than once.
	Close() error
	// Path returns the file the writer stores to.
	Path() string
}

// New returns a writer of the given kind, "csv" or "sqlite". An empty path
// selects a unique file name in the working directory.
func New(kind, path string) (Writer, error) {
	switch kind {
	case "csv":
		return NewCSVWriter(path), nil
	case "sqlite":
		return NewSQLiteWriter(path), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func defaultPath(ext string) string {
	return "rvt_trace_" + xid.New().String() + ext
}

var columns = []string{
	"frame", "enabled", "analyzed", "requests", "updates",
	"hits", "misses", "deferred", "dropped", "evictions",
	"render_errors", "rewritten", "write_failed", "readback", "resident",
}

// values returns st in columns order.
func values(st rvt.FrameStats) []any {
	return []any{
		st.Frame, st.Enabled, st.Analyzed, st.Requests, st.Updates,
		st.Hits, st.Misses, st.Deferred, st.Dropped, st.Evictions,
		st.RenderErrors, st.Rewritten, st.WriteFailed, st.Readback.String(), st.Resident,
	}
}

func record(st rvt.FrameStats) []string {
	vs := values(st)
	out := make([]string, len(vs))
	for i, v := range vs {
		switch v := v.(type) {
		case int:
			out[i] = strconv.Itoa(v)
		case bool:
			out[i] = strconv.FormatBool(v)
		case string:
			out[i] = v
		}
	}
	return out
}
