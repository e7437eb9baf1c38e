// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/gogpu/rvt"
)

// CSVWriter stores frames in a CSV file with a header row.
type CSVWriter struct {
	path string
	file *os.File
	csv  *csv.Writer

	frames     []rvt.FrameStats
	bufferSize int
	closed     bool
}

// NewCSVWriter creates a CSV writer for path.
func NewCSVWriter(path string) *CSVWriter {
	if path == "" {
		path = defaultPath(".csv")
	}
	return &CSVWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the CSV file path.
func (w *CSVWriter) Path() string { return w.path }

// Init creates the CSV file. If the file already exists, it is overwritten.
func (w *CSVWriter) Init() error {
	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	w.file = file
	w.csv = csv.NewWriter(file)
	if err := w.csv.Write(columns); err != nil {
		file.Close()
		w.file, w.csv = nil, nil
		return fmt.Errorf("trace: write header: %w", err)
	}
	w.csv.Flush()

	atexit.Register(func() {
		if err := w.Close(); err != nil {
			rvt.Logger().Error("trace: close at exit", "path", w.path, "err", err)
		}
	})
	return nil
}

// Write buffers st.
func (w *CSVWriter) Write(st rvt.FrameStats) error {
	w.frames = append(w.frames, st)
	if len(w.frames) >= w.bufferSize {
		return w.Flush()
	}
	return nil
}

// Flush writes buffered frames to the file.
func (w *CSVWriter) Flush() error {
	if w.csv == nil {
		return nil
	}
	for _, st := range w.frames {
		if err := w.csv.Write(record(st)); err != nil {
			return fmt.Errorf("trace: write frame %d: %w", st.Frame, err)
		}
	}
	w.frames = nil
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	if w.closed || w.file == nil {
		return nil
	}
	w.closed = true
	if err := w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
