// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"sync"

	"github.com/gogpu/rvt"
)

// InstanceWriter is a rvt.PageTableWriter that computes the page-table draw
// instances of every applied batch before handing the batch to the next
// writer. It stands in for the instanced draw a GPU renderer would issue.
type InstanceWriter struct {
	next    rvt.PageTableWriter
	pageNum int
	exec    Executor

	mu        sync.Mutex
	instances []PageInstance
	batches   int
	total     int
}

// NewInstanceWriter wraps next. A nil next only computes instances; a nil
// exec computes them sequentially.
func NewInstanceWriter(cfg rvt.Config, next rvt.PageTableWriter, exec Executor) *InstanceWriter {
	return &InstanceWriter{next: next, pageNum: cfg.PageNum, exec: exec}
}

// Apply computes the instances for batch, then forwards it. The instances
// are kept even if the next writer fails.
func (w *InstanceWriter) Apply(batch []rvt.UpdateRequest) error {
	w.mu.Lock()
	w.instances = PageInstances(w.instances, w.pageNum, batch, w.exec)
	w.batches++
	w.total += len(batch)
	w.mu.Unlock()

	if w.next == nil {
		return nil
	}
	return w.next.Apply(batch)
}

// Reset drops the last instances and resets the next writer if it
// supports it.
func (w *InstanceWriter) Reset() {
	w.mu.Lock()
	w.instances = w.instances[:0]
	w.batches = 0
	w.total = 0
	w.mu.Unlock()

	if r, ok := w.next.(rvt.Resetter); ok {
		r.Reset()
	}
}

// Instances returns a copy of the instances of the last applied batch.
func (w *InstanceWriter) Instances() []PageInstance {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]PageInstance(nil), w.instances...)
}

// Batches returns the number of batches applied since the last Reset.
func (w *InstanceWriter) Batches() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batches
}

// Total returns the number of instances computed since the last Reset.
func (w *InstanceWriter) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}
