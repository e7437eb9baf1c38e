// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel provides the fan-out/join helpers used by feedback
// analysis and page-table instance generation.
//
// Work is split into contiguous index ranges with [Split], each range is
// processed by one task with no shared mutable state, and [WorkerPool.ExecuteAll]
// acts as the barrier before results are merged in range order.
package parallel
