// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package trace records per-frame statistics of a virtual texture so that
// residency churn can be inspected after a run.
//
// Writers buffer frames in memory and flush in batches. Files are named
// with a unique xid when no path is given, and every writer flushes itself
// when the process exits through atexit.
package trace
