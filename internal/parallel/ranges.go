// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in r.
func (r Range) Len() int { return r.End - r.Start }

// Split partitions [0, n) into parts contiguous ranges of ceil(n/parts)
// indices each. Trailing ranges are shortened or empty when n does not divide
// evenly, so the result always has exactly parts elements and the range
// boundaries depend only on n and parts.
func Split(n, parts int) []Range {
	if parts <= 0 {
		parts = 1
	}
	if n < 0 {
		n = 0
	}
	size := (n + parts - 1) / parts

	ranges := make([]Range, parts)
	for i := range ranges {
		start := min(i*size, n)
		end := min(start+size, n)
		ranges[i] = Range{Start: start, End: end}
	}
	return ranges
}
