// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package page holds the residency bookkeeping of a runtime virtual texture.
//
// An [ID] packs a mip level and a page coordinate into 32 bits. A [Table] maps
// resident IDs to slots of a fixed physical tile pool and evicts the least
// recently used page when the pool is full:
//
//	t := page.NewTable(8) // 64 slots
//	id := page.MustEncode(3, 12, 40)
//	if _, ok := t.IsActive(id); ok {
//	    t.Refresh(id, frame)
//	} else {
//	    slot := t.SetActive(id, frame)
//	    // render the page into slot
//	}
//
// Eviction is strictly by access order. Render cost is not considered, so a
// working set larger than the pool churns every frame.
package page
