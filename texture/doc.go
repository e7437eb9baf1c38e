// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texture holds the GPU-facing side of a virtual texture: the
// physical tile layout, the page-table indirection image, the per-update
// draw parameters and the HAL resources backing them.
//
// PageTableImage implements rvt.PageTableWriter and rvt.Resetter, so it can
// be handed directly to rvt.New:
//
//	pt := texture.NewPageTableImage(cfg)
//	v, err := rvt.New(cfg, rvt.WithFeedbackSource(src), rvt.WithPageTableWriter(pt))
package texture
