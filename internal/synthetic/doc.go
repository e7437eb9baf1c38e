// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package synthetic provides deterministic stand-ins for the GPU side of the
// virtual texture: a Scene that produces feedback samples for a camera
// flying over a terrain, and a Recorder that plays the tile renderer.
//
// They drive the simulator and the end-to-end tests.
package synthetic
