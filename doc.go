// Package rvt manages the pages of a runtime virtual texture.
//
// # Overview
//
// A virtual texture is far larger than the physical tile pool that backs
// it. Each frame the renderer writes, per pixel, the page it would like to
// sample into a feedback buffer. rvt reads that buffer back, turns it into
// a deduplicated request list, decides which pages become resident under a
// least-recently-used policy and a per-frame render budget, and produces
// the batch of page-table entries the renderer samples through.
//
// # Quick Start
//
//	import "github.com/gogpu/rvt"
//
//	v, err := rvt.New(rvt.DefaultConfig(),
//	    rvt.WithFeedbackSource(src),
//	    rvt.WithTileRenderer(renderer),
//	    rvt.WithPageTableWriter(writer),
//	)
//	if err != nil {
//	    return err
//	}
//	defer v.Close()
//
//	for running {
//	    stats, _ := v.Update()
//	    hud.SetText(stats.HUD(language.English))
//	}
//
// # Architecture
//
// The library is organized into:
//   - page: page identifiers and the LRU page table
//   - feedback: readback state machine and feedback analysis
//   - rvt: per-frame coordination (Coordinator, Volume)
//   - texture: physical tile layout, CPU page-table image, draw instances
//   - shader: WGSL sources and SPIR-V compilation
//
// # Frame Loop
//
// Coarser mips are serviced first, so a low-detail page is always available
// while finer pages stream in. A page evicted from the pool loses its tile
// content; the next request for it is a miss and renders again.
package rvt

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
