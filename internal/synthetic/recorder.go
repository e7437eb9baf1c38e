// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package synthetic

import (
	"sync"

	"github.com/gogpu/rvt"
	"github.com/gogpu/rvt/texture"
)

// Render is one tile render recorded by a Recorder.
type Render struct {
	Request rvt.UpdateRequest
	// Source is the terrain UV transform the tile was drawn with.
	Source texture.UVTransform
	// Target is the tile rectangle in the physical textures.
	Target texture.Rect
}

// Recorder implements rvt.TileRenderer by recording what would be drawn.
type Recorder struct {
	layout texture.PhysicalLayout

	mu      sync.Mutex
	renders []Render
	fail    func(rvt.UpdateRequest) error

	req  [1]rvt.UpdateRequest
	inst []texture.TileInstance
}

// NewRecorder creates a recorder for cfg's physical layout.
func NewRecorder(cfg rvt.Config) *Recorder {
	return &Recorder{layout: texture.NewPhysicalLayout(cfg)}
}

// FailWith makes RenderTile return fn's result. A nil fn never fails.
func (r *Recorder) FailWith(fn func(rvt.UpdateRequest) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fn
}

// RenderTile records req.
func (r *Recorder) RenderTile(req rvt.UpdateRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		if err := r.fail(req); err != nil {
			return err
		}
	}
	r.req[0] = req
	r.inst = r.layout.TileInstances(r.inst, r.req[:], nil)
	r.renders = append(r.renders, Render{
		Request: req,
		Source:  r.inst[0].UV,
		Target:  r.inst[0].NDC,
	})
	return nil
}

// Count returns the number of tiles rendered.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.renders)
}

// Renders returns a copy of the recorded renders.
func (r *Recorder) Renders() []Render {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Render(nil), r.renders...)
}

// Reset drops recorded renders.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = nil
}
