package rvt

import "fmt"

// UpdateRequest maps one virtual page to the physical tile holding it.
// It is produced fresh every frame by the Coordinator.
type UpdateRequest struct {
	// VirtualX and VirtualY are page coordinates in page-table space.
	VirtualX, VirtualY int
	// PhysicalX and PhysicalY locate the tile in the pool.
	PhysicalX, PhysicalY int
	// Mip is the mip level of the page.
	Mip int
}

func (r UpdateRequest) String() string {
	return fmt.Sprintf("mip %d (%d,%d) -> tile (%d,%d)", r.Mip, r.VirtualX, r.VirtualY, r.PhysicalX, r.PhysicalY)
}

// TileRenderer populates the content of a physical tile.
//
// RenderTile is called synchronously for every miss; the Coordinator does
// not continue until it returns. An error is logged and counted, and the
// page stays resident with whatever content the slot holds.
type TileRenderer interface {
	RenderTile(req UpdateRequest) error
}

// PageTableWriter writes update batches into the indirection structure the
// renderer samples. Apply is called at most once per frame and never with
// an empty batch. The batch is only valid for the duration of the call.
type PageTableWriter interface {
	Apply(batch []UpdateRequest) error
}

// Resetter is implemented by collaborators that hold per-activation state,
// such as a page-table image. Volume calls Reset when residency is
// discarded.
type Resetter interface {
	Reset()
}

type nopRenderer struct{}

func (nopRenderer) RenderTile(UpdateRequest) error { return nil }

type nopWriter struct{}

func (nopWriter) Apply([]UpdateRequest) error { return nil }
