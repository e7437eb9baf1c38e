package rvt

import (
	"fmt"

	"github.com/gogpu/rvt/page"
)

// Batch is the outcome of resolving one frame's requests.
type Batch struct {
	// Updates lists page-table entries in request order. It is owned by the
	// Coordinator and valid until the next Resolve.
	Updates []UpdateRequest

	// Rewrite reports whether the page-table texture must be rewritten:
	// a tile was allocated, or a hit page was not touched since the last
	// rewrite.
	Rewrite bool

	Hits         int
	Misses       int
	Deferred     int
	Dropped      int
	Evictions    int
	RenderErrors int
}

// Coordinator resolves analyzed feedback requests against the page table,
// allocating tiles for misses under a per-frame budget.
//
// Coordinator is not safe for concurrent use.
type Coordinator struct {
	table    *page.Table
	renderer TileRenderer

	pageNum  int
	mipCount int
	budget   int

	// lastWrite is the frame of the last successful page-table rewrite.
	lastWrite int

	updates []UpdateRequest
}

// NewCoordinator creates a coordinator over table. cfg must be valid and
// table must have cfg.TileNum tiles per side.
func NewCoordinator(cfg Config, table *page.Table, renderer TileRenderer) *Coordinator {
	if table.TileNum() != cfg.TileNum {
		panic(fmt.Sprintf("rvt: table has %d tiles per side, config %d", table.TileNum(), cfg.TileNum))
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &Coordinator{
		table:    table,
		renderer: renderer,
		pageNum:  cfg.PageNum,
		mipCount: cfg.MipCount(),
		budget:   cfg.MaxTileRenderPerFrame,
		updates:  make([]UpdateRequest, 0, table.Capacity()),
	}
}

// Table returns the page table the coordinator mutates.
func (c *Coordinator) Table() *page.Table { return c.table }

// LastWrite returns the frame of the last successful page-table rewrite.
func (c *Coordinator) LastWrite() int { return c.lastWrite }

// Resolve processes requests in order for the given frame.
//
// Requests decoding outside the virtual texture are dropped. Resident pages
// are refreshed. Missing pages get a slot and are rendered until the
// per-frame budget is spent; later misses are deferred to a future frame.
// Resolution stops once the batch holds as many entries as the pool has
// slots.
func (c *Coordinator) Resolve(requests []page.ID, frame int) Batch {
	b := Batch{Updates: c.updates[:0]}
	capacity := c.table.Capacity()
	tileNum := c.table.TileNum()
	evictions := c.table.Stats().Evictions

	for _, id := range requests {
		mip, x, y := page.Decode(id)
		if mip > c.mipCount || x > c.pageNum || y > c.pageNum {
			b.Dropped++
			continue
		}

		var slot page.Slot
		miss := false
		if active, ok := c.table.IsActive(id); ok {
			if active != c.lastWrite {
				b.Rewrite = true
			}
			slot = c.table.TileSlot(id)
			c.table.Refresh(id, frame)
			b.Hits++
		} else {
			if b.Misses >= c.budget {
				b.Deferred++
				continue
			}
			slot = c.table.SetActive(id, frame)
			miss = true
		}

		req := UpdateRequest{
			VirtualX:  x,
			VirtualY:  y,
			PhysicalX: int(slot) % tileNum,
			PhysicalY: int(slot) / tileNum,
			Mip:       mip,
		}
		if miss {
			if err := c.renderer.RenderTile(req); err != nil {
				b.RenderErrors++
				Logger().Warn("rvt: tile render failed", "page", id, "slot", slot, "err", err)
			}
			b.Misses++
			b.Rewrite = true
		}
		b.Updates = append(b.Updates, req)
		if len(b.Updates) >= capacity {
			break
		}
	}

	b.Evictions = int(c.table.Stats().Evictions - evictions) //nolint:gosec // bounded by budget
	c.updates = b.Updates

	Logger().Debug("rvt: requests resolved",
		"frame", frame,
		"requests", len(requests),
		"updates", len(b.Updates),
		"hits", b.Hits,
		"misses", b.Misses,
		"deferred", b.Deferred,
		"dropped", b.Dropped,
		"evictions", b.Evictions)
	return b
}

// Commit hands the batch to w when a rewrite is warranted and the batch is
// not empty, and records frame as the last rewrite on success. It reports
// whether w was called successfully.
func (c *Coordinator) Commit(b Batch, frame int, w PageTableWriter) (bool, error) {
	if len(b.Updates) == 0 || !b.Rewrite {
		return false, nil
	}
	if err := w.Apply(b.Updates); err != nil {
		return false, fmt.Errorf("rvt: page table write: %w", err)
	}
	c.lastWrite = frame
	return true, nil
}

// Reset forgets the last rewrite frame. Used after the page table has been
// cleared.
func (c *Coordinator) Reset() {
	c.lastWrite = 0
}
