// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"github.com/gogpu/rvt"
	"github.com/gogpu/rvt/internal/parallel"
)

// instanceChunks is the number of ranges an instance batch is split into.
const instanceChunks = 4

// Executor runs independent tasks and waits for all of them.
// *parallel.WorkerPool implements it.
type Executor interface {
	ExecuteAll(work []func())
}

// PageInstance is one instanced quad of the page-table draw.
type PageInstance struct {
	// NDC is the page region in page-table clip space.
	NDC Rect
	// PageInfo is (physX/256, physY/256, mip/256, 1), the texel written.
	PageInfo [4]float32
}

// TileInstance is one instanced quad of the tile render pass.
type TileInstance struct {
	// NDC is the padded tile in physical-texture clip space.
	NDC Rect
	UV  UVTransform
}

// PageInstances computes the page-table draw instances for batch into dst,
// which is grown as needed, and returns it. The region of each update is
// snapped to its mip's alignment. A nil exec computes sequentially.
func PageInstances(dst []PageInstance, pageNum int, batch []rvt.UpdateRequest, exec Executor) []PageInstance {
	dst = grow(dst, len(batch))
	n := float32(pageNum)
	forChunks(len(batch), exec, func(i int) {
		req := batch[i]
		region := 1 << req.Mip
		x := float32(snap(req.VirtualX, region))
		y := float32(snap(req.VirtualY, region))
		r := float32(region)
		dst[i] = PageInstance{
			NDC: Rect{
				L: 2*x/n - 1,
				R: 2*(x+r)/n - 1,
				B: 2*y/n - 1,
				T: 2*(y+r)/n - 1,
			},
			PageInfo: [4]float32{
				float32(req.PhysicalX) / 256,
				float32(req.PhysicalY) / 256,
				float32(req.Mip) / 256,
				1,
			},
		}
	})
	return dst
}

// TileInstances computes the tile render instances for batch into dst.
func (l PhysicalLayout) TileInstances(dst []TileInstance, batch []rvt.UpdateRequest, exec Executor) []TileInstance {
	dst = grow(dst, len(batch))
	forChunks(len(batch), exec, func(i int) {
		req := batch[i]
		dst[i] = TileInstance{
			NDC: l.TileNDC(req.PhysicalX, req.PhysicalY),
			UV:  l.UVTransform(req),
		}
	})
	return dst
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

// forChunks calls fn for every index in [0, n), split into contiguous
// chunks. Each index is written by exactly one chunk.
func forChunks(n int, exec Executor, fn func(i int)) {
	if n == 0 {
		return
	}
	ranges := parallel.Split(n, instanceChunks)
	work := make([]func(), 0, len(ranges))
	for _, r := range ranges {
		if r.Len() == 0 {
			continue
		}
		work = append(work, func() {
			for i := r.Start; i < r.End; i++ {
				fn(i)
			}
		})
	}
	if exec == nil {
		for _, w := range work {
			w()
		}
		return
	}
	exec.ExecuteAll(work)
}
