// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"slices"
	"testing"

	"github.com/gogpu/rvt"
	"github.com/gogpu/rvt/internal/parallel"
)

func TestPageInstances(t *testing.T) {
	batch := []rvt.UpdateRequest{
		{VirtualX: 5, VirtualY: 9, PhysicalX: 3, PhysicalY: 1, Mip: 2},
		{VirtualX: 0, VirtualY: 15, PhysicalX: 0, PhysicalY: 7, Mip: 0},
	}
	got := PageInstances(nil, 16, batch, nil)
	want := []PageInstance{
		{
			NDC:      Rect{L: -0.5, R: 0, B: 0, T: 0.5},
			PageInfo: [4]float32{3.0 / 256, 1.0 / 256, 2.0 / 256, 1},
		},
		{
			NDC:      Rect{L: -1, R: -0.875, B: 0.875, T: 1},
			PageInfo: [4]float32{0, 7.0 / 256, 0, 1},
		},
	}
	if !slices.Equal(got, want) {
		t.Errorf("PageInstances() = %+v, want %+v", got, want)
	}
}

func TestInstancesParallelMatchesSequential(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	batch := make([]rvt.UpdateRequest, 103)
	for i := range batch {
		batch[i] = rvt.UpdateRequest{
			VirtualX:  (i * 37) % 256,
			VirtualY:  (i * 11) % 256,
			PhysicalX: i % 8,
			PhysicalY: i / 8 % 8,
			Mip:       i % 9,
		}
	}

	seq := PageInstances(nil, 256, batch, nil)
	par := PageInstances(nil, 256, batch, pool)
	if !slices.Equal(seq, par) {
		t.Error("parallel page instances differ from sequential")
	}

	l := NewPhysicalLayout(rvt.DefaultConfig())
	if !slices.Equal(l.TileInstances(nil, batch, nil), l.TileInstances(nil, batch, pool)) {
		t.Error("parallel tile instances differ from sequential")
	}
}

func TestInstancesReuseDst(t *testing.T) {
	dst := make([]PageInstance, 0, 8)
	batch := []rvt.UpdateRequest{{VirtualX: 1}, {VirtualX: 2}}
	got := PageInstances(dst, 4, batch, nil)
	if len(got) != 2 || &got[0] != &dst[:1][0] {
		t.Error("PageInstances did not reuse dst")
	}
	if got := PageInstances(got, 4, nil, nil); len(got) != 0 {
		t.Errorf("empty batch gave %d instances", len(got))
	}
}

func TestTileInstances(t *testing.T) {
	l := PhysicalLayout{TileNum: 2, TileSize: 12, Border: 2, PageNum: 16}
	req := rvt.UpdateRequest{VirtualX: 4, VirtualY: 4, PhysicalX: 1, PhysicalY: 1, Mip: 1}
	got := l.TileInstances(nil, []rvt.UpdateRequest{req}, nil)
	if len(got) != 1 {
		t.Fatalf("got %d instances", len(got))
	}
	if got[0].NDC != l.TileNDC(1, 1) || got[0].UV != l.UVTransform(req) {
		t.Errorf("TileInstances() = %+v", got[0])
	}
}
