// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"image"

	"github.com/gogpu/rvt"
)

// Rect is an axis-aligned rectangle in normalized device coordinates.
type Rect struct {
	L, B, R, T float32
}

// UVTransform maps a tile quad's [0,1] UV onto the virtual texture.
// The sampled coordinate is Offset + uv*Scale.
type UVTransform struct {
	OffsetX, OffsetY float32
	Scale            float32
}

// PhysicalLayout describes how tiles are packed into the physical texture.
// Each tile is surrounded by a border so filtering never bleeds across tiles.
type PhysicalLayout struct {
	TileNum  int
	TileSize int
	Border   int
	PageNum  int
}

// NewPhysicalLayout returns the layout for cfg.
func NewPhysicalLayout(cfg rvt.Config) PhysicalLayout {
	return PhysicalLayout{
		TileNum:  cfg.TileNum,
		TileSize: cfg.TileSize,
		Border:   cfg.TileBorder,
		PageNum:  cfg.PageNum,
	}
}

// PaddedSize returns the tile edge including borders.
func (l PhysicalLayout) PaddedSize() int { return l.TileSize + 2*l.Border }

// TextureSize returns the edge of the physical texture in texels.
func (l PhysicalLayout) TextureSize() int { return l.TileNum * l.PaddedSize() }

// TileRect returns the texel rectangle of the tile at pool position
// (physX, physY), borders included.
func (l PhysicalLayout) TileRect(physX, physY int) image.Rectangle {
	p := l.PaddedSize()
	return image.Rect(physX*p, physY*p, (physX+1)*p, (physY+1)*p)
}

// TileNDC returns the tile rectangle in the physical texture's clip space.
func (l PhysicalLayout) TileNDC(physX, physY int) Rect {
	p := float32(l.PaddedSize())
	size := float32(l.TextureSize())
	x, y := float32(physX)*p, float32(physY)*p
	return Rect{
		L: 2*x/size - 1,
		R: 2*(x+p)/size - 1,
		B: 2*y/size - 1,
		T: 2*(y+p)/size - 1,
	}
}

// UVTransform returns the virtual-texture window a tile render for req
// samples, widened by the border on every side.
func (l PhysicalLayout) UVTransform(req rvt.UpdateRequest) UVTransform {
	region := 1 << req.Mip
	posX, posY := snap(req.VirtualX, region), snap(req.VirtualY, region)
	denom := float32(l.PageNum * l.TileSize)
	border := float32(l.Border * region)
	return UVTransform{
		OffsetX: (float32(posX*l.TileSize) - border) / denom,
		OffsetY: (float32(posY*l.TileSize) - border) / denom,
		Scale:   float32(region*l.PaddedSize()) / denom,
	}
}

// snap rounds v down to a multiple of region.
func snap(v, region int) int {
	return v / region * region
}
