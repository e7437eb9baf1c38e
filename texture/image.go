// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/gogpu/gpucontext"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/bmp"

	"github.com/gogpu/rvt"
)

// ErrInvalidScale is returned by WriteDebugBMP for a non-positive scale.
var ErrInvalidScale = errors.New("texture: invalid debug scale")

// PageTableImage is a CPU copy of the page-table texture.
//
// Texel (x, y) describes page (x, y) at mip 0: R and G hold the pool
// position of the tile serving it, B the mip level of that tile and A is
// 255 once any page covers it. A page at mip m covers a 2^m × 2^m block of
// texels, aligned to 2^m.
//
// Apply and Reset are called from the frame loop; the read methods may be
// called concurrently from other goroutines.
type PageTableImage struct {
	pageNum  int
	tileNum  int
	mipCount int

	mu      sync.RWMutex
	img     *image.RGBA
	applies int
}

// NewPageTableImage creates an empty page-table image for cfg.
func NewPageTableImage(cfg rvt.Config) *PageTableImage {
	return &PageTableImage{
		pageNum:  cfg.PageNum,
		tileNum:  cfg.TileNum,
		mipCount: cfg.MipCount(),
		img:      image.NewRGBA(image.Rect(0, 0, cfg.PageNum, cfg.PageNum)),
	}
}

// Size returns the edge of the image in texels.
func (p *PageTableImage) Size() int { return p.pageNum }

// Apply writes batch in order, so later entries overwrite earlier ones where
// their regions overlap. Regions are clipped to the image.
func (p *PageTableImage) Apply(batch []rvt.UpdateRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, req := range batch {
		if req.PhysicalX < 0 || req.PhysicalX > 0xff || req.PhysicalY < 0 || req.PhysicalY > 0xff || req.Mip < 0 || req.Mip > 30 {
			return fmt.Errorf("texture: update %v does not fit a texel", req)
		}
	}

	bounds := p.img.Bounds()
	for _, req := range batch {
		region := 1 << req.Mip
		x, y := snap(req.VirtualX, region), snap(req.VirtualY, region)
		r := image.Rect(x, y, x+region, y+region).Intersect(bounds)
		c := color.RGBA{R: uint8(req.PhysicalX), G: uint8(req.PhysicalY), B: uint8(req.Mip), A: 0xff} //nolint:gosec // range checked above
		for py := r.Min.Y; py < r.Max.Y; py++ {
			row := p.img.Pix[p.img.PixOffset(r.Min.X, py):p.img.PixOffset(r.Max.X, py)]
			for i := 0; i < len(row); i += 4 {
				row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
			}
		}
	}
	p.applies++
	rvt.Logger().Debug("texture: page table applied", "updates", len(batch), "applies", p.applies)
	return nil
}

// Reset clears every texel.
func (p *PageTableImage) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.img.Pix)
	p.applies = 0
}

// Applies returns the number of batches applied since the last Reset.
func (p *PageTableImage) Applies() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.applies
}

// Lookup returns the texel for page (x, y). ok is false if no page covers
// it or the coordinate is outside the image.
func (p *PageTableImage) Lookup(x, y int) (physX, physY, mip int, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !(image.Point{X: x, Y: y}).In(p.img.Bounds()) {
		return 0, 0, 0, false
	}
	c := p.img.RGBAAt(x, y)
	if c.A == 0 {
		return 0, 0, 0, false
	}
	return int(c.R), int(c.G), int(c.B), true
}

// Snapshot returns a copy of the image.
func (p *PageTableImage) Snapshot() *image.RGBA {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := image.NewRGBA(p.img.Bounds())
	copy(out.Pix, p.img.Pix)
	return out
}

// Upload pushes the texels to a GPU texture of the same size and RGBA8
// format.
func (p *PageTableImage) Upload(u gpucontext.TextureUpdater) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := u.UpdateData(p.img.Pix); err != nil {
		return fmt.Errorf("texture: page table upload: %w", err)
	}
	return nil
}

// DebugImage returns the image with its channels stretched to the full
// range and each texel scaled up to a scale × scale block.
func (p *PageTableImage) DebugImage(scale int) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	src := p.Snapshot()
	tileMax := max(p.tileNum-1, 1)
	mipMax := max(p.mipCount-1, 1)
	for i := 0; i < len(src.Pix); i += 4 {
		if src.Pix[i+3] == 0 {
			continue
		}
		src.Pix[i] = stretch(src.Pix[i], tileMax)
		src.Pix[i+1] = stretch(src.Pix[i+1], tileMax)
		src.Pix[i+2] = stretch(src.Pix[i+2], mipMax)
	}
	if scale == 1 {
		return src, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, p.pageNum*scale, p.pageNum*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

func stretch(v uint8, top int) uint8 {
	return uint8(min(int(v)*255/top, 255)) //nolint:gosec // clamped
}

// WriteDebugBMP encodes DebugImage(scale) as BMP.
func (p *PageTableImage) WriteDebugBMP(w io.Writer, scale int) error {
	img, err := p.DebugImage(scale)
	if err != nil {
		return err
	}
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("texture: encode page table: %w", err)
	}
	return nil
}
