package rvt

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/rvt/feedback"
	"github.com/gogpu/rvt/page"
)

// maxTileNum bounds the pool so physical coordinates fit one byte of the
// page-table texel.
const maxTileNum = 256

// Config describes the virtual texture and its physical tile pool.
type Config struct {
	// TileNum is the number of tiles per side of the physical pool.
	// The pool holds TileNum² resident pages.
	TileNum int

	// TileSize is the edge length of a tile in texels, without border.
	TileSize int

	// TileBorder is the padding in texels on each side of a tile, used so
	// bilinear filtering never reads a neighbouring tile.
	TileBorder int

	// PageNum is the virtual resolution in pages per side at mip 0.
	// It must be a power of two.
	PageNum int

	// MaxTileRenderPerFrame caps how many missing tiles are rendered per frame.
	MaxTileRenderPerFrame int

	// FeedbackSegments is the number of segments the feedback buffer is
	// split into for parallel analysis.
	FeedbackSegments int

	// FeedbackWidth and FeedbackHeight are the feedback buffer dimensions.
	FeedbackWidth  int
	FeedbackHeight int
}

// DefaultConfig returns an 8×8 pool of 256-texel tiles over a 256×256 page
// virtual texture, with a 1920×1080 view sampled at 1/8 resolution.
func DefaultConfig() Config {
	return Config{
		TileNum:               8,
		TileSize:              256,
		TileBorder:            4,
		PageNum:               256,
		MaxTileRenderPerFrame: 4,
		FeedbackSegments:      feedback.DefaultSegments,
		FeedbackWidth:         240,
		FeedbackHeight:        135,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.TileNum <= 0 || c.TileNum > maxTileNum:
		return fmt.Errorf("%w: TileNum %d not in [1, %d]", ErrInvalidConfig, c.TileNum, maxTileNum)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: TileSize %d must be positive", ErrInvalidConfig, c.TileSize)
	case c.TileBorder < 0:
		return fmt.Errorf("%w: TileBorder %d must not be negative", ErrInvalidConfig, c.TileBorder)
	case c.PageNum <= 0 || c.PageNum > page.MaxCoord+1 || c.PageNum&(c.PageNum-1) != 0:
		return fmt.Errorf("%w: PageNum %d must be a power of two up to %d", ErrInvalidConfig, c.PageNum, page.MaxCoord+1)
	case c.MaxTileRenderPerFrame <= 0:
		return fmt.Errorf("%w: MaxTileRenderPerFrame %d must be positive", ErrInvalidConfig, c.MaxTileRenderPerFrame)
	case c.FeedbackSegments <= 0:
		return fmt.Errorf("%w: FeedbackSegments %d must be positive", ErrInvalidConfig, c.FeedbackSegments)
	case c.FeedbackWidth <= 0 || c.FeedbackHeight <= 0:
		return fmt.Errorf("%w: feedback size %dx%d", ErrInvalidConfig, c.FeedbackWidth, c.FeedbackHeight)
	}
	return nil
}

// MipCount returns log2(PageNum)+1, the number of mip levels.
func (c Config) MipCount() int {
	if c.PageNum <= 0 {
		return 0
	}
	return bits.Len(uint(c.PageNum))
}

// Capacity returns the number of physical tile slots.
func (c Config) Capacity() int { return c.TileNum * c.TileNum }

// FeedbackSize returns the number of samples in the feedback buffer.
func (c Config) FeedbackSize() int { return c.FeedbackWidth * c.FeedbackHeight }
