// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package page

import (
	"errors"
	"fmt"
)

// Bit layout of an ID: mip(8) | x(12) | y(12), most significant first.
const (
	mipShift = 24
	xShift   = 12

	coordMask = 0xfff

	// MaxMip is the largest mip level an ID can carry.
	MaxMip = 0xff

	// MaxCoord is the largest page-space coordinate an ID can carry.
	MaxCoord = coordMask
)

// ErrOutOfRange is returned by Encode when a component does not fit its field.
var ErrOutOfRange = errors.New("page: id component out of range")

// ID identifies one logical page of the virtual texture at a given mip level.
//
// The zero ID is reserved by the feedback pass to mean "no page requested",
// so page (mip 0, x 0, y 0) cannot be requested through feedback.
//
// Because the mip level occupies the most significant byte, ordering IDs by
// their raw value orders them by mip level first.
type ID uint32

// Encode packs a mip level and page coordinate into an ID.
func Encode(mip, x, y int) (ID, error) {
	if mip < 0 || mip > MaxMip {
		return 0, fmt.Errorf("%w: mip %d", ErrOutOfRange, mip)
	}
	if x < 0 || x > MaxCoord {
		return 0, fmt.Errorf("%w: x %d", ErrOutOfRange, x)
	}
	if y < 0 || y > MaxCoord {
		return 0, fmt.Errorf("%w: y %d", ErrOutOfRange, y)
	}
	return ID(uint32(mip)<<mipShift | uint32(x)<<xShift | uint32(y)), nil //nolint:gosec // ranges checked above
}

// MustEncode is like Encode but panics if a component is out of range.
func MustEncode(mip, x, y int) ID {
	id, err := Encode(mip, x, y)
	if err != nil {
		panic(err)
	}
	return id
}

// Decode unpacks an ID. Every 32-bit value decodes; whether the result is
// valid for a particular virtual texture is up to the caller.
func Decode(id ID) (mip, x, y int) {
	return id.Mip(), id.X(), id.Y()
}

// Mip returns the mip level of the page.
func (id ID) Mip() int { return int(id >> mipShift) }

// X returns the page-space x coordinate.
func (id ID) X() int { return int(id>>xShift) & coordMask }

// Y returns the page-space y coordinate.
func (id ID) Y() int { return int(id) & coordMask }

// String returns a human-readable form of the ID.
func (id ID) String() string {
	return fmt.Sprintf("page(mip=%d x=%d y=%d)", id.Mip(), id.X(), id.Y())
}
