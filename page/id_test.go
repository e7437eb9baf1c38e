// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package page

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		mip, x, y int
	}{
		{0, 0, 0},
		{0, 1, 0},
		{8, 255, 17},
		{1, MaxCoord, MaxCoord},
		{MaxMip, 0, MaxCoord},
		{MaxMip, MaxCoord, MaxCoord},
	}
	for _, tt := range tests {
		id, err := Encode(tt.mip, tt.x, tt.y)
		if err != nil {
			t.Fatalf("Encode(%d, %d, %d) error: %v", tt.mip, tt.x, tt.y, err)
		}
		mip, x, y := Decode(id)
		if mip != tt.mip || x != tt.x || y != tt.y {
			t.Errorf("Decode(Encode(%d, %d, %d)) = (%d, %d, %d)", tt.mip, tt.x, tt.y, mip, x, y)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	id := MustEncode(0x12, 0x345, 0x678)
	if uint32(id) != 0x12345678 {
		t.Errorf("MustEncode = %#08x, want 0x12345678", uint32(id))
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		mip, x, y int
	}{
		{"mip too large", 256, 0, 0},
		{"x too large", 0, 4096, 0},
		{"y too large", 0, 0, 4096},
		{"negative mip", -1, 0, 0},
		{"negative x", 0, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.mip, tt.x, tt.y)
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Encode error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestMustEncodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustEncode did not panic")
		}
	}()
	MustEncode(0, 5000, 0)
}

func TestDecodeAnyValue(t *testing.T) {
	mip, x, y := Decode(ID(0xffffffff))
	if mip != MaxMip || x != MaxCoord || y != MaxCoord {
		t.Errorf("Decode(0xffffffff) = (%d, %d, %d)", mip, x, y)
	}
}

func TestIDOrderFollowsMip(t *testing.T) {
	coarse := MustEncode(5, 0, 0)
	fine := MustEncode(4, MaxCoord, MaxCoord)
	if coarse <= fine {
		t.Errorf("mip 5 id %v should sort above mip 4 id %v", coarse, fine)
	}
}

func TestIDString(t *testing.T) {
	if got := MustEncode(2, 3, 4).String(); got != "page(mip=2 x=3 y=4)" {
		t.Errorf("String() = %q", got)
	}
}
