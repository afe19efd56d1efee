// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package raster renders document pages to pixel buffers and encodes them
// as PNG for transmission to the description service. Unlike the rest of
// the engine, invalid inputs here are caller bugs and are reported as
// errors instead of being silently skipped.
package raster

import (
	"fmt"
)

// IntRect is a rectangle in pixel space.
type IntRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle covers no pixels.
func (r IntRect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Bitmap is a 32-bit-per-pixel BGRA buffer with an explicit row stride.
// Stride may exceed Width*4 for alignment. The zero Bitmap is the
// canonical empty bitmap.
type Bitmap struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// NewBitmap allocates a tightly packed bitmap. Zero dimensions yield the
// empty bitmap; negative dimensions are an error.
func NewBitmap(width, height int) (Bitmap, error) {
	if width < 0 || height < 0 {
		return Bitmap{}, fmt.Errorf("invalid bitmap dimensions %dx%d", width, height)
	}
	if width == 0 || height == 0 {
		return Bitmap{}, nil
	}
	stride := width * 4
	return Bitmap{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}, nil
}

// Empty reports whether the bitmap holds no pixels.
func (b Bitmap) Empty() bool {
	return b.Width == 0 || b.Height == 0
}

func (b Bitmap) validate() error {
	if b.Empty() {
		return fmt.Errorf("empty bitmap")
	}
	if b.Stride < b.Width*4 {
		return fmt.Errorf("stride %d shorter than row of %d pixels", b.Stride, b.Width)
	}
	if len(b.Pix) < b.Stride*b.Height {
		return fmt.Errorf("pixel buffer of %d bytes shorter than %d rows of stride %d", len(b.Pix), b.Height, b.Stride)
	}
	return nil
}

// Crop copies the given region into a new tightly packed bitmap. The
// rectangle must lie fully within the source bounds.
func (b Bitmap) Crop(r IntRect) (Bitmap, error) {
	if err := b.validate(); err != nil {
		return Bitmap{}, err
	}
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.Width > b.Width || r.Y+r.Height > b.Height {
		return Bitmap{}, fmt.Errorf("crop rectangle %+v outside bitmap %dx%d", r, b.Width, b.Height)
	}
	out, err := NewBitmap(r.Width, r.Height)
	if err != nil {
		return Bitmap{}, err
	}
	for row := 0; row < r.Height; row++ {
		src := b.Pix[(r.Y+row)*b.Stride+r.X*4:]
		copy(out.Pix[row*out.Stride:(row+1)*out.Stride], src[:r.Width*4])
	}
	return out, nil
}
