// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBitmap(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		height    int
		shouldErr bool
		empty     bool
	}{
		{name: "normal", width: 4, height: 3},
		{name: "zero width is empty", width: 0, height: 3, empty: true},
		{name: "zero height is empty", width: 4, height: 0, empty: true},
		{name: "negative width", width: -1, height: 3, shouldErr: true},
		{name: "negative height", width: 4, height: -1, shouldErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBitmap(tt.width, tt.height)
			if tt.shouldErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.empty, b.Empty())
			if !tt.empty {
				assert.Equal(t, tt.width*4, b.Stride)
				assert.Len(t, b.Pix, tt.width*4*tt.height)
			}
		})
	}
}

func TestBitmap_Crop(t *testing.T) {
	b, err := NewBitmap(4, 4)
	require.NoError(t, err)
	// Mark pixel (2,1) so the crop offset is observable.
	b.Pix[1*b.Stride+2*4] = 0xff

	out, err := b.Crop(IntRect{X: 2, Y: 1, Width: 2, Height: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Width)
	assert.Equal(t, 2, out.Height)
	assert.Equal(t, byte(0xff), out.Pix[0])
}

func TestBitmap_CropRespectsStride(t *testing.T) {
	// Row padding beyond Width*4 must not leak into the crop.
	b := Bitmap{Width: 2, Height: 2, Stride: 12, Pix: make([]byte, 24)}
	b.Pix[12] = 0xaa // first byte of second row

	out, err := b.Crop(IntRect{X: 0, Y: 0, Width: 2, Height: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, out.Stride)
	assert.Equal(t, byte(0xaa), out.Pix[8])
}

func TestBitmap_CropErrors(t *testing.T) {
	b, err := NewBitmap(4, 4)
	require.NoError(t, err)

	tests := []struct {
		name string
		r    IntRect
	}{
		{name: "empty rect", r: IntRect{X: 0, Y: 0, Width: 0, Height: 2}},
		{name: "negative origin", r: IntRect{X: -1, Y: 0, Width: 2, Height: 2}},
		{name: "overflows right edge", r: IntRect{X: 3, Y: 0, Width: 2, Height: 2}},
		{name: "overflows bottom edge", r: IntRect{X: 0, Y: 3, Width: 2, Height: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Crop(tt.r)
			assert.Error(t, err)
		})
	}

	t.Run("empty source", func(t *testing.T) {
		_, err := Bitmap{}.Crop(IntRect{Width: 1, Height: 1})
		assert.Error(t, err)
	})

	t.Run("short pixel buffer", func(t *testing.T) {
		bad := Bitmap{Width: 4, Height: 4, Stride: 16, Pix: make([]byte, 8)}
		_, err := bad.Crop(IntRect{Width: 1, Height: 1})
		assert.Error(t, err)
	})
}
