// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer renders pages through MuPDF.
type FitzRenderer struct{}

func (FitzRenderer) Available() bool { return true }

func (FitzRenderer) Open(path string, dpi float64) (RenderHandle, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s for rendering: %w", path, err)
	}
	return &fitzHandle{doc: doc, dpi: dpi}, nil
}

type fitzHandle struct {
	doc *fitz.Document
	dpi float64
}

func (h *fitzHandle) RenderPage(ctx context.Context, num int) (Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return Bitmap{}, err
	}
	if num < 1 || num > h.doc.NumPage() {
		return Bitmap{}, fmt.Errorf("render page %d out of range 1..%d", num, h.doc.NumPage())
	}
	img, err := h.doc.ImageDPI(num-1, h.dpi)
	if err != nil {
		return Bitmap{}, fmt.Errorf("render page %d: %w", num, err)
	}
	return fromImage(img)
}

func (h *fitzHandle) Close() error { return h.doc.Close() }

// fromImage copies a decoded image into a BGRA bitmap.
func fromImage(img image.Image) (Bitmap, error) {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	b, err := NewBitmap(bounds.Dx(), bounds.Dy())
	if err != nil {
		return Bitmap{}, err
	}
	for y := 0; y < b.Height; y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := b.Pix[y*b.Stride:]
		for x := 0; x < b.Width; x++ {
			dst[x*4+0] = src[x*4+2] // B
			dst[x*4+1] = src[x*4+1] // G
			dst[x*4+2] = src[x*4+0] // R
			dst[x*4+3] = src[x*4+3] // A
		}
	}
	return b, nil
}
