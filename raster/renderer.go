// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"context"
)

// Renderer turns document pages into bitmaps. Callers must check
// Available before depending on pixel output; the nop variant opens
// documents but renders nothing.
type Renderer interface {
	Available() bool
	Open(path string, dpi float64) (RenderHandle, error)
}

// RenderHandle renders pages of one opened document. Page numbers are
// 1-based.
type RenderHandle interface {
	RenderPage(ctx context.Context, num int) (Bitmap, error)
	Close() error
}

// NopRenderer is the capability-absent implementation. It always reports
// itself unavailable and renders every page as the empty bitmap.
type NopRenderer struct{}

func (NopRenderer) Available() bool { return false }

func (NopRenderer) Open(path string, dpi float64) (RenderHandle, error) {
	return nopHandle{}, nil
}

type nopHandle struct{}

func (nopHandle) RenderPage(ctx context.Context, num int) (Bitmap, error) {
	return Bitmap{}, nil
}

func (nopHandle) Close() error { return nil }
