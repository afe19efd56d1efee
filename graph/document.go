// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"context"
	"fmt"

	"github.com/sassoftware/pdf-remediate/logger"
)

// ContentEventKind distinguishes the content-stream events the engine
// listens for during replay.
type ContentEventKind int

const (
	// EventBeginMarked is raised for BDC/BMC operators.
	EventBeginMarked ContentEventKind = iota
	// EventEndMarked is raised for EMC operators.
	EventEndMarked
	// EventImage is raised when an image XObject or inline image is painted.
	EventImage
)

// ContentEvent is one rendering event observed while replaying a page's
// content stream.
type ContentEvent struct {
	Kind   ContentEventKind
	Tag    Name // marked-content tag for EventBeginMarked
	MCID   int  // marked-content id for EventBeginMarked, -1 when the tag carries none
	Image  Ref  // image XObject for EventImage, zero for inline images
	Width  int  // pixel width for EventImage
	Height int  // pixel height for EventImage
}

// Document is the contract the host document library fulfils. The engine
// mutates the dictionaries it hands out; persisting the mutated graph back
// to bytes is the host's job.
type Document interface {
	Resolver

	// Catalog returns the document catalog dictionary.
	Catalog() Dict
	// Info returns the document information dictionary, creating it if absent.
	Info() Dict

	// NumPages returns the page count.
	NumPages() int
	// Page returns the page dictionary for the 1-based page number,
	// or nil when out of range.
	Page(num int) Dict
	// PageIndex maps a page object reference back to its 1-based page
	// number, or 0 when the reference is not a page.
	PageIndex(ref Ref) int

	// PageText returns the extracted plain text of a page.
	PageText(ctx context.Context, num int) (string, error)

	// ReplayContent replays the page's content stream, invoking fn for
	// every event in paint order. Replay stops on the first error.
	ReplayContent(ctx context.Context, num int, fn func(ContentEvent) error) error

	// ImageBytes returns the encoded bytes and MIME type of an image
	// XObject, when the host can extract them directly.
	ImageBytes(ref Ref) ([]byte, string, error)

	// Put stores a new indirect object and returns its reference.
	Put(obj any) Ref

	// Path returns the file path the document was opened from, or ""
	// when the document did not come from a file.
	Path() string
}

// InheritedAttr looks up key on the page dictionary, walking the Parent
// chain when the page itself does not carry it. Parent loops terminate.
func InheritedAttr(r Resolver, page Dict, key Name) any {
	d := page
	for hops := 0; d != nil && hops < 64; hops++ {
		if v, ok := d[key]; ok && v != nil {
			if hops > 0 {
				logger.Debug(fmt.Sprintf("InheritedAttr: found key %q %d levels up", key, hops))
			}
			return v
		}
		parent, ok := DictOf(r, d["Parent"])
		if !ok {
			break
		}
		d = parent
	}
	return nil
}
