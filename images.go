// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"fmt"

	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/logger"
)

// imageOccurrence records one point in a page's content stream where an
// image was actually painted. Recomputed per remediation run.
type imageOccurrence struct {
	Page   int
	MCID   int       // innermost marked-content id active at paint time, -1 outside
	Image  graph.Ref // zero for inline images
	Width  int
	Height int
}

// collectImageOccurrences replays the page's content stream and records
// each image paint with the marked-content id active at that point.
func collectImageOccurrences(ctx context.Context, doc graph.Document, num int) ([]imageOccurrence, error) {
	var out []imageOccurrence
	var marked []int // nesting of marked-content ids, -1 for id-less tags
	err := doc.ReplayContent(ctx, num, func(ev graph.ContentEvent) error {
		switch ev.Kind {
		case graph.EventBeginMarked:
			marked = append(marked, ev.MCID)
		case graph.EventEndMarked:
			if len(marked) > 0 {
				marked = marked[:len(marked)-1]
			}
		case graph.EventImage:
			mcid := -1
			for i := len(marked) - 1; i >= 0; i-- {
				if marked[i] >= 0 {
					mcid = marked[i]
					break
				}
			}
			out = append(out, imageOccurrence{
				Page:   num,
				MCID:   mcid,
				Image:  ev.Image,
				Width:  ev.Width,
				Height: ev.Height,
			})
		}
		return nil
	})
	return out, err
}

type mcidKey struct {
	page int
	mcid int
}

// figureEntry is one Figure node with the content references its children
// carry, resolved against the page context inherited from ancestors.
type figureEntry struct {
	node  graph.Dict
	ref   graph.Ref
	page  int // 1-based owning page, 0 unknown
	mcids []mcidKey
	objs  []graph.Ref
}

// figureIndex answers which figure a rendered image instance belongs to.
// The structure tree and the content stream are independently encoded
// graphs with no direct pointer between them; the index bridges them via
// (page, MCID) pairs and image object identity.
type figureIndex struct {
	entries []*figureEntry
	byObj   map[graph.Ref]*figureEntry
	byMCID  map[mcidKey]*figureEntry
}

// buildFigureIndex walks every Figure node recording, for each MCID or
// OBJR child, the page context the entry carries itself or inherits.
func buildFigureIndex(ctx context.Context, doc graph.Document) *figureIndex {
	ix := &figureIndex{
		byObj:  make(map[graph.Ref]*figureEntry),
		byMCID: make(map[mcidKey]*figureEntry),
	}
	root, ok := structRoot(doc)
	if !ok {
		return ix
	}
	walkStruct(ctx, doc, root, func(node graph.Dict, ref graph.Ref, page graph.Ref) {
		if nodeRole(doc, node) != roleFigure {
			return
		}
		e := &figureEntry{node: node, ref: ref}
		for _, kid := range kidsOf(doc, node) {
			pg := kid.Page
			if pg.IsZero() {
				pg = page
			}
			pnum := doc.PageIndex(pg)
			if e.page == 0 {
				e.page = pnum
			}
			if kid.MCID >= 0 && pnum > 0 {
				k := mcidKey{page: pnum, mcid: kid.MCID}
				e.mcids = append(e.mcids, k)
				if _, dup := ix.byMCID[k]; !dup {
					ix.byMCID[k] = e
				}
			}
			if !kid.Obj.IsZero() {
				e.objs = append(e.objs, kid.Obj)
				if _, dup := ix.byObj[kid.Obj]; !dup {
					ix.byObj[kid.Obj] = e
				}
			}
		}
		if e.page == 0 {
			e.page = doc.PageIndex(page)
		}
		ix.entries = append(ix.entries, e)
	})
	logger.Debug(fmt.Sprintf("buildFigureIndex: %d figures indexed", len(ix.entries)), true)
	return ix
}

// figureFor matches a rendered image occurrence to its figure. Object
// identity wins over MCID.
func (ix *figureIndex) figureFor(occ imageOccurrence) (*figureEntry, bool) {
	if !occ.Image.IsZero() {
		if e, ok := ix.byObj[occ.Image]; ok {
			return e, true
		}
	}
	if occ.MCID >= 0 {
		if e, ok := ix.byMCID[mcidKey{page: occ.Page, mcid: occ.MCID}]; ok {
			return e, true
		}
	}
	return nil, false
}

// occurrenceFor finds the rendered occurrence belonging to a figure, with
// the same precedence as figureFor.
func occurrenceFor(e *figureEntry, occs []imageOccurrence) (imageOccurrence, bool) {
	for _, occ := range occs {
		if occ.Image.IsZero() {
			continue
		}
		for _, obj := range e.objs {
			if occ.Image == obj {
				return occ, true
			}
		}
	}
	for _, occ := range occs {
		if occ.MCID < 0 {
			continue
		}
		for _, k := range e.mcids {
			if k.page == occ.Page && k.mcid == occ.MCID {
				return occ, true
			}
		}
	}
	return imageOccurrence{}, false
}
