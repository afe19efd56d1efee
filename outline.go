// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"fmt"

	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/logger"
)

// BookmarkEngine synthesizes a document outline. Implementations must
// never fail the pipeline; anything that goes wrong degrades to leaving
// the document untouched.
type BookmarkEngine interface {
	EnsureBookmarks(ctx context.Context, doc graph.Document)
}

// headingOutliner builds an outline from heading-role structure nodes.
type headingOutliner struct{}

// NewHeadingOutliner returns the stock bookmark engine.
func NewHeadingOutliner() BookmarkEngine { return headingOutliner{} }

type outlineItem struct {
	title    string
	level    int
	page     graph.Ref
	children []*outlineItem
}

// EnsureBookmarks synthesizes an outline from H/H1..H6 nodes on tagged
// documents that have none. Untagged documents and documents with an
// existing outline are left untouched.
func (headingOutliner) EnsureBookmarks(ctx context.Context, doc graph.Document) {
	catalog := doc.Catalog()
	if outlines, ok := graph.DictOf(doc, catalog["Outlines"]); ok {
		if _, has := outlines["First"]; has {
			logger.Debug("EnsureBookmarks: document already has an outline")
			return
		}
	}
	root, ok := structRoot(doc)
	if !ok {
		logger.Debug("EnsureBookmarks: document is not tagged, nothing to do")
		return
	}

	var headings []*outlineItem
	walkStruct(ctx, doc, root, func(node graph.Dict, _ graph.Ref, page graph.Ref) {
		level := headingLevel(nodeRole(doc, node))
		if level == 0 {
			return
		}
		title := headingTitle(ctx, doc, node)
		if title == "" {
			return
		}
		headings = append(headings, &outlineItem{title: title, level: level, page: page})
	})
	if len(headings) == 0 {
		logger.Debug("EnsureBookmarks: no usable headings found")
		return
	}

	// Nest by heading level: each heading becomes a child of the nearest
	// preceding heading with a smaller level.
	top := &outlineItem{level: 0}
	open := []*outlineItem{top}
	for _, h := range headings {
		for len(open) > 1 && open[len(open)-1].level >= h.level {
			open = open[:len(open)-1]
		}
		parent := open[len(open)-1]
		parent.children = append(parent.children, h)
		open = append(open, h)
	}

	outlines := graph.Dict{"Type": graph.Name("Outlines")}
	outlinesRef := doc.Put(outlines)
	emitOutline(doc, outlines, outlinesRef, top.children)
	catalog["Outlines"] = outlinesRef
	logger.Debug(fmt.Sprintf("EnsureBookmarks: outline synthesized from %d headings", len(headings)), true)
}

// emitOutline writes the sibling chain for items under parent, recursing
// into children.
func emitOutline(doc graph.Document, parent graph.Dict, parentRef graph.Ref, items []*outlineItem) {
	if len(items) == 0 {
		return
	}
	refs := make([]graph.Ref, len(items))
	dicts := make([]graph.Dict, len(items))
	for i, item := range items {
		d := graph.Dict{
			"Title":  item.title,
			"Parent": parentRef,
		}
		if !item.page.IsZero() {
			d["Dest"] = graph.Array{item.page, graph.Name("XYZ"), nil, nil, nil}
		}
		dicts[i] = d
		refs[i] = doc.Put(d)
	}
	for i := range items {
		if i > 0 {
			dicts[i]["Prev"] = refs[i-1]
		}
		if i < len(items)-1 {
			dicts[i]["Next"] = refs[i+1]
		}
		emitOutline(doc, dicts[i], refs[i], items[i].children)
	}
	parent["First"] = refs[0]
	parent["Last"] = refs[len(refs)-1]
	parent["Count"] = len(items)
}

// headingLevel maps heading roles to outline depth; 0 means not a heading.
func headingLevel(role graph.Name) int {
	switch role {
	case "H", "H1":
		return 1
	case "H2":
		return 2
	case "H3":
		return 3
	case "H4":
		return 4
	case "H5":
		return 5
	case "H6":
		return 6
	}
	return 0
}

// headingTitle prefers the element's own title entry, then harvested
// replacement text, then alternate text.
func headingTitle(ctx context.Context, r graph.Resolver, node graph.Dict) string {
	if t, ok := graph.StringOf(r, node["T"]); ok {
		if t = normalizeSpace(t); t != "" {
			return t
		}
	}
	if t := nodeText(ctx, r, node); t != "" {
		return t
	}
	if alt, ok := graph.StringOf(r, node["Alt"]); ok {
		return normalizeSpace(alt)
	}
	return ""
}
