// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sassoftware/pdf-remediate/describe"
	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/logger"
	"github.com/sassoftware/pdf-remediate/raster"
)

// fixAltText ensures every Figure and Link node carries non-placeholder
// alternate text. Figures prefer directly extractable image bytes and
// fall back to rasterizing the owning page region; a node whose service
// call fails keeps the service's fallback text instead of aborting the
// rest. Returns the number of figures and links fixed.
func (rm *Remediator) fixAltText(ctx context.Context, doc graph.Document, fileID string) (int, int) {
	root, ok := structRoot(doc)
	if !ok {
		logger.Debug(fmt.Sprintf("fixAltText: document is not tagged, nothing to do: file=%s", fileID))
		return 0, 0
	}

	ix := buildFigureIndex(ctx, doc)
	var occs []imageOccurrence
	for num := 1; num <= doc.NumPages(); num++ {
		if ctx.Err() != nil {
			return 0, 0
		}
		pageOccs, err := collectImageOccurrences(ctx, doc, num)
		if err != nil {
			logger.Debug(fmt.Sprintf("fixAltText: content replay failed, skipping page: file=%s page=%d err=%v", fileID, num, err), true)
			continue
		}
		occs = append(occs, pageOccs...)
	}

	session := &renderSession{
		renderer: rm.renderer,
		dpi:      rm.opts.RenderDPI,
		path:     doc.Path(),
		pages:    make(map[int]raster.Bitmap),
	}
	defer session.close()

	figures := 0
	for _, e := range ix.entries {
		if ctx.Err() != nil {
			return figures, 0
		}
		if hasMeaningfulAlt(doc, e.node) {
			continue
		}
		if rm.fixFigure(ctx, doc, e, occs, session, fileID) {
			figures++
		}
	}

	links := 0
	for _, link := range findByRole(ctx, doc, root, func(s graph.Name) bool { return s == roleLink }) {
		if ctx.Err() != nil {
			return figures, links
		}
		if hasMeaningfulAlt(doc, link) {
			continue
		}
		if rm.fixLink(ctx, doc, link, fileID) {
			links++
		}
	}
	return figures, links
}

func (rm *Remediator) fixFigure(ctx context.Context, doc graph.Document, e *figureEntry, occs []imageOccurrence, session *renderSession, fileID string) bool {
	before, after := rm.contextAround(ctx, doc, e.node)
	img, mime := rm.figureImage(ctx, doc, e, occs, session)

	alt := ""
	if len(img) > 0 {
		req := describe.NewImageRequest(img, mime, before, after)
		callCtx, cancel := context.WithTimeout(ctx, rm.opts.ServiceTimeout)
		resp, err := rm.descriptions.ImageAltText(callCtx, req)
		cancel()
		if err != nil {
			logger.Error(fmt.Sprintf("fixFigure: description call failed: file=%s request=%s err=%v", fileID, req.ID, err))
		} else {
			alt = resp
		}
	}
	alt = rm.normalizeAlt(alt)
	if alt == "" {
		alt = rm.normalizeAlt(rm.descriptions.ImageFallback())
	}
	if alt == "" {
		return false
	}
	e.node["Alt"] = alt
	return true
}

func (rm *Remediator) fixLink(ctx context.Context, doc graph.Document, link graph.Dict, fileID string) bool {
	before, after := rm.contextAround(ctx, doc, link)
	req := describe.NewLinkRequest(linkTarget(doc, link), nodeText(ctx, doc, link), before, after)

	callCtx, cancel := context.WithTimeout(ctx, rm.opts.ServiceTimeout)
	resp, err := rm.descriptions.LinkAltText(callCtx, req)
	cancel()
	if err != nil {
		logger.Error(fmt.Sprintf("fixLink: description call failed: file=%s request=%s err=%v", fileID, req.ID, err))
		resp = ""
	}

	alt := rm.normalizeAlt(resp)
	if alt == "" {
		alt = rm.normalizeAlt(rm.descriptions.LinkFallback())
	}
	if alt == "" {
		return false
	}
	link["Alt"] = alt
	return true
}

// figureImage returns the encoded image bytes for a figure: matched
// content-image bytes when the host can extract them, otherwise a PNG of
// the rasterized page region. Empty when neither path is viable, which is
// common for vector-drawn figures in capability-absent environments.
func (rm *Remediator) figureImage(ctx context.Context, doc graph.Document, e *figureEntry, occs []imageOccurrence, session *renderSession) ([]byte, string) {
	if occ, ok := occurrenceFor(e, occs); ok && !occ.Image.IsZero() {
		data, mime, err := doc.ImageBytes(occ.Image)
		if err == nil && len(data) > 0 {
			return data, mime
		}
		logger.Debug(fmt.Sprintf("figureImage: no extractable bytes for image %d %d R, falling back to rasterization", occ.Image.Num, occ.Image.Gen))
	}

	if e.page < 1 {
		return nil, ""
	}
	bm, ok := session.page(ctx, e.page)
	if !ok {
		return nil, ""
	}
	cropped, err := bm.Crop(figureRect(doc, e.node, bm, rm.opts.RenderDPI))
	if err != nil {
		logger.Error(fmt.Sprintf("figureImage: crop failed: page=%d err=%v", e.page, err))
		return nil, ""
	}
	png, err := raster.EncodePNG(cropped)
	if err != nil {
		logger.Error(fmt.Sprintf("figureImage: png encode failed: page=%d err=%v", e.page, err))
		return nil, ""
	}
	return png, "image/png"
}

// figureRect maps the figure's BBox attribute from PDF user space into
// the rendered bitmap's pixel space, flipping the vertical axis. Without
// a usable BBox the whole page is used.
func figureRect(doc graph.Document, node graph.Dict, bm raster.Bitmap, dpi float64) raster.IntRect {
	full := raster.IntRect{Width: bm.Width, Height: bm.Height}
	bbox, ok := figureBBox(doc, node)
	if !ok {
		return full
	}
	scale := dpi / 72.0
	x := int(math.Floor(bbox[0] * scale))
	y := bm.Height - int(math.Ceil(bbox[3]*scale))
	w := int(math.Ceil((bbox[2] - bbox[0]) * scale))
	h := int(math.Ceil((bbox[3] - bbox[1]) * scale))

	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > bm.Width {
		w = bm.Width - x
	}
	if y+h > bm.Height {
		h = bm.Height - y
	}
	r := raster.IntRect{X: x, Y: y, Width: w, Height: h}
	if r.Empty() {
		return full
	}
	return r
}

// figureBBox digs the BBox layout attribute out of the node's /A entry,
// which may be a single attribute dictionary or an array of them.
func figureBBox(r graph.Resolver, node graph.Dict) ([4]float64, bool) {
	var dicts []graph.Dict
	if d, ok := graph.DictOf(r, node["A"]); ok {
		dicts = append(dicts, d)
	} else if arr, ok := graph.ArrayOf(r, node["A"]); ok {
		for _, it := range arr {
			if d, ok := graph.DictOf(r, it); ok {
				dicts = append(dicts, d)
			}
		}
	}
	for _, d := range dicts {
		arr, ok := graph.ArrayOf(r, d["BBox"])
		if !ok || len(arr) != 4 {
			continue
		}
		var box [4]float64
		good := true
		for i, it := range arr {
			v, ok := graph.FloatOf(r, it)
			if !ok {
				good = false
				break
			}
			box[i] = v
		}
		if good && box[2] > box[0] && box[3] > box[1] {
			return box, true
		}
	}
	return [4]float64{}, false
}

// linkTarget extracts the URI the link's annotation points at, following
// the node's OBJR children.
func linkTarget(r graph.Resolver, link graph.Dict) string {
	for _, kid := range kidsOf(r, link) {
		if kid.Obj.IsZero() {
			continue
		}
		annot, ok := graph.DictOf(r, kid.Obj)
		if !ok {
			continue
		}
		action, ok := graph.DictOf(r, annot["A"])
		if !ok {
			continue
		}
		if uri, ok := graph.StringOf(r, action["URI"]); ok && uri != "" {
			return uri
		}
	}
	return ""
}

// hasMeaningfulAlt reports whether the node already carries alt text
// worth keeping. Empty and stock placeholder values do not count.
func hasMeaningfulAlt(r graph.Resolver, node graph.Dict) bool {
	alt, ok := graph.StringOf(r, node["Alt"])
	if !ok {
		return false
	}
	alt = strings.TrimSpace(alt)
	if alt == "" {
		return false
	}
	switch strings.ToLower(alt) {
	case "image", "img", "picture", "figure", "graphic", "photo":
		return false
	}
	return true
}

// contextAround gathers reading-order text immediately before and after
// the node: up to two structure siblings on each side, whitespace
// collapsed and capped at ContextRunes runes per side.
func (rm *Remediator) contextAround(ctx context.Context, r graph.Resolver, node graph.Dict) (string, string) {
	parent, ok := graph.DictOf(r, node["P"])
	if !ok {
		return "", ""
	}
	sibs := structKids(r, parent)
	idx := -1
	for i, s := range sibs {
		if sameNode(s, node) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", ""
	}

	var parts []string
	for i := max(0, idx-2); i < idx; i++ {
		if t := nodeText(ctx, r, sibs[i]); t != "" {
			parts = append(parts, t)
		}
	}
	before := capTail(strings.Join(parts, " "), rm.opts.ContextRunes)

	parts = parts[:0]
	for i := idx + 1; i < len(sibs) && i <= idx+2; i++ {
		if t := nodeText(ctx, r, sibs[i]); t != "" {
			parts = append(parts, t)
		}
	}
	after := capHead(strings.Join(parts, " "), rm.opts.ContextRunes)
	return before, after
}

// nodeText collects the replacement text the node and its descendants
// declare, normalized to single spaces.
func nodeText(ctx context.Context, r graph.Resolver, node graph.Dict) string {
	var b strings.Builder
	walkStruct(ctx, r, node, func(n graph.Dict, _ graph.Ref, _ graph.Ref) {
		if s, ok := graph.StringOf(r, n["ActualText"]); ok && s != "" {
			b.WriteString(s)
			b.WriteByte(' ')
		}
	})
	return normalizeSpace(b.String())
}

// normalizeAlt trims, collapses whitespace runs and caps the text at the
// configured rune budget.
func (rm *Remediator) normalizeAlt(s string) string {
	return capHead(normalizeSpace(s), rm.opts.MaxAltTextRunes)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capHead(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}

func capTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[len(runes)-n:]))
}

// renderSession lazily opens the render handle once per run and caches
// rendered pages, so several figures on one page rasterize it once.
type renderSession struct {
	renderer raster.Renderer
	dpi      float64
	path     string
	handle   raster.RenderHandle
	pages    map[int]raster.Bitmap
	failed   bool
}

func (rs *renderSession) page(ctx context.Context, num int) (raster.Bitmap, bool) {
	if bm, ok := rs.pages[num]; ok {
		return bm, !bm.Empty()
	}
	if rs.failed || rs.renderer == nil || !rs.renderer.Available() || rs.path == "" {
		return raster.Bitmap{}, false
	}
	if rs.handle == nil {
		h, err := rs.renderer.Open(rs.path, rs.dpi)
		if err != nil {
			logger.Debug(fmt.Sprintf("renderSession: open failed: path=%s err=%v", rs.path, err), true)
			rs.failed = true
			return raster.Bitmap{}, false
		}
		rs.handle = h
	}
	bm, err := rs.handle.RenderPage(ctx, num)
	if err != nil {
		logger.Debug(fmt.Sprintf("renderSession: render failed: page=%d err=%v", num, err), true)
		bm = raster.Bitmap{}
	}
	rs.pages[num] = bm
	return bm, !bm.Empty()
}

func (rs *renderSession) close() {
	if rs.handle != nil {
		_ = rs.handle.Close()
		rs.handle = nil
	}
}
