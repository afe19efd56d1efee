// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/logger"
)

// fallbackTitle is written when a document has no title and not enough
// text to generate one from.
const fallbackTitle = "Untitled Document"

// fixLanguage sets the document-level language when none is declared.
// An existing non-empty value is never overwritten, and detection is
// only trusted when enough text was extracted and the detector is
// confident enough.
func (rm *Remediator) fixLanguage(ctx context.Context, doc graph.Document) {
	catalog := doc.Catalog()
	if lang, ok := graph.StringOf(doc, catalog["Lang"]); ok && strings.TrimSpace(lang) != "" {
		logger.Debug(fmt.Sprintf("fixLanguage: language already declared: lang=%s", lang))
		return
	}

	text := rm.sampleText(ctx, doc, rm.opts.LangSamplePages)
	if len(text) < rm.opts.LangMinChars {
		logger.Debug(fmt.Sprintf("fixLanguage: not enough text to detect from: chars=%d", len(text)), true)
		return
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" || info.Confidence < rm.opts.LangMinConfidence {
		logger.Debug(fmt.Sprintf("fixLanguage: detection below confidence threshold: lang=%s confidence=%.2f", code, info.Confidence), true)
		return
	}
	catalog["Lang"] = code
	logger.Debug(fmt.Sprintf("fixLanguage: language set: lang=%s confidence=%.2f", code, info.Confidence), true)
}

// fixTitle delegates title generation to the title service when the first
// pages yield enough text. With insufficient text an existing title is
// kept unchanged and an absent one becomes the fixed placeholder; the
// service is never called in either case.
func (rm *Remediator) fixTitle(ctx context.Context, doc graph.Document, fileID string) {
	info := doc.Info()
	current, _ := graph.StringOf(doc, info["Title"])
	current = strings.TrimSpace(current)

	text := rm.sampleText(ctx, doc, rm.opts.TitleSamplePages)
	if len(strings.Fields(text)) < rm.opts.TitleMinWords {
		if current == "" {
			info["Title"] = fallbackTitle
			logger.Debug(fmt.Sprintf("fixTitle: placeholder set, not enough text: file=%s", fileID), true)
		}
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, rm.opts.ServiceTimeout)
	title, err := rm.titles.GenerateTitle(callCtx, current, text)
	cancel()
	if err != nil {
		logger.Error(fmt.Sprintf("fixTitle: title service failed: file=%s err=%v", fileID, err))
		return
	}
	// The service may echo the current title unchanged; a blank response
	// is the one thing not adopted verbatim.
	if strings.TrimSpace(title) == "" {
		logger.Debug(fmt.Sprintf("fixTitle: blank response ignored: file=%s", fileID))
		return
	}
	info["Title"] = title
	logger.Debug(fmt.Sprintf("fixTitle: title set: file=%s", fileID), true)
}

// fixTabOrder forces document-structure keyboard navigation order on
// every page not already using it. Returns the number of pages changed.
func (rm *Remediator) fixTabOrder(ctx context.Context, doc graph.Document) int {
	fixed := 0
	for num := 1; num <= doc.NumPages(); num++ {
		if ctx.Err() != nil {
			break
		}
		page := doc.Page(num)
		if page == nil {
			continue
		}
		if t, ok := graph.NameOf(doc, page["Tabs"]); ok && t == "S" {
			continue
		}
		page["Tabs"] = graph.Name("S")
		fixed++
	}
	if fixed > 0 {
		logger.Debug(fmt.Sprintf("fixTabOrder: forced structure order on %d pages", fixed), true)
	}
	return fixed
}

// sampleText concatenates the extracted text of the first pages pages.
func (rm *Remediator) sampleText(ctx context.Context, doc graph.Document, pages int) string {
	var b strings.Builder
	for num := 1; num <= doc.NumPages() && num <= pages; num++ {
		if ctx.Err() != nil {
			break
		}
		text, err := doc.PageText(ctx, num)
		if err != nil {
			logger.Debug(fmt.Sprintf("sampleText: page text unavailable: page=%d err=%v", num, err))
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
