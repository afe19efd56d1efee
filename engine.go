// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"fmt"

	"github.com/sassoftware/pdf-remediate/describe"
	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/logger"
	"github.com/sassoftware/pdf-remediate/raster"
	"golang.org/x/sync/semaphore"
)

// Collaborators bundles the swappable external services a Remediator
// calls. Nil fields get no-op implementations, so a bare Remediator is
// fully functional minus the capabilities those services provide.
type Collaborators struct {
	Descriptions describe.DescriptionService
	Titles       describe.TitleService
	Renderer     raster.Renderer
	Bookmarks    BookmarkEngine
}

// Remediator runs the remediation pipeline against opened documents,
// limiting how many run concurrently. One document's run is strictly
// sequential and owns its handle exclusively.
type Remediator struct {
	opts         *RemediationOptions
	sem          *semaphore.Weighted
	descriptions describe.DescriptionService
	titles       describe.TitleService
	renderer     raster.Renderer
	bookmarks    BookmarkEngine
}

// NewRemediator validates the options and creates a new Remediator.
func NewRemediator(opts *RemediationOptions, collab Collaborators) *Remediator {
	if err := opts.Validate(); err != nil {
		panic(err)
	}

	if opts.Logger != nil {
		logger.SetLogger(opts.Logger)
	}

	if collab.Descriptions == nil {
		collab.Descriptions = describe.NewStatic()
	}
	if collab.Titles == nil {
		collab.Titles = describe.NewStatic()
	}
	if collab.Renderer == nil {
		collab.Renderer = raster.NopRenderer{}
	}
	if collab.Bookmarks == nil {
		collab.Bookmarks = NewHeadingOutliner()
	}

	logger.Debug(fmt.Sprintf("Remediator initialized: max_concurrent_docs=%d demote_small_tables=%v render_dpi=%.0f renderer_available=%v",
		opts.MaxConcurrentDocs, opts.DemoteSmallTables, opts.RenderDPI, collab.Renderer.Available()), true)

	return &Remediator{
		opts:         opts,
		sem:          semaphore.NewWeighted(int64(opts.MaxConcurrentDocs)),
		descriptions: collab.Descriptions,
		titles:       collab.Titles,
		renderer:     collab.Renderer,
		bookmarks:    collab.Bookmarks,
	}
}

// RemediationResult reports what one run changed, for observability.
type RemediationResult struct {
	TablesDemoted      int
	AnnotationsRemoved int
	FiguresFixed       int
	LinksFixed         int
}

// Remediate runs the full stage sequence against one document: table
// demotion, annotation reconciliation, tab order, language, title,
// bookmarks, then figure/link alt text. Stages are best-effort and
// independent; a stage whose precondition is unmet (an untagged document,
// say) degrades to a no-op instead of aborting the rest. Cancellation is
// honored between stages and inside every long traversal.
func (rm *Remediator) Remediate(ctx context.Context, doc graph.Document, fileID string) (RemediationResult, error) {
	var res RemediationResult
	if doc == nil {
		return res, fmt.Errorf("remediate %s: nil document", fileID)
	}

	if err := rm.sem.Acquire(ctx, 1); err != nil {
		return res, fmt.Errorf("acquire slot: %w", err)
	}
	defer rm.sem.Release(1)

	logger.Debug(fmt.Sprintf("Starting remediation: file=%s pages=%d", fileID, doc.NumPages()), true)

	stages := []struct {
		name string
		run  func()
	}{
		{"tables", func() { res.TablesDemoted = rm.demoteLayoutTables(ctx, doc) }},
		{"annotations", func() { res.AnnotationsRemoved = rm.reconcileAnnotations(ctx, doc) }},
		{"taborder", func() { rm.fixTabOrder(ctx, doc) }},
		{"language", func() { rm.fixLanguage(ctx, doc) }},
		{"title", func() { rm.fixTitle(ctx, doc, fileID) }},
		{"bookmarks", func() { rm.bookmarks.EnsureBookmarks(ctx, doc) }},
		{"alttext", func() { res.FiguresFixed, res.LinksFixed = rm.fixAltText(ctx, doc, fileID) }},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			logger.Debug(fmt.Sprintf("Remediation cancelled: file=%s before_stage=%s", fileID, stage.name), true)
			return res, err
		}
		stage.run()
		logger.Debug(fmt.Sprintf("Stage completed: file=%s stage=%s", fileID, stage.name))
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	logger.Debug(fmt.Sprintf("Remediation completed: file=%s tables_demoted=%d annots_removed=%d figures_fixed=%d links_fixed=%d",
		fileID, res.TablesDemoted, res.AnnotationsRemoved, res.FiguresFixed, res.LinksFixed), true)
	return res, nil
}
