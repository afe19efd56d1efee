// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"fmt"

	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/logger"
)

// demoteLayoutTables demotes Table nodes that carry no real tabular data
// down to Div, so checkers and assistive technology stop announcing layout
// scaffolding as data tables. Returns the number of tables demoted.
func (rm *Remediator) demoteLayoutTables(ctx context.Context, doc graph.Document) int {
	root, ok := structRoot(doc)
	if !ok {
		logger.Debug("demoteLayoutTables: document is not tagged, nothing to do")
		return 0
	}

	demoted := 0
	tables := findByRole(ctx, doc, root, func(s graph.Name) bool { return s == roleTable })
	for _, table := range tables {
		if ctx.Err() != nil {
			break
		}
		// A table nested inside an already-demoted one has had its role
		// rewritten by the time we reach it here.
		if nodeRole(doc, table) != roleTable {
			continue
		}
		if !rm.isLayoutTable(ctx, doc, table) {
			continue
		}
		demoteTable(ctx, doc, table)
		demoted++
	}
	if demoted > 0 {
		logger.Debug(fmt.Sprintf("demoteLayoutTables: demoted %d layout tables", demoted), true)
	}
	return demoted
}

// isLayoutTable applies the classification heuristics. Positive signals
// (header cells, data cells) keep the table; their absence demotes it.
func (rm *Remediator) isLayoutTable(ctx context.Context, doc graph.Document, table graph.Dict) bool {
	headers := findByRole(ctx, doc, table, func(s graph.Name) bool { return s == roleTH })
	if len(headers) > 0 {
		return false
	}

	rows := findByRole(ctx, doc, table, func(s graph.Name) bool { return s == roleTR })
	if len(rows) == 0 {
		// Degenerate tagging: a table with no rows at all.
		return true
	}

	totalCells := 0
	maxCols := 0
	for _, row := range rows {
		cols := 0
		for _, cell := range structKids(doc, row) {
			switch nodeRole(doc, cell) {
			case roleTH:
				// A header that slipped past the descendant scan still
				// marks a genuine table.
				return false
			case roleTD:
				cols++
				totalCells++
			}
		}
		if cols > maxCols {
			maxCols = cols
		}
	}
	if totalCells == 0 {
		return true
	}

	if !rm.opts.DemoteSmallTables {
		return false
	}

	// Size heuristic for small headerless tables. The thresholds are
	// tuned against checker output, not derived; treat them as config.
	numRows := len(rows)
	bound := numRows * max(1, maxCols)
	if numRows <= 1 || maxCols <= 1 {
		return true
	}
	if numRows <= 2 && maxCols <= 2 && bound <= 4 {
		return true
	}
	return false
}

// demoteTable rewrites the table's role to Div, along with every Table, TR,
// TD and TH descendant. Other descendant roles are left alone.
func demoteTable(ctx context.Context, doc graph.Document, table graph.Dict) {
	table["S"] = roleDiv
	parts := findByRole(ctx, doc, table, func(s graph.Name) bool {
		return s == roleTable || s == roleTR || s == roleTD || s == roleTH
	})
	for _, part := range parts {
		part["S"] = roleDiv
	}
}
