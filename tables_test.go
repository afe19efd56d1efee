// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"testing"

	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTable builds a Table node with rows x cols TD cells. headerCols > 0
// turns that many cells of the first row into TH.
func makeTable(rows, cols, headerCols int) graph.Dict {
	var rowNodes graph.Array
	for r := 0; r < rows; r++ {
		var cells graph.Array
		for c := 0; c < cols; c++ {
			role := graph.Name("TD")
			if r == 0 && c < headerCols {
				role = "TH"
			}
			cells = append(cells, graph.Dict{"S": role})
		}
		rowNodes = append(rowNodes, graph.Dict{"S": graph.Name("TR"), "K": cells})
	}
	return graph.Dict{"S": graph.Name("Table"), "K": rowNodes}
}

func TestDemoteLayoutTables(t *testing.T) {
	tests := []struct {
		name        string
		table       graph.Dict
		smallTables bool
		demoted     int
	}{
		{
			name:        "table with headers kept",
			table:       makeTable(2, 2, 2),
			smallTables: true,
			demoted:     0,
		},
		{
			name:        "single header cell keeps table",
			table:       makeTable(1, 1, 1),
			smallTables: true,
			demoted:     0,
		},
		{
			name:        "no rows always demoted",
			table:       graph.Dict{"S": graph.Name("Table")},
			smallTables: false,
			demoted:     1,
		},
		{
			name: "rows without cells always demoted",
			table: graph.Dict{"S": graph.Name("Table"), "K": graph.Array{
				graph.Dict{"S": graph.Name("TR")},
				graph.Dict{"S": graph.Name("TR")},
			}},
			smallTables: false,
			demoted:     1,
		},
		{
			name:        "single row demoted by size",
			table:       makeTable(1, 3, 0),
			smallTables: true,
			demoted:     1,
		},
		{
			name:        "single column demoted by size",
			table:       makeTable(4, 1, 0),
			smallTables: true,
			demoted:     1,
		},
		{
			name:        "two by two demoted by size",
			table:       makeTable(2, 2, 0),
			smallTables: true,
			demoted:     1,
		},
		{
			name:        "size heuristic disabled keeps single row",
			table:       makeTable(1, 3, 0),
			smallTables: false,
			demoted:     0,
		},
		{
			name:        "three by three headerless kept",
			table:       makeTable(3, 3, 0),
			smallTables: true,
			demoted:     0,
		},
		{
			name:        "two by three kept",
			table:       makeTable(2, 3, 0),
			smallTables: true,
			demoted:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := graph.NewMemDoc()
			doc.AddPage(graph.Dict{})
			tagDocument(doc, tt.table)

			rm := newTestRemediator(t, Collaborators{})
			rm.opts.DemoteSmallTables = tt.smallTables

			got := rm.demoteLayoutTables(context.Background(), doc)
			assert.Equal(t, tt.demoted, got)
			if tt.demoted > 0 {
				assert.Equal(t, roleDiv, tt.table["S"])
			} else {
				assert.Equal(t, roleTable, tt.table["S"])
			}
		})
	}
}

func TestDemoteLayoutTables_RewritesDescendants(t *testing.T) {
	doc := graph.NewMemDoc()
	doc.AddPage(graph.Dict{})
	table := makeTable(1, 2, 0)
	tagDocument(doc, table)

	rm := newTestRemediator(t, Collaborators{})
	require.Equal(t, 1, rm.demoteLayoutTables(context.Background(), doc))

	count := 0
	walkStruct(context.Background(), doc, table, func(node graph.Dict, _ graph.Ref, _ graph.Ref) {
		assert.Equal(t, roleDiv, nodeRole(doc, node))
		count++
	})
	assert.Equal(t, 4, count) // table, row, two cells
}

func TestDemoteLayoutTables_NestedCountedOnce(t *testing.T) {
	doc := graph.NewMemDoc()
	doc.AddPage(graph.Dict{})
	inner := makeTable(1, 1, 0)
	outer := graph.Dict{"S": graph.Name("Table"), "K": graph.Array{
		graph.Dict{"S": graph.Name("TR"), "K": graph.Array{
			graph.Dict{"S": graph.Name("TD"), "K": inner},
		}},
	}}
	tagDocument(doc, outer)

	rm := newTestRemediator(t, Collaborators{})
	assert.Equal(t, 1, rm.demoteLayoutTables(context.Background(), doc))
	assert.Equal(t, roleDiv, outer["S"])
	assert.Equal(t, roleDiv, inner["S"])
}

func TestDemoteLayoutTables_Idempotent(t *testing.T) {
	doc := graph.NewMemDoc()
	doc.AddPage(graph.Dict{})
	tagDocument(doc, makeTable(1, 1, 0))

	rm := newTestRemediator(t, Collaborators{})
	assert.Equal(t, 1, rm.demoteLayoutTables(context.Background(), doc))
	assert.Equal(t, 0, rm.demoteLayoutTables(context.Background(), doc))
}

func TestDemoteLayoutTables_Untagged(t *testing.T) {
	doc := graph.NewMemDoc()
	doc.AddPage(graph.Dict{})
	rm := newTestRemediator(t, Collaborators{})
	assert.Equal(t, 0, rm.demoteLayoutTables(context.Background(), doc))
}
