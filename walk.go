// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"reflect"

	"github.com/sassoftware/pdf-remediate/graph"
)

// Structure roles the engine cares about.
const (
	roleTable  graph.Name = "Table"
	roleTR     graph.Name = "TR"
	roleTD     graph.Name = "TD"
	roleTH     graph.Name = "TH"
	roleDiv    graph.Name = "Div"
	roleFigure graph.Name = "Figure"
	roleLink   graph.Name = "Link"
)

// structRoot returns the document's structure-tree root, if the document
// is tagged.
func structRoot(doc graph.Document) (graph.Dict, bool) {
	return graph.DictOf(doc, doc.Catalog()["StructTreeRoot"])
}

// nodeRole returns the structure type of a node, or "".
func nodeRole(r graph.Resolver, node graph.Dict) graph.Name {
	s, _ := graph.NameOf(r, node["S"])
	return s
}

// walkStruct visits every structure node at any depth under root in
// document order, carrying the page context inherited from ancestors.
// References are dereferenced exactly once per traversal step and a
// visited set keyed by object and generation number keeps traversal
// finite on graphs with back-edges or shared subtrees. Bare child arrays
// are flattened, marked-content and object references are skipped, and
// malformed entries are ignored. This is the primitive under every query
// and rewrite the engine performs on the tag tree.
func walkStruct(ctx context.Context, r graph.Resolver, root any, visit func(node graph.Dict, ref graph.Ref, page graph.Ref)) {
	type frame struct {
		x    any
		page graph.Ref
	}
	visited := make(map[graph.Ref]bool)
	stack := []frame{{x: root}}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x := f.x
		var ref graph.Ref
		if rr, ok := graph.RefOf(x); ok {
			if visited[rr] {
				continue
			}
			visited[rr] = true
			ref = rr
			x = r.Resolve(x)
		}
		switch v := x.(type) {
		case graph.Array:
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, frame{x: v[i], page: f.page})
			}
		case graph.Dict:
			if t, _ := graph.NameOf(r, v["Type"]); t == "MCR" || t == "OBJR" {
				continue
			}
			page := f.page
			if pg, ok := graph.RefOf(v["Pg"]); ok {
				page = pg
			}
			visit(v, ref, page)
			if k, ok := v["K"]; ok {
				stack = append(stack, frame{x: k, page: page})
			}
		}
	}
}

// findByRole collects every structure node at any depth under root whose
// role satisfies match, in document order.
func findByRole(ctx context.Context, r graph.Resolver, root any, match func(graph.Name) bool) []graph.Dict {
	var out []graph.Dict
	walkStruct(ctx, r, root, func(node graph.Dict, _ graph.Ref, _ graph.Ref) {
		if s := nodeRole(r, node); s != "" && match(s) {
			out = append(out, node)
		}
	})
	return out
}

// kidsOf decodes a node's /K into tagged child variants, flattening bare
// arrays. Entries that decode to none of the variants are dropped.
func kidsOf(r graph.Resolver, node graph.Dict) []graph.Kid {
	raw, ok := node["K"]
	if !ok || raw == nil {
		return nil
	}
	var kids []graph.Kid
	items := []any{raw}
	for hops := 0; len(items) > 0 && hops < 1<<16; hops++ {
		it := items[0]
		items = items[1:]
		if arr, ok := graph.ArrayOf(r, it); ok {
			expanded := make([]any, 0, len(arr)+len(items))
			expanded = append(expanded, arr...)
			expanded = append(expanded, items...)
			items = expanded
			continue
		}
		kid := graph.Kid{MCID: -1}
		if ref, ok := graph.RefOf(it); ok {
			kid.Ref = ref
		}
		switch v := r.Resolve(it).(type) {
		case int:
			kid.MCID = v
		case int64:
			kid.MCID = int(v)
		case graph.Dict:
			t, _ := graph.NameOf(r, v["Type"])
			switch t {
			case "MCR":
				n, ok := graph.IntOf(r, v["MCID"])
				if !ok {
					continue
				}
				kid.MCID = n
			case "OBJR":
				obj, ok := graph.RefOf(v["Obj"])
				if !ok {
					continue
				}
				kid.Obj = obj
			default:
				kid.Node = v
			}
			if pg, ok := graph.RefOf(v["Pg"]); ok {
				kid.Page = pg
			}
		default:
			continue
		}
		kids = append(kids, kid)
	}
	return kids
}

// structKids returns the first-level children of node that are themselves
// structure nodes.
func structKids(r graph.Resolver, node graph.Dict) []graph.Dict {
	var out []graph.Dict
	for _, kid := range kidsOf(r, node) {
		if kid.Node != nil {
			out = append(out, kid.Node)
		}
	}
	return out
}

// sameNode reports whether two dictionaries are the same underlying object.
func sameNode(a, b graph.Dict) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
