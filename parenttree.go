// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"

	"github.com/sassoftware/pdf-remediate/graph"
)

// lookupParentTree resolves a structure-parent key in the parent-tree
// number tree rooted at root. Number trees may be multi-level: interior
// nodes carry Kids with declared key ranges in Limits, leaves carry
// key/value pairs in Nums. Kids whose Limits exclude the key are pruned.
// Reference cycles terminate via the same visited-identity guard as the
// structure-tree walk.
func lookupParentTree(ctx context.Context, r graph.Resolver, root any, key int) (any, bool) {
	visited := make(map[graph.Ref]bool)
	stack := []any{root}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return nil, false
		}
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ref, ok := graph.RefOf(x); ok {
			if visited[ref] {
				continue
			}
			visited[ref] = true
		}
		node, ok := graph.DictOf(r, x)
		if !ok {
			continue
		}

		if nums, ok := graph.ArrayOf(r, node["Nums"]); ok {
			for i := 0; i+1 < len(nums); i += 2 {
				if k, ok := graph.IntOf(r, nums[i]); ok && k == key {
					return r.Resolve(nums[i+1]), true
				}
			}
		}

		kids, ok := graph.ArrayOf(r, node["Kids"])
		if !ok {
			continue
		}
		for i := len(kids) - 1; i >= 0; i-- {
			kid := kids[i]
			if kd, ok := graph.DictOf(r, kid); ok {
				if lim, ok := graph.ArrayOf(r, kd["Limits"]); ok && len(lim) == 2 {
					lo, okLo := graph.IntOf(r, lim[0])
					hi, okHi := graph.IntOf(r, lim[1])
					if okLo && okHi && (key < lo || key > hi) {
						continue
					}
				}
			}
			stack = append(stack, kid)
		}
	}
	return nil, false
}
