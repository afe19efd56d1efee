// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"fmt"

	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/logger"
)

// reconcileAnnotations removes page annotations whose claimed
// structure-parent key does not resolve in the parent-tree index. An
// annotation pointing at a structure node that is not actually reachable
// is worse for assistive technology than an untagged one. Annotations
// that declare no StructParent are left alone. Returns the number of
// annotations removed.
func (rm *Remediator) reconcileAnnotations(ctx context.Context, doc graph.Document) int {
	var parentTree any
	if root, ok := structRoot(doc); ok {
		parentTree = root["ParentTree"]
	}

	removed := 0
	for num := 1; num <= doc.NumPages(); num++ {
		if ctx.Err() != nil {
			break
		}
		page := doc.Page(num)
		if page == nil {
			continue
		}
		annots, ok := graph.ArrayOf(doc, page["Annots"])
		if !ok {
			continue
		}

		kept := make(graph.Array, 0, len(annots))
		pageRemoved := 0
		for _, a := range annots {
			ad, ok := graph.DictOf(doc, a)
			if !ok {
				kept = append(kept, a)
				continue
			}
			key, claims := graph.IntOf(doc, ad["StructParent"])
			if !claims {
				kept = append(kept, a)
				continue
			}
			if parentTree != nil {
				if _, found := lookupParentTree(ctx, doc, parentTree, key); found {
					kept = append(kept, a)
					continue
				}
			}
			pageRemoved++
		}
		if pageRemoved > 0 {
			page["Annots"] = kept
			removed += pageRemoved
			logger.Debug(fmt.Sprintf("reconcileAnnotations: removed %d stale annotations: page=%d", pageRemoved, num), true)
		}
	}
	return removed
}
