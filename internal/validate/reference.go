// Package validate implements the two validators described in spec §4.3 and
// §4.4: reference resolution over a tree, and schema conformance checking
// using a schema written in MOTLY itself.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/malloydata/motly-go/document"
	"github.com/malloydata/motly-go/motlyerr"
)

// References walks the entire tree and reports an unresolved-reference
// error for every Link that cannot be resolved (spec §4.3).
func References(root *document.Node) []error {
	var errs []error
	walkReferences(root, []*document.Node{root}, nil, &errs)
	return errs
}

// walkReferences recurses through node's properties and array elements,
// maintaining an ancestors stack seeded with [root] and pushed (with the
// current node, not the child being descended into) before recursing. For a
// link below the top level, its own container is therefore not on the
// stack; the top of the stack is the container's parent, so ups==1 means
// exactly that, matching spec §6.2's up-count semantics. A link directly
// under the root sees the stack [root], so its ups==1 lands on the root.
func walkReferences(node *document.Node, ancestors []*document.Node, path []string, errs *[]error) {
	if node == nil || node.Properties == nil {
		return
	}
	for _, key := range node.Properties.Keys() {
		v, _ := node.Properties.Get(key)
		childPath := append(append([]string{}, path...), key)
		switch val := v.(type) {
		case *document.Node:
			walkReferences(val, append(ancestors, node), childPath, errs)
		case *document.Link:
			checkLink(val.Ref, ancestors, childPath, errs)
		}
	}
	if node.Eq != nil && node.Eq.Kind == document.EqArray {
		for idx, el := range node.Eq.Array {
			elPath := append(append([]string{}, path...), fmt.Sprintf("[%d]", idx))
			switch val := el.(type) {
			case *document.Node:
				walkReferences(val, append(ancestors, node), elPath, errs)
			case *document.Link:
				checkLink(val.Ref, ancestors, elPath, errs)
			}
		}
	}
}

// checkLink resolves one reference string against ancestors (spec §4.3) and
// appends an unresolved-reference error on any failure. The validator never
// recurses through a resolved Link, so cyclic link graphs cannot cause
// nontermination.
func checkLink(ref string, ancestors []*document.Node, path []string, errs *[]error) {
	ups, segs, ok := parseLinkString(ref)
	if !ok {
		*errs = append(*errs, &motlyerr.ReferenceError{
			Code:    "unresolved-reference",
			Message: fmt.Sprintf("malformed reference %q", ref),
			Path:    append([]string{}, path...),
		})
		return
	}

	var cur *document.Node
	if ups == 0 {
		cur = ancestors[0]
	} else {
		idx := len(ancestors) - ups
		if idx < 0 {
			*errs = append(*errs, &motlyerr.ReferenceError{
				Code:    "unresolved-reference",
				Message: fmt.Sprintf("reference %q goes %d level(s) up but only %d ancestor(s) available", ref, ups, len(ancestors)-1),
				Path:    append([]string{}, path...),
			})
			return
		}
		cur = ancestors[idx]
	}

	for segIdx, seg := range segs {
		if cur == nil {
			*errs = append(*errs, &motlyerr.ReferenceError{
				Code:    "unresolved-reference",
				Message: fmt.Sprintf("reference %q cannot follow path through a link", ref),
				Path:    append([]string{}, path...),
			})
			return
		}
		if seg.isIndex {
			if cur.Eq == nil || cur.Eq.Kind != document.EqArray {
				*errs = append(*errs, &motlyerr.ReferenceError{
					Code:    "unresolved-reference",
					Message: fmt.Sprintf("reference %q indexes into a non-array value", ref),
					Path:    append([]string{}, path...),
				})
				return
			}
			if seg.index < 0 || seg.index >= len(cur.Eq.Array) {
				*errs = append(*errs, &motlyerr.ReferenceError{
					Code:    "unresolved-reference",
					Message: fmt.Sprintf("reference %q could not be resolved: index [%d] out of bounds", ref, seg.index),
					Path:    append([]string{}, path...),
				})
				return
			}
			switch el := cur.Eq.Array[seg.index].(type) {
			case *document.Node:
				cur = el
			case *document.Link:
				if segIdx == len(segs)-1 {
					cur = nil // resolved: a Link at the very end is resolved
					return
				}
				cur = nil
				continue
			}
			continue
		}

		if cur.Properties == nil {
			*errs = append(*errs, &motlyerr.ReferenceError{
				Code:    "unresolved-reference",
				Message: fmt.Sprintf("reference %q could not be resolved: property %q not found", ref, seg.name),
				Path:    append([]string{}, path...),
			})
			return
		}
		child, ok2 := cur.Properties.Get(seg.name)
		if !ok2 {
			*errs = append(*errs, &motlyerr.ReferenceError{
				Code:    "unresolved-reference",
				Message: fmt.Sprintf("reference %q could not be resolved: property %q not found", ref, seg.name),
				Path:    append([]string{}, path...),
			})
			return
		}
		switch c := child.(type) {
		case *document.Node:
			cur = c
		case *document.Link:
			if segIdx == len(segs)-1 {
				return // resolved: trailing Link is terminal
			}
			cur = nil
		}
	}
}

type linkSeg struct {
	isIndex bool
	name    string
	index   int
}

// parseLinkString parses a canonical reference string ("$" ups carets then
// dotted name[idx] segments, spec §6.2) back into its ups count and segment
// list.
func parseLinkString(ref string) (int, []linkSeg, bool) {
	if len(ref) == 0 || ref[0] != '$' {
		return 0, nil, false
	}
	i := 1
	ups := 0
	for i < len(ref) && ref[i] == '^' {
		ups++
		i++
	}
	if i >= len(ref) {
		return 0, nil, false
	}

	var segs []linkSeg
	rest := ref[i:]
	for _, part := range strings.Split(rest, ".") {
		if part == "" {
			return 0, nil, false
		}
		name := part
		var indices []int
		for {
			br := strings.IndexByte(name, '[')
			if br < 0 {
				break
			}
			closeIdx := strings.IndexByte(name[br:], ']')
			if closeIdx < 0 {
				return 0, nil, false
			}
			idxStr := name[br+1 : br+closeIdx]
			n, err := strconv.Atoi(idxStr)
			if err != nil {
				return 0, nil, false
			}
			indices = append(indices, n)
			name = name[:br] + name[br+closeIdx+1:]
		}
		segs = append(segs, linkSeg{name: name})
		for _, n := range indices {
			segs = append(segs, linkSeg{isIndex: true, index: n})
		}
	}
	if len(segs) == 0 {
		return 0, nil, false
	}
	return ups, segs, true
}
