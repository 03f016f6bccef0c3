package interp

import (
	"github.com/malloydata/motly-go/document"
	"github.com/malloydata/motly-go/internal/ast"
	"github.com/malloydata/motly-go/motlyerr"
)

// resolveClone implements clone resolution (spec §4.2 "Clone resolution")
// for the reference on the right of `:=`. stmtPath is the full dotted path
// of the statement doing the cloning, write key included (the statement's
// own node is not placed in the tree until after resolution).
//
// It returns a deep copy of the resolved node, or nil if resolution failed.
func (i *Interp) resolveClone(stmtPath []string, ref *ast.Ref) *document.Node {
	var start *document.Node
	if ref.Ups == 0 {
		start = i.Root
	} else {
		// The effective starting ancestor is at stmtPath[0 .. len-1-ups],
		// navigated from the root. stmtPath ends with the write key, so the
		// "parent of the write target" is stmtPath with its last element
		// dropped — i.e. stmtPath[:len(stmtPath)-1] — before subtracting the
		// ups.
		parentLen := len(stmtPath) - 1
		idx := parentLen - ref.Ups
		if idx < 0 {
			return nil
		}
		start = i.navigateAbsolute(stmtPath[:idx])
		if start == nil {
			return nil
		}
	}

	cur := start
	for _, seg := range ref.Segments {
		if seg.IsIndex {
			if cur.Eq == nil || cur.Eq.Kind != document.EqArray {
				return nil
			}
			if seg.Index < 0 || seg.Index >= len(cur.Eq.Array) {
				return nil
			}
			n, ok := cur.Eq.Array[seg.Index].(*document.Node)
			if !ok {
				return nil
			}
			cur = n
			continue
		}
		if cur.Properties == nil {
			return nil
		}
		child, ok := cur.Properties.Get(seg.Name)
		if !ok {
			return nil
		}
		n, ok2 := child.(*document.Node)
		if !ok2 {
			return nil
		}
		cur = n
	}
	return cur.CloneNode()
}

// navigateAbsolute walks path from the root using read-only lookups (no
// node creation): every segment must already exist and be a Node.
func (i *Interp) navigateAbsolute(path []string) *document.Node {
	cur := i.Root
	for _, seg := range path {
		if cur.Properties == nil {
			return nil
		}
		child, ok := cur.Properties.Get(seg)
		if !ok {
			return nil
		}
		n, ok2 := child.(*document.Node)
		if !ok2 {
			return nil
		}
		cur = n
	}
	return cur
}

// sanitizeClone implements clone-boundary sanitization (spec §4.2): inside
// a freshly cloned subtree, any Link whose ups count exceeds its depth
// within the clone (depth 0 = the clone's own root) is replaced with an
// empty Node and reported as clone-reference-out-of-scope. Absolute
// references (ups==0) are always left untouched.
func sanitizeClone(n *document.Node, depth int, i *Interp) {
	if n == nil || n.Properties == nil {
		return
	}
	for _, key := range n.Properties.Keys() {
		v, _ := n.Properties.Get(key)
		switch val := v.(type) {
		case *document.Node:
			sanitizeClone(val, depth+1, i)
		case *document.Link:
			ups, ok := parseUpsFromRef(val.Ref)
			if ok && ups > depth {
				i.addError(&motlyerr.InterpError{
					Code:    "clone-reference-out-of-scope",
					Message: "reference " + val.Ref + " escapes the cloned subtree",
				})
				n.Properties.Set(key, document.NewNode())
			}
		}
	}
	if n.Eq != nil && n.Eq.Kind == document.EqArray {
		for idx, el := range n.Eq.Array {
			switch val := el.(type) {
			case *document.Node:
				sanitizeClone(val, depth+1, i)
			case *document.Link:
				ups, ok := parseUpsFromRef(val.Ref)
				if ok && ups > depth {
					i.addError(&motlyerr.InterpError{
						Code:    "clone-reference-out-of-scope",
						Message: "reference " + val.Ref + " escapes the cloned subtree",
					})
					n.Eq.Array[idx] = document.NewNode()
				}
			}
		}
	}
}

// parseUpsFromRef counts the leading '^' characters of a canonical
// reference string (as produced by ast.Ref.Format): "$" then ups carets.
func parseUpsFromRef(ref string) (int, bool) {
	if len(ref) == 0 || ref[0] != '$' {
		return 0, false
	}
	n := 0
	for i := 1; i < len(ref) && ref[i] == '^'; i++ {
		n++
	}
	return n, true
}
