// Package interp folds a parsed statement list into a mutable document
// tree (spec §4.2). It is the only package with enough context (the
// statement's own write path) to resolve `:=` clone references and sanitize
// the Links a clone carries across its new boundary.
package interp

import (
	"github.com/malloydata/motly-go/document"
	"github.com/malloydata/motly-go/internal/ast"
	"github.com/malloydata/motly-go/motlyerr"
)

// Interp executes statement lists against one owned root Node, accumulating
// non-fatal errors. It has no parser or validator dependency: it only knows
// ast.Statement and document.Node.
type Interp struct {
	Root   *document.Node
	Errors []error
}

// New returns an Interp over a freshly allocated empty root.
func New() *Interp {
	return &Interp{Root: document.NewNode()}
}

// Run executes stmts against i.Root in order, the entry point used by a
// session's parse/parse-schema operations.
func (i *Interp) Run(stmts []ast.Statement) {
	i.execBlock(i.Root, nil, stmts)
}

func (i *Interp) addError(err error) { i.Errors = append(i.Errors, err) }

// execBlock executes stmts against node, which sits at path within the
// tree (path is the dotted access path of node itself, used to resolve
// relative clone references inside nested statements).
func (i *Interp) execBlock(node *document.Node, path []string, stmts []ast.Statement) {
	for _, stmt := range stmts {
		i.execStatement(node, path, stmt)
	}
}

// execStatement applies one statement to node (the node that owns the
// statement's write key), per spec §4.2's per-statement semantics table.
func (i *Interp) execStatement(node *document.Node, path []string, stmt ast.Statement) {
	switch stmt.Kind {
	case ast.ClearAll:
		node.Eq = nil
		node.Properties = nil
		return
	}

	if len(stmt.Path) == 0 {
		return
	}
	stmtPath := append(append([]string{}, path...), stmt.Path...)
	parent, writeKey := i.navigateToParent(node, stmt.Path)
	if parent == nil {
		return
	}

	switch stmt.Kind {
	case ast.Define:
		i.execDefine(parent, writeKey)
	case ast.DefineDeleted:
		parent.EnsureProperties().Set(writeKey, document.NewDeletedNode())
	case ast.SetEq:
		i.execSetEq(parent, writeKey, stmtPath, stmt)
	case ast.AssignBoth:
		i.execAssignBoth(parent, writeKey, stmtPath, stmt)
	case ast.ReplaceProperties:
		i.execReplaceProperties(parent, writeKey, stmtPath, stmt)
	case ast.UpdateProperties:
		i.execUpdateProperties(parent, writeKey, stmtPath, stmt)
	}
}

// navigateToParent descends from node along path[:len(path)-1], creating
// empty Nodes as needed and replacing any Link encountered along the way
// with a fresh empty Node (spec §4.2 "Access-path navigation"). It returns
// the parent node and the final path segment (the write key).
func (i *Interp) navigateToParent(node *document.Node, path []string) (*document.Node, string) {
	cur := node
	for _, seg := range path[:len(path)-1] {
		props := cur.EnsureProperties()
		child, ok := props.Get(seg)
		if !ok {
			fresh := document.NewNode()
			props.Set(seg, fresh)
			cur = fresh
			continue
		}
		if n, ok2 := child.(*document.Node); ok2 {
			cur = n
			continue
		}
		// a Link at an intermediate segment: replace with an empty Node so
		// the remainder of the path is addressable.
		fresh := document.NewNode()
		props.Set(seg, fresh)
		cur = fresh
	}
	return cur, path[len(path)-1]
}

func (i *Interp) execDefine(parent *document.Node, key string) {
	props := parent.EnsureProperties()
	if _, ok := props.Get(key); ok {
		return
	}
	props.Set(key, document.NewNode())
}

// childNode returns the existing Node at key, converting an existing Link
// into a fresh empty Node first (several statement forms need a Node to
// operate on, never a Link), or creates one if absent.
func (i *Interp) childNode(parent *document.Node, key string) *document.Node {
	props := parent.EnsureProperties()
	existing, ok := props.Get(key)
	if !ok {
		n := document.NewNode()
		props.Set(key, n)
		return n
	}
	if n, ok2 := existing.(*document.Node); ok2 {
		return n
	}
	n := document.NewNode()
	props.Set(key, n)
	return n
}

// execSetEq implements SET-EQ (spec §4.2): `name = V` and `name = V {S*}`.
func (i *Interp) execSetEq(parent *document.Node, key string, stmtPath []string, stmt ast.Statement) {
	if stmt.Value != nil && stmt.Value.Kind == ast.ValReference {
		ref := stmt.Value.Ref
		if stmt.BlockPresent {
			i.addError(&motlyerr.InterpError{
				Code:    "ref-with-properties",
				Message: "a reference value cannot be combined with a properties block; the block was discarded",
				Path:    stmtPath,
			})
		}
		parent.EnsureProperties().Set(key, &document.Link{Ref: ref.Format()})
		return
	}

	target := i.childNode(parent, key)
	target.Eq = i.valueToEqWithPath(stmt.Value, stmtPath)

	if stmt.BlockPresent {
		i.execBlock(target, stmtPath, stmt.Block)
	}
}

// execAssignBoth implements ASSIGN-BOTH (spec §4.2): `name := V` and
// `name := V {S*}`.
func (i *Interp) execAssignBoth(parent *document.Node, key string, stmtPath []string, stmt ast.Statement) {
	if stmt.Value != nil && stmt.Value.Kind == ast.ValReference {
		clone := i.resolveClone(stmtPath, stmt.Value.Ref)
		if clone == nil {
			i.addError(&motlyerr.InterpError{
				Code:    "unresolved-clone-reference",
				Message: "reference " + stmt.Value.Ref.Format() + " did not resolve to a node",
				Path:    stmtPath,
			})
			return
		}
		sanitizeClone(clone, 0, i)
		if stmt.BlockPresent {
			clone.Properties = nil
			i.execBlock(clone, stmtPath, stmt.Block)
		}
		parent.EnsureProperties().Set(key, clone)
		return
	}

	fresh := document.NewNode()
	fresh.Eq = i.valueToEqWithPath(stmt.Value, stmtPath)
	if stmt.BlockPresent {
		i.execBlock(fresh, stmtPath, stmt.Block)
	}
	parent.EnsureProperties().Set(key, fresh)
}

// execReplaceProperties implements REPLACE-PROPERTIES (spec §4.2):
// `name: {S*}`.
func (i *Interp) execReplaceProperties(parent *document.Node, key string, stmtPath []string, stmt ast.Statement) {
	fresh := document.NewNode()
	if existing, ok := parent.EnsureProperties().Get(key); ok {
		if n, ok2 := existing.(*document.Node); ok2 {
			fresh.Eq = n.Eq.Clone()
		}
	}
	i.execBlock(fresh, stmtPath, stmt.Block)
	parent.EnsureProperties().Set(key, fresh)
}

// execUpdateProperties implements UPDATE-PROPERTIES (spec §4.2):
// `name {S*}`.
func (i *Interp) execUpdateProperties(parent *document.Node, key string, stmtPath []string, stmt ast.Statement) {
	target := i.childNode(parent, key)
	i.execBlock(target, stmtPath, stmt.Block)
}

// valueToEq converts a literal ast.Value (never a reference) to an EqValue.
// @none clears the slot, represented as a nil EqValue.
func valueToEq(v *ast.Value) *document.EqValue {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.ValString:
		return document.NewScalarEq(document.NewString(v.Str))
	case ast.ValNumber:
		return document.NewScalarEq(document.NewNumber(v.Num))
	case ast.ValBoolean:
		return document.NewScalarEq(document.NewBoolean(v.Bool))
	case ast.ValDate:
		return document.NewScalarEq(document.NewDate(v.Str))
	case ast.ValEnvRef:
		return document.NewEnvRefEq(v.Str)
	case ast.ValNone:
		return nil
	default:
		return nil
	}
}

// arrayToEq converts an array literal to an EqValue; it is a method (rather
// than folded into valueToEq) because array elements may carry a `{S*}`
// block that must run through the interpreter to pick up non-fatal errors.
func (i *Interp) arrayToEq(v *ast.Value, stmtPath []string) *document.EqValue {
	arr := make([]document.PropertyValue, len(v.Elements))
	for idx, el := range v.Elements {
		arr[idx] = i.arrayElementToPropertyValue(el, stmtPath)
	}
	return document.NewArrayEq(arr)
}

// arrayElementToPropertyValue converts one array literal element (a value
// and/or a properties block) into the PropertyValue stored at that index.
// A reference-valued element becomes a Link; anything else becomes a Node
// carrying that value as its eq, with the block (if any) merged into its
// properties. Relative clone references inside such a block have no
// meaningful statement path to anchor beyond the array itself, so the block
// runs with the enclosing statement's path (ups-counting is unaffected
// since array elements never appear in a dotted access path).
func (i *Interp) arrayElementToPropertyValue(el ast.ArrayElement, stmtPath []string) document.PropertyValue {
	if el.Value != nil && el.Value.Kind == ast.ValReference {
		return &document.Link{Ref: el.Value.Ref.Format()}
	}
	n := document.NewNode()
	if el.Value != nil {
		n.Eq = i.valueToEqWithPath(el.Value, stmtPath)
	}
	if el.BlockPresent {
		i.execBlock(n, stmtPath, el.Block)
	}
	return n
}

// valueToEqWithPath is valueToEq extended to handle nested arrays, which
// need the interpreter (for block execution inside their own elements).
func (i *Interp) valueToEqWithPath(v *ast.Value, stmtPath []string) *document.EqValue {
	if v != nil && v.Kind == ast.ValArray {
		return i.arrayToEq(v, stmtPath)
	}
	return valueToEq(v)
}
