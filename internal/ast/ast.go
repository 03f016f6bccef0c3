// Package ast defines the statement intermediate representation the parser
// produces and the interpreter consumes: a small tagged set of tree edits
// (spec §3 "Statement IR"). Mirroring the teacher's document.Node being the
// boundary type between its parser and the rest of the library, ast.Statement
// is the boundary type between internal/parser and internal/interp.
package ast

// Kind identifies which of the seven statement forms (spec §4.1.2) a
// Statement represents.
type Kind uint8

const (
	// Define is `name[.rest]`: get-or-create an empty node at path.
	Define Kind = iota
	// DefineDeleted is `-name[.rest]`: unconditionally insert a tombstone.
	DefineDeleted
	// ClearAll is `-...`: drop eq and all properties of the current node.
	ClearAll
	// SetEq is `name = V` and `name = V { S* }`.
	SetEq
	// AssignBoth is `name := V` and `name := V { S* }`.
	AssignBoth
	// ReplaceProperties is `name : { S* }`.
	ReplaceProperties
	// UpdateProperties is `name { S* }`.
	UpdateProperties
)

// Statement is one parsed tree edit.
type Statement struct {
	Kind Kind

	// Path is the dotted access path; empty for ClearAll.
	Path []string

	// Value is set for SetEq and AssignBoth.
	Value *Value

	// Block holds the nested statements of a `{ ... }` block. BlockPresent
	// distinguishes "no block was written" from "an empty block `{}` was
	// written" (both leave Block nil, but only the latter sets
	// BlockPresent).
	Block        []Statement
	BlockPresent bool
}

// ValueKind identifies which variant of Value is populated.
type ValueKind uint8

const (
	ValString ValueKind = iota
	ValNumber
	ValBoolean
	ValDate
	ValEnvRef
	ValReference
	ValArray
	// ValNone is `@none`: clears the target's eq slot.
	ValNone
)

// Value is anything that can appear on the right of `=` or `:=`, or as an
// array element's own value.
type Value struct {
	Kind ValueKind

	Str  string // ValString, ValDate literal text, ValEnvRef name
	Num  float64
	Bool bool

	Ref *Ref // ValReference

	Elements []ArrayElement // ValArray
}

// RefSegment is one step of a reference path: either a named property
// lookup or an array-index lookup, left as a flat ordered list (rather than
// grouping indices under their preceding name) because that is exactly how
// both the interpreter's clone resolver and the reference validator walk it.
type RefSegment struct {
	IsIndex bool
	Name    string
	Index   int
}

// Ref is a parsed `$^^name[0].sub` reference: an up-count plus a flat
// segment list.
type Ref struct {
	Ups      int
	Segments []RefSegment
}

// Format renders r back to its canonical textual form (spec §6.2):
// `$` ups `*` then each segment, with `.` separating consecutive name
// segments (an index segment never gets a leading `.`).
func (r *Ref) Format() string {
	b := make([]byte, 0, 16)
	b = append(b, '$')
	for i := 0; i < r.Ups; i++ {
		b = append(b, '^')
	}
	first := true
	for _, seg := range r.Segments {
		if seg.IsIndex {
			b = append(b, '[')
			b = appendInt(b, seg.Index)
			b = append(b, ']')
		} else {
			if !first {
				b = append(b, '.')
			}
			b = append(b, seg.Name...)
			first = false
		}
	}
	return string(b)
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	start := len(b)
	for n > 0 {
		b = append(b, byte('0'+n%10))
		n /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// ArrayElement is one element of an array literal: an optional value and/or
// an optional trailing `{ properties }` block.
type ArrayElement struct {
	Value        *Value
	Block        []Statement
	BlockPresent bool
}
