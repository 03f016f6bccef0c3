// Package motly provides a convenience entry point over the core engine:
// parse a document straight to a tree, or render a tree back to JSON,
// without going through the session contract in session/, for use cases
// that don't need multiple sessions.
package motly

import (
	"github.com/malloydata/motly-go/document"
	"github.com/malloydata/motly-go/internal/interp"
	"github.com/malloydata/motly-go/internal/parser"
	"github.com/malloydata/motly-go/internal/validate"
	"github.com/malloydata/motly-go/motlyerr"
)

// Parse parses src and interprets it against a fresh, empty root, returning
// the resulting tree plus any non-fatal interpreter errors. It returns a
// nil tree and the syntax error if parsing itself failed.
func Parse(src string) (*document.Node, []error, *motlyerr.SyntaxError) {
	stmts, syntaxErr := parser.Parse(src)
	if syntaxErr != nil {
		return nil, nil, syntaxErr
	}
	in := interp.New()
	in.Run(stmts)
	return in.Root, in.Errors, nil
}

// ValidateReferences runs the reference validator over root (spec §4.3).
func ValidateReferences(root *document.Node) []error {
	return validate.References(root)
}

// ValidateSchema runs the schema validator, checking value against schema
// (spec §4.4).
func ValidateSchema(schema, value *document.Node) []error {
	return validate.Schema(schema, value)
}

// ToJSON serializes root to compact, standard-mode JSON.
func ToJSON(root *document.Node) string { return document.ToJSON(root) }

// ToJSONPretty serializes root to pretty-printed, standard-mode JSON.
func ToJSONPretty(root *document.Node) string { return document.ToJSONPretty(root) }

// ToWire serializes root to compact, wire-mode JSON (dates wrapped as
// {"$date": ...}).
func ToWire(root *document.Node) string { return document.ToWire(root) }

// ToWirePretty serializes root to pretty-printed, wire-mode JSON.
func ToWirePretty(root *document.Node) string { return document.ToWirePretty(root) }
