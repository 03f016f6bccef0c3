// Package session implements the host-facing session contract (spec §6.4):
// new, parse, parse-schema, reset, get-value, validate-references,
// validate-schema, free. All operations are synchronous; a session owns at
// most one value tree and one optional schema tree (spec §5).
package session

import (
	"github.com/google/uuid"

	"github.com/malloydata/motly-go/document"
	"github.com/malloydata/motly-go/internal/interp"
	"github.com/malloydata/motly-go/internal/parser"
	"github.com/malloydata/motly-go/internal/validate"
)

// ID opaquely identifies a Session; hosts should treat it as an opaque
// token, never parse it.
type ID string

// Session holds one value tree and one optional schema tree, private to
// whichever host component created it (spec §5: sessions are never shared
// across threads).
type Session struct {
	id     ID
	value  *document.Node
	schema *document.Node
}

// New allocates a fresh Session with an empty value tree and no schema.
func New() *Session {
	return &Session{
		id:    ID(uuid.Must(uuid.NewV7()).String()),
		value: document.NewNode(),
	}
}

// ID returns the session's opaque identifier.
func (s *Session) ID() ID { return s.id }

// Parse folds src into the session's value tree, returning the fatal parse
// error (if parsing failed) or the interpreter's non-fatal errors.
func (s *Session) Parse(src string) []error {
	stmts, syntaxErr := parser.Parse(src)
	if syntaxErr != nil {
		return []error{syntaxErr}
	}
	in := &interp.Interp{Root: s.value}
	in.Run(stmts)
	return in.Errors
}

// ParseSchema parses src and stores the result as the session's schema
// tree, replacing any prior schema.
func (s *Session) ParseSchema(src string) []error {
	stmts, syntaxErr := parser.Parse(src)
	if syntaxErr != nil {
		return []error{syntaxErr}
	}
	in := interp.New()
	in.Run(stmts)
	s.schema = in.Root
	return in.Errors
}

// Reset clears the value tree back to empty, keeping the schema (if any).
func (s *Session) Reset() {
	s.value = document.NewNode()
}

// GetValue serializes the value tree to wire-mode JSON (spec §6.4).
func (s *Session) GetValue() string {
	return document.ToWire(s.value)
}

// GetValuePretty serializes the value tree to pretty-printed wire-mode
// JSON, for hosts that want readable diagnostic output.
func (s *Session) GetValuePretty() string {
	return document.ToWirePretty(s.value)
}

// ValidateReferences runs the reference validator over the value tree
// (spec §4.3).
func (s *Session) ValidateReferences() []error {
	return validate.References(s.value)
}

// ValidateSchema runs the schema validator over the value tree using the
// session's stored schema (spec §4.4). It returns an empty slice if no
// schema has been set, per spec §6.4.
func (s *Session) ValidateSchema() []error {
	if s.schema == nil {
		return nil
	}
	return validate.Schema(s.schema, s.value)
}

// Free drops the session's trees. A host that keeps a session registry
// should also remove the entry for s.id; that registry is not part of the
// core contract (spec §5).
func (s *Session) Free() {
	s.value = nil
	s.schema = nil
}
