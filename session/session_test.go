package session

import "testing"

func TestNewSessionHasUniqueID(t *testing.T) {
	s1 := New()
	s2 := New()
	if s1.ID() == s2.ID() || s1.ID() == "" {
		t.Fatalf("expected distinct, non-empty session IDs, got %q and %q", s1.ID(), s2.ID())
	}
}

func TestParseThenGetValue(t *testing.T) {
	s := New()
	if errs := s.Parse("a = 1"); len(errs) != 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	got := s.GetValue()
	want := `{"properties":{"a":{"eq":1}}}`
	if got != want {
		t.Fatalf("GetValue() = %q, want %q", got, want)
	}
}

func TestParseFatalSyntaxErrorReturnedAsSingleError(t *testing.T) {
	s := New()
	errs := s.Parse("a = ")
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1 syntax error: %v", len(errs), errs)
	}
}

func TestResetClearsValueKeepsSchema(t *testing.T) {
	s := New()
	s.Parse("a = 1")
	s.ParseSchema(`Optional { a = number }`)
	s.Reset()
	got := s.GetValue()
	if got != `{}` {
		t.Fatalf("GetValue() after Reset = %q, want {}", got)
	}
	if errs := s.ValidateSchema(); len(errs) != 0 {
		t.Fatalf("ValidateSchema after Reset = %v, want no errors (empty value satisfies Optional)", errs)
	}
}

func TestValidateSchemaWithNoSchemaSetReturnsNoErrors(t *testing.T) {
	s := New()
	s.Parse("a = 1")
	if errs := s.ValidateSchema(); len(errs) != 0 {
		t.Fatalf("ValidateSchema with no schema set = %v, want nil/empty", errs)
	}
}

func TestValidateSchemaCatchesTypeMismatch(t *testing.T) {
	s := New()
	s.Parse("port = notanumber")
	s.ParseSchema(`Required { port = number }`)
	errs := s.ValidateSchema()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
}

func TestValidateReferencesCatchesUnresolved(t *testing.T) {
	s := New()
	s.Parse("ref = $missing.thing")
	errs := s.ValidateReferences()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
}

func TestFreeDropsTrees(t *testing.T) {
	// Free() is the terminal operation on a Session: a host must not call
	// any other method afterward, so this confirms Free() drops both trees
	// and the session's ID remains readable.
	s := New()
	s.Parse("a = 1")
	s.ParseSchema(`Optional { a = number }`)
	id := s.ID()
	s.Free()
	if s.value != nil || s.schema != nil {
		t.Fatalf("Free() left trees in place: value=%v schema=%v", s.value, s.schema)
	}
	if s.ID() != id {
		t.Fatalf("ID() changed after Free(): %q != %q", s.ID(), id)
	}
}
