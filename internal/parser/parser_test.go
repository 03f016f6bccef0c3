package parser

import (
	"testing"

	"github.com/malloydata/motly-go/internal/ast"
)

func mustParse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	stmts, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return stmts
}

func TestParseDefine(t *testing.T) {
	stmts := mustParse(t, "a.b.c")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	s := stmts[0]
	if s.Kind != ast.Define {
		t.Fatalf("Kind = %v, want Define", s.Kind)
	}
	if got := s.Path; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Path = %v, want [a b c]", got)
	}
}

func TestParseDefineDeleted(t *testing.T) {
	stmts := mustParse(t, "-a.b")
	if stmts[0].Kind != ast.DefineDeleted {
		t.Fatalf("Kind = %v, want DefineDeleted", stmts[0].Kind)
	}
}

func TestParseClearAll(t *testing.T) {
	stmts := mustParse(t, "-...")
	if stmts[0].Kind != ast.ClearAll {
		t.Fatalf("Kind = %v, want ClearAll", stmts[0].Kind)
	}
}

func TestParseSetEqScalar(t *testing.T) {
	stmts := mustParse(t, "a = 1")
	s := stmts[0]
	if s.Kind != ast.SetEq {
		t.Fatalf("Kind = %v, want SetEq", s.Kind)
	}
	if s.Value.Kind != ast.ValNumber || s.Value.Num != 1 {
		t.Fatalf("Value = %+v, want Number 1", s.Value)
	}
	if s.BlockPresent {
		t.Fatal("BlockPresent should be false")
	}
}

func TestParseSetEqWithBlock(t *testing.T) {
	stmts := mustParse(t, `a = "x" { b = 2 }`)
	s := stmts[0]
	if !s.BlockPresent || len(s.Block) != 1 {
		t.Fatalf("Block = %+v, BlockPresent = %v", s.Block, s.BlockPresent)
	}
}

func TestParseAssignBoth(t *testing.T) {
	stmts := mustParse(t, "a := $root")
	s := stmts[0]
	if s.Kind != ast.AssignBoth {
		t.Fatalf("Kind = %v, want AssignBoth", s.Kind)
	}
	if s.Value.Kind != ast.ValReference {
		t.Fatalf("Value.Kind = %v, want ValReference", s.Value.Kind)
	}
}

func TestAssignBothDetectedBeforeReplaceProperties(t *testing.T) {
	stmts := mustParse(t, `a := "v"`)
	if stmts[0].Kind != ast.AssignBoth {
		t.Fatalf("':=' must be detected before ':'; got Kind = %v", stmts[0].Kind)
	}
}

func TestParseReplaceProperties(t *testing.T) {
	stmts := mustParse(t, "a : { b = 1 }")
	s := stmts[0]
	if s.Kind != ast.ReplaceProperties {
		t.Fatalf("Kind = %v, want ReplaceProperties", s.Kind)
	}
}

func TestParseUpdateProperties(t *testing.T) {
	stmts := mustParse(t, "a { b = 1 }")
	s := stmts[0]
	if s.Kind != ast.UpdateProperties {
		t.Fatalf("Kind = %v, want UpdateProperties", s.Kind)
	}
}

func TestParseEqWithBraceIsSyntaxError(t *testing.T) {
	_, err := Parse("a = { b = 1 }")
	if err == nil {
		t.Fatal("expected a syntax error for '= {' with no value")
	}
	if err.Code() != "tag-parse-syntax-error" {
		t.Fatalf("Code() = %q, want tag-parse-syntax-error", err.Code())
	}
}

func TestParseMultipleStatementsCommaSeparated(t *testing.T) {
	stmts := mustParse(t, "a=1, b=2")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
}

func TestParseStringForms(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`a = "hi"`, "hi"},
		{`a = "he said \"hi\""`, `he said "hi"`},
		{"a = \"\"\"line1\nline2\"\"\"", "line1\nline2"},
		{"a = 'raw\\nstring'", `raw\nstring`},
		{"a = bareword", "bareword"},
		{"a = `odd name`", "odd name"},
	}
	for _, tc := range cases {
		stmts := mustParse(t, tc.src)
		got := stmts[0].Value.Str
		if got != tc.want {
			t.Errorf("Parse(%q).Value.Str = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestParseSingleQuoteBackslashAbsorption(t *testing.T) {
	// \' does not close a single-quoted string: the backslash absorbs the
	// quote, so the string continues to the next unescaped '.
	stmts := mustParse(t, `a = 'it\'s here'`)
	got := stmts[0].Value.Str
	want := `it\'s here`
	if got != want {
		t.Fatalf("Value.Str = %q, want %q", got, want)
	}
}

func TestParseHeredoc(t *testing.T) {
	src := "a = <<<\n  line one\n  line two\n>>>"
	stmts := mustParse(t, src)
	got := stmts[0].Value.Str
	want := "line one\nline two\n"
	if got != want {
		t.Fatalf("heredoc = %q, want %q", got, want)
	}
}

func TestParseNumberForms(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"a = 1", 1},
		{"a = -1", -1},
		{"a = 1.5", 1.5},
		{"a = 1e3", 1000},
		{"a = 1.5e-2", 0.015},
	}
	for _, tc := range cases {
		stmts := mustParse(t, tc.src)
		if stmts[0].Value.Kind != ast.ValNumber || stmts[0].Value.Num != tc.want {
			t.Errorf("Parse(%q).Value = %+v, want Number %v", tc.src, stmts[0].Value, tc.want)
		}
	}
}

func TestParseNumberReparsedAsBareString(t *testing.T) {
	stmts := mustParse(t, "a = 123abc")
	v := stmts[0].Value
	if v.Kind != ast.ValString || v.Str != "123abc" {
		t.Fatalf("Value = %+v, want bare string 123abc", v)
	}
}

func TestParseAtConstants(t *testing.T) {
	stmts := mustParse(t, "a = @true")
	if stmts[0].Value.Kind != ast.ValBoolean || !stmts[0].Value.Bool {
		t.Fatalf("Value = %+v, want Boolean true", stmts[0].Value)
	}

	stmts = mustParse(t, "a = @false")
	if stmts[0].Value.Kind != ast.ValBoolean || stmts[0].Value.Bool {
		t.Fatalf("Value = %+v, want Boolean false", stmts[0].Value)
	}

	stmts = mustParse(t, "a = @none")
	if stmts[0].Value.Kind != ast.ValNone {
		t.Fatalf("Value.Kind = %v, want ValNone", stmts[0].Value.Kind)
	}

	stmts = mustParse(t, "a = @env.HOME")
	if stmts[0].Value.Kind != ast.ValEnvRef || stmts[0].Value.Str != "HOME" {
		t.Fatalf("Value = %+v, want EnvRef HOME", stmts[0].Value)
	}
}

func TestParseDateConstant(t *testing.T) {
	stmts := mustParse(t, "a = @2024-01-15T10:30:00Z")
	v := stmts[0].Value
	if v.Kind != ast.ValDate || v.Str != "2024-01-15T10:30:00Z" {
		t.Fatalf("Value = %+v, want Date 2024-01-15T10:30:00Z", v)
	}
}

func TestParseReference(t *testing.T) {
	stmts := mustParse(t, "a = $^^name[0].sub")
	ref := stmts[0].Value.Ref
	if ref.Ups != 2 {
		t.Fatalf("Ups = %d, want 2", ref.Ups)
	}
	if ref.Format() != "$^^name[0].sub" {
		t.Fatalf("Format() = %q, want $^^name[0].sub", ref.Format())
	}
}

func TestParseArray(t *testing.T) {
	stmts := mustParse(t, "a = [1, 2, 3,]")
	v := stmts[0].Value
	if v.Kind != ast.ValArray || len(v.Elements) != 3 {
		t.Fatalf("Value = %+v, want array of 3", v)
	}
}

func TestParseArrayWithBlockElements(t *testing.T) {
	stmts := mustParse(t, "a = [{x=1}, {y=2}]")
	v := stmts[0].Value
	if len(v.Elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(v.Elements))
	}
	if !v.Elements[0].BlockPresent {
		t.Fatal("expected BlockPresent on first element")
	}
}

func TestParseTotality(t *testing.T) {
	// Either Parse returns statements consuming all input, or exactly one
	// error - never both, never neither.
	_, err := Parse("a = 1 b = ")
	if err == nil {
		t.Fatal("expected a syntax error for incomplete statement")
	}
}
