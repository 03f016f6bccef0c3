package validate

import (
	"testing"

	"github.com/malloydata/motly-go/document"
	"github.com/malloydata/motly-go/internal/interp"
	"github.com/malloydata/motly-go/internal/parser"
)

func parseAndRun(t *testing.T, src string) *document.Node {
	t.Helper()
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	in := interp.New()
	in.Run(stmts)
	if len(in.Errors) != 0 {
		t.Fatalf("interp errors for %q: %v", src, in.Errors)
	}
	return in.Root
}

func TestReferencesResolvedLinkProducesNoError(t *testing.T) {
	root := parseAndRun(t, "orig { name=hi } ref = $orig.name")
	errs := References(root)
	if len(errs) != 0 {
		t.Fatalf("got %d errors, want 0: %v", len(errs), errs)
	}
}

func TestReferencesUnresolvedNamePropertyFails(t *testing.T) {
	root := parseAndRun(t, "orig { name=hi } ref = $orig.missing")
	errs := References(root)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
}

func TestReferencesRelativeUpResolvesToGrandparent(t *testing.T) {
	// The link's container (b) is not itself on the ancestors stack: ups==1
	// from inside b must land on a's own properties, not b's.
	root := parseAndRun(t, "a { b { link = $^x } x = 5 }")
	errs := References(root)
	if len(errs) != 0 {
		t.Fatalf("got %d errors, want 0: %v", len(errs), errs)
	}
}

func TestReferencesRelativeUpTooFar(t *testing.T) {
	root := parseAndRun(t, "a { b = $^^^^^toohigh }")
	errs := References(root)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
}

func TestReferencesArrayIndexResolves(t *testing.T) {
	root := parseAndRun(t, "items = [1, 2] ref = $items[1]")
	errs := References(root)
	if len(errs) != 0 {
		t.Fatalf("got %d errors, want 0: %v", len(errs), errs)
	}
}

func TestReferencesArrayIndexOutOfBounds(t *testing.T) {
	root := parseAndRun(t, "items = [1, 2] ref = $items[5]")
	errs := References(root)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
}

func TestReferencesTrailingLinkIsTerminal(t *testing.T) {
	// ref1 links to orig.name; ref2 links through ref1 - but a Link is
	// terminal, so ref2's own resolution only needs ref1 itself to exist,
	// not ref1's target's further structure.
	root := parseAndRun(t, "orig { name = hi } ref1 = $orig.name ref2 = $ref1")
	errs := References(root)
	if len(errs) != 0 {
		t.Fatalf("got %d errors, want 0: %v", len(errs), errs)
	}
}

func TestParseLinkStringRoundTrip(t *testing.T) {
	ups, segs, ok := parseLinkString("$^^name[0].sub")
	if !ok {
		t.Fatal("parseLinkString failed to parse a well-formed reference")
	}
	if ups != 2 {
		t.Fatalf("ups = %d, want 2", ups)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3 (name, [0], sub): %+v", len(segs), segs)
	}
	if segs[0].name != "name" || segs[0].isIndex {
		t.Fatalf("segs[0] = %+v, want name", segs[0])
	}
	if !segs[1].isIndex || segs[1].index != 0 {
		t.Fatalf("segs[1] = %+v, want index 0", segs[1])
	}
	if segs[2].name != "sub" || segs[2].isIndex {
		t.Fatalf("segs[2] = %+v, want sub", segs[2])
	}
}

func TestParseLinkStringMalformedRejected(t *testing.T) {
	if _, _, ok := parseLinkString("not-a-link"); ok {
		t.Fatal("expected malformed reference to be rejected")
	}
	if _, _, ok := parseLinkString("$"); ok {
		t.Fatal("expected bare '$' to be rejected")
	}
}
