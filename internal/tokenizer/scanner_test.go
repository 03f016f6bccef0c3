package tokenizer

import "testing"

func TestScannerPeekGet(t *testing.T) {
	s := New("ab")
	c, ok := s.Peek()
	if !ok || c != 'a' {
		t.Fatalf("Peek() = %q, %v; want 'a', true", c, ok)
	}
	c, ok = s.Get()
	if !ok || c != 'a' {
		t.Fatalf("Get() = %q, %v; want 'a', true", c, ok)
	}
	c, ok = s.Get()
	if !ok || c != 'b' {
		t.Fatalf("Get() = %q, %v; want 'b', true", c, ok)
	}
	if !s.AtEnd() {
		t.Fatal("expected AtEnd() after consuming all input")
	}
}

func TestScannerLineColumn(t *testing.T) {
	s := New("ab\ncd")
	for i := 0; i < 3; i++ {
		s.Get()
	}
	pos := s.Pos()
	if pos.Line != 1 || pos.Column != 0 {
		t.Fatalf("Pos() = %+v; want line=1 column=0", pos)
	}
}

func TestScannerCRLFCountsAsOneNewline(t *testing.T) {
	s := New("a\r\nb")
	s.Get() // a
	s.Get() // \r\n -> \n
	pos := s.Pos()
	if pos.Line != 1 || pos.Column != 0 {
		t.Fatalf("Pos() after CRLF = %+v; want line=1 column=0", pos)
	}
}

func TestSkipSpaceAndComments(t *testing.T) {
	s := New("   # a comment\n  x")
	s.SkipSpaceAndComments()
	c, ok := s.Peek()
	if !ok || c != 'x' {
		t.Fatalf("after skipping, Peek() = %q, %v; want 'x', true", c, ok)
	}
}

func TestSkipSeparatorsEatsCommas(t *testing.T) {
	s := New(" , , x")
	s.SkipSeparators()
	c, ok := s.Peek()
	if !ok || c != 'x' {
		t.Fatalf("after skipping separators, Peek() = %q, %v; want 'x', true", c, ok)
	}
}

func TestMarkAndCopyFromMark(t *testing.T) {
	s := New("hello world")
	s.PushMark()
	s.ReadWhile(IsBareChar)
	got := s.CopyFromMark()
	if got != "hello" {
		t.Fatalf("CopyFromMark() = %q; want %q", got, "hello")
	}
}

func TestIsBareChar(t *testing.T) {
	cases := []struct {
		c    rune
		want bool
	}{
		{'a', true},
		{'Z', true},
		{'9', true},
		{'_', true},
		{' ', false},
		{'.', false},
		{'[', false},
		{0x00C0, true},
		{0x0250, false},
	}
	for _, tc := range cases {
		if got := IsBareChar(tc.c); got != tc.want {
			t.Errorf("IsBareChar(%q) = %v; want %v", tc.c, got, tc.want)
		}
	}
}

func TestTryConsumeLiteral(t *testing.T) {
	s := New("true false")
	if !s.TryConsumeLiteral("true") {
		t.Fatal("expected TryConsumeLiteral(\"true\") to succeed")
	}
	if s.TryConsumeLiteral("true") {
		t.Fatal("expected second TryConsumeLiteral(\"true\") to fail (input now starts with space)")
	}
}

func TestRewind(t *testing.T) {
	s := New("abcdef")
	s.Get()
	s.Get()
	pos := s.Pos()
	s.Get()
	s.Get()
	s.Rewind(pos)
	c, ok := s.Peek()
	if !ok || c != 'c' {
		t.Fatalf("after Rewind, Peek() = %q, %v; want 'c', true", c, ok)
	}
}
