// Package tokenizer provides the rune-level scanning primitives used by
// internal/parser: position-tracked peek/get over an in-memory input, plus
// the character classification in ctype.go. Unlike the teacher's
// io.Reader-backed, mark/refill Scanner, this one operates directly over a
// decoded []rune slice — the resource model is "whole document in, whole
// tree out" (spec explicitly excludes streaming parse), so there is no
// buffer to refill.
package tokenizer

import "github.com/malloydata/motly-go/motlyerr"

// Scanner walks a decoded rune slice, tracking 0-based line, column and
// byte offset as it goes, mirroring the position bookkeeping the teacher's
// Scanner does for its token spans.
type Scanner struct {
	runes []rune
	// byteOffsets[i] is the byte offset of runes[i] in the original input;
	// it has one extra trailing entry for the offset just past the end.
	byteOffsets []int

	pos    int // index into runes
	line   int
	column int

	marks []mark
}

type mark struct {
	pos int
}

// New builds a Scanner over src.
func New(src string) *Scanner {
	runes := make([]rune, 0, len(src))
	offsets := make([]int, 0, len(src)+1)
	byteOff := 0
	for _, r := range src {
		runes = append(runes, r)
		offsets = append(offsets, byteOff)
		byteOff += runeLen(r)
	}
	offsets = append(offsets, byteOff)
	return &Scanner{runes: runes, byteOffsets: offsets}
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

// Pos returns the scanner's current position as a motlyerr.Position.
func (s *Scanner) Pos() motlyerr.Position {
	return motlyerr.Position{Line: s.line, Column: s.column, Offset: s.byteOffsets[s.pos]}
}

// AtEnd reports whether the scanner has consumed the whole input.
func (s *Scanner) AtEnd() bool { return s.pos >= len(s.runes) }

// Peek returns the rune at the current position without consuming it, and
// false if at end of input.
func (s *Scanner) Peek() (rune, bool) {
	if s.AtEnd() {
		return 0, false
	}
	return s.runes[s.pos], true
}

// PeekAt returns the rune offset runes ahead of the current position
// (PeekAt(0) == Peek), and false if that position is past the end.
func (s *Scanner) PeekAt(offset int) (rune, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.runes) {
		return 0, false
	}
	return s.runes[i], true
}

// Get consumes and returns the rune at the current position, advancing the
// line/column bookkeeping. A bare \r not followed by \n, a bare \n, and the
// pair \r\n all count as a single line break, matching spec §4.1's
// definition of a newline.
func (s *Scanner) Get() (rune, bool) {
	c, ok := s.Peek()
	if !ok {
		return 0, false
	}
	s.pos++
	if c == '\r' {
		if next, ok2 := s.Peek(); ok2 && next == '\n' {
			s.pos++
		}
		s.line++
		s.column = 0
		return '\n', true
	}
	if c == '\n' {
		s.line++
		s.column = 0
		return c, true
	}
	s.column++
	return c, true
}

// Skip consumes one rune, discarding it. It is a no-op at end of input.
func (s *Scanner) Skip() {
	s.Get()
}

// Eat consumes the current rune if it equals c, reporting whether it did.
func (s *Scanner) Eat(c rune) bool {
	if cur, ok := s.Peek(); ok && cur == c {
		s.Get()
		return true
	}
	return false
}

// SkipWhile consumes runes while fn returns true.
func (s *Scanner) SkipWhile(fn func(rune) bool) {
	for {
		c, ok := s.Peek()
		if !ok || !fn(c) {
			return
		}
		s.Get()
	}
}

// SkipSpaceAndComments advances past MOTLY whitespace and `#`-to-end-of-line
// comments (spec §4.1), as many times as either appears. It does not consume
// commas: those are only skipped between statements/properties, never inside
// an array, so the parser decides when to call SkipSeparators.
func (s *Scanner) SkipSpaceAndComments() {
	for {
		c, ok := s.Peek()
		if !ok {
			return
		}
		if isWhitespace(c) {
			s.Get()
			continue
		}
		if c == '#' {
			s.SkipWhile(func(r rune) bool { return r != '\n' && r != '\r' })
			continue
		}
		return
	}
}

// SkipSeparators advances past whitespace, comments, and commas — the
// separator set allowed between statements and between properties in a
// block (spec §4.1).
func (s *Scanner) SkipSeparators() {
	for {
		s.SkipSpaceAndComments()
		if c, ok := s.Peek(); ok && c == ',' {
			s.Get()
			continue
		}
		return
	}
}

// ReadWhile consumes and returns runes while fn returns true.
func (s *Scanner) ReadWhile(fn func(rune) bool) string {
	start := s.pos
	s.SkipWhile(fn)
	return string(s.runes[start:s.pos])
}

// PushMark records the current position on the mark stack, for later use
// with CopyFromMark — mirroring the teacher's mark/popMark pair used to
// extract identifier and string spans.
func (s *Scanner) PushMark() {
	s.marks = append(s.marks, mark{pos: s.pos})
}

// CopyFromMark pops the most recently pushed mark and returns the runes
// between it and the current position as a string.
func (s *Scanner) CopyFromMark() string {
	n := len(s.marks)
	if n == 0 {
		return ""
	}
	m := s.marks[n-1]
	s.marks = s.marks[:n-1]
	if m.pos > s.pos {
		return ""
	}
	return string(s.runes[m.pos:s.pos])
}

// Rewind resets the scanner to a position previously returned by Pos. The
// caller must not have popped any marks pushed before pos was taken, since
// Rewind does not touch the mark stack.
func (s *Scanner) Rewind(pos motlyerr.Position) {
	// Offsets are monotonic and unique per rune index, so a linear scan from
	// the start of the input finds the matching rune index.
	for i, off := range s.byteOffsets {
		if off == pos.Offset {
			s.pos = i
			s.line = pos.Line
			s.column = pos.Column
			return
		}
	}
}

// PeekIsTripleQuote reports whether the next three runes are `"""`.
func (s *Scanner) PeekIsTripleQuote() bool {
	a, ok1 := s.PeekAt(0)
	b, ok2 := s.PeekAt(1)
	c, ok3 := s.PeekAt(2)
	return ok1 && ok2 && ok3 && a == '"' && b == '"' && c == '"'
}

// PeekIsTripleSingleQuote reports whether the next three runes are `'''`.
func (s *Scanner) PeekIsTripleSingleQuote() bool {
	a, ok1 := s.PeekAt(0)
	b, ok2 := s.PeekAt(1)
	c, ok3 := s.PeekAt(2)
	return ok1 && ok2 && ok3 && a == '\'' && b == '\'' && c == '\''
}

// TryConsumeLiteral consumes and returns true if the upcoming runes spell
// lit exactly; otherwise the scanner position is left unchanged.
func (s *Scanner) TryConsumeLiteral(lit string) bool {
	save := s.Pos()
	for _, want := range lit {
		got, ok := s.Peek()
		if !ok || got != want {
			s.Rewind(save)
			return false
		}
		s.Get()
	}
	return true
}

// ConsumeDigits consumes exactly n ASCII digits, returning false (and
// leaving the position where it stopped) if fewer than n digits are
// available.
func (s *Scanner) ConsumeDigits(n int) bool {
	for i := 0; i < n; i++ {
		c, ok := s.Peek()
		if !ok || !isDigit(c) {
			return false
		}
		s.Get()
	}
	return true
}

// IsDigitRune reports whether c is an ASCII digit; exported for packages
// outside tokenizer that need the same classification the scanner uses
// internally (e.g. the parser's number/index lexing).
func IsDigitRune(c rune) bool { return isDigit(c) }
