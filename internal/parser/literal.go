package parser

import (
	"strconv"
	"strings"

	"github.com/malloydata/motly-go/internal/ast"
	"github.com/malloydata/motly-go/internal/tokenizer"
	"github.com/malloydata/motly-go/motlyerr"
)

// parseIdentifier reads a bare identifier or a backtick-quoted identifier
// (spec §4.1.1), returning the decoded name.
func (p *Parser) parseIdentifier() (string, bool) {
	c, ok := p.s.Peek()
	if !ok {
		return "", false
	}
	if c == '`' {
		return p.parseBacktickIdentifier()
	}
	if !tokenizer.IsBareChar(c) {
		return "", false
	}
	name := p.s.ReadWhile(tokenizer.IsBareChar)
	return name, true
}

func (p *Parser) parseBacktickIdentifier() (string, bool) {
	begin := p.s.Pos()
	p.s.Get() // opening `
	var b strings.Builder
	for {
		c, ok := p.s.Peek()
		if !ok {
			p.fail("unterminated backtick identifier", begin)
			return "", false
		}
		if c == '`' {
			p.s.Get()
			return b.String(), true
		}
		if c == '\\' {
			p.s.Get()
			r, ok2 := p.parseEscapeChar()
			if !ok2 {
				return "", false
			}
			b.WriteRune(r)
			continue
		}
		if c == '\n' || c == '\r' {
			p.fail("newline in backtick identifier", begin)
			return "", false
		}
		p.s.Get()
		b.WriteRune(c)
	}
}

// parseEscapeChar consumes the character(s) after a backslash inside a
// double-quoted/backtick/triple-quoted string and returns the decoded rune.
// \uXXXX surrogate pairing follows spec §4.1.1 / §9: a high surrogate must
// be immediately followed by a \uXXXX low surrogate to combine into one code
// point; any unpaired surrogate half becomes U+FFFD.
func (p *Parser) parseEscapeChar() (rune, bool) {
	c, ok := p.s.Get()
	if !ok {
		p.fail("unterminated escape sequence", p.s.Pos())
		return 0, false
	}
	switch c {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case '/':
		return '/', true
	case '\'':
		return '\'', true
	case '`':
		return '`', true
	case 'u':
		return p.parseUnicodeEscape()
	default:
		p.fail("invalid escape sequence", p.s.Pos())
		return 0, false
	}
}

func (p *Parser) parseUnicodeEscape() (rune, bool) {
	hi, ok := p.readHex4()
	if !ok {
		return 0, false
	}
	if hi >= 0xD800 && hi <= 0xDBFF {
		// high surrogate: only combines if immediately followed by \u + low surrogate
		if c1, ok1 := p.s.Peek(); ok1 && c1 == '\\' {
			if c2, ok2 := p.s.PeekAt(1); ok2 && c2 == 'u' {
				p.s.Get() // backslash
				p.s.Get() // u
				lo, ok3 := p.readHex4()
				if ok3 && lo >= 0xDC00 && lo <= 0xDFFF {
					combined := 0x10000 + (hi-0xD800)*0x400 + (lo - 0xDC00)
					return rune(combined), true
				}
				// the consumed \uXXXX was not a valid low surrogate, so the
				// high surrogate is unpaired; whatever it decoded to is
				// simply discarded along with it.
				return 0xFFFD, true
			}
		}
		return 0xFFFD, true
	}
	if hi >= 0xDC00 && hi <= 0xDFFF {
		return 0xFFFD, true
	}
	return rune(hi), true
}

func (p *Parser) readHex4() (int, bool) {
	v := 0
	for i := 0; i < 4; i++ {
		c, ok := p.s.Get()
		if !ok || !tokenizer.IsHexDigit(c) {
			p.fail("invalid \\u escape", p.s.Pos())
			return 0, false
		}
		v = v*16 + hexVal(c)
	}
	return v, true
}

func hexVal(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// parseDoubleQuoted reads a "..." or """...""" string, honoring escapes.
// Newlines are rejected in the single-quote-count form, allowed in the
// triple form.
func (p *Parser) parseDoubleQuoted() (string, bool) {
	begin := p.s.Pos()
	triple := false
	p.s.Get() // first "
	if c, ok := p.s.Peek(); ok && c == '"' {
		if c2, ok2 := p.s.PeekAt(1); ok2 && c2 == '"' {
			p.s.Get()
			p.s.Get()
			triple = true
		}
	}
	var b strings.Builder
	for {
		c, ok := p.s.Peek()
		if !ok {
			p.fail("unterminated string", begin)
			return "", false
		}
		if c == '"' {
			if triple {
				if p.s.PeekIsTripleQuote() {
					p.s.Get()
					p.s.Get()
					p.s.Get()
					return b.String(), true
				}
				p.s.Get()
				b.WriteByte('"')
				continue
			}
			p.s.Get()
			return b.String(), true
		}
		if !triple && (c == '\n' || c == '\r') {
			p.fail("newline in string", begin)
			return "", false
		}
		if c == '\\' {
			p.s.Get()
			r, ok2 := p.parseEscapeChar()
			if !ok2 {
				return "", false
			}
			b.WriteRune(r)
			continue
		}
		p.s.Get()
		b.WriteRune(c)
	}
}

// parseSingleQuoted reads a raw '...' or '''...''' string. Per spec §9, this
// form is raw (no escape decoding) but a backslash "absorbs" the character
// that follows it for delimiter-matching purposes, so `\'` never closes a
// single-quoted string; the backslash and the absorbed character are both
// kept verbatim in the result.
func (p *Parser) parseSingleQuoted() (string, bool) {
	begin := p.s.Pos()
	triple := false
	p.s.Get() // first '
	if c, ok := p.s.Peek(); ok && c == '\'' {
		if c2, ok2 := p.s.PeekAt(1); ok2 && c2 == '\'' {
			p.s.Get()
			p.s.Get()
			triple = true
		}
	}
	var b strings.Builder
	for {
		c, ok := p.s.Peek()
		if !ok {
			p.fail("unterminated string", begin)
			return "", false
		}
		if c == '\\' {
			p.s.Get()
			b.WriteByte('\\')
			if c2, ok2 := p.s.Get(); ok2 {
				b.WriteRune(c2)
			} else {
				p.fail("unterminated string", begin)
				return "", false
			}
			continue
		}
		if c == '\'' {
			if triple {
				if p.s.PeekIsTripleSingleQuote() {
					p.s.Get()
					p.s.Get()
					p.s.Get()
					return b.String(), true
				}
				p.s.Get()
				b.WriteByte('\'')
				continue
			}
			p.s.Get()
			return b.String(), true
		}
		if !triple && (c == '\n' || c == '\r') {
			p.fail("newline in string", begin)
			return "", false
		}
		p.s.Get()
		b.WriteRune(c)
	}
}

// readHeredocLines reads the body of a `<<<` heredoc (the opening marker,
// trailing whitespace, and newline already consumed by the caller) up to a
// line whose trimmed content is `>>>`, then strips the leading-space count
// of the first non-blank content line from every content line
// (spec §4.1.1). begin anchors the "unterminated heredoc" error span.
func (p *Parser) readHeredocLines(begin motlyerr.Position) (string, bool) {
	var lines []string
	for {
		if p.s.AtEnd() {
			p.fail("unterminated heredoc", begin)
			return "", false
		}
		line := p.s.ReadWhile(func(r rune) bool { return r != '\n' })
		if strings.TrimSpace(line) == ">>>" {
			if _, ok := p.s.Get(); !ok {
				// end of input right after >>> with no trailing newline: fine
			}
			break
		}
		if !p.s.AtEnd() {
			p.s.Get() // consume \n
		} else {
			p.fail("unterminated heredoc", begin)
			return "", false
		}
		lines = append(lines, line)
	}

	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := 0
		for n < len(l) && l[n] == ' ' {
			n++
		}
		indent = n
		break
	}
	if indent == -1 {
		indent = 0
	}

	var b strings.Builder
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			b.WriteByte('\n')
			continue
		}
		stripped := l
		if len(stripped) >= indent {
			stripped = stripped[indent:]
		}
		b.WriteString(stripped)
		b.WriteByte('\n')
	}
	return b.String(), true
}

// parseNumberOrBareString reads a number; if the digits are immediately
// followed by a bare-string character that isn't itself a valid continuation
// of the number grammar, the whole run is reparsed as a bare string instead
// (spec §4.1.1).
func (p *Parser) parseNumberOrBareString() (ast.Value, bool) {
	start := p.s.Pos()
	p.s.PushMark()

	sawMinus := p.s.Eat('-')
	digits := false
	p.s.SkipWhile(func(r rune) bool {
		if tokenizer.IsDigitRune(r) {
			digits = true
			return true
		}
		return false
	})
	if c, ok := p.s.Peek(); ok && c == '.' {
		if next, ok2 := p.s.PeekAt(1); ok2 && tokenizer.IsDigitRune(next) {
			p.s.Get()
			p.s.SkipWhile(tokenizer.IsDigitRune)
		}
	}
	if c, ok := p.s.Peek(); ok && (c == 'e' || c == 'E') {
		save := p.s.Pos()
		p.s.Get()
		p.s.Eat('+')
		p.s.Eat('-')
		expDigits := false
		p.s.SkipWhile(func(r rune) bool {
			if tokenizer.IsDigitRune(r) {
				expDigits = true
				return true
			}
			return false
		})
		if !expDigits {
			p.s.Rewind(save)
		}
	}

	numText := p.s.CopyFromMark()

	if !sawMinus {
		if c, ok := p.s.Peek(); ok && tokenizer.IsBareChar(c) {
			// reparse as bare string: keep consuming bare chars from the start
			p.s.Rewind(start)
			name := p.s.ReadWhile(tokenizer.IsBareChar)
			return ast.Value{Kind: ast.ValString, Str: name}, true
		}
	}

	if !digits || numText == "" || numText == "-" {
		p.fail("invalid number", start)
		return ast.Value{}, false
	}

	n, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		p.fail("invalid number", start)
		return ast.Value{}, false
	}
	return ast.Value{Kind: ast.ValNumber, Num: n}, true
}

// parseAtConstant reads @true, @false, @none, @env.NAME, or a date literal.
func (p *Parser) parseAtConstant() (ast.Value, bool) {
	start := p.s.Pos()
	p.s.Get() // @
	if p.s.TryConsumeLiteral("true") {
		return ast.Value{Kind: ast.ValBoolean, Bool: true}, true
	}
	if p.s.TryConsumeLiteral("false") {
		return ast.Value{Kind: ast.ValBoolean, Bool: false}, true
	}
	if p.s.TryConsumeLiteral("none") {
		return ast.Value{Kind: ast.ValNone}, true
	}
	if p.s.TryConsumeLiteral("env.") {
		name, ok := p.parseIdentifier()
		if !ok {
			p.fail("expected environment variable name after @env.", p.s.Pos())
			return ast.Value{}, false
		}
		return ast.Value{Kind: ast.ValEnvRef, Str: name}, true
	}
	date, ok := p.parseDateLiteral()
	if !ok {
		p.fail("unrecognized @ constant", start)
		return ast.Value{}, false
	}
	return ast.Value{Kind: ast.ValDate, Str: date}, true
}

// parseDateLiteral matches YYYY-MM-DD optionally followed by THH:MM[:SS][.frac]
// and an optional timezone (Z or ±HH:MM or ±HHMM), returning the matched
// substring verbatim (spec §4.1.1: MOTLY never decomposes a date).
func (p *Parser) parseDateLiteral() (string, bool) {
	p.s.PushMark()
	ok := p.s.ConsumeDigits(4) &&
		p.s.Eat('-') &&
		p.s.ConsumeDigits(2) &&
		p.s.Eat('-') &&
		p.s.ConsumeDigits(2)
	if !ok {
		p.s.CopyFromMark()
		return "", false
	}
	if c, has := p.s.Peek(); has && c == 'T' {
		p.s.Get()
		if !(p.s.ConsumeDigits(2) && p.s.Eat(':') && p.s.ConsumeDigits(2)) {
			return p.s.CopyFromMark(), false
		}
		if c2, has2 := p.s.Peek(); has2 && c2 == ':' {
			p.s.Get()
			p.s.ConsumeDigits(2)
		}
		if c3, has3 := p.s.Peek(); has3 && c3 == '.' {
			p.s.Get()
			p.s.SkipWhile(tokenizer.IsDigitRune)
		}
		if c4, has4 := p.s.Peek(); has4 {
			if c4 == 'Z' {
				p.s.Get()
			} else if c4 == '+' || c4 == '-' {
				p.s.Get()
				p.s.ConsumeDigits(2)
				if c5, has5 := p.s.Peek(); has5 && c5 == ':' {
					p.s.Get()
				}
				p.s.ConsumeDigits(2)
			}
		}
	}
	return p.s.CopyFromMark(), true
}

// parseReference reads a `$^^name[0].sub` reference.
func (p *Parser) parseReference() (*ast.Ref, bool) {
	start := p.s.Pos()
	p.s.Get() // $
	ups := 0
	for {
		c, ok := p.s.Peek()
		if !ok || c != '^' {
			break
		}
		p.s.Get()
		ups++
	}
	ref := &ast.Ref{Ups: ups}
	first := true
	for {
		c, ok := p.s.Peek()
		if !ok {
			break
		}
		if !first {
			if c != '.' {
				break
			}
			p.s.Get()
		}
		name, ok2 := p.parseIdentifier()
		if !ok2 {
			p.fail("expected reference segment", p.s.Pos())
			return nil, false
		}
		ref.Segments = append(ref.Segments, ast.RefSegment{Name: name})
		first = false
		for {
			c2, ok3 := p.s.Peek()
			if !ok3 || c2 != '[' {
				break
			}
			p.s.Get()
			idxStart := p.s.Pos()
			digits := p.s.ReadWhile(tokenizer.IsDigitRune)
			if digits == "" {
				p.fail("expected array index", idxStart)
				return nil, false
			}
			n, err := strconv.Atoi(digits)
			if err != nil {
				p.fail("invalid array index", idxStart)
				return nil, false
			}
			if !p.s.Eat(']') {
				p.fail("expected ']'", p.s.Pos())
				return nil, false
			}
			ref.Segments = append(ref.Segments, ast.RefSegment{IsIndex: true, Index: n})
		}
	}
	if len(ref.Segments) == 0 {
		p.fail("reference path must not be empty", start)
		return nil, false
	}
	return ref, true
}
