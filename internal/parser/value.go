package parser

import (
	"github.com/malloydata/motly-go/internal/ast"
)

// parseValue dispatches on the lookahead character to read one Value (the
// right-hand side of `=`/`:=`, or an array element's own value).
func (p *Parser) parseValue() (*ast.Value, bool) {
	c, ok := p.s.Peek()
	if !ok {
		p.fail("expected a value", p.s.Pos())
		return nil, false
	}

	switch {
	case c == '"':
		s, ok2 := p.parseDoubleQuoted()
		if !ok2 {
			return nil, false
		}
		return &ast.Value{Kind: ast.ValString, Str: s}, true
	case c == '\'':
		s, ok2 := p.parseSingleQuoted()
		if !ok2 {
			return nil, false
		}
		return &ast.Value{Kind: ast.ValString, Str: s}, true
	case c == '`':
		s, ok2 := p.parseBacktickIdentifier()
		if !ok2 {
			return nil, false
		}
		return &ast.Value{Kind: ast.ValString, Str: s}, true
	case c == '<':
		if p.s.TryConsumeLiteral("<<<") {
			s, ok2 := p.parseHeredocBody()
			if !ok2 {
				return nil, false
			}
			return &ast.Value{Kind: ast.ValString, Str: s}, true
		}
		p.fail("unexpected character '<'", p.s.Pos())
		return nil, false
	case c == '@':
		v, ok2 := p.parseAtConstant()
		if !ok2 {
			return nil, false
		}
		return &v, true
	case c == '$':
		ref, ok2 := p.parseReference()
		if !ok2 {
			return nil, false
		}
		return &ast.Value{Kind: ast.ValReference, Ref: ref}, true
	case c == '[':
		return p.parseArray()
	case c == '-' || isDigitChar(c):
		v, ok2 := p.parseNumberOrBareString()
		if !ok2 {
			return nil, false
		}
		return &v, true
	default:
		name, ok2 := p.parseIdentifier()
		if !ok2 {
			p.fail("expected a value", p.s.Pos())
			return nil, false
		}
		return &ast.Value{Kind: ast.ValString, Str: name}, true
	}
}

func isDigitChar(c rune) bool { return c >= '0' && c <= '9' }

// parseHeredocBody is parseHeredoc minus the opening `<<<`, which the caller
// has already consumed via TryConsumeLiteral to disambiguate from other `<`
// uses.
func (p *Parser) parseHeredocBody() (string, bool) {
	begin := p.s.Pos()
	p.s.SkipWhile(func(r rune) bool { return r == ' ' || r == '\t' })
	c, ok := p.s.Get()
	if !ok || c != '\n' {
		p.fail("expected newline after '<<<'", begin)
		return "", false
	}
	return p.readHeredocLines(begin)
}

// parseArray reads `[ elem, elem, ... ]`; commas separate elements and a
// trailing comma is permitted (spec §4.1). Each element is a value, a
// `{properties}` block, or both (value immediately followed by a block).
func (p *Parser) parseArray() (*ast.Value, bool) {
	begin := p.s.Pos()
	p.s.Get() // [
	var elems []ast.ArrayElement
	for {
		p.s.SkipSpaceAndComments()
		c, ok := p.s.Peek()
		if !ok {
			p.failSpan("unterminated array, expected ']'", begin, p.s.Pos())
			return nil, false
		}
		if c == ']' {
			p.s.Get()
			return &ast.Value{Kind: ast.ValArray, Elements: elems}, true
		}

		var el ast.ArrayElement
		if c == '{' {
			block, ok2 := p.parseBraceBlock()
			if !ok2 {
				return nil, false
			}
			el.Block = block
			el.BlockPresent = true
		} else {
			v, ok2 := p.parseValue()
			if !ok2 {
				return nil, false
			}
			el.Value = v
			p.s.SkipSpaceAndComments()
			if c2, ok3 := p.s.Peek(); ok3 && c2 == '{' {
				block, ok4 := p.parseBraceBlock()
				if !ok4 {
					return nil, false
				}
				el.Block = block
				el.BlockPresent = true
			}
		}
		elems = append(elems, el)

		p.s.SkipSpaceAndComments()
		c3, ok5 := p.s.Peek()
		if !ok5 {
			p.failSpan("unterminated array, expected ']'", begin, p.s.Pos())
			return nil, false
		}
		if c3 == ',' {
			p.s.Get()
			continue
		}
		if c3 == ']' {
			p.s.Get()
			return &ast.Value{Kind: ast.ValArray, Elements: elems}, true
		}
		p.fail("expected ',' or ']' in array", p.s.Pos())
		return nil, false
	}
}
