// Package parser turns MOTLY source text into a statement list (spec §4.1).
// It tokenizes on the fly — there is no separate token-stream pass — using
// internal/tokenizer's rune scanner directly, the way the teacher's
// tokenizer and parser packages cooperate but collapsed into one
// recursive-descent pass, since MOTLY's statement grammar does not lend
// itself to the teacher's table-driven node-stream state machine.
package parser

import (
	"github.com/malloydata/motly-go/internal/ast"
	"github.com/malloydata/motly-go/internal/tokenizer"
	"github.com/malloydata/motly-go/motlyerr"
)

// Parser holds the scanner and the first fatal error encountered, if any.
type Parser struct {
	s   *tokenizer.Scanner
	err *motlyerr.SyntaxError
}

// Parse consumes all of src and returns the statement list, or the first
// syntax error. Per spec §4.1.3, every parse error is
// tag-parse-syntax-error; the parser stops at the first one.
func Parse(src string) ([]ast.Statement, *motlyerr.SyntaxError) {
	p := &Parser{s: tokenizer.New(src)}
	stmts := p.parseStatements(topLevel)
	if p.err != nil {
		return nil, p.err
	}
	return stmts, nil
}

type blockKind uint8

const (
	topLevel blockKind = iota
	braceBlock
)

// fail records the first syntax error; later calls are no-ops, matching
// "first error aborts" (spec §4.1.3, §7).
func (p *Parser) fail(message string, at motlyerr.Position) {
	if p.err != nil {
		return
	}
	p.err = motlyerr.NewSyntaxErrorAt(message, at)
}

func (p *Parser) failSpan(message string, begin, end motlyerr.Position) {
	if p.err != nil {
		return
	}
	p.err = motlyerr.NewSyntaxErrorSpan(message, begin, end)
}

func (p *Parser) failed() bool { return p.err != nil }

// parseStatements reads statements separated by whitespace/comments/commas
// until end of input (topLevel) or a closing `}` (braceBlock, which is
// consumed by the caller, not here).
func (p *Parser) parseStatements(kind blockKind) []ast.Statement {
	var stmts []ast.Statement
	for {
		p.s.SkipSeparators()
		if p.failed() {
			return stmts
		}
		c, ok := p.s.Peek()
		if !ok {
			if kind == braceBlock {
				p.fail("unterminated block, expected '}'", p.s.Pos())
			}
			return stmts
		}
		if kind == braceBlock && c == '}' {
			return stmts
		}
		stmt, ok2 := p.parseStatement()
		if !ok2 {
			return stmts
		}
		stmts = append(stmts, stmt)
	}
}

// parseStatement parses one statement (spec §4.1.2).
func (p *Parser) parseStatement() (ast.Statement, bool) {
	start := p.s.Pos()
	if c, ok := p.s.Peek(); ok && c == '-' {
		return p.parseDashStatement(start)
	}

	path, ok := p.parsePath()
	if !ok {
		p.fail("expected a statement", start)
		return ast.Statement{}, false
	}

	p.s.SkipSpaceAndComments()
	c, ok2 := p.s.Peek()
	if !ok2 {
		return ast.Statement{Kind: ast.Define, Path: path}, true
	}

	switch {
	case c == ':':
		if next, ok3 := p.s.PeekAt(1); ok3 && next == '=' {
			p.s.Get()
			p.s.Get()
			return p.parseAssignBoth(path)
		}
		p.s.Get()
		return p.parseReplaceProperties(path)
	case c == '=':
		p.s.Get()
		return p.parseSetEq(path)
	case c == '{':
		return p.parseUpdateProperties(path)
	default:
		return ast.Statement{Kind: ast.Define, Path: path}, true
	}
}

// parseDashStatement handles the two statement forms starting with `-`:
// CLEAR-ALL (`-...`) and DEFINE-DELETED (`-name[.rest]`).
func (p *Parser) parseDashStatement(start motlyerr.Position) (ast.Statement, bool) {
	p.s.Get() // -
	if p.s.TryConsumeLiteral("...") {
		return ast.Statement{Kind: ast.ClearAll}, true
	}
	path, ok := p.parsePath()
	if !ok {
		p.fail("expected a path after '-'", start)
		return ast.Statement{}, false
	}
	return ast.Statement{Kind: ast.DefineDeleted, Path: path}, true
}

// parsePath reads a dotted list of identifiers.
func (p *Parser) parsePath() ([]string, bool) {
	first, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	path := []string{first}
	for {
		c, ok2 := p.s.Peek()
		if !ok2 || c != '.' {
			return path, true
		}
		// Only consume the '.' as a path separator if a valid identifier
		// char follows; otherwise leave it (it may belong to the caller,
		// e.g. this never actually happens in valid MOTLY but keeps the
		// parser from eating a trailing dot it can't use).
		next, ok3 := p.s.PeekAt(1)
		if !ok3 || !(tokenizer.IsBareChar(next) || next == '`') {
			return path, true
		}
		p.s.Get()
		seg, ok4 := p.parseIdentifier()
		if !ok4 {
			p.fail("expected identifier after '.'", p.s.Pos())
			return nil, false
		}
		path = append(path, seg)
	}
}

func (p *Parser) parseSetEq(path []string) (ast.Statement, bool) {
	p.s.SkipSpaceAndComments()
	if c, ok := p.s.Peek(); ok && c == '{' {
		p.fail("'=' requires a value before a block; use ':' for a properties-only replacement", p.s.Pos())
		return ast.Statement{}, false
	}
	val, ok := p.parseValue()
	if !ok {
		return ast.Statement{}, false
	}
	stmt := ast.Statement{Kind: ast.SetEq, Path: path, Value: val}
	p.s.SkipSpaceAndComments()
	if c, ok2 := p.s.Peek(); ok2 && c == '{' {
		block, ok3 := p.parseBraceBlock()
		if !ok3 {
			return ast.Statement{}, false
		}
		stmt.Block = block
		stmt.BlockPresent = true
	}
	return stmt, true
}

func (p *Parser) parseAssignBoth(path []string) (ast.Statement, bool) {
	p.s.SkipSpaceAndComments()
	val, ok := p.parseValue()
	if !ok {
		p.fail("expected a value after ':='", p.s.Pos())
		return ast.Statement{}, false
	}
	stmt := ast.Statement{Kind: ast.AssignBoth, Path: path, Value: val}
	p.s.SkipSpaceAndComments()
	if c, ok2 := p.s.Peek(); ok2 && c == '{' {
		block, ok3 := p.parseBraceBlock()
		if !ok3 {
			return ast.Statement{}, false
		}
		stmt.Block = block
		stmt.BlockPresent = true
	}
	return stmt, true
}

func (p *Parser) parseReplaceProperties(path []string) (ast.Statement, bool) {
	p.s.SkipSpaceAndComments()
	if c, ok := p.s.Peek(); !ok || c != '{' {
		p.fail("expected '{' after ':'", p.s.Pos())
		return ast.Statement{}, false
	}
	block, ok := p.parseBraceBlock()
	if !ok {
		return ast.Statement{}, false
	}
	return ast.Statement{Kind: ast.ReplaceProperties, Path: path, Block: block, BlockPresent: true}, true
}

func (p *Parser) parseUpdateProperties(path []string) (ast.Statement, bool) {
	block, ok := p.parseBraceBlock()
	if !ok {
		return ast.Statement{}, false
	}
	return ast.Statement{Kind: ast.UpdateProperties, Path: path, Block: block, BlockPresent: true}, true
}

// parseBraceBlock consumes a `{ statements* }`; the caller has already
// checked that the next rune is `{`.
func (p *Parser) parseBraceBlock() ([]ast.Statement, bool) {
	begin := p.s.Pos()
	p.s.Get() // {
	stmts := p.parseStatements(braceBlock)
	if p.failed() {
		return nil, false
	}
	if !p.s.Eat('}') {
		p.failSpan("unterminated block, expected '}'", begin, p.s.Pos())
		return nil, false
	}
	return stmts, true
}
