// Package parser builds an internal/ast tree from source text, by way of
// internal/lexer/internal/token (spec.md §4.2, Component F). It is a
// recursive-descent parser with speculative backtracking at the handful of
// spots the grammar is genuinely ambiguous (arrow-function parameter lists,
// the `async` prefix), following boa_parser's cursor-based approach
// (_examples/original_source/boa_parser/src/parser/...): the lexer's cursor
// is a plain value struct, so a checkpoint is just a saved copy.
package parser

import (
	"fmt"

	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/lexer"
	"github.com/jsvm-project/jsvm/internal/token"
)

// Error reports a syntax error with the source position it occurred at.
type Error struct {
	Msg string
	Pos token.Position
}

func (e *Error) Error() string { return fmt.Sprintf("SyntaxError: %s at %s", e.Msg, e.Pos) }

// parseContext carries the contextual flags the grammar threads through
// recursive descent: whether `in` binds as a relational operator (suspended
// inside a for-statement's head), whether `yield`/`await` are keywords (inside
// generator/async functions), whether we're inside a loop/switch (break) or
// loop (continue) for early-error checks, and whether we're in strict mode.
type parseContext struct {
	noIn       bool
	inFunction bool
	inGenerator bool
	inAsync    bool
	inLoop     bool
	inSwitch   bool
	strict     bool
	module     bool
}

// Parser turns token.Tokens into an *ast.Program.
type Parser struct {
	lex *lexer.Lexer

	tok     token.Token // current token
	peeked  *token.Token
	prevEnd token.Position

	ctx parseContext

	labels map[string]bool
}

// Parse parses src as a non-module script, the entry point Context.eval
// drives (spec.md §6.1's E→F data flow).
func Parse(src []byte) (*ast.Program, error) {
	return ParseProgram(src, false)
}

// ParseProgram parses a complete script or module body (spec.md §4.2).
// module selects whether import/export declarations are permitted and
// whether the top level is implicitly strict.
func ParseProgram(src []byte, module bool) (*ast.Program, error) {
	p := &Parser{lex: lexer.New(src), labels: map[string]bool{}}
	p.ctx.module = module
	p.ctx.strict = module
	p.lex.SetStrict(p.ctx.strict)
	if err := p.next(); err != nil {
		return nil, err
	}

	start := p.tok.Span.Start
	body, strict, err := p.parseStatementList(func() bool { return p.tok.Kind == token.EOF }, true)
	if err != nil {
		return nil, err
	}
	end := p.prevEnd
	return &ast.Program{
		Node:   ast.Node{Span: token.Span{Start: start, End: end}},
		Body:   body,
		Strict: strict || module,
		Module: module,
	}, nil
}

// next advances the current token, consuming a saved peek if present.
func (p *Parser) next() error {
	p.prevEnd = p.tok.Span.End
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	tok, err := p.lex.Next()
	if err != nil {
		return wrapLexErr(err)
	}
	p.tok = tok
	return nil
}

func wrapLexErr(err error) error {
	if le, ok := err.(*lexer.Error); ok {
		return &Error{Msg: le.Msg, Pos: le.Pos}
	}
	return err
}

func (p *Parser) errf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Pos: p.tok.Span.Start}
}

// checkpoint snapshots parser+lexer state for speculative parses.
type checkpoint struct {
	lex    lexer.Checkpoint
	tok    token.Token
	peeked *token.Token
	prevEnd token.Position
}

func (p *Parser) save() checkpoint {
	return checkpoint{lex: p.lex.Save(), tok: p.tok, peeked: p.peeked, prevEnd: p.prevEnd}
}

func (p *Parser) restore(cp checkpoint) {
	p.lex.Restore(cp.lex)
	p.tok = cp.tok
	p.peeked = cp.peeked
	p.prevEnd = cp.prevEnd
}

// --- token predicates ---

func (p *Parser) isPunct(lit string) bool {
	return p.tok.Kind == token.Punctuator && p.tok.Literal == lit
}

func (p *Parser) isKeyword(lit string) bool {
	return p.tok.Kind == token.Keyword && p.tok.Literal == lit
}

// isContextualKeyword matches identifier-class tokens used as contextual
// keywords (async, of, get, set, let, static, yield, await) since the lexer
// only promotes the fixed reserved words to token.Keyword.
func (p *Parser) isContextualKeyword(lit string) bool {
	return (p.tok.Kind == token.Identifier || p.tok.Kind == token.Keyword) && p.tok.Literal == lit
}

// expectPunct consumes a required punctuator or returns a syntax error.
func (p *Parser) expectPunct(lit string) error {
	if !p.isPunct(lit) {
		return p.errf("expected %q, got %q", lit, p.tok.Literal)
	}
	return p.next()
}

func (p *Parser) expectKeyword(lit string) error {
	if !p.isContextualKeyword(lit) {
		return p.errf("expected keyword %q, got %q", lit, p.tok.Literal)
	}
	return p.next()
}

// expectIdentifierName accepts any identifier-class token (including
// keywords used as property names, e.g. `obj.if`) and returns its text.
func (p *Parser) expectIdentifierName() (string, error) {
	if p.tok.Kind != token.Identifier && p.tok.Kind != token.Keyword {
		return "", p.errf("expected identifier, got %q", p.tok.Literal)
	}
	name := p.tok.Literal
	return name, p.next()
}

// expectBindingIdentifier parses an identifier in binding position, applying
// strict-mode and generator/async contextual restrictions (ECMA-262 early
// errors: strict mode forbids eval/arguments and the strict-reserved words;
// generator bodies forbid `yield` as a binding name; async bodies forbid
// `await`).
// softKeywords lists words the lexer classifies as token.Keyword (it has no
// notion of "contextual") that ECMA-262 actually lets stand as ordinary
// binding identifiers outside the specific constructs that give them
// meaning.
var softKeywords = map[string]bool{
	"yield": true, "await": true, "let": true, "static": true,
	"async": true, "of": true, "get": true, "set": true,
}

func (p *Parser) expectBindingIdentifier() (*ast.Identifier, error) {
	if p.tok.Kind != token.Identifier && !(p.tok.Kind == token.Keyword && softKeywords[p.tok.Literal]) {
		return nil, p.errf("expected identifier, got %q", p.tok.Literal)
	}
	name := p.tok.Literal
	if p.ctx.strict && (name == "eval" || name == "arguments" || token.IsStrictReservedWord(name)) {
		return nil, p.errf("%q is not a valid binding identifier in strict mode", name)
	}
	if p.ctx.inGenerator && name == "yield" {
		return nil, p.errf("'yield' is not a valid binding identifier in a generator")
	}
	if p.ctx.inAsync && name == "await" {
		return nil, p.errf("'await' is not a valid binding identifier in an async function")
	}
	start := p.tok.Span.Start
	end := p.tok.Span.End
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ast.Identifier{Node: ast.Node{Span: token.Span{Start: start, End: end}}, Name: name}, nil
}

// consumeSemicolon implements Automatic Semicolon Insertion (ECMA-262 §12.9):
// an explicit `;` is always consumed; otherwise a `}`, EOF, or a token
// preceded by a line terminator ends the statement implicitly.
func (p *Parser) consumeSemicolon() error {
	if p.isPunct(";") {
		return p.next()
	}
	if p.isPunct("}") || p.tok.Kind == token.EOF || p.tok.PrecededByLineTerminator {
		return nil
	}
	return p.errf("expected ';', got %q", p.tok.Literal)
}

func spanFrom(start token.Position, end token.Position) ast.Node {
	return ast.Node{Span: token.Span{Start: start, End: end}}
}
