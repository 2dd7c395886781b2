// Package lexer turns a UTF-8 source byte stream into a lazy sequence of
// internal/token.Token values, per spec.md §4.1.
//
// The lexer never recovers from a malformed token: Next returns a *Error and
// the caller should abandon the parse, mirroring boa's syntax/lexer
// cursor.rs behavior.
package lexer

import (
	"fmt"
	"strings"

	"github.com/jsvm-project/jsvm/internal/token"
)

// Error is a lexical error carrying the source position it occurred at.
type Error struct {
	Msg string
	Pos token.Position
}

func (e *Error) Error() string { return fmt.Sprintf("%s at %s", e.Msg, e.Pos) }

// Lexer produces tokens on demand. RegExp/division ambiguity is resolved by
// the parser calling NextRegExp at points where a regex literal is
// grammatically legal (spec.md §4.1 "RegExp vs division").
type Lexer struct {
	cur    *cursor
	strict bool
}

// New returns a Lexer over src in non-strict mode. SetStrict records the
// parser's strict-mode state (spec.md §4.2's "use strict" directive may
// enable it retroactively); no scanning rule in this package reads it.
func New(src []byte) *Lexer {
	return &Lexer{cur: newCursor(src)}
}

func (l *Lexer) SetStrict(strict bool) { l.strict = strict }

// Checkpoint is a cheap snapshot of lexer state. cursor has no pointers into
// mutable shared state beyond the immutable src slice, so copying it by
// value is a true, cheap save point; the parser uses this to backtrack
// across speculative parses (arrow-function parameter lists, `async`
// prefixes) the way boa's cursor.rs exposes position save/reset.
type Checkpoint struct {
	cur    cursor
	strict bool
}

// Save captures the current lexer position.
func (l *Lexer) Save() Checkpoint {
	return Checkpoint{cur: *l.cur, strict: l.strict}
}

// Restore rewinds the lexer to a previously captured Checkpoint.
func (l *Lexer) Restore(cp Checkpoint) {
	cur := cp.cur
	l.cur = &cur
	l.strict = cp.strict
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.cur.line, Column: l.cur.column, Offset: l.cur.offset()}
}

// Next scans and returns the next token, skipping whitespace and comments
// but recording whether a line terminator was crossed (drives ASI).
func (l *Lexer) Next() (token.Token, error) {
	sawLineTerminator := false
	for {
		r := l.cur.peek()
		switch {
		case r == cursorEOF:
			start := l.position()
			return token.Token{Kind: token.EOF, Span: token.Span{Start: start, End: start}, PrecededByLineTerminator: sawLineTerminator}, nil
		case isLineTerminator(r):
			l.cur.next()
			sawLineTerminator = true
			continue
		case isWhitespace(r):
			l.cur.next()
			continue
		case r == '/' && l.cur.peekAt(1) == '/':
			l.skipLineComment()
			continue
		case r == '/' && l.cur.peekAt(1) == '*':
			if l.skipBlockComment() {
				sawLineTerminator = true
			}
			continue
		}
		break
	}

	start := l.position()
	r := l.cur.peek()

	var tok token.Token
	var err error
	switch {
	case isIdentifierStart(r):
		tok, err = l.scanIdentifier(start)
	case r == '#':
		tok, err = l.scanPrivateIdentifier(start)
	case isDigit(r), r == '.' && isDigit(l.cur.peekAt(1)):
		tok, err = l.scanNumber(start)
	case r == '"' || r == '\'':
		tok, err = l.scanString(start, r)
	case r == '`':
		tok, err = l.scanTemplate(start)
	default:
		tok, err = l.scanPunctuator(start)
	}
	if err != nil {
		return token.Token{}, err
	}
	tok.PrecededByLineTerminator = sawLineTerminator
	return tok, nil
}

// NextRegExp re-scans the current position as a RegExp literal. The parser
// calls this instead of Next only where a regex is grammatically legal
// (spec.md §4.1).
func (l *Lexer) NextRegExp(slashPos token.Position) (token.Token, error) {
	// Cursor is positioned just after the opening '/', which Next()
	// already tokenized as a Punctuator; re-scan body and flags.
	var sb strings.Builder
	sb.WriteByte('/')
	inClass := false
	for {
		r := l.cur.peek()
		if r == cursorEOF || isLineTerminator(r) {
			return token.Token{}, &Error{Msg: "unterminated regular expression literal", Pos: l.position()}
		}
		if r == '\\' {
			sb.WriteRune(l.cur.next())
			sb.WriteRune(l.cur.next())
			continue
		}
		if r == '[' {
			inClass = true
		} else if r == ']' {
			inClass = false
		} else if r == '/' && !inClass {
			sb.WriteRune(l.cur.next())
			break
		}
		sb.WriteRune(l.cur.next())
	}
	for isIdentifierPart(l.cur.peek()) {
		sb.WriteRune(l.cur.next())
	}
	end := l.position()
	return token.Token{Kind: token.RegExpLiteral, Literal: sb.String(), Span: token.Span{Start: slashPos, End: end}}, nil
}

func (l *Lexer) skipLineComment() {
	l.cur.next()
	l.cur.next()
	for {
		r := l.cur.peek()
		if r == cursorEOF || isLineTerminator(r) {
			return
		}
		l.cur.next()
	}
}

// skipBlockComment consumes a /* ... */ comment, returning whether it
// contained a line terminator (relevant to ASI).
func (l *Lexer) skipBlockComment() bool {
	l.cur.next()
	l.cur.next()
	hadNewline := false
	for {
		r := l.cur.peek()
		if r == cursorEOF {
			return hadNewline
		}
		if isLineTerminator(r) {
			hadNewline = true
		}
		if r == '*' && l.cur.peekAt(1) == '/' {
			l.cur.next()
			l.cur.next()
			return hadNewline
		}
		l.cur.next()
	}
}

func (l *Lexer) scanIdentifier(start token.Position) (token.Token, error) {
	var sb strings.Builder
	for isIdentifierPart(l.cur.peek()) {
		sb.WriteRune(l.cur.next())
	}
	text := sb.String()
	end := l.position()
	kind := token.Identifier
	if token.IsKeyword(text) {
		kind = token.Keyword
	}
	if text == "true" || text == "false" {
		kind = token.BooleanLiteral
	}
	if text == "null" {
		kind = token.NullLiteral
	}
	return token.Token{Kind: kind, Literal: text, Span: token.Span{Start: start, End: end}}, nil
}

func (l *Lexer) scanPrivateIdentifier(start token.Position) (token.Token, error) {
	l.cur.next() // '#'
	if !isIdentifierStart(l.cur.peek()) {
		return token.Token{}, &Error{Msg: "expected identifier after '#'", Pos: l.position()}
	}
	var sb strings.Builder
	sb.WriteByte('#')
	for isIdentifierPart(l.cur.peek()) {
		sb.WriteRune(l.cur.next())
	}
	end := l.position()
	return token.Token{Kind: token.PrivateIdentifier, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
}

// scanNumber distinguishes exact int32, float64, and BigInt (trailing 'n')
// literals, and radix-prefixed integers, per spec.md §4.1.
func (l *Lexer) scanNumber(start token.Position) (token.Token, error) {
	var sb strings.Builder
	radix := 10
	if l.cur.peek() == '0' && (l.cur.peekAt(1) == 'x' || l.cur.peekAt(1) == 'X') {
		sb.WriteRune(l.cur.next())
		sb.WriteRune(l.cur.next())
		radix = 16
		for isHexDigit(l.cur.peek()) || l.cur.peek() == '_' {
			sb.WriteRune(l.cur.next())
		}
	} else if l.cur.peek() == '0' && (l.cur.peekAt(1) == 'o' || l.cur.peekAt(1) == 'O') {
		sb.WriteRune(l.cur.next())
		sb.WriteRune(l.cur.next())
		radix = 8
		for isOctalDigit(l.cur.peek()) || l.cur.peek() == '_' {
			sb.WriteRune(l.cur.next())
		}
	} else if l.cur.peek() == '0' && (l.cur.peekAt(1) == 'b' || l.cur.peekAt(1) == 'B') {
		sb.WriteRune(l.cur.next())
		sb.WriteRune(l.cur.next())
		radix = 2
		for isBinaryDigit(l.cur.peek()) || l.cur.peek() == '_' {
			sb.WriteRune(l.cur.next())
		}
	} else {
		for isDigit(l.cur.peek()) || l.cur.peek() == '_' {
			sb.WriteRune(l.cur.next())
		}
		isFloat := false
		if l.cur.peek() == '.' {
			isFloat = true
			sb.WriteRune(l.cur.next())
			for isDigit(l.cur.peek()) || l.cur.peek() == '_' {
				sb.WriteRune(l.cur.next())
			}
		}
		if l.cur.peek() == 'e' || l.cur.peek() == 'E' {
			isFloat = true
			sb.WriteRune(l.cur.next())
			if l.cur.peek() == '+' || l.cur.peek() == '-' {
				sb.WriteRune(l.cur.next())
			}
			for isDigit(l.cur.peek()) {
				sb.WriteRune(l.cur.next())
			}
		}
		if l.cur.peek() == 'n' {
			l.cur.next()
			end := l.position()
			return token.Token{Kind: token.NumericLiteral, NumberKind: token.NumberBigInt, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
		}
		end := l.position()
		nk := token.NumberInteger
		if isFloat {
			nk = token.NumberRational
		}
		return token.Token{Kind: token.NumericLiteral, NumberKind: nk, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
	}
	_ = radix
	if l.cur.peek() == 'n' {
		l.cur.next()
		end := l.position()
		return token.Token{Kind: token.NumericLiteral, NumberKind: token.NumberBigInt, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
	}
	end := l.position()
	return token.Token{Kind: token.NumericLiteral, NumberKind: token.NumberInteger, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
}

func (l *Lexer) scanString(start token.Position, quote rune) (token.Token, error) {
	l.cur.next() // opening quote
	var sb strings.Builder
	for {
		r := l.cur.peek()
		if r == cursorEOF || isLineTerminator(r) {
			return token.Token{}, &Error{Msg: "unterminated string literal", Pos: l.position()}
		}
		if r == quote {
			l.cur.next()
			break
		}
		if r == '\\' {
			l.cur.next()
			sb.WriteRune(l.decodeEscape())
			continue
		}
		sb.WriteRune(l.cur.next())
	}
	end := l.position()
	return token.Token{Kind: token.StringLiteral, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
}

// decodeEscape consumes the character(s) after a backslash and returns the
// decoded rune. Unsupported escapes degrade to the escaped character itself
// rather than failing the whole parse, matching how most tokenizers treat
// unrecognized single-character escapes as identity per ECMA-262 Annex B.
func (l *Lexer) decodeEscape() rune {
	r := l.cur.next()
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case '0':
		return 0
	case 'x':
		return l.decodeHexEscape(2)
	case 'u':
		if l.cur.peek() == '{' {
			l.cur.next()
			var v rune
			for l.cur.peek() != '}' && l.cur.peek() != cursorEOF {
				v = v*16 + hexVal(l.cur.next())
			}
			l.cur.next()
			return v
		}
		return l.decodeHexEscape(4)
	default:
		return r
	}
}

func (l *Lexer) decodeHexEscape(n int) rune {
	var v rune
	for i := 0; i < n; i++ {
		v = v*16 + hexVal(l.cur.next())
	}
	return v
}

func hexVal(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10
	}
	return 0
}

// scanTemplate scans a template literal chunk. Because template literals
// interleave source text and embedded expressions, the lexer only scans up
// to the first unescaped `${` or the closing backtick; the parser resumes
// lexing at `}` by calling ContinueTemplate.
func (l *Lexer) scanTemplate(start token.Position) (token.Token, error) {
	l.cur.next() // opening backtick
	return l.scanTemplatePart(start, true)
}

// ContinueTemplate resumes scanning a template literal after the parser has
// consumed an embedded `${ expr }`; the cursor must sit just past the `}`.
func (l *Lexer) ContinueTemplate() (token.Token, error) {
	start := l.position()
	return l.scanTemplatePart(start, false)
}

func (l *Lexer) scanTemplatePart(start token.Position, head bool) (token.Token, error) {
	var sb strings.Builder
	for {
		r := l.cur.peek()
		if r == cursorEOF {
			return token.Token{}, &Error{Msg: "unterminated template literal", Pos: l.position()}
		}
		if r == '`' {
			l.cur.next()
			end := l.position()
			kind := token.TemplateTail
			if head {
				kind = token.TemplateNoSub
			}
			return token.Token{Kind: kind, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
		}
		if r == '$' && l.cur.peekAt(1) == '{' {
			l.cur.next()
			l.cur.next()
			end := l.position()
			kind := token.TemplateMiddle
			if head {
				kind = token.TemplateHead
			}
			return token.Token{Kind: kind, Literal: sb.String(), Span: token.Span{Start: start, End: end}}, nil
		}
		if r == '\\' {
			l.cur.next()
			sb.WriteRune(l.decodeEscape())
			continue
		}
		sb.WriteRune(l.cur.next())
	}
}

var punctuators = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--", "**",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ".", ";", ",", "<", ">", "+", "-", "*", "%",
	"&", "|", "^", "!", "~", "?", ":", "=", "/", "#",
}

func (l *Lexer) scanPunctuator(start token.Position) (token.Token, error) {
	remaining := l.cur.src[l.cur.pos:]
	for _, p := range punctuators {
		if len(remaining) >= len(p) && string(remaining[:len(p)]) == p {
			for range p {
				l.cur.next()
			}
			end := l.position()
			return token.Token{Kind: token.Punctuator, Literal: p, Span: token.Span{Start: start, End: end}}, nil
		}
	}
	bad := l.cur.next()
	return token.Token{}, &Error{Msg: fmt.Sprintf("unexpected character %q", bad), Pos: start}
}
