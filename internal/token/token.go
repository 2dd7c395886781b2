// Package token defines the lexical token kinds produced by internal/lexer
// and consumed by internal/parser.
package token

import "fmt"

// Position is a 1-indexed line/column plus 0-indexed byte offset into the
// source. Column counts Unicode scalar values, not bytes or display width.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Span is a half-open [Start, End) source range.
type Span struct {
	Start Position
	End   Position
}

// Kind identifies the lexical category of a Token.
type Kind uint8

const (
	EOF Kind = iota
	Identifier
	PrivateIdentifier
	Keyword
	Punctuator
	NumericLiteral
	StringLiteral
	TemplateNoSub
	TemplateHead
	TemplateMiddle
	TemplateTail
	RegExpLiteral
	BooleanLiteral
	NullLiteral
	LineTerminator
	Comment
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Identifier:
		return "Identifier"
	case PrivateIdentifier:
		return "PrivateIdentifier"
	case Keyword:
		return "Keyword"
	case Punctuator:
		return "Punctuator"
	case NumericLiteral:
		return "NumericLiteral"
	case StringLiteral:
		return "StringLiteral"
	case TemplateNoSub:
		return "TemplateNoSub"
	case TemplateHead:
		return "TemplateHead"
	case TemplateMiddle:
		return "TemplateMiddle"
	case TemplateTail:
		return "TemplateTail"
	case RegExpLiteral:
		return "RegExpLiteral"
	case BooleanLiteral:
		return "BooleanLiteral"
	case NullLiteral:
		return "NullLiteral"
	case LineTerminator:
		return "LineTerminator"
	case Comment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// NumberKind narrows NumericLiteral into the three representations the
// value model distinguishes (spec.md §3.3, §4.1).
type NumberKind uint8

const (
	NumberInteger NumberKind = iota
	NumberRational
	NumberBigInt
)

// Token is one lexical unit with its source span. Literal holds the raw
// source text (for numbers/strings this is pre-unescape; the parser decodes
// it).
type Token struct {
	Kind       Kind
	Literal    string
	NumberKind NumberKind // meaningful only when Kind == NumericLiteral
	Span       Span

	// PrecededByLineTerminator records whether a LineTerminator or comment
	// containing one was skipped immediately before this token, driving
	// automatic semicolon insertion in the parser.
	PrecededByLineTerminator bool
}

func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("EOF at %s", t.Span.Start)
	}
	return fmt.Sprintf("%s(%q) at %s", t.Kind, t.Literal, t.Span.Start)
}

// IsKeyword reports whether literal is one of the ECMA-262 reserved words.
func IsKeyword(literal string) bool {
	_, ok := keywords[literal]
	return ok
}

// IsStrictReservedWord reports whether literal is reserved only in strict
// mode (spec.md §4.2 "Strict mode").
func IsStrictReservedWord(literal string) bool {
	_, ok := strictReservedWords[literal]
	return ok
}

var keywords = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {},
	"continue": {}, "debugger": {}, "default": {}, "delete": {}, "do": {},
	"else": {}, "export": {}, "extends": {}, "finally": {}, "for": {},
	"function": {}, "if": {}, "import": {}, "in": {}, "instanceof": {},
	"new": {}, "return": {}, "super": {}, "switch": {}, "this": {},
	"throw": {}, "try": {}, "typeof": {}, "var": {}, "void": {},
	"while": {}, "with": {}, "yield": {}, "let": {}, "static": {},
	"async": {}, "await": {}, "of": {}, "get": {}, "set": {},
}

var strictReservedWords = map[string]struct{}{
	"implements": {}, "interface": {}, "package": {}, "private": {},
	"protected": {}, "public": {}, "eval": {}, "arguments": {},
}
