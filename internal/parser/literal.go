package parser

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/token"
)

// parseNumberLiteral converts the raw lexeme of a NumericLiteral token
// (radix-prefixed, underscore-separated, optionally BigInt-suffixed text)
// into ast's exact-representation NumberLiteral, per spec.md §4.2's
// int32/float64/BigInt split.
func parseNumberLiteral(tok token.Token) (*ast.NumberLiteral, error) {
	text := strings.ReplaceAll(tok.Literal, "_", "")
	n := &ast.NumberLiteral{Node: ast.Node{Span: tok.Span}}

	if tok.NumberKind == token.NumberBigInt {
		n.Kind = ast.NumberBigInt
		n.BigIntText = text
		return n, nil
	}
	if tok.NumberKind == token.NumberRational {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &Error{Msg: "invalid numeric literal " + text, Pos: tok.Span.Start}
		}
		n.Kind = ast.NumberFloat64
		n.Float = f
		return n, nil
	}

	// NumberInteger: may be decimal or 0x/0o/0b-prefixed.
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		if i >= -(1<<31) && i <= (1<<31)-1 {
			n.Kind = ast.NumberInt32
			n.Int32 = int32(i)
			return n, nil
		}
		n.Kind = ast.NumberFloat64
		n.Float = float64(i)
		return n, nil
	}
	// Overflowed int64 (huge literal not tagged BigInt): fall back to
	// arbitrary-precision parsing and take its float64 approximation, the
	// way Number() widening loses precision past 2^53 per the spec.
	bi, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return nil, &Error{Msg: "invalid numeric literal " + text, Pos: tok.Span.Start}
	}
	f := new(big.Float).SetInt(bi)
	v, _ := f.Float64()
	n.Kind = ast.NumberFloat64
	n.Float = v
	return n, nil
}

// splitRegExpLiteral splits a lexer-produced RegExpLiteral token's raw text
// ("/pattern/flags") into its pattern and flags. Flags never contain '/', so
// the rightmost slash is always the closing delimiter even when the pattern
// body contains an escaped "\/".
func splitRegExpLiteral(lit string) (pattern, flags string) {
	idx := strings.LastIndex(lit, "/")
	return lit[1:idx], lit[idx+1:]
}

// parseTemplateLiteral parses a template literal starting at the current
// TemplateHead/TemplateNoSub token, alternating lexer.ContinueTemplate calls
// with embedded-expression parses (spec.md §4.1's split-tokenization
// protocol for `${ }` substitutions).
func (p *Parser) parseTemplateLiteral() (*ast.TemplateLiteral, error) {
	start := p.tok.Span.Start
	lit := &ast.TemplateLiteral{}
	for {
		lit.Quasis = append(lit.Quasis, p.tok.Literal)
		lit.Raw = append(lit.Raw, p.tok.Literal)
		done := p.tok.Kind == token.TemplateNoSub || p.tok.Kind == token.TemplateTail
		if done {
			end := p.tok.Span.End
			if err := p.next(); err != nil {
				return nil, err
			}
			lit.Node = spanFrom(start, end)
			return lit, nil
		}
		// TemplateHead or TemplateMiddle: an embedded expression follows.
		if err := p.next(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Expressions = append(lit.Expressions, expr)
		if !p.isPunct("}") {
			return nil, p.errf("expected '}' to close template substitution, got %q", p.tok.Literal)
		}
		tok, err := p.lex.ContinueTemplate()
		if err != nil {
			return nil, wrapLexErr(err)
		}
		p.peeked = nil
		p.tok = tok
	}
}
