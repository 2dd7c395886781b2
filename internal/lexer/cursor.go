package lexer

import "unicode/utf8"

// Unicode line terminators and whitespace beyond ASCII, named explicitly
// per spec.md §4.1. The zero-width characters are written as escapes; the
// space-like separators are literal characters.
const (
	lineSeparator      rune = ' '
	paragraphSeparator rune = ' '
	noBreakSpace       rune = ' '
	byteOrderMark      rune = '\U0000FEFF'
	zeroWidthNonJoiner rune = '\U0000200C'
	zeroWidthJoiner    rune = '\U0000200D'
)

// extraSpaceSeparators covers the remaining Unicode "Space_Separator"
// code points ECMA-262 WhiteSpace includes beyond ASCII space and NBSP.
var extraSpaceSeparators = []rune{
	' ', ' ', ' ', ' ', ' ', ' ', ' ',
	' ', ' ', ' ', ' ', ' ', ' ', ' ',
	'\U00003000',
}

// cursor walks a UTF-8 byte stream one Unicode scalar value at a time while
// tracking line/column/offset, the way boa's syntax/lexer/cursor.rs fuses
// decoding into the tokenizer rather than pre-decoding into a []rune.
type cursor struct {
	src    []byte
	pos    int // byte offset of the next undecoded byte
	line   int
	column int
}

func newCursor(src []byte) *cursor {
	return &cursor{src: src, line: 1, column: 1}
}

const cursorEOF rune = -1

// peek returns the rune at the cursor without consuming it.
func (c *cursor) peek() rune {
	if c.pos >= len(c.src) {
		return cursorEOF
	}
	r, _ := utf8.DecodeRune(c.src[c.pos:])
	return r
}

// peekAt looks ahead n runes without consuming anything.
func (c *cursor) peekAt(n int) rune {
	pos := c.pos
	var r rune
	for i := 0; i <= n; i++ {
		if pos >= len(c.src) {
			return cursorEOF
		}
		var size int
		r, size = utf8.DecodeRune(c.src[pos:])
		pos += size
	}
	return r
}

// next consumes and returns the rune at the cursor, advancing line/column
// bookkeeping. \r, U+2028 and U+2029 advance the line number per spec.md
// §4.1.
func (c *cursor) next() rune {
	if c.pos >= len(c.src) {
		return cursorEOF
	}
	r, size := utf8.DecodeRune(c.src[c.pos:])
	c.pos += size
	if isLineTerminator(r) {
		c.line++
		c.column = 1
	} else {
		c.column++
	}
	return r
}

func (c *cursor) offset() int { return c.pos }

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == lineSeparator || r == paragraphSeparator
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\f', noBreakSpace, byteOrderMark:
		return true
	}
	if r == cursorEOF {
		return false
	}
	for _, sp := range extraSpaceSeparators {
		if r == sp {
			return true
		}
	}
	return false
}

func isIdentifierStart(r rune) bool {
	return r == '$' || r == '_' || isLetter(r)
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || isDigit(r) || r == zeroWidthNonJoiner || r == zeroWidthJoiner
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 && isUnicodeLetterApprox(r)
}

// isUnicodeLetterApprox approximates ID_Start for non-ASCII code points.
// Full conformance requires the Unicode ID_Start/ID_Continue tables, which
// this core treats the way spec.md §1 treats ICU: an external property the
// core does not bundle.
func isUnicodeLetterApprox(r rune) bool {
	return r >= 0x00C0
}

func isDigit(r rune) bool       { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool    { return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') }
func isOctalDigit(r rune) bool  { return r >= '0' && r <= '7' }
func isBinaryDigit(r rune) bool { return r == '0' || r == '1' }
