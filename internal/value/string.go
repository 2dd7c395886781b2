package value

import "unicode/utf16"

// Utf16Length returns the string's length the way ECMA-262 defines
// String.prototype.length: a count of UTF-16 code units, not bytes or
// Unicode scalar values. Go strings are kept as UTF-8 in JsString; this
// function pays the conversion cost only where the spec actually observes
// UTF-16 length (spec.md §4.5 "ToString/coercion").
func (s *JsString) Utf16Length() int {
	n := 0
	for _, r := range s.s {
		if r > 0xFFFF {
			n += 2 // surrogate pair
		} else {
			n++
		}
	}
	return n
}

// CharCodeAt returns the UTF-16 code unit at index i, and whether i was in
// range.
func (s *JsString) CharCodeAt(i int) (uint16, bool) {
	units := utf16.Encode([]rune(s.s))
	if i < 0 || i >= len(units) {
		return 0, false
	}
	return units[i], true
}

// Concat returns a new JsString holding the concatenation of s and other.
func (s *JsString) Concat(other *JsString) *JsString {
	return NewJsString(s.s + other.s)
}
