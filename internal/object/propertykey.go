package object

import (
	"strconv"

	"github.com/jsvm-project/jsvm/internal/value"
)

// PropertyKeyKind discriminates the PropertyKey sum (spec.md §3.4): every
// property is keyed by an array index, an arbitrary string, or a symbol.
type PropertyKeyKind uint8

const (
	KeyString PropertyKeyKind = iota
	KeyIndex
	KeySymbol
)

// PropertyKey is a canonicalized property key: strings that parse as a
// canonical array index (ECMA-262 6.1.7 "array index") collapse to KeyIndex
// so that array-like objects can dispatch on integer keys without re-parsing
// strings on every access.
type PropertyKey struct {
	Kind PropertyKeyKind
	Str  string
	Idx  uint32
	Sym  *value.Symbol
}

const maxArrayIndex = 1<<32 - 2 // ECMA-262: array index is < 2^32 - 1

// NewPropertyKeyFromString canonicalizes s into a PropertyKey, collapsing
// canonical unsigned-integer text into KeyIndex.
func NewPropertyKeyFromString(s string) PropertyKey {
	if idx, ok := canonicalIndex(s); ok {
		return PropertyKey{Kind: KeyIndex, Idx: idx}
	}
	return PropertyKey{Kind: KeyString, Str: s}
}

func NewPropertyKeyFromSymbol(s *value.Symbol) PropertyKey {
	return PropertyKey{Kind: KeySymbol, Sym: s}
}

func canonicalIndex(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n > maxArrayIndex {
		return 0, false
	}
	if strconv.FormatUint(n, 10) != s {
		return 0, false // leading zeros etc. are not canonical
	}
	return uint32(n), true
}

// ToPropertyKey implements ECMA-262 7.1.19 for a Value already known not to
// need ToPrimitive (the caller — typically a bytecode GetProperty/SetProperty
// handler — has already resolved computed member expressions to a Value).
func ToPropertyKey(v value.Value) (PropertyKey, error) {
	if v.IsSymbol() {
		return NewPropertyKeyFromSymbol(v.AsSymbol()), nil
	}
	s, err := value.ToPropertyKeyString(v)
	if err != nil {
		return PropertyKey{}, err
	}
	return NewPropertyKeyFromString(s), nil
}

// String renders the key the way Object.keys/for-in iteration order expects
// (KeyIndex keys sort numerically before KeyString keys at the object
// level; this method just renders text).
func (k PropertyKey) String() string {
	switch k.Kind {
	case KeyIndex:
		return strconv.FormatUint(uint64(k.Idx), 10)
	case KeyString:
		return k.Str
	default:
		return "Symbol()"
	}
}

func (k PropertyKey) Equal(other PropertyKey) bool {
	if k.Kind != other.Kind {
		return false
	}
	switch k.Kind {
	case KeyIndex:
		return k.Idx == other.Idx
	case KeyString:
		return k.Str == other.Str
	default:
		return k.Sym == other.Sym
	}
}
