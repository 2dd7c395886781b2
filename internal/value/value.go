// Package value implements the tagged ECMAScript value representation and
// its coercion ladder (spec.md §3.3, §4.5). Values are an explicit tagged
// struct rather than a NaN-boxed word: SPEC_FULL.md's Open-Question decision
// favors a representation that reads clearly over one that depends on
// float64 bit-layout tricks, matching how the teacher keeps its operand
// stack as a plain []uint64 with a side Type rather than boxing types into
// the bit pattern itself.
package value

import (
	"math"
	"math/big"

	"github.com/jsvm-project/jsvm/internal/interner"
)

// Tag discriminates the Value union.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagNull
	TagBool
	TagInt32
	TagFloat64
	TagBigInt
	TagString
	TagSymbol
	TagObject
)

func (t Tag) String() string {
	switch t {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagBool:
		return "boolean"
	case TagInt32, TagFloat64:
		return "number"
	case TagBigInt:
		return "bigint"
	case TagString:
		return "string"
	case TagSymbol:
		return "symbol"
	case TagObject:
		return "object"
	default:
		return "unknown"
	}
}

// Objecter is implemented by internal/object.Object. Value only needs
// identity and a narrow interface to avoid an import cycle between
// internal/value and internal/object (object.Object embeds Value as
// property values).
type Objecter interface {
	IsCallable() bool
	ClassName() string
}

// Value is the tagged ECMAScript value. The zero Value is undefined.
type Value struct {
	tag    Tag
	b      bool
	i32    int32
	f64    float64
	bigint *big.Int
	str    *JsString
	sym    *Symbol
	obj    Objecter
}

// Symbol is a unique, possibly-described symbol value (spec.md §3.3).
type Symbol struct {
	Description string
	HasDesc     bool
	WellKnown   interner.Symbol // set for the well-known symbols, else 0 (SymEmpty)
}

// JsString is interned-free string storage: the value model keeps strings
// as Go strings (already UTF-8), decoding to UTF-16 code-unit semantics only
// at the points ECMA-262 requires it (.length and indexed access, through
// Utf16Length and CharCodeAt in internal/value/string.go).
type JsString struct {
	s string
}

func NewJsString(s string) *JsString { return &JsString{s: s} }
func (s *JsString) Go() string       { return s.s }

var (
	Undefined = Value{tag: TagUndefined}
	Null      = Value{tag: TagNull}
	True      = Value{tag: TagBool, b: true}
	False     = Value{tag: TagBool, b: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Int32 constructs an exact-integer Value (spec.md §3.3 Integer/Rational
// equivalence — callers must use Int32 whenever a computed number is
// representable exactly as an int32; Number normalizes this automatically).
func Int32(i int32) Value { return Value{tag: TagInt32, i32: i} }

// Number constructs a number Value, normalizing to TagInt32 when f is an
// exact, in-range integer so that SameValue(Number(1), Int32(1)) holds
// (testable property 2 in spec.md §8).
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{tag: TagFloat64, f64: f}
	}
	if f == 0 && math.Signbit(f) {
		return Value{tag: TagFloat64, f64: f} // -0 is not representable as int32
	}
	if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
		return Value{tag: TagInt32, i32: int32(f)}
	}
	return Value{tag: TagFloat64, f64: f}
}

func BigInt(b *big.Int) Value { return Value{tag: TagBigInt, bigint: b} }

func String(s string) Value { return Value{tag: TagString, str: NewJsString(s)} }

func SymbolValue(s *Symbol) Value { return Value{tag: TagSymbol, sym: s} }

func Object(o Objecter) Value { return Value{tag: TagObject, obj: o} }

func (v Value) Tag() Tag        { return v.tag }
func (v Value) IsUndefined() bool { return v.tag == TagUndefined }
func (v Value) IsNull() bool      { return v.tag == TagNull }
func (v Value) IsNullish() bool   { return v.tag == TagUndefined || v.tag == TagNull }
func (v Value) IsBool() bool      { return v.tag == TagBool }
func (v Value) IsNumber() bool    { return v.tag == TagInt32 || v.tag == TagFloat64 }
func (v Value) IsInt32() bool     { return v.tag == TagInt32 }
func (v Value) IsBigInt() bool    { return v.tag == TagBigInt }
func (v Value) IsString() bool    { return v.tag == TagString }
func (v Value) IsSymbol() bool    { return v.tag == TagSymbol }
func (v Value) IsObject() bool    { return v.tag == TagObject }

func (v Value) AsBool() bool { return v.b }

// AsFloat64 returns the numeric value regardless of whether it is stored as
// an int32 or float64. It does not check the tag: for a non-number it
// returns 0, so callers must check IsNumber first.
func (v Value) AsFloat64() float64 {
	if v.tag == TagInt32 {
		return float64(v.i32)
	}
	return v.f64
}

func (v Value) AsInt32Unchecked() int32 { return v.i32 }
func (v Value) AsBigInt() *big.Int      { return v.bigint }
func (v Value) AsString() *JsString     { return v.str }
func (v Value) AsSymbol() *Symbol       { return v.sym }
func (v Value) AsObject() Objecter      { return v.obj }

// SameValue implements the SameValue algorithm (ECMA-262 7.2.11), used by
// Object.is and property-key comparison.
func SameValue(a, b Value) bool {
	if a.tag != b.tag {
		if a.IsNumber() && b.IsNumber() {
			// fallthrough to numeric comparison below
		} else {
			return false
		}
	}
	switch {
	case a.IsNumber() && b.IsNumber():
		af, bf := a.AsFloat64(), b.AsFloat64()
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		if af == 0 && bf == 0 {
			return math.Signbit(af) == math.Signbit(bf)
		}
		return af == bf
	case a.tag == TagUndefined, a.tag == TagNull:
		return true
	case a.tag == TagBool:
		return a.b == b.b
	case a.tag == TagBigInt:
		return a.bigint.Cmp(b.bigint) == 0
	case a.tag == TagString:
		return a.str.s == b.str.s
	case a.tag == TagSymbol:
		return a.sym == b.sym
	case a.tag == TagObject:
		return a.obj == b.obj
	}
	return false
}

// SameValueZero is SameValue except +0 and -0 compare equal (used by
// Array.prototype.includes, Map/Set key comparison).
func SameValueZero(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		af, bf := a.AsFloat64(), b.AsFloat64()
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	}
	return SameValue(a, b)
}
