package vm

import (
	"fmt"
	"math"
	"math/big"

	"github.com/jsvm-project/jsvm/internal/value"
)

// add implements the `+` operator's ToPrimitive-then-branch algorithm
// (ECMA-262 13.15.3): string concatenation if either operand stringifies
// preferentially, numeric addition otherwise. Int32+int32 stays an int32
// Value when it doesn't overflow, preserving the Integer/Rational
// equivalence invariant (spec.md §8 testable property 2) without the VM
// needing to special-case the result afterward.
func add(a, b value.Value) (value.Value, error) {
	pa, err := value.ToPrimitive(a, value.HintDefault)
	if err != nil {
		return value.Value{}, err
	}
	pb, err := value.ToPrimitive(b, value.HintDefault)
	if err != nil {
		return value.Value{}, err
	}
	if pa.IsString() || pb.IsString() {
		sa, err := value.ToStringValue(pa)
		if err != nil {
			return value.Value{}, err
		}
		sb, err := value.ToStringValue(pb)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(sa + sb), nil
	}
	if pa.IsBigInt() || pb.IsBigInt() {
		return bigIntBinary(pa, pb, (*big.Int).Add)
	}
	if pa.IsInt32() && pb.IsInt32() {
		x, y := int64(pa.AsInt32Unchecked()), int64(pb.AsInt32Unchecked())
		sum := x + y
		if sum >= math.MinInt32 && sum <= math.MaxInt32 {
			return value.Int32(int32(sum)), nil
		}
		return value.Number(float64(sum)), nil
	}
	na, err := value.ToNumber(pa)
	if err != nil {
		return value.Value{}, err
	}
	nb, err := value.ToNumber(pb)
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(na.AsFloat64() + nb.AsFloat64()), nil
}

func numericBinary(a, b value.Value, intOp func(int64, int64) (int64, bool), floatOp func(float64, float64) float64, bigOp func(z, x, y *big.Int) *big.Int) (value.Value, error) {
	na, err := value.ToNumeric(a)
	if err != nil {
		return value.Value{}, err
	}
	nb, err := value.ToNumeric(b)
	if err != nil {
		return value.Value{}, err
	}
	if na.IsBigInt() || nb.IsBigInt() {
		if !na.IsBigInt() || !nb.IsBigInt() {
			return value.Value{}, fmt.Errorf("TypeError: cannot mix BigInt and other types")
		}
		return bigIntBinary(na, nb, bigOp)
	}
	if intOp != nil && na.IsInt32() && nb.IsInt32() {
		if r, ok := intOp(int64(na.AsInt32Unchecked()), int64(nb.AsInt32Unchecked())); ok {
			if r >= math.MinInt32 && r <= math.MaxInt32 {
				return value.Int32(int32(r)), nil
			}
			return value.Number(float64(r)), nil
		}
	}
	return value.Number(floatOp(na.AsFloat64(), nb.AsFloat64())), nil
}

func bigIntBinary(a, b value.Value, op func(z, x, y *big.Int) *big.Int) (value.Value, error) {
	return value.BigInt(op(new(big.Int), a.AsBigInt(), b.AsBigInt())), nil
}

func sub(a, b value.Value) (value.Value, error) {
	return numericBinary(a, b,
		func(x, y int64) (int64, bool) { return x - y, true },
		func(x, y float64) float64 { return x - y },
		(*big.Int).Sub)
}

func mul(a, b value.Value) (value.Value, error) {
	return numericBinary(a, b,
		func(x, y int64) (int64, bool) { return x * y, true },
		func(x, y float64) float64 { return x * y },
		(*big.Int).Mul)
}

func div(a, b value.Value) (value.Value, error) {
	return numericBinary(a, b, nil,
		func(x, y float64) float64 { return x / y },
		func(z, x, y *big.Int) *big.Int {
			if y.Sign() == 0 {
				return z.SetInt64(0)
			}
			return z.Quo(x, y)
		})
}

func mod(a, b value.Value) (value.Value, error) {
	return numericBinary(a, b, nil,
		math.Mod,
		func(z, x, y *big.Int) *big.Int {
			if y.Sign() == 0 {
				return z.SetInt64(0)
			}
			return z.Rem(x, y)
		})
}

func pow(a, b value.Value) (value.Value, error) {
	return numericBinary(a, b, nil,
		math.Pow,
		func(z, x, y *big.Int) *big.Int { return z.Exp(x, y, nil) })
}

func bitAnd(a, b value.Value) (value.Value, error) {
	x, err := value.ToInt32(a)
	if err != nil {
		return value.Value{}, err
	}
	y, err := value.ToInt32(b)
	if err != nil {
		return value.Value{}, err
	}
	return value.Int32(x & y), nil
}

func bitOr(a, b value.Value) (value.Value, error) {
	x, err := value.ToInt32(a)
	if err != nil {
		return value.Value{}, err
	}
	y, err := value.ToInt32(b)
	if err != nil {
		return value.Value{}, err
	}
	return value.Int32(x | y), nil
}

func bitXor(a, b value.Value) (value.Value, error) {
	x, err := value.ToInt32(a)
	if err != nil {
		return value.Value{}, err
	}
	y, err := value.ToInt32(b)
	if err != nil {
		return value.Value{}, err
	}
	return value.Int32(x ^ y), nil
}

func shl(a, b value.Value) (value.Value, error) {
	x, err := value.ToInt32(a)
	if err != nil {
		return value.Value{}, err
	}
	y, err := value.ToUint32(b)
	if err != nil {
		return value.Value{}, err
	}
	return value.Int32(x << (y & 31)), nil
}

func shr(a, b value.Value) (value.Value, error) {
	x, err := value.ToInt32(a)
	if err != nil {
		return value.Value{}, err
	}
	y, err := value.ToUint32(b)
	if err != nil {
		return value.Value{}, err
	}
	return value.Int32(x >> (y & 31)), nil
}

func ushr(a, b value.Value) (value.Value, error) {
	x, err := value.ToUint32(a)
	if err != nil {
		return value.Value{}, err
	}
	y, err := value.ToUint32(b)
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(float64(x >> (y & 31))), nil
}

func neg(a value.Value) (value.Value, error) {
	n, err := value.ToNumeric(a)
	if err != nil {
		return value.Value{}, err
	}
	if n.IsBigInt() {
		return value.BigInt(new(big.Int).Neg(n.AsBigInt())), nil
	}
	if n.IsInt32() && n.AsInt32Unchecked() != 0 {
		return value.Int32(-n.AsInt32Unchecked()), nil
	}
	return value.Number(-n.AsFloat64()), nil
}

// lessThan implements the Abstract Relational Comparison (ECMA-262 7.2.13)
// for `<`; the other three ordering ops reuse it with swapped/negated
// results in the dispatch loop.
func lessThan(a, b value.Value) (result value.Value, err error) {
	pa, err := value.ToPrimitive(a, value.HintNumber)
	if err != nil {
		return value.Value{}, err
	}
	pb, err := value.ToPrimitive(b, value.HintNumber)
	if err != nil {
		return value.Value{}, err
	}
	if pa.IsString() && pb.IsString() {
		return value.Bool(pa.AsString().Go() < pb.AsString().Go()), nil
	}
	if pa.IsBigInt() || pb.IsBigInt() {
		if pa.IsBigInt() && pb.IsBigInt() {
			return value.Bool(pa.AsBigInt().Cmp(pb.AsBigInt()) < 0), nil
		}
	}
	na, err := value.ToNumber(pa)
	if err != nil {
		return value.Value{}, err
	}
	nb, err := value.ToNumber(pb)
	if err != nil {
		return value.Value{}, err
	}
	af, bf := na.AsFloat64(), nb.AsFloat64()
	if math.IsNaN(af) || math.IsNaN(bf) {
		return value.Undefined, nil // "undefined" result per spec, truthy-false by caller
	}
	return value.Bool(af < bf), nil
}
