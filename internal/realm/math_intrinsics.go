package realm

import (
	"math"
	"math/rand"

	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// mathMin and mathMax implement Math.min/Math.max's float64 comparison
// (ECMA-262 21.3.2.24/21.3.2.26): NaN is contagious, and between +0/-0 the
// sign is significant even though the two compare equal. Adapted from the
// teacher's WasmCompatMin/WasmCompatMax (internal/moremath), whose Wasm
// min/max instructions share exactly this NaN-propagation and signed-zero
// tie-break with JS Math.min/Math.max.
func mathMin(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return math.Inf(-1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return x
		}
		return y
	}
	if x < y {
		return x
	}
	return y
}

func mathMax(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, 1) || math.IsInf(y, 1):
		return math.Inf(1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return y
		}
		return x
	}
	if x > y {
		return x
	}
	return y
}

// installMathIntrinsics wires the Math namespace object (ECMA-262 21.3):
// its constant properties and its unary/binary/variadic function
// properties, each converting its arguments with value.ToNumber the way
// installNumberIntrinsics converts `this`.
func installMathIntrinsics(r *Realm) {
	m := object.New(r.ObjectProto)

	defineValue(m, "E", value.Number(math.E))
	defineValue(m, "LN2", value.Number(math.Ln2))
	defineValue(m, "LN10", value.Number(math.Log(10)))
	defineValue(m, "LOG2E", value.Number(1/math.Ln2))
	defineValue(m, "LOG10E", value.Number(1/math.Log(10)))
	defineValue(m, "PI", value.Number(math.Pi))
	defineValue(m, "SQRT1_2", value.Number(math.Sqrt(0.5)))
	defineValue(m, "SQRT2", value.Number(math.Sqrt2))

	unary := map[string]func(float64) float64{
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"trunc": math.Trunc,
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"sign":  mathSign,
		"exp":   math.Exp,
		"expm1": math.Expm1,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
		"log1p": math.Log1p,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"sinh":  math.Sinh,
		"cosh":  math.Cosh,
		"tanh":  math.Tanh,
		"round": mathRound,
	}
	for name, fn := range unary {
		fn := fn
		defineMethod(m, r.FunctionProto, name, 1, func(this value.Value, args []value.Value) (value.Value, error) {
			x, err := mathArg(args, 0)
			if err != nil {
				return value.Value{}, err
			}
			return value.Number(fn(x)), nil
		})
	}

	defineMethod(m, r.FunctionProto, "pow", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		x, err := mathArg(args, 0)
		if err != nil {
			return value.Value{}, err
		}
		y, err := mathArg(args, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Number(math.Pow(x, y)), nil
	})
	defineMethod(m, r.FunctionProto, "atan2", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		y, err := mathArg(args, 0)
		if err != nil {
			return value.Value{}, err
		}
		x, err := mathArg(args, 1)
		if err != nil {
			return value.Value{}, err
		}
		return value.Number(math.Atan2(y, x)), nil
	})
	defineMethod(m, r.FunctionProto, "hypot", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		sum := 0.0
		for i := range args {
			x, err := mathArg(args, i)
			if err != nil {
				return value.Value{}, err
			}
			sum += x * x
		}
		return value.Number(math.Sqrt(sum)), nil
	})
	defineMethod(m, r.FunctionProto, "min", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		acc := math.Inf(1)
		for i := range args {
			x, err := mathArg(args, i)
			if err != nil {
				return value.Value{}, err
			}
			acc = mathMin(acc, x)
		}
		return value.Number(acc), nil
	})
	defineMethod(m, r.FunctionProto, "max", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		acc := math.Inf(-1)
		for i := range args {
			x, err := mathArg(args, i)
			if err != nil {
				return value.Value{}, err
			}
			acc = mathMax(acc, x)
		}
		return value.Number(acc), nil
	})
	defineMethod(m, r.FunctionProto, "random", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(rand.Float64()), nil
	})

	defineValue(r.globalObject, "Math", value.Object(m))
}

// mathSign implements Math.sign (ECMA-262 21.3.2.32): preserves -0 and NaN.
func mathSign(x float64) float64 {
	if math.IsNaN(x) || x == 0 {
		return x
	}
	if x > 0 {
		return 1
	}
	return -1
}

// mathRound implements Math.round (ECMA-262 21.3.2.28), which differs from
// math.Round's round-half-away-from-zero by rounding ties toward +Inf.
func mathRound(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	if x == 0 {
		return x // preserve -0
	}
	return f
}

func mathArg(args []value.Value, i int) (float64, error) {
	n, err := value.ToNumber(arg(args, i))
	if err != nil {
		return 0, err
	}
	return n.AsFloat64(), nil
}
