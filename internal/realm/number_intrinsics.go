package realm

import (
	"math"
	"strconv"

	"github.com/jsvm-project/jsvm/internal/interner"
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

func thisNumber(this value.Value) (float64, error) {
	if this.IsNumber() {
		return this.AsFloat64(), nil
	}
	n, err := value.ToNumber(this)
	if err != nil {
		return 0, err
	}
	return n.AsFloat64(), nil
}

// installNumberIntrinsics wires Number.prototype (toFixed, toString) and
// the Number constructor's static constants/predicates (ECMA-262 21.1),
// the same direct-Go-float style installStringIntrinsics uses for strings.
func installNumberIntrinsics(r *Realm) {
	p := r.NumberProto
	defineMethod(p, r.FunctionProto, "toFixed", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumber(this)
		if err != nil {
			return value.Value{}, err
		}
		digits := 0
		if len(args) > 0 && !args[0].IsUndefined() {
			d, err := value.ToUint32(args[0])
			if err != nil {
				return value.Value{}, err
			}
			digits = int(d)
		}
		return value.String(strconv.FormatFloat(n, 'f', digits, 64)), nil
	})
	defineMethod(p, r.FunctionProto, "toString", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumber(this)
		if err != nil {
			return value.Value{}, err
		}
		radix := 10
		if len(args) > 0 && !args[0].IsUndefined() {
			rv, err := value.ToUint32(args[0])
			if err != nil {
				return value.Value{}, err
			}
			radix = int(rv)
		}
		if radix == 10 {
			s, err := value.ToStringValue(value.Number(n))
			return value.String(s), err
		}
		return value.String(strconv.FormatInt(int64(n), radix)), nil
	})
	defineMethod(p, r.FunctionProto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumber(this)
		return value.Number(n), err
	})

	ctor := object.NewNativeFunction(r.FunctionProto, "Number", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(0), nil
		}
		return value.ToNumber(args[0])
	})
	defineValue(ctor, "MAX_SAFE_INTEGER", value.Number(9007199254740991))
	defineValue(ctor, "MIN_SAFE_INTEGER", value.Number(-9007199254740991))
	defineValue(ctor, "MAX_VALUE", value.Number(math.MaxFloat64))
	defineValue(ctor, "MIN_VALUE", value.Number(5e-324))
	defineValue(ctor, "EPSILON", value.Number(2.220446049250313e-16))
	defineValue(ctor, "POSITIVE_INFINITY", value.Number(math.Inf(1)))
	defineValue(ctor, "NEGATIVE_INFINITY", value.Number(math.Inf(-1)))
	defineValue(ctor, "NaN", value.Number(math.NaN()))
	defineMethod(ctor, r.FunctionProto, "isInteger", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsNumber() {
			return value.False, nil
		}
		f := v.AsFloat64()
		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f), nil
	})
	defineMethod(ctor, r.FunctionProto, "isFinite", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsNumber() {
			return value.False, nil
		}
		f := v.AsFloat64()
		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})
	defineMethod(ctor, r.FunctionProto, "isNaN", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		return value.Bool(v.IsNumber() && math.IsNaN(v.AsFloat64())), nil
	})
	defineValue(ctor, "prototype", value.Object(p))
	defineValue(p, "constructor", value.Object(ctor))
	defineValue(r.globalObject, "Number", value.Object(ctor))

	boolP := r.BooleanProto
	defineMethod(boolP, r.FunctionProto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		b := this.IsBool() && this == value.True
		return value.String(strconv.FormatBool(b)), nil
	})
	defineMethod(boolP, r.FunctionProto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})
	boolCtor := object.NewNativeFunction(r.FunctionProto, "Boolean", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(value.ToBoolean(arg(args, 0))), nil
	})
	defineValue(boolCtor, "prototype", value.Object(boolP))
	defineValue(boolP, "constructor", value.Object(boolCtor))
	defineValue(r.globalObject, "Boolean", value.Object(boolCtor))

	symP := r.SymbolProto
	defineMethod(symP, r.FunctionProto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		if this.IsSymbol() {
			return value.String("Symbol(" + this.AsSymbol().Description + ")"), nil
		}
		return value.String("Symbol()"), nil
	})
	symCtor := object.NewNativeFunction(r.FunctionProto, "Symbol", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		desc := ""
		hasDesc := false
		if len(args) > 0 && !args[0].IsUndefined() {
			s, err := value.ToStringValue(args[0])
			if err != nil {
				return value.Value{}, err
			}
			desc = s
			hasDesc = true
		}
		return value.SymbolValue(&value.Symbol{Description: desc, HasDesc: hasDesc}), nil
	})
	defineValue(symCtor, "iterator", value.SymbolValue(value.WellKnownSymbol(interner.SymIterator)))
	defineValue(symCtor, "prototype", value.Object(symP))
	defineValue(symP, "constructor", value.Object(symCtor))
	defineValue(r.globalObject, "Symbol", value.Object(symCtor))
}
