package realm

import (
	"strings"

	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

func thisString(this value.Value) (string, error) {
	if this.IsString() {
		return this.AsString().Go(), nil
	}
	return value.ToStringValue(this)
}

// installStringIntrinsics wires String.prototype's common surface directly
// as Go string operations (ECMA-262 22.1.3) — GetPrimitiveProperty already
// routes a bare string receiver here without allocating a wrapper object,
// so these methods only ever see `this` as a primitive or boxed string.
func installStringIntrinsics(r *Realm) {
	p := r.StringProto
	defineMethod(p, r.FunctionProto, "charAt", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		i := clampIndex(arg(args, 0), len(s))
		if i < 0 || i >= len(s) {
			return value.String(""), nil
		}
		return value.String(string(s[i])), nil
	})
	defineMethod(p, r.FunctionProto, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		needle, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.Number(float64(strings.Index(s, needle))), nil
	})
	defineMethod(p, r.FunctionProto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		start, end := sliceRange(args, len(s))
		return value.String(s[start:end]), nil
	})
	defineMethod(p, r.FunctionProto, "substring", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		start, end := sliceRange(args, len(s))
		if start > end {
			start, end = end, start
		}
		return value.String(s[start:end]), nil
	})
	defineMethod(p, r.FunctionProto, "toUpperCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(strings.ToUpper(s)), nil
	})
	defineMethod(p, r.FunctionProto, "toLowerCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(strings.ToLower(s)), nil
	})
	defineMethod(p, r.FunctionProto, "trim", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(strings.TrimSpace(s)), nil
	})
	defineMethod(p, r.FunctionProto, "includes", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		needle, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(strings.Contains(s, needle)), nil
	})
	defineMethod(p, r.FunctionProto, "startsWith", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		needle, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(strings.HasPrefix(s, needle)), nil
	})
	defineMethod(p, r.FunctionProto, "endsWith", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		needle, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(strings.HasSuffix(s, needle)), nil
	})
	defineMethod(p, r.FunctionProto, "split", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		var parts []string
		if len(args) == 0 || args[0].IsUndefined() {
			parts = []string{s}
		} else {
			sep, err := value.ToStringValue(args[0])
			if err != nil {
				return value.Value{}, err
			}
			if sep == "" {
				parts = strings.Split(s, "")
			} else {
				parts = strings.Split(s, sep)
			}
		}
		arr := object.NewArray(r.ArrayProto, uint32(len(parts)))
		for i, part := range parts {
			arr.DefineOwnProperty(object.PropertyKey{Kind: object.KeyIndex, Idx: uint32(i)}, object.Descriptor{
				HasValue: true, Value: value.String(part), Writable: true, Enumerable: true, Configurable: true,
				HasWritable: true, HasEnumerable: true, HasConfigurable: true,
			})
		}
		return value.Object(arr), nil
	})
	defineMethod(p, r.FunctionProto, "concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		var b strings.Builder
		b.WriteString(s)
		for _, a := range args {
			as, err := value.ToStringValue(a)
			if err != nil {
				return value.Value{}, err
			}
			b.WriteString(as)
		}
		return value.String(b.String()), nil
	})
	defineMethod(p, r.FunctionProto, "repeat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		if err != nil {
			return value.Value{}, err
		}
		n, err := value.ToUint32(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.String(strings.Repeat(s, int(n))), nil
	})
	defineMethod(p, r.FunctionProto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		return value.String(s), err
	})
	defineMethod(p, r.FunctionProto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisString(this)
		return value.String(s), err
	})

	ctor := object.NewNativeFunction(r.FunctionProto, "String", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.String(""), nil
		}
		s, err := value.ToStringValue(args[0])
		return value.String(s), err
	})
	defineMethod(ctor, r.FunctionProto, "fromCharCode", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		var b strings.Builder
		for _, a := range args {
			n, err := value.ToUint32(a)
			if err != nil {
				return value.Value{}, err
			}
			b.WriteRune(rune(n))
		}
		return value.String(b.String()), nil
	})
	defineValue(ctor, "prototype", value.Object(p))
	defineValue(p, "constructor", value.Object(ctor))
	defineValue(r.globalObject, "String", value.Object(ctor))
}
