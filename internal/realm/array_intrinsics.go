package realm

import (
	"strings"

	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

func arrayLengthOf(o *object.Object, this value.Value) (uint32, error) {
	lv, err := o.Get(object.NewPropertyKeyFromString("length"), this)
	if err != nil {
		return 0, err
	}
	n, err := value.ToUint32(lv)
	return uint32(n), err
}

// installArrayIntrinsics covers the common Array.prototype surface (push,
// pop, join, indexOf, forEach, map, filter, slice) plus the Array
// constructor, grounded on the same native-closure-over-Object-model
// pattern as every other prototype here.
func installArrayIntrinsics(r *Realm) {
	p := r.ArrayProto
	defineMethod(p, r.FunctionProto, "push", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Array.prototype.push called on non-object")
		}
		n, err := arrayLengthOf(o, this)
		if err != nil {
			return value.Value{}, err
		}
		for _, a := range args {
			if _, err := o.Set(object.PropertyKey{Kind: object.KeyIndex, Idx: n}, a, this); err != nil {
				return value.Value{}, err
			}
			n++
		}
		if _, err := o.Set(object.NewPropertyKeyFromString("length"), value.Number(float64(n)), this); err != nil {
			return value.Value{}, err
		}
		return value.Number(float64(n)), nil
	})
	defineMethod(p, r.FunctionProto, "pop", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Array.prototype.pop called on non-object")
		}
		n, err := arrayLengthOf(o, this)
		if err != nil {
			return value.Value{}, err
		}
		if n == 0 {
			return value.Undefined, nil
		}
		key := object.PropertyKey{Kind: object.KeyIndex, Idx: n - 1}
		v, err := o.Get(key, this)
		if err != nil {
			return value.Value{}, err
		}
		if _, err := o.Delete(key); err != nil {
			return value.Value{}, err
		}
		if _, err := o.Set(object.NewPropertyKeyFromString("length"), value.Number(float64(n-1)), this); err != nil {
			return value.Value{}, err
		}
		return v, nil
	})
	defineMethod(p, r.FunctionProto, "join", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Array.prototype.join called on non-object")
		}
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			s, err := value.ToStringValue(args[0])
			if err != nil {
				return value.Value{}, err
			}
			sep = s
		}
		n, err := arrayLengthOf(o, this)
		if err != nil {
			return value.Value{}, err
		}
		parts := make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			v, err := o.Get(object.PropertyKey{Kind: object.KeyIndex, Idx: i}, this)
			if err != nil {
				return value.Value{}, err
			}
			if v.IsNullish() {
				parts = append(parts, "")
				continue
			}
			s, err := value.ToStringValue(v)
			if err != nil {
				return value.Value{}, err
			}
			parts = append(parts, s)
		}
		return value.String(strings.Join(parts, sep)), nil
	})
	defineMethod(p, r.FunctionProto, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Array.prototype.indexOf called on non-object")
		}
		n, err := arrayLengthOf(o, this)
		if err != nil {
			return value.Value{}, err
		}
		target := arg(args, 0)
		for i := uint32(0); i < n; i++ {
			v, err := o.Get(object.PropertyKey{Kind: object.KeyIndex, Idx: i}, this)
			if err != nil {
				return value.Value{}, err
			}
			if value.StrictEquals(v, target) {
				return value.Number(float64(i)), nil
			}
		}
		return value.Number(-1), nil
	})
	defineMethod(p, r.FunctionProto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Undefined, arrayIterate(this, arg(args, 0), func(v value.Value, i uint32) error {
			_, err := callFn(arg(args, 0), args, v, value.Number(float64(i)), this)
			return err
		})
	})
	defineMethod(p, r.FunctionProto, "map", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Array.prototype.map called on non-object")
		}
		n, err := arrayLengthOf(o, this)
		if err != nil {
			return value.Value{}, err
		}
		out := object.NewArray(r.ArrayProto, n)
		cb := arg(args, 0)
		for i := uint32(0); i < n; i++ {
			v, err := o.Get(object.PropertyKey{Kind: object.KeyIndex, Idx: i}, this)
			if err != nil {
				return value.Value{}, err
			}
			mapped, err := callFn(cb, nil, v, value.Number(float64(i)), this)
			if err != nil {
				return value.Value{}, err
			}
			if _, err := out.Set(object.PropertyKey{Kind: object.KeyIndex, Idx: i}, mapped, value.Object(out)); err != nil {
				return value.Value{}, err
			}
		}
		return value.Object(out), nil
	})
	defineMethod(p, r.FunctionProto, "filter", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Array.prototype.filter called on non-object")
		}
		n, err := arrayLengthOf(o, this)
		if err != nil {
			return value.Value{}, err
		}
		out := object.NewArray(r.ArrayProto, 0)
		cb := arg(args, 0)
		w := uint32(0)
		for i := uint32(0); i < n; i++ {
			v, err := o.Get(object.PropertyKey{Kind: object.KeyIndex, Idx: i}, this)
			if err != nil {
				return value.Value{}, err
			}
			keep, err := callFn(cb, nil, v, value.Number(float64(i)), this)
			if err != nil {
				return value.Value{}, err
			}
			if value.ToBoolean(keep) {
				if _, err := out.Set(object.PropertyKey{Kind: object.KeyIndex, Idx: w}, v, value.Object(out)); err != nil {
					return value.Value{}, err
				}
				w++
			}
		}
		return value.Object(out), nil
	})
	defineMethod(p, r.FunctionProto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Array.prototype.slice called on non-object")
		}
		n, err := arrayLengthOf(o, this)
		if err != nil {
			return value.Value{}, err
		}
		start, end := sliceRange(args, int(n))
		out := object.NewArray(r.ArrayProto, 0)
		w := uint32(0)
		for i := start; i < end; i++ {
			v, err := o.Get(object.PropertyKey{Kind: object.KeyIndex, Idx: uint32(i)}, this)
			if err != nil {
				return value.Value{}, err
			}
			if _, err := out.Set(object.PropertyKey{Kind: object.KeyIndex, Idx: w}, v, value.Object(out)); err != nil {
				return value.Value{}, err
			}
			w++
		}
		return value.Object(out), nil
	})

	ctor := object.NewNativeFunction(r.FunctionProto, "Array", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			n, err := value.ToUint32(args[0])
			if err != nil {
				return value.Value{}, err
			}
			return value.Object(object.NewArray(r.ArrayProto, n)), nil
		}
		arr := object.NewArray(r.ArrayProto, uint32(len(args)))
		for i, a := range args {
			arr.DefineOwnProperty(object.PropertyKey{Kind: object.KeyIndex, Idx: uint32(i)}, object.Descriptor{
				HasValue: true, Value: a, Writable: true, Enumerable: true, Configurable: true,
				HasWritable: true, HasEnumerable: true, HasConfigurable: true,
			})
		}
		return value.Object(arr), nil
	})
	defineMethod(ctor, r.FunctionProto, "isArray", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).AsObject().(*object.Object)
		return value.Bool(ok && o.Kind() == object.KindArray), nil
	})
	defineValue(ctor, "prototype", value.Object(p))
	defineValue(p, "constructor", value.Object(ctor))
	defineValue(r.globalObject, "Array", value.Object(ctor))
}

func sliceRange(args []value.Value, n int) (int, int) {
	start, end := 0, n
	if len(args) > 0 && !args[0].IsUndefined() {
		start = clampIndex(args[0], n)
	}
	if len(args) > 1 && !args[1].IsUndefined() {
		end = clampIndex(args[1], n)
	}
	if start > end {
		start = end
	}
	return start, end
}

func clampIndex(v value.Value, n int) int {
	f := v.AsFloat64()
	i := int(f)
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func arrayIterate(this, cb value.Value, fn func(v value.Value, i uint32) error) error {
	o, ok := this.AsObject().(*object.Object)
	if !ok {
		return errTypeError("expected an array-like object")
	}
	n, err := arrayLengthOf(o, this)
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		v, err := o.Get(object.PropertyKey{Kind: object.KeyIndex, Idx: i}, this)
		if err != nil {
			return err
		}
		if err := fn(v, i); err != nil {
			return err
		}
	}
	return nil
}

// callFn invokes a callback value with up to three arguments, mirroring
// the (value, index, array) signature every Array.prototype iteration
// method passes its callback (ECMA-262 23.1.3).
func callFn(cb value.Value, _ []value.Value, elem, idx, arr value.Value) (value.Value, error) {
	fn, ok := cb.AsObject().(*object.Object)
	if !ok || !fn.IsCallable() {
		return value.Value{}, errTypeError("callback is not a function")
	}
	return fn.Call(value.Undefined, []value.Value{elem, idx, arr})
}
