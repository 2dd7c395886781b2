package realm

import (
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

func defineMethod(o *object.Object, proto *object.Object, name string, length int, fn object.NativeFunction) {
	f := object.NewNativeFunction(proto, name, length, fn)
	o.DefineOwnProperty(object.NewPropertyKeyFromString(name), object.Descriptor{
		HasValue: true, Value: value.Object(f), Writable: true, Configurable: true,
		HasWritable: true, HasConfigurable: true,
	})
}

func defineValue(o *object.Object, name string, v value.Value) {
	o.DefineOwnProperty(object.NewPropertyKeyFromString(name), object.Descriptor{
		HasValue: true, Value: v, Writable: true, Enumerable: true, Configurable: true,
		HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	})
}

// installObjectIntrinsics wires Object.prototype's essential methods
// (ECMA-262 20.1.3) — grounded on the teacher's api package's thin,
// assertion-free public wrapper style: each native just forwards to the
// internal/object vtable and lets Go's error return do the TypeError work.
func installObjectIntrinsics(r *Realm) {
	p := r.ObjectProto
	defineMethod(p, r.FunctionProto, "hasOwnProperty", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.False, nil
		}
		key, err := object.ToPropertyKey(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		desc, err := o.GetOwnProperty(key)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(desc != nil), nil
	})
	defineMethod(p, r.FunctionProto, "isPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject().(*object.Object)
		other, ok2 := arg(args, 0).AsObject().(*object.Object)
		if !ok || !ok2 {
			return value.False, nil
		}
		cur, err := other.GetPrototypeOf()
		for cur != nil && err == nil {
			if cur == self {
				return value.True, nil
			}
			cur, err = cur.GetPrototypeOf()
		}
		return value.False, err
	})
	defineMethod(p, r.FunctionProto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		if o, ok := this.AsObject().(*object.Object); ok {
			return value.String("[object " + o.ClassName() + "]"), nil
		}
		return value.String("[object Object]"), nil
	})
	defineMethod(p, r.FunctionProto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	ctor := object.NewNativeFunction(r.FunctionProto, "Object", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) > 0 && args[0].IsObject() {
			return args[0], nil
		}
		return value.Object(object.New(r.ObjectProto)), nil
	})
	defineMethod(ctor, r.FunctionProto, "keys", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return r.ownEnumerableStringKeys(arg(args, 0))
	})
	defineMethod(ctor, r.FunctionProto, "getPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).AsObject().(*object.Object)
		if !ok {
			return value.Value{}, errTypeError("Object.getPrototypeOf called on non-object")
		}
		proto, err := o.GetPrototypeOf()
		if err != nil {
			return value.Value{}, err
		}
		if proto == nil {
			return value.Null, nil
		}
		return value.Object(proto), nil
	})
	defineValue(ctor, "prototype", value.Object(p))
	defineValue(p, "constructor", value.Object(ctor))
	defineValue(r.globalObject, "Object", value.Object(ctor))
}

func (r *Realm) ownEnumerableStringKeys(v value.Value) (value.Value, error) {
	o, ok := v.AsObject().(*object.Object)
	if !ok {
		return value.Value{}, errTypeError("Object.keys called on non-object")
	}
	keys, err := o.OwnPropertyKeys()
	if err != nil {
		return value.Value{}, err
	}
	arr := object.NewArray(r.ArrayProto, 0)
	n := uint32(0)
	for _, k := range keys {
		if k.Kind == object.KeySymbol {
			continue
		}
		desc, err := o.GetOwnProperty(k)
		if err != nil {
			return value.Value{}, err
		}
		if desc == nil || !desc.Enumerable {
			continue
		}
		arr.DefineOwnProperty(object.PropertyKey{Kind: object.KeyIndex, Idx: n}, object.Descriptor{
			HasValue: true, Value: value.String(k.String()), Writable: true, Enumerable: true, Configurable: true,
			HasWritable: true, HasEnumerable: true, HasConfigurable: true,
		})
		n++
	}
	return value.Object(arr), nil
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}

func errTypeError(msg string) error { return &typeError{msg} }

type typeError struct{ msg string }

func (e *typeError) Error() string { return "TypeError: " + e.msg }
