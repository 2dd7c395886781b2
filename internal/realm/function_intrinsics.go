package realm

import (
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// installFunctionIntrinsics wires Function.prototype.call/apply/bind
// (ECMA-262 20.2.3), the three methods every compiled and native function
// object inherits since NewCompiledFunction/NewNativeFunction both parent
// their result to FunctionProto.
func installFunctionIntrinsics(r *Realm) {
	p := r.FunctionProto
	defineMethod(p, r.FunctionProto, "call", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := this.AsObject().(*object.Object)
		if !ok || !fn.IsCallable() {
			return value.Value{}, errTypeError("Function.prototype.call target is not callable")
		}
		var callThis value.Value
		var rest []value.Value
		if len(args) > 0 {
			callThis = args[0]
			rest = args[1:]
		}
		return fn.Call(callThis, rest)
	})
	defineMethod(p, r.FunctionProto, "apply", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := this.AsObject().(*object.Object)
		if !ok || !fn.IsCallable() {
			return value.Value{}, errTypeError("Function.prototype.apply target is not callable")
		}
		callThis := arg(args, 0)
		argArray, err := toGoSlice(arg(args, 1))
		if err != nil {
			return value.Value{}, err
		}
		return fn.Call(callThis, argArray)
	})
	defineMethod(p, r.FunctionProto, "bind", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := this.AsObject().(*object.Object)
		if !ok || !fn.IsCallable() {
			return value.Value{}, errTypeError("Function.prototype.bind target is not callable")
		}
		boundThis := arg(args, 0)
		var boundArgs []value.Value
		if len(args) > 1 {
			boundArgs = args[1:]
		}
		name := "bound"
		return value.Object(object.NewBoundFunction(r.FunctionProto, fn, boundThis, boundArgs, name, 0)), nil
	})
	defineMethod(p, r.FunctionProto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.String("function () { [native code] }"), nil
	})
}

// toGoSlice reads an array-like object's indexed elements 0..length-1 into
// a plain Go slice, used by Function.prototype.apply and spread-call
// support.
func toGoSlice(v value.Value) ([]value.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	o, ok := v.AsObject().(*object.Object)
	if !ok {
		return nil, errTypeError("expected an array-like object")
	}
	lenVal, err := o.Get(object.NewPropertyKeyFromString("length"), v)
	if err != nil {
		return nil, err
	}
	n, err := value.ToLength(lenVal)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, n)
	for i := int64(0); i < n; i++ {
		ev, err := o.Get(object.PropertyKey{Kind: object.KeyIndex, Idx: uint32(i)}, v)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
