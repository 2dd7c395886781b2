package object

import (
	"github.com/jsvm-project/jsvm/internal/gc"
	"github.com/jsvm-project/jsvm/internal/value"
)

// NativeFunction is the Go-side signature for builtin methods (Array.prototype.map,
// console.log, ...). internal/realm registers these directly; internal/vm's
// compiled user functions install their own Call closure instead (a thunk
// that pushes a CallFrame and runs the bytecode loop), keeping this package
// free of a dependency on internal/vm.
type NativeFunction func(this value.Value, args []value.Value) (value.Value, error)

// FunctionData carries the bookkeeping every function-exotic object needs
// regardless of whether it was built from source or from Go (spec.md
// §3.4/§4.3): its declared name/length for Function.prototype.toString and
// `.length`, and the [[HomeObject]] `super` resolution needs.
type FunctionData struct {
	Name          string
	Length        int
	IsArrow       bool
	IsGenerator   bool
	IsAsync       bool
	Strict        bool
	HomeObject    *Object // nil unless defined in a class/object-literal method position
	BoundThis     value.Value
	BoundArgs     []value.Value
	BoundTarget   *Object // set only for KindBoundFunction
}

func (*FunctionData) exoticData() {}

// TraceExtra keeps a bound function's target, a method's [[HomeObject]],
// and bound arguments reachable.
func (d *FunctionData) TraceExtra(visit func(gc.Traceable)) {
	if d.HomeObject != nil {
		visit(d.HomeObject)
	}
	if d.BoundTarget != nil {
		visit(d.BoundTarget)
	}
	traceValue(d.BoundThis, visit)
	for _, a := range d.BoundArgs {
		traceValue(a, visit)
	}
}

// NewNativeFunction builds a callable object wrapping a Go function. Used
// for every builtin (Array.prototype methods, console.log, Promise
// executors' resolve/reject, ...).
func NewNativeFunction(prototype *Object, name string, length int, fn NativeFunction) *Object {
	o := New(prototype)
	data := &FunctionData{Name: name, Length: length}
	o.SetExotic(KindFunction, "Function", data, InternalMethods{
		Call: func(_ *Object, this value.Value, args []value.Value) (value.Value, error) {
			return fn(this, args)
		},
	})
	o.rawDefine(NewPropertyKeyFromString("name"), property{value: value.String(name)}, AttrConfigurable)
	o.rawDefine(NewPropertyKeyFromString("length"), property{value: value.Int32(int32(length))}, AttrConfigurable)
	return o
}

// NewCompiledFunction lets internal/vm install a function object whose Call
// (and, for constructible functions, Construct) closures capture whatever
// call-frame machinery they need, without this package knowing about
// internal/vm's CallFrame type.
func NewCompiledFunction(prototype *Object, data *FunctionData, call func(this value.Value, args []value.Value) (value.Value, error), construct func(args []value.Value, newTarget *Object) (value.Value, error)) *Object {
	o := New(prototype)
	methods := InternalMethods{
		Call: func(_ *Object, this value.Value, args []value.Value) (value.Value, error) {
			return call(this, args)
		},
	}
	if construct != nil {
		methods.Construct = func(_ *Object, args []value.Value, newTarget *Object) (value.Value, error) {
			return construct(args, newTarget)
		}
	}
	o.SetExotic(KindFunction, "Function", data, methods)
	o.rawDefine(NewPropertyKeyFromString("name"), property{value: value.String(data.Name)}, AttrConfigurable)
	o.rawDefine(NewPropertyKeyFromString("length"), property{value: value.Int32(int32(data.Length))}, AttrConfigurable)
	return o
}

// NewBoundFunction implements Function.prototype.bind's exotic object
// (ECMA-262 10.4.1).
func NewBoundFunction(prototype *Object, target *Object, boundThis value.Value, boundArgs []value.Value, name string, length int) *Object {
	o := New(prototype)
	data := &FunctionData{Name: name, Length: length, BoundThis: boundThis, BoundArgs: boundArgs, BoundTarget: target}
	methods := InternalMethods{
		Call: func(_ *Object, _ value.Value, args []value.Value) (value.Value, error) {
			return target.Call(boundThis, append(append([]value.Value(nil), boundArgs...), args...))
		},
	}
	if target.IsConstructor() {
		methods.Construct = func(_ *Object, args []value.Value, newTarget *Object) (value.Value, error) {
			return target.Construct(append(append([]value.Value(nil), boundArgs...), args...), newTarget)
		}
	}
	o.SetExotic(KindBoundFunction, "Function", data, methods)
	o.rawDefine(NewPropertyKeyFromString("name"), property{value: value.String("bound " + name)}, AttrConfigurable)
	o.rawDefine(NewPropertyKeyFromString("length"), property{value: value.Int32(int32(length))}, AttrConfigurable)
	return o
}
