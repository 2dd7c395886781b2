package jsvm

import (
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/realm"
	"github.com/jsvm-project/jsvm/internal/value"
)

// Method describes one prototype or static method a host-defined Class
// exposes, carrying the declared arity NativeFunction.length reads from
// (ECMA-262 10.2.9), the same (name, length, fn) triple
// Context.RegisterGlobalBuiltinCallable takes for a bare function.
type Method struct {
	Name   string
	Length int
	Fn     NativeFunction
}

// Class describes a host-implemented constructor for RegisterGlobalClass:
// a `new Name(...)` call runs Construct, building one instance's Go-side
// state, and instances dispatch Methods/StaticMethods the way a builtin
// like Map or RegExp does in internal/realm's installXxxIntrinsics
// functions. Class has no Go-side state of its own; it is a declarative
// blueprint consumed once by RegisterGlobalClass.
type Class struct {
	Name          string
	Length        int
	Construct     func(args []value.Value, newTarget *object.Object) (value.Value, error)
	Methods       []Method
	StaticMethods []Method
}

// build realizes a Class as a constructor object wired into r's prototype
// chain, following newErrorConstructor's (internal/realm/error_intrinsics.go)
// call+construct NewCompiledFunction pattern.
func (c Class) build(r *realm.Realm) (*object.Object, error) {
	proto := object.New(r.ObjectPrototype())
	data := &object.FunctionData{Name: c.Name, Length: c.Length}

	construct := c.Construct
	if construct == nil {
		construct = func(args []value.Value, newTarget *object.Object) (value.Value, error) {
			return value.Object(object.New(proto)), nil
		}
	}

	ctor := object.NewCompiledFunction(r.FunctionPrototype(), data,
		func(this value.Value, args []value.Value) (value.Value, error) {
			return value.Value{}, &ConstructOnlyError{Name: c.Name}
		},
		construct,
	)

	defProperty := func(o *object.Object, name string, length int, fn NativeFunction) {
		method := object.NewNativeFunction(r.FunctionPrototype(), name, length, fn)
		o.DefineOwnProperty(object.NewPropertyKeyFromString(name), object.Descriptor{
			HasValue: true, Value: value.Object(method), Writable: true, Configurable: true,
			HasWritable: true, HasConfigurable: true,
		})
	}
	for _, m := range c.Methods {
		defProperty(proto, m.Name, m.Length, m.Fn)
	}
	for _, m := range c.StaticMethods {
		defProperty(ctor, m.Name, m.Length, m.Fn)
	}

	ctor.DefineOwnProperty(object.NewPropertyKeyFromString("prototype"), object.Descriptor{
		HasValue: true, Value: value.Object(proto),
	})
	proto.DefineOwnProperty(object.NewPropertyKeyFromString("constructor"), object.Descriptor{
		HasValue: true, Value: value.Object(ctor), Writable: true, Configurable: true,
		HasWritable: true, HasConfigurable: true,
	})
	return ctor, nil
}

// ConstructOnlyError is returned when a host-registered Class is called
// without `new` (ECMA-262 forbids calling most builtin constructors as
// plain functions, e.g. `Map()` without `new`).
type ConstructOnlyError struct{ Name string }

func (e *ConstructOnlyError) Error() string {
	return "TypeError: Constructor " + e.Name + " requires 'new'"
}
