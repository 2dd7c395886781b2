// Package realm assembles one ECMAScript realm (spec.md §5): the global
// object, intrinsic prototypes, and the VM instance bound to them. A Realm
// implements internal/vm.GlobalAccess so the dispatch loop can resolve
// global bindings and primitive-wrapper property access without importing
// this package back.
package realm

import (
	"github.com/go-logr/logr"

	"github.com/jsvm-project/jsvm/internal/gc"
	"github.com/jsvm-project/jsvm/internal/interner"
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
	"github.com/jsvm-project/jsvm/internal/vm"
)

// Realm owns one global object, its intrinsic prototype chain, and the
// interpreter state needed to evaluate code against them (spec.md §5
// "Realm record"). Every jsvm.Context (root package) owns exactly one Realm; a
// multi-realm host would construct several, the way the teacher's
// wazero.Runtime can instantiate several independent Store namespaces.
type Realm struct {
	Interner *interner.Interner
	Heap     *gc.Heap
	VM       *vm.VM
	Log      logr.Logger

	globalObject *object.Object

	ObjectProto   *object.Object
	FunctionProto *object.Object
	ArrayProto    *object.Object
	StringProto   *object.Object
	NumberProto   *object.Object
	BooleanProto  *object.Object
	SymbolProto   *object.Object
	ErrorProto    *object.Object
	RegExpProto   *object.Object
	MapProto      *object.Object
	SetProto      *object.Object
	PromiseProto  *object.Object

	errorProtos map[string]*object.Object // TypeError.prototype, RangeError.prototype, ...
}

// New builds a Realm with its full intrinsic prototype chain and global
// object wired up, then binds a fresh VM to it (internal/vm.New). log may
// be logr.Discard(); it drives the same V-level diagnostic convention the
// teacher's internal/logging.Logger wraps (spec.md's ambient logging
// section); the console globals log through it, formatting object
// arguments with object.Dump (internal/object/dump.go).
func New(in *interner.Interner, log logr.Logger) *Realm {
	r := &Realm{Interner: in, Log: log, errorProtos: map[string]*object.Object{}}
	r.Heap = gc.NewHeap(func(stats gc.Stats) {
		r.Log.V(1).Info("gc collection", "scanned", stats.Scanned, "marked", stats.Marked, "swept", stats.Swept)
	})

	r.ObjectProto = object.New(nil)
	r.FunctionProto = object.New(r.ObjectProto)
	r.ArrayProto = object.New(r.ObjectProto)
	r.StringProto = object.New(r.ObjectProto)
	r.NumberProto = object.New(r.ObjectProto)
	r.BooleanProto = object.New(r.ObjectProto)
	r.SymbolProto = object.New(r.ObjectProto)
	r.ErrorProto = object.New(r.ObjectProto)
	r.RegExpProto = object.New(r.ObjectProto)
	r.MapProto = object.New(r.ObjectProto)
	r.SetProto = object.New(r.ObjectProto)
	r.PromiseProto = object.New(r.ObjectProto)

	r.globalObject = object.New(r.ObjectProto)

	r.VM = vm.New(r, r.Heap, in)

	installObjectIntrinsics(r)
	installFunctionIntrinsics(r)
	installArrayIntrinsics(r)
	installStringIntrinsics(r)
	installNumberIntrinsics(r)
	installErrorIntrinsics(r)
	installMathIntrinsics(r)
	installGlobals(r)
	return r
}

func (r *Realm) GlobalObject() *object.Object     { return r.globalObject }
func (r *Realm) ObjectPrototype() *object.Object   { return r.ObjectProto }
func (r *Realm) FunctionPrototype() *object.Object { return r.FunctionProto }
func (r *Realm) ArrayPrototype() *object.Object    { return r.ArrayProto }

// GetGlobal/SetGlobal implement vm.GlobalAccess for BindingLocator.GlobalScope
// resolution: script-level var/function declarations and bare-identifier
// assignment both live as ordinary properties of the global object, the
// same unification ECMA-262 10.2.1 "Global Environment Record" specifies
// between declarative and object-backed global bindings.
func (r *Realm) GetGlobal(name interner.Symbol) (value.Value, error) {
	key := object.NewPropertyKeyFromString(r.Interner.Resolve(name))
	has, err := r.globalObject.HasProperty(key)
	if err != nil {
		return value.Value{}, err
	}
	if !has {
		return value.Value{}, &ReferenceError{Name: r.Interner.Resolve(name)}
	}
	return r.globalObject.Get(key, value.Object(r.globalObject))
}

func (r *Realm) SetGlobal(name interner.Symbol, v value.Value) error {
	key := object.NewPropertyKeyFromString(r.Interner.Resolve(name))
	_, err := r.globalObject.Set(key, v, value.Object(r.globalObject))
	return err
}

// ReferenceError is returned by GetGlobal for an undeclared identifier.
// The root jsvm package's Eval returns it wrapped with fmt.Errorf (%w); no
// JS Error object is built from it.
type ReferenceError struct{ Name string }

func (e *ReferenceError) Error() string { return "ReferenceError: " + e.Name + " is not defined" }

// GetPrimitiveProperty implements vm.GlobalAccess's primitive-wrapper
// boxing seam: property access on a string/number/boolean/symbol value
// reads from the corresponding prototype's methods plus a couple of
// directly-computed own properties (string indexing, "length") rather
// than allocating a full wrapper object per access.
func (r *Realm) GetPrimitiveProperty(v value.Value, key object.PropertyKey) (value.Value, error) {
	switch {
	case v.IsString():
		s := v.AsString()
		if key.Kind == object.KeyString && key.Str == "length" {
			return value.Int32(int32(s.Utf16Length())), nil
		}
		if key.Kind == object.KeyIndex {
			if c, ok := s.CharCodeAt(int(key.Idx)); ok {
				return value.String(string(rune(c))), nil
			}
			return value.Undefined, nil
		}
		return r.StringProto.Get(key, v)
	case v.IsNumber():
		return r.NumberProto.Get(key, v)
	case v.IsBool():
		return r.BooleanProto.Get(key, v)
	case v.IsSymbol():
		return r.SymbolProto.Get(key, v)
	}
	return value.Undefined, nil
}
