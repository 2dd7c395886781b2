package realm

import (
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// errorKinds lists the native error constructors ECMA-262 20.5.6 derives
// from %Error.prototype%: each gets its own .prototype parented to
// Error.prototype, mirroring the teacher's own layered sentinel-error
// style (one concrete type per failure class) translated into the
// language's own subclassing idiom.
var errorKinds = []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "URIError", "EvalError", "AggregateError"}

// installErrorIntrinsics builds Error.prototype plus the NativeError
// subclasses and populates Realm.errorProtos. Errors raised inside
// internal/vm are not built through these constructors: vm/exceptions.go
// turns a Go error into a plain string value, which is not an instance of
// any of them (see DESIGN.md).
func installErrorIntrinsics(r *Realm) {
	p := r.ErrorProto
	defineValue(p, "name", value.String("Error"))
	defineValue(p, "message", value.String(""))
	defineMethod(p, r.FunctionProto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		if !ok {
			return value.String("Error"), nil
		}
		name := "Error"
		if nv, err := o.Get(object.NewPropertyKeyFromString("name"), this); err == nil && !nv.IsUndefined() {
			if s, err := value.ToStringValue(nv); err == nil {
				name = s
			}
		}
		msg := ""
		if mv, err := o.Get(object.NewPropertyKeyFromString("message"), this); err == nil && !mv.IsUndefined() {
			if s, err := value.ToStringValue(mv); err == nil {
				msg = s
			}
		}
		if msg == "" {
			return value.String(name), nil
		}
		return value.String(name + ": " + msg), nil
	})

	errCtor := newErrorConstructor(r, "Error", p)
	defineValue(r.globalObject, "Error", value.Object(errCtor))

	for _, kind := range errorKinds {
		proto := object.New(p)
		defineValue(proto, "name", value.String(kind))
		ctor := newErrorConstructor(r, kind, proto)
		ctor.SetPrototypeOf(errCtor)
		defineValue(r.globalObject, kind, value.Object(ctor))
		r.errorProtos[kind] = proto
	}
}

// newErrorConstructor builds a callable+constructible Error-family object:
// called either as `new Name(msg)` or bare `Name(msg)`, both produce a
// fresh instance (ECMA-262 20.5.1.1) since Error ignores NewTarget for
// anything beyond prototype selection, which this engine doesn't yet
// thread through native constructors.
func newErrorConstructor(r *Realm, name string, proto *object.Object) *object.Object {
	build := func(args []value.Value) (value.Value, error) {
		inst := object.New(proto)
		if len(args) > 0 && !args[0].IsUndefined() {
			msg, err := value.ToStringValue(args[0])
			if err != nil {
				return value.Value{}, err
			}
			defineValue(inst, "message", value.String(msg))
		}
		return value.Object(inst), nil
	}
	data := &object.FunctionData{Name: name, Length: 1}
	fn := object.NewCompiledFunction(r.FunctionProto, data,
		func(this value.Value, args []value.Value) (value.Value, error) { return build(args) },
		func(args []value.Value, newTarget *object.Object) (value.Value, error) { return build(args) },
	)
	defineValue(fn, "prototype", value.Object(proto))
	defineValue(proto, "constructor", value.Object(fn))
	return fn
}
