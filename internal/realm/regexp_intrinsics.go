package realm

import (
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// installRegExpIntrinsics wires RegExp.prototype.test/exec over
// internal/object's regexp2-backed RegExpData (spec.md supplemented
// feature: RegExp), following the same "native method reads o.Data" shape
// installMapSetIntrinsics uses for Map/Set.
func installRegExpIntrinsics(r *Realm) {
	p := r.RegExpProto
	defineMethod(p, r.FunctionProto, "test", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		data, ok2 := o.Data.(*object.RegExpData)
		if !ok || !ok2 {
			return value.Value{}, errTypeError("RegExp.prototype.test called on incompatible receiver")
		}
		s, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		m, err := data.Exec(s, 0)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(m != nil), nil
	})
	defineMethod(p, r.FunctionProto, "exec", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject().(*object.Object)
		data, ok2 := o.Data.(*object.RegExpData)
		if !ok || !ok2 {
			return value.Value{}, errTypeError("RegExp.prototype.exec called on incompatible receiver")
		}
		s, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		start := 0
		if data.Global() || data.Sticky() {
			start = data.LastIndex
		}
		m, err := data.Exec(s, start)
		if err != nil {
			return value.Value{}, err
		}
		if m == nil {
			if data.Global() || data.Sticky() {
				data.LastIndex = 0
			}
			return value.Null, nil
		}
		if data.Global() || data.Sticky() {
			data.LastIndex = m.Index + m.Length
		}
		out := object.NewArray(r.ArrayProto, uint32(len(m.Groups())))
		for i, g := range m.Groups() {
			out.DefineOwnProperty(object.PropertyKey{Kind: object.KeyIndex, Idx: uint32(i)}, object.Descriptor{
				HasValue: true, Value: value.String(g.String()), Writable: true, Enumerable: true, Configurable: true,
				HasWritable: true, HasEnumerable: true, HasConfigurable: true,
			})
		}
		defineValue(out, "index", value.Number(float64(m.Index)))
		defineValue(out, "input", value.String(s))
		return value.Object(out), nil
	})

	ctor := object.NewNativeFunction(r.FunctionProto, "RegExp", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		source, err := value.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Value{}, err
		}
		flags := ""
		if len(args) > 1 && !args[1].IsUndefined() {
			flags, err = value.ToStringValue(args[1])
			if err != nil {
				return value.Value{}, err
			}
		}
		o, err := object.NewRegExp(r.RegExpProto, source, flags)
		if err != nil {
			return value.Value{}, err
		}
		return value.Object(o), nil
	})
	defineValue(ctor, "prototype", value.Object(p))
	defineValue(p, "constructor", value.Object(ctor))
	defineValue(r.globalObject, "RegExp", value.Object(ctor))
}
