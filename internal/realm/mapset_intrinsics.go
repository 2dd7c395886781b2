package realm

import (
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

func orderedMapOf(this value.Value, ctor string) (*object.OrderedMap, error) {
	o, ok := this.AsObject().(*object.Object)
	if !ok {
		return nil, errTypeError(ctor + ".prototype method called on non-object")
	}
	switch d := o.Data.(type) {
	case *object.MapData:
		return d.Map, nil
	case *object.SetData:
		return d.Map, nil
	default:
		return nil, errTypeError(ctor + ".prototype method called on incompatible receiver")
	}
}

// installMapSetIntrinsics wires Map/Set over internal/object's shared
// OrderedMap payload (spec.md supplemented feature), grounded the same way
// installArrayIntrinsics grounds array methods on the array-exotic data.
// WeakMap gets only a global constructor; its objects inherit from
// Object.prototype, so no WeakMap methods are reachable from script.
func installMapSetIntrinsics(r *Realm) {
	mp := r.MapProto
	defineMethod(mp, r.FunctionProto, "get", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Map")
		if err != nil {
			return value.Value{}, err
		}
		v, ok := m.Get(arg(args, 0))
		if !ok {
			return value.Undefined, nil
		}
		return v, nil
	})
	defineMethod(mp, r.FunctionProto, "set", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Map")
		if err != nil {
			return value.Value{}, err
		}
		m.Set(arg(args, 0), arg(args, 1))
		return this, nil
	})
	defineMethod(mp, r.FunctionProto, "has", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Map")
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(m.Has(arg(args, 0))), nil
	})
	defineMethod(mp, r.FunctionProto, "delete", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Map")
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(m.Delete(arg(args, 0))), nil
	})
	defineMethod(mp, r.FunctionProto, "clear", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Map")
		if err != nil {
			return value.Value{}, err
		}
		m.Clear()
		return value.Undefined, nil
	})
	defineMethod(mp, r.FunctionProto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Map")
		if err != nil {
			return value.Value{}, err
		}
		for _, e := range m.Entries() {
			if _, err := callFn(arg(args, 0), nil, e.Value, e.Key, this); err != nil {
				return value.Value{}, err
			}
		}
		return value.Undefined, nil
	})

	mapCtor := object.NewNativeFunction(r.FunctionProto, "Map", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		m := object.NewMapObject(r.MapProto)
		if len(args) > 0 && !args[0].IsNullish() {
			entries, err := toGoSlice(args[0])
			if err != nil {
				return value.Value{}, err
			}
			data := m.Data.(*object.MapData)
			for _, pair := range entries {
				kv, err := toGoSlice(pair)
				if err != nil {
					return value.Value{}, err
				}
				if len(kv) > 0 {
					var v value.Value
					if len(kv) > 1 {
						v = kv[1]
					}
					data.Map.Set(kv[0], v)
				}
			}
		}
		return value.Object(m), nil
	})
	defineValue(mapCtor, "prototype", value.Object(mp))
	defineValue(mp, "constructor", value.Object(mapCtor))
	defineValue(r.globalObject, "Map", value.Object(mapCtor))

	sp := r.SetProto
	defineMethod(sp, r.FunctionProto, "add", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Set")
		if err != nil {
			return value.Value{}, err
		}
		v := arg(args, 0)
		m.Set(v, v)
		return this, nil
	})
	defineMethod(sp, r.FunctionProto, "has", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Set")
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(m.Has(arg(args, 0))), nil
	})
	defineMethod(sp, r.FunctionProto, "delete", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Set")
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(m.Delete(arg(args, 0))), nil
	})
	defineMethod(sp, r.FunctionProto, "clear", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Set")
		if err != nil {
			return value.Value{}, err
		}
		m.Clear()
		return value.Undefined, nil
	})
	defineMethod(sp, r.FunctionProto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		m, err := orderedMapOf(this, "Set")
		if err != nil {
			return value.Value{}, err
		}
		for _, e := range m.Entries() {
			if _, err := callFn(arg(args, 0), nil, e.Key, e.Key, this); err != nil {
				return value.Value{}, err
			}
		}
		return value.Undefined, nil
	})

	setCtor := object.NewNativeFunction(r.FunctionProto, "Set", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s := object.NewSetObject(r.SetProto)
		if len(args) > 0 && !args[0].IsNullish() {
			elems, err := toGoSlice(args[0])
			if err != nil {
				return value.Value{}, err
			}
			data := s.Data.(*object.SetData)
			for _, v := range elems {
				data.Map.Set(v, v)
			}
		}
		return value.Object(s), nil
	})
	defineValue(setCtor, "prototype", value.Object(sp))
	defineValue(sp, "constructor", value.Object(setCtor))
	defineValue(r.globalObject, "Set", value.Object(setCtor))

	weakMapCtor := object.NewNativeFunction(r.FunctionProto, "WeakMap", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Object(object.NewWeakMapObject(r.ObjectProto)), nil
	})
	defineValue(r.globalObject, "WeakMap", value.Object(weakMapCtor))
}
