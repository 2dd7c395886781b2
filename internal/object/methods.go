package object

import "github.com/jsvm-project/jsvm/internal/value"

// ordinaryMethods implements ECMA-262 10.1's ordinary object internal
// methods. Every exotic kind's vtable falls back to these for whichever
// methods it doesn't override (see mergeMethods in object.go).
var ordinaryMethods = InternalMethods{
	GetPrototypeOf:    ordinaryGetPrototypeOf,
	SetPrototypeOf:    ordinarySetPrototypeOf,
	IsExtensible:      ordinaryIsExtensible,
	PreventExtensions: ordinaryPreventExtensions,
	GetOwnProperty:    ordinaryGetOwnProperty,
	DefineOwnProperty: ordinaryDefineOwnProperty,
	HasProperty:       ordinaryHasProperty,
	Get:               ordinaryGet,
	Set:               ordinarySet,
	Delete:            ordinaryDelete,
	OwnPropertyKeys:   ordinaryOwnPropertyKeys,
}

func ordinaryGetPrototypeOf(o *Object) (*Object, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.prototype, nil
}

func ordinarySetPrototypeOf(o *Object, proto *Object) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.prototype == proto {
		return true, nil
	}
	if !o.extensible {
		return false, nil
	}
	// Cycle check (ECMA-262 10.1.2.1 step 7).
	for p := proto; p != nil; {
		if p == o {
			return false, nil
		}
		gp, err := p.GetPrototypeOf()
		if err != nil {
			return false, err
		}
		p = gp
	}
	o.prototype = proto
	return true, nil
}

func ordinaryIsExtensible(o *Object) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.extensible, nil
}

func ordinaryPreventExtensions(o *Object) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extensible = false
	return true, nil
}

func ordinaryGetOwnProperty(o *Object, key PropertyKey) (*Descriptor, error) {
	p, ok := o.rawGetOwn(key)
	if !ok {
		return nil, nil
	}
	s, _ := o.shape.Lookup(key)
	d := &Descriptor{
		Enumerable:    s.Attrs()&AttrEnumerable != 0,
		Configurable:  s.Attrs()&AttrConfigurable != 0,
		HasEnumerable: true, HasConfigurable: true,
	}
	if p.isAccessor {
		d.Get, d.Set = p.getter, p.setter
		d.HasGet, d.HasSet = true, true
	} else {
		d.Value = p.value
		d.Writable = s.Attrs()&AttrWritable != 0
		d.HasValue, d.HasWritable = true, true
	}
	return d, nil
}

// ordinaryDefineOwnProperty implements ECMA-262 10.1.6.3's validation
// against the current descriptor, then writes through rawDefine.
func ordinaryDefineOwnProperty(o *Object, key PropertyKey, desc Descriptor) (bool, error) {
	current, err := o.GetOwnProperty(key)
	if err != nil {
		return false, err
	}
	if current == nil {
		ext, _ := o.IsExtensible()
		if !ext {
			return false, nil
		}
		attrs := Attributes(0)
		if desc.Writable {
			attrs |= AttrWritable
		}
		if desc.Enumerable {
			attrs |= AttrEnumerable
		}
		if desc.Configurable {
			attrs |= AttrConfigurable
		}
		p := property{value: desc.Value}
		if desc.HasGet || desc.HasSet {
			p = property{getter: desc.Get, setter: desc.Set, isAccessor: true}
		}
		o.rawDefine(key, p, attrs)
		return true, nil
	}
	if !current.Configurable {
		if desc.HasConfigurable && desc.Configurable {
			return false, nil
		}
		if desc.HasEnumerable && desc.Enumerable != current.Enumerable {
			return false, nil
		}
		if (desc.HasGet || desc.HasSet) != (current.HasGet || current.HasSet) {
			return false, nil
		}
		if !current.Writable && desc.HasWritable && desc.Writable {
			return false, nil
		}
		if !current.Writable && desc.HasValue && !value.SameValue(desc.Value, current.Value) {
			return false, nil
		}
	}
	enumerable := current.Enumerable
	if desc.HasEnumerable {
		enumerable = desc.Enumerable
	}
	configurable := current.Configurable
	if desc.HasConfigurable {
		configurable = desc.Configurable
	}
	attrs := Attributes(0)
	if enumerable {
		attrs |= AttrEnumerable
	}
	if configurable {
		attrs |= AttrConfigurable
	}
	if desc.HasGet || desc.HasSet || (current.HasGet && !desc.HasValue) {
		g, s := current.Get, current.Set
		if desc.HasGet {
			g = desc.Get
		}
		if desc.HasSet {
			s = desc.Set
		}
		o.rawDefine(key, property{getter: g, setter: s, isAccessor: true}, attrs)
		return true, nil
	}
	writable := current.Writable
	if desc.HasWritable {
		writable = desc.Writable
	}
	if writable {
		attrs |= AttrWritable
	}
	v := current.Value
	if desc.HasValue {
		v = desc.Value
	}
	o.rawDefine(key, property{value: v}, attrs)
	return true, nil
}

func ordinaryHasProperty(o *Object, key PropertyKey) (bool, error) {
	own, err := o.GetOwnProperty(key)
	if err != nil {
		return false, err
	}
	if own != nil {
		return true, nil
	}
	proto, err := o.GetPrototypeOf()
	if err != nil {
		return false, err
	}
	if proto == nil {
		return false, nil
	}
	return proto.HasProperty(key)
}

func ordinaryGet(o *Object, key PropertyKey, receiver value.Value) (value.Value, error) {
	desc, err := o.GetOwnProperty(key)
	if err != nil {
		return value.Value{}, err
	}
	if desc == nil {
		proto, err := o.GetPrototypeOf()
		if err != nil {
			return value.Value{}, err
		}
		if proto == nil {
			return value.Undefined, nil
		}
		return proto.Get(key, receiver)
	}
	if desc.HasGet || desc.HasSet {
		if desc.Get.IsUndefined() {
			return value.Undefined, nil
		}
		fn, ok := desc.Get.AsObject().(*Object)
		if !ok {
			return value.Undefined, nil
		}
		return fn.Call(receiver, nil)
	}
	return desc.Value, nil
}

func ordinarySet(o *Object, key PropertyKey, v value.Value, receiver value.Value) (bool, error) {
	desc, err := o.GetOwnProperty(key)
	if err != nil {
		return false, err
	}
	if desc == nil {
		proto, err := o.GetPrototypeOf()
		if err != nil {
			return false, err
		}
		if proto != nil {
			return proto.Set(key, v, receiver)
		}
		desc = &Descriptor{HasValue: true, Writable: true, Enumerable: true, Configurable: true}
	}
	if desc.HasGet || desc.HasSet {
		if desc.Set.IsUndefined() {
			return false, nil
		}
		fn, ok := desc.Set.AsObject().(*Object)
		if !ok {
			return false, nil
		}
		_, err := fn.Call(receiver, []value.Value{v})
		return err == nil, err
	}
	if !desc.Writable {
		return false, nil
	}
	recvObj, ok := receiver.AsObject().(*Object)
	if !ok {
		return false, nil
	}
	if recvObj != o {
		existing, err := recvObj.GetOwnProperty(key)
		if err != nil {
			return false, err
		}
		if existing != nil {
			if existing.HasGet || existing.HasSet || !existing.Writable {
				return false, nil
			}
			return recvObj.DefineOwnProperty(key, Descriptor{HasValue: true, Value: v})
		}
		return recvObj.DefineOwnProperty(key, Descriptor{
			HasValue: true, Value: v, Writable: true, Enumerable: true, Configurable: true,
			HasWritable: true, HasEnumerable: true, HasConfigurable: true,
		})
	}
	return o.DefineOwnProperty(key, Descriptor{HasValue: true, Value: v})
}

func ordinaryDelete(o *Object, key PropertyKey) (bool, error) {
	desc, err := o.GetOwnProperty(key)
	if err != nil {
		return false, err
	}
	if desc == nil {
		return true, nil
	}
	if !desc.Configurable {
		return false, nil
	}
	return o.rawDelete(key), nil
}

// ordinaryOwnPropertyKeys returns keys in ECMA-262 [[OwnPropertyKeys]]
// ordinary order: integer indices ascending, then strings in insertion
// order, then symbols in insertion order.
func ordinaryOwnPropertyKeys(o *Object) ([]PropertyKey, error) {
	o.mu.RLock()
	keys := o.shape.Keys()
	o.mu.RUnlock()

	var indices, strs, syms []PropertyKey
	for _, k := range keys {
		switch k.Kind {
		case KeyIndex:
			indices = append(indices, k)
		case KeyString:
			strs = append(strs, k)
		case KeySymbol:
			syms = append(syms, k)
		}
	}
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && indices[j].Idx < indices[j-1].Idx; j-- {
			indices[j], indices[j-1] = indices[j-1], indices[j]
		}
	}
	out := make([]PropertyKey, 0, len(keys))
	out = append(out, indices...)
	out = append(out, strs...)
	out = append(out, syms...)
	return out, nil
}
