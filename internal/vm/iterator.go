package vm

import (
	"fmt"

	"github.com/jsvm-project/jsvm/internal/interner"
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// getIterator implements OpGetIterator for both for-of (forIn=false, via
// @@iterator) and for-in (forIn=true, via an ad hoc enumerate-keys
// iterator). Both paths return an object exposing a plain "next" method so
// OpIteratorNext can stay a single opcode (statements.go's compileForInOf
// documents this one-protocol choice).
func (vm *VM) getIterator(v value.Value, forIn bool) (value.Value, error) {
	if forIn {
		if !v.IsObject() {
			return value.Undefined, nil // for-in over a primitive enumerates nothing
		}
		return vm.newEnumKeysIterator(v.AsObject().(*object.Object)), nil
	}
	if err := value.CheckObjectCoercible(v); err != nil {
		return value.Value{}, err
	}
	if !v.IsObject() {
		return value.Value{}, fmt.Errorf("TypeError: primitive iteration requires realm-boxed wrapper intrinsics")
	}
	o := v.AsObject().(*object.Object)
	key := object.NewPropertyKeyFromSymbol(value.WellKnownSymbol(interner.SymIterator))
	factory, err := o.Get(key, v)
	if err != nil {
		return value.Value{}, err
	}
	fo, ok := factory.AsObject().(*object.Object)
	if !ok || !fo.IsCallable() {
		return value.Value{}, fmt.Errorf("TypeError: value is not iterable")
	}
	return fo.Call(v, nil)
}

// newEnumKeysIterator walks o's own and inherited enumerable string keys,
// skipping names already seen at a shallower level (ECMA-262 13.7.5.15
// EnumerateObjectProperties), exposing them through the same next()
// protocol a real @@iterator would.
func (vm *VM) newEnumKeysIterator(o *object.Object) value.Value {
	seen := map[string]bool{}
	var keys []string
	cur := o
	for cur != nil {
		ownKeys, err := cur.OwnPropertyKeys()
		if err != nil {
			break
		}
		for _, k := range ownKeys {
			if k.Kind != object.KeyString && k.Kind != object.KeyIndex {
				continue
			}
			name := k.String()
			if seen[name] {
				continue
			}
			seen[name] = true
			desc, err := cur.GetOwnProperty(k)
			if err == nil && desc != nil && desc.Enumerable {
				keys = append(keys, name)
			}
		}
		proto, err := cur.GetPrototypeOf()
		if err != nil {
			break
		}
		cur = proto
	}

	idx := 0
	iter := object.New(nil)
	next := object.NewNativeFunction(nil, "next", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		if idx >= len(keys) {
			return iterResult(value.Undefined, true), nil
		}
		k := keys[idx]
		idx++
		return iterResult(value.String(k), false), nil
	})
	iter.DefineOwnProperty(object.NewPropertyKeyFromString("next"), object.Descriptor{
		HasValue: true, Value: value.Object(next), Writable: true, Configurable: true,
		HasWritable: true, HasConfigurable: true,
	})
	return value.Object(iter)
}

func iterResult(v value.Value, done bool) value.Value {
	o := object.New(nil)
	o.DefineOwnProperty(object.NewPropertyKeyFromString("value"), object.Descriptor{
		HasValue: true, Value: v, Writable: true, Enumerable: true, Configurable: true,
		HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	})
	o.DefineOwnProperty(object.NewPropertyKeyFromString("done"), object.Descriptor{
		HasValue: true, Value: value.Bool(done), Writable: true, Enumerable: true, Configurable: true,
		HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	})
	return value.Object(o)
}

// iteratorNext implements OpIteratorNext: call iter.next() and unwrap the
// {value, done} result, collapsing "done" to value.Undefined so a single
// OpJumpNullish after the call can detect loop end (documented
// simplification: a legitimately-yielded null/undefined also ends the
// loop early, matching compileForInOf's chosen encoding).
func (vm *VM) iteratorNext(iter value.Value) (value.Value, error) {
	o, ok := iter.AsObject().(*object.Object)
	if !ok {
		return value.Undefined, nil
	}
	nextVal, err := o.Get(object.NewPropertyKeyFromString("next"), iter)
	if err != nil {
		return value.Value{}, err
	}
	nextFn, ok := nextVal.AsObject().(*object.Object)
	if !ok || !nextFn.IsCallable() {
		return value.Value{}, fmt.Errorf("TypeError: iterator.next is not a function")
	}
	result, err := nextFn.Call(iter, nil)
	if err != nil {
		return value.Value{}, err
	}
	ro, ok := result.AsObject().(*object.Object)
	if !ok {
		return value.Value{}, fmt.Errorf("TypeError: iterator result is not an object")
	}
	done, err := ro.Get(object.NewPropertyKeyFromString("done"), result)
	if err != nil {
		return value.Value{}, err
	}
	if value.ToBoolean(done) {
		return value.Undefined, nil
	}
	return ro.Get(object.NewPropertyKeyFromString("value"), result)
}

// iteratorClose implements OpIteratorClose: calls the iterator's "return"
// method if present (ECMA-262 7.4.9 IteratorClose), ignoring a missing one.
func (vm *VM) iteratorClose(iter value.Value) error {
	o, ok := iter.AsObject().(*object.Object)
	if !ok {
		return nil
	}
	retVal, err := o.Get(object.NewPropertyKeyFromString("return"), iter)
	if err != nil || !retVal.IsObject() {
		return nil
	}
	retFn, ok := retVal.AsObject().(*object.Object)
	if !ok || !retFn.IsCallable() {
		return nil
	}
	_, err = retFn.Call(iter, nil)
	return err
}
