package object

import "github.com/jsvm-project/jsvm/internal/value"

// ArrayData marks an Object as array-exotic; length itself lives as an
// ordinary own property ("length") so generic property enumeration sees it
// without special-casing, per ECMA-262 10.4.2.
type ArrayData struct{}

func (ArrayData) exoticData() {}

// NewArray builds an array-exotic object with the given prototype and
// initial length.
func NewArray(prototype *Object, length uint32) *Object {
	o := New(prototype)
	o.SetExotic(KindArray, "Array", ArrayData{}, InternalMethods{
		DefineOwnProperty: arrayDefineOwnProperty,
	})
	o.rawDefine(NewPropertyKeyFromString("length"),
		property{value: value.Int32(int32(length))}, AttrWritable)
	return o
}

func arrayLength(o *Object) uint32 {
	p, ok := o.rawGetOwn(NewPropertyKeyFromString("length"))
	if !ok {
		return 0
	}
	return uint32(p.value.AsFloat64())
}

// arrayDefineOwnProperty implements ECMA-262 10.4.2.1: defining an integer
// index past the current length grows "length"; defining "length" itself
// truncates (deletes) any indices at or above the new value if writable.
func arrayDefineOwnProperty(o *Object, key PropertyKey, desc Descriptor) (bool, error) {
	lengthKey := NewPropertyKeyFromString("length")
	if key.Equal(lengthKey) {
		if !desc.HasValue {
			return ordinaryDefineOwnProperty(o, key, desc)
		}
		newLen, err := value.ToUint32(desc.Value)
		if err != nil {
			return false, err
		}
		oldLen := arrayLength(o)
		if ok, err := ordinaryDefineOwnProperty(o, key, desc); !ok || err != nil {
			return ok, err
		}
		if newLen < oldLen {
			for i := oldLen; i > newLen; i-- {
				o.rawDelete(PropertyKey{Kind: KeyIndex, Idx: i - 1})
			}
		}
		return true, nil
	}
	if key.Kind == KeyIndex {
		oldLen := arrayLength(o)
		if key.Idx >= oldLen {
			lenDesc, _ := o.GetOwnProperty(lengthKey)
			if lenDesc != nil && !lenDesc.Writable {
				return false, nil
			}
			ok, err := ordinaryDefineOwnProperty(o, key, desc)
			if !ok || err != nil {
				return ok, err
			}
			o.rawDefine(lengthKey, property{value: value.Int32(int32(key.Idx + 1))}, AttrWritable)
			return true, nil
		}
	}
	return ordinaryDefineOwnProperty(o, key, desc)
}
