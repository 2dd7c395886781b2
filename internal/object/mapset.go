package object

import "github.com/jsvm-project/jsvm/internal/value"

// mapEntry is one slot in an OrderedMap's backing store. A deleted entry
// keeps its slot (marked deleted) so live iterators walking the entries
// slice don't have their indices invalidated mid-iteration, matching
// ECMA-262's requirement that Map/Set iteration order is insertion order
// even across deletions (spec.md supplemented feature: Map/Set).
type mapEntry struct {
	key     value.Value
	val     value.Value // unused for Set
	deleted bool
}

// OrderedMap backs both the Map and Set exotic kinds: Set is simply an
// OrderedMap whose val is never read.
type OrderedMap struct {
	entries []mapEntry
	index   map[mapKey]int
}

// mapKey adapts value.Value into a comparable Go map key using
// SameValueZero semantics (ECMA-262 24.1.1.2): numbers compare by float64
// bit pattern (NaN canonicalized), everything else by tag-appropriate
// identity.
type mapKey struct {
	tag  value.Tag
	num  float64
	str  string
	ptr  any
}

func toMapKey(v value.Value) mapKey {
	switch {
	case v.IsNumber():
		f := v.AsFloat64()
		if f != f { // NaN: one key for every NaN, distinct from 0
			return mapKey{tag: value.TagFloat64, str: "NaN"}
		}
		if f == 0 {
			f = 0 // normalize -0 to +0 per SameValueZero
		}
		return mapKey{tag: value.TagFloat64, num: f}
	case v.IsString():
		return mapKey{tag: value.TagString, str: v.AsString().Go()}
	case v.IsBigInt():
		return mapKey{tag: value.TagBigInt, str: v.AsBigInt().String()}
	case v.IsBool():
		return mapKey{tag: value.TagBool, num: boolNum(v.AsBool())}
	case v.IsSymbol():
		return mapKey{tag: value.TagSymbol, ptr: v.AsSymbol()}
	case v.IsObject():
		return mapKey{tag: value.TagObject, ptr: v.AsObject()}
	default:
		return mapKey{tag: v.Tag()}
	}
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[mapKey]int)}
}

func (m *OrderedMap) Get(key value.Value) (value.Value, bool) {
	if i, ok := m.index[toMapKey(key)]; ok {
		return m.entries[i].val, true
	}
	return value.Value{}, false
}

func (m *OrderedMap) Has(key value.Value) bool {
	_, ok := m.index[toMapKey(key)]
	return ok
}

func (m *OrderedMap) Set(key, val value.Value) {
	mk := toMapKey(key)
	if i, ok := m.index[mk]; ok {
		m.entries[i].val = val
		return
	}
	m.index[mk] = len(m.entries)
	m.entries = append(m.entries, mapEntry{key: key, val: val})
}

func (m *OrderedMap) Delete(key value.Value) bool {
	mk := toMapKey(key)
	i, ok := m.index[mk]
	if !ok {
		return false
	}
	m.entries[i].deleted = true
	delete(m.index, mk)
	return true
}

func (m *OrderedMap) Size() int { return len(m.index) }

func (m *OrderedMap) Clear() {
	m.entries = nil
	m.index = make(map[mapKey]int)
}

// Entries returns live entries in insertion order, for iterator creation
// and forEach.
func (m *OrderedMap) Entries() []struct{ Key, Value value.Value } {
	out := make([]struct{ Key, Value value.Value }, 0, len(m.index))
	for _, e := range m.entries {
		if !e.deleted {
			out = append(out, struct{ Key, Value value.Value }{e.key, e.val})
		}
	}
	return out
}

// MapData / SetData wrap an OrderedMap as exotic object data.
type MapData struct{ Map *OrderedMap }
type SetData struct{ Map *OrderedMap }

func (*MapData) exoticData() {}
func (*SetData) exoticData() {}

func NewMapObject(prototype *Object) *Object {
	o := New(prototype)
	o.SetExotic(KindMap, "Map", &MapData{Map: NewOrderedMap()}, InternalMethods{})
	return o
}

func NewSetObject(prototype *Object) *Object {
	o := New(prototype)
	o.SetExotic(KindSet, "Set", &SetData{Map: NewOrderedMap()}, InternalMethods{})
	return o
}

// WeakMapData holds entries keyed by object identity in a plain Go map. It
// is not connected to internal/gc: no gc.Ephemeron backs it, and since it
// has no TraceExtra the collector traces neither its keys nor its values.
type WeakMapData struct {
	entries map[*Object]value.Value
}

func (*WeakMapData) exoticData() {}

func NewWeakMapObject(prototype *Object) *Object {
	o := New(prototype)
	o.SetExotic(KindWeakMap, "WeakMap", &WeakMapData{entries: make(map[*Object]value.Value)}, InternalMethods{})
	return o
}

func (d *WeakMapData) Get(key *Object) (value.Value, bool) {
	v, ok := d.entries[key]
	return v, ok
}
func (d *WeakMapData) Set(key *Object, v value.Value) { d.entries[key] = v }
func (d *WeakMapData) Delete(key *Object) bool {
	if _, ok := d.entries[key]; !ok {
		return false
	}
	delete(d.entries, key)
	return true
}
func (d *WeakMapData) Has(key *Object) bool { _, ok := d.entries[key]; return ok }
