package object

import "sync"

// Attributes packs the three ECMA-262 property flags into a byte.
type Attributes uint8

const (
	AttrWritable     Attributes = 1 << 0
	AttrEnumerable   Attributes = 1 << 1
	AttrConfigurable Attributes = 1 << 2

	AttrDefault = AttrWritable | AttrEnumerable | AttrConfigurable
)

// Shape is one node of the immutable, append-only prefix tree that backs
// the object model's inline caches (spec.md §3.4/§4.5). Objects sharing a
// transition history share a Shape by pointer identity, so an inline cache
// keyed on (shape pointer, slot index) stays valid across every object that
// reached this shape the same way — mirroring how the teacher shares one
// wasm.FunctionType/wasm.Module across every instance created from it
// instead of copying per instantiation.
type Shape struct {
	parent *Shape
	key    PropertyKey
	attrs  Attributes
	slot   int // storage slot index this transition claims

	mu        sync.Mutex
	children  map[PropertyKey]*Shape
}

// RootShape is the empty shape every new ordinary object starts from.
var RootShape = &Shape{slot: -1}

// Slot returns the storage slot this shape's own property occupies, or -1
// for RootShape.
func (s *Shape) Slot() int { return s.slot }

// Key returns the property key this shape transition added.
func (s *Shape) Key() PropertyKey { return s.key }

// Attrs returns the attributes the transition recorded.
func (s *Shape) Attrs() Attributes { return s.attrs }

// Size is the number of storage slots an object at this shape occupies.
func (s *Shape) Size() int { return s.slot + 1 }

// Transition returns the child shape reached by adding key with attrs,
// creating and caching it if this is the first object to take this
// transition. Shapes are structurally shared: two objects that add the same
// keys in the same order from the same starting shape end up pointing at
// the identical *Shape.
func (s *Shape) Transition(key PropertyKey, attrs Attributes) *Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.children == nil {
		s.children = make(map[PropertyKey]*Shape)
	}
	if child, ok := s.children[key]; ok && child.attrs == attrs {
		return child
	}
	child := &Shape{parent: s, key: key, attrs: attrs, slot: s.slot + 1}
	s.children[key] = child
	return child
}

// Lookup walks from s toward the root looking for key, returning the shape
// that introduced it (whose Slot() gives the storage index) and whether it
// was found. This is the shape-tree equivalent of a linear property scan;
// internal/vm's inline cache exists specifically to skip repeating this
// walk on every property access from the same call site.
func (s *Shape) Lookup(key PropertyKey) (*Shape, bool) {
	for cur := s; cur != nil && cur.slot >= 0; cur = cur.parent {
		if cur.key.Equal(key) {
			return cur, true
		}
	}
	return nil, false
}

// Keys returns this shape's own keys in transition (insertion) order,
// oldest first, as required for ECMA-262 [[OwnPropertyKeys]] ordinary
// ordering (integer indices are sorted separately by the caller).
func (s *Shape) Keys() []PropertyKey {
	depth := s.Size()
	keys := make([]PropertyKey, depth)
	for cur := s; cur != nil && cur.slot >= 0; cur = cur.parent {
		keys[cur.slot] = cur.key
	}
	return keys
}
