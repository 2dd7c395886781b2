// Package object implements the ECMAScript object model: a Shape-based
// property-storage scheme shared across objects by identity, plus the
// internal-method vtable that gives each exotic object kind (array,
// function, proxy, ...) its own [[Get]]/[[Set]]/etc. behavior
// (spec.md §3.4, §4.5).
package object

import (
	"sync"

	"github.com/jsvm-project/jsvm/internal/gc"
	"github.com/jsvm-project/jsvm/internal/value"
)

// Kind names the exotic-object variant an Object carries in Data.
type Kind uint8

const (
	KindOrdinary Kind = iota
	KindArray
	KindFunction
	KindBoundFunction
	KindArguments
	KindProxy
	KindTypedArray
	KindArrayBuffer
	KindDataView
	KindMap
	KindSet
	KindWeakMap
	KindWeakSet
	KindRegExp
	KindDate
	KindError
	KindPromise
	KindGenerator
	KindAsyncGenerator
	KindModuleNamespace
)

func (k Kind) String() string {
	names := [...]string{
		"Object", "Array", "Function", "Function", "Arguments", "Proxy",
		"TypedArray", "ArrayBuffer", "DataView", "Map", "Set", "WeakMap",
		"WeakSet", "RegExp", "Date", "Error", "Promise", "Generator",
		"AsyncGenerator", "Module",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Object"
}

// property is one occupied storage slot: the shape tree supplies the key
// and attributes; the Object only stores the current value (and, for
// accessors, getter/setter) at that slot.
type property struct {
	value   value.Value
	getter  value.Value // set only when IsAccessor
	setter  value.Value
	isAccessor bool
}

// InternalMethods is the vtable every exotic kind installs to override the
// eleven essential internal methods plus [[Call]]/[[Construct]] (ECMA-262
// 6.1.7.2). Ordinary objects use ordinaryMethods; Data carries the exotic
// behavior that needs more than a fields swap (arrays' exotic
// [[DefineOwnProperty]] for "length", proxies' trap forwarding).
type InternalMethods struct {
	GetPrototypeOf    func(o *Object) (*Object, error)
	SetPrototypeOf    func(o *Object, proto *Object) (bool, error)
	IsExtensible      func(o *Object) (bool, error)
	PreventExtensions func(o *Object) (bool, error)
	GetOwnProperty    func(o *Object, key PropertyKey) (*Descriptor, error)
	DefineOwnProperty func(o *Object, key PropertyKey, desc Descriptor) (bool, error)
	HasProperty       func(o *Object, key PropertyKey) (bool, error)
	Get               func(o *Object, key PropertyKey, receiver value.Value) (value.Value, error)
	Set               func(o *Object, key PropertyKey, v value.Value, receiver value.Value) (bool, error)
	Delete            func(o *Object, key PropertyKey) (bool, error)
	OwnPropertyKeys   func(o *Object) ([]PropertyKey, error)
	Call              func(o *Object, this value.Value, args []value.Value) (value.Value, error)
	Construct         func(o *Object, args []value.Value, newTarget *Object) (value.Value, error)
}

// Descriptor mirrors ECMA-262's Property Descriptor record.
type Descriptor struct {
	Value      value.Value
	Get        value.Value
	Set        value.Value
	Writable   bool
	Enumerable bool
	Configurable bool
	HasValue, HasGet, HasSet, HasWritable, HasEnumerable, HasConfigurable bool
}

// Object is the representation every heap value.Objecter in this engine
// implements. Storage is a flat slice indexed by the current Shape's slot
// numbering; Shape transitions are what make property addition cheap and
// inline-cacheable (spec.md §3.4).
type Object struct {
	mu sync.RWMutex

	shape     *Shape
	storage   []property
	prototype *Object
	extensible bool

	kind    Kind
	methods InternalMethods
	Data    ExoticData // nil for KindOrdinary

	// Class bookkeeping used by ToString/Object.prototype.toString and
	// debugging (internal/object/dump.go).
	className string

	// PrivateFields holds #-prefixed instance fields/methods, keyed by the
	// class's per-field private name. These are never visible to
	// [[OwnPropertyKeys]]/[[GetOwnProperty]] (spec.md supplemented feature:
	// private fields/methods).
	PrivateFields map[string]value.Value
}

// ExoticData is implemented by the per-kind payload types in this package
// (ArrayData, FunctionData, ProxyData, ...).
type ExoticData interface {
	exoticData()
}

// New allocates a bare ordinary object with the given prototype (nil for
// the %Object.prototype% root itself or Object.create(null)).
func New(prototype *Object) *Object {
	o := &Object{
		shape:      RootShape,
		prototype:  prototype,
		extensible: true,
		kind:       KindOrdinary,
		className:  "Object",
	}
	o.methods = ordinaryMethods
	return o
}

func (o *Object) Kind() Kind        { return o.kind }
func (o *Object) ClassName() string { return o.className }
func (o *Object) IsCallable() bool  { return o.methods.Call != nil }
func (o *Object) IsConstructor() bool { return o.methods.Construct != nil }

// SetExotic installs kind, data and the methods vtable for an exotic
// object. Called once at construction time by internal/realm's intrinsic
// builders and by the bytecode OpMakeFunction/OpMakeArray/etc. opcodes.
func (o *Object) SetExotic(kind Kind, className string, data ExoticData, methods InternalMethods) {
	o.kind = kind
	o.className = className
	o.Data = data
	o.methods = mergeMethods(methods)
}

// mergeMethods fills any nil vtable entry with the ordinary behavior, so
// exotic kinds only need to override what actually differs (e.g. Proxy
// overrides nine of the thirteen entries, while Map and Set override none).
func mergeMethods(m InternalMethods) InternalMethods {
	if m.GetPrototypeOf == nil {
		m.GetPrototypeOf = ordinaryMethods.GetPrototypeOf
	}
	if m.SetPrototypeOf == nil {
		m.SetPrototypeOf = ordinaryMethods.SetPrototypeOf
	}
	if m.IsExtensible == nil {
		m.IsExtensible = ordinaryMethods.IsExtensible
	}
	if m.PreventExtensions == nil {
		m.PreventExtensions = ordinaryMethods.PreventExtensions
	}
	if m.GetOwnProperty == nil {
		m.GetOwnProperty = ordinaryMethods.GetOwnProperty
	}
	if m.DefineOwnProperty == nil {
		m.DefineOwnProperty = ordinaryMethods.DefineOwnProperty
	}
	if m.HasProperty == nil {
		m.HasProperty = ordinaryMethods.HasProperty
	}
	if m.Get == nil {
		m.Get = ordinaryMethods.Get
	}
	if m.Set == nil {
		m.Set = ordinaryMethods.Set
	}
	if m.Delete == nil {
		m.Delete = ordinaryMethods.Delete
	}
	if m.OwnPropertyKeys == nil {
		m.OwnPropertyKeys = ordinaryMethods.OwnPropertyKeys
	}
	return m
}

func (o *Object) GetPrototypeOf() (*Object, error) { return o.methods.GetPrototypeOf(o) }
func (o *Object) SetPrototypeOf(p *Object) (bool, error) { return o.methods.SetPrototypeOf(o, p) }
func (o *Object) IsExtensible() (bool, error)       { return o.methods.IsExtensible(o) }
func (o *Object) PreventExtensions() (bool, error)  { return o.methods.PreventExtensions(o) }
func (o *Object) GetOwnProperty(k PropertyKey) (*Descriptor, error) {
	return o.methods.GetOwnProperty(o, k)
}
func (o *Object) DefineOwnProperty(k PropertyKey, d Descriptor) (bool, error) {
	return o.methods.DefineOwnProperty(o, k, d)
}
func (o *Object) HasProperty(k PropertyKey) (bool, error) { return o.methods.HasProperty(o, k) }
func (o *Object) Get(k PropertyKey, receiver value.Value) (value.Value, error) {
	return o.methods.Get(o, k, receiver)
}
func (o *Object) Set(k PropertyKey, v value.Value, receiver value.Value) (bool, error) {
	return o.methods.Set(o, k, v, receiver)
}
func (o *Object) Delete(k PropertyKey) (bool, error) { return o.methods.Delete(o, k) }
func (o *Object) OwnPropertyKeys() ([]PropertyKey, error) { return o.methods.OwnPropertyKeys(o) }

func (o *Object) Call(this value.Value, args []value.Value) (value.Value, error) {
	if o.methods.Call == nil {
		return value.Value{}, ErrNotCallable
	}
	return o.methods.Call(o, this, args)
}

func (o *Object) Construct(args []value.Value, newTarget *Object) (value.Value, error) {
	if o.methods.Construct == nil {
		return value.Value{}, ErrNotConstructor
	}
	return o.methods.Construct(o, args, newTarget)
}

// rawGetOwn/rawDefine/rawDelete operate directly on shape-indexed storage,
// bypassing the internal-methods vtable. The ordinary internal methods
// (methods.go) and the array exotic [[DefineOwnProperty]] build on them.
func (o *Object) rawGetOwn(key PropertyKey) (*property, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.shape.Lookup(key)
	if !ok {
		return nil, false
	}
	p := o.storage[s.Slot()]
	return &p, true
}

func (o *Object) rawDefine(key PropertyKey, p property, attrs Attributes) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.shape.Lookup(key); ok {
		o.storage[s.Slot()] = p
		return
	}
	o.shape = o.shape.Transition(key, attrs)
	o.storage = append(o.storage, p)
}

func (o *Object) rawDelete(key PropertyKey) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.shape.Lookup(key)
	if !ok {
		return true
	}
	// Deleting from the middle of the shape chain forces a fresh shape
	// with no cached transition history for the remaining keys; this is
	// the one operation that cannot stay inline-cache friendly, matching
	// every Shape-tree JS engine's documented trade-off.
	keys := o.shape.Keys()
	vals := append([]property(nil), o.storage...)
	newShape := RootShape
	var newStorage []property
	for i, k := range keys {
		if k.Equal(key) {
			continue
		}
		attrs := AttrDefault
		if cs, ok := o.shape.Lookup(k); ok {
			attrs = cs.Attrs()
		}
		newShape = newShape.Transition(k, attrs)
		newStorage = append(newStorage, vals[i])
	}
	o.shape = newShape
	o.storage = newStorage
	return true
}

// Shape exposes the object's current shape for inline-cache validation
// (internal/vm compares this pointer against a cached shape before trusting
// a cached slot index).
func (o *Object) Shape() *Shape { return o.shape }

// SlotValue reads storage[slot] directly once an inline cache has already
// confirmed o.Shape() == the cached shape; skips the shape-chain walk.
func (o *Object) SlotValue(slot int) value.Value {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.storage[slot].value
}

// Trace implements gc.Traceable: an object keeps its prototype and every
// object-valued property (including accessor get/set functions) reachable.
// Exotic kinds that hold extra object references (Proxy's target/handler,
// bound functions' target) report them through TraceExtra.
func (o *Object) Trace(visit func(gc.Traceable)) {
	o.mu.RLock()
	proto := o.prototype
	storage := append([]property(nil), o.storage...)
	o.mu.RUnlock()

	if proto != nil {
		visit(proto)
	}
	for _, p := range storage {
		traceValue(p.value, visit)
		if p.isAccessor {
			traceValue(p.getter, visit)
			traceValue(p.setter, visit)
		}
	}
	if te, ok := o.Data.(interface{ TraceExtra(func(gc.Traceable)) }); ok {
		te.TraceExtra(visit)
	}
}

func traceValue(v value.Value, visit func(gc.Traceable)) {
	if !v.IsObject() {
		return
	}
	if t, ok := v.AsObject().(gc.Traceable); ok && t != nil {
		visit(t)
	}
}
