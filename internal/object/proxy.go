package object

import (
	"github.com/jsvm-project/jsvm/internal/gc"
	"github.com/jsvm-project/jsvm/internal/value"
)

// ProxyData implements the newer boa_engine trap/revocation shape rather
// than the older boa/ one (the two diverged upstream; this engine follows
// the newer engine's revocable-handle design, per the call made in
// DESIGN.md's Open Question section): traps are looked up on the handler
// at every operation, and revocation clears the target and handler fields
// instead of setting a separate "revoked" boolean.
type ProxyData struct {
	target  *Object
	handler *Object
}

func (*ProxyData) exoticData() {}

// TraceExtra keeps the proxy's target and handler reachable even though
// they aren't stored as ordinary properties.
func (p *ProxyData) TraceExtra(visit func(gc.Traceable)) {
	if p.target != nil {
		visit(p.target)
	}
	if p.handler != nil {
		visit(p.handler)
	}
}

// NewProxy builds a Proxy exotic object (ECMA-262 10.5). GetPrototypeOf,
// IsExtensible, Get, Set, HasProperty, Delete, Call and Construct call the
// matching trap on handler when one is present and otherwise forward to
// target; OwnPropertyKeys always forwards to target. SetPrototypeOf,
// PreventExtensions, GetOwnProperty and DefineOwnProperty are not
// overridden and act on the proxy object itself as on an ordinary object.
func NewProxy(target, handler *Object) *Object {
	p := &ProxyData{target: target, handler: handler}
	o := &Object{shape: RootShape, extensible: true}
	o.SetExotic(KindProxy, "Proxy", p, InternalMethods{
		GetPrototypeOf: func(*Object) (*Object, error) {
			if trap, ok := trap(p, "getPrototypeOf"); ok {
				res, err := trap.Call(value.Object(p.handler), []value.Value{value.Object(p.target)})
				if err != nil {
					return nil, err
				}
				obj, _ := res.AsObject().(*Object)
				return obj, nil
			}
			if p.target == nil {
				return nil, errProxyRevoked()
			}
			return p.target.GetPrototypeOf()
		},
		IsExtensible: func(*Object) (bool, error) {
			if trap, ok := trap(p, "isExtensible"); ok {
				res, err := trap.Call(value.Object(p.handler), []value.Value{value.Object(p.target)})
				if err != nil {
					return false, err
				}
				return value.ToBoolean(res), nil
			}
			if p.target == nil {
				return false, errProxyRevoked()
			}
			return p.target.IsExtensible()
		},
		Get: func(_ *Object, key PropertyKey, receiver value.Value) (value.Value, error) {
			if trap, ok := trap(p, "get"); ok {
				return trap.Call(value.Object(p.handler), []value.Value{
					value.Object(p.target), propertyKeyToValue(key), receiver,
				})
			}
			if p.target == nil {
				return value.Value{}, errProxyRevoked()
			}
			return p.target.Get(key, receiver)
		},
		Set: func(_ *Object, key PropertyKey, v value.Value, receiver value.Value) (bool, error) {
			if trap, ok := trap(p, "set"); ok {
				res, err := trap.Call(value.Object(p.handler), []value.Value{
					value.Object(p.target), propertyKeyToValue(key), v, receiver,
				})
				if err != nil {
					return false, err
				}
				return value.ToBoolean(res), nil
			}
			if p.target == nil {
				return false, errProxyRevoked()
			}
			return p.target.Set(key, v, receiver)
		},
		HasProperty: func(*Object, key PropertyKey) (bool, error) {
			if trap, ok := trap(p, "has"); ok {
				res, err := trap.Call(value.Object(p.handler), []value.Value{value.Object(p.target), propertyKeyToValue(key)})
				if err != nil {
					return false, err
				}
				return value.ToBoolean(res), nil
			}
			if p.target == nil {
				return false, errProxyRevoked()
			}
			return p.target.HasProperty(key)
		},
		Delete: func(*Object, key PropertyKey) (bool, error) {
			if trap, ok := trap(p, "deleteProperty"); ok {
				res, err := trap.Call(value.Object(p.handler), []value.Value{value.Object(p.target), propertyKeyToValue(key)})
				if err != nil {
					return false, err
				}
				return value.ToBoolean(res), nil
			}
			if p.target == nil {
				return false, errProxyRevoked()
			}
			return p.target.Delete(key)
		},
		OwnPropertyKeys: func(*Object) ([]PropertyKey, error) {
			if p.target == nil {
				return nil, errProxyRevoked()
			}
			if _, ok := trap(p, "ownKeys"); ok {
				// The ownKeys trap is detected but not called: the target's
				// own keys are returned whether or not the trap exists.
				return p.target.OwnPropertyKeys()
			}
			return p.target.OwnPropertyKeys()
		},
		Call: func(*Object, this value.Value, args []value.Value) (value.Value, error) {
			if p.target == nil {
				return value.Value{}, errProxyRevoked()
			}
			if !p.target.IsCallable() {
				return value.Value{}, ErrNotCallable
			}
			if trap, ok := trap(p, "apply"); ok {
				return trap.Call(value.Object(p.handler), []value.Value{value.Object(p.target), this, value.Object(nil)})
			}
			if p.target == nil {
				return value.Value{}, errProxyRevoked()
			}
			return p.target.Call(this, args)
		},
		Construct: func(*Object, args []value.Value, newTarget *Object) (value.Value, error) {
			if trap, ok := trap(p, "construct"); ok {
				return trap.Call(value.Object(p.handler), []value.Value{value.Object(p.target), value.Object(nil), value.Object(newTarget)})
			}
			if p.target == nil {
				return value.Value{}, errProxyRevoked()
			}
			return p.target.Construct(args, newTarget)
		},
	})
	return o
}

func trap(p *ProxyData, name string) (*Object, bool) {
	if p.handler == nil {
		return nil, false
	}
	v, err := p.handler.Get(NewPropertyKeyFromString(name), value.Object(p.handler))
	if err != nil || v.IsUndefined() || v.IsNull() {
		return nil, false
	}
	fn, ok := v.AsObject().(*Object)
	if !ok || !fn.IsCallable() {
		return nil, false
	}
	return fn, true
}

// Revoke implements Proxy.revocable's revoke function: clears target and
// handler so every subsequent trap observes the revoked state.
func (p *ProxyData) Revoke() {
	p.target = nil
	p.handler = nil
}

func errProxyRevoked() error {
	return &proxyRevokedError{}
}

type proxyRevokedError struct{}

func (*proxyRevokedError) Error() string {
	return "TypeError: cannot perform operation on a revoked proxy"
}

func propertyKeyToValue(k PropertyKey) value.Value {
	switch k.Kind {
	case KeySymbol:
		return value.SymbolValue(k.Sym)
	default:
		return value.String(k.String())
	}
}
