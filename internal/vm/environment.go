// Package vm implements the bytecode dispatch loop: call frames, the shared
// operand stack, scope-chain environments, exception unwinding via the
// handler table, and generator/async suspension (spec.md §4.4, §4.6).
package vm

import (
	"fmt"

	"github.com/jsvm-project/jsvm/internal/bytecode"
	"github.com/jsvm-project/jsvm/internal/gc"
	"github.com/jsvm-project/jsvm/internal/interner"
	"github.com/jsvm-project/jsvm/internal/value"
)

// Environment is one runtime lexical scope: a slot array matching its
// static bytecode.ScopeInfo, plus a parent pointer for the scope chain.
// Binding locators (ScopeDepth hops, SlotIndex) address these directly,
// skipping any by-name lookup at run time.
type Environment struct {
	parent *Environment
	info   *bytecode.ScopeInfo
	slots  []value.Value
	tdz    []bool // true until the corresponding lexical slot's OpInitBinding runs
	withObject value.Value // set only for ScopeWith
}

func NewEnvironment(parent *Environment, info *bytecode.ScopeInfo) *Environment {
	env := &Environment{parent: parent, info: info, slots: make([]value.Value, len(info.Bindings))}
	env.tdz = make([]bool, len(info.Bindings))
	for i, b := range info.Bindings {
		if b.Lexical {
			env.tdz[i] = true
		}
	}
	return env
}

// Trace implements gc.Traceable so the GC heap can walk live closures'
// captured environments.
func (e *Environment) Trace(visit func(gc.Traceable)) {
	if e.parent != nil {
		visit(e.parent)
	}
	for _, v := range e.slots {
		if v.IsObject() {
			if t, ok := v.AsObject().(gc.Traceable); ok {
				visit(t)
			}
		}
	}
}

func (e *Environment) at(depth int) *Environment {
	env := e
	for i := 0; i < depth; i++ {
		if env == nil {
			return nil
		}
		env = env.parent
	}
	return env
}

// ErrTDZ is returned by Get when a lexical binding is read before its
// declaration executes (ECMA-262's "ReferenceError: Cannot access 'x'
// before initialization").
type ErrTDZ struct{ Name string }

func (e *ErrTDZ) Error() string {
	return fmt.Sprintf("ReferenceError: cannot access %q before initialization", e.Name)
}

func (e *Environment) Get(slot int, in *interner.Interner) (value.Value, error) {
	if e.tdz[slot] {
		return value.Value{}, &ErrTDZ{Name: in.Resolve(e.info.Bindings[slot].Name)}
	}
	return e.slots[slot], nil
}

func (e *Environment) Set(slot int, v value.Value, in *interner.Interner) error {
	if e.tdz[slot] {
		return &ErrTDZ{Name: in.Resolve(e.info.Bindings[slot].Name)}
	}
	if !e.info.Bindings[slot].Mutable {
		return fmt.Errorf("TypeError: assignment to constant variable %q", in.Resolve(e.info.Bindings[slot].Name))
	}
	e.slots[slot] = v
	return nil
}

// Init implements a lexical binding's first write (let/const/class/catch
// param/function param), which is legal even though the slot is in TDZ.
func (e *Environment) Init(slot int, v value.Value) {
	e.slots[slot] = v
	e.tdz[slot] = false
}
