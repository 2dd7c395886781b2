package vm

import (
	"github.com/jsvm-project/jsvm/internal/bytecode"
	"github.com/jsvm-project/jsvm/internal/value"
)

// unwind looks for the innermost Handler in frame.Code.Handlers whose
// protected range covers the PC the error was raised at, resets the
// operand stack to that handler's recorded depth, and jumps execution
// there. Returns handled=false when no handler covers this PC, so
// runFrame's caller propagates the error to the enclosing CallFrame (or
// to the host, at the outermost frame) — the same linear handler-table
// scan the teacher's wazeroir exception metadata inspired, generalized
// from "trap codes" to arbitrary thrown values.
func (vm *VM) unwind(frame *CallFrame, err error) (handled bool, thrown value.Value, propagate error) {
	raisedAt := frame.PC - 1 // PC already advanced past the opcode that raised err
	var best *bytecode.Handler
	for i := range frame.Code.Handlers {
		h := &frame.Code.Handlers[i]
		if raisedAt < h.Start || raisedAt >= h.End {
			continue
		}
		if best == nil || (h.End-h.Start) < (best.End-best.Start) {
			best = h
		}
	}
	if best == nil {
		return false, value.Value{}, err
	}

	thrown = errorToValue(err)

	// Unwind the operand stack to the depth recorded when the handler's
	// try block was entered, then unwind the scope chain back to the
	// handler's static depth (each PopScope the protected block pushed
	// must be undone since control is jumping past normal OpPopScope
	// instructions).
	base := frame.StackBase + best.StackDepth
	if base < len(vm.stack) {
		vm.stack = vm.stack[:base]
	}
	for frame.Env != nil && envDepth(frame.Env) > best.ScopeDepth {
		frame.Env = frame.Env.parent
	}

	frame.PC = best.HandlerPC
	if best.Kind == bytecode.HandlerCatch {
		vm.push(thrown)
	}
	return true, thrown, nil
}

func envDepth(e *Environment) int {
	n := 0
	for p := e; p != nil; p = p.parent {
		n++
	}
	return n
}

// errorToValue adapts a Go error into the JS value it represents: a
// ThrownError carries the original thrown value.Value verbatim; any other
// Go error (a TypeError/RangeError/etc. formatted by fmt.Errorf, or an
// ErrTDZ) becomes a best-effort Error-like string value, since
// internal/vm has no dependency on internal/realm's Error constructors.
func errorToValue(err error) value.Value {
	if te, ok := err.(*ThrownError); ok {
		return te.Value
	}
	return value.String(err.Error())
}
