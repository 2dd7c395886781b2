package vm

import (
	"github.com/jsvm-project/jsvm/internal/bytecode"
	"github.com/jsvm-project/jsvm/internal/value"
)

// CallFrame is one activation record on the VM's call stack (spec.md §4.4).
// The operand stack itself is shared across frames (a single []value.Value
// owned by the VM), addressed relative to each frame's StackBase — the
// same fp-relative addressing scheme the teacher's interpreter engine uses
// for its operand stack (internal/engine/interpreter/interpreter.go's
// callEngine.stack plus per-call pushFrame/popFrame bookkeeping).
type CallFrame struct {
	Code      *bytecode.CodeBlock
	PC        int
	StackBase int
	Env       *Environment
	This      value.Value
	NewTarget value.Value
	Args      []value.Value

	// Suspended is not set anywhere in this package: generator suspension
	// goes through yieldChan/resumeChan below, not through frame state.
	Suspended bool

	// PromiseCapability is not set anywhere in this package; OpAwait passes
	// its operand through unchanged and registers no job-queue continuation.
	PromiseCapability any

	// yieldChan/resumeChan are non-nil only for a generator body's frame
	// (internal/vm/generator.go's runGenerator), letting OpYield hand a
	// value back to the driving goroutine and block for the resumed value.
	yieldChan  chan genYield
	resumeChan chan resumeMsg
}
