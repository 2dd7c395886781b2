package bytecode

import (
	"encoding/binary"

	"github.com/jsvm-project/jsvm/internal/interner"
	"github.com/jsvm-project/jsvm/internal/value"
)

// ScopeKind tags an entry in CodeBlock.Scopes, distinguishing the kind of
// lexical environment internal/vm must allocate when OpPushScope runs
// (spec.md §3.7/§4.4).
type ScopeKind uint8

const (
	ScopeBlock ScopeKind = iota
	ScopeFunction
	ScopeCatch
	ScopeForHead // per-iteration binding copy for `for (let ...)` loops
	ScopeWith
)

// ScopeInfo describes one static scope: its binding slots and which of
// those are let/const (need TDZ) vs. var/function (hoisted, pre-initialized).
type ScopeInfo struct {
	Kind     ScopeKind
	Bindings []BindingInfo
}

type BindingInfo struct {
	Name    interner.Symbol
	Mutable bool // false for const
	Lexical bool // true for let/const/class (TDZ applies until OpInitBinding)
}

// BindingLocator resolves an identifier reference to either a lexical-scope
// slot (ScopeDepth hops up the active scope chain, then SlotIndex into that
// scope) or the global object (ScopeDepth == GlobalScope), per spec.md
// §4.3's binding-locator design.
type BindingLocator struct {
	ScopeDepth int // 0 = current scope; GlobalScope = fall through to global object
	SlotIndex  int
	Name       interner.Symbol
}

const GlobalScope = -1

// HandlerKind distinguishes catch handlers from finally handlers in the
// exception table (spec.md §4.3/§4.4 "Handler table").
type HandlerKind uint8

const (
	HandlerCatch HandlerKind = iota
	HandlerFinally
)

// Handler is one entry in a CodeBlock's exception table: [Start, End) is
// the protected pc range, HandlerPC is where to resume on a thrown
// exception, StackDepth/ScopeDepth record the operand-stack and
// scope-chain depth to unwind to before resuming.
type Handler struct {
	Start, End int
	HandlerPC  int
	StackDepth int
	ScopeDepth int
	Kind       HandlerKind
}

// InlineCache is one call-site's cached property lookup: internal/vm
// validates CachedShape against the object's current shape before trusting
// Slot, falling back to a full Shape.Lookup (and refreshing the cache) on a
// miss (spec.md §4.5 "Inline caches").
type InlineCache struct {
	Name        interner.Symbol
	CachedShape any // *object.Shape; `any` here to avoid internal/bytecode depending on internal/object
	Slot        int
}

// CodeBlock is the compiled form of one function body or top-level program
// (spec.md §4.3). internal/compiler produces these; internal/vm executes
// them directly, with no further lowering step.
type CodeBlock struct {
	Name   string
	Strict bool

	ThisMode     ThisMode
	NumParams    int
	HasRestParam bool
	IsGenerator bool
	IsAsync     bool

	Code      []byte
	Constants []value.Value

	Scopes   []ScopeInfo
	Handlers []Handler
	IC       []InlineCache

	// Bindings holds every BindingLocator referenced by OpGetBinding/
	// OpSetBinding/OpInitBinding operands, indexed by the U32 operand.
	Bindings []BindingLocator

	// Functions holds the CodeBlocks for every nested function/arrow/method
	// literal, referenced by index from OpMakeFunction/OpMakeArrow operands.
	Functions []*CodeBlock

	SourceName string
}

// ThisMode mirrors spec.md §4.3's function "this" binding modes.
type ThisMode uint8

const (
	ThisModeGlobal ThisMode = iota // ordinary function: `this` defaults to the global object (sloppy) or undefined (strict)
	ThisModeLexical                // arrow function: `this` is captured from the enclosing scope, never bound per-call
	ThisModeStrict                 // class constructor/method: `this` is never coerced
)

// ReadU8/ReadU32 decode the fixed-width operand immediately following pc
// (the opcode byte itself is at pc-1 by convention: internal/vm reads the
// opcode, advances pc, then calls these).
func ReadU8(code []byte, pc int) uint8 { return code[pc] }

func ReadU32(code []byte, pc int) uint32 {
	return binary.LittleEndian.Uint32(code[pc : pc+4])
}

// Writer is an append-only bytecode buffer internal/compiler uses while
// lowering one function body.
type Writer struct {
	Code []byte
}

func (w *Writer) Emit(op Opcode) int {
	pos := len(w.Code)
	w.Code = append(w.Code, byte(op))
	return pos
}

func (w *Writer) EmitU8(v uint8) { w.Code = append(w.Code, v) }

func (w *Writer) EmitU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Code = append(w.Code, buf[:]...)
}

// PatchU32 overwrites the 4-byte operand at byte offset pos, used to
// back-patch forward jump targets once the compiler knows the destination
// pc.
func (w *Writer) PatchU32(pos int, v uint32) {
	binary.LittleEndian.PutUint32(w.Code[pos:pos+4], v)
}

func (w *Writer) Pos() int { return len(w.Code) }
