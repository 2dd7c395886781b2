// Package bytecode defines the instruction set and CodeBlock container that
// internal/compiler emits and internal/vm executes (spec.md §4.3). Every
// instruction is a one-byte Opcode tag optionally followed by one
// fixed-width operand (U8 or U32, per Opcode.Width), the same encoding the teacher
// uses for its interpreter ops (internal/engine/interpreter/interpreter.go's
// b1/b2/b3/us/rs fields, generalized here into explicit widths rather than a
// fixed struct of every possible operand).
package bytecode

// Opcode is a single bytecode instruction tag.
type Opcode uint8

const (
	// Stack manipulation
	OpPop Opcode = iota
	OpDup
	OpSwap

	// Constants and literals
	OpPushUndefined
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPushInt32 // U32 operand: int32 constant, stored zigzag-free as raw bits
	OpPushConst // U32 operand: index into CodeBlock.Constants

	// Names/environments
	OpGetBinding  // U32 operand: BindingLocator index
	OpSetBinding  // U32 operand: BindingLocator index
	OpInitBinding // U32 operand: BindingLocator index (let/const TDZ release)
	OpGetGlobal   // U32 operand: name constant index
	OpSetGlobal   // U32 operand: name constant index
	OpPushScope   // U8 operand: index into CodeBlock.Scopes
	OpPopScope

	// Property access
	OpGetProperty    // U32 operand: IC slot index; key popped from stack
	OpSetProperty    // U32 operand: IC slot index; key, value popped from stack
	OpGetPropertyIC  // U32 operand: IC slot index pre-resolved to a literal name
	OpDeleteProperty
	OpGetPrivateField  // U32 operand: private-name constant index
	OpSetPrivateField  // U32 operand: private-name constant index

	// Operators
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpUShr
	OpNeg
	OpPos
	OpNot
	OpTypeof
	OpInstanceOf
	OpIn
	OpEq
	OpNeq
	OpStrictEq
	OpStrictNeq
	OpLt
	OpLte
	OpGt
	OpGte

	// Control flow
	OpJump      // U32 operand: absolute pc
	OpJumpTrue  // U32 operand: absolute pc; pops condition
	OpJumpFalse // U32 operand: absolute pc; pops condition
	OpJumpNullish

	// Calls
	OpCall        // U32 operand: argument count
	OpCallSpread
	OpNew         // U32 operand: argument count
	OpReturn
	OpThrow

	// Functions/classes
	OpMakeFunction // U32 operand: index into CodeBlock.Functions
	OpMakeArrow
	OpMakeClass
	OpMakeArray  // U32 operand: element count
	OpMakeObject

	// Exceptions handled via the Handler table, not opcodes directly.

	// Generators/async
	OpYield
	OpYieldStar
	OpAwait

	// Iterators
	OpGetIterator // U8 operand: 0 = @@iterator protocol, 1 = for-in enumerate-keys
	OpIteratorNext
	OpIteratorClose

	opcodeCount
)

// Width reports how many bytes of operand immediately follow this opcode's
// tag byte in CodeBlock.Code.
func (op Opcode) Width() int {
	switch op {
	case OpPushInt32, OpPushConst, OpGetBinding, OpSetBinding, OpInitBinding,
		OpGetGlobal, OpSetGlobal, OpGetProperty, OpSetProperty, OpGetPropertyIC,
		OpGetPrivateField, OpSetPrivateField, OpJump, OpJumpTrue, OpJumpFalse,
		OpJumpNullish, OpCall, OpCallSpread, OpNew, OpMakeFunction, OpMakeArrow, OpMakeArray:
		return 4
	case OpPushScope, OpGetIterator:
		return 1
	default:
		return 0
	}
}

var opcodeNames = [...]string{
	"Pop", "Dup", "Swap",
	"PushUndefined", "PushNull", "PushTrue", "PushFalse", "PushInt32", "PushConst",
	"GetBinding", "SetBinding", "InitBinding", "GetGlobal", "SetGlobal", "PushScope", "PopScope",
	"GetProperty", "SetProperty", "GetPropertyIC", "DeleteProperty", "GetPrivateField", "SetPrivateField",
	"Add", "Sub", "Mul", "Div", "Mod", "Pow", "BitAnd", "BitOr", "BitXor", "BitNot",
	"Shl", "Shr", "UShr", "Neg", "Pos", "Not", "Typeof", "InstanceOf", "In",
	"Eq", "Neq", "StrictEq", "StrictNeq", "Lt", "Lte", "Gt", "Gte",
	"Jump", "JumpTrue", "JumpFalse", "JumpNullish",
	"Call", "CallSpread", "New", "Return", "Throw",
	"MakeFunction", "MakeArrow", "MakeClass", "MakeArray", "MakeObject",
	"Yield", "YieldStar", "Await",
	"GetIterator", "IteratorNext", "IteratorClose",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "Unknown"
}
