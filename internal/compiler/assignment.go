package compiler

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/bytecode"
)

var compoundOps = map[string]bytecode.Opcode{
	"+=": bytecode.OpAdd, "-=": bytecode.OpSub, "*=": bytecode.OpMul, "/=": bytecode.OpDiv,
	"%=": bytecode.OpMod, "**=": bytecode.OpPow,
	"&=": bytecode.OpBitAnd, "|=": bytecode.OpBitOr, "^=": bytecode.OpBitXor,
	"<<=": bytecode.OpShl, ">>=": bytecode.OpShr, ">>>=": bytecode.OpUShr,
}

func (c *Compiler) compileAssignment(n *ast.AssignmentExpression) error {
	if n.Operator == "=" {
		if err := c.compileExpression(n.Value); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpDup)
		return c.emitStore(n.Target)
	}
	if n.Operator == "&&=" || n.Operator == "||=" || n.Operator == "??=" {
		return c.compileLogicalAssignment(n)
	}
	op, ok := compoundOps[n.Operator]
	if !ok {
		return c.errf("unsupported assignment operator %q", n.Operator)
	}
	if err := c.compileExpression(patternToExpression(n.Target)); err != nil {
		return err
	}
	if err := c.compileExpression(n.Value); err != nil {
		return err
	}
	c.w.Emit(op)
	c.w.Emit(bytecode.OpDup)
	return c.emitStore(n.Target)
}

func (c *Compiler) compileLogicalAssignment(n *ast.AssignmentExpression) error {
	if err := c.compileExpression(patternToExpression(n.Target)); err != nil {
		return err
	}
	var skip bytecode.Opcode
	switch n.Operator {
	case "&&=":
		skip = bytecode.OpJumpFalse
	case "||=":
		skip = bytecode.OpJumpTrue
	default:
		skip = bytecode.OpJumpNullish
	}
	c.w.Emit(bytecode.OpDup)
	c.w.Emit(skip)
	patch := c.w.Pos()
	c.w.EmitU32(0)
	c.w.Emit(bytecode.OpPop)
	if err := c.compileExpression(n.Value); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpDup)
	if err := c.emitStore(n.Target); err != nil {
		return err
	}
	c.w.PatchU32(patch, uint32(c.w.Pos()))
	return nil
}

// patternToExpression re-reads an already-validated simple assignment
// target as an expression, for compound-assignment's read side
// (`x += y` reads x before writing it). Only identifiers and non-computed/
// computed member expressions are legal compound-assignment targets.
func patternToExpression(p ast.Pattern) ast.Expression {
	switch t := p.(type) {
	case *ast.Identifier:
		return t
	case *ast.MemberExpression:
		return t
	default:
		return nil
	}
}

// emitStore pops the TOS value (leaving nothing if write-through consumes
// it through OpSetProperty/OpSetBinding's own pop) and writes it to target.
// Callers that need the value to remain on the stack after the store
// (assignment expression's own result) must OpDup before calling this, as
// compileAssignment does.
func (c *Compiler) emitStore(target ast.Pattern) error {
	switch t := target.(type) {
	case *ast.Identifier:
		loc := c.resolve(c.interner.Get(t.Name))
		c.w.Emit(bytecode.OpSetBinding)
		c.w.EmitU32(c.bindingIndex(loc))
		return nil
	case *ast.MemberExpression:
		// Stack currently: [value]. Pushing object then key naturally gives
		// [value, object, key] (key on top), which is exactly the order
		// OpSetProperty's handler pops in — same (key, object, value)
		// convention OpGetProperty and compileMemberGet already use.
		if err := c.compileExpression(t.Object); err != nil {
			return err
		}
		if err := c.compileMemberKey(t); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpSetProperty)
		c.w.EmitU32(c.icSlot(0))
		return nil
	case *ast.ArrayPattern, *ast.ObjectPattern:
		return c.errf("destructuring assignment targets are not supported")
	default:
		return c.errf("unsupported assignment target %T", target)
	}
}
