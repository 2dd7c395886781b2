package compiler

import (
	"math"
	"math/big"

	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/bytecode"
	"github.com/jsvm-project/jsvm/internal/value"
)

// compileExpression emits code that leaves exactly one value on the
// operand stack: the expression's result.
func (c *Compiler) compileExpression(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return c.compileNumberLiteral(n)
	case *ast.StringLiteral:
		c.w.Emit(bytecode.OpPushConst)
		c.w.EmitU32(c.constant("s:"+n.Value, value.String(n.Value)))
		return nil
	case *ast.BooleanLiteral:
		if n.Value {
			c.w.Emit(bytecode.OpPushTrue)
		} else {
			c.w.Emit(bytecode.OpPushFalse)
		}
		return nil
	case *ast.NullLiteral:
		c.w.Emit(bytecode.OpPushNull)
		return nil
	case *ast.UndefinedLiteral:
		c.w.Emit(bytecode.OpPushUndefined)
		return nil
	case *ast.Identifier:
		loc := c.resolve(c.interner.Get(n.Name))
		c.w.Emit(bytecode.OpGetBinding)
		c.w.EmitU32(c.bindingIndex(loc))
		return nil
	case *ast.ThisExpression:
		loc := c.resolve(c.interner.Get("this"))
		c.w.Emit(bytecode.OpGetBinding)
		c.w.EmitU32(c.bindingIndex(loc))
		return nil
	case *ast.ArrayLiteral:
		return c.compileArrayLiteral(n)
	case *ast.ObjectLiteral:
		return c.compileObjectLiteral(n)
	case *ast.UnaryExpression:
		return c.compileUnary(n)
	case *ast.UpdateExpression:
		return c.compileUpdate(n)
	case *ast.BinaryExpression:
		return c.compileBinary(n)
	case *ast.LogicalExpression:
		return c.compileLogical(n)
	case *ast.AssignmentExpression:
		return c.compileAssignment(n)
	case *ast.ConditionalExpression:
		return c.compileConditional(n)
	case *ast.CallExpression:
		return c.compileCall(n)
	case *ast.NewExpression:
		return c.compileNew(n)
	case *ast.MemberExpression:
		return c.compileMemberGet(n)
	case *ast.SequenceExpression:
		for i, sub := range n.Expressions {
			if i > 0 {
				c.w.Emit(bytecode.OpPop)
			}
			if err := c.compileExpression(sub); err != nil {
				return err
			}
		}
		return nil
	case *ast.FunctionExpression:
		return c.compileFunctionLiteral(n.Name, &n.Params, n.Body, n.Generator, n.Async, false)
	case *ast.ArrowFunctionExpression:
		return c.compileArrow(n)
	case *ast.YieldExpression:
		if n.Argument != nil {
			if err := c.compileExpression(n.Argument); err != nil {
				return err
			}
		} else {
			c.w.Emit(bytecode.OpPushUndefined)
		}
		if n.Delegate {
			c.w.Emit(bytecode.OpYieldStar)
		} else {
			c.w.Emit(bytecode.OpYield)
		}
		return nil
	case *ast.AwaitExpression:
		if err := c.compileExpression(n.Argument); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpAwait)
		return nil
	case *ast.TemplateLiteral:
		return c.compileTemplateLiteral(n)
	case *ast.SpreadElement:
		return c.compileExpression(n.Argument)
	default:
		return c.errf("unsupported expression node %T", e)
	}
}

func (c *Compiler) compileNumberLiteral(n *ast.NumberLiteral) error {
	switch n.Kind {
	case ast.NumberInt32:
		c.w.Emit(bytecode.OpPushInt32)
		c.w.EmitU32(uint32(n.Int32))
		return nil
	case ast.NumberFloat64:
		c.w.Emit(bytecode.OpPushConst)
		c.w.EmitU32(c.constant(numKey(n.Float), value.Number(n.Float)))
		return nil
	case ast.NumberBigInt:
		big, ok := new(big.Int).SetString(n.BigIntText, 0)
		if !ok {
			return c.errf("invalid BigInt literal %q", n.BigIntText)
		}
		c.w.Emit(bytecode.OpPushConst)
		c.w.EmitU32(c.constant("n:"+n.BigIntText, value.BigInt(big)))
		return nil
	}
	return c.errf("unknown number literal kind")
}

func numKey(f float64) string {
	return "f:" + value.Number(f).Tag().String() + ":" + formatKey(f)
}

func formatKey(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return bigFloatString(f)
}

func bigFloatString(f float64) string {
	return new(big.Float).SetFloat64(f).Text('g', -1)
}

func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteral) error {
	count := 0
	for _, el := range n.Elements {
		if el == nil {
			c.w.Emit(bytecode.OpPushUndefined)
		} else if err := c.compileExpression(el); err != nil {
			return err
		}
		count++
	}
	c.w.Emit(bytecode.OpMakeArray)
	c.w.EmitU32(uint32(count))
	return nil
}

func (c *Compiler) compileObjectLiteral(n *ast.ObjectLiteral) error {
	for _, p := range n.Properties {
		if p.Key != nil {
			if err := c.compileExpression(p.Key); err != nil {
				return err
			}
		} else {
			c.w.Emit(bytecode.OpPushUndefined)
		}
		if err := c.compileExpression(p.Value); err != nil {
			return err
		}
	}
	c.w.Emit(bytecode.OpMakeObject)
	return nil
}

func (c *Compiler) compileTemplateLiteral(n *ast.TemplateLiteral) error {
	c.w.Emit(bytecode.OpPushConst)
	c.w.EmitU32(c.constant("s:"+n.Quasis[0], value.String(n.Quasis[0])))
	for i, expr := range n.Expressions {
		if err := c.compileExpression(expr); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpAdd)
		c.w.Emit(bytecode.OpPushConst)
		c.w.EmitU32(c.constant("s:"+n.Quasis[i+1], value.String(n.Quasis[i+1])))
		c.w.Emit(bytecode.OpAdd)
	}
	return nil
}

var unaryOps = map[ast.UnaryOperator]bytecode.Opcode{
	ast.UnaryPlus:   bytecode.OpPos,
	ast.UnaryMinus:  bytecode.OpNeg,
	ast.UnaryNot:    bytecode.OpNot,
	ast.UnaryBitNot: bytecode.OpBitNot,
	ast.UnaryTypeof: bytecode.OpTypeof,
}

func (c *Compiler) compileUnary(n *ast.UnaryExpression) error {
	if n.Operator == ast.UnaryDelete {
		mem, ok := n.Argument.(*ast.MemberExpression)
		if !ok {
			c.w.Emit(bytecode.OpPushTrue)
			return nil
		}
		if err := c.compileExpression(mem.Object); err != nil {
			return err
		}
		if err := c.compileMemberKey(mem); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpDeleteProperty)
		return nil
	}
	if n.Operator == ast.UnaryVoid {
		if err := c.compileExpression(n.Argument); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpPop)
		c.w.Emit(bytecode.OpPushUndefined)
		return nil
	}
	if err := c.compileExpression(n.Argument); err != nil {
		return err
	}
	op, ok := unaryOps[n.Operator]
	if !ok {
		return c.errf("unsupported unary operator %q", n.Operator)
	}
	c.w.Emit(op)
	return nil
}

func (c *Compiler) compileUpdate(n *ast.UpdateExpression) error {
	// Desugars `++x`/`x++` into a read-modify-write through the same
	// binding/member-store path assignment uses, keeping one place (emitStore)
	// responsible for every binding/property mutation (spec.md §4.3).
	if err := c.compileExpression(n.Argument); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpPos) // ToNumeric coercion happens through unary '+'
	if !n.Prefix {
		c.w.Emit(bytecode.OpDup)
	}
	c.w.Emit(bytecode.OpPushInt32)
	c.w.EmitU32(1)
	if n.Operator == "++" {
		c.w.Emit(bytecode.OpAdd)
	} else {
		c.w.Emit(bytecode.OpSub)
	}
	if n.Prefix {
		c.w.Emit(bytecode.OpDup)
	}
	return c.emitStore(n.Argument.(ast.Pattern))
}

var binaryOps = map[string]bytecode.Opcode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul, "/": bytecode.OpDiv,
	"%": bytecode.OpMod, "**": bytecode.OpPow,
	"&": bytecode.OpBitAnd, "|": bytecode.OpBitOr, "^": bytecode.OpBitXor,
	"<<": bytecode.OpShl, ">>": bytecode.OpShr, ">>>": bytecode.OpUShr,
	"==": bytecode.OpEq, "!=": bytecode.OpNeq, "===": bytecode.OpStrictEq, "!==": bytecode.OpStrictNeq,
	"<": bytecode.OpLt, "<=": bytecode.OpLte, ">": bytecode.OpGt, ">=": bytecode.OpGte,
	"instanceof": bytecode.OpInstanceOf, "in": bytecode.OpIn,
}

func (c *Compiler) compileBinary(n *ast.BinaryExpression) error {
	if err := c.compileExpression(n.Left); err != nil {
		return err
	}
	if err := c.compileExpression(n.Right); err != nil {
		return err
	}
	op, ok := binaryOps[n.Operator]
	if !ok {
		return c.errf("unsupported binary operator %q", n.Operator)
	}
	c.w.Emit(op)
	return nil
}

func (c *Compiler) compileLogical(n *ast.LogicalExpression) error {
	if err := c.compileExpression(n.Left); err != nil {
		return err
	}
	var skipOp bytecode.Opcode
	switch n.Operator {
	case "&&":
		skipOp = bytecode.OpJumpFalse
	case "||":
		skipOp = bytecode.OpJumpTrue
	case "??":
		skipOp = bytecode.OpJumpNullish
	default:
		return c.errf("unsupported logical operator %q", n.Operator)
	}
	c.w.Emit(bytecode.OpDup)
	c.w.Emit(skipOp)
	patch := c.w.Pos()
	c.w.EmitU32(0)
	c.w.Emit(bytecode.OpPop)
	if err := c.compileExpression(n.Right); err != nil {
		return err
	}
	c.w.PatchU32(patch, uint32(c.w.Pos()))
	return nil
}

func (c *Compiler) compileConditional(n *ast.ConditionalExpression) error {
	if err := c.compileExpression(n.Test); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpJumpFalse)
	elsePatch := c.w.Pos()
	c.w.EmitU32(0)
	if err := c.compileExpression(n.Consequent); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpJump)
	endPatch := c.w.Pos()
	c.w.EmitU32(0)
	c.w.PatchU32(elsePatch, uint32(c.w.Pos()))
	if err := c.compileExpression(n.Alternate); err != nil {
		return err
	}
	c.w.PatchU32(endPatch, uint32(c.w.Pos()))
	return nil
}

func (c *Compiler) compileCall(n *ast.CallExpression) error {
	hasSpread := false
	if mem, ok := n.Callee.(*ast.MemberExpression); ok {
		if err := c.compileExpression(mem.Object); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpDup) // keep receiver for `this`
		if err := c.compileMemberKey(mem); err != nil {
			return err
		}
		slot := c.icSlot(0)
		c.w.Emit(bytecode.OpGetProperty)
		c.w.EmitU32(slot)
		// Stack is already [this, fn]: the duplicated receiver sits beneath
		// the fetched method, matching the bare-call branch's push order.
	} else {
		c.w.Emit(bytecode.OpPushUndefined) // `this` is undefined for a bare call
		if err := c.compileExpression(n.Callee); err != nil {
			return err
		}
	}
	for _, a := range n.Arguments {
		if _, ok := a.(*ast.SpreadElement); ok {
			hasSpread = true
		}
		if err := c.compileExpression(a); err != nil {
			return err
		}
	}
	if hasSpread {
		c.w.Emit(bytecode.OpCallSpread)
		c.w.EmitU32(uint32(len(n.Arguments)))
	} else {
		c.w.Emit(bytecode.OpCall)
		c.w.EmitU32(uint32(len(n.Arguments)))
	}
	return nil
}

func (c *Compiler) compileNew(n *ast.NewExpression) error {
	if err := c.compileExpression(n.Callee); err != nil {
		return err
	}
	for _, a := range n.Arguments {
		if err := c.compileExpression(a); err != nil {
			return err
		}
	}
	c.w.Emit(bytecode.OpNew)
	c.w.EmitU32(uint32(len(n.Arguments)))
	return nil
}

// compileMemberKey emits the property-key value for a (possibly computed)
// member expression, without touching the object already on the stack.
func (c *Compiler) compileMemberKey(n *ast.MemberExpression) error {
	if !n.Computed {
		id := n.Property.(*ast.Identifier)
		c.w.Emit(bytecode.OpPushConst)
		c.w.EmitU32(c.constant("s:"+id.Name, value.String(id.Name)))
		return nil
	}
	return c.compileExpression(n.Property)
}

func (c *Compiler) compileMemberGet(n *ast.MemberExpression) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	if err := c.compileMemberKey(n); err != nil {
		return err
	}
	var name uint32
	if !n.Computed {
		name = 0
	}
	_ = name
	c.w.Emit(bytecode.OpGetProperty)
	c.w.EmitU32(c.icSlot(0))
	return nil
}

func (c *Compiler) compileFunctionLiteral(name *ast.Identifier, params *ast.FunctionParams, body *ast.BlockStatement, generator, async, isMethod bool) error {
	fc := New(c.interner)
	fc.strict = c.strict
	fc.generator = generator
	fc.async = async
	fc.cur = newScope(bytecode.ScopeFunction, c.cur)
	fc.pushScopeFrame(bytecode.ScopeFunction)
	for _, p := range params.Params {
		fc.hoistPattern(p, true, false)
	}
	fc.hoist(body.Body)
	for i, p := range params.Params {
		if id, ok := p.(*ast.Identifier); ok {
			loc := fc.resolve(fc.interner.Get(id.Name))
			_ = i
			fc.w.Emit(bytecode.OpInitBinding)
			fc.w.EmitU32(fc.bindingIndex(loc))
		}
	}
	for _, stmt := range body.Body {
		if err := fc.compileStatement(stmt); err != nil {
			return err
		}
	}
	fc.w.Emit(bytecode.OpPushUndefined)
	fc.w.Emit(bytecode.OpReturn)

	fnName := ""
	if name != nil {
		fnName = name.Name
	}
	block := fc.finish(fnName, len(params.Params), hasRest(params))
	idx := len(c.funcs)
	c.funcs = append(c.funcs, block)
	c.w.Emit(bytecode.OpMakeFunction)
	c.w.EmitU32(uint32(idx))
	return nil
}

func hasRest(params *ast.FunctionParams) bool {
	if len(params.Params) == 0 {
		return false
	}
	_, ok := params.Params[len(params.Params)-1].(*ast.RestElement)
	return ok
}

func (c *Compiler) compileArrow(n *ast.ArrowFunctionExpression) error {
	fc := New(c.interner)
	fc.strict = c.strict
	fc.async = n.Async
	fc.cur = newScope(bytecode.ScopeFunction, c.cur)
	fc.pushScopeFrame(bytecode.ScopeFunction)
	for _, p := range n.Params.Params {
		fc.hoistPattern(p, true, false)
	}
	for _, p := range n.Params.Params {
		if id, ok := p.(*ast.Identifier); ok {
			loc := fc.resolve(fc.interner.Get(id.Name))
			fc.w.Emit(bytecode.OpInitBinding)
			fc.w.EmitU32(fc.bindingIndex(loc))
		}
	}
	if n.BodyBlock != nil {
		fc.hoist(n.BodyBlock.Body)
		for _, stmt := range n.BodyBlock.Body {
			if err := fc.compileStatement(stmt); err != nil {
				return err
			}
		}
		fc.w.Emit(bytecode.OpPushUndefined)
		fc.w.Emit(bytecode.OpReturn)
	} else {
		if err := fc.compileExpression(n.BodyExpr); err != nil {
			return err
		}
		fc.w.Emit(bytecode.OpReturn)
	}
	block := fc.finish("", len(n.Params.Params), hasRest(&n.Params))
	idx := len(c.funcs)
	c.funcs = append(c.funcs, block)
	c.w.Emit(bytecode.OpMakeArrow)
	c.w.EmitU32(uint32(idx))
	return nil
}
