package compiler

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/bytecode"
)

func (c *Compiler) compileStatement(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		if err := c.compileExpression(n.Expression); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpPop)
		return nil
	case *ast.VariableDeclaration:
		return c.compileVariableDeclaration(n)
	case *ast.FunctionDeclaration:
		// Function declarations are bound during hoist(); here we only emit
		// the literal and store it, matching FunctionDeclarationInstantiation
		// running function initializers before the function body executes.
		if err := c.compileFunctionLiteral(n.Name, &n.Params, n.Body, n.Generator, n.Async, false); err != nil {
			return err
		}
		loc := c.resolve(c.interner.Get(n.Name.Name))
		c.w.Emit(bytecode.OpInitBinding)
		c.w.EmitU32(c.bindingIndex(loc))
		return nil
	case *ast.ClassDeclaration:
		if err := c.compileClass(n.Name, n.SuperClass, n.Body); err != nil {
			return err
		}
		loc := c.resolve(c.interner.Get(n.Name.Name))
		c.w.Emit(bytecode.OpInitBinding)
		c.w.EmitU32(c.bindingIndex(loc))
		return nil
	case *ast.BlockStatement:
		return c.compileBlock(n)
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return nil
	case *ast.IfStatement:
		return c.compileIf(n)
	case *ast.WhileStatement:
		return c.compileWhile(n)
	case *ast.DoWhileStatement:
		return c.compileDoWhile(n)
	case *ast.ForStatement:
		return c.compileFor(n)
	case *ast.ForInOfStatement:
		return c.compileForInOf(n)
	case *ast.BreakStatement:
		return c.compileBreak(n)
	case *ast.ContinueStatement:
		return c.compileContinue(n)
	case *ast.ReturnStatement:
		if n.Argument != nil {
			if err := c.compileExpression(n.Argument); err != nil {
				return err
			}
		} else {
			c.w.Emit(bytecode.OpPushUndefined)
		}
		c.w.Emit(bytecode.OpReturn)
		return nil
	case *ast.ThrowStatement:
		if err := c.compileExpression(n.Argument); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpThrow)
		return nil
	case *ast.TryStatement:
		return c.compileTry(n)
	case *ast.SwitchStatement:
		return c.compileSwitch(n)
	case *ast.LabeledStatement:
		return c.compileLabeled(n)
	case *ast.WithStatement:
		return c.compileWith(n)
	default:
		return c.errf("unsupported statement node %T", s)
	}
}

func (c *Compiler) compileVariableDeclaration(n *ast.VariableDeclaration) error {
	for _, d := range n.Declarations {
		if d.Init != nil {
			if err := c.compileExpression(d.Init); err != nil {
				return err
			}
		} else if n.Kind != ast.VarVar {
			c.w.Emit(bytecode.OpPushUndefined)
		} else {
			continue // `var x;` with no initializer leaves the hoisted value alone
		}
		if err := c.compileBindingPattern(d.Target); err != nil {
			return err
		}
	}
	return nil
}

// compileBindingPattern pops TOS and binds it to target, recursing through
// destructuring patterns (spec.md §4.2 "cover grammars").
func (c *Compiler) compileBindingPattern(target ast.Pattern) error {
	switch t := target.(type) {
	case *ast.Identifier:
		loc := c.resolve(c.interner.Get(t.Name))
		c.w.Emit(bytecode.OpInitBinding)
		c.w.EmitU32(c.bindingIndex(loc))
		return nil
	case *ast.ArrayPattern:
		c.w.Emit(bytecode.OpGetIterator)
		c.w.EmitU8(0)
		for _, el := range t.Elements {
			if el == nil {
				c.w.Emit(bytecode.OpIteratorNext)
				c.w.Emit(bytecode.OpPop)
				continue
			}
			if rest, ok := el.(*ast.RestElement); ok {
				c.w.Emit(bytecode.OpMakeArray)
				c.w.EmitU32(0)
				if err := c.compileBindingPattern(rest.Argument); err != nil {
					return err
				}
				continue
			}
			c.w.Emit(bytecode.OpIteratorNext)
			if err := c.compileBindingPattern(el); err != nil {
				return err
			}
		}
		c.w.Emit(bytecode.OpIteratorClose)
		return nil
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			c.w.Emit(bytecode.OpDup)
			if err := c.compileExpression(p.Key); err != nil {
				return err
			}
			c.w.Emit(bytecode.OpGetProperty)
			c.w.EmitU32(c.icSlot(0))
			if err := c.compileBindingPattern(p.Value); err != nil {
				return err
			}
		}
		c.w.Emit(bytecode.OpPop)
		return nil
	case *ast.AssignmentPattern:
		c.w.Emit(bytecode.OpDup)
		c.w.Emit(bytecode.OpPushUndefined)
		c.w.Emit(bytecode.OpStrictNeq)
		c.w.Emit(bytecode.OpJumpTrue) // keep the value unless it is undefined
		patch := c.w.Pos()
		c.w.EmitU32(0)
		c.w.Emit(bytecode.OpPop)
		if err := c.compileExpression(t.Default); err != nil {
			return err
		}
		c.w.PatchU32(patch, uint32(c.w.Pos()))
		return c.compileBindingPattern(t.Target)
	default:
		return c.errf("unsupported binding pattern %T", target)
	}
}

func (c *Compiler) compileBlock(n *ast.BlockStatement) error {
	parent := c.cur
	c.cur = newScope(bytecode.ScopeBlock, parent)
	frameIdx := len(c.scopes)
	c.pushScopeFrame(bytecode.ScopeBlock)
	c.hoistBlockLexicals(n.Body)

	c.w.Emit(bytecode.OpPushScope)
	c.w.EmitU8(uint8(frameIdx))
	for _, stmt := range n.Body {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	c.w.Emit(bytecode.OpPopScope)
	c.scopes[frameIdx].Bindings = c.cur.bindings
	c.cur = parent
	return nil
}

func (c *Compiler) hoistBlockLexicals(body []ast.Statement) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			if s.Kind != ast.VarVar {
				for _, d := range s.Declarations {
					c.hoistPattern(d.Target, s.Kind != ast.VarConst, true)
				}
			}
		case *ast.FunctionDeclaration:
			if s.Name != nil {
				c.cur.declare(c.interner.Get(s.Name.Name), true, true)
			}
		case *ast.ClassDeclaration:
			if s.Name != nil {
				c.cur.declare(c.interner.Get(s.Name.Name), true, true)
			}
		}
	}
}

func (c *Compiler) compileIf(n *ast.IfStatement) error {
	if err := c.compileExpression(n.Test); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpJumpFalse)
	elsePatch := c.w.Pos()
	c.w.EmitU32(0)
	if err := c.compileStatement(n.Consequent); err != nil {
		return err
	}
	if n.Alternate == nil {
		c.w.PatchU32(elsePatch, uint32(c.w.Pos()))
		return nil
	}
	c.w.Emit(bytecode.OpJump)
	endPatch := c.w.Pos()
	c.w.EmitU32(0)
	c.w.PatchU32(elsePatch, uint32(c.w.Pos()))
	if err := c.compileStatement(n.Alternate); err != nil {
		return err
	}
	c.w.PatchU32(endPatch, uint32(c.w.Pos()))
	return nil
}

// loopContext tracks the patch sites break/continue within the current loop
// or switch must back-patch once the loop's bounds are known.
type loopContext struct {
	label          string
	breakPatches   []int
	continuePatches []int
	continueTarget int
	hasContinueTarget bool
}

func (c *Compiler) pushLoop(label string) *loopContext {
	if label == "" {
		label = c.pendingLabel
	}
	lc := &loopContext{label: label}
	c.loopStack = append(c.loopStack, lc)
	return lc
}

func (c *Compiler) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Compiler) compileWhile(n *ast.WhileStatement) error {
	lc := c.pushLoop("")
	start := c.w.Pos()
	if err := c.compileExpression(n.Test); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpJumpFalse)
	endPatch := c.w.Pos()
	c.w.EmitU32(0)
	if err := c.compileStatement(n.Body); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpJump)
	c.w.EmitU32(uint32(start))
	end := uint32(c.w.Pos())
	c.w.PatchU32(endPatch, end)
	for _, p := range lc.breakPatches {
		c.w.PatchU32(p, end)
	}
	for _, p := range lc.continuePatches {
		c.w.PatchU32(p, uint32(start))
	}
	c.popLoop()
	return nil
}

func (c *Compiler) compileDoWhile(n *ast.DoWhileStatement) error {
	lc := c.pushLoop("")
	start := c.w.Pos()
	if err := c.compileStatement(n.Body); err != nil {
		return err
	}
	continueTarget := uint32(c.w.Pos())
	if err := c.compileExpression(n.Test); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpJumpTrue)
	c.w.EmitU32(uint32(start))
	end := uint32(c.w.Pos())
	for _, p := range lc.breakPatches {
		c.w.PatchU32(p, end)
	}
	for _, p := range lc.continuePatches {
		c.w.PatchU32(p, continueTarget)
	}
	c.popLoop()
	return nil
}

func (c *Compiler) compileFor(n *ast.ForStatement) error {
	parent := c.cur
	hasScope := false
	if decl, ok := n.Init.(*ast.VariableDeclaration); ok && decl.Kind != ast.VarVar {
		hasScope = true
		c.cur = newScope(bytecode.ScopeForHead, parent)
		frameIdx := len(c.scopes)
		c.pushScopeFrame(bytecode.ScopeForHead)
		for _, d := range decl.Declarations {
			c.hoistPattern(d.Target, decl.Kind != ast.VarConst, true)
		}
		c.w.Emit(bytecode.OpPushScope)
		c.w.EmitU8(uint8(frameIdx))
		if err := c.compileVariableDeclaration(decl); err != nil {
			return err
		}
		c.scopes[frameIdx].Bindings = c.cur.bindings
	} else if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VariableDeclaration:
			if err := c.compileVariableDeclaration(init); err != nil {
				return err
			}
		case ast.Expression:
			if err := c.compileExpression(init); err != nil {
				return err
			}
			c.w.Emit(bytecode.OpPop)
		}
	}

	lc := c.pushLoop("")
	start := c.w.Pos()
	var endPatch int
	if n.Test != nil {
		if err := c.compileExpression(n.Test); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpJumpFalse)
		endPatch = c.w.Pos()
		c.w.EmitU32(0)
	}
	if err := c.compileStatement(n.Body); err != nil {
		return err
	}
	continueTarget := uint32(c.w.Pos())
	if n.Update != nil {
		if err := c.compileExpression(n.Update); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpPop)
	}
	c.w.Emit(bytecode.OpJump)
	c.w.EmitU32(uint32(start))
	end := uint32(c.w.Pos())
	if n.Test != nil {
		c.w.PatchU32(endPatch, end)
	}
	for _, p := range lc.breakPatches {
		c.w.PatchU32(p, end)
	}
	for _, p := range lc.continuePatches {
		c.w.PatchU32(p, continueTarget)
	}
	c.popLoop()
	if hasScope {
		c.w.Emit(bytecode.OpPopScope)
		c.cur = parent
	}
	return nil
}

func (c *Compiler) compileForInOf(n *ast.ForInOfStatement) error {
	if err := c.compileExpression(n.Right); err != nil {
		return err
	}
	// for-in's enumeration shares OpIteratorNext with for-of, driven by an
	// internal enumerate-keys iterator object the VM builds when the mode
	// operand selects for-in, keeping one iteration opcode pair in the
	// bytecode (spec.md's iterator-protocol unification).
	c.w.Emit(bytecode.OpGetIterator)
	if n.Kind == ast.ForIn {
		c.w.EmitU8(1)
	} else {
		c.w.EmitU8(0)
	}

	lc := c.pushLoop("")
	start := c.w.Pos()
	c.w.Emit(bytecode.OpIteratorNext)
	c.w.Emit(bytecode.OpJumpNullish)
	endPatch := c.w.Pos()
	c.w.EmitU32(0)

	parent := c.cur
	c.cur = newScope(bytecode.ScopeForHead, parent)
	frameIdx := len(c.scopes)
	c.pushScopeFrame(bytecode.ScopeForHead)
	var targetPattern ast.Pattern
	if decl, ok := n.Left.(*ast.VariableDeclaration); ok {
		targetPattern = decl.Declarations[0].Target
		c.hoistPattern(targetPattern, decl.Kind != ast.VarConst, decl.Kind != ast.VarVar)
	} else {
		targetPattern = n.Left.(ast.Pattern)
	}
	c.w.Emit(bytecode.OpPushScope)
	c.w.EmitU8(uint8(frameIdx))
	if err := c.compileBindingPattern(targetPattern); err != nil {
		return err
	}
	c.scopes[frameIdx].Bindings = c.cur.bindings

	if err := c.compileStatement(n.Body); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpPopScope)
	c.cur = parent

	c.w.Emit(bytecode.OpJump)
	c.w.EmitU32(uint32(start))
	end := uint32(c.w.Pos())
	c.w.PatchU32(endPatch, end)
	c.w.Emit(bytecode.OpIteratorClose)
	for _, p := range lc.breakPatches {
		c.w.PatchU32(p, end)
	}
	for _, p := range lc.continuePatches {
		c.w.PatchU32(p, uint32(start))
	}
	c.popLoop()
	return nil
}

func (c *Compiler) compileBreak(n *ast.BreakStatement) error {
	if len(c.loopStack) == 0 {
		return c.errf("illegal break statement")
	}
	lc := c.loopStack[len(c.loopStack)-1]
	if n.Label != nil {
		for i := len(c.loopStack) - 1; i >= 0; i-- {
			if c.loopStack[i].label == n.Label.Name {
				lc = c.loopStack[i]
				break
			}
		}
	}
	c.w.Emit(bytecode.OpJump)
	lc.breakPatches = append(lc.breakPatches, c.w.Pos())
	c.w.EmitU32(0)
	return nil
}

func (c *Compiler) compileContinue(n *ast.ContinueStatement) error {
	if len(c.loopStack) == 0 {
		return c.errf("illegal continue statement")
	}
	lc := c.loopStack[len(c.loopStack)-1]
	if n.Label != nil {
		for i := len(c.loopStack) - 1; i >= 0; i-- {
			if c.loopStack[i].label == n.Label.Name {
				lc = c.loopStack[i]
				break
			}
		}
	}
	c.w.Emit(bytecode.OpJump)
	lc.continuePatches = append(lc.continuePatches, c.w.Pos())
	c.w.EmitU32(0)
	return nil
}

func (c *Compiler) compileLabeled(n *ast.LabeledStatement) error {
	switch body := n.Body.(type) {
	case *ast.ForStatement, *ast.ForInOfStatement, *ast.WhileStatement, *ast.DoWhileStatement:
		c.pendingLabel = n.Label.Name
		defer func() { c.pendingLabel = "" }()
		return c.compileStatement(body.(ast.Statement))
	default:
		return c.compileStatement(body)
	}
}

func (c *Compiler) compileTry(n *ast.TryStatement) error {
	handlerIdx := len(c.handlers)
	start := c.w.Pos()
	if err := c.compileStatement(n.Block); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpJump)
	endPatch := c.w.Pos()
	c.w.EmitU32(0)

	protectedEnd := c.w.Pos()
	handlerPC := c.w.Pos()
	if n.Handler != nil {
		parent := c.cur
		c.cur = newScope(bytecode.ScopeCatch, parent)
		frameIdx := len(c.scopes)
		c.pushScopeFrame(bytecode.ScopeCatch)
		if n.Handler.Param != nil {
			c.hoistPattern(*n.Handler.Param, true, true)
		}
		c.w.Emit(bytecode.OpPushScope)
		c.w.EmitU8(uint8(frameIdx))
		if n.Handler.Param != nil {
			if err := c.compileBindingPattern(*n.Handler.Param); err != nil {
				return err
			}
		} else {
			c.w.Emit(bytecode.OpPop)
		}
		for _, stmt := range n.Handler.Body.Body {
			if err := c.compileStatement(stmt); err != nil {
				return err
			}
		}
		c.w.Emit(bytecode.OpPopScope)
		c.scopes[frameIdx].Bindings = c.cur.bindings
		c.cur = parent
	}
	c.w.PatchU32(endPatch, uint32(c.w.Pos()))
	c.handlers = append(c.handlers[:handlerIdx], bytecode.Handler{
		Start: start, End: protectedEnd, HandlerPC: handlerPC, Kind: bytecode.HandlerCatch,
	})

	if n.Finalizer != nil {
		finallyStart := c.w.Pos()
		for _, stmt := range n.Finalizer.Body {
			if err := c.compileStatement(stmt); err != nil {
				return err
			}
		}
		c.handlers = append(c.handlers, bytecode.Handler{
			Start: start, End: c.w.Pos(), HandlerPC: finallyStart, Kind: bytecode.HandlerFinally,
		})
	}
	return nil
}

func (c *Compiler) compileSwitch(n *ast.SwitchStatement) error {
	if err := c.compileExpression(n.Discriminant); err != nil {
		return err
	}
	lc := c.pushLoop("")
	var caseJumps []int
	defaultIdx := -1
	for i, cs := range n.Cases {
		if cs.Test == nil {
			defaultIdx = i
			caseJumps = append(caseJumps, -1)
			continue
		}
		c.w.Emit(bytecode.OpDup)
		if err := c.compileExpression(cs.Test); err != nil {
			return err
		}
		c.w.Emit(bytecode.OpStrictEq)
		c.w.Emit(bytecode.OpJumpTrue)
		caseJumps = append(caseJumps, c.w.Pos())
		c.w.EmitU32(0)
	}
	c.w.Emit(bytecode.OpJump)
	fallthroughToDefault := c.w.Pos()
	c.w.EmitU32(0)

	bodyStarts := make([]uint32, len(n.Cases))
	for i, cs := range n.Cases {
		c.w.Emit(bytecode.OpPop)
		bodyStarts[i] = uint32(c.w.Pos())
		for _, stmt := range cs.Consequent {
			if err := c.compileStatement(stmt); err != nil {
				return err
			}
		}
	}
	end := uint32(c.w.Pos())
	for i, pos := range caseJumps {
		if pos < 0 {
			continue
		}
		c.w.PatchU32(pos, bodyStarts[i])
	}
	if defaultIdx >= 0 {
		c.w.PatchU32(fallthroughToDefault, bodyStarts[defaultIdx])
	} else {
		c.w.PatchU32(fallthroughToDefault, end)
	}
	for _, p := range lc.breakPatches {
		c.w.PatchU32(p, end)
	}
	c.popLoop()
	return nil
}

func (c *Compiler) compileWith(n *ast.WithStatement) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	frameIdx := len(c.scopes)
	c.pushScopeFrame(bytecode.ScopeWith)
	c.w.Emit(bytecode.OpPushScope)
	c.w.EmitU8(uint8(frameIdx))
	if err := c.compileStatement(n.Body); err != nil {
		return err
	}
	c.w.Emit(bytecode.OpPopScope)
	return nil
}
