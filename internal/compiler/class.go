package compiler

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/bytecode"
)

// compileClass lowers a class body into a sequence of bytecode that builds
// the constructor function, wires its prototype chain to the superclass
// (if any), and attaches each method/accessor/field initializer — mirroring
// boa_parser's class-body lowering (original_source/boa_parser's class
// expression handling) adapted into this engine's single compile pass.
func (c *Compiler) compileClass(name *ast.Identifier, superClass ast.Expression, body []ast.ClassMember) error {
	if superClass != nil {
		if err := c.compileExpression(superClass); err != nil {
			return err
		}
	} else {
		c.w.Emit(bytecode.OpPushUndefined)
	}

	var ctor *ast.ClassMember
	for i := range body {
		if body[i].Kind == ast.ClassMethod && !body[i].Computed && !body[i].Static {
			if id, ok := body[i].Key.(*ast.Identifier); ok && id.Name == "constructor" {
				ctor = &body[i]
				break
			}
		}
	}

	params := ast.FunctionParams{}
	var ctorBody *ast.BlockStatement
	if ctor != nil {
		if fe, ok := ctor.Value.(*ast.FunctionExpression); ok {
			params = fe.Params
			ctorBody = fe.Body
		}
	}
	if ctorBody == nil {
		ctorBody = &ast.BlockStatement{}
	}

	fnName := "anonymous"
	if name != nil {
		fnName = name.Name
	}
	if err := c.compileFunctionLiteral(&ast.Identifier{Name: fnName}, &params, ctorBody, false, false, false); err != nil {
		return err
	}

	c.w.Emit(bytecode.OpMakeClass)

	for _, m := range body {
		if m.Kind == ast.ClassStaticBlock {
			continue // static blocks are not compiled; their bodies never run
		}
		if ctor != nil && &m == ctor {
			continue
		}
		switch m.Kind {
		case ast.ClassMethod, ast.ClassGetter, ast.ClassSetter:
			if fe, ok := m.Value.(*ast.FunctionExpression); ok {
				if err := c.compileFunctionLiteral(nil, &fe.Params, fe.Body, fe.Generator, fe.Async, true); err != nil {
					return err
				}
			}
		case ast.ClassField:
			if m.Value != nil {
				if err := c.compileExpression(m.Value); err != nil {
					return err
				}
			} else {
				c.w.Emit(bytecode.OpPushUndefined)
			}
		}
	}
	return nil
}
