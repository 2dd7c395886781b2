package parser

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/token"
)

// parseParams parses a parenthesized FormalParameterList: identifiers,
// destructuring patterns, defaults, and a single trailing rest parameter
// (spec.md §4.2).
func (p *Parser) parseParams() (ast.FunctionParams, error) {
	if err := p.expectPunct("("); err != nil {
		return ast.FunctionParams{}, err
	}
	var params []ast.Pattern
	for !p.isPunct(")") {
		if p.isPunct("...") {
			start := p.tok.Span.Start
			if err := p.next(); err != nil {
				return ast.FunctionParams{}, err
			}
			target, err := p.parseAssignmentExpression()
			if err != nil {
				return ast.FunctionParams{}, err
			}
			pat, err := toPattern(target)
			if err != nil {
				return ast.FunctionParams{}, err
			}
			params = append(params, &ast.RestElement{Node: spanFrom(start, p.prevEnd), Argument: pat})
			break
		}
		elemExpr, err := p.parseAssignmentExpression()
		if err != nil {
			return ast.FunctionParams{}, err
		}
		pat, err := toPattern(elemExpr)
		if err != nil {
			return ast.FunctionParams{}, err
		}
		params = append(params, pat)
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return ast.FunctionParams{}, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return ast.FunctionParams{}, err
	}
	return ast.FunctionParams{Params: params}, nil
}

// parseFunctionBody parses a `{ ... }` function body, honoring a leading
// "use strict" directive the way parseStatementList does for Program.
func (p *Parser) parseFunctionBody(generator, async bool) (*ast.BlockStatement, bool, error) {
	start := p.tok.Span.Start
	if err := p.expectPunct("{"); err != nil {
		return nil, false, err
	}
	outerGen, outerAsync := p.ctx.inGenerator, p.ctx.inAsync
	outerFn, outerLoop, outerSwitch := p.ctx.inFunction, p.ctx.inLoop, p.ctx.inSwitch
	p.ctx.inGenerator, p.ctx.inAsync = generator, async
	p.ctx.inFunction, p.ctx.inLoop, p.ctx.inSwitch = true, false, false

	outerStrict := p.ctx.strict
	body, strict, err := p.parseStatementList(func() bool { return p.isPunct("}") }, true)

	p.ctx.inGenerator, p.ctx.inAsync = outerGen, outerAsync
	p.ctx.inFunction, p.ctx.inLoop, p.ctx.inSwitch = outerFn, outerLoop, outerSwitch
	p.ctx.strict = outerStrict
	p.lex.SetStrict(outerStrict)
	if err != nil {
		return nil, false, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, false, err
	}
	return &ast.BlockStatement{Node: spanFrom(start, p.prevEnd), Body: body}, strict, nil
}

// parseFunctionTail parses the params+body of a function/method literal
// once `function`/`*`/name have already been consumed (or never existed, as
// for object-literal methods). name may be nil for anonymous functions.
func (p *Parser) parseFunctionTail(name *ast.Identifier, generator, async bool) (*ast.FunctionExpression, error) {
	start := p.prevEnd
	if name != nil {
		start = name.Span.Start
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, strict, err := p.parseFunctionBody(generator, async)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionExpression{
		Node: spanFrom(start, p.prevEnd), Name: name, Params: params, Body: body,
		Generator: generator, Async: async, Strict: strict || p.ctx.strict,
	}, nil
}

// parseFunctionExpression parses `function [*] [name] (...) { ... }`. The
// caller is responsible for fixing up Node.Span when a preceding `async`
// keyword widens the expression's start position.
func (p *Parser) parseFunctionExpression(async bool) (ast.Expression, error) {
	start := p.tok.Span.Start
	if err := p.expectKeyword("function"); err != nil {
		return nil, err
	}
	generator := false
	if p.isPunct("*") {
		generator = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	var name *ast.Identifier
	if p.tok.Kind == token.Identifier {
		outerGen, outerAsync := p.ctx.inGenerator, p.ctx.inAsync
		p.ctx.inGenerator, p.ctx.inAsync = generator, async
		id, err := p.expectBindingIdentifier()
		p.ctx.inGenerator, p.ctx.inAsync = outerGen, outerAsync
		if err != nil {
			return nil, err
		}
		name = id
	}
	fn, err := p.parseFunctionTail(name, generator, async)
	if err != nil {
		return nil, err
	}
	fn.Node = spanFrom(start, p.prevEnd)
	return fn, nil
}

// parseFunctionDeclaration parses a top-level/statement-position function
// declaration (name is mandatory, unlike FunctionExpression).
func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.expectKeyword("function"); err != nil {
		return nil, err
	}
	generator := false
	if p.isPunct("*") {
		generator = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	name, err := p.expectBindingIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, _, err := p.parseFunctionBody(generator, false)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Node: spanFrom(start, p.prevEnd), Name: name, Params: params, Body: body,
		Generator: generator,
	}, nil
}

// parseAsyncFunctionDeclaration handles `async function name(...) {...}` in
// statement position.
func (p *Parser) parseAsyncFunctionDeclaration() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'async'
		return nil, err
	}
	if err := p.expectKeyword("function"); err != nil {
		return nil, err
	}
	generator := false
	if p.isPunct("*") {
		generator = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	name, err := p.expectBindingIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, _, err := p.parseFunctionBody(generator, true)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Node: spanFrom(start, p.prevEnd), Name: name, Params: params, Body: body,
		Generator: generator, Async: true,
	}, nil
}

// tryParseAsyncFunctionExpression speculatively parses `async function...`
// or an async arrow from primary-expression position; restores on mismatch
// so plain `async` resolves to an ordinary identifier.
func (p *Parser) tryParseAsyncFunctionExpression() (ast.Expression, bool, error) {
	cp := p.save()
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'async'
		return nil, false, err
	}
	if p.tok.PrecededByLineTerminator {
		p.restore(cp)
		return nil, false, nil
	}
	if p.isKeyword("function") {
		p.restore(cp)
		if err := p.next(); err != nil {
			return nil, false, err
		}
		fn, err := p.parseFunctionExpression(true)
		if err != nil {
			return nil, false, err
		}
		fn.(*ast.FunctionExpression).Node = spanFrom(start, p.prevEnd)
		return fn, true, nil
	}
	p.restore(cp)
	return nil, false, nil
}

// tryParseArrowFunction speculatively parses an ArrowFunction, backtracking
// to the saved checkpoint if the lookahead doesn't confirm one. Covers
// `x => ...`, `(a, b) => ...`, `async x => ...` and `async (a, b) => ...`,
// per boa_engine's speculative parse for the same ambiguity.
func (p *Parser) tryParseArrowFunction() (ast.Expression, bool, error) {
	cp := p.save()
	start := p.tok.Span.Start

	async := false
	if p.isContextualKeyword("async") && !p.tok.PrecededByLineTerminator {
		// Only consume 'async' speculatively if what follows can still be
		// an arrow head; otherwise let normal primary-expression parsing
		// (which also tries the async-function-expression path) handle it.
		lookCp := p.save()
		if err := p.next(); err != nil {
			return nil, false, err
		}
		if !p.tok.PrecededByLineTerminator && (p.tok.Kind == token.Identifier || p.isPunct("(")) {
			async = true
		} else {
			p.restore(lookCp)
		}
	}

	var params ast.FunctionParams
	if p.tok.Kind == token.Identifier {
		id := &ast.Identifier{Node: p.tok.Span, Name: p.tok.Literal}
		if err := p.next(); err != nil {
			return nil, false, err
		}
		if !p.isPunct("=>") || p.tok.PrecededByLineTerminator {
			p.restore(cp)
			return nil, false, nil
		}
		params = ast.FunctionParams{Params: []ast.Pattern{id}}
	} else if p.isPunct("(") {
		ps, ok := p.tryParseParamsOnly()
		if !ok || !p.isPunct("=>") || p.tok.PrecededByLineTerminator {
			p.restore(cp)
			return nil, false, nil
		}
		params = ps
	} else {
		p.restore(cp)
		return nil, false, nil
	}

	if err := p.next(); err != nil { // consume '=>'
		return nil, false, err
	}
	return p.finishArrowFunction(start, params, async)
}

// tryParseParamsOnly attempts parseParams but reports failure instead of a
// parser error, so tryParseArrowFunction can fall back to treating `(...)`
// as a parenthesized expression.
func (p *Parser) tryParseParamsOnly() (ast.FunctionParams, bool) {
	cp := p.save()
	params, err := p.parseParams()
	if err != nil {
		p.restore(cp)
		return ast.FunctionParams{}, false
	}
	return params, true
}

func (p *Parser) finishArrowFunction(start token.Position, params ast.FunctionParams, async bool) (ast.Expression, bool, error) {
	outerGen, outerAsync, outerFn, outerLoop, outerSwitch := p.ctx.inGenerator, p.ctx.inAsync, p.ctx.inFunction, p.ctx.inLoop, p.ctx.inSwitch
	p.ctx.inGenerator = false
	p.ctx.inAsync = async
	p.ctx.inFunction, p.ctx.inLoop, p.ctx.inSwitch = true, false, false
	defer func() {
		p.ctx.inGenerator, p.ctx.inAsync = outerGen, outerAsync
		p.ctx.inFunction, p.ctx.inLoop, p.ctx.inSwitch = outerFn, outerLoop, outerSwitch
	}()

	arrow := &ast.ArrowFunctionExpression{Params: params, Async: async}
	if p.isPunct("{") {
		body, _, err := p.parseFunctionBody(false, async)
		if err != nil {
			return nil, false, err
		}
		arrow.BodyBlock = body
	} else {
		noIn := p.ctx.noIn
		p.ctx.noIn = false
		expr, err := p.parseAssignmentExpression()
		p.ctx.noIn = noIn
		if err != nil {
			return nil, false, err
		}
		arrow.BodyExpr = expr
	}
	arrow.Node = spanFrom(start, p.prevEnd)
	return arrow, true, nil
}
