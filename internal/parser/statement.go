package parser

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/token"
)

// parseStatementList parses statements until stop reports true. When
// allowDirectives is set (Program and function bodies only, per ECMA-262
// §11.2.1 — plain blocks don't get a directive prologue), a leading run of
// bare string-literal expression statements is scanned for a "use strict"
// directive, which switches the parser (and lexer) into strict mode for the
// remainder of the list.
func (p *Parser) parseStatementList(stop func() bool, allowDirectives bool) ([]ast.Statement, bool, error) {
	var body []ast.Statement
	strict := false
	prologue := allowDirectives
	for !stop() {
		if p.tok.Kind == token.EOF {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, false, err
		}
		if prologue {
			if es, ok := stmt.(*ast.ExpressionStatement); ok {
				if sl, ok := es.Expression.(*ast.StringLiteral); ok {
					if sl.Value == "use strict" {
						strict = true
						p.ctx.strict = true
						p.lex.SetStrict(true)
					}
				} else {
					prologue = false
				}
			} else {
				prologue = false
			}
		}
		body = append(body, stmt)
	}
	return body, strict, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.isPunct("{"):
		return p.parseBlockStatement()
	case p.isKeyword("var"), p.isKeyword("let"), p.isKeyword("const"):
		return p.parseVariableStatement()
	case p.isKeyword("function"):
		return p.parseFunctionDeclaration()
	case p.isContextualKeyword("async") && p.peekIsFunctionKeyword():
		return p.parseAsyncFunctionDeclaration()
	case p.isKeyword("class"):
		return p.parseClassDeclaration()
	case p.isPunct(";"):
		start := p.tok.Span.Start
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.EmptyStatement{Node: spanFrom(start, p.prevEnd)}, nil
	case p.isKeyword("debugger"):
		start := p.tok.Span.Start
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.consumeSemicolon(); err != nil {
			return nil, err
		}
		return &ast.DebuggerStatement{Node: spanFrom(start, p.prevEnd)}, nil
	case p.isKeyword("if"):
		return p.parseIfStatement()
	case p.isKeyword("for"):
		return p.parseForStatement()
	case p.isKeyword("while"):
		return p.parseWhileStatement()
	case p.isKeyword("do"):
		return p.parseDoWhileStatement()
	case p.isKeyword("switch"):
		return p.parseSwitchStatement()
	case p.isKeyword("break"):
		return p.parseBreakStatement()
	case p.isKeyword("continue"):
		return p.parseContinueStatement()
	case p.isKeyword("return"):
		return p.parseReturnStatement()
	case p.isKeyword("throw"):
		return p.parseThrowStatement()
	case p.isKeyword("try"):
		return p.parseTryStatement()
	case p.isKeyword("with"):
		return p.parseWithStatement()
	case p.isKeyword("import") && p.ctx.module:
		return p.parseImportDeclaration()
	case p.isKeyword("export") && p.ctx.module:
		return p.parseExportDeclaration()
	case p.tok.Kind == token.Identifier:
		return p.parseLabeledOrExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// peekIsFunctionKeyword looks one token past a contextual `async` without
// permanently consuming it, to disambiguate an async-function declaration
// from an expression statement starting with the identifier `async`.
func (p *Parser) peekIsFunctionKeyword() bool {
	cp := p.save()
	defer p.restore(cp)
	if err := p.next(); err != nil {
		return false
	}
	return p.isKeyword("function") && !p.tok.PrecededByLineTerminator
}

func (p *Parser) parseBlockStatement() (*ast.BlockStatement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume '{'
		return nil, err
	}
	body, _, err := p.parseStatementList(func() bool { return p.isPunct("}") }, false)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.BlockStatement{Node: spanFrom(start, p.prevEnd), Body: body}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Node: spanFrom(start, p.prevEnd), Expression: expr}, nil
}

// parseLabeledOrExpressionStatement disambiguates `identifier: statement`
// from an ordinary expression statement starting with an identifier, via a
// one-token speculative lookahead.
func (p *Parser) parseLabeledOrExpressionStatement() (ast.Statement, error) {
	cp := p.save()
	start := p.tok.Span.Start
	name := p.tok.Literal
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.isPunct(":") {
		if err := p.next(); err != nil {
			return nil, err
		}
		label := &ast.Identifier{Name: name}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.LabeledStatement{Node: spanFrom(start, p.prevEnd), Label: label, Body: body}, nil
	}
	p.restore(cp)
	return p.parseExpressionStatement()
}

func (p *Parser) parseVariableStatement() (ast.Statement, error) {
	decl, err := p.parseVariableDeclarationList()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseVariableDeclarationList consumes `var`/`let`/`const` and its
// comma-separated declarators, but not a trailing semicolon, so it can
// double as a for-statement head.
func (p *Parser) parseVariableDeclarationList() (*ast.VariableDeclaration, error) {
	start := p.tok.Span.Start
	var kind ast.VarKind
	switch {
	case p.isKeyword("var"):
		kind = ast.VarVar
	case p.isKeyword("let"):
		kind = ast.VarLet
	case p.isKeyword("const"):
		kind = ast.VarConst
	default:
		return nil, p.errf("expected 'var', 'let', or 'const'")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	var decls []ast.VariableDeclarator
	for {
		declStart := p.tok.Span.Start
		target, init, err := p.parseBindingAndInit()
		if err != nil {
			return nil, err
		}
		decls = append(decls, ast.VariableDeclarator{Node: spanFrom(declStart, p.prevEnd), Target: target, Init: init})
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return &ast.VariableDeclaration{Node: spanFrom(start, p.prevEnd), Kind: kind, Declarations: decls}, nil
}

// parseBindingAndInit parses `BindingTarget Initializer_opt`, reusing
// parseAssignmentExpression's cover-grammar machinery: an AssignmentPattern
// with operator `=` splits cleanly into (Target, Value).
func (p *Parser) parseBindingAndInit() (ast.Pattern, ast.Expression, error) {
	expr, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, nil, err
	}
	if ae, ok := expr.(*ast.AssignmentExpression); ok && ae.Operator == "=" {
		return ae.Target, ae.Value, nil
	}
	pat, err := toPattern(expr)
	return pat, nil, err
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'if'
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	cons, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var alt ast.Statement
	if p.isKeyword("else") {
		if err := p.next(); err != nil {
			return nil, err
		}
		a, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		alt = a
	}
	return &ast.IfStatement{Node: spanFrom(start, p.prevEnd), Test: test, Consequent: cons, Alternate: alt}, nil
}

func (p *Parser) parseLoopBody() (ast.Statement, error) {
	outer := p.ctx.inLoop
	p.ctx.inLoop = true
	body, err := p.parseStatement()
	p.ctx.inLoop = outer
	return body, err
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Node: spanFrom(start, p.prevEnd), Test: test, Body: body}, nil
}

func (p *Parser) parseDoWhileStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'do'
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	// Trailing semicolon after do-while is inserted unconditionally even
	// without ASI triggering (ECMA-262 §14.7.2's special case).
	if p.isPunct(";") {
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return &ast.DoWhileStatement{Node: spanFrom(start, p.prevEnd), Body: body, Test: test}, nil
}

func (p *Parser) parseForStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'for'
		return nil, err
	}
	await := false
	if p.isContextualKeyword("await") {
		await = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	if p.isPunct(";") {
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.finishClassicFor(start, nil)
	}

	if p.isKeyword("var") || p.isKeyword("let") || p.isKeyword("const") {
		outerNoIn := p.ctx.noIn
		p.ctx.noIn = true
		declList, err := p.parseVariableDeclarationList()
		p.ctx.noIn = outerNoIn
		if err != nil {
			return nil, err
		}
		if p.isKeyword("in") || p.isContextualKeyword("of") {
			if len(declList.Declarations) != 1 {
				return nil, p.errf("for-in/of loop variable declaration may not have multiple bindings")
			}
			return p.finishForInOf(start, declList, await)
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return p.finishClassicFor(start, declList)
	}

	outerNoIn := p.ctx.noIn
	p.ctx.noIn = true
	initExpr, err := p.parseExpression()
	p.ctx.noIn = outerNoIn
	if err != nil {
		return nil, err
	}
	if p.isKeyword("in") || p.isContextualKeyword("of") {
		pat, err := toPattern(initExpr)
		if err != nil {
			return nil, err
		}
		return p.finishForInOf(start, pat, await)
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return p.finishClassicFor(start, initExpr)
}

func (p *Parser) finishForInOf(start token.Position, left any, await bool) (ast.Statement, error) {
	kind := ast.ForIn
	if p.isContextualKeyword("of") {
		kind = ast.ForOf
	}
	if err := p.next(); err != nil { // consume 'in'/'of'
		return nil, err
	}
	var right ast.Expression
	var err error
	if kind == ast.ForOf {
		right, err = p.parseAssignmentExpression()
	} else {
		right, err = p.parseExpression()
	}
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &ast.ForInOfStatement{Node: spanFrom(start, p.prevEnd), Kind: kind, Left: left, Right: right, Body: body, Await: await}, nil
}

func (p *Parser) finishClassicFor(start token.Position, init any) (ast.Statement, error) {
	var test, update ast.Expression
	if !p.isPunct(";") {
		t, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		test = t
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	if !p.isPunct(")") {
		u, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		update = u
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Node: spanFrom(start, p.prevEnd), Init: init, Test: test, Update: update, Body: body}, nil
}

func (p *Parser) parseBreakStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	var label *ast.Identifier
	if p.tok.Kind == token.Identifier && !p.tok.PrecededByLineTerminator {
		label = &ast.Identifier{Node: p.tok.Span, Name: p.tok.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.BreakStatement{Node: spanFrom(start, p.prevEnd), Label: label}, nil
}

func (p *Parser) parseContinueStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	var label *ast.Identifier
	if p.tok.Kind == token.Identifier && !p.tok.PrecededByLineTerminator {
		label = &ast.Identifier{Node: p.tok.Span, Name: p.tok.Literal}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ContinueStatement{Node: spanFrom(start, p.prevEnd), Label: label}, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	var arg ast.Expression
	if !p.tok.PrecededByLineTerminator && p.canStartAssignmentExpression() {
		a, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arg = a
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Node: spanFrom(start, p.prevEnd), Argument: arg}, nil
}

func (p *Parser) parseThrowStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.PrecededByLineTerminator {
		return nil, p.errf("illegal newline after 'throw'")
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ThrowStatement{Node: spanFrom(start, p.prevEnd), Argument: arg}, nil
}

func (p *Parser) parseWithStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	obj, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WithStatement{Node: spanFrom(start, p.prevEnd), Object: obj, Body: body}, nil
}

func (p *Parser) parseSwitchStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	disc, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	outerSwitch := p.ctx.inSwitch
	p.ctx.inSwitch = true
	var cases []ast.SwitchCase
	seenDefault := false
	for !p.isPunct("}") {
		caseStart := p.tok.Span.Start
		var test ast.Expression
		if p.isKeyword("default") {
			if seenDefault {
				p.ctx.inSwitch = outerSwitch
				return nil, p.errf("more than one default clause in switch statement")
			}
			seenDefault = true
			if err := p.next(); err != nil {
				p.ctx.inSwitch = outerSwitch
				return nil, err
			}
		} else {
			if err := p.expectKeyword("case"); err != nil {
				p.ctx.inSwitch = outerSwitch
				return nil, err
			}
			t, err := p.parseExpression()
			if err != nil {
				p.ctx.inSwitch = outerSwitch
				return nil, err
			}
			test = t
		}
		if err := p.expectPunct(":"); err != nil {
			p.ctx.inSwitch = outerSwitch
			return nil, err
		}
		var body []ast.Statement
		for !p.isPunct("}") && !p.isKeyword("case") && !p.isKeyword("default") {
			stmt, err := p.parseStatement()
			if err != nil {
				p.ctx.inSwitch = outerSwitch
				return nil, err
			}
			body = append(body, stmt)
		}
		cases = append(cases, ast.SwitchCase{Node: spanFrom(caseStart, p.prevEnd), Test: test, Consequent: body})
	}
	p.ctx.inSwitch = outerSwitch
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.SwitchStatement{Node: spanFrom(start, p.prevEnd), Discriminant: disc, Cases: cases}, nil
}

func (p *Parser) parseTryStatement() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil {
		return nil, err
	}
	block, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	var handler *ast.CatchClause
	if p.isKeyword("catch") {
		catchStart := p.tok.Span.Start
		if err := p.next(); err != nil {
			return nil, err
		}
		var param ast.Pattern
		if p.isPunct("(") {
			if err := p.next(); err != nil {
				return nil, err
			}
			target, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			pat, err := toPattern(target)
			if err != nil {
				return nil, err
			}
			param = pat
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		body, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		var paramPtr *ast.Pattern
		if param != nil {
			paramPtr = &param
		}
		handler = &ast.CatchClause{Node: spanFrom(catchStart, p.prevEnd), Param: paramPtr, Body: body}
	}
	var finalizer *ast.BlockStatement
	if p.isKeyword("finally") {
		if err := p.next(); err != nil {
			return nil, err
		}
		f, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		finalizer = f
	}
	if handler == nil && finalizer == nil {
		return nil, p.errf("missing catch or finally after try")
	}
	return &ast.TryStatement{Node: spanFrom(start, p.prevEnd), Block: block, Handler: handler, Finalizer: finalizer}, nil
}
