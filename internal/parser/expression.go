package parser

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/token"
)

// parseExpression parses a (possibly comma-separated) Expression, the
// top-level entry used by expression statements and other non-pattern
// expression positions. noIn suppresses the `in` relational operator for
// the duration of a for-statement head (ECMA-262's NoIn grammar parameter).
func (p *Parser) parseExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	first, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	if !p.isPunct(",") {
		return first, nil
	}
	exprs := []ast.Expression{first}
	for p.isPunct(",") {
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return &ast.SequenceExpression{Node: spanFrom(start, p.prevEnd), Expressions: exprs}, nil
}

// parseAssignmentExpression implements ECMA-262's AssignmentExpression
// production: arrow functions, yield, the conditional expression, and
// assignment itself (whose left-hand side is re-validated into a Pattern
// via toPattern once an `=`-class operator is confirmed, per the
// cover-grammar approach spec.md §4.2 and ast.go's doc comments describe).
func (p *Parser) parseAssignmentExpression() (ast.Expression, error) {
	if p.ctx.inGenerator && p.isKeyword("yield") {
		return p.parseYieldExpression()
	}

	if arrow, ok, err := p.tryParseArrowFunction(); err != nil {
		return nil, err
	} else if ok {
		return arrow, nil
	}

	start := p.tok.Span.Start
	left, err := p.parseConditionalExpression()
	if err != nil {
		return nil, err
	}

	if op, ok := assignmentOperator(p.tok); ok {
		if err := p.next(); err != nil {
			return nil, err
		}
		target, err := toPattern(left)
		if err != nil {
			return nil, err
		}
		value, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{Node: spanFrom(start, p.prevEnd), Operator: op, Target: target, Value: value}, nil
	}
	return left, nil
}

func assignmentOperator(tok token.Token) (string, bool) {
	if tok.Kind != token.Punctuator {
		return "", false
	}
	switch tok.Literal {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=", "&=", "|=", "^=", "&&=", "||=", "??=":
		return tok.Literal, true
	}
	return "", false
}

func (p *Parser) parseYieldExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'yield'
		return nil, err
	}
	delegate := false
	if p.isPunct("*") {
		delegate = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	var arg ast.Expression
	if !p.tok.PrecededByLineTerminator && p.canStartAssignmentExpression() {
		a, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		arg = a
	}
	return &ast.YieldExpression{Node: spanFrom(start, p.prevEnd), Argument: arg, Delegate: delegate}, nil
}

// canStartAssignmentExpression reports whether the current token can begin
// an AssignmentExpression, used to decide whether `yield`/`return` take an
// argument or stand alone before ASI kicks in.
func (p *Parser) canStartAssignmentExpression() bool {
	if p.tok.Kind == token.EOF {
		return false
	}
	if p.isPunct(")") || p.isPunct("]") || p.isPunct("}") || p.isPunct(";") || p.isPunct(",") || p.isPunct(":") {
		return false
	}
	return true
}

func (p *Parser) parseConditionalExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	test, err := p.parseBinaryExpression(0)
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return test, nil
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	noIn := p.ctx.noIn
	p.ctx.noIn = false
	cons, err := p.parseAssignmentExpression()
	p.ctx.noIn = noIn
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	alt, err := p.parseAssignmentExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpression{Node: spanFrom(start, p.prevEnd), Test: test, Consequent: cons, Alternate: alt}, nil
}

// binaryPrecedence returns the precedence-climbing level for a binary
// operator token (higher binds tighter), or 0 if the token isn't one.
// noIn suppresses `in`, the way a for-statement head parses its init.
func (p *Parser) binaryPrecedence() int {
	if p.isKeyword("instanceof") {
		return 7
	}
	if p.isKeyword("in") {
		if p.ctx.noIn {
			return 0
		}
		return 7
	}
	if p.tok.Kind != token.Punctuator {
		return 0
	}
	switch p.tok.Literal {
	case "??":
		return 1
	case "||":
		return 1
	case "&&":
		return 2
	case "|":
		return 3
	case "^":
		return 4
	case "&":
		return 5
	case "==", "!=", "===", "!==":
		return 6
	case "<", ">", "<=", ">=":
		return 7
	case "<<", ">>", ">>>":
		return 8
	case "+", "-":
		return 9
	case "*", "/", "%":
		return 10
	case "**":
		return 11
	}
	return 0
}

func isLogicalOperator(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}

// parseBinaryExpression implements precedence climbing over the binary and
// logical operators, with `**` as the sole right-associative level.
func (p *Parser) parseBinaryExpression(minPrec int) (ast.Expression, error) {
	start := p.tok.Span.Start
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}
	for {
		prec := p.binaryPrecedence()
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		op := p.tok.Literal
		rightAssoc := op == "**"
		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseBinaryExpression(nextMin)
		if err != nil {
			return nil, err
		}
		span := spanFrom(start, p.prevEnd)
		if isLogicalOperator(op) {
			left = &ast.LogicalExpression{Node: span, Operator: op, Left: left, Right: right}
		} else {
			left = &ast.BinaryExpression{Node: span, Operator: op, Left: left, Right: right}
		}
	}
}

func (p *Parser) parseUnaryExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	if p.ctx.inAsync && p.isKeyword("await") {
		if err := p.next(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.AwaitExpression{Node: spanFrom(start, p.prevEnd), Argument: arg}, nil
	}
	if op, ok := unaryOperator(p.tok); ok {
		if err := p.next(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Node: spanFrom(start, p.prevEnd), Operator: op, Argument: arg}, nil
	}
	if p.isPunct("++") || p.isPunct("--") {
		op := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Node: spanFrom(start, p.prevEnd), Operator: op, Prefix: true, Argument: arg}, nil
	}
	return p.parsePostfixExpression()
}

func unaryOperator(tok token.Token) (ast.UnaryOperator, bool) {
	if tok.Kind == token.Keyword {
		switch tok.Literal {
		case "typeof":
			return ast.UnaryTypeof, true
		case "void":
			return ast.UnaryVoid, true
		case "delete":
			return ast.UnaryDelete, true
		}
		return "", false
	}
	if tok.Kind != token.Punctuator {
		return "", false
	}
	switch tok.Literal {
	case "+":
		return ast.UnaryPlus, true
	case "-":
		return ast.UnaryMinus, true
	case "!":
		return ast.UnaryNot, true
	case "~":
		return ast.UnaryBitNot, true
	}
	return "", false
}

func (p *Parser) parsePostfixExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	expr, err := p.parseLeftHandSideExpression()
	if err != nil {
		return nil, err
	}
	if !p.tok.PrecededByLineTerminator && (p.isPunct("++") || p.isPunct("--")) {
		op := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Node: spanFrom(start, p.prevEnd), Operator: op, Prefix: false, Argument: expr}, nil
	}
	return expr, nil
}

// parseLeftHandSideExpression parses NewExpression/CallExpression chains:
// member access, computed access, calls, and optional-chaining links, all
// folded into the same postfix loop the way boa_engine's
// left_hand_side/member.rs and optional/mod.rs do.
func (p *Parser) parseLeftHandSideExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	var expr ast.Expression
	var err error
	if p.isKeyword("new") {
		expr, err = p.parseNewExpression()
	} else {
		expr, err = p.parsePrimaryExpression()
	}
	if err != nil {
		return nil, err
	}
	return p.parseCallTail(expr, start)
}

func (p *Parser) parseNewExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'new'
		return nil, err
	}
	if p.isPunct(".") {
		// new.target
		if err := p.next(); err != nil {
			return nil, err
		}
		name, err := p.expectIdentifierName()
		if err != nil {
			return nil, err
		}
		if name != "target" {
			return nil, p.errf("expected 'target' after 'new.'")
		}
		return &ast.MemberExpression{
			Node:     spanFrom(start, p.prevEnd),
			Object:   &ast.Identifier{Node: spanFrom(start, start), Name: "new"},
			Property: &ast.Identifier{Name: "target"},
		}, nil
	}
	var callee ast.Expression
	var err error
	if p.isKeyword("new") {
		callee, err = p.parseNewExpression()
	} else {
		callee, err = p.parsePrimaryExpression()
	}
	if err != nil {
		return nil, err
	}
	callee, err = p.parseMemberTailOnly(callee, start)
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.isPunct("(") {
		args, err = p.parseArguments()
		if err != nil {
			return nil, err
		}
	}
	return &ast.NewExpression{Node: spanFrom(start, p.prevEnd), Callee: callee, Arguments: args}, nil
}

// parseMemberTailOnly consumes `.prop`/`[expr]` links but not calls, used
// while parsing a `new` callee (whose argument list, if any, binds to the
// outermost `new`, not to an intermediate member access).
func (p *Parser) parseMemberTailOnly(expr ast.Expression, start token.Position) (ast.Expression, error) {
	for {
		switch {
		case p.isPunct("."):
			if err := p.next(); err != nil {
				return nil, err
			}
			name, err := p.expectIdentifierName()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Node: spanFrom(start, p.prevEnd), Object: expr, Property: &ast.Identifier{Name: name}}
		case p.isPunct("["):
			if err := p.next(); err != nil {
				return nil, err
			}
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Node: spanFrom(start, p.prevEnd), Object: expr, Property: prop, Computed: true}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallTail(expr ast.Expression, start token.Position) (ast.Expression, error) {
	for {
		switch {
		case p.isPunct("."):
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.tok.Kind == token.PrivateIdentifier {
				name := p.tok.Literal
				if err := p.next(); err != nil {
					return nil, err
				}
				expr = &ast.MemberExpression{Node: spanFrom(start, p.prevEnd), Object: expr, Property: &ast.PrivateName{Name: name}}
				continue
			}
			name, err := p.expectIdentifierName()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Node: spanFrom(start, p.prevEnd), Object: expr, Property: &ast.Identifier{Name: name}}
		case p.isPunct("?."):
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.isPunct("(") {
				args, err := p.parseArguments()
				if err != nil {
					return nil, err
				}
				expr = &ast.CallExpression{Node: spanFrom(start, p.prevEnd), Callee: expr, Arguments: args, Optional: true}
				continue
			}
			if p.isPunct("[") {
				if err := p.next(); err != nil {
					return nil, err
				}
				prop, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if err := p.expectPunct("]"); err != nil {
					return nil, err
				}
				expr = &ast.MemberExpression{Node: spanFrom(start, p.prevEnd), Object: expr, Property: prop, Computed: true, Optional: true}
				continue
			}
			name, err := p.expectIdentifierName()
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Node: spanFrom(start, p.prevEnd), Object: expr, Property: &ast.Identifier{Name: name}, Optional: true}
		case p.isPunct("["):
			if err := p.next(); err != nil {
				return nil, err
			}
			prop, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpression{Node: spanFrom(start, p.prevEnd), Object: expr, Property: prop, Computed: true}
		case p.isPunct("("):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpression{Node: spanFrom(start, p.prevEnd), Callee: expr, Arguments: args}
		case p.tok.Kind == token.TemplateHead || p.tok.Kind == token.TemplateNoSub:
			tmpl, err := p.parseTemplateLiteral()
			if err != nil {
				return nil, err
			}
			expr = &ast.TaggedTemplateExpression{Node: spanFrom(start, p.prevEnd), Tag: expr, Template: tmpl}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !p.isPunct(")") {
		if p.isPunct("...") {
			start := p.tok.Span.Start
			if err := p.next(); err != nil {
				return nil, err
			}
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, &ast.SpreadElement{Node: spanFrom(start, p.prevEnd), Argument: arg})
		} else {
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimaryExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	if p.isContextualKeyword("async") {
		if af, ok, err := p.tryParseAsyncFunctionExpression(); err != nil {
			return nil, err
		} else if ok {
			return af, nil
		}
	}
	switch {
	case p.tok.Kind == token.Identifier:
		name := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Node: spanFrom(start, p.prevEnd), Name: name}, nil
	case p.isKeyword("this"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.ThisExpression{Node: spanFrom(start, p.prevEnd)}, nil
	case p.isKeyword("super"):
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.SuperExpression{Node: spanFrom(start, p.prevEnd)}, nil
	case p.isKeyword("function"):
		return p.parseFunctionExpression(false)
	case p.isKeyword("class"):
		return p.parseClassExpression()
	case p.tok.Kind == token.NullLiteral:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.NullLiteral{Node: spanFrom(start, p.prevEnd)}, nil
	case p.tok.Kind == token.BooleanLiteral:
		v := p.tok.Literal == "true"
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.BooleanLiteral{Node: spanFrom(start, p.prevEnd), Value: v}, nil
	case p.tok.Kind == token.NumericLiteral:
		tok := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		return parseNumberLiteral(tok)
	case p.tok.Kind == token.StringLiteral:
		v := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Node: spanFrom(start, p.prevEnd), Value: v}, nil
	case p.tok.Kind == token.TemplateNoSub || p.tok.Kind == token.TemplateHead:
		return p.parseTemplateLiteral()
	case p.tok.Kind == token.PrivateIdentifier:
		name := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.PrivateName{Node: spanFrom(start, p.prevEnd), Name: name}, nil
	case p.isPunct("("):
		if err := p.next(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return expr, nil
	case p.isPunct("["):
		return p.parseArrayLiteral()
	case p.isPunct("{"):
		return p.parseObjectLiteral()
	case p.isPunct("/") || p.isPunct("/="):
		tok, err := p.lex.NextRegExp(start)
		if err != nil {
			return nil, wrapLexErr(err)
		}
		p.peeked = nil
		p.tok = tok
		if err := p.next(); err != nil {
			return nil, err
		}
		pattern, flags := splitRegExpLiteral(tok.Literal)
		return &ast.RegExpLiteral{Node: tok.Span, Pattern: pattern, Flags: flags}, nil
	case p.tok.Kind == token.Keyword:
		// contextual keywords (yield/await/let/of/get/set/static) used as
		// plain identifiers outside their special contexts.
		name := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Node: spanFrom(start, p.prevEnd), Name: name}, nil
	default:
		return nil, p.errf("unexpected token %q", p.tok.Literal)
	}
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume '['
		return nil, err
	}
	var elems []ast.Expression
	for !p.isPunct("]") {
		if p.isPunct(",") {
			elems = append(elems, nil)
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		if p.isPunct("...") {
			spreadStart := p.tok.Span.Start
			if err := p.next(); err != nil {
				return nil, err
			}
			arg, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, &ast.SpreadElement{Node: spanFrom(spreadStart, p.prevEnd), Argument: arg})
		} else {
			e, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Node: spanFrom(start, p.prevEnd), Elements: elems}, nil
}

func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume '{'
		return nil, err
	}
	var props []ast.ObjectProperty
	for !p.isPunct("}") {
		prop, err := p.parseObjectProperty()
		if err != nil {
			return nil, err
		}
		props = append(props, *prop)
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.ObjectLiteral{Node: spanFrom(start, p.prevEnd), Properties: props}, nil
}

func (p *Parser) parseObjectProperty() (*ast.ObjectProperty, error) {
	start := p.tok.Span.Start
	if p.isPunct("...") {
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ObjectProperty{Node: spanFrom(start, p.prevEnd), Kind: ast.PropertySpread, Value: v}, nil
	}

	async, generator := false, false
	if p.isContextualKeyword("async") {
		cp := p.save()
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.canStartPropertyKey() && !p.tok.PrecededByLineTerminator {
			async = true
		} else {
			p.restore(cp)
		}
	}
	if p.isPunct("*") {
		generator = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if p.isContextualKeyword("get") || p.isContextualKeyword("set") {
		accessor := p.tok.Literal
		cp := p.save()
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.canStartPropertyKey() && !p.isPunct("(") && !p.isPunct(":") && !p.isPunct(",") && !p.isPunct("}") {
			key, computed, err := p.parsePropertyKey()
			if err != nil {
				return nil, err
			}
			fn, err := p.parseFunctionTail(nil, false, false)
			if err != nil {
				return nil, err
			}
			kind := ast.PropertyGetter
			if accessor == "set" {
				kind = ast.PropertySetter
			}
			return &ast.ObjectProperty{Node: spanFrom(start, p.prevEnd), Kind: kind, Key: key, Computed: computed, Value: fn}, nil
		}
		p.restore(cp)
	}

	key, computed, err := p.parsePropertyKey()
	if err != nil {
		return nil, err
	}

	switch {
	case p.isPunct("("):
		fn, err := p.parseFunctionTail(nil, generator, async)
		if err != nil {
			return nil, err
		}
		return &ast.ObjectProperty{Node: spanFrom(start, p.prevEnd), Kind: ast.PropertyMethod, Key: key, Computed: computed, Value: fn}, nil
	case p.isPunct(":"):
		if err := p.next(); err != nil {
			return nil, err
		}
		v, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ObjectProperty{Node: spanFrom(start, p.prevEnd), Kind: ast.PropertyNormal, Key: key, Computed: computed, Value: v}, nil
	default:
		// shorthand: {a} or {a = default} (the latter only legal inside a
		// destructuring pattern; toPattern validates that when converting).
		id, ok := key.(*ast.Identifier)
		if !ok {
			return nil, p.errf("invalid shorthand property")
		}
		var value ast.Expression = &ast.Identifier{Node: id.Node, Name: id.Name}
		if p.isPunct("=") {
			eqStart := id.Span.Start
			if err := p.next(); err != nil {
				return nil, err
			}
			def, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			value = &ast.AssignmentExpression{Node: spanFrom(eqStart, p.prevEnd), Operator: "=", Target: id, Value: def}
		}
		return &ast.ObjectProperty{Node: spanFrom(start, p.prevEnd), Kind: ast.PropertyNormal, Key: key, Shorthand: true, Value: value}, nil
	}
}

func (p *Parser) canStartPropertyKey() bool {
	switch {
	case p.tok.Kind == token.Identifier, p.tok.Kind == token.Keyword,
		p.tok.Kind == token.StringLiteral, p.tok.Kind == token.NumericLiteral:
		return true
	case p.isPunct("["):
		return true
	}
	return false
}

func (p *Parser) parsePropertyKey() (ast.Expression, bool, error) {
	start := p.tok.Span.Start
	switch {
	case p.isPunct("["):
		if err := p.next(); err != nil {
			return nil, false, err
		}
		e, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, false, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, false, err
		}
		return e, true, nil
	case p.tok.Kind == token.StringLiteral:
		v := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, false, err
		}
		return &ast.StringLiteral{Node: spanFrom(start, p.prevEnd), Value: v}, false, nil
	case p.tok.Kind == token.NumericLiteral:
		tok := p.tok
		if err := p.next(); err != nil {
			return nil, false, err
		}
		n, err := parseNumberLiteral(tok)
		return n, false, err
	default:
		name, err := p.expectIdentifierName()
		if err != nil {
			return nil, false, err
		}
		return &ast.Identifier{Node: spanFrom(start, p.prevEnd), Name: name}, false, nil
	}
}
