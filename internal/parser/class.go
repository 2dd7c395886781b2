package parser

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/token"
)

// parseClassExpression and parseClassDeclaration share a body parser since
// ClassExpression/ClassDeclaration differ only in whether the name is
// mandatory (ast.go mirrors this: both carry Name/SuperClass/Body).
func (p *Parser) parseClassExpression() (ast.Expression, error) {
	start := p.tok.Span.Start
	name, superClass, body, err := p.parseClassTail(false)
	if err != nil {
		return nil, err
	}
	return &ast.ClassExpression{Node: spanFrom(start, p.prevEnd), Name: name, SuperClass: superClass, Body: body}, nil
}

func (p *Parser) parseClassDeclaration() (ast.Statement, error) {
	start := p.tok.Span.Start
	name, superClass, body, err := p.parseClassTail(true)
	if err != nil {
		return nil, err
	}
	return &ast.ClassDeclaration{Node: spanFrom(start, p.prevEnd), Name: name, SuperClass: superClass, Body: body}, nil
}

func (p *Parser) parseClassTail(nameRequired bool) (*ast.Identifier, ast.Expression, []ast.ClassMember, error) {
	if err := p.expectKeyword("class"); err != nil {
		return nil, nil, nil, err
	}
	// Class bodies are always strict (ECMA-262 16.2.2).
	outerStrict := p.ctx.strict
	p.ctx.strict = true
	p.lex.SetStrict(true)
	defer func() {
		p.ctx.strict = outerStrict
		p.lex.SetStrict(outerStrict)
	}()

	var name *ast.Identifier
	if p.tok.Kind == token.Identifier {
		id, err := p.expectBindingIdentifier()
		if err != nil {
			return nil, nil, nil, err
		}
		name = id
	} else if nameRequired {
		return nil, nil, nil, p.errf("class declaration requires a name")
	}

	var superClass ast.Expression
	if p.isKeyword("extends") {
		if err := p.next(); err != nil {
			return nil, nil, nil, err
		}
		sc, err := p.parseLeftHandSideExpression()
		if err != nil {
			return nil, nil, nil, err
		}
		superClass = sc
	}

	body, err := p.parseClassBody()
	if err != nil {
		return nil, nil, nil, err
	}
	return name, superClass, body, nil
}

func (p *Parser) parseClassBody() ([]ast.ClassMember, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var members []ast.ClassMember
	for !p.isPunct("}") {
		if p.isPunct(";") {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		m, err := p.parseClassMember()
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return members, nil
}

func (p *Parser) parseClassMember() (*ast.ClassMember, error) {
	start := p.tok.Span.Start

	static := false
	if p.isContextualKeyword("static") {
		cp := p.save()
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.isPunct("{") {
			body, err := p.parseFunctionBody(false, false)
			if err != nil {
				return nil, err
			}
			return &ast.ClassMember{Node: spanFrom(start, p.prevEnd), Kind: ast.ClassStaticBlock, Static: true, Body: body}, nil
		}
		if p.canStartPropertyKey() {
			static = true
		} else {
			p.restore(cp)
		}
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
		if p.canStartPropertyKey() && !p.isPunct("(") && !p.isPunct("=") && !p.isPunct(";") && !p.isPunct("}") {
			private := p.tok.Kind == token.PrivateIdentifier
			key, computed, err := p.parseClassMemberKey()
			if err != nil {
				return nil, err
			}
			fn, err := p.parseFunctionTail(nil, false, false)
			if err != nil {
				return nil, err
			}
			kind := ast.ClassGetter
			if accessor == "set" {
				kind = ast.ClassSetter
			}
			return &ast.ClassMember{
				Node: spanFrom(start, p.prevEnd), Kind: kind, Key: key, Computed: computed,
				Static: static, Private: private, Value: fn,
			}, nil
		}
		p.restore(cp)
	}

	private := p.tok.Kind == token.PrivateIdentifier
	key, computed, err := p.parseClassMemberKey()
	if err != nil {
		return nil, err
	}

	if p.isPunct("(") {
		fn, err := p.parseFunctionTail(nil, generator, async)
		if err != nil {
			return nil, err
		}
		return &ast.ClassMember{
			Node: spanFrom(start, p.prevEnd), Kind: ast.ClassMethod, Key: key, Computed: computed,
			Static: static, Private: private, Value: fn,
		}, nil
	}

	// Field: optional initializer, terminated like a statement (ASI rules).
	var init ast.Expression
	if p.isPunct("=") {
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseAssignmentExpression()
		if err != nil {
			return nil, err
		}
		init = e
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ClassMember{
		Node: spanFrom(start, p.prevEnd), Kind: ast.ClassField, Key: key, Computed: computed,
		Static: static, Private: private, Value: init,
	}, nil
}

func (p *Parser) parseClassMemberKey() (ast.Expression, bool, error) {
	if p.tok.Kind == token.PrivateIdentifier {
		start := p.tok.Span.Start
		name := p.tok.Literal
		if err := p.next(); err != nil {
			return nil, false, err
		}
		return &ast.PrivateName{Node: spanFrom(start, p.prevEnd), Name: name}, false, nil
	}
	return p.parsePropertyKey()
}
