package parser

import (
	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/token"
)

func (p *Parser) parseModuleSource() (string, error) {
	if p.tok.Kind != token.StringLiteral {
		return "", p.errf("expected a module specifier string")
	}
	s := p.tok.Literal
	return s, p.next()
}

// parseImportDeclaration parses `import ... from "...";` in its default /
// namespace / named-list forms, plus the bare `import "...";` side-effect
// form (ESM only, spec.md's supplemented module system).
func (p *Parser) parseImportDeclaration() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'import'
		return nil, err
	}

	if p.tok.Kind == token.StringLiteral {
		source, err := p.parseModuleSource()
		if err != nil {
			return nil, err
		}
		if err := p.consumeSemicolon(); err != nil {
			return nil, err
		}
		return &ast.ImportDeclaration{Node: spanFrom(start, p.prevEnd), Source: source}, nil
	}

	var specs []ast.ImportSpecifier
	if p.tok.Kind == token.Identifier {
		id, err := p.expectBindingIdentifier()
		if err != nil {
			return nil, err
		}
		specs = append(specs, ast.ImportSpecifier{Node: id.Node, Local: id, Default: true})
		if p.isPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}

	if p.isPunct("*") {
		if err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("as"); err != nil {
			return nil, err
		}
		local, err := p.expectBindingIdentifier()
		if err != nil {
			return nil, err
		}
		specs = append(specs, ast.ImportSpecifier{Node: local.Node, Local: local, Namespace: true})
	} else if p.isPunct("{") {
		if err := p.next(); err != nil {
			return nil, err
		}
		for !p.isPunct("}") {
			impStart := p.tok.Span.Start
			importedName, err := p.expectIdentifierName()
			if err != nil {
				return nil, err
			}
			imported := &ast.Identifier{Node: spanFrom(impStart, p.prevEnd), Name: importedName}
			local := imported
			if p.isContextualKeyword("as") {
				if err := p.next(); err != nil {
					return nil, err
				}
				l, err := p.expectBindingIdentifier()
				if err != nil {
					return nil, err
				}
				local = l
			}
			specs = append(specs, ast.ImportSpecifier{Node: spanFrom(impStart, p.prevEnd), Imported: imported, Local: local})
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
	}

	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	source, err := p.parseModuleSource()
	if err != nil {
		return nil, err
	}
	if err := p.consumeSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ImportDeclaration{Node: spanFrom(start, p.prevEnd), Specifiers: specs, Source: source}, nil
}

// parseExportDeclaration covers `export <decl>`, `export default <expr|decl>`,
// `export { ... } [from "..."];`, and `export * [as ns] from "...";`.
func (p *Parser) parseExportDeclaration() (ast.Statement, error) {
	start := p.tok.Span.Start
	if err := p.next(); err != nil { // consume 'export'
		return nil, err
	}

	if p.isKeyword("default") {
		if err := p.next(); err != nil {
			return nil, err
		}
		var decl any
		switch {
		case p.isKeyword("function"):
			d, err := p.parseFunctionDeclaration()
			if err != nil {
				return nil, err
			}
			decl = d
		case p.isContextualKeyword("async") && p.peekIsFunctionKeyword():
			d, err := p.parseAsyncFunctionDeclaration()
			if err != nil {
				return nil, err
			}
			decl = d
		case p.isKeyword("class"):
			d, err := p.parseClassDeclaration()
			if err != nil {
				return nil, err
			}
			decl = d
		default:
			e, err := p.parseAssignmentExpression()
			if err != nil {
				return nil, err
			}
			if err := p.consumeSemicolon(); err != nil {
				return nil, err
			}
			decl = e
		}
		return &ast.ExportDefaultDeclaration{Node: spanFrom(start, p.prevEnd), Declaration: decl}, nil
	}

	if p.isPunct("*") {
		if err := p.next(); err != nil {
			return nil, err
		}
		var exported *ast.Identifier
		if p.isContextualKeyword("as") {
			if err := p.next(); err != nil {
				return nil, err
			}
			id, err := p.expectBindingIdentifier()
			if err != nil {
				return nil, err
			}
			exported = id
		}
		if err := p.expectKeyword("from"); err != nil {
			return nil, err
		}
		source, err := p.parseModuleSource()
		if err != nil {
			return nil, err
		}
		if err := p.consumeSemicolon(); err != nil {
			return nil, err
		}
		return &ast.ExportAllDeclaration{Node: spanFrom(start, p.prevEnd), Exported: exported, Source: source}, nil
	}

	if p.isPunct("{") {
		if err := p.next(); err != nil {
			return nil, err
		}
		var specs []ast.ExportSpecifier
		for !p.isPunct("}") {
			specStart := p.tok.Span.Start
			localName, err := p.expectIdentifierName()
			if err != nil {
				return nil, err
			}
			local := &ast.Identifier{Node: spanFrom(specStart, p.prevEnd), Name: localName}
			exported := local
			if p.isContextualKeyword("as") {
				if err := p.next(); err != nil {
					return nil, err
				}
				expName, err := p.expectIdentifierName()
				if err != nil {
					return nil, err
				}
				exported = &ast.Identifier{Node: spanFrom(specStart, p.prevEnd), Name: expName}
			}
			specs = append(specs, ast.ExportSpecifier{Node: spanFrom(specStart, p.prevEnd), Local: local, Exported: exported})
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
		var source string
		if p.isContextualKeyword("from") {
			if err := p.next(); err != nil {
				return nil, err
			}
			s, err := p.parseModuleSource()
			if err != nil {
				return nil, err
			}
			source = s
		}
		if err := p.consumeSemicolon(); err != nil {
			return nil, err
		}
		return &ast.ExportNamedDeclaration{Node: spanFrom(start, p.prevEnd), Specifiers: specs, Source: source}, nil
	}

	var decl ast.Statement
	var err error
	switch {
	case p.isKeyword("var"), p.isKeyword("let"), p.isKeyword("const"):
		decl, err = p.parseVariableStatement()
	case p.isKeyword("function"):
		decl, err = p.parseFunctionDeclaration()
	case p.isContextualKeyword("async") && p.peekIsFunctionKeyword():
		decl, err = p.parseAsyncFunctionDeclaration()
	case p.isKeyword("class"):
		decl, err = p.parseClassDeclaration()
	default:
		return nil, p.errf("unexpected token %q after 'export'", p.tok.Literal)
	}
	if err != nil {
		return nil, err
	}
	return &ast.ExportNamedDeclaration{Node: spanFrom(start, p.prevEnd), Declaration: decl}, nil
}
