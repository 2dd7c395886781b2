package parser

import "github.com/jsvm-project/jsvm/internal/ast"

// toPattern re-interprets an already-parsed expression as a binding/
// assignment target, the cover-grammar conversion spec.md §4.2 and the doc
// comments on ast.ArrayLiteral/ObjectLiteral call for: array and object
// literals are parsed once, as expressions, and only turned into their
// Pattern counterparts once the parser learns (by seeing `=`, a for-in/of
// left-hand side, or a parameter position) that they're being used as a
// binding target.
func toPattern(e ast.Expression) (ast.Pattern, error) {
	switch v := e.(type) {
	case *ast.Identifier:
		return v, nil
	case *ast.MemberExpression:
		return v, nil
	case *ast.AssignmentPattern:
		return v, nil
	case *ast.RestElement:
		return v, nil
	case *ast.AssignmentExpression:
		if v.Operator != "=" {
			return nil, &Error{Msg: "invalid destructuring default (only '=' is allowed)", Pos: v.Span.Start}
		}
		return &ast.AssignmentPattern{Node: v.Node, Target: v.Target, Default: v.Value}, nil
	case *ast.SpreadElement:
		arg, err := toPattern(v.Argument)
		if err != nil {
			return nil, err
		}
		return &ast.RestElement{Node: v.Node, Argument: arg}, nil
	case *ast.ArrayLiteral:
		elems := make([]ast.Pattern, len(v.Elements))
		for i, el := range v.Elements {
			if el == nil {
				continue
			}
			if sp, ok := el.(*ast.SpreadElement); ok && i != len(v.Elements)-1 {
				return nil, &Error{Msg: "rest element must be last in an array pattern", Pos: sp.Span.Start}
			}
			p, err := toPattern(el)
			if err != nil {
				return nil, err
			}
			elems[i] = p
		}
		return &ast.ArrayPattern{Node: v.Node, Elements: elems}, nil
	case *ast.ObjectLiteral:
		out := &ast.ObjectPattern{Node: v.Node}
		for i, prop := range v.Properties {
			if prop.Kind == ast.PropertySpread {
				if i != len(v.Properties)-1 {
					return nil, &Error{Msg: "rest property must be last in an object pattern", Pos: prop.Span.Start}
				}
				p, err := toPattern(prop.Value)
				if err != nil {
					return nil, err
				}
				rest, ok := p.(*ast.RestElement)
				if !ok {
					rest = &ast.RestElement{Node: prop.Node, Argument: p}
				}
				out.Rest = rest
				continue
			}
			p, err := toPattern(prop.Value)
			if err != nil {
				return nil, err
			}
			out.Properties = append(out.Properties, ast.ObjectPatternProperty{
				Node: prop.Node, Key: prop.Key, Computed: prop.Computed, Value: p,
			})
		}
		return out, nil
	default:
		return nil, &Error{Msg: "invalid assignment target", Pos: ast.Span(e).Start}
	}
}
