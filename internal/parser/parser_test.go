package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/jsvm-project/jsvm/internal/ast"
)

// ignoreSpans drops position/span bookkeeping from the comparison, so tests
// describe shape, not byte offsets (testify/go-cmp are the teacher's own
// test-tooling pair; go-cmp's structural diff is a better fit than
// reflect.DeepEqual for a deeply nested AST).
var ignoreSpans = cmpopts.IgnoreTypes(ast.Node{})

func parseExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	prog, err := Parse([]byte(src + ";"))
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
	require.True(t, ok, "expected an ExpressionStatement, got %T", prog.Body[0])
	return stmt.Expression
}

func TestParseBinaryExpressionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *ast.BinaryExpression
	}{
		{
			name: "multiplication binds tighter than addition",
			src:  "1 + 2 * 3",
			want: &ast.BinaryExpression{
				Operator: "+",
				Left:     &ast.NumberLiteral{Kind: ast.NumberInt32, Int32: 1},
				Right: &ast.BinaryExpression{
					Operator: "*",
					Left:     &ast.NumberLiteral{Kind: ast.NumberInt32, Int32: 2},
					Right:    &ast.NumberLiteral{Kind: ast.NumberInt32, Int32: 3},
				},
			},
		},
		{
			name: "exponentiation is right-associative",
			src:  "2 ** 3 ** 2",
			want: &ast.BinaryExpression{
				Operator: "**",
				Left:     &ast.NumberLiteral{Kind: ast.NumberInt32, Int32: 2},
				Right: &ast.BinaryExpression{
					Operator: "**",
					Left:     &ast.NumberLiteral{Kind: ast.NumberInt32, Int32: 3},
					Right:    &ast.NumberLiteral{Kind: ast.NumberInt32, Int32: 2},
				},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := parseExpr(t, tc.src)
			if diff := cmp.Diff(tc.want, got, ignoreSpans); diff != "" {
				t.Errorf("parse(%q) mismatch (-want +got):\n%s", tc.src, diff)
			}
		})
	}
}

func TestParseArrowFunctionBodyForms(t *testing.T) {
	expr := parseExpr(t, "(x) => x + 1")
	arrow, ok := expr.(*ast.ArrowFunctionExpression)
	require.True(t, ok, "expected ArrowFunctionExpression, got %T", expr)
	require.Nil(t, arrow.BodyBlock)
	require.NotNil(t, arrow.BodyExpr)
	require.Len(t, arrow.Params.Params, 1)

	expr = parseExpr(t, "(x) => { return x + 1; }")
	arrow, ok = expr.(*ast.ArrowFunctionExpression)
	require.True(t, ok, "expected ArrowFunctionExpression, got %T", expr)
	require.NotNil(t, arrow.BodyBlock)
	require.Len(t, arrow.BodyBlock.Body, 1)
}

func TestParseForOfDestructuring(t *testing.T) {
	prog, err := Parse([]byte("for (const [a, b] of pairs) { a; }"))
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	forOf, ok := prog.Body[0].(*ast.ForInOfStatement)
	require.True(t, ok, "expected ForInOfStatement, got %T", prog.Body[0])
	require.Equal(t, ast.ForOf, forOf.Kind)

	decl, ok := forOf.Left.(*ast.VariableDeclaration)
	require.True(t, ok, "expected Left to be a VariableDeclaration, got %T", forOf.Left)
	require.Len(t, decl.Declarations, 1)
	_, ok = decl.Declarations[0].Target.(*ast.ArrayPattern)
	require.True(t, ok, "expected an array destructuring pattern")
}

func TestParseClassWithConstructorAndMethod(t *testing.T) {
	src := `class Point {
		constructor(x, y) { this.x = x; this.y = y; }
		sum() { return this.x + this.y; }
	}`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	class, ok := prog.Body[0].(*ast.ClassDeclaration)
	require.True(t, ok, "expected ClassDeclaration, got %T", prog.Body[0])
	require.Equal(t, "Point", class.Name.Name)
	require.Len(t, class.Body, 2)

	var sawConstructor, sawMethod bool
	for _, m := range class.Body {
		id, ok := m.Key.(*ast.Identifier)
		require.True(t, ok)
		switch id.Name {
		case "constructor":
			sawConstructor = true
		case "sum":
			sawMethod = true
		}
	}
	require.True(t, sawConstructor, "expected a constructor member")
	require.True(t, sawMethod, "expected a sum member")
}

func TestParseModuleImportExport(t *testing.T) {
	src := `import { a, b as c } from "./mod.js";
export const answer = 42;
export default answer;`
	prog, err := ParseProgram([]byte(src), true)
	require.NoError(t, err)
	require.True(t, prog.Module)
	require.True(t, prog.Strict, "module code is implicitly strict")
	require.Len(t, prog.Body, 3)

	imp, ok := prog.Body[0].(*ast.ImportDeclaration)
	require.True(t, ok, "expected ImportDeclaration, got %T", prog.Body[0])
	require.Equal(t, "./mod.js", imp.Source)
	require.Len(t, imp.Specifiers, 2)
	require.Equal(t, "a", imp.Specifiers[0].Imported.Name)
	require.Equal(t, "b", imp.Specifiers[1].Imported.Name)
	require.Equal(t, "c", imp.Specifiers[1].Local.Name)

	_, ok = prog.Body[1].(*ast.ExportNamedDeclaration)
	require.True(t, ok, "expected ExportNamedDeclaration, got %T", prog.Body[1])
	_, ok = prog.Body[2].(*ast.ExportDefaultDeclaration)
	require.True(t, ok, "expected ExportDefaultDeclaration, got %T", prog.Body[2])
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("const ;"))
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
}
