package jsvm

import (
	"fmt"

	"github.com/jsvm-project/jsvm/internal/ast"
	"github.com/jsvm-project/jsvm/internal/bytecode"
	"github.com/jsvm-project/jsvm/internal/compiler"
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/parser"
	"github.com/jsvm-project/jsvm/internal/realm"
	"github.com/jsvm-project/jsvm/internal/value"
)

// Module is one parsed and compiled ES module body. Per spec.md §6's module
// loader interface being out of scope, Module carries its own import
// specifiers/sources for a host-supplied loader to resolve, but does not
// itself resolve or fetch them: LoadLinkEvaluate evaluates the module's own
// statement list against the realm's global scope (this engine does not
// yet give a module its own lexical module-environment record distinct
// from the global one — see DESIGN.md) and reports the exported bindings
// in the settled Promise's namespace value.
type Module struct {
	Name    string
	Imports []ast.ImportDeclaration
	exports []exportBinding
	code    *bytecode.CodeBlock
}

type exportBinding struct {
	exportedName string
	localName    string
}

// ParseModule parses source as a module body (import/export declarations
// permitted, implicit strict mode) and compiles it, without evaluating it
// or resolving its imports — spec.md §6's `Module::parse`. The compiler has
// no case for import or export declarations, so for a body that contains
// one the compile step fails and ParseModule returns that error.
func ParseModule(source []byte, name string, r *realm.Realm, c *Context) (*Module, error) {
	prog, err := parser.ParseProgram(source, true)
	if err != nil {
		return nil, fmt.Errorf("jsvm: parse module %s: %w", name, err)
	}
	m := &Module{Name: name}
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *ast.ImportDeclaration:
			m.Imports = append(m.Imports, *s)
		case *ast.ExportNamedDeclaration:
			m.exports = append(m.exports, exportsOf(s)...)
		case *ast.ExportDefaultDeclaration:
			m.exports = append(m.exports, exportBinding{exportedName: "default", localName: "default"})
		}
	}
	code, err := compiler.New(c.in).CompileProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("jsvm: compile module %s: %w", name, err)
	}
	m.code = code
	return m, nil
}

// exportsOf collects the (exportedName, localName) pairs an
// ExportNamedDeclaration introduces, covering `export { a, b as c }` and
// `export var/function/class ...`. Declarations that bind via a
// destructuring pattern report no names (a documented simplification:
// module namespace objects built by LoadLinkEvaluate only see
// directly-named bindings).
func exportsOf(decl *ast.ExportNamedDeclaration) []exportBinding {
	var out []exportBinding
	for _, spec := range decl.Specifiers {
		out = append(out, exportBinding{exportedName: spec.Exported.Name, localName: spec.Local.Name})
	}
	switch d := decl.Declaration.(type) {
	case *ast.FunctionDeclaration:
		out = append(out, exportBinding{exportedName: d.Name.Name, localName: d.Name.Name})
	case *ast.ClassDeclaration:
		out = append(out, exportBinding{exportedName: d.Name.Name, localName: d.Name.Name})
	case *ast.VariableDeclaration:
		for _, decl := range d.Declarations {
			if id, ok := decl.Target.(*ast.Identifier); ok {
				out = append(out, exportBinding{exportedName: id.Name, localName: id.Name})
			}
		}
	}
	return out
}

// LoadLinkEvaluate runs the module body to completion and settles the
// returned Promise with its namespace object (export name -> current
// binding value) on success, or with the thrown error on failure
// (spec.md §6's `module.load_link_evaluate(context) -> Promise`). Real
// cross-module linking is a host module-loader's job (out of scope per
// spec.md §2's explicit Non-goal). Since ParseModule fails on any import or
// export declaration, the modules that reach this method have no Imports
// and no exports, and the namespace object has no properties.
func (m *Module) LoadLinkEvaluate(c *Context) *Promise {
	if _, err := c.realm.VM.Run(m.code, value.Undefined, nil); err != nil {
		return rejectedPromise(fmt.Errorf("jsvm: evaluate module %s: %w", m.Name, err))
	}

	ns := object.New(c.realm.ObjectPrototype())
	for _, b := range m.exports {
		v, err := c.realm.GetGlobal(c.in.Get(b.localName))
		if err != nil {
			return rejectedPromise(fmt.Errorf("jsvm: module %s export %q: %w", m.Name, b.exportedName, err))
		}
		ns.DefineOwnProperty(object.NewPropertyKeyFromString(b.exportedName), object.Descriptor{
			HasValue: true, Value: v, Enumerable: true, HasEnumerable: true,
		})
	}
	return fulfilledPromise(value.Object(ns))
}
