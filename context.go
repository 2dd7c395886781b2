// Package jsvm is the public entry point: Context owns one realm.Realm
// (global object, intrinsics, heap, VM) and drives the source-to-value
// evaluation pipeline (spec.md §6.1's E->F->G->H: source, lexer, parser,
// compiler, vm). It plays the role the teacher's Runtime/Store pair does
// for a wazero.Runtime, collapsed to one type since a jsvm.Context has
// exactly one realm rather than a namespace of them.
package jsvm

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/jsvm-project/jsvm/internal/compiler"
	"github.com/jsvm-project/jsvm/internal/interner"
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/parser"
	"github.com/jsvm-project/jsvm/internal/realm"
	"github.com/jsvm-project/jsvm/internal/value"
)

// NativeFunction is the signature a host passes to
// Context.RegisterGlobalBuiltinCallable, re-exporting internal/object's type
// so callers never need to import internal packages.
type NativeFunction = object.NativeFunction

// ContextConfig configures a Context, following the teacher's RuntimeConfig:
// each With* method returns a modified copy so configs can be shared and
// layered without aliasing bugs (config.go's clone-per-With pattern).
type ContextConfig struct {
	gcThreshold      int
	logger           logr.Logger
	hostHooks        []func(*Context) error
	interruptChannel <-chan struct{}
}

// NewContextConfig returns the default configuration: no GC threshold
// override, a discarding logger, and no interrupt channel.
func NewContextConfig() ContextConfig {
	return ContextConfig{logger: logr.Discard()}
}

func (c ContextConfig) clone() ContextConfig { return c }

// WithGCThreshold overrides the cell count that triggers the heap's first
// collection (internal/gc.Heap.SetThreshold). threshold <= 0 is ignored.
func (c ContextConfig) WithGCThreshold(threshold int) ContextConfig {
	ret := c.clone()
	ret.gcThreshold = threshold
	return ret
}

// WithLogger sets the logr.Logger the realm logs GC and diagnostic
// information to (spec.md's ambient logging section). Defaults to
// logr.Discard().
func (c ContextConfig) WithLogger(log logr.Logger) ContextConfig {
	ret := c.clone()
	ret.logger = log
	return ret
}

// WithHostHooks registers a callback run against the freshly built Context
// before any source is evaluated, the hook point host embedders use to
// install additional globals or classes beyond RegisterGlobalBuiltinCallable
// and RegisterGlobalClass.
func (c ContextConfig) WithHostHooks(hook func(*Context) error) ContextConfig {
	ret := c.clone()
	ret.hostHooks = append(append([]func(*Context) error{}, c.hostHooks...), hook)
	return ret
}

// WithInterruptChannel arms cooperative interruption: the VM polls ch
// before every instruction (internal/vm.VM.InterruptCheck), and
// Eval/RunJobs return an error once it's closed or receives a value.
func (c ContextConfig) WithInterruptChannel(ch <-chan struct{}) ContextConfig {
	ret := c.clone()
	ret.interruptChannel = ch
	return ret
}

// ErrInterrupted is returned by Eval/RunJobs when the configured interrupt
// channel fires mid-execution.
var ErrInterrupted = errors.New("jsvm: interrupted")

// Context is one ECMAScript execution context: a realm plus the symbol
// interner and compiler state evaluation shares across calls (spec.md §6).
// A Context is not safe for concurrent use, mirroring wazero's
// single-goroutine-per-Store convention.
type Context struct {
	config ContextConfig
	in     *interner.Interner
	realm  *realm.Realm
}

// NewContext builds a Context with a freshly wired realm (all intrinsics
// installed) and applies config's host hooks. A zero ContextConfig is
// valid; use NewContextConfig().With...() to customize it.
func NewContext(config ContextConfig) *Context {
	if config.logger.GetSink() == nil {
		config.logger = logr.Discard()
	}
	in := interner.New()
	r := realm.New(in, config.logger)
	if config.gcThreshold > 0 {
		r.Heap.SetThreshold(config.gcThreshold)
	}
	c := &Context{config: config, in: in, realm: r}
	if config.interruptChannel != nil {
		ch := config.interruptChannel
		r.VM.InterruptCheck = func() error {
			select {
			case <-ch:
				return ErrInterrupted
			default:
				return nil
			}
		}
	}
	for _, hook := range config.hostHooks {
		if err := hook(c); err != nil {
			panic(fmt.Errorf("jsvm: host hook failed: %w", err))
		}
	}
	return c
}

// Realm exposes the Context's underlying realm for callers that need
// lower-level access (e.g. a Module implementation evaluating linked code
// against the same global object).
func (c *Context) Realm() *realm.Realm { return c.realm }

// Eval parses source as a script, compiles it, and runs it to completion,
// driving spec.md §6.1's source->lexer->parser->compiler->vm pipeline in
// one call. name is used only for diagnostics (future stack traces).
func (c *Context) Eval(source []byte, name string) (value.Value, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return value.Value{}, fmt.Errorf("jsvm: parse %s: %w", name, err)
	}
	code, err := compiler.New(c.in).CompileProgram(prog)
	if err != nil {
		return value.Value{}, fmt.Errorf("jsvm: compile %s: %w", name, err)
	}
	return c.runCompiled(code, name)
}

// RunJobs drains the microtask queue (promise reactions, async function
// continuations) enqueued by prior Eval/LoadLinkEvaluate calls, the way an
// embedder drives a JS engine's job queue to completion between turns of
// its own event loop.
func (c *Context) RunJobs() error {
	if err := c.realm.VM.RunJobs(); err != nil {
		return fmt.Errorf("jsvm: run jobs: %w", err)
	}
	return nil
}

// RegisterGlobalBuiltinCallable installs fn as a callable global property
// named name, as Function.prototype-backed as any intrinsic method
// (internal/realm's defineMethod does the same for, say, Math.min).
func (c *Context) RegisterGlobalBuiltinCallable(name string, length int, fn NativeFunction) error {
	f := object.NewNativeFunction(c.realm.FunctionPrototype(), name, length, fn)
	sym := c.in.Get(name)
	return c.realm.SetGlobal(sym, value.Object(f))
}

// RegisterGlobalClass installs class as a global constructor binding,
// wiring its prototype chain and static/instance members the way
// internal/realm's installXxxIntrinsics functions build the builtin
// constructors.
func (c *Context) RegisterGlobalClass(class Class) error {
	ctor, err := class.build(c.realm)
	if err != nil {
		return fmt.Errorf("jsvm: register class %s: %w", class.Name, err)
	}
	sym := c.in.Get(class.Name)
	return c.realm.SetGlobal(sym, value.Object(ctor))
}
