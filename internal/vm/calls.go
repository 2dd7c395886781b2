package vm

import (
	"fmt"

	"github.com/jsvm-project/jsvm/internal/bytecode"
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// makeFunction implements OpMakeFunction/OpMakeArrow: it closes inner's
// CodeBlock over the defining scope's Environment and wraps it in a
// callable object whose Call (and, for non-arrows, Construct) closures
// push a fresh CallFrame and re-enter the dispatch loop — the same
// "compiled function owns its own call thunk" seam internal/object's
// NewCompiledFunction was built around, so this package is the only one
// that needs to know CallFrame exists.
func (vm *VM) makeFunction(inner *bytecode.CodeBlock, closureEnv *Environment, isArrow bool, lexicalThis value.Value) *object.Object {
	data := &object.FunctionData{
		Name:        inner.Name,
		Length:      inner.NumParams,
		IsArrow:     isArrow,
		IsGenerator: inner.IsGenerator,
		IsAsync:     inner.IsAsync,
		Strict:      inner.Strict,
	}

	call := func(this value.Value, args []value.Value) (value.Value, error) {
		callThis := this
		if isArrow {
			callThis = lexicalThis
		}
		if inner.IsGenerator {
			return value.Object(vm.runGenerator(inner, closureEnv, callThis, args)), nil
		}
		return vm.invoke(inner, closureEnv, callThis, args, nil)
	}

	var construct func(args []value.Value, newTarget *object.Object) (value.Value, error)
	var fn *object.Object
	if !isArrow {
		construct = func(args []value.Value, newTarget *object.Object) (value.Value, error) {
			protoVal, err := fn.Get(object.NewPropertyKeyFromString("prototype"), value.Object(fn))
			if err != nil {
				return value.Value{}, err
			}
			proto, _ := protoVal.AsObject().(*object.Object)
			if proto == nil {
				proto = vm.Global.ObjectPrototype()
			}
			instance := object.New(proto)
			this := value.Object(instance)
			result, err := vm.invoke(inner, closureEnv, this, args, newTarget)
			if err != nil {
				return value.Value{}, err
			}
			if result.IsObject() {
				return result, nil
			}
			return this, nil
		}
	}

	fn = object.NewCompiledFunction(vm.Global.FunctionPrototype(), data, call, construct)
	if !isArrow {
		proto := object.New(vm.Global.ObjectPrototype())
		proto.DefineOwnProperty(object.NewPropertyKeyFromString("constructor"), object.Descriptor{
			HasValue: true, Value: value.Object(fn), Writable: true, Configurable: true,
			HasWritable: true, HasConfigurable: true,
		})
		fn.DefineOwnProperty(object.NewPropertyKeyFromString("prototype"), object.Descriptor{
			HasValue: true, Value: value.Object(proto), Writable: true,
			HasWritable: true,
		})
	}
	return fn
}

// invoke pushes a CallFrame for inner after pushing one operand per
// declared parameter (args[i], or undefined when missing) in reverse order,
// so the compiled prologue's one OpInitBinding per identifier parameter
// pops them first to last. The prologue binds identifier parameters only;
// destructuring, default and rest parameters get no binding.
func (vm *VM) invoke(code *bytecode.CodeBlock, closureEnv *Environment, this value.Value, args []value.Value, newTarget *object.Object) (value.Value, error) {
	for i := code.NumParams - 1; i >= 0; i-- {
		if i < len(args) {
			vm.push(args[i])
		} else {
			vm.push(value.Undefined)
		}
	}
	env := NewEnvironment(closureEnv, &code.Scopes[0])
	var newTargetVal value.Value
	if newTarget != nil {
		newTargetVal = value.Object(newTarget)
	}
	frame := &CallFrame{
		Code: code, StackBase: len(vm.stack), Env: env,
		This: this, NewTarget: newTargetVal, Args: args,
	}
	vm.frames = append(vm.frames, frame)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()
	return vm.runFrame(frame)
}

// makeClass implements OpMakeClass: ctorVal is already a function object
// built by compileFunctionLiteral's MakeFunction emission for the
// constructor body; superVal (possibly undefined) supplies the prototype
// chain per ECMA-262 15.7.14 ClassDefinitionEvaluation steps 5-9.
func (vm *VM) makeClass(ctorVal, superVal value.Value) (*object.Object, error) {
	ctor, ok := ctorVal.AsObject().(*object.Object)
	if !ok {
		return nil, fmt.Errorf("TypeError: class constructor did not compile to a function object")
	}
	protoVal, err := ctor.Get(object.NewPropertyKeyFromString("prototype"), ctorVal)
	if err != nil {
		return nil, err
	}
	proto, _ := protoVal.AsObject().(*object.Object)

	if !superVal.IsUndefined() {
		superCtor, ok := superVal.AsObject().(*object.Object)
		if !ok || !superCtor.IsConstructor() {
			return nil, fmt.Errorf("TypeError: class extends value is not a constructor")
		}
		superProtoVal, err := superCtor.Get(object.NewPropertyKeyFromString("prototype"), superVal)
		if err != nil {
			return nil, err
		}
		superProto, _ := superProtoVal.AsObject().(*object.Object)
		if proto != nil {
			proto.SetPrototypeOf(superProto)
		}
		ctor.SetPrototypeOf(superCtor)
	}
	return ctor, nil
}
