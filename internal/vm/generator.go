package vm

import (
	"github.com/jsvm-project/jsvm/internal/bytecode"
	"github.com/jsvm-project/jsvm/internal/object"
	"github.com/jsvm-project/jsvm/internal/value"
)

// resumeMsg is what a generator's next()/return()/throw() sends across
// ResumeChan to unblock the suspended OpYield.
type resumeMsg struct {
	value    value.Value
	isThrow  bool
	isReturn bool
}

// RunGenerator builds the object returned by calling a generator function:
// a plain object exposing next/return/throw per the iterator-result
// protocol internal/vm/iterator.go already speaks, backed by a goroutine
// that runs the compiled body and blocks in OpYield's handler until the
// caller resumes it. This is a cooperative-coroutine translation of
// strict request/response handoff (only one of {caller, generator
// goroutine} ever touches the shared operand stack at a time): the
// caller's next() blocks on yieldChan, the generator goroutine blocks on
// resumeChan, and control never actually runs concurrently.
func (vm *VM) runGenerator(code *bytecode.CodeBlock, closureEnv *Environment, this value.Value, args []value.Value) *object.Object {
	yieldChan := make(chan genYield)
	resumeChan := make(chan resumeMsg)
	started := false
	done := false

	start := func() {
		started = true
		go func() {
			frame := &CallFrame{
				Code: code, StackBase: len(vm.stack), Env: NewEnvironment(closureEnv, &code.Scopes[0]),
				This: this, Args: args,
				yieldChan: yieldChan, resumeChan: resumeChan,
			}
			for i := code.NumParams - 1; i >= 0; i-- {
				if i < len(args) {
					vm.push(args[i])
				} else {
					vm.push(value.Undefined)
				}
			}
			vm.frames = append(vm.frames, frame)
			result, err := vm.runFrame(frame)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if err != nil {
				yieldChan <- genYield{err: err, done: true}
				return
			}
			yieldChan <- genYield{value: result, done: true}
		}()
	}

	gen := object.New(vm.Global.ObjectPrototype())
	makeResultFn := func(name string, msg func(value.Value) resumeMsg) *object.Object {
		return object.NewNativeFunction(vm.Global.FunctionPrototype(), name, 1, func(_ value.Value, callArgs []value.Value) (value.Value, error) {
			var arg value.Value
			if len(callArgs) > 0 {
				arg = callArgs[0]
			}
			if done {
				return iterResult(value.Undefined, true), nil
			}
			if !started {
				if name != "next" {
					done = true
					return iterResult(value.Undefined, true), nil
				}
				start()
			} else {
				resumeChan <- msg(arg)
			}
			y := <-yieldChan
			if y.err != nil {
				done = true
				return value.Value{}, y.err
			}
			if y.done {
				done = true
			}
			return iterResult(y.value, y.done), nil
		})
	}
	next := makeResultFn("next", func(v value.Value) resumeMsg { return resumeMsg{value: v} })
	ret := makeResultFn("return", func(v value.Value) resumeMsg { return resumeMsg{value: v, isReturn: true} })
	thr := makeResultFn("throw", func(v value.Value) resumeMsg { return resumeMsg{value: v, isThrow: true} })

	for _, kv := range []struct {
		name string
		fn   *object.Object
	}{{"next", next}, {"return", ret}, {"throw", thr}} {
		gen.DefineOwnProperty(object.NewPropertyKeyFromString(kv.name), object.Descriptor{
			HasValue: true, Value: value.Object(kv.fn), Writable: true, Configurable: true,
			HasWritable: true, HasConfigurable: true,
		})
	}
	return gen
}

type genYield struct {
	value value.Value
	done  bool
	err   error
}
