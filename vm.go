package wee

import (
	"context"

	"github.com/jcorbin/wee/internal/flushio"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// VM is the stack-based bytecode interpreter: one call-frame stack, one
// operand stack, one globals table, one managed heap. There is exactly one
// VM per process; it and the compiler chain it shadows during a compile are
// never shared across goroutines.
type VM struct {
	stack  []Value
	frames []CallFrame

	globals      Table
	openUpvalues *ObjUpvalue
	initString   *ObjString

	heap heapState

	compiler *Compiler

	out       flushio.WriteFlusher
	traceExec bool

	// ctx is checked at each backward jump (the only way bytecode can loop
	// without returning), so a -timeout deadline actually interrupts a
	// runaway Wee loop instead of only ever firing before execution starts.
	ctx context.Context
}

func newVM() *VM {
	vm := &VM{}
	// stackMax capacity is reserved up front and never exceeded, so that
	// &vm.stack[i] pointers handed out to open Upvalues stay valid: a slice
	// append that outgrew its backing array would silently invalidate every
	// open upvalue pointing into the old one.
	vm.stack = make([]Value, 0, stackMax)
	vm.frames = make([]CallFrame, 0, framesMax)
	vm.initHeap()
	vm.initString = vm.newString("init")
	return vm
}

func (vm *VM) push(v Value) {
	if len(vm.stack) == cap(vm.stack) {
		vm.runtimeErrorf("stack overflow")
	}
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

// frame returns the currently executing call frame.
func (vm *VM) frame() *CallFrame {
	return &vm.frames[len(vm.frames)-1]
}
