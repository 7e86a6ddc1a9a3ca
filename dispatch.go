package wee

import "fmt"

// run executes bytecode starting from the current top call frame until the
// last frame returns. It panics with *RuntimeError on any runtime fault;
// callers recover that at the Interpret boundary.
func (vm *VM) run() Value {
	frame := vm.frame()

	for {
		if vm.traceExec {
			vm.traceInstruction(frame)
		}

		op := OpCode(frame.readByte())
		switch op {
		case OpLoad:
			vm.push(frame.readConstant())

		case OpNil:
			vm.push(NilValue)
		case OpTrue:
			vm.push(BoolValue(true))
		case OpFalse:
			vm.push(BoolValue(false))
		case OpPop:
			vm.pop()

		case OpGetLocal:
			slot := frame.readByte()
			vm.push(vm.stack[frame.slotsBase+int(slot)])
		case OpSetLocal:
			slot := frame.readByte()
			vm.stack[frame.slotsBase+int(slot)] = vm.peek(0)

		case OpGetGlobal:
			name := frame.readConstant().AsString()
			v, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeErrorf("undefined variable '%s'", name.Chars)
			}
			vm.push(v)
		case OpDefineGlobal:
			name := frame.readConstant().AsString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case OpSetGlobal:
			name := frame.readConstant().AsString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				vm.runtimeErrorf("undefined variable '%s'", name.Chars)
			}

		case OpGetUpvalue:
			idx := frame.readByte()
			vm.push(frame.closure.Upvalues[idx].get())
		case OpSetUpvalue:
			idx := frame.readByte()
			frame.closure.Upvalues[idx].set(vm.peek(0))

		case OpGetProperty:
			vm.execGetProperty(frame)
		case OpSetProperty:
			vm.execSetProperty(frame)
		case OpGetSuper:
			name := frame.readConstant().AsString()
			super := vm.pop().AsObj().(*ObjClass)
			receiver := vm.pop()
			vm.bindMethod(super, name, receiver)

		case OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeErrorf("operand must be a number")
			}
			vm.push(NumberValue(-vm.pop().AsNumber()))
		case OpNot:
			vm.push(BoolValue(vm.pop().Falsey()))

		case OpAdd:
			vm.execAdd()
		case OpSubtract:
			b, a := vm.popNumberPair()
			vm.push(NumberValue(a - b))
		case OpMultiply:
			b, a := vm.popNumberPair()
			vm.push(NumberValue(a * b))
		case OpDivide:
			b, a := vm.popNumberPair()
			vm.push(NumberValue(a / b))

		case OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(BoolValue(a.Equal(b)))
		case OpNotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(BoolValue(!a.Equal(b)))
		case OpLess:
			b, a := vm.popNumberPair()
			vm.push(BoolValue(a < b))
		case OpLessEqual:
			b, a := vm.popNumberPair()
			vm.push(BoolValue(a <= b))
		case OpGreater:
			b, a := vm.popNumberPair()
			vm.push(BoolValue(a > b))
		case OpGreaterEqual:
			b, a := vm.popNumberPair()
			vm.push(BoolValue(a >= b))

		case OpPrint:
			fmt.Fprintln(vm.out, vm.pop().String())

		case OpJump:
			offset := frame.readUint16()
			frame.ip += int(offset)
		case OpJumpIfTrue:
			offset := frame.readUint16()
			if !vm.peek(0).Falsey() {
				frame.ip += int(offset)
			}
		case OpJumpIfFalse:
			offset := frame.readUint16()
			if vm.peek(0).Falsey() {
				frame.ip += int(offset)
			}
		case OpJumpBack:
			offset := frame.readUint16()
			frame.ip -= int(offset)
			if vm.ctx != nil {
				if err := vm.ctx.Err(); err != nil {
					vm.runtimeErrorf("%v", err)
				}
			}

		case OpCall:
			argCount := int(frame.readByte())
			vm.callValue(vm.peek(argCount), argCount)
			frame = vm.frame()

		case OpClosure:
			vm.execClosure(frame)

		case OpCloseUpvalue:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slotsBase)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the implicit top-level callee slot
				return result
			}
			vm.stack = vm.stack[:frame.slotsBase]
			vm.push(result)
			frame = vm.frame()

		case OpClass:
			name := frame.readConstant().AsString()
			vm.push(ObjValue(vm.newClass(name)))
		case OpInherit:
			vm.execInherit()
		case OpMethod:
			name := frame.readConstant().AsString()
			vm.defineMethod(name)

		case OpInvoke:
			name := frame.readConstant().AsString()
			argCount := int(frame.readByte())
			vm.invoke(name, argCount)
			frame = vm.frame()
		case OpSuperInvoke:
			name := frame.readConstant().AsString()
			argCount := int(frame.readByte())
			super := vm.pop().AsObj().(*ObjClass)
			vm.invokeFromClass(super, name, argCount)
			frame = vm.frame()

		default:
			vm.runtimeErrorf("unknown opcode %d", byte(op))
		}
	}
}

func (vm *VM) popNumberPair() (b, a float64) {
	bv, av := vm.pop(), vm.pop()
	if !bv.IsNumber() || !av.IsNumber() {
		vm.runtimeErrorf("operands must be numbers")
	}
	return bv.AsNumber(), av.AsNumber()
}

func (vm *VM) execAdd() {
	b, a := vm.peek(0), vm.peek(1)
	switch {
	case a.IsString() && b.IsString():
		vm.pop()
		vm.pop()
		vm.push(ObjValue(vm.newString(a.AsString().Chars + b.AsString().Chars)))
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(NumberValue(a.AsNumber() + b.AsNumber()))
	default:
		vm.runtimeErrorf("operands must be two numbers or two strings")
	}
}

func (vm *VM) execGetProperty(frame *CallFrame) {
	name := frame.readConstant().AsString()
	receiver := vm.peek(0)
	inst, ok := receiver.AsObj().(*ObjInstance)
	if !receiver.IsObj() || !ok {
		vm.runtimeErrorf("only instances have properties")
		return
	}
	if v, ok := inst.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return
	}
	vm.pop()
	vm.bindMethod(inst.Class, name, receiver)
}

func (vm *VM) execSetProperty(frame *CallFrame) {
	name := frame.readConstant().AsString()
	receiver := vm.peek(1)
	inst, ok := receiver.AsObj().(*ObjInstance)
	if !receiver.IsObj() || !ok {
		vm.runtimeErrorf("only instances have fields")
		return
	}
	value := vm.pop()
	vm.pop()
	inst.Fields.Set(name, value)
	vm.push(value)
}

func (vm *VM) bindMethod(class *ObjClass, name *ObjString, receiver Value) {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeErrorf("undefined property '%s'", name.Chars)
		return
	}
	bm := vm.newBoundMethod(receiver, method.AsObj().(*ObjClosure))
	vm.push(ObjValue(bm))
}

func (vm *VM) execInherit() {
	superVal := vm.peek(1)
	superclass, ok := superVal.AsObj().(*ObjClass)
	if !superVal.IsObj() || !ok {
		vm.runtimeErrorf("superclass must be a class")
		return
	}
	subclass := vm.peek(0).AsObj().(*ObjClass)
	subclass.Methods.AddAll(&superclass.Methods)
	// Pops the subclass value this opcode was given on top of the stack;
	// the superclass underneath is the enclosing scope's "super" local and
	// must stay resident in its slot.
	vm.pop()
}

func (vm *VM) defineMethod(name *ObjString) {
	method := vm.pop()
	class := vm.peek(0).AsObj().(*ObjClass)
	class.Methods.Set(name, method)
}

func (vm *VM) execClosure(frame *CallFrame) {
	fn := frame.readConstant().AsObj().(*ObjFunction)
	closure := vm.newClosure(fn)
	vm.push(ObjValue(closure))
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := frame.readByte()
		idx := int(frame.readByte())
		if isLocal != 0 {
			closure.Upvalues[i] = vm.captureUpvalue(frame.slotsBase + idx)
		} else {
			closure.Upvalues[i] = frame.closure.Upvalues[idx]
		}
	}
}

// captureUpvalue returns the open Upvalue for stack slot, reusing one
// already open on that exact slot (capture dedup), splicing a new one into
// the descending-slot open list otherwise. &vm.stack[slot] is stable for
// the lifetime of the slot since the stack's backing array is preallocated
// to stackMax and never reallocated by append.
func (vm *VM) captureUpvalue(slot int) *ObjUpvalue {
	var prev *ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.slot > slot {
		prev = cur
		cur = cur.nextOpen
	}
	if cur != nil && cur.slot == slot {
		return cur
	}

	created := vm.newUpvalue(&vm.stack[slot], slot)
	created.nextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.nextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue pointing at slot minSlot or
// above, copying its value out of the (about to be invalidated) stack
// region before the slot is reused.
func (vm *VM) closeUpvalues(minSlot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.slot >= minSlot {
		uv := vm.openUpvalues
		uv.close()
		vm.openUpvalues = uv.nextOpen
	}
}

// callValue dispatches a call by the callee's runtime variant: Closure via
// the frame machinery, NativeFn directly, Class as instance construction
// (routing to init if present), BoundMethod by rewriting the receiver into
// the callee slot and recursing on its Closure.
func (vm *VM) callValue(callee Value, argCount int) {
	if !callee.IsObj() {
		vm.runtimeErrorf("can only call functions and classes")
		return
	}
	switch o := callee.AsObj().(type) {
	case *ObjClosure:
		vm.call(o, argCount)
	case *ObjNative:
		args := vm.stack[len(vm.stack)-argCount:]
		result, err := o.Fn(args)
		if err != nil {
			vm.runtimeErrorf("%s", err.Error())
			return
		}
		vm.stack = vm.stack[:len(vm.stack)-argCount-1]
		vm.push(result)
	case *ObjClass:
		inst := vm.newInstance(o)
		vm.stack[len(vm.stack)-argCount-1] = ObjValue(inst)
		if init, ok := o.Methods.Get(vm.initString); ok {
			vm.call(init.AsObj().(*ObjClosure), argCount)
		} else if argCount != 0 {
			vm.runtimeErrorf("expected 0 arguments but got %d", argCount)
		}
	case *ObjBoundMethod:
		vm.stack[len(vm.stack)-argCount-1] = o.Receiver
		vm.call(o.Method, argCount)
	default:
		vm.runtimeErrorf("can only call functions and classes")
	}
}

func (vm *VM) call(closure *ObjClosure, argCount int) {
	if argCount != closure.Fn.Arity {
		vm.runtimeErrorf("%s: expected %d arguments but got %d",
			signature(funcDisplayName(closure.Fn), closure.Fn.Arity), closure.Fn.Arity, argCount)
		return
	}
	if len(vm.frames) == framesMax {
		vm.runtimeErrorf("stack overflow")
		return
	}
	vm.frames = append(vm.frames, CallFrame{
		closure:   closure,
		slotsBase: len(vm.stack) - argCount - 1,
	})
}

// invoke fuses a GET_PROPERTY + CALL: field access still takes priority
// over a method of the same name, matching plain property-get semantics.
func (vm *VM) invoke(name *ObjString, argCount int) {
	receiver := vm.peek(argCount)
	inst, ok := receiver.AsObj().(*ObjInstance)
	if !receiver.IsObj() || !ok {
		vm.runtimeErrorf("only instances have methods")
		return
	}
	if v, ok := inst.Fields.Get(name); ok {
		vm.stack[len(vm.stack)-argCount-1] = v
		vm.callValue(v, argCount)
		return
	}
	vm.invokeFromClass(inst.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeErrorf("undefined property '%s'", name.Chars)
		return
	}
	vm.call(method.AsObj().(*ObjClosure), argCount)
}
