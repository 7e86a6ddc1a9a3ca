package wee

// heapState holds every piece of GC bookkeeping embedded directly into VM,
// the same way gothird folds memCore's fields straight into VM rather than
// holding a separate pointer (internals.go's vm.grow/vm.load/vm.stor). One
// allocation entry point, alloc, funnels every heap object and charges its
// estimated size to bytesAllocated; sweep credits the same estimate back for
// every object it drops, so collection triggers on growth of the live heap.
type heapState struct {
	objects Obj    // head of the intrusive "every live object" list
	strings Table  // weak intern table: key present iff that string is live

	bytesAllocated uint64
	nextGC         uint64

	stressGC bool // collect before every growth allocation, for root-set bugs
	gray     []Obj
}

const initialGCThreshold = 1 << 20 // 1 MiB

func (vm *VM) initHeap() {
	vm.heap.nextGC = initialGCThreshold
}

// alloc tracks o on the intrusive object list and accounts size bytes
// against the collection threshold, triggering a collection first if the
// threshold (or stress mode) demands it. size is an estimate, not an exact
// sizeof, since Go does not expose one; it only needs to be consistent
// enough to make the "collect roughly every live_bytes*2" rule meaningful.
func (vm *VM) alloc(o Obj, size uint64) {
	vm.heap.bytesAllocated += size
	if vm.heap.stressGC || vm.heap.bytesAllocated > vm.heap.nextGC {
		vm.collectGarbage()
	}
	h := o.header()
	h.next = vm.heap.objects
	vm.heap.objects = o
}

func (vm *VM) newString(chars string) *ObjString {
	hash := fnv1a(chars)
	if interned := vm.heap.strings.findString(chars, hash); interned != nil {
		return interned
	}
	s := &ObjString{objHeader: objHeader{kind: ObjStringKind}, Chars: chars, Hash: hash}
	vm.alloc(s, uint64(len(chars))+32)
	// push/pop around the intern-table write: Set can grow the table's
	// backing array, an allocation this heap does not separately account
	// for, but s must still be reachable if that growth ever triggers GC.
	vm.push(ObjValue(s))
	vm.heap.strings.Set(s, BoolValue(true))
	vm.pop()
	return s
}

func fnv1a(s string) uint32 {
	const (
		offsetBasis = 2166136261
		prime       = 16777619
	)
	h := uint32(offsetBasis)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

func (vm *VM) newFunction() *ObjFunction {
	fn := &ObjFunction{objHeader: objHeader{kind: ObjFunctionKind}}
	vm.alloc(fn, 64)
	return fn
}

func (vm *VM) newNative(name string, f NativeFn) *ObjNative {
	n := &ObjNative{objHeader: objHeader{kind: ObjNativeKind}, Name: name, Fn: f}
	vm.alloc(n, 48)
	return n
}

func (vm *VM) newClosure(fn *ObjFunction) *ObjClosure {
	cl := &ObjClosure{
		objHeader: objHeader{kind: ObjClosureKind},
		Fn:        fn,
		Upvalues:  make([]*ObjUpvalue, fn.UpvalueCount),
	}
	vm.alloc(cl, uint64(16*fn.UpvalueCount)+32)
	return cl
}

func (vm *VM) newUpvalue(location *Value, slot int) *ObjUpvalue {
	uv := &ObjUpvalue{objHeader: objHeader{kind: ObjUpvalueKind}, location: location, slot: slot}
	vm.alloc(uv, 32)
	return uv
}

func (vm *VM) newClass(name *ObjString) *ObjClass {
	c := &ObjClass{objHeader: objHeader{kind: ObjClassKind}, Name: name}
	vm.alloc(c, 48)
	return c
}

func (vm *VM) newInstance(class *ObjClass) *ObjInstance {
	inst := &ObjInstance{objHeader: objHeader{kind: ObjInstanceKind}, Class: class}
	vm.alloc(inst, 48)
	return inst
}

func (vm *VM) newBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	bm := &ObjBoundMethod{objHeader: objHeader{kind: ObjBoundMethodKind}, Receiver: receiver, Method: method}
	vm.alloc(bm, 32)
	return bm
}

// collectGarbage runs one full stop-the-world mark-sweep pass: mark every
// root, drain the gray worklist blackening each object's outgoing
// references, prune the weak string table of anything left unmarked, then
// sweep the intrusive object list.
func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.sweepStrings()
	vm.sweep()

	vm.heap.nextGC = vm.heap.bytesAllocated * 2
	if vm.heap.nextGC < initialGCThreshold {
		vm.heap.nextGC = initialGCThreshold
	}
}

func (vm *VM) markRoots() {
	for _, v := range vm.stack {
		vm.markValue(v)
	}
	for i := range vm.frames {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.nextOpen {
		vm.markObject(uv)
	}
	vm.markTable(&vm.globals)
	if vm.initString != nil {
		vm.markObject(vm.initString)
	}
	for c := vm.compiler; c != nil; c = c.enclosing {
		vm.markObject(c.function)
	}
}

func (vm *VM) markValue(v Value) {
	if v.kind == KindObj && v.o != nil {
		vm.markObject(v.o)
	}
}

func (vm *VM) markObject(o Obj) {
	if o == nil {
		return
	}
	h := o.header()
	if h.marked {
		return
	}
	h.marked = true
	// The gray worklist's own growth intentionally bypasses vm.alloc's
	// accounting: it must never itself trigger a collection.
	vm.heap.gray = append(vm.heap.gray, o)
}

func (vm *VM) markTable(t *Table) {
	t.each(func(key *ObjString, value Value) {
		vm.markObject(key)
		vm.markValue(value)
	})
}

// traceReferences drains the gray worklist, blackening each object by
// marking its outgoing references per variant.
func (vm *VM) traceReferences() {
	for len(vm.heap.gray) > 0 {
		n := len(vm.heap.gray) - 1
		o := vm.heap.gray[n]
		vm.heap.gray = vm.heap.gray[:n]
		vm.blacken(o)
	}
}

func (vm *VM) blacken(o Obj) {
	switch o := o.(type) {
	case *ObjString, *ObjNative:
		// no outgoing references
	case *ObjUpvalue:
		vm.markValue(o.get())
	case *ObjFunction:
		// Name is nil for the script and for function literals; a nil
		// *ObjString inside the Obj interface would pass markObject's nil check.
		if o.Name != nil {
			vm.markObject(o.Name)
		}
		for _, c := range o.Chunk.Consts {
			vm.markValue(c)
		}
	case *ObjClosure:
		vm.markObject(o.Fn)
		for _, uv := range o.Upvalues {
			// entries are still nil while OpClosure is filling the array
			if uv != nil {
				vm.markObject(uv)
			}
		}
	case *ObjClass:
		vm.markObject(o.Name)
		vm.markTable(&o.Methods)
	case *ObjInstance:
		vm.markObject(o.Class)
		vm.markTable(&o.Fields)
	case *ObjBoundMethod:
		vm.markValue(o.Receiver)
		vm.markObject(o.Method)
	}
}

// sweepStrings removes any intern table entry whose key survived marking as
// unreached, so the upcoming sweep may free the underlying ObjString.
func (vm *VM) sweepStrings() {
	var dead []*ObjString
	vm.heap.strings.each(func(key *ObjString, _ Value) {
		if !key.marked {
			dead = append(dead, key)
		}
	})
	for _, key := range dead {
		vm.heap.strings.Delete(key)
	}
}

// sweep walks the intrusive object list, splicing out and dropping any
// object whose mark bit is clear, and clearing the bit on survivors.
func (vm *VM) sweep() {
	var prev Obj
	cur := vm.heap.objects
	for cur != nil {
		h := cur.header()
		if h.marked {
			h.marked = false
			prev = cur
			cur = h.next
			continue
		}
		unreached := cur
		cur = h.next
		if prev != nil {
			prev.header().next = cur
		} else {
			vm.heap.objects = cur
		}
		// Credit back the size the new* constructor charged through alloc;
		// nothing further to release: Go's own GC reclaims the object.
		var size uint64
		switch o := unreached.(type) {
		case *ObjString:
			size = uint64(len(o.Chars)) + 32
		case *ObjFunction:
			size = 64
		case *ObjClosure:
			size = uint64(16*len(o.Upvalues)) + 32
		case *ObjNative, *ObjClass, *ObjInstance:
			size = 48
		case *ObjUpvalue, *ObjBoundMethod:
			size = 32
		}
		vm.heap.bytesAllocated -= size
	}
}
