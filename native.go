package wee

import "syscall"

// defineNatives installs every built-in native function into the globals
// table, keyed by interned name so OpGetGlobal resolves them exactly like
// any user-defined global.
func (vm *VM) defineNatives() {
	vm.defineNative("clock", nativeClock)
}

func (vm *VM) defineNative(name string, fn NativeFn) {
	// newString/newNative both allocate; push the name before allocating
	// the native object so a GC triggered by that allocation still sees it,
	// exactly the discipline the GC funnel requires of every caller.
	s := vm.newString(name)
	vm.push(ObjValue(s))
	n := vm.newNative(name, fn)
	vm.pop()
	vm.globals.Set(s, ObjValue(n))
}

// nativeClock reports CPU time consumed by this process so far (user +
// system), not wall-clock time, matching the host-clock() a script would
// use to benchmark its own work independent of what else the machine is
// doing.
func nativeClock(args []Value) (Value, error) {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return NilValue, err
	}
	seconds := float64(ru.Utime.Nano()+ru.Stime.Nano()) / 1e9
	return NumberValue(seconds), nil
}
