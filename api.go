package wee

import (
	"context"
	"io"
	"io/ioutil"

	"github.com/jcorbin/wee/internal/flushio"
	"github.com/jcorbin/wee/internal/panicerr"
)

// New builds a VM with the given options applied over sensible defaults
// (output discarded, no execution tracing, default collection threshold).
func New(opts ...Option) *VM {
	vm := newVM()
	defaultOptions.apply(vm)
	Options(opts...).apply(vm)
	vm.defineNatives()
	return vm
}

// Compile compiles source into a callable top-level Closure without
// running it, for callers that want to inspect or disassemble it first.
func (vm *VM) Compile(source string) (*ObjClosure, error) {
	fn, err := Compile(vm, source)
	if err != nil {
		return nil, err
	}
	vm.push(ObjValue(fn))
	closure := vm.newClosure(fn)
	vm.pop()
	return closure, nil
}

// Interpret compiles and runs source to completion. A compile error is
// returned as CompileErrors; a runtime error is returned as *RuntimeError
// after the stack has been reset. Either case leaves the VM ready to
// Interpret the next input, REPL-style.
func (vm *VM) Interpret(ctx context.Context, source string) error {
	closure, err := vm.Compile(source)
	if err != nil {
		return err
	}
	return vm.Run(ctx, closure)
}

// Run executes closure as the program's entry point. Panics raised deep in
// opcode dispatch (runtimeErrorf) are recovered at this boundary, exactly
// as gothird recovers its own haltError at the top of Run.
func (vm *VM) Run(ctx context.Context, closure *ObjClosure) error {
	vm.resetStack()
	vm.push(ObjValue(closure))
	vm.call(closure, 0)

	err := panicerr.Recover("VM", func() error {
		return vm.runCtx(ctx)
	})
	if err != nil {
		vm.resetStack()
	}
	if vm.out != nil {
		vm.out.Flush()
	}
	return err
}

func (vm *VM) runCtx(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	vm.ctx = ctx
	defer func() { vm.ctx = nil }()
	vm.run()
	return nil
}

// Option configures a VM at construction time.
type Option interface{ apply(vm *VM) }

var defaultOptions = Options(
	withOutput(ioutil.Discard),
)

// Options flattens any number of Option values into one, discarding nils.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(*VM) {}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

// WithStdout sets the VM's print destination.
func WithStdout(w io.Writer) Option { return withOutput(w) }

// WithTee additionally mirrors print output to w, alongside whatever
// WithStdout already set.
func WithTee(w io.Writer) Option { return withTee(w) }

// WithTrace enables the per-instruction stack/disassembly trace.
func WithTrace(enabled bool) Option { return withTrace(enabled) }

// WithHeapLimit sets the initial garbage collection threshold, in bytes of
// the allocator's own (approximate) accounting.
func WithHeapLimit(limit uint64) Option { return withHeapLimit(limit) }

// WithStressGC forces a collection before every heap growth allocation,
// the same debug mode the collector's design calls out for surfacing
// root-set bugs.
func WithStressGC(enabled bool) Option { return withStressGC(enabled) }

type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type traceOption bool
type heapLimitOption uint64
type stressGCOption bool

func withOutput(w io.Writer) outputOption    { return outputOption{w} }
func withTee(w io.Writer) teeOption          { return teeOption{w} }
func withTrace(b bool) traceOption           { return traceOption(b) }
func withHeapLimit(l uint64) heapLimitOption { return heapLimitOption(l) }
func withStressGC(b bool) stressGCOption     { return stressGCOption(b) }

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (t traceOption) apply(vm *VM) { vm.traceExec = bool(t) }

func (l heapLimitOption) apply(vm *VM) { vm.heap.nextGC = uint64(l) }

func (s stressGCOption) apply(vm *VM) { vm.heap.stressGC = bool(s) }
