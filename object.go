package wee

import (
	"fmt"
	"strings"
)

// ObjKind tags the concrete type of a heap object.
type ObjKind uint8

const (
	ObjStringKind ObjKind = iota
	ObjFunctionKind
	ObjNativeKind
	ObjClosureKind
	ObjUpvalueKind
	ObjClassKind
	ObjInstanceKind
	ObjBoundMethodKind
)

func (k ObjKind) String() string {
	switch k {
	case ObjStringKind:
		return "string"
	case ObjFunctionKind:
		return "function"
	case ObjNativeKind:
		return "native"
	case ObjClosureKind:
		return "closure"
	case ObjUpvalueKind:
		return "upvalue"
	case ObjClassKind:
		return "class"
	case ObjInstanceKind:
		return "instance"
	case ObjBoundMethodKind:
		return "bound method"
	default:
		return "unknown"
	}
}

// Obj is the interface every heap-allocated reference type satisfies, by
// embedding objHeader. The header carries the mark bit and the intrusive
// next pointer threading every live object onto the heap's single list, the
// universe the sweep pass walks.
type Obj interface {
	objKind() ObjKind
	header() *objHeader
}

type objHeader struct {
	kind   ObjKind
	marked bool
	next   Obj
}

func (h *objHeader) objKind() ObjKind   { return h.kind }
func (h *objHeader) header() *objHeader { return h }

// ObjString is an immutable, interned, hash-precomputed byte string.
type ObjString struct {
	objHeader
	Chars string
	Hash  uint32
}

func objString(o Obj) string {
	switch o := o.(type) {
	case *ObjString:
		return o.Chars
	case *ObjFunction:
		return funcDisplayName(o)
	case *ObjNative:
		return fmt.Sprintf("<native fn %s>", o.Name)
	case *ObjClosure:
		return funcDisplayName(o.Fn)
	case *ObjUpvalue:
		return "<upvalue>"
	case *ObjClass:
		return o.Name.Chars
	case *ObjInstance:
		return o.Class.Name.Chars + " instance"
	case *ObjBoundMethod:
		return funcDisplayName(o.Method.Fn)
	default:
		return "<object>"
	}
}

func funcDisplayName(fn *ObjFunction) string {
	switch {
	case fn == nil || fn.IsScript:
		return "<script>"
	case fn.Name == nil:
		return "<anonymous fn>"
	default:
		return fmt.Sprintf("<fn %s>", fn.Name.Chars)
	}
}

// ObjFunction is a compiled function body: its Chunk, arity, optional name,
// and the number of upvalues its closures must capture. Name is nil both for
// the implicit top-level script (IsScript true) and for a function literal
// expression, which has no name token to take one from; IsScript is what
// tells the two apart when rendering a display name or a stack frame.
type ObjFunction struct {
	objHeader
	Arity        int
	UpvalueCount int
	Name         *ObjString
	IsScript     bool
	Chunk        Chunk
}

// NativeFn is a host function exposed to Wee programs, e.g. clock.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a host function pointer.
type ObjNative struct {
	objHeader
	Name string
	Fn   NativeFn
}

// ObjUpvalue is an indirection to a variable captured by a closure. While
// open, location points into the live VM stack and slot records which
// stack index that is (Go gives pointers no ordering operators, so the
// open-upvalue list is kept sorted by this index rather than by address);
// closing copies the value into the closed field and redirects location to
// point at it.
type ObjUpvalue struct {
	objHeader
	location *Value
	slot     int
	closed   Value
	nextOpen *ObjUpvalue // open-upvalue list link, sorted by descending slot
}

func (uv *ObjUpvalue) get() Value  { return *uv.location }
func (uv *ObjUpvalue) set(v Value) { *uv.location = v }

func (uv *ObjUpvalue) close() {
	uv.closed = *uv.location
	uv.location = &uv.closed
}

// ObjClosure pairs a Function with its captured upvalues.
type ObjClosure struct {
	objHeader
	Fn       *ObjFunction
	Upvalues []*ObjUpvalue
}

// ObjClass is a named bag of methods, keyed by interned name.
type ObjClass struct {
	objHeader
	Name    *ObjString
	Methods Table
}

// ObjInstance is an instance of a Class with its own field table.
type ObjInstance struct {
	objHeader
	Class  *ObjClass
	Fields Table
}

// ObjBoundMethod pairs a receiver with a method Closure; calling it installs
// the receiver into call frame slot 0.
type ObjBoundMethod struct {
	objHeader
	Receiver Value
	Method   *ObjClosure
}

// signature renders a human-readable arity/name description, used in arity
// mismatch error messages.
func signature(name string, arity int) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('/')
	fmt.Fprintf(&sb, "%d", arity)
	return sb.String()
}
