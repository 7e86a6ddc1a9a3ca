package wee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCInternsEqualStrings(t *testing.T) {
	vm := newVM()
	a := vm.newString("shared")
	b := vm.newString("shared")
	assert.Same(t, a, b, "two strings with identical content intern to the same object")
}

func TestGCSweepsUnreachableStrings(t *testing.T) {
	vm := newVM()
	vm.newString("ephemeral")
	require.NotNil(t, vm.heap.strings.findString("ephemeral", fnv1a("ephemeral")))

	vm.collectGarbage()

	assert.Nil(t, vm.heap.strings.findString("ephemeral", fnv1a("ephemeral")),
		"a string reachable from nothing but this local variable must not survive a collection")
}

func TestGCKeepsGlobalsReachable(t *testing.T) {
	vm := newVM()
	name := vm.newString("kept")
	vm.globals.Set(name, ObjValue(vm.newString("value")))

	vm.collectGarbage()

	v, ok := vm.globals.Get(name)
	require.True(t, ok)
	assert.Equal(t, "value", v.AsString().Chars)
}

func TestGCKeepsStackReachable(t *testing.T) {
	vm := newVM()
	s := vm.newString("on the stack")
	vm.push(ObjValue(s))

	vm.collectGarbage()

	assert.Same(t, s, vm.pop().AsObj())
}

func TestGCKeepsOpenUpvalueTargetReachable(t *testing.T) {
	vm := newVM()
	vm.push(ObjValue(vm.newString("slot 0")))
	uv := vm.captureUpvalueForTest(0)

	vm.collectGarbage()

	assert.Equal(t, "slot 0", uv.get().AsString().Chars)
}

// captureUpvalueForTest exposes captureUpvalue to tests in this package
// without widening its signature for production callers.
func (vm *VM) captureUpvalueForTest(slot int) *ObjUpvalue {
	return vm.captureUpvalue(slot)
}
