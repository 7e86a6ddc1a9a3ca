package wee

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(chars string) *ObjString {
	return &ObjString{Chars: chars, Hash: fnv1a(chars)}
}

func TestTableSetGet(t *testing.T) {
	var tbl Table
	k := key("answer")
	assert.True(t, tbl.Set(k, NumberValue(42)))
	v, ok := tbl.Get(k)
	require.True(t, ok)
	assert.Equal(t, NumberValue(42), v)

	assert.False(t, tbl.Set(k, NumberValue(43)), "re-setting an existing key is not a new insertion")
	v, ok = tbl.Get(k)
	require.True(t, ok)
	assert.Equal(t, NumberValue(43), v)
}

func TestTableGetMissing(t *testing.T) {
	var tbl Table
	_, ok := tbl.Get(key("nope"))
	assert.False(t, ok)
}

func TestTableDeleteThenProbePastTombstone(t *testing.T) {
	var tbl Table
	// "a" and "i" share home slot 4 of the initial 8-slot table, so b is
	// stored one slot past a and the lookup of b must probe past a's slot.
	a, b := key("a"), key("i")
	tbl.Set(a, NumberValue(1))
	tbl.Set(b, NumberValue(2))

	assert.True(t, tbl.Delete(a))
	assert.False(t, tbl.Delete(a), "already deleted")

	_, ok := tbl.Get(a)
	assert.False(t, ok)

	v, ok := tbl.Get(b)
	require.True(t, ok, "probing must walk past a's tombstone to reach b")
	assert.Equal(t, NumberValue(2), v)
}

func TestTableGrowthPreservesEntries(t *testing.T) {
	var tbl Table
	const n = 200
	keys := make([]*ObjString, n)
	for i := 0; i < n; i++ {
		keys[i] = key(fmt.Sprintf("k%d", i))
		tbl.Set(keys[i], NumberValue(float64(i)))
	}
	assert.Equal(t, n, tbl.Len())
	for i := 0; i < n; i++ {
		v, ok := tbl.Get(keys[i])
		require.True(t, ok)
		assert.Equal(t, NumberValue(float64(i)), v)
	}
}

func TestTableAddAllCopiesNotAliases(t *testing.T) {
	var parent, child Table
	greet := key("greet")
	parent.Set(greet, NumberValue(1))

	child.AddAll(&parent)
	child.Set(greet, NumberValue(2))

	v, _ := parent.Get(greet)
	assert.Equal(t, NumberValue(1), v, "overwriting the child's copy must not affect the parent's table")
}

func TestTableFindString(t *testing.T) {
	var tbl Table
	k := key("hello")
	tbl.Set(k, BoolValue(true))
	found := tbl.findString("hello", fnv1a("hello"))
	assert.Same(t, k, found)
	assert.Nil(t, tbl.findString("goodbye", fnv1a("goodbye")))
}
