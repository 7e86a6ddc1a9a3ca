package wee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueFalsey(t *testing.T) {
	assert.True(t, NilValue.Falsey())
	assert.True(t, BoolValue(false).Falsey())
	assert.False(t, BoolValue(true).Falsey())
	assert.False(t, NumberValue(0).Falsey(), "0 is truthy")
	assert.False(t, ObjValue(&ObjString{Chars: ""}).Falsey(), "empty string is truthy")
}

func TestValueEqual(t *testing.T) {
	assert.True(t, NumberValue(1).Equal(NumberValue(1)))
	assert.False(t, NumberValue(1).Equal(NumberValue(2)))
	assert.False(t, NumberValue(1).Equal(BoolValue(true)), "different kinds are never equal")
	assert.True(t, NilValue.Equal(NilValue))

	a := &ObjString{Chars: "hi"}
	b := &ObjString{Chars: "hi"}
	assert.True(t, ObjValue(a).Equal(ObjValue(a)))
	assert.False(t, ObjValue(a).Equal(ObjValue(b)), "equality is by identity, not content, at this layer")
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "nil", NilValue.String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, "3", NumberValue(3).String())
	assert.Equal(t, "3.5", NumberValue(3.5).String())
}
