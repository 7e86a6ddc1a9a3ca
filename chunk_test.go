package wee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWriteAndLine(t *testing.T) {
	var c Chunk
	c.Write(0x01, 1)
	c.Write(0x02, 1)
	c.Write(0x03, 2)
	c.Write(0x04, 2)
	c.Write(0x05, 2)

	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, c.Code)
	assert.Equal(t, 1, c.Line(0))
	assert.Equal(t, 1, c.Line(1))
	assert.Equal(t, 2, c.Line(2))
	assert.Equal(t, 2, c.Line(4))
}

func TestChunkWriteUint16(t *testing.T) {
	var c Chunk
	c.WriteUint16(0x1234, 1)
	assert.Equal(t, []byte{0x12, 0x34}, c.Code)
}

func TestChunkAddConstant(t *testing.T) {
	vm := newVM()
	var c Chunk
	idx, err := c.AddConstant(vm, NumberValue(1))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = c.AddConstant(vm, NumberValue(2))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	assert.Equal(t, NumberValue(1), c.Consts[0])
	assert.Equal(t, NumberValue(2), c.Consts[1])
}

func TestChunkAddConstantOverflow(t *testing.T) {
	vm := newVM()
	var c Chunk
	for i := 0; i < 256; i++ {
		_, err := c.AddConstant(vm, NumberValue(float64(i)))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(vm, NumberValue(256))
	assert.ErrorIs(t, err, errTooManyConstants)
}
