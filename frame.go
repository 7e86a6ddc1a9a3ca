package wee

// CallFrame pins a Closure's instruction pointer and the base stack slot its
// locals/arguments live at. Slot 0 is always the callee itself, or the
// receiver (self) when the callee is a bound method.
type CallFrame struct {
	closure   *ObjClosure
	ip        int
	slotsBase int
}

func (f *CallFrame) readByte() byte {
	b := f.closure.Fn.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (f *CallFrame) readUint16() uint16 {
	hi := f.readByte()
	lo := f.readByte()
	return uint16(hi)<<8 | uint16(lo)
}

func (f *CallFrame) readConstant() Value {
	return f.closure.Fn.Chunk.Consts[f.readByte()]
}
