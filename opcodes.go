package wee

// OpCode is one bytecode instruction's tag byte. Multi-byte operands that
// follow an opcode are always big-endian.
type OpCode byte

const (
	OpLoad OpCode = iota // const_idx:1 -- push constant

	OpNil   // -- push nil
	OpTrue  // -- push true
	OpFalse // -- push false
	OpPop   // -- pop

	OpGetLocal // slot:1 -- push local
	OpSetLocal // slot:1 -- overwrite local, leaves value

	OpGetGlobal    // name_const:1 -- read global
	OpSetGlobal    // name_const:1 -- write existing global, leaves value
	OpDefineGlobal // name_const:1 -- define global from top of stack

	OpGetUpvalue // idx:1 -- push captured value
	OpSetUpvalue // idx:1 -- overwrite captured value, leaves value

	OpGetProperty // name_const:1 -- instance field or bound method
	OpSetProperty // name_const:1 -- set instance field, leaves value
	OpGetSuper    // name_const:1 -- bind superclass method to receiver

	OpNegate // -- unary arithmetic negate
	OpNot    // -- unary logical not

	OpAdd      // -- + (numbers or string concatenation)
	OpSubtract // -- -
	OpMultiply // -- *
	OpDivide   // -- /

	OpEqual        // -- ==
	OpNotEqual     // -- !=
	OpLess         // -- <
	OpLessEqual    // -- <=
	OpGreater      // -- >
	OpGreaterEqual // -- >=

	OpPrint // -- pop and print

	OpJump         // offset:2 -- unconditional forward branch
	OpJumpIfTrue   // offset:2 -- branch if top of stack is truthy, does not pop
	OpJumpIfFalse  // offset:2 -- branch if top of stack is falsey, does not pop
	OpJumpBack     // offset:2 -- unconditional backward branch

	OpCall // argc:1 -- dispatch call on stack[-argc-1]

	OpClosure      // const_idx:1, then one (is_local:1, idx:1) pair per upvalue
	OpCloseUpvalue // -- close top-of-stack slot, pop

	OpReturn // -- pop result, unwind frame

	OpClass   // name_const:1 -- push new class
	OpInherit // -- copy superclass methods into subclass, pop subclass
	OpMethod  // name_const:1 -- bind closure-on-stack as method of class below

	OpInvoke      // name_const:1, argc:1 -- fused property get + call
	OpSuperInvoke // name_const:1, argc:1 -- fused super get + call

	opCodeMax
)

var opCodeNames [opCodeMax]string

func init() {
	opCodeNames = [opCodeMax]string{
		OpLoad: "LOAD",

		OpNil:   "NIL",
		OpTrue:  "TRUE",
		OpFalse: "FALSE",
		OpPop:   "POP",

		OpGetLocal: "GET_LOCAL",
		OpSetLocal: "SET_LOCAL",

		OpGetGlobal:    "GET_GLOBAL",
		OpSetGlobal:    "SET_GLOBAL",
		OpDefineGlobal: "DEFINE_GLOBAL",

		OpGetUpvalue: "GET_UPVALUE",
		OpSetUpvalue: "SET_UPVALUE",

		OpGetProperty: "GET_PROPERTY",
		OpSetProperty: "SET_PROPERTY",
		OpGetSuper:    "GET_SUPER",

		OpNegate: "NEGATE",
		OpNot:    "NOT",

		OpAdd:      "ADD",
		OpSubtract: "SUBTRACT",
		OpMultiply: "MULTIPLY",
		OpDivide:   "DIVIDE",

		OpEqual:        "EQUAL",
		OpNotEqual:     "NOT_EQUAL",
		OpLess:         "LESSER",
		OpLessEqual:    "LESSER_EQUAL",
		OpGreater:      "GREATER",
		OpGreaterEqual: "GREATER_EQUAL",

		OpPrint: "PRINT",

		OpJump:        "JUMP",
		OpJumpIfTrue:  "JUMP_IF_TRUE",
		OpJumpIfFalse: "JUMP_IF_FALSE",
		OpJumpBack:    "JUMP_BACK",

		OpCall: "CALL",

		OpClosure:      "CLOSURE",
		OpCloseUpvalue: "CLOSE_UPVALUE",

		OpReturn: "RETURN",

		OpClass:   "CLASS",
		OpInherit: "INHERIT",
		OpMethod:  "METHOD",

		OpInvoke:      "INVOKE",
		OpSuperInvoke: "SUPER_INVOKE",
	}
}

func (op OpCode) String() string {
	if op < opCodeMax {
		if name := opCodeNames[op]; name != "" {
			return name
		}
	}
	return "UNKNOWN"
}
