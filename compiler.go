package wee

import "strconv"

// FunctionKind tells a Compiler what kind of callable it is assembling,
// since constructors and methods need slightly different entry/return
// codegen than a plain function or the implicit top-level script.
type FunctionKind int

const (
	ScriptFn FunctionKind = iota
	NormalFn
	MethodFn
	ConstructorFn
)

type local struct {
	name       Token
	depth      int // -1 while the initializer is still being compiled
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// classCompiler tracks the class body currently being compiled, so self/
// super can be resolved and rejected outside of one. It nests independently
// of Compiler, since a method body's nested functions still compile inside
// the same enclosing class.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// parser is the one-token-lookahead token-stream state shared by every
// Compiler in a compile's nesting chain: there is exactly one Lexer, one
// current/previous token pair, and one error-accumulation state for an
// entire compile, however many nested function bodies it contains.
type parser struct {
	vm *VM
	lx *Lexer

	current  Token
	previous Token

	panicMode bool
	hadError  bool
	errors    CompileErrors

	currentClass *classCompiler
}

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lx.Next()
		if p.current.Kind != TokenError {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(kind TokenKind) bool { return p.current.Kind == kind }

func (p *parser) match(kind TokenKind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(kind TokenKind, msg string) {
	if p.current.Kind == kind {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(tok Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	at := tok.Lexeme
	switch tok.Kind {
	case TokenEOF:
		at = "end"
	case TokenError:
		at = ""
	}
	p.errors = append(p.errors, CompileError{Line: tok.Line, At: at, Message: msg})
}

// synchronize discards tokens until a likely statement boundary, so one
// syntax error reports once instead of cascading into every token after it.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != TokenEOF {
		if p.previous.Kind == TokenSemicolon {
			return
		}
		switch p.current.Kind {
		case TokenClass, TokenFun, TokenLet, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn:
			return
		}
		p.advance()
	}
}

// Compiler holds the state of one function body being compiled: its target
// Function/Chunk, its locals and captured upvalues, and the current scope
// depth. Compilers nest via enclosing to mirror Wee's lexical function
// nesting; the chain is also what the garbage collector walks to keep every
// in-progress Function reachable while a collection fires mid-compile.
type Compiler struct {
	parser    *parser
	enclosing *Compiler

	function *ObjFunction
	kind     FunctionKind

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	class *classCompiler
}

// Compile compiles source into a top-level Function ready to be wrapped in
// a Closure and run, or returns the accumulated CompileErrors.
func Compile(vm *VM, source string) (*ObjFunction, error) {
	p := &parser{vm: vm, lx: NewLexer(source)}
	c := newCompiler(p, ScriptFn, "")

	p.advance()
	for !p.match(TokenEOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if p.hadError {
		return nil, p.errors
	}
	return fn, nil
}

func newCompiler(p *parser, kind FunctionKind, name string) *Compiler {
	enclosing := p.vm.compiler
	c := &Compiler{parser: p, enclosing: enclosing, kind: kind}
	if enclosing != nil {
		c.class = enclosing.class
	}
	c.function = p.vm.newFunction()
	p.vm.compiler = c

	if kind == ScriptFn {
		c.function.IsScript = true
	} else if name != "" {
		c.function.Name = p.vm.newString(name)
	}

	// Slot 0 is reserved for the callee itself, or for self in a method/
	// constructor; it can never be referenced by source-level name in the
	// Script/NormalFn case, so an empty lexeme is fine.
	slotName := ""
	if kind == MethodFn || kind == ConstructorFn {
		slotName = "self"
	}
	c.locals = append(c.locals, local{name: Token{Lexeme: slotName}, depth: 0})

	return c
}

func (c *Compiler) endCompiler() *ObjFunction {
	c.emitReturn()
	fn := c.function
	c.parser.vm.compiler = c.enclosing
	return fn
}

func (c *Compiler) currentChunk() *Chunk { return &c.function.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.parser.previous.Line)
}

func (c *Compiler) emitBytes(b1, b2 byte) {
	c.emitByte(b1)
	c.emitByte(b2)
}

func (c *Compiler) emitReturn() {
	if c.kind == ConstructorFn {
		c.emitBytes(byte(OpGetLocal), 0)
	} else {
		c.emitByte(byte(OpNil))
	}
	c.emitByte(byte(OpReturn))
}

func (c *Compiler) makeConstant(v Value) byte {
	idx, err := c.currentChunk().AddConstant(c.parser.vm, v)
	if err != nil {
		c.parser.error(err.Error())
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v Value) {
	c.emitBytes(byte(OpLoad), c.makeConstant(v))
}

func (c *Compiler) identifierConstant(name Token) byte {
	return c.makeConstant(ObjValue(c.parser.vm.newString(name.Lexeme)))
}

// emitJump writes op followed by a two-byte placeholder, returning the
// offset of the placeholder for patchJump to backfill once the jump target
// is known.
func (c *Compiler) emitJump(op OpCode) int {
	c.emitByte(byte(op))
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		c.parser.error("too much code to jump over")
	}
	code := c.currentChunk().Code
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitByte(byte(OpJumpBack))
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.parser.error("loop body too large")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		if c.locals[len(c.locals)-1].isCaptured {
			c.emitByte(byte(OpCloseUpvalue))
		} else {
			c.emitByte(byte(OpPop))
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// --- variable resolution ---

func resolveLocal(c *Compiler, name Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name.Lexeme == name.Lexeme {
			if c.locals[i].depth == -1 {
				c.parser.error("cannot read a local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

func addUpvalue(c *Compiler, index byte, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= 256 {
		c.parser.error("too many closure variables in function")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	c.function.UpvalueCount = len(c.upvalues)
	return len(c.upvalues) - 1
}

func resolveUpvalue(c *Compiler, name Token) int {
	if c.enclosing == nil {
		return -1
	}
	if slot := resolveLocal(c.enclosing, name); slot != -1 {
		c.enclosing.locals[slot].isCaptured = true
		return addUpvalue(c, byte(slot), true)
	}
	if up := resolveUpvalue(c.enclosing, name); up != -1 {
		return addUpvalue(c, byte(up), false)
	}
	return -1
}

func (c *Compiler) addLocal(name Token) {
	if len(c.locals) >= 256 {
		c.parser.error("too many local variables in function")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.parser.previous
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth != -1 && c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name.Lexeme == name.Lexeme {
			c.parser.error("already a variable with this name in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.parser.consume(TokenIdentifier, errMsg)
	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.parser.previous)
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(OpDefineGlobal), global)
}

func (c *Compiler) namedVariable(name Token, canAssign bool) {
	var getOp, setOp OpCode
	arg := resolveLocal(c, name)
	if arg != -1 {
		getOp, setOp = OpGetLocal, OpSetLocal
	} else if arg = resolveUpvalue(c, name); arg != -1 {
		getOp, setOp = OpGetUpvalue, OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = OpGetGlobal, OpSetGlobal
	}

	if canAssign && c.parser.match(TokenEqual) {
		c.expression()
		c.emitBytes(byte(setOp), byte(arg))
	} else {
		c.emitBytes(byte(getOp), byte(arg))
	}
}

// --- Pratt expression grammar ---

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ( )
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[TokenKind]parseRule

func init() {
	rules = map[TokenKind]parseRule{
		TokenLeftParen:    {prefix: grouping, infix: call, precedence: precCall},
		TokenDot:          {infix: dot, precedence: precCall},
		TokenMinus:        {prefix: unary, infix: binary, precedence: precTerm},
		TokenPlus:         {infix: binary, precedence: precTerm},
		TokenSlash:        {infix: binary, precedence: precFactor},
		TokenStar:         {infix: binary, precedence: precFactor},
		TokenBang:         {prefix: unary},
		TokenBangEqual:    {infix: binary, precedence: precEquality},
		TokenEqualEqual:   {infix: binary, precedence: precEquality},
		TokenGreater:      {infix: binary, precedence: precComparison},
		TokenGreaterEqual: {infix: binary, precedence: precComparison},
		TokenLess:         {infix: binary, precedence: precComparison},
		TokenLessEqual:    {infix: binary, precedence: precComparison},
		TokenIdentifier:   {prefix: variable},
		TokenString:       {prefix: stringLiteral},
		TokenNumber:       {prefix: number},
		TokenAnd:          {infix: and_, precedence: precAnd},
		TokenOr:           {infix: or_, precedence: precOr},
		TokenFalse:        {prefix: literal},
		TokenTrue:         {prefix: literal},
		TokenNil:          {prefix: literal},
		TokenSelf:         {prefix: self_},
		TokenSuper:        {prefix: super_},
		TokenFun:          {prefix: functionExpr},
	}
}

func (c *Compiler) parsePrecedence(prec precedence) {
	p := c.parser
	p.advance()
	prefixRule := rules[p.previous.Kind].prefix
	if prefixRule == nil {
		p.error("expect expression")
		return
	}

	canAssign := prec <= precAssignment
	prefixRule(c, canAssign)

	for prec <= rules[p.current.Kind].precedence {
		p.advance()
		infixRule := rules[p.previous.Kind].infix
		infixRule(c, canAssign)
	}

	if canAssign && p.match(TokenEqual) {
		p.error("invalid assignment target")
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func number(c *Compiler, _ bool) {
	n, _ := strconv.ParseFloat(c.parser.previous.Lexeme, 64)
	c.emitConstant(NumberValue(n))
}

func stringLiteral(c *Compiler, _ bool) {
	s := c.parser.vm.newString(c.parser.previous.Lexeme)
	c.emitConstant(ObjValue(s))
}

func literal(c *Compiler, _ bool) {
	switch c.parser.previous.Kind {
	case TokenFalse:
		c.emitByte(byte(OpFalse))
	case TokenTrue:
		c.emitByte(byte(OpTrue))
	case TokenNil:
		c.emitByte(byte(OpNil))
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.parser.consume(TokenRightParen, "expect ')' after expression")
}

func unary(c *Compiler, _ bool) {
	opKind := c.parser.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case TokenMinus:
		c.emitByte(byte(OpNegate))
	case TokenBang:
		c.emitByte(byte(OpNot))
	}
}

var binaryOps = map[TokenKind]OpCode{
	TokenPlus:         OpAdd,
	TokenMinus:        OpSubtract,
	TokenStar:         OpMultiply,
	TokenSlash:        OpDivide,
	TokenBangEqual:    OpNotEqual,
	TokenEqualEqual:   OpEqual,
	TokenGreater:      OpGreater,
	TokenGreaterEqual: OpGreaterEqual,
	TokenLess:         OpLess,
	TokenLessEqual:    OpLessEqual,
}

func binary(c *Compiler, _ bool) {
	opKind := c.parser.previous.Kind
	rule := rules[opKind]
	c.parsePrecedence(rule.precedence + 1)
	c.emitByte(byte(binaryOps[opKind]))
}

func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emitByte(byte(OpPop))
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	c.emitByte(byte(OpPop))
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.parser.previous, canAssign)
}

func self_(c *Compiler, _ bool) {
	if c.class == nil {
		c.parser.error("cannot use 'self' outside of a class")
		return
	}
	c.namedVariable(Token{Kind: TokenSelf, Lexeme: "self"}, false)
}

func super_(c *Compiler, _ bool) {
	if c.class == nil {
		c.parser.error("cannot use 'super' outside of a class")
	} else if !c.class.hasSuperclass {
		c.parser.error("cannot use 'super' in a class with no superclass")
	}

	c.parser.consume(TokenDot, "expect '.' after 'super'")
	c.parser.consume(TokenIdentifier, "expect superclass method name")
	name := c.identifierConstant(c.parser.previous)

	c.namedVariable(Token{Lexeme: "self"}, false)
	if c.parser.match(TokenLeftParen) {
		argCount := c.argumentList()
		c.namedVariable(Token{Lexeme: "super"}, false)
		c.emitBytes(byte(OpSuperInvoke), name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(Token{Lexeme: "super"}, false)
		c.emitBytes(byte(OpGetSuper), name)
	}
}

func (c *Compiler) argumentList() byte {
	count := 0
	if !c.parser.check(TokenRightParen) {
		for {
			c.expression()
			if count == 255 {
				c.parser.error("cannot have more than 255 arguments")
			}
			count++
			if !c.parser.match(TokenComma) {
				break
			}
		}
	}
	c.parser.consume(TokenRightParen, "expect ')' after arguments")
	return byte(count)
}

func call(c *Compiler, _ bool) {
	argCount := c.argumentList()
	c.emitBytes(byte(OpCall), argCount)
}

func dot(c *Compiler, canAssign bool) {
	c.parser.consume(TokenIdentifier, "expect property name after '.'")
	name := c.identifierConstant(c.parser.previous)

	switch {
	case canAssign && c.parser.match(TokenEqual):
		c.expression()
		c.emitBytes(byte(OpSetProperty), name)
	case c.parser.match(TokenLeftParen):
		argCount := c.argumentList()
		c.emitBytes(byte(OpInvoke), name)
		c.emitByte(argCount)
	default:
		c.emitBytes(byte(OpGetProperty), name)
	}
}

// --- statements and declarations ---

func (c *Compiler) declaration() {
	p := c.parser
	switch {
	case p.match(TokenClass):
		c.classDeclaration()
	case p.match(TokenFun):
		c.funDeclaration()
	case p.match(TokenLet):
		c.varDeclaration()
	default:
		c.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("expect variable name")
	if c.parser.match(TokenEqual) {
		c.expression()
	} else {
		c.emitByte(byte(OpNil))
	}
	c.parser.consume(TokenSemicolon, "expect ';' after variable declaration")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("expect function name")
	name := c.parser.previous.Lexeme
	c.markInitialized()
	c.functionBody(NormalFn, name)
	c.defineVariable(global)
}

// functionExpr is the prefix parse rule for TokenFun, compiling an anonymous
// function literal as an expression, e.g. `let makeCounter = fun() { ... };`.
// Unlike funDeclaration/method it has no name token to consume: the
// function's Name stays nil, and the disassembler renders it as
// "<anonymous fn>" (a stack trace as "anonymous function") rather than
// mistaking it for the top-level script.
func functionExpr(c *Compiler, _ bool) {
	c.functionBody(NormalFn, "")
}

// functionBody compiles a nested function's parameter list and block into a
// fresh Compiler, then emits CLOSURE (with its upvalue capture descriptors)
// into the enclosing chunk. The child Function is installed as a constant
// of the enclosing chunk before CLOSURE is emitted, so it stays reachable
// through the enclosing Function if a collection fires while allocating the
// Closure itself.
func (c *Compiler) functionBody(kind FunctionKind, name string) {
	child := newCompiler(c.parser, kind, name)
	child.beginScope()

	p := c.parser
	p.consume(TokenLeftParen, "expect '(' after function name")
	if !p.check(TokenRightParen) {
		for {
			child.function.Arity++
			if child.function.Arity > 255 {
				p.errorAtCurrent("cannot have more than 255 parameters")
			}
			paramConst := child.parseVariable("expect parameter name")
			child.defineVariable(paramConst)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "expect ')' after parameters")
	p.consume(TokenLeftBrace, "expect '{' before function body")
	child.block()

	fn := child.endCompiler()
	idx := c.makeConstant(ObjValue(fn))
	c.emitBytes(byte(OpClosure), idx)
	for _, uv := range child.upvalues {
		c.emitByte(boolByte(uv.isLocal))
		c.emitByte(uv.index)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (c *Compiler) classDeclaration() {
	p := c.parser
	p.consume(TokenIdentifier, "expect class name")
	className := p.previous
	nameConstant := c.identifierConstant(className)
	c.declareVariable()

	c.emitBytes(byte(OpClass), nameConstant)
	c.defineVariable(nameConstant)

	cc := &classCompiler{enclosing: p.currentClass}
	p.currentClass = cc
	c.class = cc

	if p.match(TokenColon) {
		p.consume(TokenIdentifier, "expect superclass name")
		superclassName := p.previous
		variable(c, false)

		if superclassName.Lexeme == className.Lexeme {
			p.error("a class cannot inherit from itself")
		}

		c.beginScope()
		c.addLocal(Token{Lexeme: "super"})
		c.defineVariable(0)

		c.namedVariable(className, false)
		c.emitByte(byte(OpInherit))
		cc.hasSuperclass = true
	}

	c.namedVariable(className, false)
	p.consume(TokenLeftBrace, "expect '{' before class body")
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		c.method()
	}
	p.consume(TokenRightBrace, "expect '}' after class body")
	c.emitByte(byte(OpPop))

	if cc.hasSuperclass {
		c.endScope()
	}

	p.currentClass = cc.enclosing
	c.class = cc.enclosing
}

func (c *Compiler) method() {
	p := c.parser
	p.consume(TokenIdentifier, "expect method name")
	name := p.previous
	constant := c.identifierConstant(name)

	kind := MethodFn
	if name.Lexeme == "init" {
		kind = ConstructorFn
	}
	c.functionBody(kind, name.Lexeme)
	c.emitBytes(byte(OpMethod), constant)
}

func (c *Compiler) statement() {
	p := c.parser
	switch {
	case p.match(TokenPrint):
		c.printStatement()
	case p.match(TokenIf):
		c.ifStatement()
	case p.match(TokenReturn):
		c.returnStatement()
	case p.match(TokenWhile):
		c.whileStatement()
	case p.match(TokenFor):
		c.forStatement()
	case p.match(TokenLeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.parser.consume(TokenSemicolon, "expect ';' after value")
	c.emitByte(byte(OpPrint))
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.parser.consume(TokenSemicolon, "expect ';' after expression")
	c.emitByte(byte(OpPop))
}

func (c *Compiler) block() {
	p := c.parser
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		c.declaration()
	}
	p.consume(TokenRightBrace, "expect '}' after block")
}

func (c *Compiler) ifStatement() {
	p := c.parser
	p.consume(TokenLeftParen, "expect '(' after 'if'")
	c.expression()
	p.consume(TokenRightParen, "expect ')' after condition")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitByte(byte(OpPop))
	c.statement()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emitByte(byte(OpPop))

	if p.match(TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	p := c.parser
	loopStart := len(c.currentChunk().Code)
	p.consume(TokenLeftParen, "expect '(' after 'while'")
	c.expression()
	p.consume(TokenRightParen, "expect ')' after condition")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitByte(byte(OpPop))
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitByte(byte(OpPop))
}

func (c *Compiler) forStatement() {
	p := c.parser
	c.beginScope()
	p.consume(TokenLeftParen, "expect '(' after 'for'")

	switch {
	case p.match(TokenSemicolon):
		// no initializer
	case p.match(TokenLet):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !p.match(TokenSemicolon) {
		c.expression()
		p.consume(TokenSemicolon, "expect ';' after loop condition")
		exitJump = c.emitJump(OpJumpIfFalse)
		c.emitByte(byte(OpPop))
	}

	if !p.match(TokenRightParen) {
		bodyJump := c.emitJump(OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitByte(byte(OpPop))
		p.consume(TokenRightParen, "expect ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitByte(byte(OpPop))
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	p := c.parser
	if c.kind == ScriptFn {
		p.error("cannot return from top-level code")
	}
	if p.match(TokenSemicolon) {
		c.emitReturn()
		return
	}
	if c.kind == ConstructorFn {
		p.error("cannot return a value from an initializer")
	}
	c.expression()
	p.consume(TokenSemicolon, "expect ';' after return value")
	c.emitByte(byte(OpReturn))
}
