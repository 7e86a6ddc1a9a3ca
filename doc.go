/*
Package wee implements Wee, a small dynamically-typed scripting language.

A Wee program is scanned by a one-token-lookahead Lexer, compiled in a single
pass directly to bytecode by a Pratt-style Compiler (no intermediate AST is
ever built), and executed by a stack-based VM with call frames, heap-allocated
reference objects, closures, classes, and a precise tracing mark-sweep
garbage collector.

	let greet = fun(name) {
	    return "hello, " + name + "!";
	};
	print greet("wee");

The three subsystems are tightly coupled: the Compiler emits opcodes that
reference the runtime layout the VM expects (locals by stack slot, upvalues
by capture index, globals by interned name), and the VM's garbage collector
must be able to see every value reachable from an in-progress compile, not
just from a running program, since compiling itself allocates.

See Compile, (*VM).Interpret, and (*VM).Run for the three stages of the
pipeline.
*/
package wee
