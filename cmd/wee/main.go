// Command wee runs Wee source files, or drops into a line-oriented REPL when
// given none.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/jcorbin/wee"
	"github.com/jcorbin/wee/internal/logio"
)

func main() {
	var (
		trace   bool
		disasm  bool
		timeout time.Duration
	)
	flag.BoolVar(&trace, "trace", false, "log a stack/disassembly trace for every executed instruction")
	flag.BoolVar(&disasm, "disasm", false, "print the bytecode disassembly of the top-level chunk to stderr before running it")
	flag.DurationVar(&timeout, "timeout", 0, "kill execution after the given duration")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	opts := []wee.Option{wee.WithStdout(os.Stdout)}
	if trace {
		opts = append(opts, wee.WithTrace(true))
	}
	vm := wee.New(opts...)

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if args := flag.Args(); len(args) > 0 {
		runFile(ctx, &log, vm, args[0], disasm)
		return
	}
	repl(ctx, &log, vm, disasm)
}

func runFile(ctx context.Context, log *logio.Logger, vm *wee.VM, path string, disasm bool) {
	src, err := ioutil.ReadFile(path)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	if disasm {
		dumpDisassembly(vm, string(src), path)
	}
	log.ErrorIf(vm.Interpret(ctx, string(src)))
}

func repl(ctx context.Context, log *logio.Logger, vm *wee.VM, disasm bool) {
	fmt.Println("wee> type an expression or statement, 'exit' or 'quit' to leave")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		line := sc.Text()
		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return
		case "":
			continue
		}
		if disasm {
			dumpDisassembly(vm, line, "<repl>")
		}
		log.ErrorIf(vm.Interpret(ctx, line))
	}
	if err := sc.Err(); err != nil {
		log.Errorf("%v", err)
	}
}

func dumpDisassembly(vm *wee.VM, src, name string) {
	closure, err := vm.Compile(src)
	if err != nil {
		log := logio.Logger{}
		log.SetOutput(os.Stderr)
		log.Errorf("%v", err)
		return
	}
	wee.NewDisassembler(os.Stderr).Disassemble(&closure.Fn.Chunk, name)
}
