// Command milac compiles a Mila program and prints its tokens, syntax tree
// or IR, or runs it through the IR interpreter.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"

	"go.creack.net/milac/backend"
	"go.creack.net/milac/compiler"
	"go.creack.net/milac/lexer"
)

var (
	flEmit     = flag.String("emit", "ir", "What to produce: tokens, ast, ir or run.")
	flOut      = flag.String("o", "", "Output file. Defaults to stdout.")
	flWatch    = flag.Bool("watch", false, "Recompile whenever the source file changes.")
	flMaxSteps = flag.Int("max-steps", backend.DefaultMaxSteps, "Instruction budget for -emit run.")
	flCleanup  = flag.Bool("cleanup", true, "Drop unreachable blocks before printing the IR.")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: milac [flags] <file.mila>\n\nFlags:\n")
	flag.PrintDefaults()
}

func openOutput() (io.Writer, func(), error) {
	if *flOut == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(*flOut)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil // Best effort.
}

func dumpTokens(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = f.Close() }() // Best effort.

	lex := lexer.New(f)
	for {
		tok := lex.NextToken()
		if _, err := fmt.Fprintln(w, tok); err != nil {
			return err
		}
		if tok.Type == lexer.TokEOF {
			return nil
		}
	}
}

// build compiles path once and emits the result. The returned code is the
// process exit status: main's return value for -emit run, 1 on diagnostics.
func build(path string) (int, error) {
	out, done, err := openOutput()
	if err != nil {
		return 1, err
	}
	defer done()

	if *flEmit == "tokens" {
		return 0, dumpTokens(path, out)
	}

	res, err := compiler.CompileFile(path, compiler.Options{Logger: log.New(os.Stderr, "", 0)})
	if err != nil {
		return 1, err
	}
	if *flEmit == "ast" {
		for _, item := range res.Items {
			if _, err := pretty.Fprintf(out, "%# v\n", item); err != nil {
				return 1, err
			}
		}
	}
	if !res.OK() {
		return 1, fmt.Errorf("%s: %d error(s)", path, len(res.Diagnostics))
	}

	switch *flEmit {
	case "ir":
		if err := (&backend.Text{W: out, Cleanup: *flCleanup}).Emit(res.Module); err != nil {
			return 1, err
		}
	case "run":
		interp := &backend.Interpreter{Stdin: os.Stdin, Stdout: out, MaxSteps: *flMaxSteps}
		if err := interp.Emit(res.Module); err != nil {
			return 1, fmt.Errorf("run: %w", err)
		}
		return int(interp.ExitCode), nil
	}
	return 0, nil
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	switch *flEmit {
	case "tokens", "ast", "ir", "run":
	default:
		log.Fatalf("Unknown -emit %q.", *flEmit)
	}
	path := flag.Arg(0)

	if !*flWatch {
		code, err := build(path)
		if err != nil {
			log.Fatalf("Fail: %s.", err)
		}
		os.Exit(code)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := watch(ctx, path, func() {
		if _, err := build(path); err != nil {
			log.Printf("Fail: %s.", err)
		}
	}); err != nil {
		log.Fatalf("Fail: %s.", err)
	}
}
