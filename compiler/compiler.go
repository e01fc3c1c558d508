// Package compiler drives a whole compilation: it pulls top-level items from
// the parser, lowers each one as soon as it is complete and hands back the
// verified module.
package compiler

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.creack.net/milac/ast"
	"go.creack.net/milac/codegen"
	"go.creack.net/milac/env"
	"go.creack.net/milac/ir"
	"go.creack.net/milac/parser"
)

// DefaultModuleName names the module of a program without a header.
const DefaultModuleName = "mila"

// Options configures a compilation.
type Options struct {
	ModuleName string      // Used when the program has no "program" header.
	Logger     *log.Logger // Receives diagnostics as they are found. Nil discards them.
}

// Result is the outcome of a compilation.
type Result struct {
	Module      *ir.Module
	Items       []ast.Item // Items in the order they were parsed.
	Diagnostics []error    // Parse and lowering errors, in the order they were found.
}

// OK reports whether the compilation produced no diagnostic.
func (r *Result) OK() bool { return len(r.Diagnostics) == 0 }

// Intrinsics declares the runtime functions every program can call.
func Intrinsics(m *ir.Module) {
	m.AddFunction("writeln", []ir.Param{{Name: "x", Type: ir.I32}}, ir.I32)
	m.AddFunction("readln", []ir.Param{{Name: "x", Type: ir.Ptr}}, ir.I32)
}

// Compile compiles the program read from r. Malformed items are reported in
// the result's diagnostics and skipped; the returned error is reserved for
// a module that fails verification.
func Compile(r io.Reader, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	name := opts.ModuleName
	if name == "" {
		name = DefaultModuleName
	}

	ctx := env.New()
	m := ir.NewModule(name)
	Intrinsics(m)

	gen := codegen.New(ctx, m)
	p := parser.New(r, ctx, logger)
	res := &Result{Module: m}

	seen := 0
	flush := func() {
		errs := p.Errors()
		res.Diagnostics = append(res.Diagnostics, errs[seen:]...)
		seen = len(errs)
	}
	for {
		item := p.Next()
		flush()
		if item == nil {
			break
		}
		res.Items = append(res.Items, item)
		if err := gen.Lower(item); err != nil {
			logger.Printf("ERROR: %s", err)
			res.Diagnostics = append(res.Diagnostics, err)
		}
	}

	if pn := p.ProgramName(); pn != "" {
		m.Name = pn
	}
	gen.Finish()

	if err := ir.Verify(m); err != nil {
		return res, fmt.Errorf("verify module %q: %w", m.Name, err)
	}
	return res, nil
}

// CompileFile compiles the program stored at path. The module is named
// after the file unless the program has a header.
func CompileFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = f.Close() }() // Best effort.

	if opts.ModuleName == "" {
		opts.ModuleName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Compile(f, opts)
}
