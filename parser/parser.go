// Package parser turns a Mila token stream into top-level AST items.
//
// The parser keeps a single token of lookahead. Binary operator priorities
// are looked up in the compilation's env.Context, so operator definitions
// change how the rest of the source is parsed.
package parser

import (
	"io"
	"log"

	"go.creack.net/milac/ast"
	"go.creack.net/milac/env"
	"go.creack.net/milac/lexer"
)

type parser struct {
	lex *lexer.Lexer
	ctx *env.Context
	log *log.Logger

	curToken lexer.Token

	programName string
	done        bool
	errs        []error

	primaryLookupTable lookupTable[primaryHandler]
	itemLookupTable    lookupTable[itemHandler]
}

// Parser yields the top-level items of a program one at a time.
type Parser interface {
	// Next returns the next item, or nil once the program is exhausted.
	// Malformed items are reported and skipped.
	Next() ast.Item
	// ProgramName returns the name given by the "program" header, if any.
	ProgramName() string
	// Errors returns the diagnostics reported so far, in source order.
	Errors() []error
}

func newParser(lex *lexer.Lexer, ctx *env.Context, logger *log.Logger) *parser {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	p := &parser{
		lex:                lex,
		ctx:                ctx,
		log:                logger,
		primaryLookupTable: lookupTable[primaryHandler]{},
		itemLookupTable:    lookupTable[itemHandler]{},
	}
	p.createTokenLookups()
	p.nextToken()
	return p
}

// New creates a parser reading r. Prototypes, constants and operator
// priorities are recorded into ctx as they are parsed.
func New(r io.Reader, ctx *env.Context, logger *log.Logger) Parser {
	return newParser(lexer.New(r), ctx, logger)
}

// Parse reads every item of the input.
func Parse(lex *lexer.Lexer, ctx *env.Context, logger *log.Logger) ([]ast.Item, []error) {
	var items []ast.Item

	p := newParser(lex, ctx, logger)
	for {
		item := p.Next()
		if item == nil {
			break
		}
		items = append(items, item)
	}

	return items, p.Errors()
}

func (p *parser) ProgramName() string { return p.programName }
func (p *parser) Errors() []error     { return p.errs }

func (p *parser) Next() ast.Item {
	for !p.done {
		switch {
		case p.curToken.Type == lexer.TokEOF, p.curToken.Is('.'):
			p.done = true
		case p.curToken.Is(';'), p.curToken.Type == lexer.TokEnd:
			p.nextToken()
		case p.curToken.Type == lexer.TokProgram:
			if !p.try(func() { parseProgramHeader(p) }) {
				p.nextToken()
			}
		default:
			var item ast.Item
			if p.try(func() { item = p.parseItem() }) && item != nil {
				return item
			}
			// Nothing usable, resume at the next token.
			p.nextToken()
		}
	}
	return nil
}

func (p *parser) parseItem() ast.Item {
	if fn, exists := p.itemLookupTable[p.curToken.Type]; exists {
		return fn(p)
	}
	return parseTopLevelExpr(p)
}

// try runs fn and reports whether it completed without a syntax error.
func (p *parser) try(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			perr, isParseErr := r.(*Error)
			if !isParseErr {
				panic(r)
			}
			p.report(perr)
			ok = false
		}
	}()
	fn()
	return true
}

func (p *parser) nextToken() lexer.Token {
	p.curToken = p.lex.NextToken()
	for p.curToken.Type == lexer.TokError {
		p.report(&Error{Msg: p.curToken.Value, Line: p.curToken.Line(), Col: p.curToken.Col()})
		p.curToken = p.lex.NextToken()
	}
	return p.curToken
}

// expect checks if the current token is of the expected type and fails with
// msg otherwise.
func (p *parser) expect(kind lexer.TokenType, msg string) lexer.Token {
	if p.curToken.Type == kind {
		return p.curToken
	}
	p.fail(msg)
	return p.curToken
}

// expectChar is expect for raw characters.
func (p *parser) expectChar(c rune, msg string) {
	if !p.curToken.Is(c) {
		p.fail(msg)
	}
}

// skipChar consumes c if it is the current token.
func (p *parser) skipChar(c rune) bool {
	if p.curToken.Is(c) {
		p.nextToken()
		return true
	}
	return false
}

// fail aborts the item being parsed.
func (p *parser) fail(msg string) {
	panic(p.errorAt(msg))
}

// warn reports a problem the parser can recover from in place.
func (p *parser) warn(msg string) {
	p.report(p.errorAt(msg))
}

func (p *parser) errorAt(msg string) *Error {
	return &Error{Msg: msg, Line: p.curToken.Line(), Col: p.curToken.Col()}
}

func (p *parser) report(err *Error) {
	p.errs = append(p.errs, err)
	p.log.Printf("ERROR: %s", err)
}
