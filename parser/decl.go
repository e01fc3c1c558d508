package parser

import (
	"slices"
	"strings"

	"go.creack.net/milac/ast"
	"go.creack.net/milac/lexer"
)

// DefaultOperatorPrecedence is the priority of a binary operator defined
// without an explicit one.
const DefaultOperatorPrecedence = 30

const (
	// structuralChars are used by the grammar and can't name an operator.
	structuralChars = "()[],;.:"
	// builtinBinaryOps can't be redefined as binary operators.
	builtinBinaryOps = "+-*/<>="
)

// parseProgramHeader parses "program name ;".
func parseProgramHeader(p *parser) {
	p.nextToken() // Eat 'program'.
	ident := p.expect(lexer.TokIdentifier, "MISSING PROGRAM NAME")
	p.programName = ident.Value
	p.nextToken()
	p.skipChar(';')
}

// parsePrototype parses
// "name ( a : integer ; b : integer ) [: integer]" where name may also be
// "binary<c> [prec]" or "unary<c>". The leading function/procedure keyword
// must already have been consumed.
func parsePrototype(p *parser, isProcedure bool) *ast.Prototype {
	ident := p.expect(lexer.TokIdentifier, "MISSING FUNCTION NAME")
	proto := &ast.Prototype{Name: ident.Value, IsProcedure: isProcedure}
	p.nextToken()

	kind := ident.Value
	if (kind == "binary" || kind == "unary") && !p.curToken.Is('(') {
		parseOperatorName(p, proto, kind)
	}

	p.expectChar('(', "MISSING OPENING BRACKET '('")
	p.nextToken()

	for p.curToken.Type == lexer.TokIdentifier {
		if slices.Contains(proto.Params, p.curToken.Value) {
			p.fail("DUPLICATE PARAMETER '" + p.curToken.Value + "'")
		}
		proto.Params = append(proto.Params, p.curToken.Value)
		p.nextToken()

		p.expectChar(':', "MISSING ':'")
		p.nextToken()
		p.expect(lexer.TokInteger, "EXPECTED AN INTEGER")
		p.nextToken()

		if !p.skipChar(';') && !p.skipChar(',') {
			break
		}
	}
	p.expectChar(')', "MISSING CLOSING BRACKET ')'")
	p.nextToken()

	if p.skipChar(':') {
		p.expect(lexer.TokInteger, "EXPECTED AN INTEGER")
		p.nextToken()
	}

	if proto.IsOperator {
		want := 2
		if kind == "unary" {
			want = 1
		}
		if len(proto.Params) != want {
			p.fail("INVALID NUMBER OF OPERANDS FOR OPERATOR")
		}
	}
	return proto
}

// parseOperatorName parses the "<c> [prec]" part of an operator definition.
func parseOperatorName(p *parser, proto *ast.Prototype, kind string) {
	reserved := structuralChars
	if kind == "binary" {
		reserved += builtinBinaryOps
	}
	if p.curToken.Type != lexer.TokChar || strings.Contains(reserved, p.curToken.Value) {
		p.fail("EXPECTED AN OPERATOR CHARACTER AFTER '" + kind + "'")
	}
	proto.Name = kind + p.curToken.Value
	proto.IsOperator = true
	p.nextToken()

	if kind == "binary" {
		proto.Precedence = DefaultOperatorPrecedence
		if p.curToken.Type == lexer.TokNumber {
			if p.curToken.Num < 1 || p.curToken.Num > 100 {
				p.fail("INVALID PRECEDENCE: MUST BE 1..100")
			}
			proto.Precedence = int(p.curToken.Num)
			p.nextToken()
		}
	}
}

// parseDefinition parses a function or procedure: a prototype followed by
// either "forward" or a body. A body is any number of var and const
// sections, then "begin Statements end".
func parseDefinition(p *parser) ast.Item {
	isProcedure := p.curToken.Type == lexer.TokProcedure
	p.nextToken() // Eat 'function' or 'procedure'.

	proto := parsePrototype(p, isProcedure)
	p.skipChar(';')

	if p.curToken.Type == lexer.TokForward {
		p.nextToken()
		p.skipChar(';')
		p.ctx.DeclarePrototype(proto)
		return proto
	}

	fn := &ast.Function{Proto: proto}
	for p.curToken.Type.IsOneOf(lexer.TokVar, lexer.TokConst) {
		if p.curToken.Type == lexer.TokVar {
			fn.Body = append(fn.Body, parseVarSection(p))
		} else {
			fn.Body = append(fn.Body, parseConstSection(p))
		}
	}

	if p.curToken.Type == lexer.TokBegin {
		p.nextToken()
	} else {
		p.warn("EXPECTED 'begin'")
	}
	fn.Body = append(fn.Body, parseStatements(p, false)...)
	p.expect(lexer.TokEnd, "MISSING 'end'")
	p.nextToken()
	p.skipChar(';')
	return fn
}

// parseForward parses a top-level "forward Prototype".
func parseForward(p *parser) ast.Item {
	p.nextToken() // Eat 'forward'.

	isProcedure := p.curToken.Type == lexer.TokProcedure
	if p.curToken.Type.IsOneOf(lexer.TokProcedure, lexer.TokFunction) {
		p.nextToken()
	}
	proto := parsePrototype(p, isProcedure)
	p.skipChar(';')
	p.ctx.DeclarePrototype(proto)
	return proto
}

// parseTopLevelExpr wraps a bare statement into the synthetic main function.
func parseTopLevelExpr(p *parser) ast.Item {
	stmt := parseExpr(p)
	if stmt == nil {
		return nil
	}
	return &ast.Function{
		Proto: &ast.Prototype{Name: "main"},
		Body:  []ast.Expr{stmt},
		Main:  true,
	}
}
