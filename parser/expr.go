package parser

import (
	"go.creack.net/milac/ast"
	"go.creack.net/milac/lexer"
)

// parseExpr parses "Unary BinOpRHS". It returns nil without error when the
// current token is "begin" or "end".
func parseExpr(p *parser) ast.Expr {
	left := parseUnaryExpr(p)
	if left == nil {
		return nil
	}
	return parseBinOpRHS(p, 0, left)
}

// tokenPrecedence returns the priority of the current token as a binary
// operator, or -1 if it isn't one.
func (p *parser) tokenPrecedence() int {
	op := p.curToken.Op()
	if op == "" {
		return -1
	}
	return p.ctx.Precedence(op)
}

func parseBinOpRHS(p *parser, minPrec int, left ast.Expr) ast.Expr {
	for {
		prec := p.tokenPrecedence()
		if prec < minPrec || prec < 0 {
			return left
		}

		op := p.curToken.Op()
		p.nextToken()

		right := parseUnaryExpr(p)
		if right == nil {
			p.fail("EXPECTED EXPRESSION AFTER '" + op + "'")
		}

		// A tighter operator after the right operand takes it as its left side.
		if prec < p.tokenPrecedence() {
			right = parseBinOpRHS(p, prec+1, right)
		}

		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
}

// parseUnaryExpr parses a prefix operator application. Any raw character other
// than '(' and ',' is taken as a prefix operator.
func parseUnaryExpr(p *parser) ast.Expr {
	if p.curToken.Type != lexer.TokChar || p.curToken.Is('(') || p.curToken.Is(',') {
		return parsePrimaryExpr(p)
	}

	op := p.curToken.Value
	p.nextToken()
	operand := parseUnaryExpr(p)
	if operand == nil {
		p.fail("EXPECTED EXPRESSION AFTER '" + op + "'")
	}
	return &ast.Unary{Op: op, Operand: operand}
}

func parsePrimaryExpr(p *parser) ast.Expr {
	if p.curToken.Is('(') {
		return parseGroupingExpr(p)
	}
	if fn, exists := p.primaryLookupTable[p.curToken.Type]; exists {
		return fn(p)
	}
	if p.curToken.Type.IsOneOf(lexer.TokBegin, lexer.TokEnd) {
		return nil
	}
	p.fail("EXPECTED EXPRESSION MISSING")
	return nil
}

func parseNumberExpr(p *parser) ast.Expr {
	n := &ast.Number{Value: p.curToken.Num}
	p.nextToken()
	return n
}

func parseGroupingExpr(p *parser) ast.Expr {
	p.nextToken() // Eat '('.
	expr := parseExpr(p)
	if expr == nil {
		p.fail("EXPECTED EXPRESSION MISSING")
	}
	p.expectChar(')', "CLOSING BRACKET ')' MISSING FOR THE EXPRESSION")
	p.nextToken()
	return expr
}

// parseIdentifierExpr parses a variable reference or a call. A ';' right
// after a call is consumed so the call can stand as a statement.
func parseIdentifierExpr(p *parser) ast.Expr {
	name := p.curToken.Value
	p.nextToken()

	if !p.curToken.Is('(') {
		return &ast.Variable{Name: name}
	}
	p.nextToken() // Eat '('.

	var args []ast.Expr
	if !p.curToken.Is(')') {
		for {
			arg := parseExpr(p)
			if arg == nil {
				p.fail("EXPECTED EXPRESSION MISSING")
			}
			args = append(args, arg)

			if p.curToken.Is(')') {
				break
			}
			p.expectChar(',', "MISSING SEPERATOR ',' IN LIST OF ARGUMENTS")
			p.nextToken()
		}
	}
	p.nextToken() // Eat ')'.
	p.skipChar(';')

	return &ast.Call{Callee: name, Args: args}
}
