package parser

import (
	"go.creack.net/milac/ast"
	"go.creack.net/milac/lexer"
)

// parseStatements parses statements up to, not including, the next "end".
// When single is set, at most one statement is parsed. Empty statements are
// skipped in a statement list.
func parseStatements(p *parser, single bool) []ast.Expr {
	var stmts []ast.Expr
	for p.curToken.Type != lexer.TokEnd {
		if !single && p.skipChar(';') {
			continue
		}
		stmt := parseExpr(p)
		if stmt == nil {
			if p.curToken.Type == lexer.TokEnd {
				break
			}
			p.fail("UNEXPECTED 'begin'")
		}
		p.skipChar(';')
		stmts = append(stmts, stmt)
		if single {
			break
		}
	}
	return stmts
}

// parseBlock parses either "begin Statements end" or a single statement.
func parseBlock(p *parser) []ast.Expr {
	if p.curToken.Type != lexer.TokBegin {
		return parseStatements(p, true)
	}
	p.nextToken()
	stmts := parseStatements(p, false)
	p.expect(lexer.TokEnd, "MISSING 'end'")
	p.nextToken()
	p.skipChar(';')
	return stmts
}

// parseIfExpr parses "if Cond then Block [else Expr]". The else branch is a
// single expression.
func parseIfExpr(p *parser) ast.Expr {
	p.nextToken() // Eat 'if'.

	cond := parseExpr(p)
	if cond == nil {
		p.fail("EXPECTED CONDITION AFTER 'if'")
	}

	p.expect(lexer.TokThen, "MISSING 'then'")
	p.nextToken()

	node := &ast.If{Cond: cond, Then: parseBlock(p)}

	if p.curToken.Type == lexer.TokElse {
		p.nextToken()
		node.Else = parseExpr(p)
		if node.Else == nil {
			p.fail("EXPECTED EXPRESSION AFTER 'else'")
		}
		node.HasElse = true
	}
	return node
}

// parseForExpr parses
// "for Ident := Start (to|downto) End [step Step] do begin Statements end".
// A missing "do" or "begin" is reported and parsing carries on; without
// "begin" the body is a single statement.
func parseForExpr(p *parser) ast.Expr {
	p.nextToken() // Eat 'for'.

	ident := p.expect(lexer.TokIdentifier, "MISSING 'identifier' AFTER THE 'for'")
	p.nextToken()

	p.expect(lexer.TokAssign, "MISSING ':=' AFTER THE 'for'")
	p.nextToken()

	node := &ast.For{Var: ident.Value}
	if node.Start = parseExpr(p); node.Start == nil {
		p.fail("EXPECTED START VALUE AFTER ':='")
	}

	switch p.curToken.Type {
	case lexer.TokTo:
	case lexer.TokDownto:
		node.Descending = true
	default:
		p.fail("MISSING 'to' OR 'downto' AFTER THE 'for'")
	}
	p.nextToken()

	if node.End = parseExpr(p); node.End == nil {
		p.fail("EXPECTED END VALUE IN 'for'")
	}

	// "step" is only a keyword in this position.
	if p.curToken.Type == lexer.TokIdentifier && p.curToken.Value == "step" {
		p.nextToken()
		if node.Step = parseExpr(p); node.Step == nil {
			p.fail("EXPECTED EXPRESSION AFTER 'step'")
		}
	}

	if p.curToken.Type == lexer.TokDo {
		p.nextToken()
	} else {
		p.warn("MISSING 'do' AFTER 'for'")
	}
	if p.curToken.Type != lexer.TokBegin {
		p.warn("MISSING 'begin' AFTER 'for'")
	}
	node.Body = parseBlock(p)
	return node
}

// parseWhileExpr parses "while Cond do Block".
func parseWhileExpr(p *parser) ast.Expr {
	p.nextToken() // Eat 'while'.

	cond := parseExpr(p)
	if cond == nil {
		p.fail("EXPECTED CONDITION AFTER 'while'")
	}
	p.expect(lexer.TokDo, "MISSING 'do' AFTER 'while'")
	p.nextToken()

	return &ast.While{Cond: cond, Body: parseBlock(p)}
}

func parseExitExpr(p *parser) ast.Expr {
	p.nextToken()
	return &ast.Exit{}
}

// parseVarSection parses "var" followed by one or more groups, each either
// "name : integer ;" or "a, b, c : integer ;". The token after the first
// name of a group decides its shape.
func parseVarSection(p *parser) *ast.Var {
	p.nextToken() // Eat 'var'.
	p.expect(lexer.TokIdentifier, "EXPECTED AN 'identifier' AFTER 'var'")

	node := &ast.Var{}
	for p.curToken.Type == lexer.TokIdentifier {
		node.Decls = append(node.Decls, ast.Decl{Name: p.curToken.Value})
		p.nextToken()

		switch {
		case p.curToken.Is(':'):
		case p.curToken.Is(','):
			for p.skipChar(',') {
				ident := p.expect(lexer.TokIdentifier, "MISSING 'identifier' LIST AFTER 'var'")
				node.Decls = append(node.Decls, ast.Decl{Name: ident.Value})
				p.nextToken()
			}
			p.expectChar(':', "MISSING ':' AFTER 'var'")
		default:
			p.fail("MISSING ',' OR ':' AFTER THE 'identifier'")
		}
		p.nextToken() // Eat ':'.

		p.expect(lexer.TokInteger, "EXPECTED AN 'integer' AFTER ':'")
		p.nextToken()
		p.expectChar(';', "MISSING ';' AFTER THE 'integer'")
		p.nextToken()
	}
	return node
}

// parseConstSection parses "const (name = Expr ;)+". Names are marked
// constant as soon as they are parsed.
func parseConstSection(p *parser) *ast.Const {
	p.nextToken() // Eat 'const'.
	p.expect(lexer.TokIdentifier, "EXPECTING AN 'identifier' AFTER 'const'")

	node := &ast.Const{}
	for p.curToken.Type == lexer.TokIdentifier {
		name := p.curToken.Value
		p.ctx.DeclareConstant(name)
		p.nextToken()

		if p.curToken.Op() != "=" {
			p.fail("MISSING INITIALIZATION FOR THE CONSTANT")
		}
		p.nextToken()

		init := parseExpr(p)
		if init == nil {
			p.fail("MISSING INITIALIZATION FOR THE CONSTANT")
		}
		node.Decls = append(node.Decls, ast.Decl{Name: name, Init: init})

		if !p.skipChar(';') {
			break
		}
		if p.curToken.Type.IsOneOf(sectionKeywords...) {
			break
		}
		p.expect(lexer.TokIdentifier, "MISSING 'identifier' list")
	}
	return node
}

// sectionKeywords end a const section.
var sectionKeywords = []lexer.TokenType{
	lexer.TokFunction,
	lexer.TokProcedure,
	lexer.TokForward,
	lexer.TokBegin,
	lexer.TokVar,
	lexer.TokConst,
	lexer.TokEOF,
}
