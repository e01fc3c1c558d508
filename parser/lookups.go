package parser

import (
	"go.creack.net/milac/ast"
	"go.creack.net/milac/lexer"
)

// primaryHandler parses an expression starting with a given token type.
type primaryHandler func(*parser) ast.Expr

// itemHandler parses a top-level construct starting with a given keyword.
type itemHandler func(*parser) ast.Item

type lookupTable[T any] map[lexer.TokenType]T

func (p *parser) primary(kind lexer.TokenType, fn primaryHandler) {
	if _, ok := p.primaryLookupTable[kind]; ok {
		panic("duplicate primary handler")
	}
	p.primaryLookupTable[kind] = fn
}

func (p *parser) item(kind lexer.TokenType, fn itemHandler) {
	if _, ok := p.itemLookupTable[kind]; ok {
		panic("duplicate item handler")
	}
	p.itemLookupTable[kind] = fn
}

func (p *parser) createTokenLookups() {
	// Literals & symbols.
	p.primary(lexer.TokNumber, parseNumberExpr)
	p.primary(lexer.TokIdentifier, parseIdentifierExpr)

	// Statements.
	p.primary(lexer.TokIf, parseIfExpr)
	p.primary(lexer.TokFor, parseForExpr)
	p.primary(lexer.TokWhile, parseWhileExpr)
	p.primary(lexer.TokExit, parseExitExpr)
	p.primary(lexer.TokVar, func(p *parser) ast.Expr { return parseVarSection(p) })
	p.primary(lexer.TokConst, func(p *parser) ast.Expr { return parseConstSection(p) })

	// Top-level declarations.
	p.item(lexer.TokFunction, parseDefinition)
	p.item(lexer.TokProcedure, parseDefinition)
	p.item(lexer.TokForward, parseForward)
	p.item(lexer.TokVar, func(p *parser) ast.Item { return parseVarSection(p) })
	p.item(lexer.TokConst, func(p *parser) ast.Item { return parseConstSection(p) })
}
