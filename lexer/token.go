package lexer

import (
	"fmt"
	"slices"
)

// TokenType is the type of token.
type TokenType int

// Token types as constants.
const (
	TokError TokenType = iota
	TokEOF

	// Identifiers + literals.
	TokIdentifier
	TokNumber
	TokChar // Any other single character, e.g. '+', '(', ';'.

	// Keywords.
	TokBegin
	TokEnd
	TokConst
	TokProcedure
	TokForward
	TokFunction
	TokIf
	TokThen
	TokElse
	TokProgram
	TokWhile
	TokExit
	TokVar
	TokInteger
	TokFor
	TokDo
	TokTo
	TokDownto

	// Two-character operators.
	TokNotEqual     // != or <>.
	TokLessEqual    // <=.
	TokGreaterEqual // >=.
	TokAssign       // :=.
	TokOr           // ||.
	TokEq           // ==.

	// End of tokens.
	FinalToken
)

// String returns the string representation of the token type.
func (tt TokenType) String() string {
	return tokenTypeStrings[tt]
}

// Map of token types to their string representation for debugging.
var tokenTypeStrings = map[TokenType]string{
	TokError: "ERROR",
	TokEOF:   "EOF",

	TokIdentifier: "IDENTIFIER",
	TokNumber:     "NUMBER",
	TokChar:       "CHAR",

	TokBegin:     "BEGIN",
	TokEnd:       "END",
	TokConst:     "CONST",
	TokProcedure: "PROCEDURE",
	TokForward:   "FORWARD",
	TokFunction:  "FUNCTION",
	TokIf:        "IF",
	TokThen:      "THEN",
	TokElse:      "ELSE",
	TokProgram:   "PROGRAM",
	TokWhile:     "WHILE",
	TokExit:      "EXIT",
	TokVar:       "VAR",
	TokInteger:   "INTEGER",
	TokFor:       "FOR",
	TokDo:        "DO",
	TokTo:        "TO",
	TokDownto:    "DOWNTO",

	TokNotEqual:     "NOT_EQUAL",
	TokLessEqual:    "LESS_EQUAL",
	TokGreaterEqual: "GREATER_EQUAL",
	TokAssign:       "ASSIGN",
	TokOr:           "OR",
	TokEq:           "EQ",
}

// keywords maps reserved words to their token type. Matching is case sensitive.
var keywords = map[string]TokenType{
	"begin":     TokBegin,
	"end":       TokEnd,
	"const":     TokConst,
	"procedure": TokProcedure,
	"forward":   TokForward,
	"function":  TokFunction,
	"if":        TokIf,
	"then":      TokThen,
	"else":      TokElse,
	"program":   TokProgram,
	"while":     TokWhile,
	"exit":      TokExit,
	"var":       TokVar,
	"integer":   TokInteger,
	"for":       TokFor,
	"do":        TokDo,
	"to":        TokTo,
	"downto":    TokDownto,
}

// Keyword returns the token type of a reserved word.
func Keyword(word string) (TokenType, bool) {
	tt, ok := keywords[word]
	return tt, ok
}

func (tt TokenType) IsOneOf(t ...TokenType) bool {
	return slices.Contains(t, tt)
}

// Token represents a lexical token of a Mila program.
type Token struct {
	Type  TokenType
	Value string // Source text, or the error message for TokError.
	Num   int32  // Set for TokNumber.

	pos  int
	line int
}

// Line returns the line the token starts on, 1-based.
func (t Token) Line() int { return t.line }

// Col returns the column the token starts at, 1-based.
func (t Token) Col() int { return t.pos }

// Is reports whether t is the raw character c.
func (t Token) Is(c rune) bool {
	return t.Type == TokChar && t.Value == string(c)
}

// Op returns the operator tag of the token as used in the precedence table
// and in binary/unary AST nodes, or "" when the token can't be an operator.
// Callers only consult it in operator position.
// Composite spellings are normalized: "!=" becomes "<>" and "==" becomes "=".
func (t Token) Op() string {
	switch t.Type {
	case TokChar:
		return t.Value
	case TokNotEqual:
		return "<>"
	case TokLessEqual:
		return "<="
	case TokGreaterEqual:
		return ">="
	case TokAssign:
		return ":="
	case TokOr:
		return "||"
	case TokEq:
		return "="
	case TokIdentifier:
		// "mod" and "div" are plain identifiers that act as operators
		// wherever an operator is expected.
		if t.Value == "mod" || t.Value == "div" {
			return t.Value
		}
	}
	return ""
}

func (t Token) String() string {
	switch {
	case t.Type == TokEOF:
		return "EOF"
	case t.Type == TokError:
		return t.errorString()
	case len(t.Value) > 16:
		return fmt.Sprintf("%s[%d:%d]: %.16q", t.Type, t.line, t.pos, t.Value)
	}
	return fmt.Sprintf("%s[%d:%d]: %q", t.Type, t.line, t.pos, t.Value)
}

func (t Token) errorString() string {
	out := fmt.Sprintf("ERROR [%d:%d]: %s", t.line, t.pos, t.Value)
	return out
}
