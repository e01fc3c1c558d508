package lexer

import (
	"strconv"
	"strings"
)

type stateFn func(*Lexer) stateFn

func lexText(l *Lexer) stateFn {
	l.acceptRun(whitespace)
	l.ignore()

	if l.readErr != nil {
		err := l.readErr
		l.readErr = nil
		return l.errorf("read input: %s", err)
	}

	switch r := l.peek(); {
	case r == eof:
		return l.emit(TokEOF)
	case strings.ContainsRune(letters, r):
		return lexIdentifier
	case strings.ContainsRune(digits, r):
		return lexNumber
	case r == '&':
		return lexPrefixedNumber(octDigits, 8)
	case r == '$':
		return lexPrefixedNumber(hexDigits, 16)
	case r == '#':
		return lexComment
	case strings.ContainsRune(twoCharLeads, r):
		return lexOperator
	default:
		l.next()
		return l.emit(TokChar)
	}
}

func lexIdentifier(l *Lexer) stateFn {
	l.acceptRun(letters + digits)
	tok := l.thisToken(TokIdentifier)
	if kw, ok := keywords[tok.Value]; ok {
		tok.Type = kw
	}
	return l.emitToken(tok)
}

func lexNumber(l *Lexer) stateFn {
	l.acceptRun(digits)
	tok := l.thisToken(TokNumber)
	n, err := strconv.ParseInt(tok.Value, 10, 32)
	if err != nil {
		return l.errorToken(tok, "number %s out of range", tok.Value)
	}
	tok.Num = int32(n)
	return l.emitToken(tok)
}

// lexPrefixedNumber lexes '&' octal and '$' hexadecimal literals. They are
// parsed as 32-bit patterns, so $FFFFFFFF is -1.
func lexPrefixedNumber(valid string, base int) stateFn {
	return func(l *Lexer) stateFn {
		prefix := l.next()
		if !l.acceptRun(valid) {
			return l.errorf("missing digits after %q", prefix)
		}
		tok := l.thisToken(TokNumber)
		n, err := strconv.ParseUint(tok.Value[1:], base, 32)
		if err != nil {
			return l.errorToken(tok, "number %s out of range", tok.Value)
		}
		tok.Num = int32(uint32(n))
		return l.emitToken(tok)
	}
}

// lexComment drops everything up to the end of the line.
func lexComment(l *Lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' || r == '\r' {
			break
		}
	}
	l.ignore()
	return lexText
}

func lexOperator(l *Lexer) stateFn {
	first := l.next()
	second := l.peek()
	composites := map[string]TokenType{
		"!=": TokNotEqual,
		"<>": TokNotEqual,
		"<=": TokLessEqual,
		">=": TokGreaterEqual,
		":=": TokAssign,
		"||": TokOr,
		"==": TokEq,
	}
	if second != eof {
		if tt, ok := composites[string([]rune{first, second})]; ok {
			l.next()
			return l.emit(tt)
		}
	}
	return l.emit(TokChar)
}
