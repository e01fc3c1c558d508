// Package lexer turns Mila source text into tokens.
package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	letters   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	octDigits = "01234567"
	hexDigits = "0123456789abcdefABCDEF"

	whitespace = " \t\r\n\v\f"

	// twoCharLeads are the characters that may start a two-character operator.
	twoCharLeads = ":<=>!|"
)

// eof is returned by next once the input is exhausted.
const eof rune = -1

type Lexer struct {
	input *bufio.Reader

	curToken Token

	atEOF   bool
	readErr error

	buf []rune // Text of the current token.

	line        int // Current line in input.
	linePos     int // Position in the current line.
	prevLineLen int

	startLine int // Line where the current token started.
	startPos  int // Column where the current token started.
}

// New creates a new Lexer reading from r.
func New(r io.Reader) *Lexer {
	return &Lexer{
		input:     bufio.NewReader(r),
		line:      1,
		startLine: 1,
		startPos:  1,
	}
}

// NewString creates a new Lexer over the given source text.
func NewString(input string) *Lexer {
	return New(strings.NewReader(input))
}

// NextToken returns the next token. Once the input is exhausted it keeps
// returning TokEOF.
func (l *Lexer) NextToken() Token {
	l.curToken = Token{Type: TokEOF, Value: "EOF", pos: l.linePos + 1, line: l.line}
	state := lexText
	for {
		state = state(l)
		if state == nil {
			return l.curToken
		}
	}
}

func (l *Lexer) next() rune {
	if l.atEOF {
		return eof
	}
	r, _, err := l.input.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			l.readErr = err
		}
		l.atEOF = true
		return eof
	}
	l.buf = append(l.buf, r)
	l.linePos++
	if r == '\n' {
		l.line++
		l.prevLineLen = l.linePos
		l.linePos = 0
	}
	return r
}

// backup steps back over the rune returned by the last call to next.
// Only a single rune of pushback is supported.
func (l *Lexer) backup() {
	// If we reached eof, there is nothing to push back.
	if l.atEOF || len(l.buf) == 0 {
		return
	}
	r := l.buf[len(l.buf)-1]
	if err := l.input.UnreadRune(); err != nil {
		return
	}
	l.buf = l.buf[:len(l.buf)-1]
	l.linePos--
	if r == '\n' {
		l.line--
		l.linePos = l.prevLineLen - 1
	}
}

func (l *Lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *Lexer) accept(valid string) bool {
	if r := l.next(); r != eof && strings.ContainsRune(valid, r) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptRun(valid string) bool {
	accepted := false
	for {
		r := l.next()
		if r == eof || !strings.ContainsRune(valid, r) {
			break
		}
		accepted = true
	}
	l.backup()
	return accepted
}

func (l *Lexer) thisToken(tt TokenType) Token {
	t := Token{
		Type:  tt,
		Value: string(l.buf),
		pos:   l.startPos,
		line:  l.startLine,
	}
	l.ignore()
	return t
}

func (l *Lexer) emitToken(t Token) stateFn {
	l.curToken = t
	return nil
}

func (l *Lexer) emit(tt TokenType) stateFn {
	return l.emitToken(l.thisToken(tt))
}

// ignore drops the pending text and starts a new token at the current position.
func (l *Lexer) ignore() {
	l.buf = l.buf[:0]
	l.startLine = l.line
	l.startPos = l.linePos + 1
}

func (l *Lexer) errorf(format string, args ...any) stateFn {
	l.curToken = Token{
		Type:  TokError,
		Value: fmt.Sprintf(format, args...),
		pos:   l.startPos,
		line:  l.startLine,
	}
	l.ignore()
	return nil
}

// errorToken turns an already scanned token into a TokError.
func (l *Lexer) errorToken(t Token, format string, args ...any) stateFn {
	t.Type = TokError
	t.Value = fmt.Sprintf(format, args...)
	t.Num = 0
	return l.emitToken(t)
}
