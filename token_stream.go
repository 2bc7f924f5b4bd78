package mildred

import (
	"regexp"
)

// \r\n \n \r
var reg_enter = regexp.MustCompile(`\r\n|\n|\r`)

// Lexer turns template text into the ordered list of markup tokens.
type Lexer interface {
	Analyze(source string) []*Token
}

// NewLexer returns the default Lexer. It keeps no state between calls.
func NewLexer() Lexer {
	return lexerFunc(Analyze)
}

type lexerFunc func(string) []*Token

func (fn lexerFunc) Analyze(source string) []*Token {
	return fn(source)
}

// Analyze scans source and returns every token it contains.
//
// Each line is scanned once per terminal, in terminal order, so tokens of
// different kinds on one line come out grouped by kind rather than in
// textual order.
func Analyze(source string) []*Token {
	lx := &lexer{lines: splitIntoLines(source)}
	for lx.line = range lx.lines {
		for _, term := range terminals {
			lx.inLine(term)
		}
	}

	return lx.tokens
}

type lexer struct {
	lines  []string
	tokens []*Token
	line   int
	cursor int
}

func (lx *lexer) inLine(term terminal) {
	lx.cursor = 0
	length := len(lx.lines[lx.line])
	for lx.cursor < length {
		lx.inString(term)
	}
}

func (lx *lexer) inString(term terminal) {
	rest := lx.lines[lx.line][lx.cursor:]
	groups := term.reg.FindStringSubmatch(rest)
	if groups == nil {
		lx.cursor++
		return
	}
	lx.tokens = append(lx.tokens, &Token{
		Kind:     term.kind,
		Captures: groups,
		Line:     lx.line,
		Column:   lx.cursor,
	})
	lx.moveCursor(len(groups[0]))
}

func (lx *lexer) moveCursor(n int) {
	if n == 0 {
		n = 1
	}
	lx.cursor += n
}

func splitIntoLines(source string) []string {
	return reg_enter.Split(source, -1)
}
