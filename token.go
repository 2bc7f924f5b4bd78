package mildred

import (
	"fmt"
	"regexp"
)

type TokenKind int

const (
	TokenVariable TokenKind = iota
	TokenIfStart
	TokenIfEnd
	TokenForeachStart
	TokenForeachEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenVariable:
		return "T_VARIABLE"
	case TokenIfStart:
		return "T_IF_START"
	case TokenIfEnd:
		return "T_IF_END"
	case TokenForeachStart:
		return "T_FOREACH_START"
	case TokenForeachEnd:
		return "T_FOREACH_END"
	}

	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// terminal pairs a token kind with the anchored pattern recognising it.
type terminal struct {
	kind TokenKind
	reg  *regexp.Regexp
}

// terminals are tried in this order on every line.
var terminals = [...]terminal{
	{TokenVariable, regexp.MustCompile(`^{{ ([^}]+) }}`)},
	{TokenIfStart, regexp.MustCompile(`^{% if (.*?) %}`)},
	{TokenIfEnd, regexp.MustCompile(`^{% endif %}`)},
	{TokenForeachStart, regexp.MustCompile(`^{% foreach (.*?) in (.*?) %}`)},
	{TokenForeachEnd, regexp.MustCompile(`^{% endforeach %}`)},
}

// Token is one recognised piece of markup. Captures[0] is the whole match,
// the rest are the pattern's groups. Line is zero based, Column is a byte
// offset into the line.
type Token struct {
	Kind     TokenKind
	Captures []string
	Line     int
	Column   int
}

func (t *Token) match() string {
	return t.Captures[0]
}

func (t *Token) group(i int) string {
	if i >= len(t.Captures) {
		return ""
	}

	return t.Captures[i]
}

func (t *Token) String() string {
	return fmt.Sprintf("%s %q at %d:%d", t.Kind, t.match(), t.Line+1, t.Column)
}
