package mildred

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	src := &sourceCode{code: "one\ntwo\nthree\nfour\nfive\nsix"}

	assert.Equal(t, "    1 | one\n>   2 | two\n    3 | three\n    4 | four\n", src.excerpt(2))
	assert.Equal(t, "    4 | four\n    5 | five\n>   6 | six\n", src.excerpt(6))
	assert.Empty(t, src.excerpt(0))
	assert.Empty(t, src.excerpt(7))
}

func TestFailedLine(t *testing.T) {
	tok := &Token{Captures: []string{"{{ 1 }}"}, Line: 4}
	assert.Equal(t, 5, failedLine(errors.WithMessage(newUnexpectedToken(tok, ErrInvalidExpression), "compile")))
	assert.Equal(t, 3, failedLine(&UndefinedVariable{Name: "x", Line: 3}))
	assert.Equal(t, 0, failedLine(ErrWriteFailed))
}

func TestAbstract(t *testing.T) {
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", abstract([]byte("abc")))
}
