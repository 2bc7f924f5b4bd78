package mildred

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrMissingTemplate     = errors.New("template does not exist")
	ErrReadDenied          = errors.New("permission denied reading template")
	ErrWriteDenied         = errors.New("permission denied writing compiled template")
	ErrWriteFailed         = errors.New("could not write compiled template")
	ErrUndefinedVariable   = errors.New("undefined variable")
	ErrInvalidType         = errors.New("not an allowed data type")
	ErrEngineMisconfigured = errors.New("engine misconfigured")
	ErrInvalidLiteral      = errors.New("invalid literal")
	ErrInvalidExpression   = errors.New("invalid expression")
	ErrCorruptArtifact     = errors.New("corrupt compiled template")
)

// UndefinedVariable reports a markup reference to a variable missing from
// the context.
type UndefinedVariable struct {
	Name    string
	Line    int
	Suggest []string
}

func (e *UndefinedVariable) Error() string {
	msg := fmt.Sprintf("this is not in the list of template variables: %s", e.Name)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s in line %d", msg, e.Line)
	}
	if len(e.Suggest) > 0 {
		msg = fmt.Sprintf("%s (did you mean %s?)", msg, strings.Join(e.Suggest, ", "))
	}

	return msg
}

func (e *UndefinedVariable) Unwrap() error {
	return ErrUndefinedVariable
}

// InvalidType reports a value that satisfies none of the allowed capabilities.
type InvalidType struct {
	Name  string
	Value any
}

func (e *InvalidType) Error() string {
	return fmt.Sprintf("%s has type %T, which is not an allowed data type", e.Name, e.Value)
}

func (e *InvalidType) Unwrap() error {
	return ErrInvalidType
}

// UnexpectedToken reports markup the generator could not translate.
type UnexpectedToken struct {
	Line  int
	token string
	err   error
}

func newUnexpectedToken(tok *Token, err error) error {
	return &UnexpectedToken{Line: tok.Line + 1, token: tok.match(), err: err}
}

func (e *UnexpectedToken) Error() string {
	if e.err != nil {
		return fmt.Sprintf("Unexpected token \"%s\" in line %d: %s", e.token, e.Line, e.err)
	}

	return fmt.Sprintf("Unexpected token \"%s\" in line %d", e.token, e.Line)
}

func (e *UnexpectedToken) Unwrap() error {
	return e.err
}
