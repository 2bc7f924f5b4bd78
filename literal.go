package mildred

import (
	"github.com/expr-lang/expr"
	"github.com/pkg/errors"
)

// literals are compiled against an empty environment, so names are rejected.
var literalEnv = map[string]any{}

// parseLiteral evaluates the right hand side of an "is" comparison. Only
// numbers, strings, booleans and nil are accepted.
func parseLiteral(src string) (any, error) {
	program, err := expr.Compile(src, expr.Env(literalEnv), expr.DisableAllBuiltins())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidLiteral, "%s: %s", src, err)
	}
	out, err := expr.Run(program, literalEnv)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidLiteral, "%s: %s", src, err)
	}
	switch out.(type) {
	case nil, bool, string, int, int64, float64:
		return out, nil
	}

	return nil, errors.Wrapf(ErrInvalidLiteral, "%s evaluates to %T", src, out)
}
