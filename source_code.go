package mildred

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// lines of context shown on each side of a failing line
const excerpt_radius = 2

// sourceCode is a template read for compilation. identity is the sha1 of its
// content.
type sourceCode struct {
	identity string
	code     string
}

func newSourceCodeFile(path string) (*sourceCode, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, storageError(err, path)
	}

	return &sourceCode{code: string(bs), identity: abstract(bs)}, nil
}

// excerpt returns the numbered lines around line (1 based), the line itself
// marked with '>'.
func (s *sourceCode) excerpt(line int) string {
	lines := splitIntoLines(s.code)
	if line < 1 || line > len(lines) {
		return ""
	}
	from := max(line-excerpt_radius, 1)
	to := min(line+excerpt_radius, len(lines))

	var sb strings.Builder
	for i := from; i <= to; i++ {
		mark := " "
		if i == line {
			mark = ">"
		}
		fmt.Fprintf(&sb, "%s%4d | %s\n", mark, i, lines[i-1])
	}

	return sb.String()
}

// failedLine is the template line an error from the generator points at.
func failedLine(err error) int {
	var unexpected *UnexpectedToken
	if errors.As(err, &unexpected) {
		return unexpected.Line
	}
	var undefined *UndefinedVariable
	if errors.As(err, &undefined) {
		return undefined.Line
	}

	return 0
}

func abstract(content []byte) string {
	sum := sha1.Sum(content)

	return hex.EncodeToString(sum[:])
}
