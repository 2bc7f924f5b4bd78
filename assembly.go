package mildred

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// <?mld ... ?>
var reg_marker = regexp.MustCompile(`<\?mld (.*?) \?>`)

// Assemble parses compiled text into a Program. Text between markers is
// kept verbatim.
func Assemble(compiled string) (*Program, error) {
	prog := newProgram()
	asm := &assembler{cursor: prog}
	cursor, line := 0, 1
	for _, pos := range reg_marker.FindAllStringSubmatchIndex(compiled, -1) {
		if pos[0] > cursor {
			asm.cursor.append(&textNode{text: compiled[cursor:pos[0]]})
			line += strings.Count(compiled[cursor:pos[0]], "\n")
		}
		if err := asm.instruction(compiled[pos[2]:pos[3]], line); err != nil {
			return nil, err
		}
		cursor = pos[1]
	}
	if cursor < len(compiled) {
		asm.cursor.append(&textNode{text: compiled[cursor:]})
	}
	if len(asm.stack) > 0 {
		return nil, errors.WithMessagef(ErrCorruptArtifact, "%d unclosed block(s)", len(asm.stack))
	}

	return prog, nil
}

type assembler struct {
	cursor appendAble
	stack  []appendAble
}

func (asm *assembler) instruction(src string, line int) error {
	op, rest, _ := strings.Cut(src, " ")
	switch op {
	case op_open:
		if rest != "" {
			return corrupt(line, src)
		}
		asm.cursor.append(&textNode{text: marker_open})

	case op_display:
		path := splitPath(rest)
		if !goodPath(path) {
			return corrupt(line, src)
		}
		asm.cursor.append(&displayNode{path: path})

	case op_if:
		cond, err := parseGuard(rest)
		if err != nil {
			return errors.WithMessagef(err, "line %d", line)
		}
		node := &ifNode{cond: cond, body: &sectionNode{}}
		asm.cursor.append(node)
		asm.pushStack(node)

	case op_endif:
		if _, ok := asm.cursor.(*ifNode); !ok {
			return corrupt(line, src)
		}
		asm.popStack()

	case op_foreach:
		fields := strings.Fields(rest)
		if len(fields) != 2 || !goodName(fields[0]) || !goodPath(splitPath(fields[1])) {
			return corrupt(line, src)
		}
		node := &foreachNode{item: fields[0], list: splitPath(fields[1]), body: &sectionNode{}}
		asm.cursor.append(node)
		asm.pushStack(node)

	case op_endforeach:
		if _, ok := asm.cursor.(*foreachNode); !ok {
			return corrupt(line, src)
		}
		asm.popStack()

	default:
		return corrupt(line, src)
	}

	return nil
}

func (asm *assembler) pushStack(node appendAble) {
	asm.stack = append(asm.stack, asm.cursor)
	asm.cursor = node
}

func (asm *assembler) popStack() {
	asm.cursor = asm.stack[len(asm.stack)-1]
	asm.stack = asm.stack[:len(asm.stack)-1]
}

func parseGuard(src string) (guard, error) {
	kind, rest, _ := strings.Cut(src, " ")
	switch kind {
	case guard_is, guard_isnot:
		name, lit, ok := strings.Cut(rest, " ")
		if !ok || !goodPath(splitPath(name)) {
			return nil, errors.WithMessagef(ErrCorruptArtifact, "bad guard %q", src)
		}
		value, err := parseLiteral(lit)
		if err != nil {
			return nil, errors.WithMessagef(ErrCorruptArtifact, "%s", err)
		}
		if kind == guard_is {
			return &isGuard{path: splitPath(name), src: lit, value: value}, nil
		}
		return &isNotGuard{path: splitPath(name), src: lit, value: value}, nil

	case guard_not, guard_valid, guard_defined:
		path := splitPath(rest)
		if !goodPath(path) {
			return nil, errors.WithMessagef(ErrCorruptArtifact, "bad guard %q", src)
		}
		switch kind {
		case guard_not:
			return &notGuard{path: path}, nil
		case guard_valid:
			return &validGuard{path: path}, nil
		}
		return &definedGuard{path: path}, nil
	}

	return nil, errors.WithMessagef(ErrCorruptArtifact, "unknown guard %q", src)
}

func corrupt(line int, src string) error {
	return errors.WithMessagef(ErrCorruptArtifact, "unexpected instruction %q in line %d", src, line)
}
