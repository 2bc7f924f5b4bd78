package mildred

import (
	"strings"
)

const (
	marker_open  = "<?mld "
	marker_close = " ?>"

	op_display    = "display"
	op_if         = "if"
	op_endif      = "endif"
	op_foreach    = "foreach"
	op_endforeach = "endforeach"
	op_open       = "open"

	guard_is      = "is"
	guard_isnot   = "isnot"
	guard_not     = "not"
	guard_valid   = "valid"
	guard_defined = "defined"
)

type node interface {
	execute(f *frame) error
}

type appendAble interface {
	append(node)
}

// guard is the condition of an ifNode.
type guard interface {
	test(f *frame) bool
	literal() string
}

// ----------------------------------------------------------------------------
// Nodes

type (
	textNode struct {
		text string
	}

	// A displayNode writes the value at path.
	displayNode struct {
		path []string // not empty
	}

	// A sectionNode is a list of nodes run in order.
	sectionNode struct {
		list []node
	}

	ifNode struct {
		cond guard        // not nil
		body *sectionNode // not nil
	}

	// A foreachNode binds item to each element of list in turn.
	foreachNode struct {
		item string
		list []string
		body *sectionNode // not nil
	}
)

// ----------------------------------------------------------------------------
// Guards

type (
	// isGuard: isValid(A) && A == B
	isGuard struct {
		path  []string
		src   string // literal as written
		value any
	}

	// isNotGuard: !isValid(A) || (isValid(A) && A != B)
	isNotGuard struct {
		path  []string
		src   string
		value any
	}

	// notGuard: !isValid(A) || (isValid(A) && A == false)
	notGuard struct {
		path []string
	}

	// validGuard: (isValid(A) && A == true) || isValid(A)
	validGuard struct {
		path []string
	}

	// definedGuard passes when A resolves to a non-nil value.
	definedGuard struct {
		path []string
	}
)

// Program is an assembled compiled template.
type Program struct {
	body *sectionNode
}

func newProgram() *Program {
	return &Program{body: &sectionNode{}}
}

func (p *Program) append(x node) {
	p.body.append(x)
}

func (s *sectionNode) append(x node) {
	s.list = append(s.list, x)
}

func (s *ifNode) append(x node) {
	if s.body == nil {
		s.body = &sectionNode{}
	}
	s.body.list = append(s.body.list, x)
}

func (s *foreachNode) append(x node) {
	if s.body == nil {
		s.body = &sectionNode{}
	}
	s.body.list = append(s.body.list, x)
}

// ----------------------------------------------------------------------------
// Markers

func marker(parts ...string) string {
	return marker_open + strings.Join(parts, " ") + marker_close
}

func (n *displayNode) marker() string {
	return marker(op_display, joinPath(n.path))
}

func (n *ifNode) marker() string {
	return marker(op_if, n.cond.literal())
}

func (n *foreachNode) marker() string {
	return marker(op_foreach, n.item, joinPath(n.list))
}

func endIfMarker() string {
	return marker(op_endif)
}

func endForeachMarker() string {
	return marker(op_endforeach)
}

// openMarker stands for a marker opening that is part of the template text.
func openMarker() string {
	return marker(op_open)
}

func (g *isGuard) literal() string {
	return guard_is + " " + joinPath(g.path) + " " + g.src
}

func (g *isNotGuard) literal() string {
	return guard_isnot + " " + joinPath(g.path) + " " + g.src
}

func (g *notGuard) literal() string {
	return guard_not + " " + joinPath(g.path)
}

func (g *validGuard) literal() string {
	return guard_valid + " " + joinPath(g.path)
}

func (g *definedGuard) literal() string {
	return guard_defined + " " + joinPath(g.path)
}

func splitPath(name string) []string {
	return strings.Split(name, ".")
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}
