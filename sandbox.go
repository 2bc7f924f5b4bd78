package mildred

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sahilm/fuzzy"
)

const max_suggestions = 3

var (
	sandboxPool = sync.Pool{
		New: func() any {
			return &sandbox{}
		},
	}
)

// GenerateOptions carries the render context the generator validates
// variable references against.
//
// Allowed capabilities are not part of it: they are checked when the
// compiled template is rendered.
type GenerateOptions struct {
	Variables Params
	Debug     bool
}

// Generator rewrites template source into compiled text.
type Generator interface {
	Generate(source string, tokens []*Token, opts GenerateOptions) (string, error)
}

// NewGenerator returns the default Generator.
func NewGenerator() Generator {
	return generatorFunc(Generate)
}

type generatorFunc func(string, []*Token, GenerateOptions) (string, error)

func (fn generatorFunc) Generate(source string, tokens []*Token, opts GenerateOptions) (string, error) {
	return fn(source, tokens, opts)
}

// Generate replaces every token in source with its instruction markers.
// Tokens are processed in the given order and their Column fields are
// corrected in place as earlier replacements change line lengths.
func Generate(source string, tokens []*Token, opts GenerateOptions) (string, error) {
	sb := getSandbox()
	defer putSandbox(sb)

	return sb.generate(source, tokens, opts)
}

func getSandbox() *sandbox {
	return sandboxPool.Get().(*sandbox)
}

func putSandbox(sb *sandbox) {
	sb.reset()
	sandboxPool.Put(sb)
}

// binding records a foreach item name and the list it iterates. Bindings
// are never removed once recorded.
type binding struct {
	item string
	list string
}

type sandbox struct {
	tokens    []*Token
	lines     []string
	variables Params
	debug     bool
	bindings  []binding
}

func (sb *sandbox) generate(source string, tokens []*Token, opts GenerateOptions) (string, error) {
	sb.tokens = tokens
	sb.lines = splitIntoLines(source)
	sb.variables = opts.Variables
	sb.debug = opts.Debug
	sb.escapeText()

	for i, tok := range sb.tokens {
		fragment, err := sb.parseToken(i)
		if err != nil {
			return "", err
		}
		if err = sb.replace(i, tok, fragment); err != nil {
			return "", err
		}
	}

	return strings.Join(sb.lines, "\n"), nil
}

func (sb *sandbox) reset() {
	sb.tokens = nil
	sb.lines = nil
	sb.variables = nil
	sb.debug = false
	sb.bindings = sb.bindings[0:0]
}

// escapeText rewrites marker openings found in literal text, outside any
// token, into open instructions so the assembler writes them back verbatim.
func (sb *sandbox) escapeText() {
	escaped := openMarker()
	for line, text := range sb.lines {
		if !strings.Contains(text, marker_open) {
			continue
		}
		var cols []int
		for col := 0; col < len(text); {
			i := strings.Index(text[col:], marker_open)
			if i < 0 {
				break
			}
			if col += i; !sb.inToken(line, col) {
				cols = append(cols, col)
			}
			col += len(marker_open)
		}
		for i := len(cols) - 1; i >= 0; i-- {
			col := cols[i]
			text = text[:col] + escaped + text[col+len(marker_open):]
			for _, t := range sb.tokens {
				if t.Line == line && t.Column > col {
					t.Column += len(escaped) - len(marker_open)
				}
			}
		}
		sb.lines[line] = text
	}
}

func (sb *sandbox) inToken(line, col int) bool {
	for _, t := range sb.tokens {
		if t.Line == line && col >= t.Column && col < t.Column+len(t.match()) {
			return true
		}
	}

	return false
}

// replace splices fragment over the token's match and shifts the columns
// of the remaining tokens that sit after it on the same line.
func (sb *sandbox) replace(index int, tok *Token, fragment string) error {
	if tok.Line < 0 || tok.Line >= len(sb.lines) {
		return newUnexpectedToken(tok, errors.Errorf("line %d out of range", tok.Line+1))
	}
	line := sb.lines[tok.Line]
	match := tok.match()
	end := tok.Column + len(match)
	if tok.Column < 0 || end > len(line) || line[tok.Column:end] != match {
		return newUnexpectedToken(tok, errors.Errorf("match not found at column %d", tok.Column))
	}
	sb.lines[tok.Line] = line[:tok.Column] + fragment + line[end:]

	sb.shiftPositions(index+1, tok, len(fragment)-len(match))

	return nil
}

func (sb *sandbox) shiftPositions(from int, tok *Token, offset int) {
	if offset == 0 {
		return
	}
	for _, t := range sb.tokens[from:] {
		if t.Line == tok.Line && t.Column > tok.Column {
			t.Column += offset
		}
	}
}

func (sb *sandbox) parseToken(index int) (string, error) {
	tok := sb.tokens[index]
	switch tok.Kind {
	case TokenVariable:
		return sb.parseVariable(index)
	case TokenIfStart:
		return sb.parseIf(tok)
	case TokenIfEnd:
		return endIfMarker(), nil
	case TokenForeachStart:
		return sb.parseForeach(tok)
	case TokenForeachEnd:
		return endForeachMarker() + endIfMarker(), nil
	}

	return "", newUnexpectedToken(tok, errors.Errorf("unknown token kind %s", tok.Kind))
}

func (sb *sandbox) parseVariable(index int) (string, error) {
	tok := sb.tokens[index]
	name := strings.TrimSpace(tok.group(1))
	path := splitPath(name)
	if ok, err := sb.validate(index, name, path); !ok {
		return "", err
	}
	if !goodPath(path) {
		return "", newUnexpectedToken(tok, errors.WithMessagef(ErrInvalidExpression, "bad variable name %q", name))
	}

	return (&displayNode{path: path}).marker(), nil
}

// validate checks that the variable's root is a non-empty entry of the
// context. A root naming a foreach item is checked through its list. A
// failed check is an error in debug mode only.
func (sb *sandbox) validate(index int, name string, path []string) (bool, error) {
	root := sb.lookupRoot(index, path[0])
	if v, ok := sb.variables[root]; !ok || empty(v) {
		if !sb.debug {
			return false, nil
		}

		return false, &UndefinedVariable{
			Name:    name,
			Line:    sb.tokens[index].Line + 1,
			Suggest: sb.suggest(root),
		}
	}

	return true, nil
}

// lookupRoot resolves item names back to the root of the list they iterate.
// Foreach starts later on the same line but earlier in the text also count,
// since the lexer reports them after the variables of that line.
func (sb *sandbox) lookupRoot(index int, root string) string {
	bindings := append([]binding(nil), sb.bindings...)
	bindings = append(bindings, sb.pendingBindings(index)...)

	for hops := 0; hops < len(bindings); hops++ {
		list := ""
		for _, b := range bindings {
			if b.item == root {
				list = b.list
			}
		}
		if list == "" {
			break
		}
		next := splitPath(list)[0]
		if next == root {
			break
		}
		root = next
	}

	return root
}

func (sb *sandbox) pendingBindings(index int) (bindings []binding) {
	tok := sb.tokens[index]
	var starts []*Token
	for _, t := range sb.tokens[index+1:] {
		if t.Kind == TokenForeachStart && t.Line == tok.Line && t.Column < tok.Column {
			starts = append(starts, t)
		}
	}
	for i := 1; i < len(starts); i++ {
		for j := i; j > 0 && starts[j].Column < starts[j-1].Column; j-- {
			starts[j], starts[j-1] = starts[j-1], starts[j]
		}
	}
	for _, t := range starts {
		bindings = append(bindings, binding{
			item: strings.TrimSpace(t.group(1)),
			list: strings.TrimSpace(t.group(2)),
		})
	}

	return bindings
}

func (sb *sandbox) suggest(name string) []string {
	matches := fuzzy.Find(name, sb.variables.names())
	var names []string
	for i, m := range matches {
		if i == max_suggestions {
			break
		}
		names = append(names, m.Str)
	}

	return names
}

func (sb *sandbox) parseIf(tok *Token) (string, error) {
	expression := tok.group(1)

	var (
		cond guard
		name string
		err  error
	)
	switch {
	case strings.Contains(expression, " is not "):
		parts := strings.SplitN(expression, " is not ", 2)
		name = strings.TrimSpace(parts[0])
		g := &isNotGuard{path: splitPath(name), src: strings.TrimSpace(parts[1])}
		g.value, err = sb.literal(tok, g.src)
		cond = g

	case strings.Contains(expression, " is "):
		parts := strings.SplitN(expression, " is ", 2)
		name = strings.TrimSpace(parts[0])
		g := &isGuard{path: splitPath(name), src: strings.TrimSpace(parts[1])}
		g.value, err = sb.literal(tok, g.src)
		cond = g

	case strings.Contains(expression, "not "):
		name = strings.TrimSpace(strings.ReplaceAll(expression, "not ", ""))
		cond = &notGuard{path: splitPath(name)}

	default:
		name = strings.TrimSpace(expression)
		cond = &validGuard{path: splitPath(name)}
	}
	if err != nil {
		return "", err
	}
	if !goodPath(splitPath(name)) {
		return "", newUnexpectedToken(tok, errors.WithMessagef(ErrInvalidExpression, "bad variable name %q", name))
	}

	return (&ifNode{cond: cond}).marker(), nil
}

func (sb *sandbox) literal(tok *Token, src string) (any, error) {
	if strings.Contains(src, marker_close) {
		return nil, newUnexpectedToken(tok, errors.WithMessagef(ErrInvalidExpression, "literal %s", src))
	}
	value, err := parseLiteral(src)
	if err != nil {
		return nil, newUnexpectedToken(tok, err)
	}

	return value, nil
}

func (sb *sandbox) parseForeach(tok *Token) (string, error) {
	item := strings.TrimSpace(tok.group(1))
	list := strings.TrimSpace(tok.group(2))
	if !goodName(item) || !goodPath(splitPath(list)) {
		return "", newUnexpectedToken(tok, errors.WithMessagef(ErrInvalidExpression, "bad loop %q in %q", item, list))
	}
	sb.bindings = append(sb.bindings, binding{item: item, list: list})

	listPath := splitPath(list)
	guard := &ifNode{cond: &definedGuard{path: listPath}}
	loop := &foreachNode{item: item, list: listPath}

	return guard.marker() + loop.marker(), nil
}
