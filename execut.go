package mildred

import (
	"fmt"
	"io"
	"reflect"
	"sort"
)

// frame is the state of one execution of a Program.
type frame struct {
	host  *Host
	scope Params
	w     io.Writer
}

func (f *frame) lookup(path []string) (any, bool) {
	return resolve(f.scope, path)
}

func (f *frame) valid(path []string) (any, bool) {
	v, _ := f.lookup(path)

	return v, f.host.IsValid(v)
}

// Execute runs the program against vars, writing output to w. The program
// works on its own copy of vars.
func (p *Program) Execute(w io.Writer, host *Host, vars Params) error {
	f := &frame{host: host, scope: copyParams(vars), w: w}

	return p.body.execute(f)
}

func (n *textNode) execute(f *frame) error {
	_, err := io.WriteString(f.w, n.text)

	return err
}

func (n *displayNode) execute(f *frame) error {
	v, _ := f.lookup(n.path)

	return f.host.Display(f.w, joinPath(n.path), v)
}

func (n *sectionNode) execute(f *frame) error {
	for _, x := range n.list {
		if err := x.execute(f); err != nil {
			return err
		}
	}

	return nil
}

func (n *ifNode) execute(f *frame) error {
	if !n.cond.test(f) {
		return nil
	}

	return n.body.execute(f)
}

func (n *foreachNode) execute(f *frame) error {
	v, ok := f.lookup(n.list)
	if !ok {
		return nil
	}
	value, isNil := uncoverReference(reflect.ValueOf(v))
	if isNil || !value.IsValid() {
		return nil
	}

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := n.iterate(f, value.Index(i)); err != nil {
				return err
			}
		}

	case reflect.Map:
		for _, k := range sortedKeys(value) {
			if err := n.iterate(f, value.MapIndex(k)); err != nil {
				return err
			}
		}

	default:
		if f.host.debug {
			return &InvalidType{Name: joinPath(n.list), Value: v}
		}
	}

	return nil
}

func (n *foreachNode) iterate(f *frame, item reflect.Value) error {
	if item.CanInterface() {
		f.scope[n.item] = item.Interface()
	} else {
		f.scope[n.item] = nil
	}

	return n.body.execute(f)
}

func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keyString(keys[i]) < keyString(keys[j])
	})

	return keys
}

func keyString(k reflect.Value) string {
	if s, err := strValue(k); err == nil {
		return s
	}

	return fmt.Sprint(k.Interface())
}

func (g *isGuard) test(f *frame) bool {
	v, valid := f.valid(g.path)

	return valid && looseEqual(v, g.value)
}

func (g *isNotGuard) test(f *frame) bool {
	v, valid := f.valid(g.path)

	return !valid || (valid && !looseEqual(v, g.value))
}

func (g *notGuard) test(f *frame) bool {
	v, valid := f.valid(g.path)

	return !valid || (valid && !truth(v))
}

func (g *validGuard) test(f *frame) bool {
	v, valid := f.valid(g.path)

	return (valid && truth(v)) || valid
}

func (g *definedGuard) test(f *frame) bool {
	v, ok := f.lookup(g.path)

	return ok && !isNil(v)
}
