package mildred

import (
	"fmt"
	"html"
	"reflect"
	"sync"
)

var (
	type_map = NewTypeMap(Displayables, Scalars)
)

// Displayable is implemented by values that know their own output form.
type Displayable interface {
	Display() string
}

// Capability marks values eligible for display. Render reports whether v
// has the capability and, if so, the text to write for it.
type Capability interface {
	Name() string
	Render(v any) (string, bool)
}

type capability struct {
	name   string
	render func(any) (string, bool)
}

func (c *capability) Name() string {
	return c.name
}

func (c *capability) Render(v any) (string, bool) {
	return c.render(v)
}

// NewCapability builds a Capability from a render function.
func NewCapability(name string, render func(v any) (string, bool)) Capability {
	return &capability{name: name, render: render}
}

// Implements returns a Capability satisfied by every value implementing T.
// The value is written with fmt's default format, HTML escaped.
func Implements[T any](name string) Capability {
	return NewCapability(name, func(v any) (string, bool) {
		if _, ok := v.(T); !ok {
			return "", false
		}

		return html.EscapeString(fmt.Sprint(v)), true
	})
}

var (
	// Displayables accepts any Displayable and writes its Display form as is.
	Displayables = NewCapability("displayable", func(v any) (string, bool) {
		if d, ok := v.(Displayable); ok {
			return d.Display(), true
		}

		return "", false
	})

	// Scalars accepts strings, booleans and numbers, HTML escaped.
	Scalars = NewCapability("scalar", func(v any) (string, bool) {
		value := uncoverInterface(reflect.ValueOf(v))
		if !value.IsValid() || !isScalar(value.Kind()) {
			return "", false
		}
		str, err := strValue(value)
		if err != nil {
			return "", false
		}

		return html.EscapeString(str), true
	})
)

// TypeMap is the set of capabilities a value must match one of to be shown.
type TypeMap struct {
	store  []Capability
	locker *sync.RWMutex
}

func NewTypeMap(caps ...Capability) *TypeMap {
	tm := &TypeMap{locker: &sync.RWMutex{}}
	tm.Allow(caps...)

	return tm
}

// Allow replaces the registered capabilities. Nil entries are ignored.
func (tm *TypeMap) Allow(caps ...Capability) {
	store := make([]Capability, 0, len(caps))
	for _, c := range caps {
		if c != nil {
			store = append(store, c)
		}
	}
	tm.locker.Lock()
	defer tm.locker.Unlock()
	tm.store = store
}

func (tm *TypeMap) Capabilities() []Capability {
	tm.locker.RLock()
	defer tm.locker.RUnlock()

	return append([]Capability(nil), tm.store...)
}

func (tm *TypeMap) clone() *TypeMap {
	return NewTypeMap(tm.Capabilities()...)
}

// Render returns the output form of v under the first capability it has.
func (tm *TypeMap) Render(v any) (string, bool) {
	if isNil(v) {
		return "", false
	}
	tm.locker.RLock()
	defer tm.locker.RUnlock()
	for _, c := range tm.store {
		if str, ok := c.Render(v); ok {
			return str, true
		}
	}

	return "", false
}

// IsValid reports whether v is defined and has an allowed capability.
func (tm *TypeMap) IsValid(v any) bool {
	_, ok := tm.Render(v)

	return ok
}

// Allow replaces the capabilities of the package level engine's default set.
func Allow(caps ...Capability) {
	type_map.Allow(caps...)
}
