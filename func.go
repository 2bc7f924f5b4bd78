package mildred

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

var (
	zeroValue = reflect.Value{}
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

type rawer interface {
	Raw() string
}

type truther interface {
	Truth() bool
}

// get walks keys down from p. Each key is tried as a map key or slice
// index, then as a struct field, then as an accessor method.
func get(p any, keys ...string) (value reflect.Value, err error) {
	value = reflect.ValueOf(p)
	for _, key := range keys {
		if value, err = step(value, key); err != nil {
			return zeroValue, err
		}
	}

	return value, nil
}

func step(value reflect.Value, key string) (reflect.Value, error) {
	if v, err := index(value, key); err == nil {
		return v, nil
	}
	if v, err := property(value, key); err == nil {
		return v, nil
	}
	for _, fnName := range possibleFnNames(key) {
		if fn, err := method(value, fnName); err == nil {
			if v, err := call(fn); err == nil {
				return v, nil
			}
		}
	}

	return zeroValue, errors.Errorf("can't resolve %s on type %s", key, typeName(value))
}

func index(value reflect.Value, key string) (reflect.Value, error) {
	value, isNil := uncoverReference(value)
	if !value.IsValid() || isNil {
		return zeroValue, errors.New("index of nil value")
	}

	switch value.Kind() {
	case reflect.Array, reflect.Slice:
		i, err := strconv.Atoi(key)
		if err != nil {
			return zeroValue, errors.Errorf("con't use %s as array or slice index", key)
		}
		if i < 0 || i >= value.Len() {
			return zeroValue, errors.Errorf("out of boundary, got %d", i)
		}

		return value.Index(i), nil

	case reflect.Map:
		k, err := mapKey(key, value.Type().Key())
		if err != nil {
			return zeroValue, err
		}
		item := value.MapIndex(k)
		if !item.IsValid() {
			return zeroValue, errors.Errorf("index %s don't exist in map", key)
		}

		return item, nil

	default:
		return zeroValue, errors.Errorf("can't index item of type %s", value.Type())
	}
}

func mapKey(key string, typ reflect.Type) (reflect.Value, error) {
	switch kind := typ.Kind(); {
	case kind == reflect.String:
		return reflect.ValueOf(key).Convert(typ), nil
	case isInt(kind):
		i, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return zeroValue, errors.Errorf("con't use %s as map key of type %s", key, typ)
		}
		return reflect.ValueOf(i).Convert(typ), nil
	case isUint(kind):
		u, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return zeroValue, errors.Errorf("con't use %s as map key of type %s", key, typ)
		}
		return reflect.ValueOf(u).Convert(typ), nil
	case kind == reflect.Interface && reflect.TypeOf(key).Implements(typ):
		return reflect.ValueOf(key), nil
	}

	return zeroValue, errors.Errorf("con't use %s as map key of type %s", key, typ)
}

func property(value reflect.Value, name string) (reflect.Value, error) {
	if !goodName(name) {
		return zeroValue, errors.Errorf("%s is not a property's name", name)
	}

	value, isNil := uncoverReference(value)
	if !value.IsValid() || isNil {
		return zeroValue, errors.Errorf("can't get property from nil value")
	}
	if value.Kind() != reflect.Struct {
		return zeroValue, errors.Errorf("can't get property from non-struct type %s", value.Type())
	}

	for _, fieldName := range []string{name, ucFirst(name)} {
		field, exist := value.Type().FieldByName(fieldName)
		if !exist {
			continue
		}
		if !field.IsExported() {
			return zeroValue, errors.Errorf("property named %s isn't exported in type %s", fieldName, value.Type())
		}

		return value.FieldByIndex(field.Index), nil
	}

	return zeroValue, errors.Errorf("property named %s don't exist in type %s", name, value.Type())
}

func method(value reflect.Value, name string) (reflect.Value, error) {
	if !goodName(name) {
		return zeroValue, errors.Errorf("%s is not a method's name", name)
	}

	value = uncoverInterface(value)
	if !value.IsValid() {
		return zeroValue, errors.Errorf("can't get method from nil value")
	}
	if value.Kind() == reflect.Pointer && value.IsNil() {
		return zeroValue, errors.Errorf("can't get method from nil value")
	}

	m, exist := value.Type().MethodByName(name)
	if !exist {
		return zeroValue, errors.Errorf("method named %s isn't exist in type %s", name, value.Type())
	}
	if !m.IsExported() {
		return zeroValue, errors.Errorf("method named %s isn't exported in type %s", name, value.Type())
	}

	return value.MethodByName(name), nil
}

// call invokes an accessor method taking no arguments.
func call(fn reflect.Value) (reflect.Value, error) {
	if !fn.IsValid() {
		return zeroValue, errors.New("call on nil")
	}
	typ := fn.Type()
	if typ.Kind() != reflect.Func {
		return zeroValue, errors.Errorf("call on non-func type %s", typ)
	}
	if !goodFunc(typ) {
		return zeroValue, errors.Errorf("func return %d values; should be 1 or 2", typ.NumOut())
	}
	if typ.NumIn() != 0 {
		return zeroValue, errors.Errorf("wrong number of args: got 0 want %d", typ.NumIn())
	}

	return invoke(fn, nil)
}

func invoke(fn reflect.Value, argv []reflect.Value) (reflect.Value, error) {
	out := fn.Call(argv)

	if len(out) == 2 && !out[1].IsNil() {
		return out[0], out[1].Interface().(error)
	}

	return out[0], nil
}

// resolve looks path up in p. The boolean is false when any step is missing.
func resolve(p Params, path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	root, ok := p[path[0]]
	if !ok {
		return nil, false
	}
	if len(path) == 1 {
		return root, true
	}
	value, err := get(root, path[1:]...)
	if err != nil || !value.IsValid() || !value.CanInterface() {
		return nil, false
	}

	return value.Interface(), true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return value.IsNil()
	}

	return false
}

// truth is the loose boolean value of v: nil, false, zero numbers, "", "0"
// and empty collections are false, every other value is true.
func truth(v any) bool {
	if t, ok := v.(truther); ok {
		return t.Truth()
	}
	value, isNil := uncoverReference(reflect.ValueOf(v))
	if !value.IsValid() || isNil {
		return false
	}
	switch kind := value.Kind(); {
	case kind == reflect.Bool:
		return value.Bool()
	case isInt(kind):
		return value.Int() != 0
	case isUint(kind):
		return value.Uint() != 0
	case isFloat(kind):
		return value.Float() != 0
	case kind == reflect.String:
		s := value.String()
		return s != "" && s != "0"
	case kind == reflect.Map, kind == reflect.Slice, kind == reflect.Array:
		return value.Len() != 0
	}

	return true
}

func empty(v any) bool {
	return !truth(v)
}

// looseEqual compares a context value against a literal. Numeric looking
// operands compare as numbers, strings by their raw text and booleans by
// truth.
func looseEqual(v any, lit any) bool {
	if lit == nil {
		return !truth(v)
	}
	switch l := lit.(type) {
	case bool:
		return truth(v) == l
	case string:
		s, ok := scalarString(v)
		if !ok {
			return false
		}
		if a, ok := toNumber(s); ok {
			if b, ok := toNumber(l); ok {
				return a == b
			}
		}
		return s == l
	}

	b, ok := toNumber(lit)
	if !ok {
		return false
	}
	a, ok := toNumber(v)
	if !ok {
		if s, sok := scalarString(v); sok {
			a, ok = toNumber(s)
		}
	}

	return ok && a == b
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case rawer:
		return s.Raw(), true
	case Displayable:
		return s.Display(), true
	}
	value := uncoverInterface(reflect.ValueOf(v))
	if !value.IsValid() || !isScalar(value.Kind()) {
		return "", false
	}
	str, err := strValue(value)

	return str, err == nil
}

func toNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	value := uncoverInterface(reflect.ValueOf(v))
	if !value.IsValid() {
		return 0, false
	}
	switch kind := value.Kind(); {
	case isInt(kind):
		return float64(value.Int()), true
	case isUint(kind):
		return float64(value.Uint()), true
	case isFloat(kind):
		return value.Float(), true
	}

	return 0, false
}

func strValue(v reflect.Value) (string, error) {
	v = uncoverInterface(v)
	kind := v.Kind()
	if isInt(kind) {
		return strconv.FormatInt(v.Int(), 10), nil
	}
	if isUint(kind) {
		return strconv.FormatUint(v.Uint(), 10), nil
	}
	if isFloat(kind) {
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	}
	if kind == reflect.String {
		return v.String(), nil
	}
	if kind == reflect.Bool {
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	}

	return "", errors.Errorf("can't convert type %s to string", typeName(v))
}

func typeName(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}

	return v.Type().String()
}

func isScalar(kind reflect.Kind) bool {
	return kind == reflect.String || kind == reflect.Bool || isNumber(kind)
}

func isNumber(kind reflect.Kind) bool {
	return isInteger(kind) || isFloat(kind)
}

func isInteger(kind reflect.Kind) bool {
	return isInt(kind) || isUint(kind)
}

func isInt(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(kind reflect.Kind) bool {
	switch kind {
	case reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func uncoverReference(value reflect.Value) (reflect.Value, bool) {
	for ; value.Kind() == reflect.Interface || value.Kind() == reflect.Pointer; value = value.Elem() {
		if value.IsNil() {
			return zeroValue, true
		}
	}

	return value, false
}

func uncoverInterface(value reflect.Value) reflect.Value {
	if !value.IsValid() {
		return zeroValue
	}
	if value.Kind() != reflect.Interface {
		return value
	}

	return value.Elem()
}

func goodName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_':
		case i == 0 && !unicode.IsLetter(r):
			return false
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			return false
		}
	}

	return true
}

// goodPath reports whether a dotted path has a valid root name and
// segments that are names or indexes.
func goodPath(path []string) bool {
	if len(path) == 0 || !goodName(path[0]) {
		return false
	}
	for _, seg := range path[1:] {
		if goodName(seg) {
			continue
		}
		if _, err := strconv.Atoi(seg); err != nil {
			return false
		}
	}

	return true
}

func goodFunc(typ reflect.Type) bool {
	switch {
	case typ.NumOut() == 1:
		return true
	case typ.NumOut() == 2 && typ.Out(1) == errorType:
		return true
	}

	return false
}

func possibleFnNames(word string) []string {
	word = ucFirst(word)
	return []string{
		word,
		fmt.Sprintf("Get%s", word),
		fmt.Sprintf("Has%s", word),
		fmt.Sprintf("Is%s", word),
	}
}

func ucFirst(word string) string {
	if word == "" {
		return word
	}
	c := word[0:1]

	return strings.ToUpper(c) + word[1:]
}
