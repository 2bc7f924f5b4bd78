package mildred

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type Foo struct {
	foo string
	Bar string
}

type Bar struct {
	Foo          *Foo
	Foos         []*Foo
	Bar          map[string]int
	ComplexField map[string][]*Foo
}

func (b *Bar) GetName() string {
	return "Bar"
}

func (b *Bar) IsEmpty() (bool, error) {
	return len(b.Foos) == 0, nil
}

func (b *Bar) Broken() (string, error) {
	return "", errors.New("broken")
}

func TestIndex(t *testing.T) {
	var (
		val reflect.Value
		err error
		foo = &Foo{foo: "Foo"}
	)

	intSlice := []int{1}
	val, err = index(reflect.ValueOf(intSlice), "0")
	assert.Nil(t, err)
	assert.Equal(t, val.Interface(), 1)
	_, err = index(reflect.ValueOf(intSlice), "1")
	assert.EqualError(t, err, "out of boundary, got 1")
	_, err = index(reflect.ValueOf(intSlice), "one")
	assert.EqualError(t, err, "con't use one as array or slice index")

	objSlice := []*Foo{foo}
	val, err = index(reflect.ValueOf(objSlice), "0")
	assert.Nil(t, err)
	valObj, ok := val.Interface().(*Foo)
	assert.Equal(t, ok, true)
	assert.Equal(t, valObj, foo)

	intMap := map[string]int{"foo": 1, "bar": 2, "test": 3}
	val, err = index(reflect.ValueOf(intMap), "foo")
	assert.Nil(t, err)
	assert.Equal(t, val.Interface(), 1)
	_, err = index(reflect.ValueOf(intMap), "Bar")
	assert.ErrorContains(t, err, "index Bar don't exist in map")

	keyedMap := map[int]string{7: "seven"}
	val, err = index(reflect.ValueOf(keyedMap), "7")
	assert.Nil(t, err)
	assert.Equal(t, val.Interface(), "seven")
	_, err = index(reflect.ValueOf(keyedMap), "seven")
	assert.EqualError(t, err, "con't use seven as map key of type int")

	_, err = index(reflect.ValueOf(foo), "0")
	assert.EqualError(t, err, "can't index item of type mildred.Foo")
	_, err = index(reflect.ValueOf((*Foo)(nil)), "0")
	assert.EqualError(t, err, "index of nil value")
}

func TestProperty(t *testing.T) {
	var foo = &Foo{foo: "Foo", Bar: "bar"}
	_, err := property(reflect.ValueOf(foo), "foo")
	assert.ErrorContains(t, err, "property named foo isn't exported in type mildred.Foo")
	_, err = property(reflect.ValueOf(foo), "baz")
	assert.ErrorContains(t, err, "property named baz don't exist in type mildred.Foo")
	val, err := property(reflect.ValueOf(foo), "Bar")
	assert.Nil(t, err)
	assert.Equal(t, val.Interface(), "bar")
	val, err = property(reflect.ValueOf(foo), "bar")
	assert.Nil(t, err)
	assert.Equal(t, val.Interface(), "bar")
}

func TestCall(t *testing.T) {
	bar := &Bar{}

	fn, err := method(reflect.ValueOf(bar), "GetName")
	assert.Nil(t, err)
	val, err := call(fn)
	assert.Nil(t, err)
	assert.Equal(t, val.Interface(), "Bar")

	fn, err = method(reflect.ValueOf(bar), "Broken")
	assert.Nil(t, err)
	_, err = call(fn)
	assert.EqualError(t, err, "broken")

	_, err = call(reflect.ValueOf(func(a int) int { return a }))
	assert.EqualError(t, err, "wrong number of args: got 0 want 1")
	_, err = call(reflect.ValueOf(func() {}))
	assert.EqualError(t, err, "func return 0 values; should be 1 or 2")

	_, err = method(reflect.ValueOf(bar), "Missing")
	assert.ErrorContains(t, err, "method named Missing isn't exist")
}

func TestGet(t *testing.T) {
	bar := &Bar{
		Foo:          &Foo{Bar: "nested"},
		Foos:         []*Foo{{Bar: "first"}},
		Bar:          map[string]int{"n": 3},
		ComplexField: map[string][]*Foo{"k": {{Bar: "deep"}}},
	}

	cases := []struct {
		keys []string
		want any
	}{
		{[]string{"Foo", "Bar"}, "nested"},
		{[]string{"foos", "0", "bar"}, "first"},
		{[]string{"Bar", "n"}, 3},
		{[]string{"ComplexField", "k", "0", "Bar"}, "deep"},
		{[]string{"name"}, "Bar"},
		{[]string{"empty"}, false},
	}
	for _, c := range cases {
		val, err := get(bar, c.keys...)
		if assert.Nil(t, err, c.keys) {
			assert.Equal(t, c.want, val.Interface(), c.keys)
		}
	}

	_, err := get(bar, "Foos", "3")
	assert.ErrorContains(t, err, "can't resolve 3")
}

func TestResolve(t *testing.T) {
	p := Params{"user": map[string]any{"name": "A"}, "nothing": nil}

	v, ok := resolve(p, []string{"user", "name"})
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	v, ok = resolve(p, []string{"nothing"})
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = resolve(p, []string{"user", "age"})
	assert.False(t, ok)
	_, ok = resolve(p, []string{"missing"})
	assert.False(t, ok)
}

func TestTruth(t *testing.T) {
	for _, v := range []any{nil, false, 0, uint8(0), 0.0, "", "0", []int{}, map[string]int{}, (*Foo)(nil)} {
		assert.False(t, truth(v), "%#v", v)
		assert.True(t, empty(v), "%#v", v)
	}
	for _, v := range []any{true, -1, 0.1, "a", "false", []int{0}, &Foo{}, Foo{}} {
		assert.True(t, truth(v), "%#v", v)
	}
}

func TestLooseEqual(t *testing.T) {
	assert.True(t, looseEqual(5, 5))
	assert.True(t, looseEqual(int64(5), 5.0))
	assert.True(t, looseEqual("5", 5))
	assert.True(t, looseEqual("5.0", "5"))
	assert.True(t, looseEqual("abc", "abc"))
	assert.True(t, looseEqual(0, false))
	assert.True(t, looseEqual("", nil))
	assert.False(t, looseEqual(3, 5))
	assert.False(t, looseEqual("abc", 0))
	assert.False(t, looseEqual("abc", "abd"))
	assert.False(t, looseEqual(Foo{}, "x"))
}

func TestGoodPath(t *testing.T) {
	assert.True(t, goodPath(splitPath("a")))
	assert.True(t, goodPath(splitPath("a_1.b.0")))
	assert.True(t, goodPath(splitPath("_a")))
	assert.False(t, goodPath(splitPath("0.a")))
	assert.False(t, goodPath(splitPath("a.")))
	assert.False(t, goodPath(splitPath("a b")))
	assert.False(t, goodPath(nil))
}
