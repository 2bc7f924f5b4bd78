package mildred

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, source string, vars Params, debug bool) (string, error) {
	t.Helper()

	return Generate(source, Analyze(source), GenerateOptions{Variables: vars, Debug: debug})
}

func TestGeneratePlainText(t *testing.T) {
	source := "line one\r\nline two\n"
	out, err := generate(t, source, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", out)
}

func TestGenerateVariable(t *testing.T) {
	out, err := generate(t, "Hi {{ user.name }}!", Params{"user": map[string]any{"name": "A"}}, false)
	require.NoError(t, err)
	assert.Equal(t, "Hi <?mld display user.name ?>!", out)

	out, err = generate(t, "Hi {{ nobody }}!", Params{}, false)
	require.NoError(t, err)
	assert.Equal(t, "Hi !", out)

	out, err = generate(t, "{{ zero }}", Params{"zero": 0}, false)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestGenerateUndefinedInDebug(t *testing.T) {
	_, err := generate(t, "a\n{{ usr }}", Params{"user": 1, "users": 2, "total": 3}, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndefinedVariable))

	var undefined *UndefinedVariable
	require.True(t, errors.As(err, &undefined))
	assert.Equal(t, "usr", undefined.Name)
	assert.Equal(t, 2, undefined.Line)
	assert.Contains(t, undefined.Suggest, "user")
	assert.NotContains(t, undefined.Suggest, "total")
}

func TestGenerateShift(t *testing.T) {
	source := "{% if a %}<b>{{ a }}</b>{% endif %} {{ b }}"
	out, err := generate(t, source, Params{"a": 1, "b": 2}, false)
	require.NoError(t, err)
	want := "<?mld if valid a ?><b><?mld display a ?></b><?mld endif ?> <?mld display b ?>"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("compiled text mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateConditions(t *testing.T) {
	cases := map[string]string{
		`{% if x is 5 %}`:       `<?mld if is x 5 ?>`,
		`{% if x is not "a" %}`: `<?mld if isnot x "a" ?>`,
		`{% if not x.ok %}`:     `<?mld if not x.ok ?>`,
		`{% if x %}{% endif %}`: `<?mld if valid x ?><?mld endif ?>`,
		`{% if x is nil %}`:     `<?mld if is x nil ?>`,
		`{% if x is 1.5 %}`:     `<?mld if is x 1.5 ?>`,
		`{% if x is true %}yes`: `<?mld if is x true ?>yes`,
	}
	for source, want := range cases {
		out, err := generate(t, source, nil, false)
		require.NoError(t, err, source)
		assert.Equal(t, want, out, source)
	}
}

func TestGenerateInvalidLiteral(t *testing.T) {
	for _, source := range []string{
		`{% if x is y %}`,
		`{% if x is [1, 2] %}`,
		`{% if x is "a ?>" %}`,
		`{% if x is 1 + %}`,
	} {
		_, err := generate(t, source, nil, false)
		require.Error(t, err, source)

		var unexpected *UnexpectedToken
		assert.True(t, errors.As(err, &unexpected), source)
	}

	_, err := generate(t, `{% if x is y %}`, nil, false)
	assert.True(t, errors.Is(err, ErrInvalidLiteral))
}

func TestGenerateBadNames(t *testing.T) {
	for _, source := range []string{"{{ 1a }}", "{{ user-name }}", "{{ a..b }}"} {
		out, err := generate(t, "a"+source+"b", nil, false)
		require.NoError(t, err, source)
		assert.Equal(t, "ab", out, source)

		_, err = generate(t, source, nil, true)
		assert.True(t, errors.Is(err, ErrUndefinedVariable), source)
	}

	for _, source := range []string{"{{ a..b }}", "{{ a.b-c }}"} {
		_, err := generate(t, source, Params{"a": 1}, false)
		assert.True(t, errors.Is(err, ErrInvalidExpression), source)
	}

	for _, source := range []string{"{% if a-b %}", "{% foreach 1 in list %}"} {
		_, err := generate(t, source, nil, false)
		assert.True(t, errors.Is(err, ErrInvalidExpression), source)
	}
}

func TestGenerateEscapesMarkers(t *testing.T) {
	source := "docs: <?mld jump ?> {{ x }} <?mld "
	out, err := generate(t, source, Params{"x": 1}, false)
	require.NoError(t, err)
	assert.Equal(t, "docs: <?mld open ?>jump ?> <?mld display x ?> <?mld open ?>", out)

	prog, err := Assemble(out)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, prog.Execute(&buf, NewHost(nil, false), Params{"x": 1}))
	assert.Equal(t, "docs: <?mld jump ?> 1 <?mld ", buf.String())
}

func TestGenerateForeach(t *testing.T) {
	vars := Params{"users": []map[string]any{{"name": "A"}}}

	out, err := generate(t, "{% foreach u in users %}{{ u.name }}{% endforeach %}", vars, true)
	require.NoError(t, err)
	assert.Equal(t,
		"<?mld if defined users ?><?mld foreach u users ?><?mld display u.name ?><?mld endforeach ?><?mld endif ?>",
		out)

	out, err = generate(t, "{% foreach u in users %}\n{{ u.name }}\n{% endforeach %}", vars, true)
	require.NoError(t, err)
	assert.Equal(t,
		"<?mld if defined users ?><?mld foreach u users ?>\n<?mld display u.name ?>\n<?mld endforeach ?><?mld endif ?>",
		out)
}

func TestGenerateNestedForeach(t *testing.T) {
	vars := Params{"groups": []any{map[string]any{"members": []string{"a"}}}}
	source := "{% foreach g in groups %}\n{% foreach m in g.members %}\n{{ m }}\n{% endforeach %}\n{% endforeach %}"
	out, err := generate(t, source, vars, true)
	require.NoError(t, err)
	assert.Contains(t, out, "<?mld foreach m g.members ?>")
	assert.Contains(t, out, "<?mld display m ?>")
}

func TestGenerateBindingsOutliveLoop(t *testing.T) {
	vars := Params{"users": []int{1}}
	source := "{% foreach u in users %}\n{% endforeach %}\n{{ u }}"
	out, err := generate(t, source, vars, true)
	require.NoError(t, err)
	assert.Contains(t, out, "<?mld display u ?>")
}

func TestGenerateIdempotent(t *testing.T) {
	source := "{% if a %}{{ a }}{% endif %}\n{% foreach i in list %}{{ i }}{% endforeach %}"
	vars := Params{"a": "x", "list": []int{1, 2}}

	first, err := generate(t, source, vars, false)
	require.NoError(t, err)
	second, err := generate(t, source, vars, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateMismatchedPosition(t *testing.T) {
	tokens := Analyze("{{ a }}")
	tokens[0].Column = 3
	_, err := Generate("{{ a }}", tokens, GenerateOptions{Variables: Params{"a": 1}})

	var unexpected *UnexpectedToken
	require.True(t, errors.As(err, &unexpected))
	assert.Equal(t, 1, unexpected.Line)
}

func TestGenerateLeavesTypesToRender(t *testing.T) {
	source := "{{ p }}{{ s }}"
	out, err := generate(t, source, Params{"p": []int{1}, "s": "x"}, true)
	require.NoError(t, err)
	assert.Equal(t, "<?mld display p ?><?mld display s ?>", out)
}
