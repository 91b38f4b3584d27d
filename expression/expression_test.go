// SPDX-License-Identifier: MIT

package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_ParseError(t *testing.T) {
	_, err := Compile("a +")
	require.Error(t, err)

	var exprErr *Error
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, "a +", exprErr.Expr)
	assert.True(t, exprErr.Diags.HasErrors())
}

func TestMustCompile_PanicsOnBadSource(t *testing.T) {
	assert.Panics(t, func() { MustCompile("1 ==") })
	assert.NotPanics(t, func() { MustCompile("1 == 1") })
}

func TestEvaluate_Arithmetic(t *testing.T) {
	e := MustCompile("a + b * 2")

	v, err := e.Evaluate(map[string]any{"a": 1, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, float64(7), v)
}

func TestEvaluate_Comparisons(t *testing.T) {
	tests := []struct {
		expr string
		vars map[string]any
		want any
	}{
		{"age >= 18", map[string]any{"age": 21}, true},
		{"age >= 18", map[string]any{"age": 12}, false},
		{`name == "bob"`, map[string]any{"name": "bob"}, true},
		{`level != "debug" && level != "trace"`, map[string]any{"level": "info"}, true},
		{"a || b", map[string]any{"a": false, "b": true}, true},
		{"!flag", map[string]any{"flag": false}, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, err := Evaluate(tt.expr, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestEvaluate_NestedTraversal(t *testing.T) {
	vars := map[string]any{
		"record": map[string]any{
			"level":  "warn",
			"fields": map[string]any{"component": "retry"},
			"tags":   []any{"a", "b"},
		},
	}

	v, err := Evaluate(`record.fields.component`, vars)
	require.NoError(t, err)
	assert.Equal(t, "retry", v)

	v, err = Evaluate(`record.tags[1]`, vars)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestEvaluate_UnknownVariable(t *testing.T) {
	e := MustCompile("missing > 1")

	_, err := e.Evaluate(map[string]any{"present": 1})
	require.Error(t, err)

	var exprErr *Error
	assert.ErrorAs(t, err, &exprErr)
}

func TestEvaluateDefault(t *testing.T) {
	e := MustCompile("missing + 1")

	assert.Equal(t, "fallback", e.EvaluateDefault(nil, "fallback"))

	v := e.EvaluateDefault(map[string]any{"missing": 2}, "fallback")
	assert.Equal(t, float64(3), v)
}

func TestMatch_Truthiness(t *testing.T) {
	tests := []struct {
		expr string
		vars map[string]any
		want bool
	}{
		{"1", nil, true},
		{"0", nil, false},
		{`""`, nil, false},
		{`"x"`, nil, true},
		{"[]", nil, false},
		{"[1]", nil, true},
		{"null", nil, false},
		{"x", map[string]any{"x": 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Match(tt.expr, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchDefault(t *testing.T) {
	e := MustCompile("missing == 1")

	assert.True(t, e.MatchDefault(nil, true))
	assert.False(t, e.MatchDefault(nil, false))
	assert.True(t, e.MatchDefault(map[string]any{"missing": 1}, false))
}

func TestVariables(t *testing.T) {
	e := MustCompile("b + a.field > c[0] && a.other == 1")

	assert.Equal(t, []string{"a", "b", "c"}, e.Variables())
}

func TestVariables_NoVars(t *testing.T) {
	e := MustCompile("1 + 2")
	assert.Empty(t, e.Variables())
}

func TestEvaluate_CollectionResults(t *testing.T) {
	v, err := Evaluate("[1, 2, 3]", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, v)

	v, err = Evaluate(`{ a = 1, b = "x" }`, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": "x"}, v)
}

func TestConcurrentEvaluation(t *testing.T) {
	e := MustCompile("n * 2")
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			v, err := e.Evaluate(map[string]any{"n": i})
			assert.NoError(t, err)
			assert.Equal(t, float64(i*2), v)
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
