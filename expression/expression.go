// SPDX-License-Identifier: MIT

// Package expression compiles and evaluates rule expressions against
// caller-supplied variables. Expressions use HCL syntax: comparisons,
// arithmetic, boolean operators, indexing and attribute traversal all work
// the way they do in HCL configuration.
package expression

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Error wraps parse or evaluation diagnostics from the underlying engine.
type Error struct {
	Expr  string
	Diags hcl.Diagnostics
}

func (e *Error) Error() string {
	return fmt.Sprintf("expression %q: %s", e.Expr, e.Diags.Error())
}

// Expression is a compiled rule, safe for concurrent evaluation.
type Expression struct {
	src  string
	expr hclsyntax.Expression
}

// Compile parses src into a reusable Expression.
func Compile(src string) (*Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, &Error{Expr: src, Diags: diags}
	}
	return &Expression{src: src, expr: expr}, nil
}

// MustCompile is Compile, panicking on a parse error. Intended for
// package-level rule constants.
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the source text of the expression.
func (e *Expression) String() string { return e.src }

// Variables returns the sorted root variable names the expression refers to.
func (e *Expression) Variables() []string {
	seen := map[string]struct{}{}
	for _, traversal := range e.expr.Variables() {
		seen[traversal.RootName()] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate computes the expression against vars and returns the result as a
// native Go value (bool, float64, string, []any, map[string]any or nil).
func (e *Expression) Evaluate(vars map[string]any) (any, error) {
	ctx, err := evalContext(vars)
	if err != nil {
		return nil, err
	}
	v, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		return nil, &Error{Expr: e.src, Diags: diags}
	}
	return fromCty(v)
}

// EvaluateDefault is Evaluate, returning def when evaluation fails.
func (e *Expression) EvaluateDefault(vars map[string]any, def any) any {
	v, err := e.Evaluate(vars)
	if err != nil {
		return def
	}
	return v
}

// Match evaluates the expression and reduces the result to a boolean:
// nil, false, zero, empty string and empty collections are false,
// everything else is true.
func (e *Expression) Match(vars map[string]any) (bool, error) {
	v, err := e.Evaluate(vars)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// MatchDefault is Match, returning def when evaluation fails.
func (e *Expression) MatchDefault(vars map[string]any, def bool) bool {
	ok, err := e.Match(vars)
	if err != nil {
		return def
	}
	return ok
}

// Evaluate compiles and evaluates src in one shot.
func Evaluate(src string, vars map[string]any) (any, error) {
	e, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(vars)
}

// Match compiles and matches src in one shot.
func Match(src string, vars map[string]any) (bool, error) {
	e, err := Compile(src)
	if err != nil {
		return false, err
	}
	return e.Match(vars)
}

func evalContext(vars map[string]any) (*hcl.EvalContext, error) {
	ctx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	for name, v := range vars {
		cv, err := toCty(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		ctx.Variables[name] = cv
	}
	return ctx, nil
}

// toCty converts a native Go value into a cty.Value, handling nested maps
// and slices of any.
func toCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(t))
		for k, el := range t {
			cv, err := toCty(el)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(t))
		for i, el := range t {
			cv, err := toCty(el)
			if err != nil {
				return cty.NilVal, fmt.Errorf("index %d: %w", i, err)
			}
			elems[i] = cv
		}
		return cty.TupleVal(elems), nil
	default:
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.NilVal, err
		}
		return gocty.ToCtyValue(v, ty)
	}
}

// fromCty converts a cty.Value back to its most natural Go counterpart.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			native, err := fromCty(el)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			key, el := it.Element()
			native, err := fromCty(el)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported result type %s", ty.FriendlyName())
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
