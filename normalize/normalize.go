// SPDX-License-Identifier: MIT

// Package normalize converts arbitrary Go values into JSON-friendly
// structures (maps, slices, scalars) for structured logging and debug
// output.
//
// Values that have no natural JSON shape keep their type information behind
// marker keys: binary data becomes {"$type": ..., "$hex": ...}, functions
// become {"$callable": ...}, opaque values become {"$type": ..., "$value":
// ...}. Depth-limited traversal inserts a {"$depth": ...} marker and circular
// reference detection replaces revisited containers with a JSONPath {"$ref":
// ...}.
package normalize

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	depthMarker = "<Max depth reached>"
	timeLayout  = "2006-01-02T15:04:05.000000"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Option adjusts how Normalize walks a value.
type Option func(*normalizer)

// MaxDepth limits the recursion depth. Zero or negative means unlimited.
func MaxDepth(n int) Option {
	return func(c *normalizer) { c.maxDepth = n }
}

// CheckCircular enables cycle detection. Revisited containers are replaced
// with a {"$ref": "<jsonpath>"} marker pointing at their first occurrence.
func CheckCircular() Option {
	return func(c *normalizer) { c.circular = true }
}

// Normalize converts value into a tree of maps, slices and scalars that any
// JSON encoder can serialize.
func Normalize(value any, opts ...Option) any {
	n := &normalizer{memo: map[uintptr]int{}}
	for _, opt := range opts {
		opt(n)
	}
	v := reflect.ValueOf(value)
	if id, ok := identity(v); ok {
		n.memo[id] = 0
	}
	return n.dispatch(v)
}

// ToJSON normalizes value and serializes the result.
func ToJSON(value any, opts ...Option) (string, error) {
	b, err := json.Marshal(Normalize(value, opts...))
	if err != nil {
		return "", fmt.Errorf("normalize: encode: %w", err)
	}
	return string(b), nil
}

type normalizer struct {
	maxDepth int
	circular bool
	path     []any
	memo     map[uintptr]int
}

// identity returns a pointer identity for reference kinds, which are the
// only values that can participate in a cycle.
func identity(v reflect.Value) (uintptr, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if !v.IsNil() {
			return v.Pointer(), true
		}
	}
	return 0, false
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (n *normalizer) recurse(v reflect.Value, key any) any {
	if n.maxDepth > 0 && len(n.path) >= n.maxDepth {
		return map[string]any{"$depth": depthMarker}
	}
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	if isScalar(v.Kind()) {
		return v.Interface()
	}
	id, tracked := identity(v)
	if n.circular && tracked {
		if depth, seen := n.memo[id]; seen {
			return map[string]any{"$ref": renderPath(n.path[:depth])}
		}
	}
	n.path = append(n.path, key)
	if n.circular && tracked {
		n.memo[id] = len(n.path)
	}
	out := n.dispatch(v)
	if n.circular && tracked {
		delete(n.memo, id)
	}
	n.path = n.path[:len(n.path)-1]
	return out
}

func (n *normalizer) dispatch(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	t := v.Type()

	if t == timeType {
		return v.Interface().(time.Time).Format(timeLayout)
	}
	if t.Implements(errorType) && v.CanInterface() {
		if v.Kind() != reflect.Pointer || !v.IsNil() {
			return map[string]any{
				"$type":   t.String(),
				"message": v.Interface().(error).Error(),
			}
		}
	}

	switch v.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return v.Interface()

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"$type": typeName(t), "$hex": hex.EncodeToString(v.Bytes())}
		}
		return n.normalizeList(v)

	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(buf), v)
			return map[string]any{"$type": typeName(t), "$hex": hex.EncodeToString(buf)}
		}
		return n.normalizeList(v)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		return n.normalizeMap(v)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return n.dispatch(v.Elem())

	case reflect.Func:
		if v.IsNil() {
			return nil
		}
		return map[string]any{"$callable": fmt.Sprintf("<callable %s>", funcName(v))}

	case reflect.Chan:
		if v.IsNil() {
			return nil
		}
		return map[string]any{"$chan": fmt.Sprintf("<chan %s>", typeName(t.Elem()))}

	case reflect.Struct:
		return n.normalizeStruct(v)

	default:
		return map[string]any{"$type": typeName(t), "$value": fmt.Sprint(v)}
	}
}

func (n *normalizer) normalizeList(v reflect.Value) []any {
	out := make([]any, v.Len())
	for i := range v.Len() {
		out[i] = n.recurse(v.Index(i), i)
	}
	return out
}

func (n *normalizer) normalizeMap(v reflect.Value) map[string]any {
	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		entries = append(entries, entry{normalizeKey(iter.Key()), iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[e.key] = n.recurse(e.value, e.key)
	}
	return out
}

func (n *normalizer) normalizeStruct(v reflect.Value) map[string]any {
	t := v.Type()
	out := map[string]any{"$type": typeName(t)}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		out[f.Name] = n.recurse(v.Field(i), f.Name)
	}
	if len(out) == 1 && v.CanInterface() {
		out["$value"] = fmt.Sprint(v.Interface())
	}
	return out
}

// normalizeKey turns a map key into a JSON object key, keeping type
// information for keys that are not JSON-native.
func normalizeKey(k reflect.Value) string {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "null"
		}
		k = k.Elem()
	}
	switch k.Kind() {
	case reflect.Bool:
		if k.Bool() {
			return "true"
		}
		return "false"
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(k.Interface())
	}
	return fmt.Sprintf("<%s:%v>", typeName(k.Type()), k)
}

func renderPath(path []any) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, p := range path {
		if i, ok := p.(int); ok {
			fmt.Fprintf(&b, "[%d]", i)
		} else {
			fmt.Fprintf(&b, ".%v", p)
		}
	}
	return b.String()
}

func funcName(v reflect.Value) string {
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return typeName(v.Type())
	}
	name := fn.Name()
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func typeName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
