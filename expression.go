package templao

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
)

// placeholderPattern finds `{expression}` markers, non-greedy, so a text
// node holding several placeholders matches them left-to-right one at a
// time. Scanning is stateless: every scan starts fresh from the string it
// is given.
var placeholderPattern = regexp.MustCompile(`\{(.*?)\}`)

// attributePattern recognizes an attribute value that is entirely one
// placeholder. Partial matches are not bindings.
var attributePattern = regexp.MustCompile(`^\{(.*?)\}$`)

// callPattern is the dynamic sub-grammar: one flat `name(a, b, ...)` call.
// The character classes exclude parentheses, so nested or unbalanced
// parens simply fail to match and the expression degrades to a static key.
var callPattern = regexp.MustCompile(`^([^()]+)\(([^()]*)\)$`)

// evaluator tracks an expression's last-seen inputs and computes its
// current value from a context patch.
type evaluator interface {
	// Changed reports whether evaluating against the patch would yield a
	// value the caller has not seen from Value yet.
	Changed(patch Context) bool
	// Value computes the current value and records the inputs it used.
	Value(patch Context) any
}

// parseExpression classifies an expression source string. Anything that
// is not a well-formed call is a single static key; malformed call syntax
// is never an error.
func parseExpression(source string) evaluator {
	trimmed := strings.TrimSpace(source)
	if m := callPattern.FindStringSubmatch(trimmed); m != nil {
		dyn := &dynamicExpression{
			fnKey:  strings.TrimSpace(m[1]),
			stored: make(map[string]stored),
		}
		if args := strings.TrimSpace(m[2]); args != "" {
			for _, arg := range strings.Split(args, ",") {
				dyn.params = append(dyn.params, strings.TrimSpace(arg))
			}
		}
		return dyn
	}
	return &staticExpression{key: trimmed}
}

// stored is the explicit Unset|Value(v) tagged pair: the set flag makes
// the sentinel distinguishable from every legitimate value, nil and false
// included, so a first present update always counts as changed.
type stored struct {
	set   bool
	value any
}

// staticExpression resolves by a single direct context-key lookup.
type staticExpression struct {
	key  string
	last stored // last value returned by Value
}

func (e *staticExpression) Changed(patch Context) bool {
	v, ok := patch[e.key]
	if !ok {
		return false
	}
	return !e.last.set || !identical(v, e.last.value)
}

func (e *staticExpression) Value(patch Context) any {
	v := patch[e.key]
	e.last = stored{set: true, value: v}
	return v
}

// dynamicExpression resolves by invoking a context-held function with
// positional, independently tracked parameter values. Stored parameter
// values persist across calls: a parameter absent from a given patch
// keeps its previously stored value, which is what lets partial patches
// compose with expressions that depend on several keys.
type dynamicExpression struct {
	fnKey  string
	params []string
	stored map[string]stored
	fn     stored
}

func (e *dynamicExpression) Changed(patch Context) bool {
	for _, p := range e.params {
		if v, ok := patch[p]; ok {
			s := e.stored[p]
			if !s.set || !identical(v, s.value) {
				return true
			}
		}
	}
	if f, ok := patch[e.fnKey]; ok {
		if !e.fn.set || !identical(f, e.fn.value) {
			return true
		}
	}
	return false
}

func (e *dynamicExpression) Value(patch Context) any {
	for _, p := range e.params {
		if v, ok := patch[p]; ok {
			e.stored[p] = stored{set: true, value: v}
		}
	}
	if f, ok := patch[e.fnKey]; ok {
		e.fn = stored{set: true, value: f}
	}
	args := make([]any, len(e.params))
	for i, p := range e.params {
		args[i] = e.stored[p].value
	}
	return invoke(e.fn.value, args)
}

// invoke calls a context-held function with positional arguments. Func
// values call directly; other Go functions go through reflection with
// nil arguments mapped to zero values. A nil or non-function value yields
// nil rather than an error, matching the engine's degrade-silently rule
// for expression-level faults.
func invoke(fn any, args []any) any {
	switch f := fn.(type) {
	case nil:
		return nil
	case Func:
		return f(args...)
	case func(...any) any:
		return f(args...)
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil
	}
	ft := rv.Type()

	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		var pt reflect.Type
		switch {
		case ft.IsVariadic() && i >= ft.NumIn()-1:
			pt = ft.In(ft.NumIn() - 1).Elem()
		case i < ft.NumIn():
			pt = ft.In(i)
		}
		if pt == nil {
			// Declared parameters beyond the function's arity are dropped.
			break
		}
		in = append(in, conform(a, pt))
	}
	// Missing trailing arguments become zero values.
	for len(in) < ft.NumIn() {
		if ft.IsVariadic() && len(in) == ft.NumIn()-1 {
			break
		}
		in = append(in, reflect.Zero(ft.In(len(in))))
	}

	out := rv.Call(in)
	if len(out) == 0 {
		return nil
	}
	return out[0].Interface()
}

func conform(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t)
	}
	return reflect.Zero(t)
}

// identical is the engine's value-identity relation for change detection:
// comparable values compare with ==, reference types (funcs, maps,
// slices, channels, pointers) compare by identity, and values of
// different or non-comparable types are never identical.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Func, reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if !ra.Type().Comparable() {
		return false
	}
	return a == b
}

// truthy is the engine's truthiness relation: nil, false, the empty
// string, numeric zero and NaN are falsy; everything else, empty slices
// and maps included, is truthy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// stringify is the cast applied by text and attribute parts: falsy values
// collapse to the empty string, strings pass through, and everything else
// renders with fmt.
func stringify(v any) string {
	if !truthy(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
