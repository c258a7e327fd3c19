package host

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/fiber/pkg/vdom"
)

// ApplyProps diffs prev against next and issues the adapter calls needed to
// bring n from one to the other. It returns the number of calls made.
//
// Keys are routed as follows:
//   - "children" and "key" are never applied.
//   - Event keys (see vdom.IsEventKey) go to SetEventHandler.
//   - "style" is diffed field by field into SetStyle.
//   - Everything else goes to SetAttribute / RemoveAttribute.
//
// Unchanged values produce no calls.
func ApplyProps(a Adapter, n Node, prev, next vdom.Props) (int, error) {
	calls := 0

	for _, key := range sortedKeys(prev) {
		if skipKey(key) {
			continue
		}
		if _, ok := next[key]; ok {
			continue
		}
		var err error
		switch {
		case vdom.IsEventKey(key):
			err = a.SetEventHandler(n, key, nil)
			calls++
		case key == "style":
			var c int
			c, err = applyStyle(a, n, toStyle(prev[key]), nil)
			calls += c
		default:
			err = a.RemoveAttribute(n, key)
			calls++
		}
		if err != nil {
			return calls, fmt.Errorf("remove %q: %w", key, err)
		}
	}

	for _, key := range sortedKeys(next) {
		if skipKey(key) {
			continue
		}
		nextVal := next[key]
		prevVal, existed := prev[key]
		var err error
		switch {
		case vdom.IsEventKey(key):
			if existed && sameHandler(prevVal, nextVal) {
				continue
			}
			err = a.SetEventHandler(n, key, nextVal)
			calls++
		case key == "style":
			var c int
			c, err = applyStyle(a, n, toStyle(prevVal), toStyle(nextVal))
			calls += c
		default:
			if existed && PropsEqual(prevVal, nextVal) {
				continue
			}
			err = a.SetAttribute(n, key, nextVal)
			calls++
		}
		if err != nil {
			return calls, fmt.Errorf("set %q: %w", key, err)
		}
	}

	return calls, nil
}

func applyStyle(a Adapter, n Node, prev, next vdom.Style) (int, error) {
	calls := 0
	for _, name := range sortedKeys(prev) {
		if _, ok := next[name]; ok {
			continue
		}
		if err := a.SetStyle(n, name, ""); err != nil {
			return calls, err
		}
		calls++
	}
	for _, name := range sortedKeys(next) {
		if old, ok := prev[name]; ok && old == next[name] {
			continue
		}
		if err := a.SetStyle(n, name, next[name]); err != nil {
			return calls, err
		}
		calls++
	}
	return calls, nil
}

func skipKey(key string) bool {
	return key == "children" || key == "key"
}

func toStyle(v any) vdom.Style {
	switch s := v.(type) {
	case vdom.Style:
		return s
	case map[string]string:
		return vdom.Style(s)
	case map[string]any:
		out := make(vdom.Style, len(s))
		for k, v := range s {
			out[k] = fmt.Sprint(v)
		}
		return out
	default:
		return nil
	}
}

// sameHandler compares handlers by identity. Functions compare by code
// pointer, so two distinct closures over the same literal are considered
// equal.
func sameHandler(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Func && vb.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() && vb.Type().Comparable() {
		return a == b
	}
	return false
}

// PropsEqual compares two prop values for equality.
func PropsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}
