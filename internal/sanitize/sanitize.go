// Package sanitize strips potentially executable markup from any data the
// client writes into its state, on both request bodies and API responses.
// The backend is treated as a partially untrusted source: stored content may
// have been written by arbitrary end users.
package sanitize

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy  = bluemonday.StrictPolicy()
	idClean = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// Text removes all markup from s. It re-strips after entity unescaping so
// encoded payloads ("&lt;script&gt;") cannot survive a later decode step.
func Text(s string) string {
	if s == "" {
		return ""
	}
	out := s
	for range 3 {
		next := html.UnescapeString(policy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

// ID reduces s to the characters a backend identifier may contain.
func ID(s string) string {
	return idClean.ReplaceAllString(strings.TrimSpace(s), "")
}

// StringMap sanitizes every key and value of a flat string map.
func StringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[Text(k)] = Text(v)
	}
	return out
}

// Value walks decoded JSON (maps, slices, strings) and returns a copy with
// every string leaf sanitized. Numbers, booleans and nil pass through.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return Text(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[Text(k)] = Value(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = Value(vv)
		}
		return out
	default:
		return v
	}
}

// Struct sanitizes every reachable exported string field of v in place.
// v must be a pointer; non-struct kinds are handled so callers can pass
// pointers to slices of entities directly.
func Struct(v any) {
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	walk(rv.Elem())
}

func walk(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(Text(rv.String()))
		}
	case reflect.Struct:
		for i := range rv.NumField() {
			walk(rv.Field(i))
		}
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			walk(rv.Index(i))
		}
	case reflect.Map:
		for _, key := range rv.MapKeys() {
			elem := rv.MapIndex(key)
			if elem.Kind() == reflect.String {
				rv.SetMapIndex(key, reflect.ValueOf(Text(elem.String())))
			}
		}
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			walk(rv.Elem())
		}
	}
}
