package contrib

import (
	"reflect"
	"runtime"
	"strings"
)

// Symbol identifies the Go value behind a contribution.
type Symbol struct {
	// Name is the bare identifier, e.g. "queryDatabase".
	Name string
	// Module is the qualified form, e.g. "example.com/ext/tools.queryDatabase".
	Module string
	// Doc is the payload's documentation, if it implements Documented.
	Doc string
}

// SymbolOf inspects v. Functions are named after the runtime function they
// point to; other values are named after their (pointer-stripped) type.
func SymbolOf(v any) Symbol {
	if v == nil {
		return Symbol{}
	}

	var s Symbol
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		if !rv.IsNil() {
			if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
				s.Module = strings.TrimSuffix(fn.Name(), "-fm")
				s.Name = bareName(s.Module)
			}
		}
	} else {
		t := rv.Type()
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		s.Name = t.Name()
		s.Module = s.Name
		if t.PkgPath() != "" {
			s.Module = t.PkgPath() + "." + t.Name()
		}
	}

	if d, ok := v.(Documented); ok {
		s.Doc = d.Doc()
	}
	return s
}

// bareName strips the import path, any receiver, closure suffixes and
// generic brackets from a qualified function name: "a/b/pkg.(*T).Method"
// becomes "Method", "a/b/pkg.Outer.func1.2" becomes "Outer" and
// "a/b/pkg.Map[...]" becomes "Map".
func bareName(qualified string) string {
	name := strings.ReplaceAll(qualified, "[...]", "")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for len(parts) > 1 && isClosureSegment(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	return parts[len(parts)-1]
}

// isClosureSegment reports whether seg is a compiler-generated name such as
// "func1", "gowrap2" or a nested closure index like "3".
func isClosureSegment(seg string) bool {
	for _, prefix := range []string{"func", "gowrap", "deferwrap"} {
		if rest, ok := strings.CutPrefix(seg, prefix); ok && rest != "" && isDigits(rest) {
			return true
		}
	}
	return seg != "" && isDigits(seg)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// firstLine returns the first non-blank line of doc, trimmed.
func firstLine(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
