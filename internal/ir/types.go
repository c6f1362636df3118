package ir

import (
	"reflect"
	"strings"
)

// TypeRef names a type known to the object model.
//
// Builtin refs map onto Go kinds. Every other ref is the declared name of a
// class or interface (e.g. "example.Greeter") and is resolved by the object
// model, not by this package.
type TypeRef string

// Builtin type references.
const (
	Any     TypeRef = "any"
	Bool    TypeRef = "bool"
	Int     TypeRef = "int"
	Int64   TypeRef = "int64"
	Float64 TypeRef = "float64"
	String  TypeRef = "string"
)

var builtins = map[TypeRef]bool{
	Any: true, Bool: true, Int: true, Int64: true, Float64: true, String: true,
}

// Conformer is implemented by object-model values that can answer whether
// they conform to a named (non-builtin) type.
type Conformer interface {
	Conforms(t TypeRef) bool
}

// IsBuiltin reports whether t is one of the builtin refs.
func (t TypeRef) IsBuiltin() bool {
	return builtins[t]
}

// String implements fmt.Stringer.
func (t TypeRef) String() string {
	return string(t)
}

// Valid reports whether t is a usable reference: non-empty and free of the
// characters reserved by the signature syntax.
func (t TypeRef) Valid() bool {
	s := string(t)
	return s != "" && !strings.ContainsAny(s, "(), \t\n")
}

// Accepts reports whether v may be passed where t is expected.
//
// Builtins are checked against the Go kind of v. Named refs accept nil
// (absent object), any Conformer that conforms, and Go values whose
// reflected type maps to the same ref.
func (t TypeRef) Accepts(v any) bool {
	_, ok := t.Convert(v)
	return ok
}

// Convert returns v in the canonical Go representation of t: int for Int,
// int64 for Int64, float64 for Float64. Narrower numeric kinds widen;
// named refs and other builtins return v unchanged. ok is false when t
// does not accept v.
func (t TypeRef) Convert(v any) (out any, ok bool) {
	switch t {
	case Any:
		return v, true
	case Bool:
		_, ok := v.(bool)
		return v, ok
	case Int:
		switch n := v.(type) {
		case int:
			return n, true
		case int8:
			return int(n), true
		case int16:
			return int(n), true
		case int32:
			return int(n), true
		}
		return nil, false
	case Int64:
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case int8:
			return int64(n), true
		case int16:
			return int64(n), true
		case int32:
			return int64(n), true
		}
		return nil, false
	case Float64:
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		}
		return nil, false
	case String:
		_, ok := v.(string)
		return v, ok
	}
	if v == nil {
		return nil, true
	}
	if c, ok := v.(Conformer); ok && c.Conforms(t) {
		return v, true
	}
	return v, TypeOf(reflect.TypeOf(v)) == t
}

// Zero returns the zero value for builtin refs and nil for named refs.
func (t TypeRef) Zero() any {
	switch t {
	case Bool:
		return false
	case Int:
		return 0
	case Int64:
		return int64(0)
	case Float64:
		return float64(0)
	case String:
		return ""
	}
	return nil
}

// TypeOf maps a Go reflect.Type to a TypeRef.
// Basic kinds map to builtins; everything else uses reflect's own spelling
// (e.g. "*bytes.Buffer", "[]string").
func TypeOf(t reflect.Type) TypeRef {
	if t == nil {
		return Any
	}
	switch t.Kind() {
	case reflect.Bool:
		if t.PkgPath() == "" {
			return Bool
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		if t.PkgPath() == "" {
			return Int
		}
	case reflect.Int64:
		if t.PkgPath() == "" {
			return Int64
		}
	case reflect.Float32, reflect.Float64:
		if t.PkgPath() == "" {
			return Float64
		}
	case reflect.String:
		if t.PkgPath() == "" {
			return String
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Any
		}
	}
	return TypeRef(t.String())
}

// Refs converts strings to TypeRefs.
func Refs(names ...string) []TypeRef {
	out := make([]TypeRef, len(names))
	for i, n := range names {
		out[i] = TypeRef(n)
	}
	return out
}
