package ir

import (
	"fmt"
	"slices"
	"strings"
)

// MethodSignature identifies a method by name and ordered parameter types.
//
// Equality is exact: no covariance, no overload resolution. Two signatures
// that differ only in parameter order are different methods.
type MethodSignature struct {
	Name   string
	Params []TypeRef
}

// Sig builds a MethodSignature. The params slice is copied.
func Sig(name string, params ...TypeRef) MethodSignature {
	return MethodSignature{Name: name, Params: slices.Clone(params)}
}

// Arity returns the number of parameters.
func (s MethodSignature) Arity() int {
	return len(s.Params)
}

// Equal reports exact equality of name and parameter list.
func (s MethodSignature) Equal(o MethodSignature) bool {
	return s.Name == o.Name && slices.Equal(s.Params, o.Params)
}

// String renders the signature as name(p1,p2).
// The rendering is injective for valid signatures and is used as a map key.
func (s MethodSignature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(p))
	}
	b.WriteByte(')')
	return b.String()
}

// Validate checks that the name is an identifier and every param is a
// usable TypeRef.
func (s MethodSignature) Validate() error {
	if !isIdent(s.Name) {
		return fmt.Errorf("invalid method name %q", s.Name)
	}
	for i, p := range s.Params {
		if !p.Valid() {
			return fmt.Errorf("%s: invalid parameter type %q at position %d", s.Name, p, i)
		}
	}
	return nil
}

// ParseSignature parses the String form back into a MethodSignature.
// Whitespace around names and types is ignored: "greet( string, int )".
func ParseSignature(text string) (MethodSignature, error) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return MethodSignature{}, fmt.Errorf("signature %q: expected name(params)", text)
	}

	sig := MethodSignature{Name: strings.TrimSpace(text[:open])}
	inner := strings.TrimSpace(text[open+1 : len(text)-1])
	if inner != "" {
		for _, part := range strings.Split(inner, ",") {
			sig.Params = append(sig.Params, TypeRef(strings.TrimSpace(part)))
		}
	}

	if err := sig.Validate(); err != nil {
		return MethodSignature{}, fmt.Errorf("signature %q: %w", text, err)
	}
	return sig, nil
}

// MustParseSignature is like ParseSignature but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseSignature(text string) MethodSignature {
	sig, err := ParseSignature(text)
	if err != nil {
		panic(err)
	}
	return sig
}

// CompareSignatures orders signatures by name, then arity, then params.
func CompareSignatures(a, b MethodSignature) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := len(a.Params) - len(b.Params); c != 0 {
		return c
	}
	return slices.Compare(a.Params, b.Params)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
