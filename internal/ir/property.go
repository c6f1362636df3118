package ir

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// PropertySpec declares a synthesized property: backing storage plus an
// accessor/mutator pair.
type PropertySpec struct {
	Name       string
	Type       TypeRef
	Initial    any
	HasInitial bool
}

// Property builds a PropertySpec without an initial value.
func Property(name string, typ TypeRef) PropertySpec {
	return PropertySpec{Name: name, Type: typ}
}

// PropertyWithValue builds a PropertySpec carrying an initial value.
func PropertyWithValue(name string, typ TypeRef, initial any) PropertySpec {
	return PropertySpec{Name: name, Type: typ, Initial: initial, HasInitial: true}
}

// Validate checks the name, the type and, when present, the initial value.
func (p PropertySpec) Validate() error {
	if !isIdent(p.Name) {
		return fmt.Errorf("invalid property name %q", p.Name)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("property %s: invalid type %q", p.Name, p.Type)
	}
	if p.HasInitial && !p.Type.Accepts(p.Initial) {
		return fmt.Errorf("property %s: initial value %v (%T) is not a %s", p.Name, p.Initial, p.Initial, p.Type)
	}
	return nil
}

// Getter returns the accessor signature: getX(), or isX() for bool.
func (p PropertySpec) Getter() MethodSignature {
	prefix := "get"
	if p.Type == Bool {
		prefix = "is"
	}
	return Sig(prefix + capitalize(p.Name))
}

// Setter returns the mutator signature: setX(T).
func (p PropertySpec) Setter() MethodSignature {
	return Sig("set"+capitalize(p.Name), p.Type)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
