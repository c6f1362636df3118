package ir

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// PropertyKey is the structural part of a PropertySpec: initial values are
// per-type data and never take part in identity.
type PropertyKey struct {
	Name string
	Type TypeRef
}

// Key is the normalised structural identity of a synthesis request.
//
// INVARIANTS (enforced by NewKey):
//   - Interfaces sorted and deduplicated
//   - Overrides sorted by CompareSignatures
//   - Properties sorted by name
//
// Two requests that differ only in registration order produce equal keys.
type Key struct {
	Base       TypeRef
	Interfaces []TypeRef
	Overrides  []MethodSignature
	Properties []PropertyKey
	Backend    string
}

// NewKey normalises its inputs into a Key. Inputs are copied.
func NewKey(base TypeRef, interfaces []TypeRef, overrides []MethodSignature, props []PropertySpec, backend string) Key {
	ifaces := slices.Clone(interfaces)
	slices.Sort(ifaces)
	ifaces = slices.Compact(ifaces)

	sigs := make([]MethodSignature, len(overrides))
	for i, s := range overrides {
		sigs[i] = Sig(s.Name, s.Params...)
	}
	slices.SortFunc(sigs, CompareSignatures)

	pk := make([]PropertyKey, len(props))
	for i, p := range props {
		pk[i] = PropertyKey{Name: p.Name, Type: p.Type}
	}
	slices.SortFunc(pk, func(a, b PropertyKey) int {
		return strings.Compare(a.Name, b.Name)
	})

	return Key{
		Base:       base,
		Interfaces: ifaces,
		Overrides:  sigs,
		Properties: pk,
		Backend:    backend,
	}
}

// Equal compares two keys structurally.
func (k Key) Equal(o Key) bool {
	return k.Base == o.Base &&
		k.Backend == o.Backend &&
		slices.Equal(k.Interfaces, o.Interfaces) &&
		slices.EqualFunc(k.Overrides, o.Overrides, MethodSignature.Equal) &&
		slices.Equal(k.Properties, o.Properties)
}

// canonicalMap converts the key into the value shape MarshalCanonical accepts.
func (k Key) canonicalMap() map[string]any {
	ifaces := make([]any, len(k.Interfaces))
	for i, t := range k.Interfaces {
		ifaces[i] = string(t)
	}
	overrides := make([]any, len(k.Overrides))
	for i, s := range k.Overrides {
		params := make([]any, len(s.Params))
		for j, p := range s.Params {
			params[j] = string(p)
		}
		overrides[i] = map[string]any{"name": s.Name, "params": params}
	}
	props := make([]any, len(k.Properties))
	for i, p := range k.Properties {
		props[i] = map[string]any{"name": p.Name, "type": string(p.Type)}
	}
	return map[string]any{
		"base":       string(k.Base),
		"interfaces": ifaces,
		"overrides":  overrides,
		"properties": props,
		"backend":    k.Backend,
	}
}

// Canonical returns the RFC 8785 canonical JSON encoding of the key.
func (k Key) Canonical() ([]byte, error) {
	data, err := MarshalCanonical(k.canonicalMap())
	if err != nil {
		return nil, fmt.Errorf("Key.Canonical: %w", err)
	}
	return data, nil
}

// String renders a compact human-readable form, used in logs.
func (k Key) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]", k.Base, k.Backend)
	if len(k.Interfaces) > 0 {
		fmt.Fprintf(&b, " +%v", k.Interfaces)
	}
	for _, s := range k.Overrides {
		fmt.Fprintf(&b, " ~%s", s)
	}
	for _, p := range k.Properties {
		fmt.Fprintf(&b, " .%s:%s", p.Name, p.Type)
	}
	return b.String()
}

type keyJSON struct {
	Base       TypeRef   `json:"base"`
	Interfaces []TypeRef `json:"interfaces"`
	Overrides  []struct {
		Name   string    `json:"name"`
		Params []TypeRef `json:"params"`
	} `json:"overrides"`
	Properties []struct {
		Name string  `json:"name"`
		Type TypeRef `json:"type"`
	} `json:"properties"`
	Backend string `json:"backend"`
}

// ParseKey decodes the Canonical form back into a normalised Key.
func ParseKey(data []byte) (Key, error) {
	var kj keyJSON
	if err := json.Unmarshal(data, &kj); err != nil {
		return Key{}, fmt.Errorf("ParseKey: %w", err)
	}
	sigs := make([]MethodSignature, len(kj.Overrides))
	for i, o := range kj.Overrides {
		sigs[i] = Sig(o.Name, o.Params...)
	}
	props := make([]PropertySpec, len(kj.Properties))
	for i, p := range kj.Properties {
		props[i] = Property(p.Name, p.Type)
	}
	return NewKey(kj.Base, kj.Interfaces, sigs, props, kj.Backend), nil
}
