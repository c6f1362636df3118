package synth

import (
	"fmt"
	"slices"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
)

// Type is a synthesized type: a cached Shape bound to the behaviors and
// property initial values of the Builder that produced it.
type Type struct {
	shape   Shape
	binding *Binding
	hash    string
}

// Name returns the synthesized type's name.
func (t *Type) Name() ir.TypeRef { return t.shape.Name() }

// Key returns the structural key.
func (t *Type) Key() ir.Key { return t.shape.Key() }

// Hash returns the content hash of the structural key.
func (t *Type) Hash() string { return t.hash }

// Backend returns the backend that produced the shape.
func (t *Type) Backend() BackendTag { return t.shape.Tag() }

// Shape returns the cached structure.
func (t *Type) Shape() Shape { return t.shape }

// Same reports whether t and o share one cached shape.
func (t *Type) Same(o *Type) bool {
	return o != nil && t.shape == o.shape
}

// Members lists the dispatch table.
func (t *Type) Members() []Member { return t.shape.Members() }

// Methods lists every signature an instance answers.
func (t *Type) Methods() []ir.MethodSignature {
	members := t.shape.Members()
	out := make([]ir.MethodSignature, len(members))
	for i, m := range members {
		out[i] = m.Signature
	}
	return out
}

// Constructors lists the accepted parameter lists.
func (t *Type) Constructors() [][]ir.TypeRef { return t.shape.Constructors() }

// Instantiate creates an instance through the no-arg constructor.
func (t *Type) Instantiate() (meta.Object, error) {
	return t.InstantiateWith(nil)
}

// InstantiateWith creates an instance through the constructor with the
// given parameter types.
func (t *Type) InstantiateWith(params []ir.TypeRef, args ...any) (meta.Object, error) {
	return t.shape.Instantiate(t.binding, params, args)
}

// New instantiates t and asserts the result to T, typically *meta.Instance
// for the subclass backend or *Proxy for forwarding.
func New[T meta.Object](t *Type, params []ir.TypeRef, args ...any) (T, error) {
	var zero T
	obj, err := t.InstantiateWith(params, args...)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, errors.InvalidArgument(string(t.Name()), "",
			fmt.Sprintf("instance is a %T, not a %T", obj, zero))
	}
	return typed, nil
}

// Layout is a printable description of a synthesized type.
type Layout struct {
	Name         ir.TypeRef       `json:"name"`
	Base         ir.TypeRef       `json:"base"`
	Backend      BackendTag       `json:"backend"`
	Hash         string           `json:"hash"`
	Interfaces   []ir.TypeRef     `json:"interfaces,omitempty"`
	Members      []Member         `json:"members"`
	Constructors [][]ir.TypeRef   `json:"constructors"`
	Properties   []ir.PropertyKey `json:"properties,omitempty"`
}

// Describe returns the type's layout.
func (t *Type) Describe() Layout {
	key := t.Key()
	return Layout{
		Name:         t.Name(),
		Base:         key.Base,
		Backend:      t.Backend(),
		Hash:         t.hash,
		Interfaces:   slices.Clone(key.Interfaces),
		Members:      t.Members(),
		Constructors: t.Constructors(),
		Properties:   slices.Clone(key.Properties),
	}
}

// Record returns the catalog record for the type's shape.
func (t *Type) Record() ir.SynthesisRecord {
	return recordFor(t.shape, t.hash)
}

func recordFor(s Shape, hash string) ir.SynthesisRecord {
	members := s.Members()
	recs := make([]ir.MemberRecord, len(members))
	for i, m := range members {
		recs[i] = ir.MemberRecord{
			Signature:  m.Signature.String(),
			Origin:     string(m.Origin),
			DeclaredIn: m.DeclaredIn,
		}
	}
	return ir.SynthesisRecord{
		KeyHash:      hash,
		TypeName:     s.Name(),
		Key:          s.Key(),
		Members:      recs,
		Constructors: s.Constructors(),
	}
}
