package synth

import (
	"fmt"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
)

type subclassBackend struct{}

func (subclassBackend) Tag() BackendTag { return BackendSubclass }

// Synthesize builds a meta.Class extending the base. An interface base is
// implemented by a fresh subclass of meta.ObjectClass.
func (subclassBackend) Synthesize(req Request) (Shape, error) {
	var parent *meta.Class
	var implemented []*meta.Interface
	switch base := req.Base.(type) {
	case *meta.Class:
		if base.IsFinal() {
			return nil, errors.UnsupportedBaseType(string(base.Name()), "class is final and cannot be extended")
		}
		if base.IsSynthetic() {
			return nil, errors.UnsupportedBaseType(string(base.Name()), "synthesized classes cannot be extended")
		}
		parent = base
	case *meta.Interface:
		parent = meta.ObjectClass
		implemented = append(implemented, base)
	default:
		return nil, errors.UnsupportedBaseType(fmt.Sprint(req.Base), "base must be a class or an interface")
	}

	c := meta.NewClass(req.Name, parent).SetSynthetic()
	c.Implement(implemented...)
	c.Implement(req.Interfaces...)

	overridden := make(map[string]bool, len(req.Overrides))
	for _, sig := range req.Overrides {
		target, err := subclassTarget(c, parent, sig)
		if err != nil {
			return nil, err
		}
		c.AddMethod(sig, trampoline(sig, target))
		overridden[sig.String()] = true
	}

	props := make(map[string]bool, len(req.Properties))
	for _, p := range req.Properties {
		if err := addProperty(c, p, overridden); err != nil {
			return nil, err
		}
		props[p.Getter().String()] = true
		props[p.Setter().String()] = true
	}

	visible := 0
	for _, ctor := range parent.Constructors() {
		if ctor.Visibility() == meta.Private {
			continue
		}
		params := ctor.Params()
		c.AddConstructor(params, nil, meta.ChainSuper(meta.ForwardArgs(params)))
		visible++
	}
	if visible == 0 {
		return nil, errors.UnsupportedBaseType(string(parent.Name()), "class exposes no non-private constructor")
	}

	return &classShape{class: c, key: req.Key, base: req.Base, overridden: overridden, props: props}, nil
}

// subclassTarget resolves the body an override of sig shadows. A nil result
// with no error means the target is abstract.
func subclassTarget(c, parent *meta.Class, sig ir.MethodSignature) (meta.Func, error) {
	if m, ok := parent.Lookup(sig); ok {
		if !m.Overridable() {
			return nil, errors.MethodNotFound(string(parent.Name()), sig.String(),
				fmt.Sprintf("method is %s and cannot be overridden", notOverridableReason(m)))
		}
		return m.Invoke, nil
	}
	if im, ok := c.LookupInterfaceMethod(sig); ok {
		if def := im.Default(); def != nil {
			return func(self *meta.Instance, args []any) (any, error) {
				return def(self, args)
			}, nil
		}
		return nil, nil
	}
	return nil, errors.MethodNotFound(string(parent.Name()), sig.String(),
		"no such method on the base type or its interfaces")
}

func notOverridableReason(m *meta.Method) string {
	switch {
	case m.Static():
		return "static"
	case m.Final():
		return "final"
	}
	return "private"
}

// trampoline is the method body installed for an override: it fetches the
// behavior from the instance's binding and runs it with a fresh invoker.
func trampoline(sig ir.MethodSignature, target meta.Func) meta.Func {
	return func(self *meta.Instance, args []any) (any, error) {
		b, _ := self.Binding().(*Binding)
		behavior, ok := b.Behavior(sig)
		if !ok {
			return nil, errors.UnsupportedOperation(string(self.TypeName()), sig.String(),
				"instance has no behavior bound for this override")
		}
		var super SuperFunc
		if target != nil {
			super = func(a []any) (any, error) { return target(self, a) }
		}
		return Intercept(self, sig, behavior, args, super)
	}
}

// addProperty adds a backing field plus accessor and mutator. Any clash
// with an existing field or callable member is a duplicate property.
func addProperty(c *meta.Class, p ir.PropertySpec, overridden map[string]bool) error {
	if _, ok := c.Field(p.Name); ok {
		return errors.DuplicateProperty(string(c.Name()), p.Name, "base type already has a field with this name")
	}
	for _, sig := range []ir.MethodSignature{p.Getter(), p.Setter()} {
		if _, ok := c.Lookup(sig); ok || overridden[sig.String()] {
			return errors.DuplicateProperty(string(c.Name()), p.Name,
				fmt.Sprintf("base type already has a method %s", sig))
		}
	}

	name := p.Name
	c.AddField(name, p.Type, p.Type.Zero())
	c.AddMethod(p.Getter(), func(self *meta.Instance, _ []any) (any, error) {
		return self.Get(name)
	})
	c.AddMethod(p.Setter(), func(self *meta.Instance, args []any) (any, error) {
		return nil, self.Set(name, args[0])
	})
	return nil
}

// classShape is the Shape produced by the subclass backend.
type classShape struct {
	class      *meta.Class
	key        ir.Key
	base       meta.Type
	overridden map[string]bool
	props      map[string]bool
}

func (s *classShape) Name() ir.TypeRef { return s.class.Name() }
func (s *classShape) Tag() BackendTag  { return BackendSubclass }
func (s *classShape) Key() ir.Key      { return s.key }
func (s *classShape) Base() meta.Type  { return s.base }

// Class returns the synthesized class.
func (s *classShape) Class() *meta.Class { return s.class }

func (s *classShape) Members() []Member {
	var out []Member
	for _, m := range s.class.Methods() {
		key := m.Signature().String()
		mem := Member{Signature: m.Signature(), DeclaredIn: m.DeclaredIn()}
		switch {
		case s.overridden[key]:
			mem.Origin = OriginOverride
			mem.DeclaredIn = s.shadowed(m.Signature())
		case s.props[key]:
			mem.Origin = OriginProperty
		case m.IsDefault():
			mem.Origin = OriginDefault
		default:
			mem.Origin = OriginInherited
		}
		out = append(out, mem)
	}
	for _, sig := range s.class.AbstractMethods() {
		im, _ := s.class.LookupInterfaceMethod(sig)
		out = append(out, Member{Signature: sig, Origin: OriginAbstract, DeclaredIn: im.Owner().Name()})
	}
	sortMembers(out)
	return out
}

// shadowed names the declaring type of the body an override replaces.
func (s *classShape) shadowed(sig ir.MethodSignature) ir.TypeRef {
	if m, ok := s.class.Super().Lookup(sig); ok {
		return m.DeclaredIn()
	}
	if im, ok := s.class.LookupInterfaceMethod(sig); ok {
		return im.Owner().Name()
	}
	return s.class.Name()
}

func (s *classShape) Constructors() [][]ir.TypeRef {
	ctors := s.class.Constructors()
	out := make([][]ir.TypeRef, len(ctors))
	for i, c := range ctors {
		out[i] = c.Params()
	}
	return out
}

func (s *classShape) Instantiate(b *Binding, params []ir.TypeRef, args []any) (meta.Object, error) {
	inst, err := s.class.Instantiate(b, params, args)
	if err != nil {
		return nil, err
	}
	for name, v := range b.Initials() {
		if err := inst.Set(name, v); err != nil {
			return nil, err
		}
	}
	return inst, nil
}
