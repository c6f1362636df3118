package synth

import (
	"fmt"
	"slices"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
)

type forwardingBackend struct{}

func (forwardingBackend) Tag() BackendTag { return BackendForwarding }

// Synthesize builds the dispatch table a Proxy traps through. Class bases
// are served by delegation, so final classes are accepted.
func (forwardingBackend) Synthesize(req Request) (Shape, error) {
	if len(req.Properties) > 0 {
		return nil, errors.UnsupportedOperation(string(req.Name), req.Properties[0].Name,
			"the forwarding backend cannot add properties")
	}

	s := &forwardingShape{
		name:  req.Name,
		key:   req.Key,
		base:  req.Base,
		table: make(map[string]*slot),
	}
	switch base := req.Base.(type) {
	case *meta.Interface:
		s.ifaces = append(s.ifaces, base)
	case *meta.Class:
		if base.IsSynthetic() {
			return nil, errors.UnsupportedBaseType(string(base.Name()), "synthesized classes cannot be wrapped")
		}
		s.delegate = base
	default:
		return nil, errors.UnsupportedBaseType(fmt.Sprint(req.Base), "base must be a class or an interface")
	}
	s.ifaces = append(s.ifaces, req.Interfaces...)

	for _, i := range s.ifaces {
		for _, im := range i.Methods() {
			key := im.Signature().String()
			if _, seen := s.table[key]; seen {
				continue
			}
			sl := &slot{sig: im.Signature(), def: im.Default(), declaredIn: i.Name()}
			if sl.def != nil {
				sl.declaredIn = im.Owner().Name()
			}
			s.table[key] = sl
		}
	}
	if s.delegate != nil {
		// Class bodies win over interface defaults. Private methods stay
		// behind the delegate.
		for _, m := range s.delegate.Methods() {
			if m.Visibility() == meta.Private {
				continue
			}
			s.table[m.Signature().String()] = &slot{
				sig:        m.Signature(),
				method:     m,
				declaredIn: m.DeclaredIn(),
			}
		}
	}

	for _, sig := range req.Overrides {
		sl, ok := s.table[sig.String()]
		if !ok {
			return nil, errors.MethodNotFound(string(req.Base.Name()), sig.String(),
				"no such method on the base type or its interfaces")
		}
		if sl.method != nil && !sl.method.Overridable() {
			return nil, errors.MethodNotFound(string(req.Base.Name()), sig.String(),
				fmt.Sprintf("method is %s and cannot be overridden", notOverridableReason(sl.method)))
		}
		sl.override = true
	}

	for _, sl := range s.table {
		s.sigs = append(s.sigs, sl.sig)
	}
	slices.SortFunc(s.sigs, ir.CompareSignatures)

	if s.delegate != nil {
		for _, ctor := range s.delegate.Constructors() {
			if ctor.Visibility() != meta.Private {
				s.ctors = append(s.ctors, ctor.Params())
			}
		}
		if len(s.ctors) == 0 {
			return nil, errors.UnsupportedBaseType(string(s.delegate.Name()), "class exposes no non-private constructor")
		}
	} else {
		s.ctors = [][]ir.TypeRef{nil}
	}
	return s, nil
}

// slot is one dispatch table entry.
type slot struct {
	sig        ir.MethodSignature
	override   bool
	def        meta.DefaultFunc
	method     *meta.Method
	declaredIn ir.TypeRef
}

// forwardingShape is the Shape produced by the forwarding backend.
type forwardingShape struct {
	name     ir.TypeRef
	key      ir.Key
	base     meta.Type
	ifaces   []*meta.Interface
	delegate *meta.Class
	table    map[string]*slot
	sigs     []ir.MethodSignature
	ctors    [][]ir.TypeRef
}

func (s *forwardingShape) Name() ir.TypeRef { return s.name }
func (s *forwardingShape) Tag() BackendTag  { return BackendForwarding }
func (s *forwardingShape) Key() ir.Key      { return s.key }
func (s *forwardingShape) Base() meta.Type  { return s.base }

func (s *forwardingShape) Members() []Member {
	out := make([]Member, 0, len(s.table))
	for _, sl := range s.table {
		mem := Member{Signature: sl.sig, DeclaredIn: sl.declaredIn}
		switch {
		case sl.override:
			mem.Origin = OriginOverride
		case sl.method != nil:
			mem.Origin = OriginDelegate
		case sl.def != nil:
			mem.Origin = OriginDefault
		default:
			mem.Origin = OriginAbstract
		}
		out = append(out, mem)
	}
	sortMembers(out)
	return out
}

func (s *forwardingShape) Constructors() [][]ir.TypeRef {
	out := make([][]ir.TypeRef, len(s.ctors))
	for i, c := range s.ctors {
		out[i] = slices.Clone(c)
	}
	return out
}

func (s *forwardingShape) Instantiate(b *Binding, params []ir.TypeRef, args []any) (meta.Object, error) {
	p := &Proxy{shape: s, binding: b}
	if s.delegate == nil {
		if len(params) != 0 || len(args) != 0 {
			return nil, errors.NoMatchingConstructor(string(s.name), ir.Sig("<init>", params...).String(),
				"interface proxies only have a no-arg constructor")
		}
		return p, nil
	}
	inst, err := s.delegate.Instantiate(nil, params, args)
	if err != nil {
		if errors.IsNoMatchingConstructor(err) {
			return nil, errors.NoMatchingConstructor(string(s.name), ir.Sig("<init>", params...).String(), err.Error())
		}
		return nil, err
	}
	p.delegate = inst
	return p, nil
}

// Proxy is an instance produced by the forwarding backend. Every call goes
// through one trap that consults the override table, then interface
// defaults, then the delegate.
//
// Calls the delegate makes on itself are not intercepted: the delegate is a
// plain base instance and never sees the proxy.
type Proxy struct {
	shape    *forwardingShape
	binding  *Binding
	delegate *meta.Instance
}

var _ meta.Object = (*Proxy)(nil)

// TypeName implements meta.Object.
func (p *Proxy) TypeName() ir.TypeRef { return p.shape.name }

// Delegate returns the wrapped base instance, or nil for interface proxies.
func (p *Proxy) Delegate() *meta.Instance { return p.delegate }

// Conforms implements meta.Object.
func (p *Proxy) Conforms(t ir.TypeRef) bool {
	if t == ir.Any || t == p.shape.name {
		return true
	}
	for _, i := range p.shape.ifaces {
		if i.ConformsTo(t) {
			return true
		}
	}
	return p.delegate != nil && p.delegate.Conforms(t)
}

// Signatures implements meta.Object.
func (p *Proxy) Signatures() []ir.MethodSignature { return slices.Clone(p.shape.sigs) }

// Send implements meta.Object.
func (p *Proxy) Send(name string, args ...any) (any, error) {
	sig, err := meta.Resolve(p.shape.name, p.shape.sigs, name, args)
	if err != nil {
		return nil, err
	}
	return p.Call(sig, args...)
}

// Call implements meta.Object. It is the trap.
func (p *Proxy) Call(sig ir.MethodSignature, args ...any) (any, error) {
	sl, ok := p.shape.table[sig.String()]
	if !ok {
		return nil, errors.MethodNotFound(string(p.shape.name), sig.String(), "no such method")
	}
	args, err := meta.ConvertArgs(string(p.shape.name), sig, args)
	if err != nil {
		return nil, err
	}

	var base SuperFunc
	switch {
	case sl.method != nil:
		base = func(a []any) (any, error) { return p.delegate.Call(sl.sig, a...) }
	case sl.def != nil:
		def := sl.def
		base = func(a []any) (any, error) { return def(p, a) }
	}

	if sl.override {
		behavior, ok := p.binding.Behavior(sig)
		if !ok {
			return nil, errors.UnsupportedOperation(string(p.shape.name), sig.String(),
				"proxy has no behavior bound for this override")
		}
		return Intercept(p, sig, behavior, args, base)
	}
	if base == nil {
		return nil, errors.MethodNotFound(string(p.shape.name), sig.String(),
			"method is abstract and has no override")
	}
	return base(args)
}

// String implements fmt.Stringer.
func (p *Proxy) String() string {
	if p.delegate != nil {
		return fmt.Sprintf("%s(%s)", p.shape.name, p.delegate)
	}
	return string(p.shape.name)
}
