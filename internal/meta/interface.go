package meta

import (
	"fmt"
	"slices"

	"github.com/roach88/synth/internal/ir"
)

// InterfaceMethod is a signature declared on an interface, with an
// optional default body.
type InterfaceMethod struct {
	sig   ir.MethodSignature
	def   DefaultFunc
	owner *Interface
}

// Signature returns the declared signature.
func (m *InterfaceMethod) Signature() ir.MethodSignature { return m.sig }

// Default returns the default body, or nil when the method is abstract.
func (m *InterfaceMethod) Default() DefaultFunc { return m.def }

// Abstract reports whether the method has no default body.
func (m *InterfaceMethod) Abstract() bool { return m.def == nil }

// Owner returns the declaring interface.
func (m *InterfaceMethod) Owner() *Interface { return m.owner }

// asMethod adapts a default body onto the class method shape.
func (m *InterfaceMethod) asMethod() *Method {
	def := m.def
	return &Method{
		sig:   m.sig,
		iface: m.owner,
		body: func(self *Instance, args []any) (any, error) {
			return def(self, args)
		},
	}
}

// Interface is a named set of method signatures.
type Interface struct {
	name    ir.TypeRef
	extends []*Interface
	methods map[string]*InterfaceMethod
	order   []string
}

// NewInterface declares an interface, optionally extending others.
func NewInterface(name ir.TypeRef, extends ...*Interface) *Interface {
	if !name.Valid() || name.IsBuiltin() {
		panic(fmt.Sprintf("meta: invalid interface name %q", name))
	}
	return &Interface{
		name:    name,
		extends: slices.Clone(extends),
		methods: make(map[string]*InterfaceMethod),
	}
}

// Name implements Type.
func (i *Interface) Name() ir.TypeRef { return i.name }

// Kind implements Type.
func (i *Interface) Kind() Kind { return KindInterface }

// Extended returns the directly extended interfaces.
func (i *Interface) Extended() []*Interface { return slices.Clone(i.extends) }

// AddMethod declares a signature. def may be nil for an abstract method.
// Panics on an invalid or duplicate signature.
func (i *Interface) AddMethod(sig ir.MethodSignature, def DefaultFunc) *Interface {
	if err := sig.Validate(); err != nil {
		panic(fmt.Sprintf("meta: %s: %v", i.name, err))
	}
	key := sig.String()
	if _, dup := i.methods[key]; dup {
		panic(fmt.Sprintf("meta: %s: duplicate method %s", i.name, key))
	}
	i.methods[key] = &InterfaceMethod{sig: ir.Sig(sig.Name, sig.Params...), def: def, owner: i}
	i.order = append(i.order, key)
	return i
}

// Lookup finds sig on this interface or, depth-first, on extended ones.
// A declaration on a more specific interface shadows inherited ones.
func (i *Interface) Lookup(sig ir.MethodSignature) (*InterfaceMethod, bool) {
	if m, ok := i.methods[sig.String()]; ok {
		return m, true
	}
	for _, e := range i.extends {
		if m, ok := e.Lookup(sig); ok {
			return m, true
		}
	}
	return nil, false
}

// Methods returns every method visible on the interface, sorted by signature.
func (i *Interface) Methods() []*InterfaceMethod {
	seen := make(map[string]bool)
	var out []*InterfaceMethod
	i.collect(seen, &out)
	slices.SortFunc(out, func(a, b *InterfaceMethod) int {
		return ir.CompareSignatures(a.sig, b.sig)
	})
	return out
}

func (i *Interface) collect(seen map[string]bool, out *[]*InterfaceMethod) {
	for _, key := range i.order {
		if !seen[key] {
			seen[key] = true
			*out = append(*out, i.methods[key])
		}
	}
	for _, e := range i.extends {
		e.collect(seen, out)
	}
}

// Extends reports whether i is other or extends it transitively.
func (i *Interface) Extends(other *Interface) bool {
	if i == other {
		return true
	}
	for _, e := range i.extends {
		if e.Extends(other) {
			return true
		}
	}
	return false
}

// ConformsTo reports whether i is, or extends, an interface named t.
func (i *Interface) ConformsTo(t ir.TypeRef) bool {
	if i.name == t {
		return true
	}
	for _, e := range i.extends {
		if e.ConformsTo(t) {
			return true
		}
	}
	return false
}
