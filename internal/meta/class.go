package meta

import (
	"fmt"
	"slices"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
)

// Field is a declared instance field.
type Field struct {
	name    string
	typ     ir.TypeRef
	initial any
	owner   *Class
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Type returns the declared field type.
func (f *Field) Type() ir.TypeRef { return f.typ }

// Initial returns the value a new instance starts with.
func (f *Field) Initial() any { return f.initial }

// Owner returns the declaring class.
func (f *Field) Owner() *Class { return f.owner }

// Constructor is a class constructor.
type Constructor struct {
	params     []ir.TypeRef
	visibility Visibility
	init       InitFunc
	chain      ChainFunc
	owner      *Class
	implicit   bool
}

// Params returns a copy of the parameter types.
func (c *Constructor) Params() []ir.TypeRef { return slices.Clone(c.params) }

// Visibility returns the declared visibility.
func (c *Constructor) Visibility() Visibility { return c.visibility }

// Implicit reports whether this is the no-arg constructor a class gets
// when it declares none.
func (c *Constructor) Implicit() bool { return c.implicit }

// Owner returns the declaring class.
func (c *Constructor) Owner() *Class { return c.owner }

// Signature renders the constructor as "<init>(p1,p2)".
func (c *Constructor) Signature() ir.MethodSignature {
	return ir.Sig("<init>", c.params...)
}

// Class is a base type with methods, constructors and fields. Classes are
// built once, then treated as immutable.
type Class struct {
	name       ir.TypeRef
	super      *Class
	final      bool
	synthetic  bool
	interfaces []*Interface
	methods    map[string]*Method
	order      []string
	ctors      []*Constructor
	fields     map[string]*Field
	fieldOrder []string
}

// ObjectClass is the root of every class hierarchy.
var ObjectClass = newRootClass()

func newRootClass() *Class {
	c := &Class{
		name:    "Object",
		methods: make(map[string]*Method),
		fields:  make(map[string]*Field),
	}
	c.AddMethod(ir.Sig("toString"), func(self *Instance, _ []any) (any, error) {
		return string(self.TypeName()), nil
	})
	return c
}

// NewClass declares a class extending super. A nil super means ObjectClass.
func NewClass(name ir.TypeRef, super *Class) *Class {
	if !name.Valid() || name.IsBuiltin() {
		panic(fmt.Sprintf("meta: invalid class name %q", name))
	}
	if super == nil {
		super = ObjectClass
	}
	return &Class{
		name:    name,
		super:   super,
		methods: make(map[string]*Method),
		fields:  make(map[string]*Field),
	}
}

// Name implements Type.
func (c *Class) Name() ir.TypeRef { return c.name }

// Kind implements Type.
func (c *Class) Kind() Kind { return KindClass }

// Super returns the superclass, nil for ObjectClass.
func (c *Class) Super() *Class { return c.super }

// IsFinal reports whether the class may not be extended.
func (c *Class) IsFinal() bool { return c.final }

// SetFinal marks the class as non-extensible.
func (c *Class) SetFinal() *Class {
	c.final = true
	return c
}

// IsSynthetic reports whether the class was produced by synthesis.
func (c *Class) IsSynthetic() bool { return c.synthetic }

// SetSynthetic marks the class as produced by synthesis.
func (c *Class) SetSynthetic() *Class {
	c.synthetic = true
	return c
}

// Implement adds interfaces to the class.
func (c *Class) Implement(ifaces ...*Interface) *Class {
	for _, i := range ifaces {
		if !slices.Contains(c.interfaces, i) {
			c.interfaces = append(c.interfaces, i)
		}
	}
	return c
}

// Interfaces returns the directly implemented interfaces.
func (c *Class) Interfaces() []*Interface { return slices.Clone(c.interfaces) }

// AddMethod declares a method. Panics on an invalid or duplicate signature.
func (c *Class) AddMethod(sig ir.MethodSignature, body Func, opts ...Option) *Class {
	if err := sig.Validate(); err != nil {
		panic(fmt.Sprintf("meta: %s: %v", c.name, err))
	}
	if body == nil {
		panic(fmt.Sprintf("meta: %s: nil body for %s", c.name, sig))
	}
	key := sig.String()
	if _, dup := c.methods[key]; dup {
		panic(fmt.Sprintf("meta: %s: duplicate method %s", c.name, key))
	}
	cfg := applyOptions(opts)
	c.methods[key] = &Method{
		sig:        ir.Sig(sig.Name, sig.Params...),
		visibility: cfg.visibility,
		final:      cfg.final,
		static:     cfg.static,
		body:       body,
		owner:      c,
	}
	c.order = append(c.order, key)
	return c
}

// AddConstructor declares a constructor. Panics on a duplicate parameter list.
func (c *Class) AddConstructor(params []ir.TypeRef, init InitFunc, opts ...Option) *Class {
	for _, existing := range c.ctors {
		if slices.Equal(existing.params, params) {
			panic(fmt.Sprintf("meta: %s: duplicate constructor %s", c.name, existing.Signature()))
		}
	}
	cfg := applyOptions(opts)
	c.ctors = append(c.ctors, &Constructor{
		params:     slices.Clone(params),
		visibility: cfg.visibility,
		init:       init,
		chain:      cfg.chain,
		owner:      c,
	})
	return c
}

// AddField declares an instance field. Panics if the name is taken anywhere
// in the class chain.
func (c *Class) AddField(name string, typ ir.TypeRef, initial any) *Class {
	if _, ok := c.Field(name); ok {
		panic(fmt.Sprintf("meta: %s: duplicate field %s", c.name, name))
	}
	c.fields[name] = &Field{name: name, typ: typ, initial: initial, owner: c}
	c.fieldOrder = append(c.fieldOrder, name)
	return c
}

// Declared returns the method declared on this class itself.
func (c *Class) Declared(sig ir.MethodSignature) (*Method, bool) {
	m, ok := c.methods[sig.String()]
	return m, ok
}

// DeclaredMethods returns this class's own methods in declaration order.
func (c *Class) DeclaredMethods() []*Method {
	out := make([]*Method, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.methods[key])
	}
	return out
}

// Lookup resolves sig to the most specific body: the class chain first,
// then default methods of the implemented interfaces.
func (c *Class) Lookup(sig ir.MethodSignature) (*Method, bool) {
	key := sig.String()
	for k := c; k != nil; k = k.super {
		if m, ok := k.methods[key]; ok {
			return m, true
		}
	}
	for _, i := range c.AllInterfaces() {
		if im, ok := i.Lookup(sig); ok && !im.Abstract() {
			return im.asMethod(), true
		}
	}
	return nil, false
}

// LookupInterfaceMethod finds sig among the implemented interfaces,
// abstract or not.
func (c *Class) LookupInterfaceMethod(sig ir.MethodSignature) (*InterfaceMethod, bool) {
	for _, i := range c.AllInterfaces() {
		if im, ok := i.Lookup(sig); ok {
			return im, true
		}
	}
	return nil, false
}

// Methods returns the resolved method set, sorted by signature.
func (c *Class) Methods() []*Method {
	seen := make(map[string]bool)
	var out []*Method
	for k := c; k != nil; k = k.super {
		for _, key := range k.order {
			if !seen[key] {
				seen[key] = true
				out = append(out, k.methods[key])
			}
		}
	}
	for _, i := range c.AllInterfaces() {
		for _, im := range i.Methods() {
			key := im.sig.String()
			if !seen[key] && !im.Abstract() {
				if m, ok := c.Lookup(im.sig); ok {
					seen[key] = true
					out = append(out, m)
				}
			}
		}
	}
	slices.SortFunc(out, func(a, b *Method) int {
		return ir.CompareSignatures(a.sig, b.sig)
	})
	return out
}

// Overridable returns the resolved methods a subclass may replace.
func (c *Class) Overridable() []*Method {
	var out []*Method
	for _, m := range c.Methods() {
		if m.Overridable() {
			out = append(out, m)
		}
	}
	return out
}

// AbstractMethods returns interface methods that have neither a class body
// nor a default.
func (c *Class) AbstractMethods() []ir.MethodSignature {
	var out []ir.MethodSignature
	seen := make(map[string]bool)
	for _, i := range c.AllInterfaces() {
		for _, im := range i.Methods() {
			key := im.sig.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := c.Lookup(im.sig); !ok {
				out = append(out, im.sig)
			}
		}
	}
	slices.SortFunc(out, ir.CompareSignatures)
	return out
}

// Constructors returns the declared constructors, or the implicit no-arg
// constructor when the class declares none.
func (c *Class) Constructors() []*Constructor {
	if len(c.ctors) == 0 {
		return []*Constructor{{owner: c, implicit: true}}
	}
	return slices.Clone(c.ctors)
}

// Constructor finds the constructor with exactly these parameter types.
func (c *Class) Constructor(params []ir.TypeRef) (*Constructor, bool) {
	for _, ctor := range c.Constructors() {
		if slices.Equal(ctor.params, params) {
			return ctor, true
		}
	}
	return nil, false
}

// Fields returns every field in the chain, root class first.
func (c *Class) Fields() []*Field {
	var chain []*Class
	for k := c; k != nil; k = k.super {
		chain = append(chain, k)
	}
	var out []*Field
	for i := len(chain) - 1; i >= 0; i-- {
		for _, name := range chain[i].fieldOrder {
			out = append(out, chain[i].fields[name])
		}
	}
	return out
}

// Field finds a field by name anywhere in the chain.
func (c *Class) Field(name string) (*Field, bool) {
	for k := c; k != nil; k = k.super {
		if f, ok := k.fields[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// IsSubclassOf reports whether c is other or descends from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for k := c; k != nil; k = k.super {
		if k == other {
			return true
		}
	}
	return false
}

// Implements reports whether c or an ancestor implements i, directly or
// through interface extension.
func (c *Class) Implements(i *Interface) bool {
	for _, own := range c.AllInterfaces() {
		if own.Extends(i) {
			return true
		}
	}
	return false
}

// AllInterfaces returns the interfaces implemented anywhere in the chain,
// most derived class first, without duplicates.
func (c *Class) AllInterfaces() []*Interface {
	var out []*Interface
	for k := c; k != nil; k = k.super {
		for _, i := range k.interfaces {
			if !slices.Contains(out, i) {
				out = append(out, i)
			}
		}
	}
	return out
}

// Conforms reports whether instances of c can be used where t is expected.
func (c *Class) Conforms(t ir.TypeRef) bool {
	if t == ir.Any {
		return true
	}
	for k := c; k != nil; k = k.super {
		if k.name == t {
			return true
		}
	}
	for _, i := range c.AllInterfaces() {
		if i.ConformsTo(t) {
			return true
		}
	}
	return false
}

// Instantiate creates an instance through the constructor with the given
// parameter types. binding is opaque per-type data readable by method
// bodies through Instance.Binding.
func (c *Class) Instantiate(binding any, params []ir.TypeRef, args []any) (*Instance, error) {
	ctor, ok := c.Constructor(params)
	if !ok {
		return nil, errors.NoMatchingConstructor(string(c.name), ir.Sig("<init>", params...).String(),
			"no constructor with these parameter types")
	}
	if ctor.visibility == Private {
		return nil, errors.NoMatchingConstructor(string(c.name), ctor.Signature().String(),
			"constructor is private")
	}

	inst := newInstance(c, binding)
	if err := ctor.construct(inst, args); err != nil {
		return nil, err
	}
	return inst, nil
}

// construct runs the superclass constructor, then this constructor's body.
func (ctor *Constructor) construct(inst *Instance, args []any) error {
	c := ctor.owner
	args, err := ConvertArgs(string(c.name), ctor.Signature(), args)
	if err != nil {
		return errors.NoMatchingConstructor(string(c.name), ctor.Signature().String(), err.Error())
	}

	if c.super != nil {
		var superParams []ir.TypeRef
		var superArgs []any
		if ctor.chain != nil {
			superParams, superArgs = ctor.chain(args)
		}
		superCtor, ok := c.super.Constructor(superParams)
		if !ok || superCtor.visibility == Private {
			return errors.NoMatchingConstructor(string(c.super.name), ir.Sig("<init>", superParams...).String(),
				fmt.Sprintf("%s chains to a constructor its superclass does not expose", c.name))
		}
		if err := superCtor.construct(inst, superArgs); err != nil {
			return err
		}
	}

	if ctor.init != nil {
		if err := ctor.init(inst, args); err != nil {
			return errors.Wrapf(err, "constructing %s", c.name)
		}
	}
	return nil
}
