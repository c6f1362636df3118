package meta

import (
	"fmt"
	"reflect"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
)

// Instance is a live object of a Class. Instances are not synchronised;
// share them across goroutines only with external locking.
type Instance struct {
	class   *Class
	fields  map[string]any
	native  reflect.Value
	binding any
}

var _ Object = (*Instance)(nil)

func newInstance(c *Class, binding any) *Instance {
	inst := &Instance{
		class:   c,
		fields:  make(map[string]any),
		binding: binding,
	}
	for _, f := range c.Fields() {
		inst.fields[f.name] = f.initial
	}
	return inst
}

// Class returns the instance's runtime class.
func (i *Instance) Class() *Class { return i.class }

// TypeName implements Object.
func (i *Instance) TypeName() ir.TypeRef { return i.class.name }

// Binding returns the per-type data the instance was created with.
func (i *Instance) Binding() any { return i.binding }

// Native returns the wrapped Go value for classes derived with FromGo.
func (i *Instance) Native() reflect.Value { return i.native }

// SetNative attaches a Go value. Constructors of FromGo classes call this.
func (i *Instance) SetNative(v reflect.Value) { i.native = v }

// Get reads a field.
func (i *Instance) Get(name string) (any, error) {
	if _, ok := i.class.Field(name); !ok {
		return nil, errors.InvalidArgument(string(i.class.name), name, "no such field")
	}
	return i.fields[name], nil
}

// MustGet is Get for fields known to exist.
func (i *Instance) MustGet(name string) any {
	v, err := i.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set writes a field after checking the value against its declared type.
func (i *Instance) Set(name string, v any) error {
	f, ok := i.class.Field(name)
	if !ok {
		return errors.InvalidArgument(string(i.class.name), name, "no such field")
	}
	converted, ok := f.typ.Convert(v)
	if !ok {
		return errors.InvalidArgument(string(i.class.name), name,
			fmt.Sprintf("value of type %T is not a %s", v, f.typ))
	}
	i.fields[name] = converted
	return nil
}

// Call dispatches sig virtually on the runtime class. Private methods are
// not reachable here; bodies that need one use Method.Invoke.
func (i *Instance) Call(sig ir.MethodSignature, args ...any) (any, error) {
	m, ok := i.class.Lookup(sig)
	if !ok {
		if _, abstract := i.class.LookupInterfaceMethod(sig); abstract {
			return nil, errors.MethodNotFound(string(i.class.name), sig.String(),
				"method is abstract and has no implementation")
		}
		return nil, errors.MethodNotFound(string(i.class.name), sig.String(), "no such method")
	}
	if m.visibility == Private {
		return nil, errors.MethodNotFound(string(i.class.name), sig.String(),
			"method is private to "+string(m.DeclaredIn()))
	}
	args, err := ConvertArgs(string(i.class.name), sig, args)
	if err != nil {
		return nil, err
	}
	return m.body(i, args)
}

// Send resolves a method by name and argument values, then calls it.
func (i *Instance) Send(name string, args ...any) (any, error) {
	sig, err := Resolve(i.class.name, i.Signatures(), name, args)
	if err != nil {
		return nil, err
	}
	return i.Call(sig, args...)
}

// Conforms implements Object and ir.Conformer.
func (i *Instance) Conforms(t ir.TypeRef) bool { return i.class.Conforms(t) }

// Signatures returns every callable signature, sorted. Private methods
// are left out.
func (i *Instance) Signatures() []ir.MethodSignature {
	methods := i.class.Methods()
	out := make([]ir.MethodSignature, 0, len(methods))
	for _, m := range methods {
		if m.visibility != Private {
			out = append(out, m.sig)
		}
	}
	return out
}

// String implements fmt.Stringer.
func (i *Instance) String() string {
	return fmt.Sprintf("%s%v", i.class.name, i.fields)
}
