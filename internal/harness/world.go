package harness

import (
	"fmt"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
	"github.com/roach88/synth/internal/synth"
)

// world holds the base types a scenario declares.
type world struct {
	classes    map[string]*meta.Class
	interfaces map[string]*meta.Interface
}

// bodyFunc is the common form every scenario body compiles to. super is
// nil outside overrides.
type bodyFunc func(self meta.Object, args []any, super func([]any) (any, error)) (any, error)

func newWorld(s *Scenario) (*world, error) {
	w := &world{
		classes:    map[string]*meta.Class{"Object": meta.ObjectClass},
		interfaces: make(map[string]*meta.Interface),
	}
	for _, def := range s.Interfaces {
		if err := w.declareInterface(def); err != nil {
			return nil, fmt.Errorf("interface %s: %w", def.Name, err)
		}
	}
	for _, def := range s.Classes {
		if err := w.declareClass(def); err != nil {
			return nil, fmt.Errorf("class %s: %w", def.Name, err)
		}
	}
	return w, nil
}

// lookup resolves a base type name.
func (w *world) lookup(name string) (meta.Type, error) {
	if c, ok := w.classes[name]; ok {
		return c, nil
	}
	if i, ok := w.interfaces[name]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

func (w *world) interfaceList(names []string) ([]*meta.Interface, error) {
	out := make([]*meta.Interface, 0, len(names))
	for _, name := range names {
		i, ok := w.interfaces[name]
		if !ok {
			return nil, fmt.Errorf("unknown interface %q", name)
		}
		out = append(out, i)
	}
	return out, nil
}

func (w *world) declareInterface(def InterfaceDef) error {
	extends, err := w.interfaceList(def.Extends)
	if err != nil {
		return err
	}
	return declare(func() {
		iface := meta.NewInterface(ir.TypeRef(def.Name), extends...)
		for _, m := range def.Methods {
			var dflt meta.DefaultFunc
			if m.Default != nil {
				fn, cerr := compileBody(*m.Default)
				if cerr != nil {
					panic(fmt.Sprintf("default %s: %v", m.Name, cerr))
				}
				dflt = func(self meta.Object, args []any) (any, error) { return fn(self, args, nil) }
			}
			iface.AddMethod(ir.Sig(m.Name, refs(m.Params)...), dflt)
		}
		w.interfaces[def.Name] = iface
	})
}

func (w *world) declareClass(def ClassDef) error {
	var super *meta.Class
	if def.Extends != "" {
		var ok bool
		if super, ok = w.classes[def.Extends]; !ok {
			return fmt.Errorf("unknown superclass %q", def.Extends)
		}
	}
	ifaces, err := w.interfaceList(def.Implements)
	if err != nil {
		return err
	}

	return declare(func() {
		c := meta.NewClass(ir.TypeRef(def.Name), super)
		if def.Final {
			c.SetFinal()
		}
		c.Implement(ifaces...)
		for _, f := range def.Fields {
			typ := ir.TypeRef(f.Type)
			initial := f.Initial
			if initial == nil {
				initial = typ.Zero()
			}
			c.AddField(f.Name, typ, initial)
		}
		for _, ctor := range def.Constructors {
			c.AddConstructor(refs(ctor.Params), assigner(ctor.Assign), constructorOptions(ctor)...)
		}
		for _, m := range def.Methods {
			fn, cerr := compileBody(m.Body)
			if cerr != nil {
				panic(fmt.Sprintf("method %s: %v", m.Name, cerr))
			}
			body := func(self *meta.Instance, args []any) (any, error) { return fn(self, args, nil) }
			c.AddMethod(ir.Sig(m.Name, refs(m.Params)...), body, methodOptions(m)...)
		}
		w.classes[def.Name] = c
	})
}

// build synthesizes one scenario type.
func (w *world) build(def TypeDef, defaultBackend string, opts []synth.Option) (*synth.Type, error) {
	base, err := w.lookup(def.Base)
	if err != nil {
		return nil, err
	}
	ifaces, err := w.interfaceList(def.Interfaces)
	if err != nil {
		return nil, err
	}

	backend := def.Backend
	if backend == "" {
		backend = defaultBackend
	}
	tag, err := synth.ParseBackend(backend)
	if err != nil {
		return nil, err
	}
	if tag != "" {
		opts = append(opts, synth.WithBackend(tag))
	}

	b := synth.NewBuilder(base, opts...).SetInterfaces(ifaces...)
	for _, o := range def.Overrides {
		fn, err := compileBody(o.Body)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", o.Name, err)
		}
		if err := b.Override(o.Name, refs(o.Params), behaviorOf(fn)); err != nil {
			return nil, err
		}
	}
	for _, p := range def.Properties {
		if p.Initial != nil {
			err = b.AddPropertyValue(p.Name, ir.TypeRef(p.Type), p.Initial)
		} else {
			err = b.AddProperty(p.Name, ir.TypeRef(p.Type))
		}
		if err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// declare runs fn and turns object-model panics into errors.
func declare(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}

func compileBody(b Body) (bodyFunc, error) {
	switch {
	case b.Go != "":
		fn, err := compileGo(b.Go, b.Imports)
		if err != nil {
			return nil, err
		}
		return func(_ meta.Object, args []any, super func([]any) (any, error)) (any, error) {
			if super == nil {
				super = noSuper
			}
			return fn(args, super)
		}, nil
	case b.Super:
		return func(_ meta.Object, args []any, super func([]any) (any, error)) (any, error) {
			return super(args)
		}, nil
	case b.Wrap != "":
		format := b.Wrap
		return func(_ meta.Object, args []any, super func([]any) (any, error)) (any, error) {
			res, err := super(args)
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf(format, res), nil
		}, nil
	case b.Self != "":
		name := b.Self
		return func(self meta.Object, args []any, _ func([]any) (any, error)) (any, error) {
			return self.Send(name, args...)
		}, nil
	case b.Field != "":
		field := b.Field
		return func(self meta.Object, _ []any, _ func([]any) (any, error)) (any, error) {
			inst, ok := self.(*meta.Instance)
			if !ok {
				return nil, errors.UnsupportedOperation(string(self.TypeName()), field,
					"field access needs a class instance")
			}
			return inst.Get(field)
		}, nil
	case b.Arg != nil:
		idx := *b.Arg
		return func(self meta.Object, args []any, _ func([]any) (any, error)) (any, error) {
			if idx >= len(args) {
				return nil, errors.InvalidArgument(string(self.TypeName()), "",
					fmt.Sprintf("no argument %d", idx))
			}
			return args[idx], nil
		}, nil
	default:
		v := b.Value
		return func(meta.Object, []any, func([]any) (any, error)) (any, error) { return v, nil }, nil
	}
}

func behaviorOf(fn bodyFunc) synth.Behavior {
	return func(self meta.Object, args []any, super synth.SuperInvoker) (any, error) {
		return fn(self, args, func(a []any) (any, error) { return super.Invoke(a...) })
	}
}

func noSuper([]any) (any, error) {
	return nil, errors.UnsupportedOperation("", "super", "only overrides can invoke a base body")
}

func assigner(fields []string) meta.InitFunc {
	if len(fields) == 0 {
		return nil
	}
	return func(self *meta.Instance, args []any) error {
		for i, name := range fields {
			if err := self.Set(name, args[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

func constructorOptions(def ConstructorDef) []meta.Option {
	opts := visibilityOptions(def.Visibility)
	if def.Chain {
		opts = append(opts, meta.ChainSuper(meta.ForwardArgs(refs(def.Params))))
	}
	return opts
}

func methodOptions(def MethodDef) []meta.Option {
	opts := visibilityOptions(def.Visibility)
	if def.Final {
		opts = append(opts, meta.Final())
	}
	if def.Static {
		opts = append(opts, meta.Static())
	}
	return opts
}

func visibilityOptions(v string) []meta.Option {
	switch v {
	case "protected":
		return []meta.Option{meta.ProtectedMember()}
	case "private":
		return []meta.Option{meta.PrivateMember()}
	}
	return nil
}

func refs(names []string) []ir.TypeRef {
	if len(names) == 0 {
		return nil
	}
	return ir.Refs(names...)
}
