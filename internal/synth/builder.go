package synth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/logger"
	"github.com/roach88/synth/internal/meta"
	"github.com/roach88/synth/internal/typecache"
)

var defaultCache = typecache.New[Shape]()

// DefaultCache returns the process-wide shape cache. It is unbounded and
// lives as long as the process.
func DefaultCache() *typecache.Cache[Shape] { return defaultCache }

// Observer is told about every shape a cache synthesizes, once per key.
type Observer interface {
	Synthesized(rec ir.SynthesisRecord) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(rec ir.SynthesisRecord) error

// Synthesized implements Observer.
func (f ObserverFunc) Synthesized(rec ir.SynthesisRecord) error { return f(rec) }

// Option configures a Builder.
type Option func(*Builder)

// WithBackend pins the backend instead of choosing by base kind.
func WithBackend(tag BackendTag) Option {
	return func(b *Builder) { b.backend = tag }
}

// WithCache uses c instead of the process-wide cache.
func WithCache(c *typecache.Cache[Shape]) Option {
	return func(b *Builder) { b.cache = c }
}

// WithObserver registers an observer for shapes this builder synthesizes.
// Observer errors are logged and never fail the build.
func WithObserver(o Observer) Option {
	return func(b *Builder) { b.observers = append(b.observers, o) }
}

type override struct {
	sig      ir.MethodSignature
	behavior Behavior
}

// Builder accumulates a synthesis request. Registration errors surface
// immediately; Build resolves the request against the base type.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	base       meta.Type
	interfaces []*meta.Interface
	overrides  []override
	properties []ir.PropertySpec
	backend    BackendTag
	cache      *typecache.Cache[Shape]
	observers  []Observer

	built *Type
}

// NewBuilder starts a request for base.
func NewBuilder(base meta.Type, opts ...Option) *Builder {
	b := &Builder{base: base, cache: defaultCache}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewProxyClass starts a request aimed at method interception on base,
// implementing the given extra interfaces.
func NewProxyClass(base meta.Type, interfaces []*meta.Interface, opts ...Option) *Builder {
	return NewBuilder(base, opts...).SetInterfaces(interfaces...)
}

// NewBeanClass starts a request aimed at adding properties. It pins the
// subclass backend, the only one that can add storage.
func NewBeanClass(base meta.Type, opts ...Option) *Builder {
	return NewBuilder(base, append([]Option{WithBackend(BackendSubclass)}, opts...)...)
}

// Bean builds a data-holder type extending base with props.
func Bean(base meta.Type, props ...ir.PropertySpec) (*Type, error) {
	b := NewBeanClass(base)
	for _, p := range props {
		if err := b.addProperty(p); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// Base returns the base type.
func (b *Builder) Base() meta.Type { return b.base }

// SetInterfaces replaces the extra interfaces.
func (b *Builder) SetInterfaces(interfaces ...*meta.Interface) *Builder {
	b.interfaces = slices.Clone(interfaces)
	b.built = nil
	return b
}

// UseBackend pins the backend. An empty tag restores the default choice.
func (b *Builder) UseBackend(tag BackendTag) *Builder {
	b.backend = tag
	b.built = nil
	return b
}

// OverrideMethod registers behavior for sig. Registering the same
// signature twice fails with DUPLICATE_OVERRIDE.
func (b *Builder) OverrideMethod(sig ir.MethodSignature, behavior Behavior) error {
	if err := sig.Validate(); err != nil {
		return errors.InvalidArgument(string(b.base.Name()), sig.String(), err.Error())
	}
	if behavior == nil {
		return errors.InvalidArgument(string(b.base.Name()), sig.String(), "nil behavior")
	}
	for _, o := range b.overrides {
		if o.sig.Equal(sig) {
			return errors.DuplicateOverride(string(b.base.Name()), sig.String())
		}
	}
	b.overrides = append(b.overrides, override{sig: ir.Sig(sig.Name, sig.Params...), behavior: behavior})
	b.built = nil
	return nil
}

// Override is OverrideMethod taking the signature as name and parameter types.
func (b *Builder) Override(name string, params []ir.TypeRef, behavior Behavior) error {
	return b.OverrideMethod(ir.Sig(name, params...), behavior)
}

// AddProperty registers a property starting at its type's zero value.
func (b *Builder) AddProperty(name string, typ ir.TypeRef) error {
	return b.addProperty(ir.Property(name, typ))
}

// AddPropertyValue registers a property with an initial value.
func (b *Builder) AddPropertyValue(name string, typ ir.TypeRef, initial any) error {
	return b.addProperty(ir.PropertyWithValue(name, typ, initial))
}

func (b *Builder) addProperty(p ir.PropertySpec) error {
	if err := p.Validate(); err != nil {
		return errors.InvalidArgument(string(b.base.Name()), p.Name, err.Error())
	}
	for _, existing := range b.properties {
		if existing.Name == p.Name {
			return errors.DuplicateProperty(string(b.base.Name()), p.Name, "property already registered")
		}
	}
	b.properties = append(b.properties, p)
	b.built = nil
	return nil
}

// Key derives the structural key of the current request.
func (b *Builder) Key() ir.Key {
	return ir.NewKey(b.base.Name(), b.interfaceNames(), b.signatures(), b.properties, string(b.resolvedBackend()))
}

// Build synthesizes the type, or returns the cached shape for an equal
// request. Calling Build again without mutating the builder returns the
// same *Type.
func (b *Builder) Build() (*Type, error) {
	if b.built != nil {
		return b.built, nil
	}
	if err := b.checkInterfaces(); err != nil {
		return nil, err
	}

	tag := b.resolvedBackend()
	backend, ok := LookupBackend(tag)
	if !ok {
		return nil, errors.UnsupportedOperation(string(b.base.Name()), "", fmt.Sprintf("unknown backend %q", tag))
	}

	key := b.Key()
	hash, err := key.Hash()
	if err != nil {
		return nil, errors.Wrap(err, "hashing synthesis key")
	}
	req := Request{
		Name:       SyntheticName(b.base.Name(), tag, hash),
		Key:        key,
		Base:       b.base,
		Interfaces: b.sortedInterfaces(),
		Overrides:  key.Overrides,
		Properties: b.sortedProperties(),
	}

	log := logger.Named("synth")
	shape, created, err := b.cache.GetOrCreate(b.cacheKey(hash, req.Interfaces), func() (Shape, error) {
		return backend.Synthesize(req)
	})
	if err != nil {
		log.Debugw("build failed", "key", key.String(), "error", err)
		return nil, err
	}
	if created {
		log.Infow("synthesized type", "name", shape.Name(), "backend", tag, "hash", hash[:12])
		b.notify(recordFor(shape, hash))
	} else {
		log.Debugw("reused cached type", "name", shape.Name(), "hash", hash[:12])
	}

	binding := newBinding()
	for _, o := range b.overrides {
		binding.behaviors[o.sig.String()] = o.behavior
	}
	for _, p := range b.properties {
		if p.HasInitial {
			binding.initial[p.Name] = p.Initial
		}
	}

	b.built = &Type{shape: shape, binding: binding, hash: hash}
	return b.built, nil
}

// MustBuild is Build for setup code that cannot fail.
func (b *Builder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (b *Builder) notify(rec ir.SynthesisRecord) {
	for _, o := range b.observers {
		if err := o.Synthesized(rec); err != nil {
			logger.Named("synth").Warnw("observer failed", "name", rec.TypeName, "error", err)
		}
	}
}

func (b *Builder) resolvedBackend() BackendTag {
	if b.backend != "" {
		return b.backend
	}
	return DefaultBackendFor(b.base)
}

// cacheKey scopes the structural hash to the identity of the base and
// interface values, so two distinct types that share a name never share a
// shape.
func (b *Builder) cacheKey(hash string, ifaces []*meta.Interface) string {
	var sb strings.Builder
	sb.WriteString(hash)
	fmt.Fprintf(&sb, "@%p", b.base)
	for _, i := range ifaces {
		fmt.Fprintf(&sb, ",%p", i)
	}
	return sb.String()
}

// checkInterfaces rejects nil entries and distinct interfaces sharing a
// name. The key identifies interfaces by name, so two of them would hash
// to the same type.
func (b *Builder) checkInterfaces() error {
	byName := make(map[ir.TypeRef]*meta.Interface, len(b.interfaces))
	for n, iface := range b.interfaces {
		if iface == nil {
			return errors.InvalidArgument(string(b.base.Name()), "",
				fmt.Sprintf("interface %d is nil", n))
		}
		if prev, ok := byName[iface.Name()]; ok && prev != iface {
			return errors.InvalidArgument(string(b.base.Name()), string(iface.Name()),
				"two distinct interfaces share this name")
		}
		byName[iface.Name()] = iface
	}
	return nil
}

func (b *Builder) sortedInterfaces() []*meta.Interface {
	out := slices.Clone(b.interfaces)
	slices.SortFunc(out, func(x, y *meta.Interface) int {
		return strings.Compare(string(x.Name()), string(y.Name()))
	})
	return slices.CompactFunc(out, func(x, y *meta.Interface) bool { return x == y })
}

func (b *Builder) interfaceNames() []ir.TypeRef {
	names := make([]ir.TypeRef, 0, len(b.interfaces))
	for _, iface := range b.interfaces {
		if iface != nil {
			names = append(names, iface.Name())
		}
	}
	return names
}

func (b *Builder) signatures() []ir.MethodSignature {
	sigs := make([]ir.MethodSignature, len(b.overrides))
	for i, o := range b.overrides {
		sigs[i] = o.sig
	}
	return sigs
}

func (b *Builder) sortedProperties() []ir.PropertySpec {
	out := slices.Clone(b.properties)
	slices.SortFunc(out, func(x, y ir.PropertySpec) int {
		return strings.Compare(x.Name, y.Name)
	})
	return out
}

// SyntheticName derives a synthesized type's name from its base, backend
// and key hash, e.g. "example.A$subclass$1f2e3d4c".
func SyntheticName(base ir.TypeRef, tag BackendTag, hash string) ir.TypeRef {
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return ir.TypeRef(fmt.Sprintf("%s$%s$%s", base, tag, hash))
}
