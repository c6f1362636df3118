package synth

import (
	"slices"
	"sync"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
)

// BackendTag names a synthesis strategy.
type BackendTag string

const (
	// BackendSubclass extends the base class with a synthesized subclass.
	BackendSubclass BackendTag = "subclass"
	// BackendForwarding routes every call through a proxy trap.
	BackendForwarding BackendTag = "forwarding"
)

// String implements fmt.Stringer.
func (t BackendTag) String() string { return string(t) }

// Request is a normalised synthesis request as a backend sees it.
type Request struct {
	// Name is the name the synthesized type will carry.
	Name ir.TypeRef
	// Key is the structural key the shape is cached under.
	Key ir.Key
	// Base is the class or interface being extended or implemented.
	Base meta.Type
	// Interfaces are the extra interfaces, sorted by name.
	Interfaces []*meta.Interface
	// Overrides are the override signatures, sorted.
	Overrides []ir.MethodSignature
	// Properties are sorted by name. Initial values live in the Binding.
	Properties []ir.PropertySpec
}

// Origin tells where a member of a synthesized type gets its body.
type Origin string

const (
	OriginOverride  Origin = "override"
	OriginInherited Origin = "inherited"
	OriginDefault   Origin = "default"
	OriginDelegate  Origin = "delegate"
	OriginProperty  Origin = "property"
	OriginAbstract  Origin = "abstract"
)

// Member is one entry of a synthesized type's dispatch table.
type Member struct {
	Signature ir.MethodSignature `json:"signature"`
	Origin    Origin             `json:"origin"`
	// DeclaredIn is the type holding the body that runs when the member is
	// not overridden.
	DeclaredIn ir.TypeRef `json:"declared_in"`
}

// Shape is the cached, behavior-free structure of a synthesized type.
// Shapes are immutable once returned by a backend.
type Shape interface {
	Name() ir.TypeRef
	Tag() BackendTag
	Key() ir.Key
	// Base is the type the shape was synthesized from.
	Base() meta.Type
	// Members lists the dispatch table, sorted by signature.
	Members() []Member
	// Constructors lists the accepted parameter lists.
	Constructors() [][]ir.TypeRef
	// Instantiate creates an instance dispatching through b.
	Instantiate(b *Binding, params []ir.TypeRef, args []any) (meta.Object, error)
}

// Backend turns a Request into a Shape. Synthesize must not return a
// partially built shape: it either succeeds completely or fails.
type Backend interface {
	Tag() BackendTag
	Synthesize(req Request) (Shape, error)
}

var (
	backendsMu sync.RWMutex
	backends   = map[BackendTag]Backend{}
)

func init() {
	RegisterBackend(subclassBackend{})
	RegisterBackend(forwardingBackend{})
}

// RegisterBackend adds a backend. Panics if the tag is already taken.
func RegisterBackend(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, dup := backends[b.Tag()]; dup {
		panic("synth: backend already registered: " + string(b.Tag()))
	}
	backends[b.Tag()] = b
}

// Backends returns the registered backend tags, sorted.
func Backends() []BackendTag {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	tags := make([]BackendTag, 0, len(backends))
	for tag := range backends {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// LookupBackend finds a backend by tag.
func LookupBackend(tag BackendTag) (Backend, bool) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[tag]
	return b, ok
}

// DefaultBackendFor picks the backend used when none is pinned:
// forwarding for interfaces, subclass for classes.
func DefaultBackendFor(base meta.Type) BackendTag {
	if base.Kind() == meta.KindInterface {
		return BackendForwarding
	}
	return BackendSubclass
}

// ParseBackend maps a configuration value to a tag. "" and "auto" mean
// no pin and yield "".
func ParseBackend(s string) (BackendTag, error) {
	switch s {
	case "", "auto":
		return "", nil
	}
	if _, ok := LookupBackend(BackendTag(s)); !ok {
		return "", errors.InvalidArgument("", s, "unknown backend")
	}
	return BackendTag(s), nil
}

func sortMembers(ms []Member) {
	slices.SortFunc(ms, func(a, b Member) int {
		return ir.CompareSignatures(a.Signature, b.Signature)
	})
}
