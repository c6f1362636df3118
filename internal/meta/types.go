package meta

import (
	"github.com/roach88/synth/internal/ir"
)

// Kind distinguishes the two shapes a base type can have.
type Kind int

const (
	// KindClass is a concrete, possibly extensible class.
	KindClass Kind = iota + 1
	// KindInterface is a set of signatures with optional default bodies.
	KindInterface
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	}
	return "unknown"
}

// Type is a base type: *Class or *Interface.
type Type interface {
	Name() ir.TypeRef
	Kind() Kind
}

// Object is anything calls can be dispatched on: class instances and the
// forwarding proxies built by package synth.
type Object interface {
	TypeName() ir.TypeRef
	Conforms(t ir.TypeRef) bool
	Call(sig ir.MethodSignature, args ...any) (any, error)
	Send(name string, args ...any) (any, error)
	Signatures() []ir.MethodSignature
}

// Func is a class method body. self is the receiving instance, which may be
// an instance of a subclass.
type Func func(self *Instance, args []any) (any, error)

// DefaultFunc is an interface default body. It only sees the Object
// interface of the receiver.
type DefaultFunc func(self Object, args []any) (any, error)

// InitFunc is a constructor body. It runs after the superclass constructor.
type InitFunc func(self *Instance, args []any) error

// ChainFunc selects the superclass constructor a constructor delegates to,
// and the arguments to pass it.
type ChainFunc func(args []any) (params []ir.TypeRef, superArgs []any)

// Visibility of a member.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// String implements fmt.Stringer.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "unknown"
}

type memberConfig struct {
	visibility Visibility
	final      bool
	static     bool
	chain      ChainFunc
}

// Option configures a method or constructor at declaration time.
type Option func(*memberConfig)

// Final marks a method as non-overridable.
func Final() Option {
	return func(c *memberConfig) { c.final = true }
}

// Static marks a method as static. Static methods are never overridable.
func Static() Option {
	return func(c *memberConfig) { c.static = true }
}

// WithVisibility sets member visibility (default Public).
func WithVisibility(v Visibility) Option {
	return func(c *memberConfig) { c.visibility = v }
}

// ProtectedMember is shorthand for WithVisibility(Protected).
func ProtectedMember() Option { return WithVisibility(Protected) }

// PrivateMember is shorthand for WithVisibility(Private).
func PrivateMember() Option { return WithVisibility(Private) }

// ChainSuper makes a constructor delegate to a specific superclass
// constructor. Without it, constructors delegate to the no-arg one.
func ChainSuper(fn ChainFunc) Option {
	return func(c *memberConfig) { c.chain = fn }
}

// ForwardArgs is a ChainFunc that passes every argument through to the
// superclass constructor with the given parameter types.
func ForwardArgs(params []ir.TypeRef) ChainFunc {
	return func(args []any) ([]ir.TypeRef, []any) {
		return params, args
	}
}

func applyOptions(opts []Option) memberConfig {
	var cfg memberConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
