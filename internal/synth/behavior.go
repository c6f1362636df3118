package synth

import (
	"sync/atomic"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
)

// Behavior is the body supplied for an overridden method. self is the
// receiving object, args the call arguments, super the handle to the
// implementation being shadowed.
type Behavior func(self meta.Object, args []any, super SuperInvoker) (any, error)

// SuperInvoker runs the shadowed implementation of the intercepted method.
// It is valid only while the intercepted call is running.
type SuperInvoker interface {
	Invoke(args ...any) (any, error)
}

// SuperFunc is a shadowed implementation as seen by a trampoline. A nil
// SuperFunc means there is no implementation to fall back to.
type SuperFunc func(args []any) (any, error)

// superCall is the SuperInvoker handed to one intercepted call.
type superCall struct {
	typ     ir.TypeRef
	sig     ir.MethodSignature
	target  SuperFunc
	expired atomic.Bool
}

// Invoke implements SuperInvoker.
func (s *superCall) Invoke(args ...any) (any, error) {
	if s.expired.Load() {
		return nil, errors.UnsupportedOperation(string(s.typ), s.sig.String(),
			"super invoker used after its call returned")
	}
	if s.target == nil {
		return nil, errors.UnsupportedOperation(string(s.typ), s.sig.String(),
			"no base implementation to invoke")
	}
	args, err := meta.ConvertArgs(string(s.typ), s.sig, args)
	if err != nil {
		return nil, err
	}
	return s.target(args)
}

// Intercept runs behavior for one call with a fresh SuperInvoker bound to
// target. The invoker expires when Intercept returns.
func Intercept(self meta.Object, sig ir.MethodSignature, behavior Behavior, args []any, target SuperFunc) (any, error) {
	sup := &superCall{typ: self.TypeName(), sig: sig, target: target}
	defer sup.expired.Store(true)
	return behavior(self, args, sup)
}

// PassThrough is a Behavior that only calls super. Overriding with it is
// observably the same as not overriding.
func PassThrough(_ meta.Object, args []any, super SuperInvoker) (any, error) {
	return super.Invoke(args...)
}

// Returning is a Behavior that ignores its arguments and returns v.
func Returning(v any) Behavior {
	return func(meta.Object, []any, SuperInvoker) (any, error) {
		return v, nil
	}
}
