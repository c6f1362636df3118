package meta

import (
	"fmt"
	"strings"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
)

// Method is a class method declaration, or an interface default resolved
// onto a class.
type Method struct {
	sig        ir.MethodSignature
	visibility Visibility
	final      bool
	static     bool
	body       Func
	owner      *Class
	iface      *Interface
}

// Signature returns the method's identity.
func (m *Method) Signature() ir.MethodSignature { return m.sig }

// Visibility returns the declared visibility.
func (m *Method) Visibility() Visibility { return m.visibility }

// Final reports whether the method is marked final.
func (m *Method) Final() bool { return m.final }

// Static reports whether the method is static.
func (m *Method) Static() bool { return m.static }

// Owner returns the declaring class, or nil for interface defaults.
func (m *Method) Owner() *Class { return m.owner }

// Interface returns the declaring interface for defaults, or nil.
func (m *Method) Interface() *Interface { return m.iface }

// IsDefault reports whether the method is an interface default body.
func (m *Method) IsDefault() bool { return m.iface != nil }

// Overridable reports whether a subclass may replace this method:
// public or protected, non-final, non-static.
func (m *Method) Overridable() bool {
	return m.visibility != Private && !m.final && !m.static
}

// DeclaredIn returns the name of the class or interface declaring m.
func (m *Method) DeclaredIn() ir.TypeRef {
	if m.iface != nil {
		return m.iface.name
	}
	return m.owner.name
}

// Invoke runs this exact body on self, bypassing virtual dispatch.
// This is how super calls reach the shadowed implementation.
func (m *Method) Invoke(self *Instance, args []any) (any, error) {
	args, err := ConvertArgs(string(m.DeclaredIn()), m.sig, args)
	if err != nil {
		return nil, err
	}
	return m.body(self, args)
}

// CheckArgs validates arity and parameter acceptance for a call.
func CheckArgs(typ string, sig ir.MethodSignature, args []any) error {
	_, err := ConvertArgs(typ, sig, args)
	return err
}

// ConvertArgs validates args like CheckArgs and returns a copy with each
// value in its parameter's canonical representation, so bodies can assert
// args[i].(int64) on an Int64 parameter.
func ConvertArgs(typ string, sig ir.MethodSignature, args []any) ([]any, error) {
	if len(args) != len(sig.Params) {
		return nil, errors.InvalidArgument(typ, sig.String(),
			fmt.Sprintf("expected %d argument(s), got %d", len(sig.Params), len(args)))
	}
	if len(args) == 0 {
		return args, nil
	}
	out := make([]any, len(args))
	for i, p := range sig.Params {
		v, ok := p.Convert(args[i])
		if !ok {
			return nil, errors.InvalidArgument(typ, sig.String(),
				fmt.Sprintf("argument %d is not a %s", i, p))
		}
		out[i] = v
	}
	return out, nil
}

// Resolve picks the single signature named name whose parameters accept
// args. Zero or several candidates fail with METHOD_NOT_FOUND.
func Resolve(typ ir.TypeRef, sigs []ir.MethodSignature, name string, args []any) (ir.MethodSignature, error) {
	var matches []ir.MethodSignature
	for _, s := range sigs {
		if s.Name != name || len(s.Params) != len(args) {
			continue
		}
		if CheckArgs(string(typ), s, args) == nil {
			matches = append(matches, s)
		}
	}

	member := fmt.Sprintf("%s/%d", name, len(args))
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return ir.MethodSignature{}, errors.MethodNotFound(string(typ), member,
			"no method accepts these arguments")
	}

	names := make([]string, len(matches))
	for i, s := range matches {
		names[i] = s.String()
	}
	return ir.MethodSignature{}, errors.MethodNotFound(string(typ), member,
		"ambiguous call, candidates: "+strings.Join(names, ", "))
}
