package synth

import (
	"maps"

	"github.com/roach88/synth/internal/ir"
)

// Binding is the per-Type data a shape dispatches through: the override
// behaviors and the property initial values.
type Binding struct {
	behaviors map[string]Behavior
	initial   map[string]any
}

func newBinding() *Binding {
	return &Binding{
		behaviors: make(map[string]Behavior),
		initial:   make(map[string]any),
	}
}

// Behavior returns the behavior registered for sig.
func (b *Binding) Behavior(sig ir.MethodSignature) (Behavior, bool) {
	if b == nil {
		return nil, false
	}
	fn, ok := b.behaviors[sig.String()]
	return fn, ok
}

// Initial returns the initial value of a property, if one was given.
func (b *Binding) Initial(property string) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.initial[property]
	return v, ok
}

// Initials returns a copy of every property initial value.
func (b *Binding) Initials() map[string]any {
	if b == nil {
		return nil
	}
	return maps.Clone(b.initial)
}
