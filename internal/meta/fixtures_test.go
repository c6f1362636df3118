package meta

import (
	"github.com/roach88/synth/internal/ir"
)

func constant(v any) Func {
	return func(*Instance, []any) (any, error) { return v, nil }
}

// animalClass declares example.Animal with a name field, a one-arg
// constructor and a mix of overridable and sealed methods.
func animalClass() *Class {
	c := NewClass("example.Animal", nil)
	c.AddField("name", ir.String, "")
	c.AddConstructor(nil, nil)
	c.AddConstructor(ir.Refs("string"), func(self *Instance, args []any) error {
		return self.Set("name", args[0])
	})
	c.AddMethod(ir.Sig("speak"), constant("..."))
	c.AddMethod(ir.Sig("name"), func(self *Instance, _ []any) (any, error) {
		return self.Get("name")
	})
	c.AddMethod(ir.Sig("kingdom"), constant("animalia"), Final())
	c.AddMethod(ir.Sig("count"), constant(0), Static())
	c.AddMethod(ir.Sig("secret"), constant("hidden"), PrivateMember())
	c.AddMethod(ir.Sig("grow", ir.Int), constant(nil), ProtectedMember())
	return c
}

func greeterInterface() *Interface {
	i := NewInterface("example.Greeter")
	i.AddMethod(ir.Sig("greet", ir.String), nil)
	i.AddMethod(ir.Sig("wave"), func(self Object, _ []any) (any, error) {
		return "wave from " + string(self.TypeName()), nil
	})
	return i
}
