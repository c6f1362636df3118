package synth

import (
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
	"github.com/roach88/synth/internal/typecache"
)

func freshCache() Option { return WithCache(typecache.New[Shape]()) }

func constant(v any) meta.Func {
	return func(*meta.Instance, []any) (any, error) { return v, nil }
}

// classA is `class A { hello(): string { return "world" } }`.
func classA() *meta.Class {
	return meta.NewClass("example.A", nil).
		AddMethod(ir.Sig("hello"), constant("world"))
}

// interfaceB is `interface B { bb(): string }` with no default body.
func interfaceB() *meta.Interface {
	return meta.NewInterface("example.B").AddMethod(ir.Sig("bb"), nil)
}

// accountClass holds an int balance set by its one-arg constructor.
func accountClass() *meta.Class {
	c := meta.NewClass("example.Account", nil)
	c.AddField("balance", ir.Int, 0)
	c.AddConstructor(nil, nil)
	c.AddConstructor(ir.Refs("int"), func(self *meta.Instance, args []any) error {
		return self.Set("balance", args[0])
	})
	c.AddMethod(ir.Sig("balance"), func(self *meta.Instance, _ []any) (any, error) {
		return self.Get("balance")
	})
	c.AddMethod(ir.Sig("deposit", ir.Int), func(self *meta.Instance, args []any) (any, error) {
		next := self.MustGet("balance").(int) + args[0].(int)
		return next, self.Set("balance", next)
	})
	c.AddMethod(ir.Sig("describe"), func(self *meta.Instance, _ []any) (any, error) {
		kind, err := self.Call(ir.Sig("kind"))
		if err != nil {
			return nil, err
		}
		return kind.(string) + " account", nil
	})
	c.AddMethod(ir.Sig("kind"), constant("plain"))
	c.AddMethod(ir.Sig("id"), constant("acct"), meta.Final())
	c.AddMethod(ir.Sig("count"), constant(1), meta.Static())
	c.AddMethod(ir.Sig("audit"), constant("ok"), meta.PrivateMember())
	return c
}

// namedInterface has one abstract and one default method.
func namedInterface() *meta.Interface {
	i := meta.NewInterface("example.Named")
	i.AddMethod(ir.Sig("name"), nil)
	i.AddMethod(ir.Sig("greeting"), func(self meta.Object, _ []any) (any, error) {
		name, err := self.Call(ir.Sig("name"))
		if err != nil {
			return nil, err
		}
		return "hello, " + name.(string), nil
	})
	return i
}

func call(obj meta.Object, sig string, args ...any) (any, error) {
	return obj.Call(ir.MustParseSignature(sig), args...)
}
