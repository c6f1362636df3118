package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
)

func TestNewClassDefaultsToObject(t *testing.T) {
	c := NewClass("example.Plain", nil)

	assert.Same(t, ObjectClass, c.Super())
	assert.Equal(t, KindClass, c.Kind())
	assert.True(t, c.IsSubclassOf(ObjectClass))
	assert.True(t, c.Conforms("Object"))
	assert.True(t, c.Conforms(ir.Any))
}

func TestNewClassRejectsBadNames(t *testing.T) {
	assert.Panics(t, func() { NewClass("", nil) })
	assert.Panics(t, func() { NewClass("int", nil) })
	assert.Panics(t, func() { NewClass("a b", nil) })
}

func TestAddMethodRejectsDuplicates(t *testing.T) {
	c := NewClass("example.Dup", nil)
	c.AddMethod(ir.Sig("f", ir.Int), constant(1))

	assert.Panics(t, func() { c.AddMethod(ir.Sig("f", ir.Int), constant(2)) })
	assert.NotPanics(t, func() { c.AddMethod(ir.Sig("f", ir.String), constant(3)) }, "overloads are distinct")
}

func TestLookupWalksChain(t *testing.T) {
	animal := animalClass()
	dog := NewClass("example.Dog", animal)
	dog.AddMethod(ir.Sig("speak"), constant("woof"))

	m, ok := dog.Lookup(ir.Sig("speak"))
	require.True(t, ok)
	assert.Same(t, dog, m.Owner())

	m, ok = dog.Lookup(ir.Sig("name"))
	require.True(t, ok)
	assert.Same(t, animal, m.Owner())

	m, ok = dog.Lookup(ir.Sig("toString"))
	require.True(t, ok)
	assert.Same(t, ObjectClass, m.Owner())

	_, ok = dog.Lookup(ir.Sig("speak", ir.String))
	assert.False(t, ok)
}

func TestLookupFallsBackToDefaults(t *testing.T) {
	greeter := greeterInterface()
	c := NewClass("example.Host", nil).Implement(greeter)

	m, ok := c.Lookup(ir.Sig("wave"))
	require.True(t, ok)
	assert.True(t, m.IsDefault())
	assert.Same(t, greeter, m.Interface())
	assert.Equal(t, ir.TypeRef("example.Greeter"), m.DeclaredIn())

	_, ok = c.Lookup(ir.Sig("greet", ir.String))
	assert.False(t, ok, "abstract methods have no body")

	im, ok := c.LookupInterfaceMethod(ir.Sig("greet", ir.String))
	require.True(t, ok)
	assert.True(t, im.Abstract())
}

func TestClassBodyBeatsDefault(t *testing.T) {
	c := NewClass("example.Host", nil).Implement(greeterInterface())
	c.AddMethod(ir.Sig("wave"), constant("own wave"))

	m, ok := c.Lookup(ir.Sig("wave"))
	require.True(t, ok)
	assert.False(t, m.IsDefault())
}

func TestOverridable(t *testing.T) {
	var names []string
	for _, m := range animalClass().Overridable() {
		names = append(names, m.Signature().String())
	}

	assert.Equal(t, []string{"grow(int)", "name()", "speak()", "toString()"}, names)
}

func TestMethodsSortedAndResolved(t *testing.T) {
	animal := animalClass()
	dog := NewClass("example.Dog", animal)
	dog.AddMethod(ir.Sig("speak"), constant("woof"))

	var owners []string
	for _, m := range dog.Methods() {
		owners = append(owners, m.Signature().String()+"@"+string(m.DeclaredIn()))
	}

	assert.Equal(t, []string{
		"count()@example.Animal",
		"grow(int)@example.Animal",
		"kingdom()@example.Animal",
		"name()@example.Animal",
		"secret()@example.Animal",
		"speak()@example.Dog",
		"toString()@Object",
	}, owners)
}

func TestAbstractMethods(t *testing.T) {
	c := NewClass("example.Host", nil).Implement(greeterInterface())
	assert.Equal(t, []ir.MethodSignature{ir.Sig("greet", ir.String)}, c.AbstractMethods())

	c.AddMethod(ir.Sig("greet", ir.String), constant("hi"))
	assert.Empty(t, c.AbstractMethods())
}

func TestImplicitConstructor(t *testing.T) {
	c := NewClass("example.Plain", nil)

	ctors := c.Constructors()
	require.Len(t, ctors, 1)
	assert.True(t, ctors[0].Implicit())
	assert.Empty(t, ctors[0].Params())

	c.AddConstructor(ir.Refs("int"), nil)
	ctors = c.Constructors()
	require.Len(t, ctors, 1, "declaring a constructor removes the implicit one")
	assert.False(t, ctors[0].Implicit())
}

func TestAddConstructorRejectsDuplicates(t *testing.T) {
	c := NewClass("example.Plain", nil)
	c.AddConstructor(ir.Refs("int"), nil)

	assert.Panics(t, func() { c.AddConstructor(ir.Refs("int"), nil) })
}

func TestFieldsInChainOrder(t *testing.T) {
	animal := animalClass()
	dog := NewClass("example.Dog", animal)
	dog.AddField("tricks", ir.Int, 0)

	var names []string
	for _, f := range dog.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"name", "tricks"}, names)

	assert.Panics(t, func() { dog.AddField("name", ir.String, "") }, "shadowing is rejected")
}

func TestConformsThroughInterfaces(t *testing.T) {
	base := NewInterface("example.Base")
	greeter := NewInterface("example.Greeter", base)
	parent := NewClass("example.Parent", nil).Implement(greeter)
	child := NewClass("example.Child", parent)

	assert.True(t, child.Conforms("example.Parent"))
	assert.True(t, child.Conforms("example.Greeter"))
	assert.True(t, child.Conforms("example.Base"))
	assert.False(t, child.Conforms("example.Other"))
	assert.True(t, child.Implements(base))
}

func TestInstantiateRunsConstructor(t *testing.T) {
	inst, err := animalClass().Instantiate(nil, ir.Refs("string"), []any{"rex"})
	require.NoError(t, err)

	got, err := inst.Call(ir.Sig("name"))
	require.NoError(t, err)
	assert.Equal(t, "rex", got)
}

func TestInstantiateErrors(t *testing.T) {
	c := animalClass()
	c.AddConstructor(ir.Refs("int"), nil, PrivateMember())

	tests := []struct {
		name   string
		params []ir.TypeRef
		args   []any
	}{
		{"unknown parameter list", ir.Refs("bool"), []any{true}},
		{"private constructor", ir.Refs("int"), []any{1}},
		{"non-conforming argument", ir.Refs("string"), []any{42}},
		{"wrong argument count", ir.Refs("string"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Instantiate(nil, tt.params, tt.args)
			require.Error(t, err)
			assert.True(t, errors.IsNoMatchingConstructor(err), "got %v", err)
		})
	}
}

func TestConstructorChaining(t *testing.T) {
	animal := animalClass()
	dog := NewClass("example.Dog", animal)
	dog.AddField("tricks", ir.Int, 0)

	var order []string
	dog.AddConstructor(ir.Refs("string", "int"), func(self *Instance, args []any) error {
		order = append(order, "dog")
		name, err := self.Get("name")
		if err != nil {
			return err
		}
		order = append(order, "name="+name.(string))
		return self.Set("tricks", args[1])
	}, ChainSuper(func(args []any) ([]ir.TypeRef, []any) {
		order = append(order, "chain")
		return ir.Refs("string"), args[:1]
	}))

	inst, err := dog.Instantiate(nil, ir.Refs("string", "int"), []any{"rex", 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"chain", "dog", "name=rex"}, order)
	assert.Equal(t, 3, inst.MustGet("tricks"))
}

func TestConstructorChainsToNoArgByDefault(t *testing.T) {
	base := NewClass("example.Base", nil)
	base.AddConstructor(ir.Refs("int"), nil)
	child := NewClass("example.Child", base)

	_, err := child.Instantiate(nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsNoMatchingConstructor(err))
	assert.Contains(t, err.Error(), "example.Child chains to a constructor")
}

func TestConstructorInitErrorPropagates(t *testing.T) {
	c := NewClass("example.Fails", nil)
	c.AddConstructor(nil, func(*Instance, []any) error {
		return errors.New("boom")
	})

	_, err := c.Instantiate(nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constructing example.Fails")
	assert.Contains(t, err.Error(), "boom")
}
