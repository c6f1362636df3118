package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
)

func TestCallIsVirtual(t *testing.T) {
	animal := animalClass()
	animal.AddMethod(ir.Sig("describe"), func(self *Instance, _ []any) (any, error) {
		said, err := self.Call(ir.Sig("speak"))
		if err != nil {
			return nil, err
		}
		return "says " + said.(string), nil
	})
	dog := NewClass("example.Dog", animal)
	dog.AddMethod(ir.Sig("speak"), constant("woof"))

	inst, err := dog.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	got, err := inst.Call(ir.Sig("describe"))
	require.NoError(t, err)
	assert.Equal(t, "says woof", got)
}

func TestMethodInvokeIsNotVirtual(t *testing.T) {
	animal := animalClass()
	dog := NewClass("example.Dog", animal)
	dog.AddMethod(ir.Sig("speak"), constant("woof"))

	inst, err := dog.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	base, ok := animal.Declared(ir.Sig("speak"))
	require.True(t, ok)
	got, err := base.Invoke(inst, nil)
	require.NoError(t, err)
	assert.Equal(t, "...", got)
}

func TestCallErrors(t *testing.T) {
	c := NewClass("example.Host", nil).Implement(greeterInterface())
	inst, err := c.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	_, err = inst.Call(ir.Sig("missing"))
	assert.True(t, errors.IsMethodNotFound(err))

	_, err = inst.Call(ir.Sig("greet", ir.String), "bob")
	assert.True(t, errors.IsMethodNotFound(err))
	assert.Contains(t, err.Error(), "abstract")

	_, err = inst.Call(ir.Sig("toString"), "extra")
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestDefaultSeesReceiver(t *testing.T) {
	c := NewClass("example.Host", nil).Implement(greeterInterface())
	inst, err := c.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	got, err := inst.Call(ir.Sig("wave"))
	require.NoError(t, err)
	assert.Equal(t, "wave from example.Host", got)
}

func TestToString(t *testing.T) {
	inst, err := NewClass("example.Plain", nil).Instantiate(nil, nil, nil)
	require.NoError(t, err)

	got, err := inst.Call(ir.Sig("toString"))
	require.NoError(t, err)
	assert.Equal(t, "example.Plain", got)
}

func TestSend(t *testing.T) {
	c := NewClass("example.Overloads", nil)
	c.AddMethod(ir.Sig("show", ir.Int), constant("int"))
	c.AddMethod(ir.Sig("show", ir.String), constant("string"))
	c.AddMethod(ir.Sig("show", ir.Any), constant("any"))
	inst, err := c.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	got, err := inst.Send("show", true)
	require.NoError(t, err)
	assert.Equal(t, "any", got)

	_, err = inst.Send("show", "x")
	require.Error(t, err)
	assert.True(t, errors.IsMethodNotFound(err))
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = inst.Send("show")
	assert.True(t, errors.IsMethodNotFound(err))
}

func TestGetSet(t *testing.T) {
	inst, err := animalClass().Instantiate(nil, nil, nil)
	require.NoError(t, err)

	v, err := inst.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "", v, "fields start at their initial value")

	require.NoError(t, inst.Set("name", "rex"))
	assert.Equal(t, "rex", inst.MustGet("name"))

	err = inst.Set("name", 7)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = inst.Get("nope")
	assert.True(t, errors.IsInvalidArgument(err))
	assert.True(t, errors.IsInvalidArgument(inst.Set("nope", 1)))
}

func TestPrivateMethodsNotCallable(t *testing.T) {
	c := animalClass()
	inst, err := c.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	_, err = inst.Call(ir.Sig("secret"))
	assert.True(t, errors.IsMethodNotFound(err))
	_, err = inst.Send("secret")
	assert.True(t, errors.IsMethodNotFound(err))
	assert.NotContains(t, inst.Signatures(), ir.Sig("secret"))

	m, ok := c.Lookup(ir.Sig("secret"))
	require.True(t, ok)
	got, err := m.Invoke(inst, nil)
	require.NoError(t, err)
	assert.Equal(t, "hidden", got, "bodies still reach private methods directly")
}

func TestArgumentsReachBodiesInDeclaredKind(t *testing.T) {
	c := NewClass("example.Meter", nil)
	c.AddField("total", ir.Int64, int64(0))
	c.AddMethod(ir.Sig("scale", ir.Int64), func(_ *Instance, args []any) (any, error) {
		return args[0].(int64) * 2, nil
	})
	inst, err := c.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	got, err := inst.Call(ir.Sig("scale", ir.Int64), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)

	got, err = inst.Send("scale", int16(4))
	require.NoError(t, err)
	assert.Equal(t, int64(8), got)

	require.NoError(t, inst.Set("total", int32(9)))
	assert.Equal(t, int64(9), inst.MustGet("total"))
}

func TestInstanceConformsAsArgument(t *testing.T) {
	animal := animalClass()
	keeper := NewClass("example.Keeper", nil)
	keeper.AddMethod(ir.Sig("feed", "example.Animal"), constant("fed"))

	pet, err := NewClass("example.Dog", animal).Instantiate(nil, nil, nil)
	require.NoError(t, err)
	k, err := keeper.Instantiate(nil, nil, nil)
	require.NoError(t, err)

	got, err := k.Call(ir.Sig("feed", "example.Animal"), pet)
	require.NoError(t, err)
	assert.Equal(t, "fed", got)

	_, err = k.Call(ir.Sig("feed", "example.Animal"), k)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestBinding(t *testing.T) {
	type tag struct{ n int }
	inst, err := NewClass("example.Plain", nil).Instantiate(&tag{n: 1}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, &tag{n: 1}, inst.Binding())
}
