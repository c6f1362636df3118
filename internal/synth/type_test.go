package synth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
)

func TestNewTyped(t *testing.T) {
	typ := NewBuilder(accountClass(), freshCache()).MustBuild()

	inst, err := New[*meta.Instance](typ, ir.Refs("int"), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, inst.MustGet("balance"))

	_, err = New[*Proxy](typ, nil)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = New[*meta.Instance](typ, ir.Refs("string"), "x")
	assert.True(t, errors.IsNoMatchingConstructor(err))
}

func TestDescribe(t *testing.T) {
	b := NewBuilder(classA(), freshCache()).SetInterfaces(interfaceB())
	require.NoError(t, b.Override("bb", nil, Returning("b")))
	require.NoError(t, b.AddProperty("age", ir.Int))
	typ := b.MustBuild()

	layout := typ.Describe()
	assert.Equal(t, typ.Name(), layout.Name)
	assert.Equal(t, ir.TypeRef("example.A"), layout.Base)
	assert.Equal(t, BackendSubclass, layout.Backend)
	assert.Equal(t, typ.Hash(), layout.Hash)
	assert.Equal(t, []ir.TypeRef{"example.B"}, layout.Interfaces)
	assert.Equal(t, []ir.PropertyKey{{Name: "age", Type: ir.Int}}, layout.Properties)
	assert.Equal(t, [][]ir.TypeRef{nil}, layout.Constructors)

	data, err := json.Marshal(layout)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"origin":"override"`)
}

func TestMethodsListsEveryMember(t *testing.T) {
	typ := NewBuilder(classA(), freshCache()).MustBuild()
	assert.Equal(t, []ir.MethodSignature{ir.Sig("hello"), ir.Sig("toString")}, typ.Methods())
}

func TestTypeHashMatchesKey(t *testing.T) {
	typ := NewBuilder(classA(), freshCache()).MustBuild()
	assert.Equal(t, typ.Key().MustHash(), typ.Hash())
	assert.Equal(t, SyntheticName("example.A", BackendSubclass, typ.Hash()), typ.Name())
}
