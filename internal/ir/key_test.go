package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNormalisesOrder(t *testing.T) {
	k1 := NewKey("example.A",
		[]TypeRef{"example.B", "example.C"},
		[]MethodSignature{Sig("hello"), Sig("bb")},
		[]PropertySpec{Property("name", String), Property("age", Int)},
		"subclass")
	k2 := NewKey("example.A",
		[]TypeRef{"example.C", "example.B", "example.C"},
		[]MethodSignature{Sig("bb"), Sig("hello")},
		[]PropertySpec{Property("age", Int), Property("name", String)},
		"subclass")

	assert.True(t, k1.Equal(k2))
	if diff := cmp.Diff(k1, k2); diff != "" {
		t.Errorf("keys differ (-k1 +k2):\n%s", diff)
	}
	assert.Equal(t, k1.MustHash(), k2.MustHash())
}

func TestKeyIgnoresInitialValues(t *testing.T) {
	k1 := NewKey("example.A", nil, nil, []PropertySpec{PropertyWithValue("age", Int, 1)}, "subclass")
	k2 := NewKey("example.A", nil, nil, []PropertySpec{PropertyWithValue("age", Int, 2)}, "subclass")

	assert.Equal(t, k1.MustHash(), k2.MustHash())
}

func TestKeyHashChangesWithInput(t *testing.T) {
	base := NewKey("example.A", nil, []MethodSignature{Sig("hello")}, nil, "subclass")
	variants := []Key{
		NewKey("example.Z", nil, []MethodSignature{Sig("hello")}, nil, "subclass"),
		NewKey("example.A", []TypeRef{"example.B"}, []MethodSignature{Sig("hello")}, nil, "subclass"),
		NewKey("example.A", nil, []MethodSignature{Sig("hello", String)}, nil, "subclass"),
		NewKey("example.A", nil, []MethodSignature{Sig("hello")}, []PropertySpec{Property("age", Int)}, "subclass"),
		NewKey("example.A", nil, []MethodSignature{Sig("hello")}, nil, "forwarding"),
	}

	h := base.MustHash()
	assert.Len(t, h, 64, "SHA-256 hex is 64 characters")
	for i, v := range variants {
		assert.NotEqual(t, h, v.MustHash(), "variant %d should hash differently", i)
	}
}

func TestKeyCanonicalForm(t *testing.T) {
	k := NewKey("example.A", []TypeRef{"example.B"}, []MethodSignature{Sig("greet", String)},
		[]PropertySpec{Property("age", Int)}, "subclass")

	data, err := k.Canonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"backend":"subclass","base":"example.A","interfaces":["example.B"],`+
			`"overrides":[{"name":"greet","params":["string"]}],"properties":[{"name":"age","type":"int"}]}`,
		string(data))
}

func TestKeyString(t *testing.T) {
	k := NewKey("example.A", []TypeRef{"example.B"}, []MethodSignature{Sig("hello")},
		[]PropertySpec{Property("age", Int)}, "subclass")
	assert.Equal(t, "example.A[subclass] +[example.B] ~hello() .age:int", k.String())
}

func TestParseKeyRoundTrip(t *testing.T) {
	k := NewKey("example.A", []TypeRef{"example.C", "example.B"},
		[]MethodSignature{Sig("greet", String, Int), Sig("bb")},
		[]PropertySpec{Property("name", String), Property("age", Int)}, "subclass")

	data, err := k.Canonical()
	require.NoError(t, err)
	parsed, err := ParseKey(data)
	require.NoError(t, err)

	assert.True(t, k.Equal(parsed))
	assert.Equal(t, k.MustHash(), parsed.MustHash())
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	_, err := ParseKey([]byte(`{"base":`))
	assert.Error(t, err)
}

func TestSynthesisRecordMethods(t *testing.T) {
	rec := SynthesisRecord{Members: []MemberRecord{
		{Signature: "hello()", Origin: "override"},
		{Signature: "toString()", Origin: "inherited"},
	}}
	assert.Equal(t, []string{"hello()", "toString()"}, rec.Methods())
}
