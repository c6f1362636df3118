package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/meta"
	"github.com/roach88/synth/internal/synth"
	"github.com/roach88/synth/internal/typecache"
)

func TestRecordAndGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := createTestRecord("example.A", "hello()")

	inserted, err := s.Record(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	e, err := s.Get(ctx, rec.KeyHash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Seq)
	assert.Equal(t, "test-run", e.RunID)
	assert.Equal(t, rec.TypeName, e.TypeName)
	assert.Equal(t, ir.TypeRef("example.A"), e.Base)
	assert.Equal(t, "subclass", e.Backend)
	assert.True(t, rec.Key.Equal(e.Key))
	assert.Equal(t, rec.Constructors, e.Constructors)
}

func TestRecordIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := createTestRecord("example.A", "hello()")

	_, err := s.Record(ctx, rec)
	require.NoError(t, err)
	inserted, err := s.Record(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	members, err := s.Members(ctx, rec.KeyHash)
	require.NoError(t, err)
	assert.Len(t, members, 2, "members are not duplicated")
}

func TestGetMissing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListOrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	recs := []ir.SynthesisRecord{
		createTestRecord("example.Z", "z()"),
		createTestRecord("example.A", "a()"),
		createTestRecord("example.M", "m()"),
	}
	for _, r := range recs {
		require.NoError(t, s.Synthesized(r))
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.Equal(t, recs[i].KeyHash, e.KeyHash)
	}
}

func TestListEmpty(t *testing.T) {
	s := createTestStore(t)

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	members, err := s.Members(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, members)
}

func TestListByBaseAndOverriding(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a1 := createTestRecord("example.A", "hello()")
	a2 := createTestRecord("example.A", "bye()")
	b := createTestRecord("example.B", "hello()")
	for _, r := range []ir.SynthesisRecord{a1, a2, b} {
		_, err := s.Record(ctx, r)
		require.NoError(t, err)
	}

	byBase, err := s.ListByBase(ctx, "example.A")
	require.NoError(t, err)
	require.Len(t, byBase, 2)
	assert.Equal(t, a1.KeyHash, byBase[0].KeyHash)
	assert.Equal(t, a2.KeyHash, byBase[1].KeyHash)

	hello, err := s.Overriding(ctx, ir.Sig("hello"))
	require.NoError(t, err)
	require.Len(t, hello, 2)
	assert.Equal(t, a1.KeyHash, hello[0].KeyHash)
	assert.Equal(t, b.KeyHash, hello[1].KeyHash)

	none, err := s.Overriding(ctx, ir.Sig("toString"))
	require.NoError(t, err)
	assert.Empty(t, none, "inherited members do not count")
}

func TestMembersInTableOrder(t *testing.T) {
	s := createTestStore(t)
	rec := createTestRecord("example.A", "hello()")
	require.NoError(t, s.Synthesized(rec))

	members, err := s.Members(context.Background(), rec.KeyHash)
	require.NoError(t, err)
	assert.Equal(t, rec.Members, members)
}

func TestStoreObservesBuilds(t *testing.T) {
	s := createTestStore(t)
	cache := typecache.New[synth.Shape]()
	base := meta.NewClass("example.A", nil).
		AddMethod(ir.Sig("hello"), func(*meta.Instance, []any) (any, error) { return "world", nil })

	build := func() *synth.Type {
		b := synth.NewBuilder(base, synth.WithCache(cache), synth.WithObserver(s))
		require.NoError(t, b.Override("hello", nil, synth.PassThrough))
		require.NoError(t, b.AddProperty("age", ir.Int))
		return b.MustBuild()
	}
	typ := build()
	build()

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1, "a cache hit is not re-recorded")
	assert.Equal(t, typ.Hash(), entries[0].KeyHash)
	assert.Equal(t, typ.Name(), entries[0].TypeName)

	members, err := s.Members(context.Background(), typ.Hash())
	require.NoError(t, err)
	origins := map[string]string{}
	for _, m := range members {
		origins[m.Signature] = m.Origin
	}
	assert.Equal(t, map[string]string{
		"getAge()":    "property",
		"hello()":     "override",
		"setAge(int)": "property",
		"toString()":  "inherited",
	}, origins)
}
