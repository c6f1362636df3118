package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/synth/internal/ir"
)

// createTestStore opens a catalog in a temp dir, closed on cleanup.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), WithRunID("test-run"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord builds a record for base with one override.
func createTestRecord(base ir.TypeRef, override string) ir.SynthesisRecord {
	key := ir.NewKey(base, nil, []ir.MethodSignature{ir.MustParseSignature(override)}, nil, "subclass")
	hash := key.MustHash()
	return ir.SynthesisRecord{
		KeyHash:  hash,
		TypeName: ir.TypeRef(string(base) + "$subclass$" + hash[:8]),
		Key:      key,
		Members: []ir.MemberRecord{
			{Signature: override, Origin: "override", DeclaredIn: base},
			{Signature: "toString()", Origin: "inherited", DeclaredIn: "Object"},
		},
		Constructors: [][]ir.TypeRef{nil, ir.Refs("int")},
	}
}
