package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"synthesized_types", "members"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q missing", table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.verifyPragma(ctx, "journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma(ctx, "foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma(ctx, "busy_timeout", "5000"))
	assert.Error(t, s.verifyPragma(ctx, "foreign_keys", "0"))
}

func TestOpen_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	require.NoError(t, s.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_members_signature'",
	).Scan(&name)
	assert.NoError(t, err)
}

func TestOpen_MigratesV0Database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.DB().Exec("DROP INDEX idx_members_signature")
	require.NoError(t, err)
	_, err = s.DB().Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_members_signature'",
	).Scan(&name)
	assert.NoError(t, err, "migration should recreate the index")
}

func TestRunID(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "generated.db"))
	require.NoError(t, err)
	defer s.Close()

	id, err := uuid.Parse(s.RunID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	pinned, err := Open(filepath.Join(t.TempDir(), "pinned.db"), WithRunID("run-1"))
	require.NoError(t, err)
	defer pinned.Close()
	assert.Equal(t, "run-1", pinned.RunID())
}

func TestClose_NilDB(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}
