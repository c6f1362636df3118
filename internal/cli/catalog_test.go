package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordCatalog runs the harness scenarios into a fresh catalog.
func recordCatalog(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	_, err := executeTest(t, "text", scenariosDir, "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}

func executeCatalog(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCatalogCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

type catalogResponse struct {
	Status string         `json:"status"`
	Data   []CatalogEntry `json:"data"`
}

func decodeCatalog(t *testing.T, out string) []CatalogEntry {
	t.Helper()
	var resp catalogResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestCatalogListsRecordedTypes(t *testing.T) {
	dbPath := recordCatalog(t)

	out, err := executeCatalog(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "example.Account$subclass$")
	assert.Contains(t, out, "example.Greeter$forwarding$")
	assert.Contains(t, out, "type(s)")

	entries := decodeCatalog(t, mustCatalog(t, "json", "--db", dbPath))
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Seq, entries[i].Seq)
	}
	assert.Empty(t, entries[0].Members)
}

func TestCatalogFilters(t *testing.T) {
	dbPath := recordCatalog(t)

	byBase := decodeCatalog(t, mustCatalog(t, "json", "--db", dbPath, "--base", "example.Account"))
	require.Len(t, byBase, 1)
	assert.Equal(t, "example.Account", string(byBase[0].Base))

	overriding := decodeCatalog(t, mustCatalog(t, "json", "--db", dbPath, "--overriding", "greet(string)", "--members"))
	require.Len(t, overriding, 2)
	for _, e := range overriding {
		assert.Equal(t, "example.Greeter", string(e.Base))
		assert.NotEmpty(t, e.Members)
	}

	both := decodeCatalog(t, mustCatalog(t, "json", "--db", dbPath, "--overriding", "greet(string)", "--base", "example.Account"))
	assert.Empty(t, both)
}

func TestCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing db", []string{"--db", filepath.Join(t.TempDir(), "none.db")}, "catalog not found"},
		{"bad signature", []string{"--db", recordCatalog(t), "--overriding", "greet("}, "invalid --overriding signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCatalog(t, "text", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func mustCatalog(t *testing.T, format string, args ...string) string {
	t.Helper()
	out, err := executeCatalog(t, format, args...)
	require.NoError(t, err)
	return out
}
