// AngelaMos | 2026
// migrations_test.go

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(files, dir+"/*.sql")
	require.NoError(t, err)
	require.Len(t, names, 2)

	for _, name := range names {
		body, err := fs.ReadFile(files, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestUsersTableKeepsTokenSet(t *testing.T) {
	body, err := fs.ReadFile(files, dir+"/00001_init.sql")
	require.NoError(t, err)

	schema := strings.ToLower(string(body))
	assert.Contains(t, schema, "tokens")
	assert.Contains(t, schema, "text[]")
}
