package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_later.sql", "001_init.sql", "notes.txt", "001_init.sql.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	names, err := listMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_later.sql"}, names)
}

func TestListMigrationsMissingDir(t *testing.T) {
	_, err := listMigrations(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
