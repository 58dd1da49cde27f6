package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_Sorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_more.sql": {Data: []byte("SELECT 1;")},
		"migrations/001_init.sql": {Data: []byte("SELECT 1;")},
		"migrations/README.md":    {Data: []byte("notes")},
	}
	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "010_more.sql"}, files)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := migrationFiles(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_init.sql", files[0])
	assert.Contains(t, files, "002_restaurants.sql")
}
