package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agedist/internal/platform/config"
)

func TestNew_EmptyURLIsNotConfigured(t *testing.T) {
	pool, err := New(config.DatabaseConfig{})
	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.Error(t, pool.Health(context.Background()))
	assert.NoError(t, pool.Close())
}

func TestOpenSQLite(t *testing.T) {
	pool, err := OpenSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "visits.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	assert.Equal(t, "sqlite", pool.Driver())
	assert.NoError(t, pool.Health(context.Background()))
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(config.SQLiteConfig{})
	assert.Error(t, err)
}
