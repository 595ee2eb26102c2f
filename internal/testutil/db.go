// Package testutil provides a migrated in-memory store for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/meets/meets-go/internal/repository"
	"github.com/stretchr/testify/require"
)

// NewDB returns a migrated, private in-memory SQLite database that is closed
// when the test ends.
func NewDB(t testing.TB) *repository.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := repository.NewDB(repository.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.Migrate(context.Background(), db))
	return db
}
