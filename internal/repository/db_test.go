package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meets/meets-go/internal/model"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := NewDB(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func seedUser(t *testing.T, repo *UserRepository, name string) *model.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &model.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          name + "@example.com",
		Password:       "v2.c2FsdA.a2V5",
		ProfilePicture: "data:image/png;base64,",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := NewDB("postgres", "")
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
	require.Equal(t, DriverSQLite, db.Driver())
}

func TestInsertIgnoreVerb(t *testing.T) {
	require.Equal(t, "INSERT OR IGNORE", (&DB{driver: DriverSQLite}).insertIgnore())
	require.Equal(t, "INSERT IGNORE", (&DB{driver: DriverMySQL}).insertIgnore())
}
