package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/meets/meets-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserRepository(t *testing.T) {
	repo := NewUserRepository(nil)
	if repo == nil {
		t.Fatal("expected non-nil UserRepository")
	}
	if repo.db != nil {
		t.Fatal("expected nil db when constructed with nil")
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	if isDuplicateEntryError(nil) {
		t.Fatal("nil error should not be a duplicate entry error")
	}
	if isDuplicateEntryError(ErrUserNotFound) {
		t.Fatal("ErrUserNotFound should not be a duplicate entry error")
	}
	if !isDuplicateEntryError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'users_email_key'"}) {
		t.Fatal("MySQL 1062 should be a duplicate entry error")
	}
	if isDuplicateEntryError(&mysql.MySQLError{Number: 1452}) {
		t.Fatal("MySQL 1452 should not be a duplicate entry error")
	}
	if !isDuplicateEntryError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")) {
		t.Fatal("SQLite unique violation should be a duplicate entry error")
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	u := seedUser(t, repo, "alice")

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
	assert.Equal(t, u.Password, byID.Password)
	assert.False(t, byID.Bio.Valid)
	assert.True(t, u.CreatedAt.Equal(byID.CreatedAt))

	byName, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.GetByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	orig := seedUser(t, repo, "bob")
	now := time.Now().UTC()

	sameEmail := &model.User{
		ID: uuid.NewString(), Name: "robert", Email: orig.Email, Password: "v2.eA.eA",
		Bio: sql.NullString{String: "impostor", Valid: true}, CreatedAt: now, UpdatedAt: now,
	}
	assert.ErrorIs(t, repo.Create(ctx, sameEmail), ErrDuplicateUser)

	sameName := &model.User{
		ID: uuid.NewString(), Name: orig.Name, Email: "other@example.com", Password: "v2.eA.eA",
		CreatedAt: now, UpdatedAt: now,
	}
	assert.ErrorIs(t, repo.Create(ctx, sameName), ErrDuplicateUser)

	got, err := repo.GetByEmail(ctx, orig.Email)
	require.NoError(t, err)
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Password, got.Password)
	assert.False(t, got.Bio.Valid)
}
