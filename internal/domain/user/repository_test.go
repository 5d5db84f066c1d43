package user

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	var exists bool
	if err := db.Get(&exists, `SELECT to_regclass('public.users') IS NOT NULL`); err != nil || !exists {
		db.Close()
		t.Skip("users table missing; run migrations first")
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	email := "repo-" + uuid.NewString()[:8] + "@example.com"
	u := &User{ID: uuid.New(), Email: email, PasswordHash: "hash", FirstName: "Ann", LastName: "Lee"}
	require.NoError(t, repo.Create(ctx, u))
	t.Cleanup(func() { db.Exec(`DELETE FROM users WHERE id = $1`, u.ID) })
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ann Lee", got.FullName())

	dup := &User{ID: uuid.New(), Email: email, PasswordHash: "hash"}
	err = repo.Create(ctx, dup)
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, "users_email_key", pqErr.Constraint)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
