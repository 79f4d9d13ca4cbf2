package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// requireLiveDB skips unless pointed at a disposable Postgres instance
// with the schema migrated (mirrors the teacher's own integration-test
// skip pattern in test/integration).
func requireLiveDB(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping store integration test in -short mode")
	}
	dsn := os.Getenv("VMCTRL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("VMCTRL_TEST_DATABASE_URL not set")
	}
	if err := Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st, err := Open(context.Background(), Config{DSN: dsn, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestInsertUserAndFetchByEmail(t *testing.T) {
	st := requireLiveDB(t)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	inserted, err := InsertUser(ctx, st.Pool, email, "hashed", "Ada", "Lovelace")
	require.NoError(t, err)

	fetched, err := GetUserByEmail(ctx, st.Pool, email)
	require.NoError(t, err)
	require.Equal(t, inserted.ID, fetched.ID)
	require.Equal(t, "hashed", fetched.PasswordHash)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	st := requireLiveDB(t)
	_, err := GetUserByEmail(context.Background(), st.Pool, "nobody-"+uuid.NewString()+"@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserPasswordOverwritesHash(t *testing.T) {
	st := requireLiveDB(t)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	user, err := InsertUser(ctx, st.Pool, email, "old-hash", "", "")
	require.NoError(t, err)

	require.NoError(t, UpdateUserPassword(ctx, st.Pool, user.ID, "new-hash"))

	fetched, err := GetUserByID(ctx, st.Pool, user.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", fetched.PasswordHash)
}
