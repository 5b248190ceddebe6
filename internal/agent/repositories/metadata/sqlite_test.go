package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:metadata_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
DELETE FROM metadata;
`)
	require.NoError(t, err)
	return db
}

func TestGet_MissingKeyReturnsNil(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	v, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSetGet_RoundTripAndOverwrite(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyDeviceID, []byte("dev-1")))
	v, err := repo.Get(ctx, KeyDeviceID)
	require.NoError(t, err)
	require.Equal(t, []byte("dev-1"), v)

	require.NoError(t, repo.Set(ctx, KeyDeviceID, []byte("dev-2")))
	v, err = repo.Get(ctx, KeyDeviceID)
	require.NoError(t, err)
	require.Equal(t, []byte("dev-2"), v)
}

func TestBoolFlags(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	got, err := repo.GetBool(ctx, KeyOnboardingCompleted)
	require.NoError(t, err)
	require.False(t, got, "absent flag must read as false")

	require.NoError(t, repo.SetBool(ctx, KeyOnboardingCompleted, true))
	got, err = repo.GetBool(ctx, KeyOnboardingCompleted)
	require.NoError(t, err)
	require.True(t, got)
}

func TestDeleteAndClear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", []byte("1")))
	require.NoError(t, repo.Set(ctx, "b", []byte("2")))

	require.NoError(t, repo.Delete(ctx, "a"))
	v, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, repo.Clear(ctx))
	v, err = repo.Get(ctx, "b")
	require.NoError(t, err)
	require.Nil(t, v)
}
