package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
		Name: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNew_CreatesDirectoryAndConnects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sales.db")

	db, err := New(Config{Path: path, Name: "daily_sales"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "daily_sales", db.Name())
	require.NoError(t, db.QuickCheck(context.Background()))
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.HealthCheck(context.Background()))
}

func TestWithTransaction_Commit(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Conn().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)")
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO items (label) VALUES (?)", "a")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Conn().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)")
	require.NoError(t, err)

	failure := errors.New("boom")
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO items (label) VALUES (?)", "a"); err != nil {
			return err
		}
		return failure
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Conn().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)")
	require.NoError(t, err)

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.Exec("INSERT INTO items (label) VALUES (?)", "a")
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWALCheckpointAndVacuum(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Conn().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	require.NoError(t, db.WALCheckpoint(""))
	require.NoError(t, db.WALCheckpoint("PASSIVE"))
	require.NoError(t, db.Vacuum())
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Conn().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)")
	require.NoError(t, err)
	_, err = db.Conn().Exec("INSERT INTO items (label) VALUES ('x')")
	require.NoError(t, err)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}
