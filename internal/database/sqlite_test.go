package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"datasets", "track_segments", "stations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// a second run is a no-op
	assert.NoError(t, Migrate(db))
}

func TestTransaction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	insert := func(id string) func(*sql.Tx) error {
		return func(tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO datasets (id, loaded_at) VALUES (?, 0)", id)
			return err
		}
	}

	require.NoError(t, Transaction(ctx, db, insert("committed")))

	failure := errors.New("boom")
	err := Transaction(ctx, db, func(tx *sql.Tx) error {
		if err := insert("rolled-back")(tx); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&count))
	assert.Equal(t, 1, count)
}
