package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "k", []byte("one")))
	require.NoError(t, s.Put(ctx, "k", []byte("two")))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))
}

func TestSQLiteSlotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	r := NewRepository(s, DefaultKey)
	require.NoError(t, r.Add(ctx, mkTrail("1", "Persisted", "a", "b")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	all := NewRepository(s, DefaultKey).LoadAll(ctx)
	require.Len(t, all, 1)
	assert.True(t, all[0].Equal(mkTrail("1", "Persisted", "a", "b")))
}

func TestSQLiteSlotClosed(t *testing.T) {
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Put(context.Background(), "k", nil), ErrClosed)

	r := NewRepository(s, DefaultKey)
	assert.Empty(t, r.LoadAll(context.Background()))
	assert.ErrorIs(t, r.Add(context.Background(), mkTrail("1", "n", "a", "b")), ErrWrite)
	assert.Len(t, r.Trails(), 1)
}

func TestOpenSQLiteSetsPragmas(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var timeout int
	require.NoError(t, s.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 5000, timeout)

	var mode string
	require.NoError(t, s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	assert.FileExists(t, filepath.Join(dir, DBFileName))
}

func TestOpenSQLiteOpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	var gotDSN string
	openDB = func(_, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return nil, errors.New("boom")
	}

	_, err := OpenSQLite(t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, gotDSN, "_pragma=busy_timeout(5000)")
}
