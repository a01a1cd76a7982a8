package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func backends(t *testing.T) map[string]func(origin string) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "storage.db")
	return map[string]func(origin string) Store{
		"memory": func(origin string) Store { return NewMemory(origin) },
		"sqlite": func(origin string) Store {
			s, err := OpenSQLite(context.Background(), dbPath, origin)
			require.NoError(t, err)
			return s
		},
	}
}

func TestStore_LocalValues(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open("http://localhost:5044")
			defer s.Close()

			_, found, err := s.Get(ctx, "token")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Set(ctx, "token", "abc"))
			require.NoError(t, s.Set(ctx, "token", "def"))

			value, found, err := s.Get(ctx, "token")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "def", value)

			require.NoError(t, s.Remove(ctx, "token"))
			require.NoError(t, s.Remove(ctx, "token"))
			_, found, err = s.Get(ctx, "token")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStore_CookiesAreSeparateFromLocalValues(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open("http://localhost:5044")
			defer s.Close()

			require.NoError(t, s.Set(ctx, "token", "local"))
			require.NoError(t, s.SetCookie(ctx, "token", "cookie"))

			require.NoError(t, s.DeleteCookie(ctx, "token"))

			_, found, err := s.Cookie(ctx, "token")
			require.NoError(t, err)
			assert.False(t, found)

			value, found, err := s.Get(ctx, "token")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "local", value)
		})
	}
}

func TestSQLiteStore_ScopesByOrigin(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.db")

	a, err := OpenSQLite(ctx, path, "http://a.example")
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, "token", "for-a"))
	require.NoError(t, a.Close())

	b, err := OpenSQLite(ctx, path, "http://b.example")
	require.NoError(t, err)
	defer b.Close()

	_, found, err := b.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, found, "origin b must not see origin a's values")
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.db")

	s, err := OpenSQLite(ctx, path, "http://localhost")
	require.NoError(t, err)
	require.NoError(t, s.SetCookie(ctx, "token", "abc"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path, "http://localhost")
	require.NoError(t, err)
	defer s.Close()

	value, found, err := s.Cookie(ctx, "token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", value)
}

func TestStore_ClosedReturnsErrClosed(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open("http://localhost")
			require.NoError(t, s.Close())
			require.NoError(t, s.Close())

			err := s.Set(context.Background(), "k", "v")
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverMemory, "", "http://localhost")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "redis", "", "http://localhost")
	assert.Error(t, err)

	_, err = Open(ctx, DriverMemory, "", "")
	assert.Error(t, err)
}
