package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"backoffice/pkg/models"
	"backoffice/pkg/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newBackend(t *testing.T) *storage.Memory {
	t.Helper()
	backend := storage.NewMemory("http://localhost:5044")
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

var alice = models.User{ID: 7, FirstName: "Alice", LastName: "Baker", Email: "alice@example.com", Role: "admin"}

func TestStore_SetThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	require.NoError(t, NewStore(backend, nil).Set(ctx, "tok", alice))

	// A fresh store reads what the previous process persisted.
	reloaded := NewStore(backend, nil)
	assert.False(t, reloaded.Get().Authenticated(), "nothing is read before Load")

	sess, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	require.NotNil(t, sess.User)
	assert.Equal(t, alice, *sess.User)
	assert.Equal(t, "tok", reloaded.Token())
	assert.Equal(t, "7", reloaded.UserID())

	cookie, found, err := backend.Cookie(ctx, TokenCookie)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok", cookie)
}

func TestStore_ClearRemovesTokenUserAndCookie(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	store := NewStore(backend, nil)
	require.NoError(t, store.Set(ctx, "tok", alice))

	require.NoError(t, store.Clear(ctx))

	for _, key := range []string{TokenKey, UserKey} {
		_, found, err := backend.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
	_, found, err := backend.Cookie(ctx, TokenCookie)
	require.NoError(t, err)
	assert.False(t, found)

	assert.Empty(t, store.Token())
	assert.Empty(t, store.UserID())
	_, err = store.Require()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_LoadNormalizesPartialSessions(t *testing.T) {
	cases := map[string]map[string]string{
		"token without user":  {TokenKey: "tok"},
		"user without token":  {UserKey: `{"id":7,"firstName":"Alice"}`},
		"unreadable user":     {TokenKey: "tok", UserKey: "{not json"},
		"empty token":         {TokenKey: "", UserKey: `{"id":7}`},
		"user missing fields": {TokenKey: "tok", UserKey: "{}"},
		"user without email":  {TokenKey: "tok", UserKey: `{"id":7,"firstName":"Alice","lastName":"Baker"}`},
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)
			for k, v := range stored {
				require.NoError(t, backend.Set(ctx, k, v))
			}

			sess, err := NewStore(backend, nil).Load(ctx)
			require.NoError(t, err)
			assert.False(t, sess.Authenticated())
			assert.Empty(t, sess.Token)

			for _, key := range []string{TokenKey, UserKey} {
				_, found, err := backend.Get(ctx, key)
				require.NoError(t, err)
				assert.False(t, found, key)
			}
		})
	}
}

func TestStore_SetRejectsEmptyToken(t *testing.T) {
	store := NewStore(newBackend(t), nil)
	assert.Error(t, store.Set(context.Background(), "", alice))
	assert.False(t, store.Get().Authenticated())
}

type failingBackend struct {
	storage.Store
	failKey string
}

func (f failingBackend) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestStore_SetRollsBackOnPartialWrite(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	store := NewStore(failingBackend{Store: backend, failKey: UserKey}, nil)

	err := store.Set(ctx, "tok", alice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, found, err := backend.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, found, "token must not outlive a failed user write")
	assert.False(t, store.Get().Authenticated())
}
