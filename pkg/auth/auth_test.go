package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/pkg/api"
	"backoffice/pkg/mockapi"
	"backoffice/pkg/models"
	"backoffice/pkg/notify"
	"backoffice/pkg/session"
	"backoffice/pkg/storage"
)

type navRecorder struct{ paths []string }

func (n *navRecorder) Navigate(_ context.Context, target string) error {
	n.paths = append(n.paths, target)
	return nil
}

type fixture struct {
	svc      *Service
	sessions *session.Store
	backend  storage.Store
	nav      *navRecorder
	notes    *notify.Center
	mock     *mockapi.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock, err := mockapi.New(nil)
	require.NoError(t, err)
	ts := httptest.NewServer(mock.Handler())
	backend := storage.NewMemory(ts.URL)
	t.Cleanup(func() {
		ts.Close()
		mock.Close()
		_ = backend.Close()
	})

	sessions := session.NewStore(backend, nil)
	client, err := api.NewClient(ts.URL+"/api", api.WithCredentials(sessions))
	require.NoError(t, err)

	f := &fixture{sessions: sessions, backend: backend, nav: &navRecorder{}, notes: notify.NewCenter(0, nil), mock: mock}
	f.svc = NewService(client, sessions, f.nav, f.notes, nil)
	return f
}

func messages(c *notify.Center) []string {
	var out []string
	for _, n := range c.Active() {
		out = append(out, n.Level.String()+": "+n.Message)
	}
	return out
}

func TestLogin_StoresSessionAndOpensDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Login(ctx, models.Credentials{Email: mockapi.SeedEmail, Password: mockapi.SeedPassword})
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "Ada", sess.User.FirstName)
	assert.Equal(t, []string{HomePath}, f.nav.paths)
	assert.Equal(t, []string{"success: Login successful!"}, messages(f.notes))

	token, found, err := f.backend.Get(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sess.Token, token)
}

func TestLogin_WrongPasswordLeavesNoSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), models.Credentials{Email: mockapi.SeedEmail, Password: "wrong"})
	var fetch *api.FetchError
	require.True(t, errors.As(err, &fetch))
	assert.Equal(t, 401, fetch.Status)
	assert.False(t, f.sessions.Get().Authenticated())
	assert.Empty(t, f.nav.paths)
	assert.Equal(t, []string{"error: Invalid email or password"}, messages(f.notes))
}

func TestLogin_MissingFieldsNeverReachServer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), models.Credentials{Email: mockapi.SeedEmail})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("password"))
	assert.Zero(t, f.mock.Requests())
}

func TestRegister_RequiresEveryField(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Register(context.Background(), models.Registration{FirstName: "N", LastName: "N", Email: "n@example.com", Password: "pw"})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("phoneNumber"))
	assert.True(t, verr.Has("role"))
	assert.Zero(t, f.mock.Requests())
}

func TestRegister_ThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, models.Registration{
		FirstName: "Nia", LastName: "New", Email: "nia@example.com", Password: "pw", PhoneNumber: "555", Role: "staff",
	}))
	assert.Equal(t, []string{"/login"}, f.nav.paths)

	sess, err := f.svc.Login(ctx, models.Credentials{Email: "nia@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "staff", sess.User.Role)
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Login(ctx, models.Credentials{Email: mockapi.SeedEmail, Password: mockapi.SeedPassword})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx))

	assert.False(t, f.sessions.Get().Authenticated())
	for _, key := range []string{session.TokenKey, session.UserKey} {
		_, found, err := f.backend.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
	_, found, err := f.backend.Cookie(ctx, session.TokenCookie)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{HomePath, "/login"}, f.nav.paths)
}
