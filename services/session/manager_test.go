package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/api/apitest"
	"salonai/services/navigator"
	"salonai/services/notify"
	"salonai/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *apitest.Backend
	store   *MemoryStorage
	nav     *navigator.Navigator
	notes   *notify.Recorder
	mgr     *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend: apitest.New(t),
		store:   NewMemoryStorage(),
		nav:     navigator.New(nil),
		notes:   &notify.Recorder{},
	}
	f.mgr = NewManager(Options{Storage: f.store, Screens: f.nav, Notifier: f.notes})
	f.mgr.SetClient(api.NewClient(api.Options{
		BaseURL:       f.backend.URL(),
		LoginEncoding: "form",
		Tokens:        f.mgr.Token,
	}))
	return f
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}).
		SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestLoginLogoutEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.AddUser(models.User{Email: "ana@salon.test", Name: "Ana"}, "secret1")

	sess, err := f.mgr.Login(ctx, "ana@salon.test", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", sess.User.Name)

	raw, ok, err := f.store.Get(ctx, KeySession)
	require.NoError(t, err)
	require.True(t, ok)
	var stored models.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, sess.Token, stored.Token)
	assert.Equal(t, navigator.Upload, f.nav.Active())

	// profile came from /users/me with the new token
	me := f.backend.CallsTo(http.MethodGet, "/users/me")
	require.Len(t, me, 1)
	assert.Equal(t, "Bearer "+sess.Token, me[0].Header.Get("Authorization"))

	require.NoError(t, f.mgr.Logout(ctx))
	_, ok, _ = f.store.Get(ctx, KeySession)
	assert.False(t, ok)
	assert.Nil(t, f.mgr.Current())
	assert.Equal(t, "", f.mgr.Token())
	assert.Equal(t, navigator.Auth, f.nav.Active())
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Message{Kind: notify.Info, Text: "You signed out."}, last)
}

func TestLoginUsesEmbeddedUser(t *testing.T) {
	f := newFixture(t)
	f.backend.EmbedUserInLogin = true
	f.backend.AddUser(models.User{Email: "ana@salon.test"}, "secret1")

	_, err := f.mgr.Login(context.Background(), "ana@salon.test", "secret1")
	require.NoError(t, err)
	assert.Empty(t, f.backend.CallsTo(http.MethodGet, "/users/me"))
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.Login(ctx, " ", "x")
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Empty(t, f.backend.Calls())

	_, err = f.mgr.Login(ctx, "who@salon.test", "bad")
	require.Error(t, err)
	last, _ := f.notes.Last()
	assert.Equal(t, "Invalid credentials. Check your email and password.", last.Text)
	assert.Equal(t, navigator.Auth, f.nav.Active())
	assert.Empty(t, f.store.Keys())

	f.backend.AddUser(models.User{Email: "ana@salon.test"}, "pw")
	f.backend.Fail(http.MethodGet, "/users/me", http.StatusInternalServerError, gin.H{"detail": "db down"})
	_, err = f.mgr.Login(ctx, "ana@salon.test", "pw")
	require.Error(t, err)
	assert.Nil(t, f.mgr.Current())
	assert.Equal(t, "", f.mgr.Token())
}

func TestLoginConnectivityError(t *testing.T) {
	notes := &notify.Recorder{}
	mgr := NewManager(Options{Storage: NewMemoryStorage(), Notifier: notes})
	mgr.SetClient(api.NewClient(api.Options{BaseURL: "http://127.0.0.1:1/api/v1"}))

	_, err := mgr.Login(context.Background(), "ana@salon.test", "pw")
	require.Error(t, err)
	assert.True(t, api.IsConnectivity(err))
	last, _ := notes.Last()
	assert.Equal(t, "Connection error. Check that the API is running.", last.Text)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.Register(ctx, models.RegisterRequest{Email: "bad"})
	assert.ErrorIs(t, err, utils.ErrValidation)
	assert.Empty(t, f.backend.Calls())

	u, err := f.mgr.Register(ctx, models.RegisterRequest{Name: "Bia", Email: "bia@salon.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "bia@salon.test", u.Email)
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Success, last.Kind)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		store := NewMemoryStorage()
		raw, _ := json.Marshal(models.Session{Token: signed(t, now.Add(time.Hour)), User: models.User{ID: "u1"}})
		require.NoError(t, store.Set(ctx, KeySession, string(raw)))
		nav := navigator.New(nil)
		mgr := NewManager(Options{Storage: store, Screens: nav, Now: func() time.Time { return now }})

		sess, err := mgr.Restore(ctx)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "u1", mgr.Current().User.ID)
		assert.Equal(t, navigator.Upload, nav.Active())
	})

	t.Run("expired jwt is discarded", func(t *testing.T) {
		store := NewMemoryStorage()
		raw, _ := json.Marshal(models.Session{Token: signed(t, now.Add(-time.Minute)), User: models.User{ID: "u1"}})
		require.NoError(t, store.Set(ctx, KeySession, string(raw)))
		nav := navigator.New(nil)
		mgr := NewManager(Options{Storage: store, Screens: nav, Now: func() time.Time { return now }})

		sess, err := mgr.Restore(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
		assert.Empty(t, store.Keys())
		assert.Equal(t, navigator.Auth, nav.Active())
	})

	t.Run("opaque token accepted", func(t *testing.T) {
		store := NewMemoryStorage()
		require.NoError(t, store.Set(ctx, KeySession, `{"token":"opaque","user":{"id":"u1","email":"a@b.c","role":"cliente"}}`))
		mgr := NewManager(Options{Storage: store})

		sess, err := mgr.Restore(ctx)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "opaque", mgr.Token())
	})

	t.Run("nothing stored", func(t *testing.T) {
		nav := navigator.New(nil)
		nav.Show(navigator.Upload)
		mgr := NewManager(Options{Storage: NewMemoryStorage(), Screens: nav})

		sess, err := mgr.Restore(ctx)
		require.NoError(t, err)
		assert.Nil(t, sess)
		assert.Equal(t, navigator.Auth, nav.Active())
	})
}

func TestRestoreMigratesLegacyKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.Set(ctx, "authToken", "tok-a"))
	require.NoError(t, store.Set(ctx, "access_token", "tok-b"))
	require.NoError(t, store.Set(ctx, "currentUser", `{"id":"u7","email":"ana@salon.test","role":"cliente"}`))
	mgr := NewManager(Options{Storage: store})

	sess, err := mgr.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok-a", sess.Token)
	assert.Equal(t, "u7", sess.User.ID)
	assert.Equal(t, []string{KeySession}, store.Keys())
}

func TestRestoreLegacyTokenWithoutUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.AddUser(models.User{Email: "pro@salon.test", Role: models.RoleProfessional}, "pw")
	token := f.backend.TokenFor("pro@salon.test")
	require.NoError(t, f.store.Set(ctx, "access_token", token))

	sess, err := f.mgr.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.RoleProfessional, sess.User.Role)
	assert.Equal(t, []string{KeySession}, f.store.Keys())
}

func TestInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.AddUser(models.User{Email: "ana@salon.test"}, "pw")
	_, err := f.mgr.Login(ctx, "ana@salon.test", "pw")
	require.NoError(t, err)

	var ended bool
	f.mgr.OnChange(func(s *models.Session) { ended = s == nil })
	f.mgr.Invalidate(ctx, "Session expired")

	assert.True(t, ended)
	assert.Nil(t, f.mgr.Current())
	assert.Empty(t, f.store.Keys())
	assert.Equal(t, navigator.Auth, f.nav.Active())
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Message{Kind: notify.Error, Text: "Session expired"}, last)
}

type failingStore struct{ *MemoryStorage }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func TestRestoreStorageError(t *testing.T) {
	nav := navigator.New(nil)
	mgr := NewManager(Options{Storage: failingStore{NewMemoryStorage()}, Screens: nav})

	_, err := mgr.Restore(context.Background())
	assert.Error(t, err)
	assert.Equal(t, navigator.Auth, nav.Active())
}
