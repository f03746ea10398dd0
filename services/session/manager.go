package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/navigator"
	"salonai/services/notify"
	"salonai/utils"

	"go.uber.org/zap"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrNoToken     = errors.New("login response carried no access token")
)

// Screens is the part of the navigator the session switches.
type Screens interface {
	Show(screen navigator.Screen)
}

// Options wires a Manager.
type Options struct {
	Storage  Storage
	Client   api.Client
	Screens  Screens
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// Manager owns the in-memory session and its persisted copy.
type Manager struct {
	store    Storage
	client   api.Client
	screens  Screens
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	current   *models.Session
	pending   string // token used to fetch the profile during login
	listeners []func(*models.Session)
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		store:    opts.Storage,
		client:   opts.Client,
		screens:  opts.Screens,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.notifier == nil {
		m.notifier = &notify.Recorder{}
	}
	return m
}

// SetClient attaches the API client. The client's token source usually reads
// back from the manager, so the two are built in two steps.
func (m *Manager) SetClient(c api.Client) {
	m.client = c
}

// OnChange registers fn to run after every login, restore, logout or
// invalidation. fn receives nil when the session ends.
func (m *Manager) OnChange(fn func(*models.Session)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Current returns a copy of the active session, or nil.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Token returns the bearer token to send, or "". It is the api client's
// TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current != nil {
		return m.current.Token
	}
	return m.pending
}

// User returns the logged-in user.
func (m *Manager) User() (models.User, bool) {
	s := m.Current()
	if s == nil {
		return models.User{}, false
	}
	return s.User, true
}

func (m *Manager) set(s *models.Session) {
	m.mu.Lock()
	m.current = s
	m.pending = ""
	listeners := append(([]func(*models.Session))(nil), m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

func (m *Manager) show(screen navigator.Screen) {
	if m.screens != nil {
		m.screens.Show(screen)
	}
}

// Login authenticates, loads the profile when the login response does not
// embed it, persists the session and moves to the upload screen.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := fmt.Errorf("%w: email and password are required", utils.ErrValidation)
		m.notifier.Show(notify.Error, "Please enter your email and password.")
		return nil, err
	}

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		m.notifier.Show(notify.Error, api.Message(err, "Login failed."))
		return nil, err
	}
	if resp.AccessToken == "" {
		m.notifier.Show(notify.Error, "Login failed.")
		return nil, ErrNoToken
	}

	user := resp.User
	if user == nil {
		m.mu.Lock()
		m.pending = resp.AccessToken
		m.mu.Unlock()
		user, err = m.client.Me(ctx)
		m.mu.Lock()
		m.pending = ""
		m.mu.Unlock()
		if err != nil {
			m.logger.Warn("login ok but profile fetch failed", zap.Error(err))
			m.notifier.Show(notify.Error, "Login succeeded, but your profile could not be loaded.")
			return nil, fmt.Errorf("load profile: %w", err)
		}
	}

	sess := &models.Session{Token: resp.AccessToken, User: *user}
	if err := m.persist(ctx, sess); err != nil {
		m.notifier.Show(notify.Error, "Could not save your session.")
		return nil, err
	}
	m.set(sess)
	m.logger.Info("logged in", zap.String("userID", sess.User.ID), zap.String("role", string(sess.User.Role)))
	m.notifier.Show(notify.Success, fmt.Sprintf("Welcome, %s!", sess.User.DisplayName()))
	m.show(navigator.Upload)
	return sess, nil
}

// Register creates an account. The user still has to log in afterwards.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		m.notifier.Show(notify.Error, utils.Reason(err))
		return nil, err
	}
	user, err := m.client.Register(ctx, req)
	if err != nil {
		m.notifier.Show(notify.Error, api.Message(err, "Registration failed."))
		return nil, err
	}
	m.notifier.Show(notify.Success, "Account created. Please log in.")
	m.show(navigator.Auth)
	return user, nil
}

// Logout forgets the session locally and on disk.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.clear(ctx)
	m.notifier.Show(notify.Info, "You signed out.")
	m.show(navigator.Auth)
	return err
}

// Invalidate ends a session the backend no longer accepts.
func (m *Manager) Invalidate(ctx context.Context, reason string) {
	if m.Current() == nil {
		return
	}
	if err := m.clear(ctx); err != nil {
		m.logger.Warn("failed to clear invalidated session", zap.Error(err))
	}
	m.logger.Info("session invalidated", zap.String("reason", reason))
	m.notifier.Show(notify.Error, reason)
	m.show(navigator.Auth)
}

func (m *Manager) clear(ctx context.Context) error {
	m.set(nil)
	var errs []error
	for _, key := range []string{KeySession, legacyKeyAuthToken, legacyKeyAccessToken, legacyKeyCurrentUser} {
		if err := m.store.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) persist(ctx context.Context, s *models.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.Set(ctx, KeySession, string(raw))
}

// Restore loads the persisted session at startup. It returns nil, nil when
// there is nothing usable to restore.
func (m *Manager) Restore(ctx context.Context) (*models.Session, error) {
	sess, err := m.load(ctx)
	if err != nil {
		m.show(navigator.Auth)
		return nil, err
	}
	if !sess.Valid() {
		m.show(navigator.Auth)
		return nil, nil
	}
	if utils.TokenExpired(sess.Token, m.now()) {
		m.logger.Info("discarding expired session", zap.String("userID", sess.User.ID))
		if err := m.clear(ctx); err != nil {
			m.logger.Warn("failed to clear expired session", zap.Error(err))
		}
		m.notifier.Show(notify.Info, "Your session expired. Please log in again.")
		m.show(navigator.Auth)
		return nil, nil
	}
	m.set(sess)
	m.logger.Info("session restored", zap.String("userID", sess.User.ID))
	m.show(navigator.Upload)
	return sess, nil
}

func (m *Manager) load(ctx context.Context) (*models.Session, error) {
	raw, ok, err := m.store.Get(ctx, KeySession)
	if err != nil {
		return nil, err
	}
	if !ok {
		return m.migrateLegacy(ctx)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		m.logger.Warn("dropping unreadable session", zap.Error(err))
		return nil, m.store.Remove(ctx, KeySession)
	}
	return &sess, nil
}

// migrateLegacy folds the token and user keys of older clients into the
// canonical session key. authToken wins over access_token.
func (m *Manager) migrateLegacy(ctx context.Context) (*models.Session, error) {
	token, err := m.firstOf(ctx, legacyKeyAuthToken, legacyKeyAccessToken)
	if err != nil || token == "" {
		return nil, err
	}

	var user *models.User
	rawUser, ok, err := m.store.Get(ctx, legacyKeyCurrentUser)
	if err != nil {
		return nil, err
	}
	if ok {
		var u models.User
		if json.Unmarshal([]byte(rawUser), &u) == nil && u.ID != "" {
			user = &u
		}
	}
	if user == nil && m.client != nil {
		m.mu.Lock()
		m.pending = token
		m.mu.Unlock()
		user, err = m.client.Me(ctx)
		m.mu.Lock()
		m.pending = ""
		m.mu.Unlock()
		if err != nil && !api.IsAuth(err) {
			// Keep the legacy keys for the next attempt.
			return nil, fmt.Errorf("load profile for legacy session: %w", err)
		}
	}

	sess := &models.Session{Token: token}
	if user != nil {
		sess.User = *user
	}
	if sess.Valid() {
		if err := m.persist(ctx, sess); err != nil {
			return nil, err
		}
	}
	for _, key := range []string{legacyKeyAuthToken, legacyKeyAccessToken, legacyKeyCurrentUser} {
		if err := m.store.Remove(ctx, key); err != nil {
			return nil, err
		}
	}
	m.logger.Info("migrated legacy session keys", zap.Bool("usable", sess.Valid()))
	return sess, nil
}

func (m *Manager) firstOf(ctx context.Context, keys ...string) (string, error) {
	for _, key := range keys {
		v, ok, err := m.store.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if ok && v != "" {
			return v, nil
		}
	}
	return "", nil
}
