// Package app owns the client's state and wires every component together.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"salonai/config"
	"salonai/models"
	"salonai/services/api"
	"salonai/services/booking"
	"salonai/services/i18n"
	"salonai/services/navigator"
	"salonai/services/notify"
	"salonai/services/photo"
	"salonai/services/schedule"
	"salonai/services/session"
	"salonai/services/strandtest"
	"salonai/services/theme"
	"salonai/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// actionInterval spaces schedule actions so a double submit sends one PATCH.
const actionInterval = 500 * time.Millisecond

// Deps are the process-level collaborators. Zero values pick the defaults:
// stdout, a stdin prompter, the global logger and the configured storage.
type Deps struct {
	Out       io.Writer
	Prompter  notify.Prompter
	Logger    *zap.Logger
	Storage   session.Storage
	Transport http.RoundTripper
	Now       func() time.Time
}

// App is the single controller. Views receive its components by reference.
type App struct {
	Config config.Config
	Logger *zap.Logger

	Storage session.Storage
	Redis   *redis.Client
	Prefs   *session.Preferences

	Client     *api.DefaultClient
	Notifier   *notify.ConsoleNotifier
	Prompter   notify.Prompter
	Navigator  *navigator.Navigator
	Translator *i18n.Translator
	ThemeSink  *theme.MemorySink
	Theme      *theme.Theme
	Session    *session.Manager
	Booking    *booking.Form
	Schedule   *schedule.Panel
	StrandTest *strandtest.Gate
	Photo      *photo.Service
}

// New builds the application from cfg.
func New(ctx context.Context, cfg config.Config, deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = utils.GetLogger()
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	prompter := deps.Prompter
	if prompter == nil {
		prompter = notify.NewLinePrompter(os.Stdin, out)
	}

	a := &App{Config: cfg, Logger: logger, Prompter: prompter, Storage: deps.Storage}
	if a.Storage == nil {
		if err := a.openStorage(ctx); err != nil {
			return nil, err
		}
	}
	a.Prefs = session.NewPreferences(a.Storage)

	a.Notifier = notify.NewConsoleNotifier(out, logger.Named("notify"))
	a.Navigator = navigator.New(logger.Named("navigator"))

	a.Session = session.NewManager(session.Options{
		Storage:  a.Storage,
		Screens:  a.Navigator,
		Notifier: a.Notifier,
		Logger:   logger.Named("session"),
		Now:      deps.Now,
	})
	a.Client = api.NewClient(api.Options{
		BaseURL:           cfg.APIURL,
		HealthURL:         cfg.HealthURL,
		LoginEncoding:     cfg.LoginEncoding,
		Timeout:           cfg.HTTPTimeout,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		Tokens:            a.Session.Token,
		Logger:            logger.Named("api"),
		Transport:         deps.Transport,
	})
	a.Session.SetClient(a.Client)

	a.Translator = i18n.New(i18n.Options{
		Client:   a.Client,
		Store:    a.Prefs,
		Notifier: a.Notifier,
		Logger:   logger.Named("i18n"),
	})
	a.Notifier.SetTranslator(a.Translator)

	a.ThemeSink = theme.NewMemorySink()
	a.Theme = theme.New(theme.Options{
		Client:   a.Client,
		Users:    a.Session,
		Sink:     a.ThemeSink,
		Notifier: a.Notifier,
		Logger:   logger.Named("theme"),
		Origin:   a.Client.Origin(),
	})

	a.Booking = booking.NewForm(booking.Options{
		Client:          a.Client,
		Users:           a.Session,
		Notifier:        a.Notifier,
		Prompter:        prompter,
		Screens:         a.Navigator,
		Prefs:           a.Prefs,
		Logger:          logger.Named("booking"),
		DefaultLanguage: cfg.Language,
		Now:             deps.Now,
	})
	a.Schedule = schedule.NewPanel(schedule.Options{
		Client:         a.Client,
		Sessions:       a.Session,
		Notifier:       a.Notifier,
		Logger:         logger.Named("schedule"),
		Now:            deps.Now,
		ActionInterval: actionInterval,
	})
	a.StrandTest = strandtest.NewGate(a.Client, a.Session, prompter, a.Notifier, logger.Named("strandtest"))
	a.StrandTest.OnSaved(a.Schedule.Refresh)
	a.Photo = photo.NewService(a.Client, a.Session, a.Navigator, a.Notifier, logger.Named("photo"))

	// A fresh booking starts whenever the schedule screen is entered or the
	// user signs out. Strand-test history belongs to one user.
	a.Navigator.OnEnter(navigator.Schedule, a.Booking.Reset)
	a.Session.OnChange(func(s *models.Session) {
		a.Booking.ForgetHistory()
		if s == nil {
			a.Booking.Reset()
		}
	})
	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	switch a.Config.SessionBackend {
	case "redis":
		client, err := utils.NewSessionCacheClient(ctx)
		if err != nil {
			return err
		}
		a.Redis = client
		a.Storage = session.NewRedisStorage(client, "salonai:", a.Config.SessionTTL)
	case "", "file":
		path := a.Config.SessionFile
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("resolve session file: %w", err)
			}
			path = filepath.Join(dir, "salonai", "session.json")
		}
		a.Storage = session.NewFileStorage(path)
	case "memory":
		a.Storage = session.NewMemoryStorage()
	default:
		return fmt.Errorf("unknown session backend %q", a.Config.SessionBackend)
	}
	return nil
}

// Startup runs the page-load sequence. Every step is best effort; only the
// restored session is returned.
func (a *App) Startup(ctx context.Context) (*models.Session, utils.HealthStatus) {
	status := a.Health(ctx)
	if !status.API {
		a.Logger.Warn("API is not reachable", zap.String("detail", status.Detail))
	}

	if _, err := a.Theme.Load(ctx); err != nil {
		a.Logger.Info("using default theme", zap.Error(err))
	}

	lang := a.Prefs.Language(ctx, a.Config.Language)
	if err := a.Translator.Load(ctx, lang); err != nil {
		a.Logger.Info("translations unavailable, keys stay untranslated", zap.String("language", lang))
	} else {
		a.Booking.SetLanguage(lang)
	}

	sess, err := a.Session.Restore(ctx)
	if err != nil {
		a.Logger.Warn("failed to restore session", zap.Error(err))
	}
	return sess, status
}

// Health checks the API and, when used, the session Redis.
func (a *App) Health(ctx context.Context) utils.HealthStatus {
	return utils.CheckHealth(ctx, a.Client.Health, a.Redis)
}

// ChangeLanguage switches the UI language and the language new bookings are
// sent with.
func (a *App) ChangeLanguage(ctx context.Context, lang string) error {
	if err := a.Translator.Change(ctx, lang); err != nil {
		return err
	}
	a.Booking.SetLanguage(lang)
	return nil
}

// Close releases the Redis connection, if any.
func (a *App) Close() error {
	if a.Redis != nil {
		return a.Redis.Close()
	}
	return nil
}
