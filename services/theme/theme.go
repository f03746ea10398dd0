// Package theme loads the salon branding and applies it as style variables.
package theme

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/notify"
	"salonai/utils"

	"go.uber.org/zap"
)

var ErrAdminOnly = errors.New("access denied: administrators only")

// Sink receives the applied theme. The CLI prints it; a UI would restyle.
type Sink interface {
	SetVar(name, value string)
	SetLogo(url string)
	SetTitle(title string)
}

// Users yields the logged-in user.
type Users interface {
	User() (models.User, bool)
}

// Options wires a Theme.
type Options struct {
	Client   api.Client
	Users    Users
	Sink     Sink
	Notifier notify.Notifier
	Logger   *zap.Logger
	// Origin is scheme://host of the API; relative logo paths resolve
	// against it.
	Origin string
}

// Theme holds the applied settings.
type Theme struct {
	client   api.Client
	users    Users
	sink     Sink
	notifier notify.Notifier
	logger   *zap.Logger
	origin   string

	mu      sync.Mutex
	current models.Settings
}

func New(opts Options) *Theme {
	t := &Theme{
		client:   opts.Client,
		users:    opts.Users,
		sink:     opts.Sink,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		origin:   strings.TrimRight(opts.Origin, "/"),
		current:  models.DefaultSettings(),
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	if t.notifier == nil {
		t.notifier = &notify.Recorder{}
	}
	return t
}

// Variables maps a palette to the style variables it sets.
func Variables(c models.ColorPalette) map[string]string {
	return map[string]string{
		"--color-primary":    c.Primary,
		"--color-secondary":  c.Secondary,
		"--color-accent":     c.Accent,
		"--color-background": c.Background,
		"--color-text":       c.Text,
	}
}

// Load fetches and applies the settings. On any failure the defaults are
// applied instead and the error is returned for logging only.
func (t *Theme) Load(ctx context.Context) (models.Settings, error) {
	s, err := t.client.Settings(ctx)
	applied := models.DefaultSettings()
	if err != nil {
		t.logger.Warn("Failed to load settings, using defaults", zap.Error(err))
	} else {
		applied = s.WithDefaults()
	}
	t.apply(applied)
	return applied, err
}

func (t *Theme) apply(s models.Settings) {
	t.mu.Lock()
	t.current = s
	t.mu.Unlock()
	if t.sink == nil {
		return
	}
	for name, value := range Variables(s.Colors) {
		t.sink.SetVar(name, value)
	}
	t.sink.SetLogo(t.ResolveLogo(s.LogoURL))
	t.sink.SetTitle(s.SalonName + " - Booking")
}

// ResolveLogo turns a relative logo path into an absolute URL.
func (t *Theme) ResolveLogo(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return t.origin + path
}

// Current returns the applied settings.
func (t *Theme) Current() models.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// SaveRequest is the admin branding form.
type SaveRequest struct {
	PrimaryColor   string `validate:"required,hexcolor"`
	SecondaryColor string `validate:"required,hexcolor"`
	LogoName       string `validate:"omitempty,endswith=.png|endswith=.jpg|endswith=.jpeg|endswith=.svg"`
	Logo           io.Reader
}

// Save uploads new branding and reapplies the theme. Admins only.
func (t *Theme) Save(ctx context.Context, req SaveRequest) error {
	u, ok := t.users.User()
	if !ok || u.Role != models.RoleAdmin {
		t.notifier.Show(notify.Error, "Access denied. Administrators only.")
		return ErrAdminOnly
	}
	req.LogoName = strings.ToLower(req.LogoName)
	if err := utils.ValidateStruct(req); err != nil {
		t.notifier.Show(notify.Error, utils.Reason(err))
		return err
	}
	err := t.client.SaveSettings(ctx, api.SettingsForm{
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		LogoName:       req.LogoName,
		Logo:           req.Logo,
	})
	if err != nil {
		t.logger.Warn("Failed to save settings", zap.Error(err))
		t.notifier.Show(notify.Error, api.Message(err, "Could not save the settings."))
		return err
	}
	t.logger.Info("settings saved", zap.String("by", u.ID))
	t.notifier.Show(notify.Success, "Settings saved!")
	if _, err := t.Load(ctx); err != nil {
		t.logger.Debug("reload after save fell back to defaults", zap.Error(err))
	}
	return nil
}
