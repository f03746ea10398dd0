// Package i18n loads the backend's string tables and translates keys.
// Missing keys fall back to the default text supplied by the caller.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/notify"

	"go.uber.org/zap"
)

// DefaultLanguage is used when nothing was saved.
const DefaultLanguage = "pt"

// Supported maps language codes to their display names.
var Supported = map[string]string{
	"pt": "Português",
	"en": "English",
	"it": "Italiano",
	"es": "Español",
}

var ErrUnsupported = errors.New("language not supported")

// Languages returns the supported codes in a stable order.
func Languages() []string {
	out := make([]string, 0, len(Supported))
	for code := range Supported {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// LanguageStore persists the chosen language.
type LanguageStore interface {
	Language(ctx context.Context, def string) string
	SetLanguage(ctx context.Context, lang string) error
}

// Options wires a Translator.
type Options struct {
	Client   api.Client
	Store    LanguageStore
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Translator holds the active table.
type Translator struct {
	client   api.Client
	store    LanguageStore
	notifier notify.Notifier
	logger   *zap.Logger

	mu    sync.RWMutex
	lang  string
	table map[string]string
}

func New(opts Options) *Translator {
	t := &Translator{
		client:   opts.Client,
		store:    opts.Store,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		lang:     DefaultLanguage,
		table:    map[string]string{},
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// Saved returns the persisted language, or the default.
func (t *Translator) Saved(ctx context.Context) string {
	if t.store == nil {
		return DefaultLanguage
	}
	return t.store.Language(ctx, DefaultLanguage)
}

// Load fetches the table for lang. On failure the previous table stays.
func (t *Translator) Load(ctx context.Context, lang string) error {
	if _, ok := Supported[lang]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, lang)
	}
	table, err := t.client.Translations(ctx, lang)
	if err != nil {
		t.logger.Warn("Failed to load translations", zap.String("language", lang), zap.Error(err))
		return err
	}
	t.mu.Lock()
	t.lang = lang
	t.table = table
	t.mu.Unlock()
	if t.store != nil {
		if err := t.store.SetLanguage(ctx, lang); err != nil {
			t.logger.Warn("Failed to save language preference", zap.Error(err))
		}
	}
	return nil
}

// Change switches language and reports the outcome to the user.
func (t *Translator) Change(ctx context.Context, lang string) error {
	if lang == t.Language() {
		return nil
	}
	t.show(notify.Info, t.T("loading", "Loading..."))
	if err := t.Load(ctx, lang); err != nil {
		t.show(notify.Error, t.T("error_loading_translations", "Could not load translations."))
		return err
	}
	t.show(notify.Success, t.T("language_changed", "Language changed."))
	return nil
}

func (t *Translator) show(kind notify.Kind, msg string) {
	if t.notifier != nil {
		t.notifier.Show(kind, msg)
	}
}

// Language is the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// T translates key. Without a translation it returns def, or key itself
// when def is empty.
func (t *Translator) T(key, def string) string {
	t.mu.RLock()
	v := t.table[key]
	t.mu.RUnlock()
	if v != "" {
		return v
	}
	if def != "" {
		return def
	}
	return key
}

var serviceDefaults = map[models.ServiceType]string{
	models.ServiceHaircut:     "Haircut",
	models.ServiceColoring:    "Colouring",
	models.ServiceHighlights:  "Highlights",
	models.ServiceStreaks:     "Streaks",
	models.ServiceHydration:   "Hydration",
	models.ServiceRootTouchUp: "Root touch-up",
	models.ServiceManicure:    "Manicure",
	models.ServicePedicure:    "Pedicure",
	models.ServiceGelNails:    "Gel nails",
	models.ServiceNailArt:     "Nail art",
}

// ServiceLabel translates a service type through the "service_<type>" key.
func (t *Translator) ServiceLabel(st models.ServiceType) string {
	return t.T("service_"+string(st), serviceDefaults[st])
}

var dateLayouts = map[string]string{
	"pt": "02/01/2006",
	"en": "01/02/2006",
	"it": "02/01/2006",
	"es": "02/01/2006",
}

// FormatDate renders a day in the active language's short form.
func (t *Translator) FormatDate(d time.Time) string {
	layout, ok := dateLayouts[t.Language()]
	if !ok {
		layout = dateLayouts[DefaultLanguage]
	}
	return d.Format(layout)
}

// FormatTime renders hours and minutes.
func (t *Translator) FormatTime(d time.Time) string {
	if t.Language() == "en" {
		return d.Format("03:04 PM")
	}
	return d.Format("15:04")
}
