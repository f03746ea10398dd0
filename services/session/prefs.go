package session

import (
	"context"
	"strconv"
)

// Preferences reads and writes the non-secret user choices.
type Preferences struct {
	store Storage
}

func NewPreferences(store Storage) *Preferences {
	return &Preferences{store: store}
}

// Language returns the saved language or def.
func (p *Preferences) Language(ctx context.Context, def string) string {
	v, ok, err := p.store.Get(ctx, KeyLanguage)
	if err != nil || !ok || v == "" {
		return def
	}
	return v
}

func (p *Preferences) SetLanguage(ctx context.Context, lang string) error {
	return p.store.Set(ctx, KeyLanguage, lang)
}

// CalendarSync reports whether new bookings should be pushed to the
// user's calendar. Off unless explicitly enabled.
func (p *Preferences) CalendarSync(ctx context.Context) bool {
	v, ok, err := p.store.Get(ctx, KeyCalendarSync)
	if err != nil || !ok {
		return false
	}
	enabled, _ := strconv.ParseBool(v)
	return enabled
}

func (p *Preferences) SetCalendarSync(ctx context.Context, enabled bool) error {
	return p.store.Set(ctx, KeyCalendarSync, strconv.FormatBool(enabled))
}
