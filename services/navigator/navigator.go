// Package navigator tracks which screen is active. Exactly one screen is
// shown at a time.
package navigator

import (
	"sync"

	"go.uber.org/zap"
)

// Screen names a top-level view.
type Screen string

const (
	Auth           Screen = "auth"
	Upload         Screen = "upload"
	Schedule       Screen = "schedule"
	MyAppointments Screen = "myAppointments"
	Suggestions    Screen = "suggestions"
	Professional   Screen = "professional"
	Admin          Screen = "admin"
)

// Screens lists every known screen in menu order.
var Screens = []Screen{Auth, Upload, Schedule, MyAppointments, Suggestions, Professional, Admin}

// Known reports whether s is one of Screens.
func (s Screen) Known() bool {
	for _, known := range Screens {
		if s == known {
			return true
		}
	}
	return false
}

// Hook runs after the active screen changed.
type Hook func(from, to Screen)

// Navigator holds the active screen and notifies hooks on change.
type Navigator struct {
	mu      sync.Mutex
	active  Screen
	history []Screen
	hooks   []Hook
	logger  *zap.Logger
}

// New starts on the auth screen.
func New(logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{active: Auth, history: []Screen{Auth}, logger: logger}
}

// OnChange registers a hook. Hooks run outside the lock in registration order.
func (n *Navigator) OnChange(h Hook) {
	n.mu.Lock()
	n.hooks = append(n.hooks, h)
	n.mu.Unlock()
}

// OnEnter registers a hook that runs only when screen becomes active.
func (n *Navigator) OnEnter(screen Screen, fn func()) {
	n.OnChange(func(_, to Screen) {
		if to == screen {
			fn()
		}
	})
}

// Show makes screen the only active one. Unknown screens are ignored.
func (n *Navigator) Show(screen Screen) {
	if !screen.Known() {
		n.logger.Warn("ignoring unknown screen", zap.String("screen", string(screen)))
		return
	}
	n.mu.Lock()
	from := n.active
	n.active = screen
	n.history = append(n.history, screen)
	hooks := append([]Hook(nil), n.hooks...)
	n.mu.Unlock()

	n.logger.Debug("screen changed", zap.String("from", string(from)), zap.String("to", string(screen)))
	for _, h := range hooks {
		h(from, screen)
	}
}

// Active returns the current screen.
func (n *Navigator) Active() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// History returns every screen shown, starting with the initial one.
func (n *Navigator) History() []Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Screen(nil), n.history...)
}
