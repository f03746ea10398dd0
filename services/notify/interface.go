// Package notify shows the single transient message a user sees after an
// action: success, error or info.
package notify

// Kind classifies a message.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// Notifier displays one message at a time; a new message replaces the old.
type Notifier interface {
	Show(kind Kind, message string)
}

// Translator rewrites a message key into the active language, falling back
// to def. i18n.Translator satisfies it.
type Translator interface {
	T(key, def string) string
}

// Message is one shown notification.
type Message struct {
	Kind Kind
	Text string
}
