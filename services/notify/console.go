package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// ConsoleNotifier writes the current message to an io.Writer and logs it.
type ConsoleNotifier struct {
	mu         sync.Mutex
	out        io.Writer
	logger     *zap.Logger
	translator Translator
	current    *Message
}

// NewConsoleNotifier returns a notifier writing to out. A nil logger disables
// logging.
func NewConsoleNotifier(out io.Writer, logger *zap.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleNotifier{out: out, logger: logger}
}

// SetTranslator attaches the translator messages pass through.
func (n *ConsoleNotifier) SetTranslator(t Translator) {
	n.mu.Lock()
	n.translator = t
	n.mu.Unlock()
}

func (n *ConsoleNotifier) Show(kind Kind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.translator != nil {
		message = n.translator.T(message, message)
	}
	n.current = &Message{Kind: kind, Text: message}

	switch kind {
	case Error:
		n.logger.Warn("notify", zap.String("kind", string(kind)), zap.String("message", message))
	default:
		n.logger.Debug("notify", zap.String("kind", string(kind)), zap.String("message", message))
	}
	if n.out != nil {
		fmt.Fprintf(n.out, "[%s] %s\n", kind, message)
	}
}

// Current returns the message on display, if any.
func (n *ConsoleNotifier) Current() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Message{}, false
	}
	return *n.current, true
}
