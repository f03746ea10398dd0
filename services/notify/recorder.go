package notify

import "sync"

// Recorder keeps every message shown. Tests assert against it.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Show(kind Kind, message string) {
	r.mu.Lock()
	r.messages = append(r.messages, Message{Kind: kind, Text: message})
	r.mu.Unlock()
}

// Messages returns a copy of the history.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Errors returns only error messages.
func (r *Recorder) Errors() []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Kind == Error {
			out = append(out, m)
		}
	}
	return out
}
