package theme

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemorySink records what was applied.
type MemorySink struct {
	mu    sync.Mutex
	vars  map[string]string
	logo  string
	title string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{vars: map[string]string{}}
}

func (m *MemorySink) SetVar(name, value string) {
	m.mu.Lock()
	m.vars[name] = value
	m.mu.Unlock()
}

func (m *MemorySink) SetLogo(url string) {
	m.mu.Lock()
	m.logo = url
	m.mu.Unlock()
}

func (m *MemorySink) SetTitle(title string) {
	m.mu.Lock()
	m.title = title
	m.mu.Unlock()
}

func (m *MemorySink) Var(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vars[name]
}

func (m *MemorySink) Logo() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logo
}

func (m *MemorySink) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.title
}

// WriteTo prints the theme as a CSS :root block.
func (m *MemorySink) WriteTo(w io.Writer) (int64, error) {
	m.mu.Lock()
	names := make([]string, 0, len(m.vars))
	for name := range m.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	out := fmt.Sprintf("/* %s */\n/* logo: %s */\n:root {\n", m.title, m.logo)
	for _, name := range names {
		out += fmt.Sprintf("  %s: %s;\n", name, m.vars[name])
	}
	m.mu.Unlock()
	out += "}\n"
	n, err := io.WriteString(w, out)
	return int64(n), err
}
