package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter asks the user a blocking yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, question string) bool
}

// LinePrompter asks on out and reads an answer line from in. Anything other
// than y/yes/s/sim counts as no.
type LinePrompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Confirm(ctx context.Context, question string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}

// ScriptedPrompter answers from a fixed list and records the questions.
// When the list runs out it answers no.
type ScriptedPrompter struct {
	mu        sync.Mutex
	Answers   []bool
	questions []string
}

func (p *ScriptedPrompter) Confirm(_ context.Context, question string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.questions = append(p.questions, question)
	if len(p.Answers) == 0 {
		return false
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer
}

// Questions returns what was asked so far.
func (p *ScriptedPrompter) Questions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.questions...)
}
