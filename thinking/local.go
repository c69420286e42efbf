package thinking

import (
	"fmt"
	"strings"
	"sync"
)

// Local is an in-process fallback used when the tool server is disabled
// or unavailable. It mimics the server's confirmations closely enough
// that callers need not care which variant they hold.
type Local struct {
	mu       sync.Mutex
	thoughts []Thought
}

var _ Thinker = (*Local)(nil)

// NewLocal returns an empty in-process thinking chain
func NewLocal() *Local {
	return &Local{}
}

// Think records the step and returns a confirmation
func (l *Local) Think(t Thought) (string, error) {
	l.mu.Lock()
	l.thoughts = append(l.thoughts, t)
	total := len(l.thoughts)
	l.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Step %d/%d recorded\n", t.Number, t.Total)

	text := t.Text
	if len(text) > 100 {
		text = text[:100] + "..."
	}
	fmt.Fprintf(&b, "Thought: %s\n", text)

	if t.IsRevision {
		fmt.Fprintf(&b, "[revises step %d]\n", t.Revises)
	}

	if t.NextNeeded {
		fmt.Fprintf(&b, "Continuing to step %d\n", t.Number+1)
	} else {
		fmt.Fprintf(&b, "Thinking complete, %d steps total\n", total)
	}
	return b.String(), nil
}

// Summary formats the chain of steps recorded so far
func (l *Local) Summary() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return summarize(l.thoughts)
}

// Reset discards the recorded chain so the next task starts clean
func (l *Local) Reset() {
	l.mu.Lock()
	l.thoughts = nil
	l.mu.Unlock()
}
