package thinking

import (
	"fmt"
	"strings"
	"sync"
)

// Service drives the sequential-thinking tool server. Each Think call is
// one tool invocation; the server keeps its own chain state, so the
// service only mirrors enough to produce a summary.
type Service struct {
	tool Tool

	mu       sync.Mutex
	thoughts []Thought
}

var _ Thinker = (*Service)(nil)

// NewService wraps the discovered sequential-thinking tool. It rejects
// tools with a different name to catch miswired adapters early.
func NewService(tool Tool) (*Service, error) {
	if tool.Name() != ToolName {
		return nil, fmt.Errorf("thinking: expected tool %q, got %q", ToolName, tool.Name())
	}
	return &Service{tool: tool}, nil
}

// Think records the step with the tool server and returns its response
func (s *Service) Think(t Thought) (string, error) {
	out, err := s.tool.Call(t.Args())
	if err != nil {
		return "", fmt.Errorf("thinking: step %d: %w", t.Number, err)
	}

	s.mu.Lock()
	s.thoughts = append(s.thoughts, t)
	s.mu.Unlock()

	return out, nil
}

// Summary formats the chain of steps recorded so far
func (s *Service) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.thoughts)
}

func summarize(thoughts []Thought) string {
	if len(thoughts) == 0 {
		return "No thinking steps recorded."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thinking process (%d steps):\n\n", len(thoughts))
	for i, t := range thoughts {
		fmt.Fprintf(&b, "Step %d/%d:\n  %s\n", i+1, len(thoughts), t.Text)
		if t.IsRevision {
			fmt.Fprintf(&b, "  [revises step %d]\n", t.Revises)
		}
		if t.BranchID != "" {
			fmt.Fprintf(&b, "  [branch: %s]\n", t.BranchID)
		}
		b.WriteString("\n")
	}
	return b.String()
}
