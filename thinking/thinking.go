// Package thinking provides structured step-by-step analysis. The
// Service variant delegates each step to the sequential-thinking tool
// server; Local keeps the whole process in memory for runs where no
// tool server is available.
package thinking

// ToolName is the tool the upstream sequential-thinking server advertises.
const ToolName = "sequentialthinking"

// Thought is one step in a structured reasoning chain. Numbering starts
// at 1. A revision re-works an earlier step; a branch explores an
// alternative from one.
type Thought struct {
	Text       string
	Number     int
	Total      int
	NextNeeded bool

	IsRevision bool
	Revises    int

	BranchFrom int
	BranchID   string

	NeedsMore bool
}

// Args encodes the thought as the argument map the sequential-thinking
// tool expects. Optional markers are omitted when unset.
func (t Thought) Args() map[string]interface{} {
	args := map[string]interface{}{
		"thought":           t.Text,
		"thoughtNumber":     t.Number,
		"totalThoughts":     t.Total,
		"nextThoughtNeeded": t.NextNeeded,
	}
	if t.IsRevision {
		args["isRevision"] = true
		args["revisesThought"] = t.Revises
	}
	if t.BranchFrom > 0 {
		args["branchFromThought"] = t.BranchFrom
		if t.BranchID != "" {
			args["branchId"] = t.BranchID
		}
	}
	if t.NeedsMore {
		args["needsMoreThoughts"] = true
	}
	return args
}

// Tool is the callable surface the service needs from a discovered tool.
// *bridge.ToolAdapter satisfies it.
type Tool interface {
	Name() string
	Call(args map[string]interface{}) (string, error)
}

// Thinker records reasoning steps and reports on the accumulated chain.
type Thinker interface {
	Think(t Thought) (string, error)
	Summary() string
}
