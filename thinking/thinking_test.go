package thinking

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name  string
	calls []map[string]interface{}
	out   string
	err   error
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Call(args map[string]interface{}) (string, error) {
	f.calls = append(f.calls, args)
	return f.out, f.err
}

func TestThoughtArgs(t *testing.T) {
	tests := []struct {
		name    string
		thought Thought
		want    map[string]interface{}
	}{
		{
			name:    "plain step",
			thought: Thought{Text: "analyze the inputs", Number: 1, Total: 5, NextNeeded: true},
			want: map[string]interface{}{
				"thought":           "analyze the inputs",
				"thoughtNumber":     1,
				"totalThoughts":     5,
				"nextThoughtNeeded": true,
			},
		},
		{
			name:    "revision",
			thought: Thought{Text: "reconsider step two", Number: 3, Total: 5, NextNeeded: true, IsRevision: true, Revises: 2},
			want: map[string]interface{}{
				"thought":           "reconsider step two",
				"thoughtNumber":     3,
				"totalThoughts":     5,
				"nextThoughtNeeded": true,
				"isRevision":        true,
				"revisesThought":    2,
			},
		},
		{
			name:    "branch",
			thought: Thought{Text: "what if the trend reverses", Number: 4, Total: 5, NextNeeded: true, BranchFrom: 2, BranchID: "reversal"},
			want: map[string]interface{}{
				"thought":           "what if the trend reverses",
				"thoughtNumber":     4,
				"totalThoughts":     5,
				"nextThoughtNeeded": true,
				"branchFromThought": 2,
				"branchId":          "reversal",
			},
		},
		{
			name:    "needs more",
			thought: Thought{Text: "this needs a deeper pass", Number: 5, Total: 5, NextNeeded: true, NeedsMore: true},
			want: map[string]interface{}{
				"thought":           "this needs a deeper pass",
				"thoughtNumber":     5,
				"totalThoughts":     5,
				"nextThoughtNeeded": true,
				"needsMoreThoughts": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.thought.Args())
		})
	}
}

func TestNewServiceRejectsWrongTool(t *testing.T) {
	_, err := NewService(&fakeTool{name: "echo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequentialthinking")
}

func TestServiceThinkDelegatesToTool(t *testing.T) {
	tool := &fakeTool{name: ToolName, out: "recorded"}
	svc, err := NewService(tool)
	require.NoError(t, err)

	out, err := svc.Think(Thought{Text: "step one", Number: 1, Total: 3, NextNeeded: true})
	require.NoError(t, err)
	assert.Equal(t, "recorded", out)

	require.Len(t, tool.calls, 1)
	assert.Equal(t, "step one", tool.calls[0]["thought"])
	assert.Equal(t, 1, tool.calls[0]["thoughtNumber"])
}

func TestServiceThinkWrapsToolError(t *testing.T) {
	sentinel := errors.New("server went away")
	tool := &fakeTool{name: ToolName, err: sentinel}
	svc, err := NewService(tool)
	require.NoError(t, err)

	_, err = svc.Think(Thought{Text: "step one", Number: 1, Total: 3, NextNeeded: true})
	require.ErrorIs(t, err, sentinel)

	// Failed steps are not part of the chain
	assert.Equal(t, "No thinking steps recorded.", svc.Summary())
}

func TestLocalThinkConfirmations(t *testing.T) {
	local := NewLocal()

	out, err := local.Think(Thought{Text: "analyze the inputs", Number: 1, Total: 3, NextNeeded: true})
	require.NoError(t, err)
	assert.Contains(t, out, "Step 1/3 recorded")
	assert.Contains(t, out, "Continuing to step 2")

	out, err = local.Think(Thought{Text: "final conclusion", Number: 2, Total: 3, NextNeeded: false})
	require.NoError(t, err)
	assert.Contains(t, out, "Thinking complete, 2 steps total")
}

func TestLocalThinkTruncatesLongThoughts(t *testing.T) {
	local := NewLocal()

	long := strings.Repeat("x", 150)
	out, err := local.Think(Thought{Text: long, Number: 1, Total: 1, NextNeeded: false})
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 101))
}

func TestLocalSummaryMarkers(t *testing.T) {
	local := NewLocal()

	local.Think(Thought{Text: "first pass", Number: 1, Total: 3, NextNeeded: true})
	local.Think(Thought{Text: "better first pass", Number: 2, Total: 3, NextNeeded: true, IsRevision: true, Revises: 1})
	local.Think(Thought{Text: "alternative angle", Number: 3, Total: 3, NextNeeded: false, BranchFrom: 1, BranchID: "alt"})

	summary := local.Summary()
	assert.Contains(t, summary, "Thinking process (3 steps)")
	assert.Contains(t, summary, "[revises step 1]")
	assert.Contains(t, summary, "[branch: alt]")
}

func TestLocalReset(t *testing.T) {
	local := NewLocal()
	local.Think(Thought{Text: "stale", Number: 1, Total: 1, NextNeeded: false})

	local.Reset()
	assert.Equal(t, "No thinking steps recorded.", local.Summary())
}
