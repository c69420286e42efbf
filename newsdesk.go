// Package newsdesk orchestrates multi-source news analysis: parallel
// searches against configured sources, structured step-by-step analysis
// through a sequential-thinking tool server, persistence into a
// knowledge graph, and synthesis of a final report with historical
// context.
package newsdesk

import (
	"context"
	"time"

	"github.com/newsdesk-ai/newsdesk/search"
)

// SearchProvider executes a query and returns results
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// LLMProvider is implemented by language model clients
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Source is one news outlet to research
type Source struct {
	// Name is the entity name recorded in the knowledge graph
	Name string
	// Site scopes search queries, e.g. "bbc.com"
	Site string
}

// DefaultSources are the outlets researched when none are configured
var DefaultSources = []Source{
	{Name: "BBC News", Site: "bbc.com"},
	{Name: "CNN News", Site: "cnn.com"},
	{Name: "Reuters News", Site: "reuters.com"},
}

// Finding is what one source contributed to a run
type Finding struct {
	Source  Source
	Report  string
	URLs    []string
	Err     error
}

// Report is the complete output of one analysis run
type Report struct {
	ID          string
	Topic       string
	GeneratedAt time.Time
	Duration    time.Duration

	Findings []Finding
	Analysis string
	History  string
	Graph    string
	Summary  string
}
