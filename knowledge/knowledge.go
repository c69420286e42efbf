// Package knowledge persists analysis results in the memory tool
// server's knowledge graph: one entity per news source, one entity per
// analyzed topic, and analyzed_in relations from topic to sources.
// Accumulated over runs, the graph gives later analyses of the same
// topic their historical context.
package knowledge

// Tool names the memory server advertises.
const (
	ToolCreateEntities  = "create_entities"
	ToolCreateRelations = "create_relations"
	ToolSearchNodes     = "search_nodes"
)

// RelationAnalyzedIn links a topic entity to a source it was analyzed in.
const RelationAnalyzedIn = "analyzed_in"

// Entity type names. All entity names are kept in English for
// consistency across runs.
const (
	EntityTypeSource = "source"
	EntityTypeTopic  = "topic"
)

// Entity is one node in the knowledge graph
type Entity struct {
	Name         string   `json:"name"`
	Type         string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// Relation is one directed edge in the knowledge graph
type Relation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"relationType"`
}

// SearchResult is the graph neighborhood the memory server returns for
// a search_nodes query
type SearchResult struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// Found reports whether the query matched anything
func (r *SearchResult) Found() bool {
	return r != nil && len(r.Entities) > 0
}

// Tool is the callable surface the graph needs from a discovered tool.
// *bridge.ToolAdapter satisfies it.
type Tool interface {
	Name() string
	Call(args map[string]interface{}) (string, error)
}
