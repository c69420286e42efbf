package knowledge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Graph wraps the three memory-server tools behind typed operations
type Graph struct {
	createEntities  Tool
	createRelations Tool
	searchNodes     Tool
}

// NewGraph wires the graph to the discovered memory tools. Tool names
// are checked so a miswired adapter fails at construction, not mid-run.
func NewGraph(entities, relations, search Tool) (*Graph, error) {
	for _, pair := range []struct {
		tool Tool
		want string
	}{
		{entities, ToolCreateEntities},
		{relations, ToolCreateRelations},
		{search, ToolSearchNodes},
	} {
		if pair.tool == nil {
			return nil, fmt.Errorf("knowledge: missing tool %q", pair.want)
		}
		if pair.tool.Name() != pair.want {
			return nil, fmt.Errorf("knowledge: expected tool %q, got %q", pair.want, pair.tool.Name())
		}
	}
	return &Graph{
		createEntities:  entities,
		createRelations: relations,
		searchNodes:     search,
	}, nil
}

// SaveEntities creates the given entities in the graph
func (g *Graph) SaveEntities(entities []Entity) error {
	if len(entities) == 0 {
		return nil
	}
	_, err := g.createEntities.Call(map[string]interface{}{"entities": toMaps(entities)})
	if err != nil {
		return fmt.Errorf("knowledge: creating entities: %w", err)
	}
	return nil
}

// SaveRelations creates the given relations in the graph
func (g *Graph) SaveRelations(relations []Relation) error {
	if len(relations) == 0 {
		return nil
	}
	_, err := g.createRelations.Call(map[string]interface{}{"relations": toMaps(relations)})
	if err != nil {
		return fmt.Errorf("knowledge: creating relations: %w", err)
	}
	return nil
}

// Search queries the graph and decodes the matching neighborhood
func (g *Graph) Search(query string) (*SearchResult, error) {
	out, err := g.searchNodes.Call(map[string]interface{}{"query": query})
	if err != nil {
		return nil, fmt.Errorf("knowledge: searching %q: %w", query, err)
	}

	var result SearchResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, fmt.Errorf("knowledge: decoding search result: %w", err)
	}
	return &result, nil
}

// AnalysisRecord is one completed analysis to persist: the topic, the
// full analysis text, and the URLs each source contributed.
type AnalysisRecord struct {
	Topic      string
	Analysis   string
	SourceURLs map[string][]string
}

// GraphSummary counts what RecordAnalysis wrote
type GraphSummary struct {
	Topic     string
	Sources   []string
	Entities  int
	Relations int
	URLCounts map[string]int
}

func (s *GraphSummary) String() string {
	var b strings.Builder
	b.WriteString("KNOWLEDGE GRAPH SUMMARY\n")
	fmt.Fprintf(&b, "Topic: %q\n", s.Topic)
	fmt.Fprintf(&b, "Entities: %d, Relations: %d\n", s.Entities, s.Relations)
	for _, source := range s.Sources {
		fmt.Fprintf(&b, "- %s: %d URLs\n", source, s.URLCounts[source])
	}
	return b.String()
}

// RecordAnalysis persists one analysis: a source entity per source with
// its URLs as observations, a topic entity carrying the analysis text,
// and an analyzed_in relation from the topic to each source.
func (g *Graph) RecordAnalysis(rec AnalysisRecord) (*GraphSummary, error) {
	sources := make([]string, 0, len(rec.SourceURLs))
	for name := range rec.SourceURLs {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	entities := make([]Entity, 0, len(sources)+1)
	relations := make([]Relation, 0, len(sources))
	urlCounts := make(map[string]int, len(sources))

	for _, name := range sources {
		urls := rec.SourceURLs[name]
		urlCounts[name] = len(urls)
		if len(urls) == 0 {
			urls = []string{"No URLs found"}
		}
		entities = append(entities, Entity{
			Name:         name,
			Type:         EntityTypeSource,
			Observations: urls,
		})
		relations = append(relations, Relation{
			From: rec.Topic,
			To:   name,
			Type: RelationAnalyzedIn,
		})
	}
	entities = append(entities, Entity{
		Name:         rec.Topic,
		Type:         EntityTypeTopic,
		Observations: []string{rec.Analysis},
	})

	if err := g.SaveEntities(entities); err != nil {
		return nil, err
	}
	if err := g.SaveRelations(relations); err != nil {
		return nil, err
	}

	return &GraphSummary{
		Topic:     rec.Topic,
		Sources:   sources,
		Entities:  len(entities),
		Relations: len(relations),
		URLCounts: urlCounts,
	}, nil
}

// History looks up previous analyses of the topic. A nil error with
// Found() == false means this is the first analysis.
func (g *Graph) History(topic string) (*SearchResult, error) {
	return g.Search(topic)
}

func toMaps(v interface{}) []map[string]interface{} {
	data, _ := json.Marshal(v)
	var out []map[string]interface{}
	json.Unmarshal(data, &out)
	return out
}
