package knowledge

import (
	"errors"
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

func newTestGraph(t *testing.T) (*Graph, *fakeTool, *fakeTool, *fakeTool) {
	t.Helper()

	entities := &fakeTool{name: ToolCreateEntities, out: "ok"}
	relations := &fakeTool{name: ToolCreateRelations, out: "ok"}
	search := &fakeTool{name: ToolSearchNodes, out: `{"entities":[],"relations":[]}`}

	g, err := NewGraph(entities, relations, search)
	require.NoError(t, err)
	return g, entities, relations, search
}

func TestNewGraphRejectsMiswiredTools(t *testing.T) {
	entities := &fakeTool{name: ToolCreateEntities}
	relations := &fakeTool{name: ToolCreateRelations}

	_, err := NewGraph(entities, relations, &fakeTool{name: "read_graph"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ToolSearchNodes)

	_, err = NewGraph(entities, relations, nil)
	require.Error(t, err)
}

func TestRecordAnalysis(t *testing.T) {
	g, entities, relations, _ := newTestGraph(t)

	summary, err := g.RecordAnalysis(AnalysisRecord{
		Topic:    "artificial intelligence",
		Analysis: "five-step analysis text",
		SourceURLs: map[string][]string{
			"BBC News":     {"https://bbc.com/1", "https://bbc.com/2"},
			"CNN News":     {"https://cnn.com/1"},
			"Reuters News": nil,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Entities)
	assert.Equal(t, 3, summary.Relations)
	assert.Equal(t, []string{"BBC News", "CNN News", "Reuters News"}, summary.Sources)
	assert.Equal(t, 2, summary.URLCounts["BBC News"])
	assert.Equal(t, 0, summary.URLCounts["Reuters News"])

	require.Len(t, entities.calls, 1)
	created, ok := entities.calls[0]["entities"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, created, 4)

	// Sources first in name order, topic last
	assert.Equal(t, "BBC News", created[0]["name"])
	assert.Equal(t, "source", created[0]["entityType"])
	assert.Equal(t, []interface{}{"https://bbc.com/1", "https://bbc.com/2"}, created[0]["observations"])

	// A source with no URLs still gets an observation
	assert.Equal(t, []interface{}{"No URLs found"}, created[2]["observations"])

	topic := created[3]
	assert.Equal(t, "artificial intelligence", topic["name"])
	assert.Equal(t, "topic", topic["entityType"])
	assert.Equal(t, []interface{}{"five-step analysis text"}, topic["observations"])

	require.Len(t, relations.calls, 1)
	linked, ok := relations.calls[0]["relations"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, linked, 3)
	for _, rel := range linked {
		assert.Equal(t, "artificial intelligence", rel["from"])
		assert.Equal(t, "analyzed_in", rel["relationType"])
	}
}

func TestRecordAnalysisPropagatesToolErrors(t *testing.T) {
	g, entities, _, _ := newTestGraph(t)
	sentinel := errors.New("memory server down")
	entities.err = sentinel

	_, err := g.RecordAnalysis(AnalysisRecord{
		Topic:      "quantum computing",
		Analysis:   "text",
		SourceURLs: map[string][]string{"BBC News": {"https://bbc.com/1"}},
	})
	require.ErrorIs(t, err, sentinel)
}

func TestHistoryFirstAnalysis(t *testing.T) {
	g, _, _, search := newTestGraph(t)

	result, err := g.History("fusion energy")
	require.NoError(t, err)
	assert.False(t, result.Found())

	require.Len(t, search.calls, 1)
	assert.Equal(t, "fusion energy", search.calls[0]["query"])
}

func TestHistoryDecodesNeighborhood(t *testing.T) {
	g, _, _, search := newTestGraph(t)
	search.out = `{
		"entities": [
			{"name":"fusion energy","entityType":"topic","observations":["previous analysis"]},
			{"name":"BBC News","entityType":"source","observations":["https://bbc.com/old"]}
		],
		"relations": [
			{"from":"fusion energy","to":"BBC News","relationType":"analyzed_in"}
		]
	}`

	result, err := g.History("fusion energy")
	require.NoError(t, err)
	require.True(t, result.Found())

	require.Len(t, result.Entities, 2)
	assert.Equal(t, "topic", result.Entities[0].Type)
	assert.Equal(t, []string{"previous analysis"}, result.Entities[0].Observations)
	require.Len(t, result.Relations, 1)
	assert.Equal(t, "analyzed_in", result.Relations[0].Type)
}

func TestSearchRejectsMalformedReply(t *testing.T) {
	g, _, _, search := newTestGraph(t)
	search.out = "not json"

	_, err := g.Search("anything")
	require.Error(t, err)
}

func TestSaveNothingIsANoop(t *testing.T) {
	g, entities, relations, _ := newTestGraph(t)

	require.NoError(t, g.SaveEntities(nil))
	require.NoError(t, g.SaveRelations(nil))
	assert.Empty(t, entities.calls)
	assert.Empty(t, relations.calls)
}

func TestGraphSummaryString(t *testing.T) {
	s := &GraphSummary{
		Topic:     "ai",
		Sources:   []string{"BBC News"},
		Entities:  2,
		Relations: 1,
		URLCounts: map[string]int{"BBC News": 3},
	}

	out := s.String()
	assert.Contains(t, out, "KNOWLEDGE GRAPH SUMMARY")
	assert.Contains(t, out, "Entities: 2, Relations: 1")
	assert.Contains(t, out, "BBC News: 3 URLs")
}
