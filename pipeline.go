package newsdesk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/newsdesk-ai/newsdesk/knowledge"
	"github.com/newsdesk-ai/newsdesk/search"
	"github.com/newsdesk-ai/newsdesk/thinking"
)

// Pipeline runs the full analysis flow for one topic at a time:
// parallel source research, history lookup, step-by-step analysis,
// knowledge persistence, and synthesis.
type Pipeline struct {
	logger   *slog.Logger
	searcher SearchProvider
	llm      LLMProvider
	thinker  thinking.Thinker
	graph    *knowledge.Graph
	sources  []Source
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithSources overrides the outlets to research
func WithSources(sources []Source) Option {
	return func(p *Pipeline) {
		if len(sources) > 0 {
			p.sources = sources
		}
	}
}

// WithKnowledgeGraph enables history lookups and analysis persistence.
// Without it, runs still work but carry no memory between them.
func WithKnowledgeGraph(graph *knowledge.Graph) Option {
	return func(p *Pipeline) { p.graph = graph }
}

// NewPipeline wires the pipeline. Searcher, llm, and thinker are
// required; the knowledge graph is optional.
func NewPipeline(searcher SearchProvider, llm LLMProvider, thinker thinking.Thinker, opts ...Option) (*Pipeline, error) {
	if searcher == nil {
		return nil, errors.New("newsdesk: search provider is required")
	}
	if llm == nil {
		return nil, errors.New("newsdesk: LLM provider is required")
	}
	if thinker == nil {
		return nil, errors.New("newsdesk: thinker is required")
	}

	p := &Pipeline{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		searcher: searcher,
		llm:      llm,
		thinker:  thinker,
		sources:  DefaultSources,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run analyzes one topic end to end. Individual source failures are
// tolerated; the run fails only when every source fails or a later
// stage does.
func (p *Pipeline) Run(ctx context.Context, topic string) (*Report, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("newsdesk: topic is empty")
	}

	start := time.Now()
	p.logger.Info("starting analysis", "topic", topic, "sources", len(p.sources))

	findings, err := p.research(ctx, topic)
	if err != nil {
		return nil, err
	}
	findingsText := joinFindings(findings)

	history := p.lookupHistory(topic)

	analysis, err := p.analyze(ctx, topic, findingsText)
	if err != nil {
		return nil, err
	}

	graphSummary := p.persist(topic, analysis, findings)

	summary, err := p.llm.Generate(ctx, synthesisSystemPrompt,
		buildSynthesisPrompt(topic, findingsText, analysis, history, graphSummary))
	if err != nil {
		return nil, fmt.Errorf("newsdesk: synthesizing report: %w", err)
	}

	report := &Report{
		ID:          uuid.NewString(),
		Topic:       topic,
		GeneratedAt: start,
		Duration:    time.Since(start),
		Findings:    findings,
		Analysis:    analysis,
		History:     history,
		Graph:       graphSummary,
		Summary:     summary,
	}
	p.logger.Info("analysis complete", "topic", topic, "report", report.ID, "duration", report.Duration)
	return report, nil
}

// research queries every source in parallel. Failures are recorded in
// the finding rather than aborting the others.
func (p *Pipeline) research(ctx context.Context, topic string) ([]Finding, error) {
	findings := make([]Finding, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		g.Go(func() error {
			findings[i] = p.researchSource(gctx, src, topic)
			if findings[i].Err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	succeeded := 0
	for _, f := range findings {
		if f.Err == nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("newsdesk: research failed for all %d sources", len(p.sources))
	}
	return findings, nil
}

func (p *Pipeline) researchSource(ctx context.Context, src Source, topic string) Finding {
	query := fmt.Sprintf("site:%s %s news", src.Site, topic)

	results, err := p.searcher.Search(ctx, query)
	if err != nil {
		p.logger.Warn("source search failed", "source", src.Name, "error", err)
		return Finding{Source: src, Err: err}
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}

	report, err := p.llm.Generate(ctx, researcherSystemPrompt,
		buildResearchPrompt(src, topic, search.Format(query, results)))
	if err != nil {
		p.logger.Warn("source research failed", "source", src.Name, "error", err)
		return Finding{Source: src, URLs: urls, Err: err}
	}

	p.logger.Info("source researched", "source", src.Name, "results", len(results))
	return Finding{Source: src, Report: report, URLs: urls}
}

// analyze works through the analysis steps, generating each thought
// with the LLM and recording it with the thinker
func (p *Pipeline) analyze(ctx context.Context, topic, findings string) (string, error) {
	total := len(analysisSteps)
	var chain strings.Builder

	for i, task := range analysisSteps {
		number := i + 1
		text, err := p.llm.Generate(ctx, analystSystemPrompt,
			buildStepPrompt(number, total, task, topic, findings, chain.String()))
		if err != nil {
			return "", fmt.Errorf("newsdesk: analysis step %d: %w", number, err)
		}

		if _, err := p.thinker.Think(thinking.Thought{
			Text:       text,
			Number:     number,
			Total:      total,
			NextNeeded: number < total,
		}); err != nil {
			return "", fmt.Errorf("newsdesk: recording step %d: %w", number, err)
		}

		fmt.Fprintf(&chain, "Step %d - %s:\n%s\n\n", number, task, text)
	}
	return chain.String(), nil
}

// lookupHistory is best-effort: a failed lookup degrades to a run
// without historical context
func (p *Pipeline) lookupHistory(topic string) string {
	if p.graph == nil {
		return fmt.Sprintf("This is the first analysis of %q. No historical data available.", topic)
	}

	result, err := p.graph.History(topic)
	if err != nil {
		p.logger.Warn("history lookup failed", "topic", topic, "error", err)
		return "History unavailable for this run."
	}
	if result.Found() {
		p.logger.Info("previous analyses found", "topic", topic, "entities", len(result.Entities))
	}
	return formatHistory(topic, result)
}

// persist is best-effort for the same reason
func (p *Pipeline) persist(topic, analysis string, findings []Finding) string {
	if p.graph == nil {
		return ""
	}

	urls := make(map[string][]string, len(findings))
	for _, f := range findings {
		if f.Err == nil {
			urls[f.Source.Name] = f.URLs
		}
	}

	summary, err := p.graph.RecordAnalysis(knowledge.AnalysisRecord{
		Topic:      topic,
		Analysis:   analysis,
		SourceURLs: urls,
	})
	if err != nil {
		p.logger.Warn("knowledge persistence failed", "topic", topic, "error", err)
		return ""
	}
	p.logger.Info("knowledge graph updated", "entities", summary.Entities, "relations", summary.Relations)
	return summary.String()
}

func joinFindings(findings []Finding) string {
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "=== %s ===\n", f.Source.Name)
		if f.Err != nil {
			fmt.Fprintf(&b, "(unavailable: %v)\n\n", f.Err)
			continue
		}
		b.WriteString(f.Report)
		b.WriteString("\n\n")
	}
	return b.String()
}
