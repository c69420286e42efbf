package newsdesk

import (
	"fmt"
	"strings"

	"github.com/newsdesk-ai/newsdesk/knowledge"
)

const researcherSystemPrompt = "You are an expert news researcher. Your job is to find the most relevant stories in the search results you are given and extract the key facts. Only report facts that appear in the results - never invent coverage."

const analystSystemPrompt = "You are a senior news analyst with fifteen years of experience. Your conclusions are always grounded in the reported facts and logical analysis. Answer with the analysis for the current step only, in a short paragraph."

const synthesisSystemPrompt = "You are an expert report writer. You synthesize information from multiple sources into a single clear report with concrete conclusions and recommendations, grounded strictly in the material you are given."

// analysisSteps are the angles the analyst works through, one thinking
// step each
var analysisSteps = []string{
	"Identify the main themes mentioned across all sources",
	"Find the unique insights each individual source contributes",
	"Highlight contradictions or differing points of view between sources",
	"Analyze the likely consequences of the reported events",
	"Formulate the key conclusions",
}

func buildResearchPrompt(source Source, topic, results string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these search results for news about %q from %s.\n", topic, source.Name)
	b.WriteString("Report in exactly this format:\n")
	fmt.Fprintf(&b, "SOURCE: %s\n", source.Name)
	b.WriteString("TOPICS: [main topics, comma separated]\n")
	b.WriteString("KEY FACTS: [list of facts]\n\n")
	b.WriteString("Search results:\n")
	b.WriteString(results)
	return b.String()
}

func buildStepPrompt(step, total int, task, topic, findings, previous string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step %d of %d in analyzing news about %q.\n", step, total, topic)
	fmt.Fprintf(&b, "Task: %s.\n\n", task)
	b.WriteString("Source findings:\n")
	b.WriteString(findings)
	if previous != "" {
		b.WriteString("\nEarlier steps:\n")
		b.WriteString(previous)
	}
	return b.String()
}

func buildSynthesisPrompt(topic, findings, analysis, history, graph string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a comprehensive report on %q covering:\n", topic)
	b.WriteString("1. Executive summary (2-3 sentences)\n")
	b.WriteString("2. Key findings from each source\n")
	b.WriteString("3. Main conclusions and trends\n")
	b.WriteString("4. Comparison with previous analyses, if any history is given\n")
	b.WriteString("5. What changed since the previous analysis\n")
	b.WriteString("6. Knowledge graph summary\n")
	b.WriteString("7. Recommendations for further monitoring\n\n")
	b.WriteString("Use the historical context to identify trends and changes.\n\n")
	b.WriteString("Source findings:\n")
	b.WriteString(findings)
	b.WriteString("\nAnalysis:\n")
	b.WriteString(analysis)
	b.WriteString("\nHistory:\n")
	b.WriteString(history)
	if graph != "" {
		b.WriteString("\nKnowledge graph:\n")
		b.WriteString(graph)
	}
	return b.String()
}

// formatHistory renders a previous-analysis lookup for the synthesis
// prompt and the final report
func formatHistory(topic string, result *knowledge.SearchResult) string {
	if !result.Found() {
		return fmt.Sprintf("This is the first analysis of %q. No historical data available.", topic)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ANALYSIS HISTORY FOR: %s\n\n", topic)
	for _, e := range result.Entities {
		switch e.Type {
		case knowledge.EntityTypeTopic:
			b.WriteString("Previous analysis:\n")
			for _, obs := range e.Observations {
				fmt.Fprintf(&b, "%s\n", obs)
			}
		case knowledge.EntityTypeSource:
			fmt.Fprintf(&b, "Previously used source %s:\n", e.Name)
			for _, obs := range e.Observations {
				fmt.Fprintf(&b, "- %s\n", obs)
			}
		}
	}
	return b.String()
}
