// Package search finds recent news coverage. DuckDuckGo is the only
// provider; it scrapes the lite HTML interface and needs no API key.
package search

import (
	"fmt"
	"strings"
)

// Result is one search hit
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Format renders results the way research prompts expect them: numbered,
// with a truncated snippet and the URL on its own line.
func Format(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No news found for query: %s", query)
	}

	var b strings.Builder
	for i, r := range results {
		snippet := r.Snippet
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		if snippet != "" {
			fmt.Fprintf(&b, "   %s\n", snippet)
		}
		fmt.Fprintf(&b, "   %s\n\n", r.URL)
	}
	return b.String()
}
