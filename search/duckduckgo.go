package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

const liteEndpoint = "https://lite.duckduckgo.com/lite/"

const defaultMaxResults = 3

// qps enforces one query per second across all DuckDuckGo instances and
// goroutines; the lite endpoint throttles anything faster.
var qps struct {
	mu   sync.Mutex
	last time.Time
}

// DuckDuckGo searches via DuckDuckGo's lite HTML interface, which is
// stable enough to scrape and requires no API key.
type DuckDuckGo struct {
	client     *http.Client
	maxResults int
	endpoint   string
}

// Option configures a DuckDuckGo provider
type Option func(*DuckDuckGo)

// WithHTTPClient substitutes the HTTP client, e.g. one with retries
func WithHTTPClient(client *http.Client) Option {
	return func(d *DuckDuckGo) {
		d.client = client
	}
}

// WithMaxResults caps how many results Search returns
func WithMaxResults(n int) Option {
	return func(d *DuckDuckGo) {
		if n > 0 {
			d.maxResults = n
		}
	}
}

// NewDuckDuckGo creates a provider with a modest timeout and a cap of
// three results per query
func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	d := &DuckDuckGo{
		client:     &http.Client{Timeout: 15 * time.Second},
		maxResults: defaultMaxResults,
		endpoint:   liteEndpoint,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search posts the query to the lite endpoint and scrapes the results.
// On 429 it backs off and retries, doubling the delay up to 30s.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search: query is empty")
	}

	if err := d.throttle(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)

	var resp *http.Response
	delay := time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = d.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search: reading response: %w", err)
	}
	return d.parse(string(body)), nil
}

func (d *DuckDuckGo) throttle(ctx context.Context) error {
	qps.mu.Lock()
	if wait := time.Until(qps.last.Add(time.Second)); wait > 0 {
		qps.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		qps.mu.Lock()
	}
	qps.last = time.Now()
	qps.mu.Unlock()
	return nil
}

// The lite page puts each hit in an <a class="result-link"> with the
// snippet in a following <td class="result-snippet">.
var (
	resultLinkRe    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	resultLinkAltRe = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	snippetRe       = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	anyLinkRe       = regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	tagRe           = regexp.MustCompile(`<[^>]+>`)
)

func (d *DuckDuckGo) parse(html string) []Result {
	matches := resultLinkRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = resultLinkAltRe.FindAllStringSubmatch(html, -1)
	}
	snippets := snippetRe.FindAllStringSubmatch(html, -1)

	var results []Result
	for i, m := range matches {
		if len(m) < 3 {
			continue
		}
		href := strings.TrimSpace(m[1])
		title := stripHTML(m[2])
		if href == "" || title == "" {
			continue
		}

		snippet := ""
		if i < len(snippets) && len(snippets[i]) > 1 {
			snippet = stripHTML(snippets[i][1])
		}

		results = append(results, Result{Title: title, URL: href, Snippet: snippet})
		if len(results) >= d.maxResults {
			break
		}
	}

	if len(results) == 0 {
		results = d.parseAnyLinks(html)
	}
	return results
}

// parseAnyLinks is the fallback when the page markup shifts: take
// external links with plausible titles, deduplicated by URL.
func (d *DuckDuckGo) parseAnyLinks(html string) []Result {
	var results []Result
	seen := make(map[string]bool)

	for _, m := range anyLinkRe.FindAllStringSubmatch(html, -1) {
		if len(m) < 3 {
			continue
		}
		href := strings.TrimSpace(m[1])
		title := stripHTML(m[2])

		if strings.Contains(href, "duckduckgo.com") ||
			strings.HasPrefix(href, "/") ||
			strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") {
			continue
		}
		if len(title) < 5 || seen[href] {
			continue
		}
		seen[href] = true

		results = append(results, Result{Title: title, URL: href})
		if len(results) >= d.maxResults {
			break
		}
	}
	return results
}

func stripHTML(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
