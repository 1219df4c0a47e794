// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search adapts external search providers (Tavily web search, the
// arXiv paper index) to labeled, provider-ordered result lists.
package search

import (
	"context"
	"fmt"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultMaxResults is the result cap used when a caller passes k <= 0.
const DefaultMaxResults = 5

// Label prefixes for the two result lists.
const (
	WebPrefix   = "W"
	PaperPrefix = "A"
)

// Source names recorded on each result. FormatLine picks the line layout by source.
const (
	TavilySource = "tavily"
	ArxivSource  = "arxiv"
)

// Backend searches a single provider. Implementations issue exactly one
// request per call, keep the provider's ranking, and return at most k
// labeled results. Fewer (or zero) results are not an error.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, k int) ([]types.SearchResult, error)
}

// capResults returns k when positive, else DefaultMaxResults.
func capResults(k int) int {
	if k <= 0 {
		return DefaultMaxResults
	}
	return k
}

// assignLabels numbers results in place as prefix1, prefix2, ... in slice order.
// Numbering always starts at 1; labels have no meaning outside one list.
func assignLabels(results []types.SearchResult, prefix string) {
	for i := range results {
		results[i].Label = fmt.Sprintf("%s%d", prefix, i+1)
	}
}

// FormatLine renders a result as the single line shown to the model and
// listed under Sources. Papers carry their publication date.
func FormatLine(r types.SearchResult) string {
	switch r.Source {
	case ArxivSource:
		date := r.PublishedDate
		if date == "" {
			date = types.UnknownDate
		}
		return fmt.Sprintf("[%s] %s — Published: %s — %s", r.Label, r.Title, date, r.URL)
	default:
		return fmt.Sprintf("[%s] %s (%s)", r.Label, r.Title, r.URL)
	}
}

// FormatLines renders each result with FormatLine, preserving order.
func FormatLines(results []types.SearchResult) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, FormatLine(r))
	}
	return lines
}
