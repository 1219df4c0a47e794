// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant pipeline.
package types

// UnknownDate is displayed in place of a paper's publication date when the
// provider omits it or returns a value that cannot be parsed.
const UnknownDate = "Unknown date"

// SearchResult is one descriptor returned by a search adapter. Results are
// transient: they live for a single query and are discarded after rendering.
type SearchResult struct {
	// Label is the citation tag assigned by position within its list
	// ("W1", "W2", ... for web results, "A1", ... for papers).
	Label string `json:"label" yaml:"label"`

	// Title is the page or paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the page URL for web results and the PDF link for papers.
	URL string `json:"url" yaml:"url"`

	// PublishedDate is the formatted publication date (YYYY-MM-DD) or
	// UnknownDate. Empty for web results.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// Source identifies which backend produced the result (e.g. "tavily", "arxiv").
	Source string `json:"source" yaml:"source"`
}

// QueryReport aggregates one query's adapter outputs and the generated summary.
// It is owned by the request that produced it.
type QueryReport struct {
	Query        string         `json:"query" yaml:"query"`
	WebResults   []SearchResult `json:"web_results" yaml:"web_results"`
	PaperResults []SearchResult `json:"paper_results" yaml:"paper_results"`
	SummaryText  string         `json:"summary" yaml:"summary"`
}
