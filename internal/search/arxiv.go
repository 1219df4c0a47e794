// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivDateLayout is the display format for publication dates.
const arxivDateLayout = "2006-01-02"

// ArxivBackend queries the arXiv API for papers.
type ArxivBackend struct {
	Client    *http.Client
	UserAgent string
}

// NewArxivBackend builds the paper adapter from the shared search config.
func NewArxivBackend(cfg types.SearchConfig) *ArxivBackend {
	return &ArxivBackend{
		Client:    httputil.NewClient(cfg.HTTPConfig),
		UserAgent: cfg.UserAgent,
	}
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return ArxivSource }

// Search queries the arXiv API and returns up to k papers labeled A1..Ak in
// feed order. The query is passed through unchanged, so arXiv field syntax
// such as "ti:transformer AND au:vaswani" keeps its meaning.
func (b *ArxivBackend) Search(ctx context.Context, query string, k int) ([]types.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	k = capResults(k)

	params := url.Values{}
	params.Set("search_query", q)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(k))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse("arXiv API", resp); err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	results := make([]types.SearchResult, 0, min(k, len(feed.Entries)))
	for _, entry := range feed.Entries {
		if len(results) == k {
			break
		}
		results = append(results, types.SearchResult{
			Title:         normalizeSpace(entry.Title),
			URL:           entry.pdfURL(),
			PublishedDate: formatPublished(entry.Published),
			Source:        b.Name(),
		})
	}
	assignLabels(results, PaperPrefix)
	return results, nil
}

// formatPublished parses an Atom timestamp and formats it as YYYY-MM-DD.
// Absent or unparsable values yield types.UnknownDate rather than an error.
func formatPublished(published string) string {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(published))
	if err != nil {
		return types.UnknownDate
	}
	return t.Format(arxivDateLayout)
}

// normalizeSpace collapses the line breaks and indentation arXiv puts in titles.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Published string      `xml:"published"`
	Links     []arxivLink `xml:"link"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// pdfURL returns the entry's PDF link. Entries without one fall back to the
// abs URL rewritten to its /pdf/ form
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "http://arxiv.org/pdf/2301.07041v1").
func (e arxivEntry) pdfURL() string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	id := strings.TrimSpace(e.ID)
	if strings.Contains(id, "/abs/") {
		return strings.Replace(id, "/abs/", "/pdf/", 1)
	}
	return id
}
