// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Package-level var for test substitution.
var tavilyAPIURL = "https://api.tavily.com/search"

// TavilyBackend calls the Tavily web search API.
type TavilyBackend struct {
	APIKey    string
	Depth     string
	UserAgent string
	Client    *http.Client
}

// NewTavilyBackend builds the web adapter from the shared search config.
func NewTavilyBackend(cfg types.SearchConfig) *TavilyBackend {
	depth := cfg.TavilyDepth
	if depth == "" {
		depth = "basic"
	}
	return &TavilyBackend{
		APIKey:    cfg.TavilyAPIKey,
		Depth:     depth,
		UserAgent: cfg.UserAgent,
		Client:    httputil.NewClient(cfg.HTTPConfig),
	}
}

// Name returns the backend identifier.
func (t *TavilyBackend) Name() string { return TavilySource }

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

// Search posts the query to Tavily and returns up to k results labeled W1..Wk
// in the order Tavily ranked them.
func (t *TavilyBackend) Search(ctx context.Context, query string, k int) ([]types.SearchResult, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	k = capResults(k)

	payload, err := json.Marshal(tavilyRequest{
		APIKey:      t.APIKey,
		Query:       query,
		MaxResults:  k,
		SearchDepth: t.Depth,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse("tavily", resp); err != nil {
		return nil, err
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decoding tavily response: %w", err)
	}

	results := make([]types.SearchResult, 0, min(k, len(tr.Results)))
	for _, r := range tr.Results {
		if len(results) == k {
			break
		}
		results = append(results, types.SearchResult{
			Title:  r.Title,
			URL:    r.URL,
			Source: t.Name(),
		})
	}
	assignLabels(results, WebPrefix)
	return results, nil
}
