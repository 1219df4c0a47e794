// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

type stubSummarizer struct {
	report  *types.QueryReport
	err     error
	queries []string
}

func (s *stubSummarizer) Report(_ context.Context, query string) (*types.QueryReport, error) {
	s.queries = append(s.queries, query)
	if strings.TrimSpace(query) == "" {
		return nil, summarize.ErrEmptyQuery
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubSummarizer) Summarize(ctx context.Context, query string) (string, error) {
	report, err := s.Report(ctx, query)
	if errors.Is(err, summarize.ErrEmptyQuery) {
		return summarize.EmptyQueryWarning, nil
	}
	if err != nil {
		return "", err
	}
	return summarize.Render(report), nil
}

func sampleReport() *types.QueryReport {
	return &types.QueryReport{
		Query: "quantum error correction",
		WebResults: []types.SearchResult{
			{Label: "W1", Title: "Surface codes", URL: "https://example.com/s", Source: "tavily"},
		},
		PaperResults: []types.SearchResult{
			{Label: "A1", Title: "Below threshold", URL: "http://arxiv.org/pdf/2301.07041", PublishedDate: "2023-01-17", Source: "arxiv"},
		},
		SummaryText: "- Logical error rates fall with code distance (A1) (W1)\n- <script>alert(1)</script>",
	}
}

func postForm(t *testing.T, h http.Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"query": {query}}
	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	h := NewServer(&stubSummarizer{}, 0, nil).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<textarea id="query" name="query"`)
	assert.Contains(t, body, `<button type="submit">`)
	assert.Contains(t, body, `id="summary_box"`)
	assert.Contains(t, body, "Made with")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSummarizeFormRendersMarkdown(t *testing.T) {
	stub := &stubSummarizer{report: sampleReport()}
	h := NewServer(stub, 0, nil).Routes()

	rec := postForm(t, h, "quantum error correction")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h3>🧠 Summary</h3>")
	assert.Contains(t, body, "<strong>Sources:</strong>")
	assert.Contains(t, body, "[W1] Surface codes")
	assert.Contains(t, body, "[A1] Below threshold — Published: 2023-01-17")
	assert.NotContains(t, body, "<script>alert(1)</script>", "raw HTML from the model must not pass through")
	assert.Equal(t, []string{"quantum error correction"}, stub.queries)
}

func TestSummarizeFormEmptyQuery(t *testing.T) {
	h := NewServer(&stubSummarizer{}, 0, nil).Routes()

	rec := postForm(t, h, "   ")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a valid research topic.")
}

func TestSummarizeFormProviderFailure(t *testing.T) {
	stub := &stubSummarizer{err: errors.New("paper search: arxiv: arXiv API returned HTTP 503")}
	h := NewServer(stub, 0, nil).Routes()

	rec := postForm(t, h, "qubits")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, genericFailure)
	assert.NotContains(t, body, "HTTP 503", "provider details stay in the log")
	assert.Contains(t, body, ">qubits</textarea>", "query is kept in the input")
}

// slowSummarizer waits for its context to end, like a provider that never answers.
type slowSummarizer struct{}

func (slowSummarizer) Report(ctx context.Context, _ string) (*types.QueryReport, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s slowSummarizer) Summarize(ctx context.Context, query string) (string, error) {
	_, err := s.Report(ctx, query)
	return "", err
}

func TestSummarizeFormRequestTimeout(t *testing.T) {
	h := NewServer(slowSummarizer{}, 20*time.Millisecond, nil).Routes()

	rec := postForm(t, h, "qubits")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), genericFailure, "a deadline still produces the failure page")
}

func TestAPISummarizeRequestTimeout(t *testing.T) {
	h := NewServer(slowSummarizer{}, 20*time.Millisecond, nil).Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"query":"qubits"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), genericFailure)
}

func TestAPISummarize(t *testing.T) {
	h := NewServer(&stubSummarizer{report: sampleReport()}, 0, nil).Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(`{"query":"quantum error correction"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		Query        string               `json:"query"`
		WebResults   []types.SearchResult `json:"web_results"`
		PaperResults []types.SearchResult `json:"paper_results"`
		Summary      string               `json:"summary"`
		Markdown     string               `json:"markdown"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "quantum error correction", got.Query)
	require.Len(t, got.WebResults, 1)
	assert.Equal(t, "W1", got.WebResults[0].Label)
	require.Len(t, got.PaperResults, 1)
	assert.Equal(t, "2023-01-17", got.PaperResults[0].PublishedDate)
	assert.True(t, strings.HasPrefix(got.Markdown, "### 🧠 Summary\n"))
	assert.True(t, strings.HasSuffix(got.Markdown, "[A1] Below threshold — Published: 2023-01-17 — http://arxiv.org/pdf/2301.07041"))
}

func TestAPISummarizeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest, wantError: "invalid request body"},
		{name: "empty query", body: `{"query":"  "}`, wantStatus: http.StatusBadRequest, wantError: summarize.EmptyQueryWarning},
		{name: "provider failure", body: `{"query":"q"}`, err: errors.New("web search: tavily: timeout"), wantStatus: http.StatusBadGateway, wantError: genericFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewServer(&stubSummarizer{report: sampleReport(), err: tt.err}, 0, nil).Routes()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got apiError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Contains(t, got.Error, tt.wantError)
		})
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	h := NewServer(&stubSummarizer{}, 0, nil).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "research_assistant_http_requests_total")
}

func TestRecovererReturns500(t *testing.T) {
	s := NewServer(&stubSummarizer{}, 0, nil)
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
