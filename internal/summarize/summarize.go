// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize runs the query pipeline: web search, paper search,
// prompt construction, one model call, and assembly of the displayed
// markdown document.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/logger"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// EmptyQueryWarning is returned in place of a summary when the query is blank.
const EmptyQueryWarning = "⚠️ Please enter a valid research topic."

// ErrEmptyQuery is returned by Report for empty or whitespace-only queries.
var ErrEmptyQuery = errors.New("query is empty")

// Model abstracts the hosted language model so tests can supply a mock.
// One call sends the system instruction and the user context and returns
// the generated text.
type Model interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Summarizer sequences the two search backends and the model. It holds no
// per-query state and is safe for concurrent use when its collaborators are.
type Summarizer struct {
	web        search.Backend
	papers     search.Backend
	model      Model
	maxResults int
	logger     *zap.Logger
}

// New returns a Summarizer. maxResults <= 0 selects search.DefaultMaxResults.
// A nil logger disables logging outside of request-scoped loggers.
func New(web, papers search.Backend, model Model, maxResults int, l *zap.Logger) *Summarizer {
	if maxResults <= 0 {
		maxResults = search.DefaultMaxResults
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Summarizer{
		web:        web,
		papers:     papers,
		model:      model,
		maxResults: maxResults,
		logger:     l,
	}
}

// Summarize returns the assembled markdown for query. A blank query yields
// EmptyQueryWarning without contacting any provider. Provider failures are
// returned unrecovered.
func (s *Summarizer) Summarize(ctx context.Context, query string) (string, error) {
	report, err := s.Report(ctx, query)
	if errors.Is(err, ErrEmptyQuery) {
		return EmptyQueryWarning, nil
	}
	if err != nil {
		return "", err
	}
	return Render(report), nil
}

// Report runs the pipeline and returns the per-query aggregate. The web
// search always runs before the paper search; a failure at any step aborts
// the query even if an earlier step succeeded.
func (s *Summarizer) Report(ctx context.Context, query string) (*types.QueryReport, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	log := logger.FromContext(ctx, s.logger)

	web, err := s.runSearch(ctx, log, s.web, query)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	papers, err := s.runSearch(ctx, log, s.papers, query)
	if err != nil {
		return nil, fmt.Errorf("paper search: %w", err)
	}

	userPrompt, err := renderContext(query, papers, web)
	if err != nil {
		return nil, fmt.Errorf("rendering context: %w", err)
	}

	start := time.Now()
	text, err := s.model.Complete(ctx, systemPrompt, userPrompt)
	metrics.ObserveProvider("model", start, err)
	if err != nil {
		return nil, fmt.Errorf("generating summary: %w", err)
	}
	log.Debug("summary generated",
		zap.Int("chars", len(text)),
		zap.Duration("latency", time.Since(start)),
	)

	return &types.QueryReport{
		Query:        query,
		WebResults:   web,
		PaperResults: papers,
		SummaryText:  text,
	}, nil
}

func (s *Summarizer) runSearch(ctx context.Context, log *zap.Logger, b search.Backend, query string) ([]types.SearchResult, error) {
	start := time.Now()
	results, err := b.Search(ctx, query, s.maxResults)
	metrics.ObserveProvider(b.Name(), start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	metrics.ProviderResultsTotal.WithLabelValues(b.Name()).Add(float64(len(results)))
	log.Debug("search complete",
		zap.String("provider", b.Name()),
		zap.Int("results", len(results)),
		zap.Duration("latency", time.Since(start)),
	)
	return results, nil
}

// Render assembles the displayed document: a heading, the generated text,
// and the raw source list (web results then papers, in provider order).
func Render(report *types.QueryReport) string {
	var b strings.Builder
	b.WriteString("### 🧠 Summary\n")
	b.WriteString(report.SummaryText)
	b.WriteString("\n\n**Sources:**\n")

	lines := append(search.FormatLines(report.WebResults), search.FormatLines(report.PaperResults)...)
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
