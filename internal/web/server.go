// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the single-page research UI and its JSON endpoint.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/logger"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// genericFailure is shown when a provider call fails. Details go to the log only.
const genericFailure = "Something went wrong while researching this topic. Please try again."

// maxBodyBytes bounds form and JSON request bodies.
const maxBodyBytes = 64 << 10

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Summarizer is the pipeline the handlers drive.
type Summarizer interface {
	Summarize(ctx context.Context, query string) (string, error)
	Report(ctx context.Context, query string) (*types.QueryReport, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	summarizer     Summarizer
	logger         *zap.Logger
	markdown       goldmark.Markdown
	requestTimeout time.Duration
}

// NewServer creates the UI server. A positive requestTimeout puts a deadline
// on each summarize call; zero leaves only the client's own cancellation.
func NewServer(s Summarizer, requestTimeout time.Duration, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		summarizer:     s,
		logger:         l,
		requestTimeout: requestTimeout,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Routes returns the router with middleware installed.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())

	r.Get("/", s.handleIndex)
	r.Post("/summarize", s.handleSummarize)
	r.Post("/api/summarize", s.handleAPISummarize)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type pageData struct {
	Query  string
	Output template.HTML
	Error  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, pageData{})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, pageData{Error: "Invalid form submission."})
		return
	}
	query := r.PostFormValue("query")

	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	md, err := s.summarizer.Summarize(ctx, query)
	if err != nil {
		logger.FromContext(r.Context(), s.logger).Error("summarize failed", zap.String("query", query), zap.Error(err))
		s.renderPage(w, r, http.StatusBadGateway, pageData{Query: query, Error: genericFailure})
		return
	}

	out, err := s.renderMarkdown(md)
	if err != nil {
		logger.FromContext(r.Context(), s.logger).Error("render markdown", zap.Error(err))
		s.renderPage(w, r, http.StatusInternalServerError, pageData{Query: query, Error: genericFailure})
		return
	}
	s.renderPage(w, r, http.StatusOK, pageData{Query: query, Output: out})
}

type apiRequest struct {
	Query string `json:"query"`
}

type apiResponse struct {
	*types.QueryReport
	Markdown string `json:"markdown"`
}

type apiError struct {
	Error string `json:"error"`
}

func (s *Server) handleAPISummarize(w http.ResponseWriter, r *http.Request) {
	var req apiRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body: " + err.Error()})
		return
	}

	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	report, err := s.summarizer.Report(ctx, req.Query)
	if errors.Is(err, summarize.ErrEmptyQuery) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: summarize.EmptyQueryWarning})
		return
	}
	if err != nil {
		logger.FromContext(r.Context(), s.logger).Error("summarize failed", zap.String("query", req.Query), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, apiError{Error: genericFailure})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{QueryReport: report, Markdown: summarize.Render(report)})
}

// pipelineContext derives the context for one summarize call.
func (s *Server) pipelineContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// renderMarkdown converts the assembled document to HTML. Raw HTML in the
// model output is not passed through.
func (s *Server) renderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output with unsafe HTML disabled
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		logger.FromContext(r.Context(), s.logger).Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// recoverer turns a handler panic into a 500 and logs the stack.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				s.logger.Error("panic recovered",
					zap.Any("panic", rvr),
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.Stack("stacktrace"),
				)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogger stores a request-scoped logger in the context and emits one
// canonical log line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := chimw.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}

		reqLogger := s.logger.With(zap.String("request_id", requestID))
		ctx := logger.ContextWithLogger(r.Context(), reqLogger)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", r.RemoteAddr),
			zap.Int("response_bytes", ww.BytesWritten()),
		)
	})
}
