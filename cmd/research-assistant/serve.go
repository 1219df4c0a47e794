// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/logger"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the research UI",
	Long: `Serve starts the web UI. Both API keys must be available at startup; the
process exits with an error before listening if either is missing.

Routes: GET / (UI), POST /summarize (form), POST /api/summarize (JSON),
GET /healthz, GET /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().String("secrets-dir", ".secrets/", "directory holding API key files")
	serveCmd.Flags().Int("max-results", 0, "results per provider (overrides search.max_results)")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("search.max_results", serveCmd.Flags().Lookup("max-results"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	secretsDir, _ := cmd.Flags().GetString("secrets-dir")
	if err := applySecrets(&cfg, secretsDir, log); err != nil {
		return err
	}

	// Provider clients are built once and shared by every request.
	summarizer := summarize.New(
		search.NewTavilyBackend(cfg.Search),
		search.NewArxivBackend(cfg.Search),
		summarize.NewOpenAIModel(cfg.Model),
		cfg.Search.MaxResults,
		log,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      web.NewServer(summarizer, cfg.Server.RequestTimeout, log).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting research-assistant",
			zap.String("version", version),
			zap.String("addr", cfg.Server.Addr),
			zap.String("model", cfg.Model.Name),
			zap.Int("max_results", cfg.Search.MaxResults),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
