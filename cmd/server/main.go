package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mwapsam/ubungo-iq/internal/ai"
	"github.com/Mwapsam/ubungo-iq/internal/alerts"
	"github.com/Mwapsam/ubungo-iq/internal/analysis"
	"github.com/Mwapsam/ubungo-iq/internal/config"
	"github.com/Mwapsam/ubungo-iq/internal/ingest"
	"github.com/Mwapsam/ubungo-iq/internal/notifier"
	"github.com/Mwapsam/ubungo-iq/internal/scheduler"
	"github.com/Mwapsam/ubungo-iq/internal/scraper"
	"github.com/Mwapsam/ubungo-iq/internal/storage"
	"github.com/Mwapsam/ubungo-iq/internal/trends"
	"github.com/Mwapsam/ubungo-iq/internal/validator"
)

type Server struct {
	scheduler *scheduler.Scheduler
	alerts    *alerts.Engine
	analyzer  *analysis.Analyzer
	store     *storage.Client
	webhook   *notifier.Client
	content   *ai.Pipeline
	logger    *slog.Logger

	mu         sync.RWMutex
	lastResult *alerts.MonitorResult
}

func main() {
	logger := slog.Default()
	logger.Info("Starting marketplace intelligence server...")

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.ProjectID, logger)
	if err != nil {
		logger.Error("Critical error initializing Firestore client", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	sources, err := config.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		logger.Error("Critical error loading source configuration", "error", err)
		os.Exit(1)
	}
	if err := store.SeedSources(ctx, sources); err != nil {
		logger.Error("Critical error seeding sources", "error", err)
		os.Exit(1)
	}

	registry := scraper.NewRegistry(
		scraper.NewAlibabaAdapter(),
		scraper.NewGlobalTradeAdapter(),
		scraper.NewEtsyAdapter(),
	)
	engine := ingest.New(store, store, registry, validator.New(), cfg.MaxStoredItems)
	aggregator := trends.NewAggregator(store, store)
	analyzer := analysis.NewAnalyzer(store)
	alertEngine := alerts.NewEngine(store, analyzer, logger)
	webhook := notifier.New(cfg.AlertWebhookURL)
	sched := scheduler.New(store, engine, aggregator, cfg.RetryAttempts, cfg.RetryBackoff, logger)

	var generator ai.Generator
	if cfg.GenAIEnabled {
		client, err := ai.NewClient(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			logger.Error("Failed to initialize content generator", "error", err)
			os.Exit(1)
		}
		if client != nil {
			generator = client
		}
	}
	content := ai.NewPipeline(store, store, generator, logger)

	srv := &Server{
		scheduler: sched,
		alerts:    alertEngine,
		analyzer:  analyzer,
		store:     store,
		webhook:   webhook,
		content:   content,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/run-extraction", srv.RunExtractionHandler)
	mux.HandleFunc("/monitor-alerts", srv.MonitorAlertsHandler)
	mux.HandleFunc("/alerts", srv.AlertsHandler)
	mux.HandleFunc("/report", srv.ReportHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	loopCtx, cancelLoops := context.WithCancel(ctx)
	go srv.extractionLoop(loopCtx, cfg.ExtractionInterval)
	go srv.monitorLoop(loopCtx, cfg.MonitorInterval)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		logger.Info("Received signal, shutting down gracefully...", "signal", sig)

		cancelLoops()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	logger.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped.")
}

func (s *Server) extractionLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runExtraction(ctx, false)
		}
	}
}

func (s *Server) monitorLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.runMonitoring(ctx); err != nil {
				s.logger.Error("Scheduled monitoring failed", "error", err)
			}
		}
	}
}

// runExtraction dispatches due sources and then advances the content
// pipeline on whatever fresh topics the pass produced.
func (s *Server) runExtraction(ctx context.Context, force bool) {
	summary, err := s.scheduler.Dispatch(ctx, force)
	if err != nil {
		s.logger.Error("Extraction dispatch failed", "error", err)
		return
	}
	if summary.Succeeded == 0 {
		return
	}

	if _, err := s.content.QueueTrendingContent(ctx); err != nil {
		s.logger.Error("Content queueing failed", "error", err)
	}
	if _, err := s.content.ProcessQueue(ctx); err != nil {
		s.logger.Error("Content generation failed", "error", err)
	}
}

// runMonitoring combines market alerts with pipeline health alerts, caches
// the result for the read endpoint, and notifies the urgent subset.
func (s *Server) runMonitoring(ctx context.Context) (*alerts.MonitorResult, error) {
	marketAlerts, err := s.alerts.MonitorMarketChanges(ctx)
	if err != nil {
		return nil, err
	}

	healthAlerts, err := alerts.CheckSourceHealth(ctx, s.store, time.Now())
	if err != nil {
		s.logger.Warn("Source health check failed", "error", err)
	} else {
		marketAlerts = append(marketAlerts, healthAlerts...)
	}

	result := alerts.Summarize(marketAlerts)

	s.mu.Lock()
	s.lastResult = &result
	s.mu.Unlock()

	if urgent := alerts.Urgent(marketAlerts); len(urgent) > 0 {
		if err := s.webhook.SendAlerts(ctx, marketAlerts); err != nil {
			s.logger.Error("Alert notification failed", "error", err)
		} else {
			s.logger.Info("Alert notification sent", "urgent", len(urgent))
		}
	}
	return &result, nil
}

func (s *Server) RunExtractionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extraction can exceed request timeouts, so it runs detached.
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Panic in extraction run", "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.runExtraction(ctx, true)
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "Extraction started.")
}

func (s *Server) MonitorAlertsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.runMonitoring(ctx)
	if err != nil {
		s.logger.Error("Monitoring run failed", "error", err)
		http.Error(w, "monitoring failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (s *Server) AlertsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	result := s.lastResult
	s.mu.RUnlock()

	if result == nil {
		writeJSON(w, map[string]any{"alerts": []any{}, "alerts_generated": 0})
		return
	}
	writeJSON(w, map[string]any{
		"alerts":           result.Alerts,
		"alerts_generated": result.AlertsGenerated,
		"critical_alerts":  result.CriticalAlerts,
		"high_alerts":      result.HighAlerts,
	})
}

func (s *Server) ReportHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	report, err := s.analyzer.GenerateReport(ctx)
	if err != nil {
		s.logger.Error("Report generation failed", "error", err)
		http.Error(w, "report generation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
