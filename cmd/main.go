package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/http/api"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/notify"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/recognition"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/adapters/repository"
	app "github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/app"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/config"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/roster"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/validation"
	"github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection; the custom registry carries
	// everything the service exports.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		os.Stderr.WriteString("failed to open result store: " + err.Error() + "\n")
		return
	}
	defer func() { _ = store.Close() }()

	recognizer := recognition.NewAdapter(
		[]recognition.Recognizer{recognition.NewClient(cfg.RecognitionURL)},
		recognition.WithMaxConcurrent(cfg.MaxConcurrentExtractions),
		recognition.WithAttemptTimeout(time.Duration(cfg.ExtractionTimeoutSeconds)*time.Second),
		recognition.WithMaxAttempts(cfg.ExtractionMaxRetries+1),
		recognition.WithLogger(log.Named("recognition")),
	)

	var notifier notify.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	} else {
		notifier = notify.NewLogNotifier(log.Named("notify"))
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithRecognizer(recognizer),
		app.WithStore(store),
		app.WithNotifier(notifier),
		app.WithRosterProvider(roster.NewFileProvider(cfg.RosterPath)),
		app.WithRosterRefreshInterval(time.Duration(cfg.RosterRefreshSeconds)*time.Second),
		app.WithQueueSize(cfg.IngestQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithBatchWindow(time.Duration(cfg.BatchWindowSeconds)*time.Second),
		app.WithClassificationGate(cfg.ClassificationEnabled, cfg.ClassificationThreshold),
		app.WithMatcherOptions(
			roster.WithMinFloor(cfg.MatchMinFloor),
			roster.WithTieMarginPercent(cfg.MatchTieMarginPercent),
		),
		app.WithGateOptions(
			validation.WithAutoApproveThreshold(cfg.AutoApproveConfidenceThreshold),
		),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
