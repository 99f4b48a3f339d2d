package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"love-letter/internal/content"
	"love-letter/internal/countries"
	"love-letter/internal/database"
	"love-letter/internal/handlers"
	"love-letter/internal/logging"
	"love-letter/internal/middleware"
	"love-letter/internal/startup"
	"love-letter/internal/thumbnail"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Load site content
	siteContent, err := content.Load(config.ContentFile)
	if err != nil {
		startup.LogFatal("Content error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Seed an empty database from the content config
	if err := db.Seed(context.Background(), siteContent); err != nil {
		startup.LogFatal("Failed to seed database: %v", err)
	}

	// Refresh DB gauges periodically
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		for range ticker.C {
			db.UpdateDBMetrics()
		}
	}()

	// Regenerate missing thumbnails before serving. A failed run is
	// logged and retried on the next start; it never blocks startup.
	renderer := thumbnail.NewRenderer()
	backfillStart := time.Now()
	backfill := thumbnail.NewBackfill(db, renderer, config.WebRoot, config.ThumbnailMaxEdge)
	if err := backfill.Run(context.Background()); err != nil {
		logging.Warn("Thumbnail backfill failed: %v", err)
	} else {
		startup.LogBackfillComplete(time.Since(backfillStart))
	}

	// Start the thumbnail worker
	queue := thumbnail.NewQueue()
	worker := thumbnail.NewWorker(queue, db, renderer, config.WebRoot, config.ThumbnailMaxEdge)
	worker.Start()

	// Country catalog for the travel map
	catalog := countries.New(filepath.Join(config.DataDir, "countries.json"))

	// Initialize handlers
	h := handlers.New(db, siteContent, queue, renderer, catalog, config)

	// Setup router
	router := setupRouter(h, config)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogStaticFiles)

	// Apply metrics middleware
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Apply compression middleware
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, worker)

	// Start server
	startup.LogServerStarted(config.Port, config.MetricsEnabled, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	h.RegisterRoutes(r)

	if config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// Static files, including everything under /uploads
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(config.WebRoot)))

	return r
}

func handleShutdown(srv *http.Server, worker *thumbnail.Worker) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping thumbnail worker")
	worker.Stop()
	startup.LogShutdownStepComplete("Thumbnail worker stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
