package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filetree-search/internal/artwork"
	"filetree-search/internal/database"
	"filetree-search/internal/filesystem"
	"filetree-search/internal/handlers"
	"filetree-search/internal/indexer"
	"filetree-search/internal/logging"
	"filetree-search/internal/memory"
	"filetree-search/internal/metrics"
	"filetree-search/internal/middleware"
	"filetree-search/internal/scanner"
	"filetree-search/internal/startup"
)

// statsProvider adapts the database's cached library summary to the
// metrics collector.
type statsProvider struct {
	db *database.Database
}

func (p statsProvider) GetStats() metrics.Stats {
	s := p.db.GetStats()
	return metrics.Stats{
		TotalTracks:  s.TotalTracks,
		TotalArtists: s.TotalArtists,
		TotalAlbums:  s.TotalAlbums,
		TotalGenres:  s.TotalGenres,
	}
}

func main() {
	startTime := time.Now()

	// Configure GOMEMLIMIT before significant allocations
	memResult := memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	startup.LogMemoryConfig(startup.MemoryConfig{
		Configured:     memResult.Configured,
		Source:         memResult.Source,
		ContainerLimit: memResult.ContainerLimit,
		GoMemLimit:     memResult.GoMemLimit,
		Ratio:          memResult.Ratio,
	})

	// Volume labels for filesystem retry metrics
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":    config.MediaDir,
		"cache":    config.CacheDir,
		"database": config.DatabaseDir,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Clean up expired sessions periodically
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := db.CleanExpiredSessions(); err != nil {
					logging.Warn("Session cleanup failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Memory monitor provides backpressure for the scanner
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	// Initialize scanner
	startup.LogScannerInit(config.MediaDir)
	scan := scanner.New(db, config.MediaDir, monitor)

	// Initialize artwork cache
	var art *artwork.Cache
	if config.ArtworkEnabled {
		art, err = artwork.New(config.ArtworkDir)
		if err != nil {
			logging.Warn("Artwork cache unavailable: %v", err)
		}
	}

	// Initialize indexer
	startup.LogIndexerInit(config.IndexMode, config.IndexInterval, config.PollInterval)
	idx := indexer.New(db, config.IndexMode, config.MediaDir)

	// Initial scan and index build run in the background so the server
	// can come up immediately; probes report not-ready until they land.
	go func() {
		if _, err := scan.Scan(ctx); err != nil {
			logging.Error("Initial library scan failed: %v", err)
		}
		if _, err := idx.Rebuild(ctx); err != nil {
			logging.Error("Initial index build failed: %v", err)
		}
	}()
	go idx.Run(ctx, config.IndexInterval, config.PollInterval)
	startup.LogIndexerStarted()

	// Initialize handlers
	h := handlers.New(db, idx, scan, art, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	// Apply authentication middleware
	authedRouter := h.AuthMiddleware(router)

	// Apply metrics middleware
	meteredHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(authedRouter)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(meteredHandler)

	// Apply compression middleware
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)

	// Metrics server on its own port
	var collector *metrics.Collector
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

		collector = metrics.NewCollector(statsProvider{db: db}, config.DatabasePath, 30*time.Second)
		collector.Start()

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, collector, cancel)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/setup-required", h.CheckSetupRequired).Methods("GET")
	auth.HandleFunc("/setup", h.Setup).Methods("POST")
	auth.HandleFunc("/login", h.Login).Methods("POST")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")
	auth.HandleFunc("/check", h.CheckAuth).Methods("GET")
	auth.HandleFunc("/change-password", h.ChangePassword).Methods("POST")
	auth.HandleFunc("/keepalive", h.Keepalive).Methods("POST")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tree", h.GetTree).Methods("GET")
	api.HandleFunc("/tree/{id}/children", h.GetTreeChildren).Methods("GET")
	api.HandleFunc("/search", h.Search).Methods("GET")
	api.HandleFunc("/export", h.Export).Methods("POST")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/scan", h.TriggerScan).Methods("POST")
	api.HandleFunc("/rebuild", h.TriggerRebuild).Methods("POST")
	api.HandleFunc("/artwork/{id}", h.GetArtwork).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	startup.LogShutdownStep("Stopping background workers")
	cancel()
	if collector != nil {
		collector.Stop()
	}
	startup.LogShutdownStepComplete("Background workers stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
