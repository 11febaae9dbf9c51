package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"

	"github.com/lanecast/lanecast/config"
	"github.com/lanecast/lanecast/internal/adapter/driven"
	"github.com/lanecast/lanecast/internal/adapter/driver"
	"github.com/lanecast/lanecast/internal/application"
	"github.com/lanecast/lanecast/internal/clock"
)

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	rebuildOnStart := flag.Bool("rebuild", false, "rebuild the lane schedule on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Create structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting lanecast",
		"addr", cfg.HTTP.Address+":"+cfg.HTTP.Port,
		"db_path", cfg.DB.Path,
		"lanes", cfg.Lanes.Count,
		"horizon_days", cfg.Lanes.HorizonDays,
		"log_level", cfg.Log.Level,
	)

	// Open BoltDB
	db, err := bbolt.Open(cfg.DB.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	// Create driven adapters (repositories)
	eventRepo, err := driven.NewEventBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create event repository: %v", err)
	}

	prefRepo, err := driven.NewPreferenceBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create preference repository: %v", err)
	}

	scheduleRepo, err := driven.NewScheduleBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create schedule repository: %v", err)
	}

	// Create application services
	clk := clock.Real()
	scheduleService := application.NewScheduleService(eventRepo, prefRepo, scheduleRepo, cfg.LaneConfig(), clk, logger)
	resolveService := application.NewResolveService(eventRepo, prefRepo, clk)
	preferenceService := application.NewPreferenceService(prefRepo)
	eventService := application.NewEventService(eventRepo)
	guideService := application.NewGuideService(scheduleService, cfg.Guide.ServerURL)
	healthService := application.NewHealthService(eventRepo, scheduleService)

	ctx := context.Background()
	if err := scheduleService.Restore(ctx); err != nil {
		log.Fatalf("failed to restore schedule: %v", err)
	}
	if *rebuildOnStart {
		if _, err := scheduleService.Rebuild(ctx); err != nil {
			log.Fatalf("failed to rebuild schedule: %v", err)
		}
	}

	// Create HTTP handlers
	laneHandler := driver.NewLaneHTTPHandler(scheduleService)
	playHandler := driver.NewPlayHTTPHandler(scheduleService)
	resolveHandler := driver.NewResolveHTTPHandler(resolveService)
	preferenceHandler := driver.NewPreferenceHTTPHandler(preferenceService)
	eventHandler := driver.NewEventHTTPHandler(eventService)
	rebuildHandler := driver.NewRebuildHTTPHandler(scheduleService)
	guideHandler := driver.NewGuideHTTPHandler(guideService)
	healthHandler := driver.NewHealthHTTPHandler(healthService)

	// Register API routes
	apiMux := http.NewServeMux()
	apiMux.Handle("/lanes", laneHandler)
	apiMux.Handle("/lanes/", laneHandler)
	apiMux.Handle("/resolve/", resolveHandler)
	apiMux.Handle("/preferences", preferenceHandler)
	apiMux.Handle("/events", eventHandler)
	apiMux.Handle("/events/", eventHandler)
	apiMux.Handle("/rebuild", rebuildHandler)

	// Root router: API under /api/, guide and playback routes at root
	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", http.StripPrefix("/api", apiMux))
	rootMux.Handle("/lanes/", playHandler)
	rootMux.HandleFunc("/guide.xml", guideHandler.ServeXMLTV)
	rootMux.HandleFunc("/playlist.m3u", guideHandler.ServeM3U)
	rootMux.Handle("/health", healthHandler)
	rootMux.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.HTTP.Address + ":" + cfg.HTTP.Port,
		Handler:      rootMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
