package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/noah-isme/pemira/config"
	"github.com/noah-isme/pemira/internal/api"
	"github.com/noah-isme/pemira/internal/audit"
	"github.com/noah-isme/pemira/internal/backend"
	"github.com/noah-isme/pemira/internal/db"
	"github.com/noah-isme/pemira/internal/notification"
	"github.com/noah-isme/pemira/internal/panel"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "stationd ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Station.ID == "" {
		logger.Fatalf("station.id must be configured; this panel serves exactly one station")
	}
	if cfg.Backend.BaseURL == "" {
		logger.Fatalf("backend.base_url must be configured")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Operator web push is optional; without VAPID keys the panel still
	// runs with the in-panel notification slot only.
	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.Station.ID, gormDB, webpushOptions)
		pool.Start(ctx)
		logger.Println("push worker pool started")
	} else {
		logger.Println("VAPID keys not configured; operator push disabled")
	}

	var publisher audit.Publisher
	if pool != nil {
		publisher = pool
	}
	emitter := audit.NewEmitter(gormDB, cfg.Station.ID,
		cfg.Audit.LogRetention, cfg.Audit.HistoryRetention,
		cfg.Notification.TTL, publisher)

	client := backend.NewClient(&cfg.Backend, cfg.Station.ID)

	stationPanel := panel.New(cfg, client, emitter)
	go stationPanel.Run(ctx)
	logger.Printf("station panel running for station %s", cfg.Station.ID)

	// Initialize router
	router := api.NewRouter(cfg, stationPanel, gormDB, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
