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

	"module-registry-backend/config"
	"module-registry-backend/internal/api"
	"module-registry-backend/internal/registry"
	"module-registry-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "module-registry ", log.LstdFlags)

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

	// Initialize the file-backed stores
	roster := store.NewCSVRoster(cfg.Registry.RosterCSV)
	events := store.NewCSVExclusionLog(cfg.Registry.ExclusionCSV)
	docs := store.NewFSDocuments(cfg.Registry.BasePath, cfg.OutdoorDirs())
	logger.Printf("stores initialized (roster=%s, exclusions=%s, base=%s)",
		cfg.Registry.RosterCSV, cfg.Registry.ExclusionCSV, cfg.Registry.BasePath)

	svc := registry.NewService(cfg, roster, events, docs)

	// Rebuild derived documents on startup so mutations missed while the
	// daemon was down are reconciled before serving.
	results, err := svc.Resync()
	if err != nil {
		logger.Fatalf("startup resync failed: %v", err)
	}
	logger.Printf("startup resync complete (%d groups)", len(results))

	// Initialize router
	router := api.NewRouter(cfg, svc)
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
