package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rentloop/crm-sync-worker/internal/config"
	"github.com/rentloop/crm-sync-worker/internal/crm"
	"github.com/rentloop/crm-sync-worker/internal/database"
	"github.com/rentloop/crm-sync-worker/internal/repository"
	"github.com/rentloop/crm-sync-worker/internal/server"
	"github.com/rentloop/crm-sync-worker/internal/service"
	"github.com/rentloop/crm-sync-worker/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close(db)

	log.Println("Database connected successfully")

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db); err != nil {
		return err
	}
	log.Println("Migrations completed successfully")

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	checkpointRepo := repository.NewCheckpointRepository(db)

	// Initialize CRM client and sync services
	crmClient := crm.NewClient(cfg.CRMAPIKeyV1, cfg.CRMAPIKeyV2, cfg.CRMLocationID)
	resolver := service.NewContactResolver(crmClient)
	syncer := service.NewTenantSyncer(cfg, tenantRepo, checkpointRepo, crmClient, resolver)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start trigger server
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(syncer).Handler(),
	}
	errChan := make(chan error, 2)
	go func() {
		log.Printf("Listening for sync triggers on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start scheduler if configured
	if cfg.SyncInterval > 0 {
		w := watcher.New(cfg.SyncInterval, syncer)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- err
			}
		}()
	}

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		log.Println("Application stopped")
		return nil

	case err := <-errChan:
		return err
	}
}
