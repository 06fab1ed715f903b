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

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/alerts"
	"printer-fleet-backend/internal/api"
	"printer-fleet-backend/internal/db"
	"printer-fleet-backend/internal/discovery"
	"printer-fleet-backend/internal/orders"
	"printer-fleet-backend/internal/poller"
	"printer-fleet-backend/internal/scheduler"
	"printer-fleet-backend/internal/snmp"
	"printer-fleet-backend/internal/store"
	"printer-fleet-backend/internal/telemetry"
)

func main() {
	logger := log.New(os.Stdout, "fleetd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := appStore.SeedOidCatalog(ctx, snmp.DefaultCatalog()); err != nil {
		logger.Fatalf("failed to seed oid catalog: %v", err)
	}
	logger.Println("data store initialized")

	driver := telemetry.NewDriver(snmp.NewClient)
	orderSvc := orders.NewService(cfg, appStore, nil)
	alertMgr := alerts.NewManager(cfg, appStore, orderSvc)
	pollSvc := poller.New(cfg, appStore, driver, alertMgr)
	scanner := discovery.NewScanner(cfg, appStore, driver)

	sched := scheduler.New(cfg, appStore, pollSvc, scanner)
	sched.Start(ctx)
	logger.Printf("scheduler started with %d workers", cfg.Poller.WorkerPoolSize)

	router := api.NewRouter(cfg, appStore, sched, scanner)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
