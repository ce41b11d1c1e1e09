package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse_server/config"
	"pulse_server/internal/bootstrap"
	"pulse_server/pkg/logger"

	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Load .env file if exists (for local development)
	envErr := godotenv.Load()

	mode := flag.String("mode", "all", "Run mode: api, worker, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "pulse-" + *mode,
	})
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	runAPI, runWorker := false, false
	switch *mode {
	case "api":
		runAPI = true
	case "worker":
		runWorker = true
	case "all":
		runAPI, runWorker = true, true
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}

	deps, cleanup, err := bootstrap.NewDependencies(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	var worker *bootstrap.Worker
	if runWorker {
		worker, err = bootstrap.NewWorker(deps)
		if err != nil {
			logger.Fatal("Failed to initialize worker: %v", err)
		}
		if err := worker.Start(); err != nil {
			logger.Fatal("Failed to start worker: %v", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if !runAPI {
		<-sigChan
		stopWorker(worker)
		return
	}

	app := bootstrap.NewAPI(deps)

	go func() {
		<-sigChan
		logger.Info("Shutting down (timeout: %v)...", shutdownTimeout)

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down API server: %v", err)
		} else {
			logger.Info("API server shut down gracefully")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Error("API server stopped: %v", err)
	}

	stopWorker(worker)
}

func stopWorker(worker *bootstrap.Worker) {
	if worker == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Worker shut down gracefully")
	case <-ctx.Done():
		logger.Warn("Worker shutdown timed out, forcing exit")
		os.Exit(1)
	}
}
