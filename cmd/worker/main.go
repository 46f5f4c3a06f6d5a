package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fare-rules-worker/internal/di"
	"fare-rules-worker/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()
	cfg := di.LoadConfig(envService)

	container, err := di.NewContainer(cfg, di.Options{})
	if err != nil {
		log.Printf("Initialization failed: %v", err)
		os.Exit(1)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container.Logger.Info("Starting LLM external task worker",
		"camundaUrl", cfg.CamundaURL,
		"topic", cfg.Topic,
		"workerId", cfg.WorkerID,
		"backend", cfg.LLMBackend)

	if err := container.Run(ctx); err != nil {
		container.Logger.Error("Worker failed", "error", err)
		container.Close()
		os.Exit(1)
	}

	container.Logger.Info("Worker shut down")
}
