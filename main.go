package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-console/config"
	"agent-console/internal/api"
	"agent-console/internal/app"
	"agent-console/observability"
	"agent-console/services"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	observability.InitLogger(cfg.IsProduction(), observability.ParseLevel(cfg.LogLevel))
	observability.InitMetrics()
	if envErr != nil {
		observability.Info("no .env file found, using environment variables")
	}

	periods, err := config.LoadPeriods(cfg.UI.PeriodsFile)
	if err != nil {
		observability.Fatal("failed to load period catalog", "file", cfg.UI.PeriodsFile, "error", err)
	}

	breakers := services.NewCircuitBreakerRegistry(services.BreakerConfigFrom(cfg.CircuitBreaker))
	backend := services.NewBackendClient(cfg.Backend, breakers)
	application := app.New(cfg, backend, periods)

	handler := api.NewHandler(application, cfg, breakers)
	router := api.NewRouter(handler, cfg)

	// No WriteTimeout: console sockets stay open for the page's lifetime and
	// the /api routes carry their own request timeout.
	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		observability.Info("starting agent console",
			"url", fmt.Sprintf("http://localhost:%s", cfg.HTTP.Port),
			"backend", cfg.Backend.URL,
			"periods", len(periods))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down agent console...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}
	observability.Info("agent console stopped")
}
