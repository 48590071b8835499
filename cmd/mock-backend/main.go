// Package main serves a canned analysis backend for local development and
// browser tests. It answers the same /api/analyze and /api/status routes as
// the real multi-agent service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"agent-console/e2e/mocks"
	"agent-console/observability"
)

func main() {
	// Initialize logger in development mode
	observability.InitLogger(false, observability.ParseLevel(os.Getenv("LOG_LEVEL")))

	port := os.Getenv("MOCK_BACKEND_PORT")
	if port == "" {
		port = "5001"
	}

	backend := mocks.NewMockBackend()

	// Optional latency so the console's simulated progress is visible
	if v := os.Getenv("MOCK_BACKEND_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			observability.Fatal("invalid MOCK_BACKEND_DELAY_MS", "value", v)
		}
		backend.SetDelay(time.Duration(ms) * time.Millisecond)
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      backend,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		observability.Info("starting mock analysis backend", "port", port, "url", fmt.Sprintf("http://localhost:%s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down mock analysis backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("mock analysis backend stopped", "requests", len(backend.GetRequestLog()))
}
