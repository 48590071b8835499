// Package e2e provides end-to-end testing infrastructure for agent-console.
package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"agent-console/config"
	"agent-console/e2e/mocks"
	"agent-console/internal/api"
	"agent-console/internal/app"
	"agent-console/models"
	"agent-console/services"
)

// TestHarness runs the console's full HTTP stack against a mock analysis backend.
type TestHarness struct {
	t          *testing.T
	ctx        context.Context
	cancel     context.CancelFunc
	mockServer *mocks.MockServer
	breakers   *services.CircuitBreakerRegistry
	app        *app.App
	router     http.Handler
	server     *httptest.Server
	config     *config.Config
}

// NewTestHarness creates a new test harness. Call Setup before use.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

	return &TestHarness{
		t:      t,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Setup starts the mock backend and builds the router against it. opts
// adjust the configuration before anything is constructed.
func (h *TestHarness) Setup(opts ...func(*config.Config)) error {
	h.mockServer = mocks.NewMockServer()

	h.config = h.createTestConfig()
	for _, opt := range opts {
		opt(h.config)
	}
	if err := h.config.Validate(); err != nil {
		return err
	}

	h.breakers = services.NewCircuitBreakerRegistry(services.BreakerConfigFrom(h.config.CircuitBreaker))
	backend := services.NewBackendClient(h.config.Backend, h.breakers)
	h.app = app.New(h.config, backend, models.DefaultPeriods)

	handler := api.NewHandler(h.app, h.config, h.breakers)
	h.router = api.NewRouter(handler, h.config)
	h.server = httptest.NewServer(h.router)

	return nil
}

// Teardown cleans up all test resources.
func (h *TestHarness) Teardown() {
	if h.cancel != nil {
		h.cancel()
	}
	if h.server != nil {
		h.server.Close()
	}
	if h.mockServer != nil {
		h.mockServer.Close()
	}
}

// Context returns the test context.
func (h *TestHarness) Context() context.Context {
	return h.ctx
}

// MockServer returns the mock backend for configuring responses.
func (h *TestHarness) MockServer() *mocks.MockServer {
	return h.mockServer
}

// Breakers returns the circuit breaker registry guarding the backend.
func (h *TestHarness) Breakers() *services.CircuitBreakerRegistry {
	return h.breakers
}

// App returns the application instance.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Router returns the HTTP router for making requests.
func (h *TestHarness) Router() http.Handler {
	return h.router
}

// Config returns the test configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// SocketURL is the websocket address of the live console.
func (h *TestHarness) SocketURL() string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws"
}

// DoRequest performs an HTTP request with an optional JSON body.
func (h *TestHarness) DoRequest(method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// DoHTMXRequest posts form values the way the page's htmx form does.
func (h *TestHarness) DoHTMXRequest(method, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *TestHarness) createTestConfig() *config.Config {
	cfg := config.NewTestConfig()

	// Point the backend client at the mock server
	cfg.Backend.URL = h.mockServer.URL()
	cfg.Backend.TimeoutSeconds = 5
	cfg.Progress.TickMillis = 20

	return cfg
}
