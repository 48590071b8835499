// Package mocks provides a fake analysis backend for tests and local development.
package mocks

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"agent-console/models"
)

// MockBackend serves the analysis backend endpoints with configurable responses.
type MockBackend struct {
	mu sync.RWMutex

	// Response configuration
	result     *models.AnalysisResult // nil means DefaultResult for the requested symbol
	agents     map[string]models.AgentInfo
	delay      time.Duration
	statusCode int // non-zero forces this status on every endpoint

	// Request tracking for assertions
	requestLog []RequestLog
}

// RequestLog records incoming requests for test assertions.
type RequestLog struct {
	Method string
	Path   string
	Body   string
}

// NewMockBackend creates a backend handler with default responses.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		agents: map[string]models.AgentInfo{
			"data_collector":      {Name: "DataCollectorAgent", Status: "idle"},
			"analysis_agent":      {Name: "AnalysisAgent", Status: "idle"},
			"visualization_agent": {Name: "VisualizationAgent", Status: "idle"},
		},
		requestLog: make([]RequestLog, 0),
	}
}

// ServeHTTP implements http.Handler to route requests to the mock endpoints.
func (m *MockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := ""
	if r.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		body = string(b)
	}

	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   body,
	})
	delay := m.delay
	statusCode := m.statusCode
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if statusCode != 0 {
		http.Error(w, http.StatusText(statusCode), statusCode)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/analyze":
		m.handleAnalyze(w, body)
	case r.Method == http.MethodGet && r.URL.Path == "/api/status":
		m.handleStatus(w)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (m *MockBackend) handleAnalyze(w http.ResponseWriter, body string) {
	var req models.AnalysisRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		writeJSON(w, models.AnalysisResult{Success: false, Error: "Stock symbol is required"})
		return
	}
	period := req.Period
	if period == "" {
		period = models.DefaultPeriod
	}

	m.mu.RLock()
	result := m.result
	m.mu.RUnlock()

	if result == nil {
		result = DefaultResult(symbol, period)
	}
	writeJSON(w, result)
}

func (m *MockBackend) handleStatus(w http.ResponseWriter) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	writeJSON(w, m.agents)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// SetResult fixes the analysis response; nil restores the default.
func (m *MockBackend) SetResult(result *models.AnalysisResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
}

// SetAgents configures the agent status listing.
func (m *MockBackend) SetAgents(agents map[string]models.AgentInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents = agents
}

// SetDelay holds every response for d.
func (m *MockBackend) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetStatusCode makes every endpoint fail with the given status; 0 clears it.
func (m *MockBackend) SetStatusCode(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = code
}

// GetRequestLog returns all logged requests for assertions.
func (m *MockBackend) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// ClearRequestLog clears the request log.
func (m *MockBackend) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLog = make([]RequestLog, 0)
}

// CountRequests returns how many requests hit the given path.
func (m *MockBackend) CountRequests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requestLog {
		if r.Path == path {
			n++
		}
	}
	return n
}

// MockServer runs a MockBackend on a local httptest server.
type MockServer struct {
	*MockBackend
	server *httptest.Server
}

// NewMockServer starts a mock backend with default responses.
func NewMockServer() *MockServer {
	m := &MockServer{MockBackend: NewMockBackend()}
	m.server = httptest.NewServer(m.MockBackend)
	return m
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockServer) Close() {
	m.server.Close()
}
