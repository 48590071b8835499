package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agent-console/config"
	"agent-console/e2e/mocks"
	"agent-console/models"
)

func newTestClient(t *testing.T, url string, ttlSeconds int) *BackendClient {
	t.Helper()
	cfg := config.NewTestConfig().Backend
	cfg.URL = url
	cfg.StatusCacheTTLSeconds = ttlSeconds
	return NewBackendClient(cfg, NewCircuitBreakerRegistry(testBreakerConfig()))
}

func TestNewBackendClient(t *testing.T) {
	cfg := config.NewTestConfig().Backend
	cfg.TimeoutSeconds = 7

	client := NewBackendClient(cfg, NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	if client.Timeout() != 7*time.Second {
		t.Errorf("Timeout() = %v, want 7s", client.Timeout())
	}
	if client.statusCache == nil {
		t.Error("expected status cache with a positive TTL")
	}

	cfg.TimeoutSeconds = 0
	cfg.StatusCacheTTLSeconds = 0
	client = NewBackendClient(cfg, NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
	if client.Timeout() != 0 {
		t.Errorf("Timeout() = %v, want no timeout", client.Timeout())
	}
	if client.statusCache != nil {
		t.Error("expected no status cache with a zero TTL")
	}
}

func TestBackendClient_Analyze(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()

	client := newTestClient(t, mock.URL(), 10)
	result, err := client.Analyze(context.Background(), models.AnalysisRequest{Symbol: "AAPL", Period: "1y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("expected success")
	}
	if result.Symbol != "AAPL" || result.PeriodDescription != "1 Year" {
		t.Errorf("unexpected result header: %s %s", result.Symbol, result.PeriodDescription)
	}
	if result.ChartConfig == nil || result.ChartConfig.Data == nil || len(result.ChartConfig.Data.Dates) != 60 {
		t.Error("expected chart data to round trip")
	}

	log := mock.GetRequestLog()
	if len(log) != 1 {
		t.Fatalf("expected 1 request, got %d", len(log))
	}
	if log[0].Method != http.MethodPost || log[0].Path != "/api/analyze" {
		t.Errorf("unexpected request: %s %s", log[0].Method, log[0].Path)
	}
	var sent models.AnalysisRequest
	if err := json.Unmarshal([]byte(log[0].Body), &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent.Symbol != "AAPL" || sent.Period != "1y" {
		t.Errorf("unexpected request body: %+v", sent)
	}
}

func TestBackendClient_Analyze_ServerReportsFailure(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()
	mock.SetResult(mocks.FailedResult("rate limited"))

	client := newTestClient(t, mock.URL(), 10)
	result, err := client.Analyze(context.Background(), models.AnalysisRequest{Symbol: "AAPL", Period: "1y"})
	if err != nil {
		t.Fatalf("success=false is not a transport error: %v", err)
	}
	if result.Success {
		t.Error("expected success=false")
	}
	if result.FailureMessage() != "rate limited" {
		t.Errorf("FailureMessage() = %q", result.FailureMessage())
	}
}

func TestBackendClient_Analyze_NonSuccessStatus(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()
	mock.SetStatusCode(http.StatusInternalServerError)

	client := newTestClient(t, mock.URL(), 10)
	_, err := client.Analyze(context.Background(), models.AnalysisRequest{Symbol: "AAPL", Period: "1y"})
	if !errors.Is(err, ErrBackendStatus) {
		t.Fatalf("expected ErrBackendStatus, got %v", err)
	}
	if got := errorType(err); got != "status" {
		t.Errorf("errorType() = %q, want status", got)
	}
}

func TestBackendClient_Analyze_NoRetry(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()
	mock.SetStatusCode(http.StatusBadGateway)

	client := newTestClient(t, mock.URL(), 10)
	_, _ = client.Analyze(context.Background(), models.AnalysisRequest{Symbol: "AAPL", Period: "1y"})

	if n := mock.CountRequests("/api/analyze"); n != 1 {
		t.Errorf("expected exactly one attempt, got %d", n)
	}
}

func TestBackendClient_Analyze_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 10)
	_, err := client.Analyze(context.Background(), models.AnalysisRequest{Symbol: "AAPL", Period: "1y"})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if got := errorType(err); got != "decode" {
		t.Errorf("errorType() = %q, want decode", got)
	}
}

func TestBackendClient_Analyze_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newTestClient(t, url, 10)
	_, err := client.Analyze(context.Background(), models.AnalysisRequest{Symbol: "AAPL", Period: "1y"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.Is(err, ErrBackendStatus) {
		t.Error("transport failure should not be a status error")
	}
}

func TestBackendClient_Analyze_BreakerOpens(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()
	mock.SetStatusCode(http.StatusServiceUnavailable)

	client := newTestClient(t, mock.URL(), 10)
	req := models.AnalysisRequest{Symbol: "AAPL", Period: "1y"}
	for i := 0; i < 3; i++ {
		_, _ = client.Analyze(context.Background(), req)
	}

	_, err := client.Analyze(context.Background(), req)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if n := mock.CountRequests("/api/analyze"); n != 3 {
		t.Errorf("open breaker should not reach the backend, got %d requests", n)
	}
}

func TestBackendClient_AgentStatus_Cached(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()

	client := newTestClient(t, mock.URL(), 60)
	ctx := context.Background()

	agents, err := client.AgentStatus(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agents["data_collector"].Name != "DataCollectorAgent" {
		t.Errorf("unexpected agents: %+v", agents)
	}

	mock.SetAgents(map[string]models.AgentInfo{
		"data_collector": {Name: "DataCollectorAgent", Status: "busy"},
	})
	agents, err = client.AgentStatus(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agents["data_collector"].Status != "idle" {
		t.Error("expected cached listing")
	}
	if n := mock.CountRequests("/api/status"); n != 1 {
		t.Errorf("expected 1 status request, got %d", n)
	}
}

func TestBackendClient_AgentStatus_Uncached(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()

	client := newTestClient(t, mock.URL(), 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.AgentStatus(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := mock.CountRequests("/api/status"); n != 2 {
		t.Errorf("expected 2 status requests, got %d", n)
	}
}

func TestBackendClient_AgentStatus_Error(t *testing.T) {
	mock := mocks.NewMockServer()
	defer mock.Close()
	mock.SetStatusCode(http.StatusInternalServerError)

	client := newTestClient(t, mock.URL(), 60)
	if _, err := client.AgentStatus(context.Background()); !errors.Is(err, ErrBackendStatus) {
		t.Errorf("expected ErrBackendStatus, got %v", err)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrBackendUnavailable, "circuit_open"},
		{ErrBackendStatus, "status"},
		{context.Canceled, "canceled"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("connection refused"), "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := errorType(tt.err); got != tt.want {
				t.Errorf("errorType(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
