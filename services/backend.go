package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"

	"agent-console/config"
	"agent-console/models"
	"agent-console/observability"
)

// ErrBackendStatus is returned when the backend answers with a non-2xx status.
var ErrBackendStatus = errors.New("backend returned non-success status")

const (
	opAnalyze     = "analyze"
	opAgentStatus = "agent_status"

	agentStatusKey = "agents"
)

// BackendClient talks to the analysis backend. Every call goes through the
// backend circuit breaker and is attempted exactly once.
type BackendClient struct {
	client      *resty.Client
	breakers    *CircuitBreakerRegistry
	statusCache *cache.Cache
}

// NewBackendClient creates a client for the configured backend. A zero
// status cache TTL disables caching of the agent listing.
func NewBackendClient(cfg config.BackendConfig, breakers *CircuitBreakerRegistry) *BackendClient {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.BackendTimeout()).
		SetHeader("Accept", "application/json")

	var statusCache *cache.Cache
	if ttl := cfg.StatusCacheTTL(); ttl > 0 {
		statusCache = cache.New(ttl, 2*ttl)
	}

	return &BackendClient{
		client:      client,
		breakers:    breakers,
		statusCache: statusCache,
	}
}

// Analyze posts the request to the backend's analyze endpoint.
func (c *BackendClient) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	metrics := observability.GetMetrics()
	metrics.RecordBackendRequest(opAnalyze)
	timer := metrics.NewTimer()
	defer timer.ObserveBackend(opAnalyze)

	result, err := WithCircuitBreaker(ctx, c.breakers, BreakerBackend, func() (*models.AnalysisResult, error) {
		resp, err := c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(req).
			Post("/api/analyze")
		if err != nil {
			return nil, fmt.Errorf("analyze request failed: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %d", ErrBackendStatus, resp.StatusCode())
		}

		var out models.AnalysisResult
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return nil, fmt.Errorf("failed to decode analysis result: %w", err)
		}
		return &out, nil
	})
	if err != nil {
		metrics.RecordBackendError(opAnalyze, errorType(err))
		observability.WithSymbol(req.Symbol).Warn("analysis backend call failed", "error", err)
		return nil, err
	}

	return result, nil
}

// AgentStatus returns the backend's per-agent status listing.
func (c *BackendClient) AgentStatus(ctx context.Context) (map[string]models.AgentInfo, error) {
	if c.statusCache != nil {
		if v, ok := c.statusCache.Get(agentStatusKey); ok {
			return v.(map[string]models.AgentInfo), nil
		}
	}

	metrics := observability.GetMetrics()
	metrics.RecordBackendRequest(opAgentStatus)
	timer := metrics.NewTimer()
	defer timer.ObserveBackend(opAgentStatus)

	agents, err := WithCircuitBreaker(ctx, c.breakers, BreakerBackend, func() (map[string]models.AgentInfo, error) {
		var out map[string]models.AgentInfo
		resp, err := c.client.R().
			SetContext(ctx).
			Get("/api/status")
		if err != nil {
			return nil, fmt.Errorf("agent status request failed: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %d", ErrBackendStatus, resp.StatusCode())
		}
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return nil, fmt.Errorf("failed to decode agent status: %w", err)
		}
		return out, nil
	})
	if err != nil {
		metrics.RecordBackendError(opAgentStatus, errorType(err))
		return nil, err
	}

	if c.statusCache != nil {
		c.statusCache.Set(agentStatusKey, agents, cache.DefaultExpiration)
	}
	return agents, nil
}

// errorType classifies a backend error for the error counter.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrBackendUnavailable):
		return "circuit_open"
	case errors.Is(err, ErrBackendStatus):
		return "status"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return "decode"
		}
		return "transport"
	}
}

// Timeout reports the transport timeout, zero meaning none.
func (c *BackendClient) Timeout() time.Duration {
	return c.client.GetClient().Timeout
}
