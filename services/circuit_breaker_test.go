package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"agent-console/config"
)

func testBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     1 * time.Minute,
		MinRequests: 3,
	}
}

func TestNewCircuitBreakerRegistry(t *testing.T) {
	cfg := testBreakerConfig()
	registry := NewCircuitBreakerRegistry(cfg)

	if registry == nil {
		t.Fatal("expected registry to be created")
	}
	if registry.breakers == nil {
		t.Error("expected breakers map to be initialized")
	}
	if registry.config != cfg {
		t.Error("expected config to be set")
	}
}

func TestBreakerConfigFrom(t *testing.T) {
	tests := []struct {
		name string
		in   config.CircuitBreakerConfig
		want CircuitBreakerConfig
	}{
		{
			name: "custom values",
			in:   config.CircuitBreakerConfig{MaxRequests: 2, IntervalSeconds: 10, TimeoutSeconds: 5},
			want: CircuitBreakerConfig{MaxRequests: 2, Interval: 10 * time.Second, Timeout: 5 * time.Second, MinRequests: 5},
		},
		{
			name: "zero values keep defaults",
			in:   config.CircuitBreakerConfig{},
			want: DefaultCircuitBreakerConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BreakerConfigFrom(tt.in); got != tt.want {
				t.Errorf("BreakerConfigFrom() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCircuitBreakerRegistry_GetBreaker(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	breaker1 := registry.GetBreaker(BreakerBackend)
	if breaker1 == nil {
		t.Fatal("expected breaker to be created")
	}

	if breaker2 := registry.GetBreaker(BreakerBackend); breaker1 != breaker2 {
		t.Error("expected same breaker instance")
	}

	if breaker3 := registry.GetBreaker("other"); breaker1 == breaker3 {
		t.Error("expected different breaker for different name")
	}
}

func TestCircuitBreakerRegistry_Execute(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	result, err := registry.Execute(ctx, BreakerBackend, func() (any, error) {
		return "success", nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}

	expectedErr := errors.New("test error")
	_, err = registry.Execute(ctx, BreakerBackend, func() (any, error) {
		return nil, expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
}

func TestCircuitBreakerRegistry_Execute_ContextCanceled(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := registry.Execute(ctx, BreakerBackend, func() (any, error) {
		called = true
		return nil, nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("function should not run with a canceled context")
	}
}

func TestCircuitBreakerRegistry_TripsAfterFailures(t *testing.T) {
	registry := NewCircuitBreakerRegistry(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = registry.Execute(ctx, BreakerBackend, func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	if state := registry.Status()[BreakerBackend].State; state != "open" {
		t.Fatalf("expected breaker to be open, got %s", state)
	}
	if !registry.Degraded() {
		t.Error("expected registry to report degraded")
	}

	called := false
	_, err := registry.Execute(ctx, BreakerBackend, func() (any, error) {
		called = true
		return "ok", nil
	})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
	if called {
		t.Error("open breaker should not run the function")
	}
}

func TestCircuitBreakerRegistry_StaysClosedBelowMinRequests(t *testing.T) {
	registry := NewCircuitBreakerRegistry(testBreakerConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = registry.Execute(ctx, BreakerBackend, func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	if state := registry.Status()[BreakerBackend].State; state != "closed" {
		t.Errorf("expected breaker to stay closed, got %s", state)
	}
	if registry.Degraded() {
		t.Error("registry should not be degraded")
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	_, _ = registry.Execute(ctx, "service-a", func() (any, error) {
		return "ok", nil
	})
	_, _ = registry.Execute(ctx, "service-b", func() (any, error) {
		return nil, errors.New("fail")
	})

	status := registry.Status()
	if len(status) != 2 {
		t.Fatalf("expected 2 breakers in status, got %d", len(status))
	}
	if status["service-a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for service-a, got %d", status["service-a"].TotalSuccesses)
	}
	if status["service-b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for service-b, got %d", status["service-b"].TotalFailures)
	}
}

func TestWithCircuitBreaker_TypedResults(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	type result struct {
		Value int
	}

	got, err := WithCircuitBreaker(ctx, registry, BreakerBackend, func() (*result, error) {
		return &result{Value: 42}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value != 42 {
		t.Errorf("unexpected result: %+v", got)
	}

	got, err = WithCircuitBreaker(ctx, registry, BreakerBackend, func() (*result, error) {
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Error("expected error")
	}
	if got != nil {
		t.Errorf("expected nil result, got %+v", got)
	}
}
