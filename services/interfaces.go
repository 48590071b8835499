package services

import (
	"context"

	"agent-console/models"
)

// BackendService defines the operations offered by the analysis backend
type BackendService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
	AgentStatus(ctx context.Context) (map[string]models.AgentInfo, error)
}

// Compile-time interface verification
var _ BackendService = (*BackendClient)(nil)
