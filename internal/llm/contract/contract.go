package contract

import (
	"context"
	"time"
)

// Provider is one completion backend. Complete sends a single prompt to the
// named model and returns the raw response text; it makes exactly one
// attempt, so the caller owns the retry policy.
type Provider interface {
	Name() string
	Complete(ctx context.Context, model, prompt string) (string, error)
	HealthCheck(ctx context.Context) (*HealthCheckResult, error)
	GetConfig() *ProviderConfig
	GetUsage(ctx context.Context) (*UsageStats, error)
}

type ProviderConfig struct {
	ProviderName    string
	APIKey          string
	BaseURL         string
	PrimaryModel    string
	FallbackModel   string
	Temperature     float64
	MaxTokens       int
	CostPer1KInput  float64
	CostPer1KOutput float64
}

type HealthCheckResult struct {
	Status        string        `json:"status"`
	Latency       time.Duration `json:"latency"`
	EstimatedCost float64       `json:"estimated_cost"`
	ErrorMessage  string        `json:"error_message"`
	Timestamp     time.Time     `json:"timestamp"`
}

type UsageStats struct {
	TotalRequests      int64         `json:"total_requests"`
	SuccessfulRequests int64         `json:"successful_requests"`
	FailedRequests     int64         `json:"failed_requests"`
	TotalCost          float64       `json:"total_cost"`
	AverageLatency     time.Duration `json:"average_latency"`
}

type UsageRecord struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Latency      time.Duration
	Success      bool
	ErrorMessage string
	Model        string
}

func (u UsageRecord) InputCost(costPer1K float64) float64 {
	return (float64(u.InputTokens) / 1000.0) * costPer1K
}

func (u UsageRecord) OutputCost(costPer1K float64) float64 {
	return (float64(u.OutputTokens) / 1000.0) * costPer1K
}

func (u UsageRecord) TotalCost(costIn, costOut float64) float64 {
	return u.InputCost(costIn) + u.OutputCost(costOut)
}
