package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	cohere "github.com/cohere-ai/cohere-go"

	"email-insight/backend/internal/llm/contract"
)

type CohereProvider struct {
	client *cohere.Client
	config *contract.ProviderConfig

	mu         sync.Mutex
	lastUsage  contract.UsageStats
	lastRecord contract.UsageRecord
}

func NewCohereProvider(config *contract.ProviderConfig) *CohereProvider {
	client, _ := cohere.CreateClient(config.APIKey)
	return &CohereProvider{client: client, config: config}
}

func (c *CohereProvider) Name() string { return "cohere" }

func (c *CohereProvider) GetConfig() *contract.ProviderConfig { return c.config }

func (c *CohereProvider) GetUsage(ctx context.Context) (*contract.UsageStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.lastUsage
	return &stats, nil
}

// Complete ignores ctx beyond liveness: the cohere-go client has no
// context-aware call, so the caller's deadline bounds only our wait via the
// surrounding attempt loop.
func (c *CohereProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("cohere client not initialized")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	maxTokens := uint(c.config.MaxTokens)
	temperature := c.config.Temperature
	result, err := c.client.Generate(cohere.GenerateOptions{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		c.captureFailure(model, start, err)
		return "", err
	}
	c.captureUsage(model, start)
	if len(result.Generations) == 0 {
		return "", errors.New("empty response")
	}
	return result.Generations[0].Text, nil
}

func (c *CohereProvider) HealthCheck(ctx context.Context) (*contract.HealthCheckResult, error) {
	start := time.Now()
	_, err := c.Complete(ctx, c.config.PrimaryModel, "Respond with: OK")
	latency := time.Since(start)
	status := "ok"
	msg := ""
	if err != nil {
		status = "error"
		msg = err.Error()
	}
	return &contract.HealthCheckResult{
		Status:       status,
		Latency:      latency,
		ErrorMessage: msg,
		Timestamp:    time.Now().UTC(),
	}, err
}

func (c *CohereProvider) captureUsage(model string, start time.Time) {
	latency := time.Since(start)
	record := contract.UsageRecord{
		Latency: latency,
		Success: true,
		Model:   model,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRecord = record
	c.lastUsage.TotalRequests++
	c.lastUsage.SuccessfulRequests++
	c.lastUsage.AverageLatency = averageLatency(c.lastUsage.AverageLatency, latency, c.lastUsage.SuccessfulRequests)
}

func (c *CohereProvider) captureFailure(model string, start time.Time, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRecord = contract.UsageRecord{
		Latency:      time.Since(start),
		Success:      false,
		ErrorMessage: err.Error(),
		Model:        model,
	}
	c.lastUsage.TotalRequests++
	c.lastUsage.FailedRequests++
}

func (c *CohereProvider) LastUsageRecord() contract.UsageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRecord
}
