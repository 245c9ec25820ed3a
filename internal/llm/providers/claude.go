package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"email-insight/backend/internal/llm/contract"
)

type ClaudeProvider struct {
	client anthropic.Client
	config *contract.ProviderConfig

	mu         sync.Mutex
	lastUsage  contract.UsageStats
	lastRecord contract.UsageRecord
}

func NewClaudeProvider(config *contract.ProviderConfig) *ClaudeProvider {
	return &ClaudeProvider{
		client: anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		config: config,
	}
}

func (c *ClaudeProvider) Name() string { return "claude" }

func (c *ClaudeProvider) GetConfig() *contract.ProviderConfig { return c.config }

func (c *ClaudeProvider) GetUsage(ctx context.Context) (*contract.UsageStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.lastUsage
	return &stats, nil
}

func (c *ClaudeProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	start := time.Now()
	result, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(c.config.MaxTokens),
		Temperature: anthropic.Float(c.config.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.captureFailure(model, start, err)
		return "", err
	}
	c.captureUsage(model, start, result.Usage)
	if len(result.Content) == 0 {
		return "", errors.New("empty response")
	}
	return result.Content[0].Text, nil
}

func (c *ClaudeProvider) HealthCheck(ctx context.Context) (*contract.HealthCheckResult, error) {
	start := time.Now()
	_, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.config.PrimaryModel),
		MaxTokens:   int64(32),
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Respond with: OK")),
		},
	})
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

func (c *ClaudeProvider) captureUsage(model string, start time.Time, usage anthropic.Usage) {
	latency := time.Since(start)
	record := contract.UsageRecord{
		InputTokens:  int(usage.InputTokens),
		OutputTokens: int(usage.OutputTokens),
		TotalTokens:  int(usage.InputTokens + usage.OutputTokens),
		Latency:      latency,
		Success:      true,
		Model:        model,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRecord = record
	c.lastUsage.TotalRequests++
	c.lastUsage.SuccessfulRequests++
	c.lastUsage.TotalCost += record.TotalCost(c.config.CostPer1KInput, c.config.CostPer1KOutput)
	c.lastUsage.AverageLatency = averageLatency(c.lastUsage.AverageLatency, latency, c.lastUsage.SuccessfulRequests)
}

func (c *ClaudeProvider) captureFailure(model string, start time.Time, err error) {
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

func (c *ClaudeProvider) LastUsageRecord() contract.UsageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRecord
}
