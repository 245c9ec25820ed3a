package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"email-insight/backend/internal/llm/contract"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion endpoint,
// including Together AI via a base URL override.
type OpenAIProvider struct {
	client openai.Client
	config *contract.ProviderConfig

	mu         sync.Mutex
	lastUsage  contract.UsageStats
	lastRecord contract.UsageRecord
}

func NewOpenAIProvider(config *contract.ProviderConfig) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		config: config,
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) GetConfig() *contract.ProviderConfig { return o.config }

func (o *OpenAIProvider) GetUsage(ctx context.Context) (*contract.UsageStats, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	stats := o.lastUsage
	return &stats, nil
}

func (o *OpenAIProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Temperature: openai.Float(o.config.Temperature),
		MaxTokens:   openai.Int(int64(o.config.MaxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			userMessage(prompt),
		},
	})
	if err != nil {
		o.captureFailure(model, start, err)
		return "", err
	}
	o.captureUsage(model, start, resp.Usage)
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) HealthCheck(ctx context.Context) (*contract.HealthCheckResult, error) {
	start := time.Now()
	_, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.config.PrimaryModel),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			userMessage("Respond with: OK"),
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

func (o *OpenAIProvider) captureUsage(model string, start time.Time, usage openai.CompletionUsage) {
	latency := time.Since(start)
	record := contract.UsageRecord{
		InputTokens:  int(usage.PromptTokens),
		OutputTokens: int(usage.CompletionTokens),
		TotalTokens:  int(usage.TotalTokens),
		Latency:      latency,
		Success:      true,
		Model:        model,
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastRecord = record
	o.lastUsage.TotalRequests++
	o.lastUsage.SuccessfulRequests++
	o.lastUsage.TotalCost += record.TotalCost(o.config.CostPer1KInput, o.config.CostPer1KOutput)
	o.lastUsage.AverageLatency = averageLatency(o.lastUsage.AverageLatency, latency, o.lastUsage.SuccessfulRequests)
}

func (o *OpenAIProvider) captureFailure(model string, start time.Time, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastRecord = contract.UsageRecord{
		Latency:      time.Since(start),
		Success:      false,
		ErrorMessage: err.Error(),
		Model:        model,
	}
	o.lastUsage.TotalRequests++
	o.lastUsage.FailedRequests++
}

// LastUsageRecord reports the record captured by the most recent Complete
// call so the client can persist per-attempt telemetry.
func (o *OpenAIProvider) LastUsageRecord() contract.UsageRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastRecord
}

func userMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(content),
			},
		},
	}
}
