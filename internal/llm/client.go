package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrUnavailable reports that every model attempt failed. Callers treat it
// as a degraded-quality signal, not a request failure.
var ErrUnavailable = errors.New("all model attempts failed")

const defaultAttemptTimeout = 30 * time.Second

// Client is the two-attempt completion chain: the primary model identifier
// first, then the fallback identifier, each under its own hard timeout. Two
// attempts maximum, no inner retries.
type Client struct {
	provider Provider
	models   []string
	timeout  time.Duration
	usage    *UsageStore
}

// usageAware is satisfied by providers that capture per-call token counts;
// the method must be exported so implementations in other packages qualify.
type usageAware interface {
	LastUsageRecord() UsageRecord
}

func NewClient(provider Provider, timeout time.Duration, usage *UsageStore) *Client {
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	cfg := provider.GetConfig()
	var models []string
	for _, model := range []string{cfg.PrimaryModel, cfg.FallbackModel} {
		if model != "" && !contains(models, model) {
			models = append(models, model)
		}
	}
	return &Client{provider: provider, models: models, timeout: timeout, usage: usage}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if len(c.models) == 0 {
		return "", ErrUnavailable
	}
	for _, model := range c.models {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		text, err := c.provider.Complete(attemptCtx, model, prompt)
		cancel()
		c.recordUsage(ctx, model, start, err)
		if err == nil {
			return text, nil
		}
		log.Printf("model %s attempt failed: %v", model, err)
	}
	return "", ErrUnavailable
}

func (c *Client) recordUsage(ctx context.Context, model string, start time.Time, err error) {
	if c.usage == nil {
		return
	}
	record := usageFromProvider(c.provider, model, start, err)
	if insertErr := c.usage.InsertUsage(ctx, c.provider.Name(), record,
		c.provider.GetConfig().CostPer1KInput, c.provider.GetConfig().CostPer1KOutput); insertErr != nil {
		log.Printf("usage record insert failed: %v", insertErr)
	}
}

func usageFromProvider(provider Provider, model string, start time.Time, err error) UsageRecord {
	if aware, ok := provider.(usageAware); ok {
		record := aware.LastUsageRecord()
		record.Model = model
		if err != nil {
			record.Success = false
			record.ErrorMessage = err.Error()
		}
		if record.InputTokens == 0 && record.OutputTokens == 0 {
			record.Latency = time.Since(start)
		}
		return record
	}
	return UsageRecord{
		Latency:      time.Since(start),
		Success:      err == nil,
		ErrorMessage: errorString(err),
		Model:        model,
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
