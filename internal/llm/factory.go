package llm

import (
	"strings"
	"sync"

	"email-insight/backend/internal/llm/providers"
)

const togetherBaseURL = "https://api.together.xyz/v1"

type Factory struct {
	mu        sync.Mutex
	instances map[string]Provider
}

func NewFactory() *Factory {
	return &Factory{instances: map[string]Provider{}}
}

// CreateProvider returns a cached or new provider for the config, or nil for
// an unsupported provider name.
func (f *Factory) CreateProvider(config *ProviderConfig) Provider {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := config.ProviderName + ":" + config.BaseURL
	if provider, ok := f.instances[key]; ok {
		return provider
	}

	var provider Provider
	switch strings.ToLower(config.ProviderName) {
	case "together":
		// Together AI exposes an OpenAI-compatible API.
		if config.BaseURL == "" {
			config.BaseURL = togetherBaseURL
		}
		provider = providers.NewOpenAIProvider(config)
	case "openai", "azure_openai", "azureopenai":
		provider = providers.NewOpenAIProvider(config)
	case "claude", "anthropic":
		provider = providers.NewClaudeProvider(config)
	case "cohere":
		provider = providers.NewCohereProvider(config)
	default:
		return nil
	}
	f.instances[key] = provider
	return provider
}
