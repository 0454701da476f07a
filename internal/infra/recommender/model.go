package recommender

import (
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"toolscout/internal/domain"
)

// newChatModel creates the chat model for the configured provider.
// Gemini is reached through its OpenAI-compatible endpoint, so both
// providers share the same client.
func newChatModel(ctx context.Context, cfg domain.RecommenderConfig) (model.ToolCallingChatModel, error) {
	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = domain.DefaultRecommenderModel
	}

	switch cfg.Provider {
	case "gemini", "":
		baseURL := strings.TrimSpace(cfg.BaseURL)
		if baseURL == "" {
			baseURL = domain.DefaultGeminiBaseURL
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:   modelName,
			APIKey:  apiKey,
			BaseURL: baseURL,
		})
	case "openai":
		modelCfg := &openai.ChatModelConfig{
			Model:  modelName,
			APIKey: apiKey,
		}
		if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
			modelCfg.BaseURL = baseURL
		}
		return openai.NewChatModel(ctx, modelCfg)
	default:
		return nil, domain.E(domain.CodeInvalidArgument, "recommender.newChatModel",
			"unsupported provider: "+cfg.Provider, nil)
	}
}
