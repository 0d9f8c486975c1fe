// Package llm provides a unified interface for LLM providers using CloudWeGo Eino.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// Provider identifies the LLM provider to use.
type Provider string

// Config holds configuration for creating an LLM client.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string        // Required for OpenAI, Anthropic and Gemini
	BaseURL  string        // Ollama server or OpenAI-compatible endpoint
	Timeout  time.Duration // Per request; zero means DefaultTimeout
}

// NewChatModel creates a ChatModel instance based on the provider configuration.
// It returns an Eino BaseChatModel that can be used for Generate() calls.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModelForProvider(string(cfg.Provider))
	}

	switch cfg.Provider {
	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   modelName,
			Timeout: timeout,
		})

	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:   modelName,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		})

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		return claude.NewChatModel(ctx, claudeConfig(cfg.APIKey, modelName, cfg.BaseURL, timeout))

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		client, err := genai.NewClient(ctx, geminiClientConfig(cfg.APIKey, timeout))
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: ollama, openai, anthropic, gemini)", cfg.Provider)
	}
}

// claudeConfig bounds every Anthropic request with timeout through the HTTP client.
func claudeConfig(apiKey, modelName, baseURL string, timeout time.Duration) *claude.Config {
	c := &claude.Config{
		APIKey:     apiKey,
		Model:      modelName,
		MaxTokens:  DefaultAnthropicMaxTokens,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		c.BaseURL = &baseURL
	}
	return c
}

// geminiClientConfig bounds every Gemini request with timeout through the HTTP client.
func geminiClientConfig(apiKey string, timeout time.Duration) *genai.ClientConfig {
	return &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// ValidateProvider checks if the given provider string is supported.
func ValidateProvider(p string) (Provider, error) {
	switch Provider(p) {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return Provider(p), nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", p)
	}
}
