package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/josephgoksu/SprintReview/internal/llm"
	"github.com/spf13/viper"
)

// LoadLLMConfig loads LLM configuration from Viper and Environment variables.
// It handles precedence: Explicit Viper Config > Environment Variables > Defaults.
func LoadLLMConfig() (llm.Config, error) {
	// 1. Provider
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = string(llm.DefaultProvider)
	}

	llmProvider, err := llm.ValidateProvider(provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	// 2. Model
	model := viper.GetString("llm.model")
	if model == "" {
		model = llm.DefaultModelForProvider(string(llmProvider))
	}

	// 3. API Key (Ollama needs none)
	apiKey := ResolveAPIKey(llmProvider)

	// 4. Base URL
	baseURL := viper.GetString("llm.baseURL")
	if baseURL == "" && llmProvider == llm.ProviderOllama {
		baseURL = llm.DefaultOllamaURL
	}

	timeout := viper.GetDuration("llm.timeout")
	if timeout < 0 {
		return llm.Config{}, fmt.Errorf("llm.timeout must not be negative")
	}

	return llm.Config{
		Provider: llmProvider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Timeout:  timeout,
	}, nil
}

// ResolveAPIKey returns the API key for the given provider using the
// per-provider config key first, then the provider-specific env var.
func ResolveAPIKey(provider llm.Provider) string {
	path := fmt.Sprintf("llm.apiKeys.%s", provider)
	if viper.IsSet(path) {
		if key := strings.TrimSpace(viper.GetString(path)); key != "" {
			return key
		}
	}
	return providerEnvKey(provider)
}

func providerEnvKey(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case llm.ProviderAnthropic:
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case llm.ProviderGemini:
		key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
		}
		return key
	default:
		return ""
	}
}
