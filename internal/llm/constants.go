package llm

import "time"

// Provider constants
const (
	// DefaultProvider is the default LLM provider. Reviews run against a
	// locally hosted model unless configured otherwise.
	DefaultProvider = ProviderOllama

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI Provider = "openai"

	// ProviderOllama represents the Ollama provider
	ProviderOllama Provider = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic Provider = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Default chat models per provider.
const (
	DefaultOllamaModel    = "llama3.2"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-sonnet-latest"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// DefaultOllamaURL is the default URL for Ollama server
const DefaultOllamaURL = "http://localhost:11434"

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 2 * time.Minute

// DefaultAnthropicMaxTokens is sent with every Anthropic request; the API
// requires it.
const DefaultAnthropicMaxTokens = 4096

// DefaultModelForProvider returns the default model ID for a given provider.
func DefaultModelForProvider(provider string) string {
	switch Provider(provider) {
	case ProviderOllama:
		return DefaultOllamaModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return ""
	}
}
