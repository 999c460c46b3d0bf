package llm

import "fmt"

const defaultOllamaModel = "llama3.1"

// ProviderConfig selects and configures the chat backend.
type ProviderConfig struct {
	Provider  string
	APIKey    string
	AuthToken string // OAuth token (Bearer auth), Anthropic only
	Model     string
	BaseURL   string // Ollama server, OpenAI wire protocol
}

// NewClient builds the chat client for the configured provider. Ollama
// speaks the OpenAI completions protocol, so it reuses that client pointed
// at the local server.
func NewClient(cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.AuthToken, cfg.Model), nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, ""), nil
	case "ollama":
		model := cfg.Model
		if model == "" {
			model = defaultOllamaModel
		}
		return NewOpenAIClient("ollama", model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
