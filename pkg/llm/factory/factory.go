package factory

import (
	"fmt"
	"time"

	"f1-assistant-be/pkg/llm"
	"f1-assistant-be/pkg/llm/lmstudio"
	"f1-assistant-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case "lmstudio":
		if baseURL == "" {
			baseURL = "http://localhost:1234" // Default
		}
		return lmstudio.NewLMStudioProvider(baseURL, modelName, timeout), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
