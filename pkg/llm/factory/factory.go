package factory

import (
	"context"
	"fmt"

	"bytebuddhi-be/pkg/llm"
	"bytebuddhi-be/pkg/llm/gemini"
	"bytebuddhi-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, geminiApiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		return gemini.NewGeminiProvider(geminiApiKey, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// NewEmbeddingProvider builds the provider used for Embed calls only.
// Model defaults suit embeddings rather than chat.
func NewEmbeddingProvider(providerType, baseURL, geminiApiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, "nomic-embed-text"), nil
	case "gemini":
		return gemini.NewGeminiProvider(geminiApiKey, "")
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}

// WithEmbedder routes Embed through a dedicated provider while chat and
// generation stay on the primary one.
func WithEmbedder(primary, embedder llm.LLMProvider) llm.LLMProvider {
	return &splitProvider{LLMProvider: primary, embedder: embedder}
}

type splitProvider struct {
	llm.LLMProvider
	embedder llm.LLMProvider
}

func (p *splitProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.embedder.Embed(ctx, text)
}
