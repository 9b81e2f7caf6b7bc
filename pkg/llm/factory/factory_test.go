package factory

import (
	"context"
	"testing"

	"bytebuddhi-be/pkg/llm"
)

type recordingProvider struct {
	name       string
	chatCalls  int
	embedCalls int
}

func (p *recordingProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.chatCalls++
	return p.name, nil
}

func (p *recordingProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.chatCalls++
	return p.name, nil
}

func (p *recordingProvider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	return nil, nil
}

func (p *recordingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.embedCalls++
	return []float32{1}, nil
}

func TestWithEmbedderRoutesEmbedOnly(t *testing.T) {
	primary := &recordingProvider{name: "primary"}
	embedder := &recordingProvider{name: "embedder"}

	split := WithEmbedder(primary, embedder)

	if _, err := split.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	got, err := split.Chat(context.Background(), nil)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if got != "primary" {
		t.Errorf("Chat routed to %q, want primary", got)
	}
	if embedder.embedCalls != 1 || primary.embedCalls != 0 {
		t.Errorf("Embed calls: primary=%d embedder=%d, want 0/1", primary.embedCalls, embedder.embedCalls)
	}
	if primary.chatCalls != 1 || embedder.chatCalls != 0 {
		t.Errorf("Chat calls: primary=%d embedder=%d, want 1/0", primary.chatCalls, embedder.chatCalls)
	}
}

func TestNewLLMProviderGemini(t *testing.T) {
	p, err := NewLLMProvider("gemini", "gemini-2.0-flash", "", "test-key")
	if err != nil {
		t.Fatalf("NewLLMProvider(gemini) error = %v", err)
	}
	if p == nil {
		t.Fatal("NewLLMProvider(gemini) returned nil provider")
	}

	if _, err := NewLLMProvider("gemini", "gemini-2.0-flash", "", ""); err == nil {
		t.Fatal("expected error when the gemini api key is missing")
	}
}

func TestNewLLMProviderUnsupported(t *testing.T) {
	if _, err := NewLLMProvider("openai", "gpt", "", ""); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if _, err := NewEmbeddingProvider("openai", "", ""); err == nil {
		t.Fatal("expected error for unsupported embedding provider")
	}
}
