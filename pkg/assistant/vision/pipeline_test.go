package vision

import (
	"context"
	"errors"
	"log"
	"testing"

	"f1-assistant-be/pkg/llm"
)

// recordingProvider captures every call and fails the first failN of them.
type recordingProvider struct {
	failN int
	calls [][]llm.Message
}

func (p *recordingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	msgs := make([]llm.Message, len(history))
	copy(msgs, history)
	p.calls = append(p.calls, msgs)
	if len(p.calls) <= p.failN {
		return nil, errors.New("inference failed")
	}
	return &llm.Result{Content: "analysis complete", Model: "test-model", TokensUsed: 20}, nil
}

func (p *recordingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Result, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

const testImageURI = "data:image/png;base64,aGVsbG8="

func visionMessages() []llm.Message {
	return []llm.Message{
		{Role: "system", Content: "analyst prompt"},
		{Role: "user", Content: "read this chart", ImageURL: testImageURI},
	}
}

func TestInvokeTextOnlyPassthrough(t *testing.T) {
	provider := &recordingProvider{}
	p := NewPipeline(provider, log.Default())

	result, err := p.Invoke(context.Background(), []llm.Message{
		{Role: "user", Content: "plain question"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.UsedImage || result.Degraded {
		t.Errorf("UsedImage = %v, Degraded = %v, want false/false", result.UsedImage, result.Degraded)
	}
	if len(provider.calls) != 1 {
		t.Errorf("provider calls = %d, want 1", len(provider.calls))
	}
}

func TestInvokeMultimodalSuccess(t *testing.T) {
	provider := &recordingProvider{}
	p := NewPipeline(provider, log.Default())

	result, err := p.Invoke(context.Background(), visionMessages())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !result.UsedImage {
		t.Errorf("UsedImage = false, want true")
	}
	if result.Degraded {
		t.Errorf("Degraded = true, want false")
	}
	if len(provider.calls) != 1 {
		t.Errorf("provider calls = %d, want 1", len(provider.calls))
	}
	if provider.calls[0][1].ImageURL != testImageURI {
		t.Errorf("first call lost the image")
	}
}

func TestInvokeRetriesTextOnlyOnce(t *testing.T) {
	provider := &recordingProvider{failN: 1}
	p := NewPipeline(provider, log.Default())

	original := visionMessages()
	result, err := p.Invoke(context.Background(), original)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.UsedImage {
		t.Errorf("UsedImage = true, want false after degradation")
	}
	if !result.Degraded {
		t.Errorf("Degraded = false, want true")
	}
	if len(provider.calls) != 2 {
		t.Fatalf("provider calls = %d, want exactly 2", len(provider.calls))
	}
	for i, m := range provider.calls[1] {
		if m.ImageURL != "" {
			t.Errorf("retry message %d still carries an image", i)
		}
	}
	// Caller's slice is untouched.
	if original[1].ImageURL != testImageURI {
		t.Errorf("input messages mutated by retry")
	}
}

func TestInvokeBothAttemptsFail(t *testing.T) {
	provider := &recordingProvider{failN: 2}
	p := NewPipeline(provider, log.Default())

	_, err := p.Invoke(context.Background(), visionMessages())
	if err == nil {
		t.Fatalf("Invoke() error = nil, want error")
	}
	if len(provider.calls) != 2 {
		t.Errorf("provider calls = %d, want exactly 2 (no retry loop)", len(provider.calls))
	}
}
