package vision

import (
	"context"
	"fmt"
	"log"

	"f1-assistant-be/pkg/llm"
)

// Result reports the outcome of an inference call that may have carried an
// image. Degraded means the image was dropped after a failed multimodal
// attempt and the answer came from the text-only retry.
type Result struct {
	Answer     string
	Model      string
	TokensUsed int
	UsedImage  bool
	Degraded   bool
}

// Pipeline wraps inference calls with the retry-without-image policy:
// at most one multimodal attempt and one text-only retry, never a loop.
type Pipeline struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewPipeline(llmProvider llm.LLMProvider, logger *log.Logger) *Pipeline {
	return &Pipeline{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Invoke sends the messages to the provider. Without an image it is a plain
// passthrough. With an image it issues one multimodal request with no
// timeout ceiling (vision inference may be slow; only ctx cancellation can
// abort it), and on failure retries exactly once text-only, tagging the
// result degraded. A failed retry propagates the error.
func (p *Pipeline) Invoke(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*Result, error) {
	hasImage := false
	for _, m := range messages {
		if m.HasImage() {
			hasImage = true
			break
		}
	}

	if !hasImage {
		result, err := p.llmProvider.Chat(ctx, messages, opts...)
		if err != nil {
			return nil, err
		}
		return &Result{
			Answer:     result.Content,
			Model:      result.Model,
			TokensUsed: result.TokensUsed,
		}, nil
	}

	visionOpts := append(append([]llm.Option{}, opts...), llm.WithoutTimeout())
	result, err := p.llmProvider.Chat(ctx, messages, visionOpts...)
	if err == nil {
		return &Result{
			Answer:     result.Content,
			Model:      result.Model,
			TokensUsed: result.TokensUsed,
			UsedImage:  true,
		}, nil
	}

	p.logger.Printf("[VISION] Multimodal call failed, retrying text-only: %v", err)

	textOnly := make([]llm.Message, len(messages))
	for i, m := range messages {
		m.ImageURL = ""
		textOnly[i] = m
	}

	result, retryErr := p.llmProvider.Chat(ctx, textOnly, opts...)
	if retryErr != nil {
		return nil, fmt.Errorf("text-only retry failed after multimodal failure (%v): %w", err, retryErr)
	}

	return &Result{
		Answer:     result.Content,
		Model:      result.Model,
		TokensUsed: result.TokensUsed,
		Degraded:   true,
	}, nil
}
