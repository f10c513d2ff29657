package history

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"f1-assistant-be/pkg/assistant"
	"f1-assistant-be/pkg/llm"
)

const summarySystemPrompt = `You summarize F1 telemetry assistant conversations.
Produce a compact prose synthesis of the conversation below. Preserve
session facts (year, event, drivers), key findings and open questions.
Do not add commentary. Keep it short.`

// summaryPrefix marks the synthetic system message produced by compression.
const summaryPrefix = "Conversation summary: "

// Compressor bounds conversation length by summarizing older turns into a
// single synthetic system message once the pair threshold is exceeded.
type Compressor struct {
	llmProvider     llm.LLMProvider
	maxInteractions int
	logger          *log.Logger
}

// NewCompressor creates a compressor keeping at most maxInteractions recent
// user/assistant pairs (default 5 when non-positive).
func NewCompressor(llmProvider llm.LLMProvider, maxInteractions int, logger *log.Logger) *Compressor {
	if maxInteractions <= 0 {
		maxInteractions = 5
	}
	return &Compressor{
		llmProvider:     llmProvider,
		maxInteractions: maxInteractions,
		logger:          logger,
	}
}

// MaybeCompress returns a bounded copy of h. The second return is true when
// summarization failed and the old turns were truncated instead of
// summarized; data is never dropped silently without that flag.
//
// The result holds at most 2*maxInteractions messages plus one summary
// message, so a second call on the output is a no-op.
func (c *Compressor) MaybeCompress(ctx context.Context, h assistant.History) (assistant.History, bool) {
	if h.Pairs() <= c.maxInteractions {
		return h.Clone(), false
	}

	keep := 2 * c.maxInteractions
	old := h[:len(h)-keep]
	recent := h[len(h)-keep:].Clone()

	summary, err := c.summarize(ctx, old)
	if err != nil {
		// Fall back to plain truncation; the router records this as
		// degraded compression in response metadata.
		c.logger.Printf("[COMPRESSOR] Summarization failed, truncating %d old messages: %v", len(old), err)
		return recent, true
	}

	c.logger.Printf("[COMPRESSOR] Summarized %d old messages into one", len(old))
	out := make(assistant.History, 0, keep+1)
	out = append(out, assistant.Message{
		Role:      assistant.RoleSystem,
		Content:   summaryPrefix + summary,
		Timestamp: time.Now().UTC(),
	})
	return append(out, recent...), false
}

func (c *Compressor) summarize(ctx context.Context, old assistant.History) (string, error) {
	if c.llmProvider == nil {
		return "", fmt.Errorf("no llm provider configured")
	}

	var transcript strings.Builder
	for _, msg := range old {
		role := string(msg.Role)
		content := msg.Content
		if strings.HasPrefix(content, summaryPrefix) {
			// Re-fold a previous summary into the new one.
			content = strings.TrimPrefix(content, summaryPrefix)
			role = "summary so far"
		}
		transcript.WriteString(fmt.Sprintf("%s: %s\n", role, content))
	}

	messages := []llm.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: transcript.String()},
	}

	result, err := c.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(500),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result.Content) == "" {
		return "", fmt.Errorf("empty summary from llm")
	}
	return strings.TrimSpace(result.Content), nil
}
