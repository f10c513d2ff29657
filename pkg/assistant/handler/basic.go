package handler

import (
	"context"
	"log"

	"f1-assistant-be/pkg/assistant/prompt"
	"f1-assistant-be/pkg/llm"
)

const basicSystemPrompt = `You are a knowledgeable F1 Assistant specializing in explaining
Formula 1 concepts, rules, terminology, and general information to users.

Your responses should be:
- Clear and easy to understand
- Accurate and up-to-date
- Educational and engaging
- Suitable for both beginners and enthusiasts

If the user asks about technical data or telemetry, politely inform them
that you specialize in general F1 knowledge and suggest they ask a more
specific technical question.`

// BasicHandler answers general F1 questions. Text-only, conversational
// tone, no session context injection.
type BasicHandler struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewBasicHandler(llmProvider llm.LLMProvider, logger *log.Logger) *BasicHandler {
	return &BasicHandler{llmProvider: llmProvider, logger: logger}
}

func (h *BasicHandler) Name() string { return "BasicHandler" }

func (h *BasicHandler) Handle(ctx context.Context, in *Input) (*Outcome, error) {
	messages := prompt.BuildMessages(basicSystemPrompt, in.History, in.Text, "")

	result, err := h.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(in.Temperature),
		llm.WithMaxTokens(in.MaxTokens),
		llm.WithModel(in.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Answer:     result.Content,
		Model:      result.Model,
		TokensUsed: result.TokensUsed,
	}, nil
}

var _ Handler = &BasicHandler{}
