package handler

import (
	"context"
	"log"

	"f1-assistant-be/pkg/assistant/prompt"
	"f1-assistant-be/pkg/assistant/vision"
	"f1-assistant-be/pkg/llm"
)

const comparisonSystemPrompt = `You are an expert F1 Comparison Analyst specializing in
head-to-head analysis of drivers, laps, sessions and cars.

When comparing:
- Contrast the relevant metrics side by side (lap times, sector times,
  speed traces, braking points, throttle application)
- Quantify the differences and say where on the track they arise
- Explain the likely causes (setup, driving style, tires, conditions)
- Be explicit about which driver or lap is ahead and by how much
- Use the session context to anchor your analysis

If a comparison chart is attached, read the traces carefully and tie your
observations back to the plotted data.`

// ComparisonHandler answers head-to-head queries. Same shape as the
// technical handler: context injection plus chart images via the vision
// retry pipeline.
type ComparisonHandler struct {
	pipeline *vision.Pipeline
	logger   *log.Logger
}

func NewComparisonHandler(pipeline *vision.Pipeline, logger *log.Logger) *ComparisonHandler {
	return &ComparisonHandler{pipeline: pipeline, logger: logger}
}

func (h *ComparisonHandler) Name() string { return "ComparisonHandler" }

func (h *ComparisonHandler) Handle(ctx context.Context, in *Input) (*Outcome, error) {
	systemPrompt := prompt.WithSessionContext(comparisonSystemPrompt, in.Context)
	messages := prompt.BuildMessages(systemPrompt, in.History, in.Text, in.Image)

	result, err := h.pipeline.Invoke(ctx, messages,
		llm.WithTemperature(in.Temperature),
		llm.WithMaxTokens(in.MaxTokens),
		llm.WithModel(in.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Answer:        result.Answer,
		Model:         result.Model,
		TokensUsed:    result.TokensUsed,
		UsedImage:     result.UsedImage,
		ImageDegraded: result.Degraded,
	}, nil
}

var _ Handler = &ComparisonHandler{}
