package handler

import (
	"context"
	"log"

	"f1-assistant-be/pkg/assistant/prompt"
	"f1-assistant-be/pkg/assistant/vision"
	"f1-assistant-be/pkg/llm"
)

const technicalSystemPrompt = `You are an expert F1 Technical Analyst with deep knowledge of
telemetry data, performance metrics, and racing engineering.

Your expertise includes:
- Telemetry analysis (speed, throttle, brake, RPM, gear, DRS)
- Performance optimization and setup analysis
- Tire management and degradation patterns
- Aerodynamic efficiency and downforce
- Power unit performance and energy recovery
- Racing line optimization

When analyzing telemetry data:
- Provide specific technical insights
- Reference actual data points when available
- Explain the 'why' behind the numbers
- Suggest performance improvements when relevant
- Use technical terminology appropriately

If telemetry data is not provided in the context, explain what data
would be needed to provide a complete analysis.`

// TechnicalHandler answers telemetry and performance questions. It injects
// the session context into the prompt and accepts chart images, routed
// through the vision retry pipeline.
type TechnicalHandler struct {
	pipeline *vision.Pipeline
	logger   *log.Logger
}

func NewTechnicalHandler(pipeline *vision.Pipeline, logger *log.Logger) *TechnicalHandler {
	return &TechnicalHandler{pipeline: pipeline, logger: logger}
}

func (h *TechnicalHandler) Name() string { return "TechnicalHandler" }

func (h *TechnicalHandler) Handle(ctx context.Context, in *Input) (*Outcome, error) {
	systemPrompt := prompt.WithSessionContext(technicalSystemPrompt, in.Context)
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

var _ Handler = &TechnicalHandler{}
