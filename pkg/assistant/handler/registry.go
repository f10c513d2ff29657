package handler

import (
	"log"

	"f1-assistant-be/pkg/assistant"
	"f1-assistant-be/pkg/assistant/vision"
	"f1-assistant-be/pkg/llm"
)

// NewRegistry builds the closed category mapping. Image-capable handlers
// share one vision retry pipeline.
func NewRegistry(llmProvider llm.LLMProvider, pipeline *vision.Pipeline, logger *log.Logger) Registry {
	return Registry{
		assistant.CategoryBasic:      NewBasicHandler(llmProvider, logger),
		assistant.CategoryTechnical:  NewTechnicalHandler(pipeline, logger),
		assistant.CategoryComparison: NewComparisonHandler(pipeline, logger),
		assistant.CategoryReport:     NewReportHandler(llmProvider, logger),
		assistant.CategoryDownload:   NewDownloadHandler(logger),
	}
}
