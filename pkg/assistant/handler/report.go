package handler

import (
	"context"
	"log"

	"f1-assistant-be/pkg/assistant/prompt"
	"f1-assistant-be/pkg/llm"
)

const reportSystemPrompt = `You are an expert F1 Report Generator specializing in creating
clear, concise, and professional summaries of F1 analyses and conversations.

Your responsibilities:
- Summarize complex technical discussions
- Highlight key findings and insights
- Structure information logically
- Include relevant data points and statistics
- Maintain technical accuracy
- Format reports in a readable, professional manner

Report Structure:
1. Executive Summary - Brief overview
2. Key Findings - Main insights discovered
3. Detailed Analysis - Technical details
4. Data Points - Relevant statistics
5. Conclusions - Summary and recommendations

Use markdown formatting for better readability.`

const noHistoryAnswer = "I don't have any conversation history to create a report from. " +
	"Please have a conversation first, and then I can generate a " +
	"summary report of our discussion."

// reportTokenCeiling bounds report length. When the first synthesis hits
// the ceiling the handler asks the model for a shorter one instead of
// cutting text client-side.
const reportTokenCeiling = 4000

// ReportHandler synthesizes a structured report from the whole (possibly
// compressed) conversation. Images are ignored.
type ReportHandler struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewReportHandler(llmProvider llm.LLMProvider, logger *log.Logger) *ReportHandler {
	return &ReportHandler{llmProvider: llmProvider, logger: logger}
}

func (h *ReportHandler) Name() string { return "ReportHandler" }

func (h *ReportHandler) Handle(ctx context.Context, in *Input) (*Outcome, error) {
	if len(in.History) == 0 {
		return &Outcome{Answer: noHistoryAnswer}, nil
	}

	reportPrompt := prompt.BuildReportPrompt(in.Text, in.History, in.Context)
	messages := []llm.Message{
		{Role: "system", Content: reportSystemPrompt},
		{Role: "user", Content: reportPrompt},
	}

	maxTokens := in.MaxTokens
	if maxTokens > reportTokenCeiling {
		maxTokens = reportTokenCeiling
	}

	result, err := h.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(0.5), // lower for consistent report structure
		llm.WithMaxTokens(maxTokens),
		llm.WithModel(in.Model),
	)
	if err != nil {
		return nil, err
	}

	answer := result.Content
	totalTokens := result.TokensUsed

	if estimateTokens(answer) >= maxTokens {
		// The synthesis hit the budget and was likely cut off mid-report.
		h.logger.Printf("[REPORT] Report hit token ceiling, requesting shorter synthesis")
		messages = append(messages,
			llm.Message{Role: "assistant", Content: answer},
			llm.Message{Role: "user", Content: "That report exceeded the length budget. Rewrite it as a shorter synthesis, keeping the same structure but only the most important findings."},
		)
		shorter, err := h.llmProvider.Chat(ctx, messages,
			llm.WithTemperature(0.5),
			llm.WithMaxTokens(maxTokens),
			llm.WithModel(in.Model),
		)
		if err != nil {
			return nil, err
		}
		answer = shorter.Content
		totalTokens += shorter.TokensUsed
	}

	return &Outcome{
		Answer:     answer,
		Model:      result.Model,
		TokensUsed: totalTokens,
	}, nil
}

// estimateTokens approximates token count from text length. Good enough to
// detect a response that filled its budget.
func estimateTokens(s string) int {
	return len(s) / 4
}

var _ Handler = &ReportHandler{}
