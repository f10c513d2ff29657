package dto

import (
	"time"

	"f1-assistant-be/pkg/assistant"
)

type ChatMessageDTO struct {
	Role      string    `json:"role" validate:"required,oneof=user assistant system"`
	Content   string    `json:"content" validate:"required"`
	ImageURL  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type SessionContextDTO struct {
	Year        int      `json:"year,omitempty"`
	EventName   string   `json:"event_name,omitempty"`
	SessionType string   `json:"session_type,omitempty"`
	DriverCodes []string `json:"driver_codes,omitempty"`
}

type ProcessQueryRequest struct {
	Text        string             `json:"text" validate:"required"`
	Image       string             `json:"image,omitempty" validate:"omitempty,startswith=data:image/"`
	History     []ChatMessageDTO   `json:"chat_history,omitempty" validate:"dive"`
	Context     *SessionContextDTO `json:"context,omitempty"`
	Model       string             `json:"model,omitempty"`
	Temperature float64            `json:"temperature" validate:"gte=0,lte=1"`
	MaxTokens   int                `json:"max_tokens" validate:"gt=0"`
}

type QueryMetadataDTO struct {
	RequestID           string    `json:"request_id"`
	ProcessingTimeMs    float64   `json:"processing_time_ms"`
	TokensUsed          int       `json:"tokens_used"`
	LLMModel            string    `json:"llm_model,omitempty"`
	ClassifierMethod    string    `json:"classifier_method"`
	UsedImage           bool      `json:"used_image"`
	ImageDegraded       bool      `json:"image_degraded"`
	UsedContext         bool      `json:"used_context"`
	UsedHistory         bool      `json:"used_history"`
	CompressionDegraded bool      `json:"compression_degraded"`
	Timestamp           time.Time `json:"timestamp"`
}

type ProcessQueryResponse struct {
	Category string           `json:"category"`
	Handler  string           `json:"handler"`
	Response string           `json:"response"`
	History  []ChatMessageDTO `json:"chat_history"`
	Metadata QueryMetadataDTO `json:"metadata"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	LLMReachable    bool   `json:"llm_reachable"`
	ModelsAvailable int    `json:"models_available,omitempty"`
	Message         string `json:"message"`
}

type ModelsResponse struct {
	Models []string `json:"models"`
}

// --- Domain mapping ---

func (r *ProcessQueryRequest) ToDomain() *assistant.Request {
	history := make(assistant.History, 0, len(r.History))
	for _, m := range r.History {
		history = append(history, assistant.Message{
			Role:      assistant.Role(m.Role),
			Content:   m.Content,
			ImageURL:  m.ImageURL,
			Timestamp: m.Timestamp,
		})
	}

	var sc *assistant.SessionContext
	if r.Context != nil {
		sc = &assistant.SessionContext{
			Year:        r.Context.Year,
			EventName:   r.Context.EventName,
			SessionType: r.Context.SessionType,
			DriverCodes: r.Context.DriverCodes,
		}
	}

	return &assistant.Request{
		Text:        r.Text,
		Image:       r.Image,
		History:     history,
		Context:     sc,
		Model:       r.Model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
}

func FromDomainResponse(resp *assistant.Response) *ProcessQueryResponse {
	history := make([]ChatMessageDTO, 0, len(resp.History))
	for _, m := range resp.History {
		history = append(history, ChatMessageDTO{
			Role:      string(m.Role),
			Content:   m.Content,
			ImageURL:  m.ImageURL,
			Timestamp: m.Timestamp,
		})
	}

	return &ProcessQueryResponse{
		Category: string(resp.Category),
		Handler:  resp.HandlerName,
		Response: resp.Answer,
		History:  history,
		Metadata: QueryMetadataDTO{
			RequestID:           resp.Metadata.RequestID,
			ProcessingTimeMs:    resp.Metadata.ProcessingTimeMs,
			TokensUsed:          resp.Metadata.TokensUsed,
			LLMModel:            resp.Metadata.LLMModel,
			ClassifierMethod:    string(resp.Metadata.ClassifierMethod),
			UsedImage:           resp.Metadata.UsedImage,
			ImageDegraded:       resp.Metadata.ImageDegraded,
			UsedContext:         resp.Metadata.UsedContext,
			UsedHistory:         resp.Metadata.UsedHistory,
			CompressionDegraded: resp.Metadata.CompressionDegraded,
			Timestamp:           resp.Metadata.Timestamp,
		},
	}
}
