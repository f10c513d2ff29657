package router

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"f1-assistant-be/pkg/assistant"
	"f1-assistant-be/pkg/assistant/handler"
	"f1-assistant-be/pkg/assistant/history"
	"f1-assistant-be/pkg/assistant/intent"
	"f1-assistant-be/pkg/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Config bounds request validation. Zero values take the defaults.
type Config struct {
	MaxImageSizeMB float64 // default 5
}

// Router is the top-level orchestrator. Per request it validates input,
// compresses history, classifies intent, dispatches to exactly one handler
// and assembles the response with timing and usage metadata. It holds no
// cross-request state.
type Router struct {
	classifier     *intent.Classifier
	compressor     *history.Compressor
	registry       handler.Registry
	eventPublisher events.Publisher
	logger         *log.Logger
	tracer         trace.Tracer
	maxImageBytes  int
}

func NewRouter(
	classifier *intent.Classifier,
	compressor *history.Compressor,
	registry handler.Registry,
	eventPublisher events.Publisher,
	logger *log.Logger,
	cfg Config,
) (*Router, error) {
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("handler registry: %w", err)
	}
	maxMB := cfg.MaxImageSizeMB
	if maxMB <= 0 {
		maxMB = 5
	}
	return &Router{
		classifier:     classifier,
		compressor:     compressor,
		registry:       registry,
		eventPublisher: eventPublisher,
		logger:         logger,
		tracer:         otel.Tracer("assistant/router"),
		maxImageBytes:  int(maxMB * 1024 * 1024),
	}, nil
}

// ProcessQuery is the single public entry point of the engine.
//
// The caller-supplied history is never mutated: the compressed copy only
// becomes visible through the returned response, so a failed call leaves
// conversation state untouched and is safe to retry.
func (r *Router) ProcessQuery(ctx context.Context, req *assistant.Request) (*assistant.Response, error) {
	start := time.Now()
	requestID := uuid.New().String()

	ctx, span := r.tracer.Start(ctx, "assistant.process_query")
	defer span.End()

	if err := r.validate(req); err != nil {
		r.logger.Printf("[ROUTER] Request %s rejected: %v", requestID, err)
		return nil, err
	}
	span.AddEvent("validated")

	compressed, truncated := r.compressor.MaybeCompress(ctx, req.History)
	span.AddEvent("compressed")

	classification := r.classifier.Classify(ctx, req.Text)
	span.SetAttributes(
		attribute.String("query.category", string(classification.Category)),
		attribute.String("query.classifier_method", string(classification.Method)),
	)

	h, err := r.registry.Resolve(classification.Category)
	if err != nil {
		// The registry is validated total at construction, so this is a
		// programming error, surfaced as a server-side failure.
		return nil, r.fail(ctx, requestID, classification.Category, "dispatch", start, err)
	}

	r.logger.Printf("[ROUTER] Request %s: %s -> %s (method=%s)",
		requestID, truncateLog(req.Text, 50), classification.Category, classification.Method)

	outcome, err := h.Handle(ctx, &handler.Input{
		Text:        req.Text,
		Image:       req.Image,
		History:     compressed,
		Context:     req.Context,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, r.fail(ctx, requestID, classification.Category, h.Name(), start, err)
	}
	span.AddEvent("dispatched")

	resp := &assistant.Response{
		Category:    classification.Category,
		HandlerName: h.Name(),
		Answer:      outcome.Answer,
		History:     compressed,
		Metadata: assistant.Metadata{
			RequestID:           requestID,
			ProcessingTimeMs:    float64(time.Since(start).Microseconds()) / 1000,
			TokensUsed:          outcome.TokensUsed,
			LLMModel:            outcome.Model,
			ClassifierMethod:    classification.Method,
			UsedImage:           outcome.UsedImage,
			ImageDegraded:       outcome.ImageDegraded,
			UsedContext:         !req.Context.IsZero(),
			UsedHistory:         len(compressed) > 0,
			CompressionDegraded: truncated,
			Timestamp:           start.UTC(),
		},
	}

	r.publishProcessed(ctx, resp)
	return resp, nil
}

func (r *Router) validate(req *assistant.Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return &assistant.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if req.Temperature < 0 || req.Temperature > 1 {
		return &assistant.ValidationError{Field: "temperature", Reason: "must be between 0.0 and 1.0"}
	}
	if req.MaxTokens <= 0 {
		return &assistant.ValidationError{Field: "max_tokens", Reason: "must be positive"}
	}
	if req.Image != "" {
		if !strings.HasPrefix(req.Image, "data:image/") {
			return &assistant.ValidationError{Field: "image", Reason: "must be a data URI (data:image/...)"}
		}
		if size := imagePayloadBytes(req.Image); size > r.maxImageBytes {
			return &assistant.ValidationError{
				Field:  "image",
				Reason: fmt.Sprintf("decoded size %d bytes exceeds limit of %d bytes", size, r.maxImageBytes),
			}
		}
	}
	return nil
}

// imagePayloadBytes estimates the decoded size of a base64 data URI.
func imagePayloadBytes(dataURI string) int {
	payload := dataURI
	if idx := strings.Index(dataURI, ","); idx != -1 {
		payload = dataURI[idx+1:]
	}
	return base64.StdEncoding.DecodedLen(len(payload))
}

func (r *Router) fail(ctx context.Context, requestID string, category assistant.Category, stage string, start time.Time, err error) error {
	elapsed := time.Since(start)
	herr := &assistant.HandlerError{
		Category: category,
		Stage:    stage,
		Elapsed:  elapsed,
		Err:      err,
	}
	r.logger.Printf("[ROUTER] Request %s failed: %v", requestID, herr)
	r.publish(ctx, events.BaseEvent{
		Type: events.TypeQueryFailed,
		Data: map[string]interface{}{
			"request_id": requestID,
			"category":   string(category),
			"stage":      stage,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		},
		OccurredAt: time.Now(),
	})
	return herr
}

func (r *Router) publishProcessed(ctx context.Context, resp *assistant.Response) {
	md := resp.Metadata
	data := map[string]interface{}{
		"request_id":        md.RequestID,
		"category":          string(resp.Category),
		"handler":           resp.HandlerName,
		"classifier_method": string(md.ClassifierMethod),
		"tokens_used":       md.TokensUsed,
		"elapsed_ms":        md.ProcessingTimeMs,
	}
	r.publish(ctx, events.BaseEvent{
		Type:       events.TypeQueryProcessed,
		Data:       data,
		OccurredAt: time.Now(),
	})

	if md.ImageDegraded || md.CompressionDegraded {
		degraded := map[string]interface{}{
			"request_id":           md.RequestID,
			"image_degraded":       md.ImageDegraded,
			"compression_degraded": md.CompressionDegraded,
		}
		r.publish(ctx, events.BaseEvent{
			Type:       events.TypeQueryDegraded,
			Data:       degraded,
			OccurredAt: time.Now(),
		})
	}
}

func (r *Router) publish(ctx context.Context, evt events.BaseEvent) {
	if r.eventPublisher == nil {
		return
	}
	// Publishing is auxiliary; never fail the request over it.
	if err := r.eventPublisher.Publish(ctx, evt); err != nil {
		r.logger.Printf("[ROUTER] Failed to publish %s event: %v", evt.EventType(), err)
	}
}

// truncateLog truncates string for logging
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
