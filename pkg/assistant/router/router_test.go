package router

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"f1-assistant-be/pkg/assistant"
	"f1-assistant-be/pkg/assistant/handler"
	"f1-assistant-be/pkg/assistant/history"
	"f1-assistant-be/pkg/assistant/intent"
	"f1-assistant-be/pkg/assistant/vision"
	"f1-assistant-be/pkg/events"
	"f1-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider counts inference calls so tests can assert the
// no-inference guarantees. When failing is set every call errors.
type countingProvider struct {
	answer  string
	failing bool
	calls   int
}

func (p *countingProvider) Chat(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Result, error) {
	p.calls++
	if p.failing {
		return nil, errors.New("backend unavailable")
	}
	return &llm.Result{Content: p.answer, Model: "test-model", TokensUsed: 25}, nil
}

func (p *countingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Result, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// memoryPublisher collects published events in order.
type memoryPublisher struct {
	published []events.Event
}

func (p *memoryPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.published = append(p.published, evt)
	return nil
}

func (p *memoryPublisher) types() []string {
	out := make([]string, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.EventType())
	}
	return out
}

// newTestRouter wires a router with a keyword-only classifier (nil LLM
// provider keeps classification deterministic) and the given providers for
// compression and handlers.
func newTestRouter(t *testing.T, handlerProvider, summarizerProvider llm.LLMProvider, pub events.Publisher) *Router {
	t.Helper()
	logger := log.Default()
	classifier := intent.NewClassifier(nil, intent.DefaultKeywords(), 0, logger)
	compressor := history.NewCompressor(summarizerProvider, 5, logger)
	pipeline := vision.NewPipeline(handlerProvider, logger)
	registry := handler.NewRegistry(handlerProvider, pipeline, logger)

	r, err := NewRouter(classifier, compressor, registry, pub, logger, Config{})
	require.NoError(t, err)
	return r
}

func TestNewRouterRejectsPartialRegistry(t *testing.T) {
	logger := log.Default()
	provider := &countingProvider{answer: "ok"}
	pipeline := vision.NewPipeline(provider, logger)
	registry := handler.NewRegistry(provider, pipeline, logger)
	delete(registry, assistant.CategoryDownload)

	_, err := NewRouter(
		intent.NewClassifier(nil, intent.DefaultKeywords(), 0, logger),
		history.NewCompressor(provider, 5, logger),
		registry,
		nil,
		logger,
		Config{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOWNLOAD_REQUEST")
}

func TestProcessQueryValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       *assistant.Request
		wantField string
	}{
		{
			name:      "empty text",
			req:       &assistant.Request{Text: "   \n ", Temperature: 0.5, MaxTokens: 100},
			wantField: "text",
		},
		{
			name:      "temperature too high",
			req:       &assistant.Request{Text: "hi", Temperature: 1.5, MaxTokens: 100},
			wantField: "temperature",
		},
		{
			name:      "temperature negative",
			req:       &assistant.Request{Text: "hi", Temperature: -0.1, MaxTokens: 100},
			wantField: "temperature",
		},
		{
			name:      "non-positive max tokens",
			req:       &assistant.Request{Text: "hi", Temperature: 0.5, MaxTokens: 0},
			wantField: "max_tokens",
		},
		{
			name: "image without data uri",
			req: &assistant.Request{
				Text: "read this", Temperature: 0.5, MaxTokens: 100,
				Image: "https://example.com/chart.png",
			},
			wantField: "image",
		},
		{
			name: "oversized image",
			req: &assistant.Request{
				Text: "read this", Temperature: 0.5, MaxTokens: 100,
				Image: "data:image/png;base64," + strings.Repeat("A", 8*1024*1024),
			},
			wantField: "image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &countingProvider{answer: "ok"}
			pub := &memoryPublisher{}
			r := newTestRouter(t, provider, provider, pub)

			_, err := r.ProcessQuery(context.Background(), tt.req)
			require.Error(t, err)

			var verr *assistant.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Zero(t, provider.calls, "no inference call may happen for invalid input")
			assert.Empty(t, pub.published, "rejected requests publish nothing")
		})
	}
}

func TestProcessQueryDownloadFlow(t *testing.T) {
	provider := &countingProvider{answer: "should not be used"}
	pub := &memoryPublisher{}
	r := newTestRouter(t, provider, provider, pub)

	resp, err := r.ProcessQuery(context.Background(), &assistant.Request{
		Text:        "Download the lap data as CSV",
		Context:     &assistant.SessionContext{Year: 2024, EventName: "Monza", DriverCodes: []string{"VER"}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	require.NoError(t, err)

	assert.Equal(t, assistant.CategoryDownload, resp.Category)
	assert.Equal(t, "DownloadHandler", resp.HandlerName)
	assert.Equal(t, assistant.MethodFallback, resp.Metadata.ClassifierMethod)
	assert.False(t, resp.Metadata.UsedImage)
	assert.True(t, resp.Metadata.UsedContext)
	assert.Zero(t, provider.calls, "download requests never hit the llm")
	assert.Equal(t, []string{events.TypeQueryProcessed}, pub.types())
}

func TestProcessQueryBasicFlow(t *testing.T) {
	provider := &countingProvider{answer: "DRS is a drag reduction system."}
	pub := &memoryPublisher{}
	r := newTestRouter(t, provider, provider, pub)

	resp, err := r.ProcessQuery(context.Background(), &assistant.Request{
		Text:        "What is DRS?",
		Temperature: 0.7,
		MaxTokens:   500,
	})
	require.NoError(t, err)

	assert.Equal(t, assistant.CategoryBasic, resp.Category)
	assert.Equal(t, "BasicHandler", resp.HandlerName)
	assert.Equal(t, "DRS is a drag reduction system.", resp.Answer)
	assert.Equal(t, "test-model", resp.Metadata.LLMModel)
	assert.Equal(t, 25, resp.Metadata.TokensUsed)
	assert.False(t, resp.Metadata.UsedContext)
	assert.False(t, resp.Metadata.UsedHistory)
	assert.NotEmpty(t, resp.Metadata.RequestID)
}

func TestProcessQueryHandlerFailure(t *testing.T) {
	provider := &countingProvider{failing: true}
	pub := &memoryPublisher{}
	r := newTestRouter(t, provider, provider, pub)

	inputHistory := assistant.History{
		{Role: assistant.RoleUser, Content: "earlier question"},
		{Role: assistant.RoleAssistant, Content: "earlier answer"},
	}

	_, err := r.ProcessQuery(context.Background(), &assistant.Request{
		Text:        "What is DRS?",
		History:     inputHistory,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	require.Error(t, err)

	var herr *assistant.HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, assistant.CategoryBasic, herr.Category)
	assert.Equal(t, "BasicHandler", herr.Stage)

	// The caller keeps its conversation state on failure.
	assert.Len(t, inputHistory, 2)
	assert.Equal(t, "earlier question", inputHistory[0].Content)

	assert.Equal(t, []string{events.TypeQueryFailed}, pub.types())
}

func TestProcessQueryCompressionDegraded(t *testing.T) {
	handlerProvider := &countingProvider{answer: "here is your answer"}
	summarizer := &countingProvider{failing: true}
	pub := &memoryPublisher{}
	r := newTestRouter(t, handlerProvider, summarizer, pub)

	h := make(assistant.History, 0, 24)
	for i := 0; i < 12; i++ {
		h = append(h,
			assistant.Message{Role: assistant.RoleUser, Content: "q"},
			assistant.Message{Role: assistant.RoleAssistant, Content: "a"},
		)
	}

	resp, err := r.ProcessQuery(context.Background(), &assistant.Request{
		Text:        "What is DRS?",
		History:     h,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	require.NoError(t, err)

	assert.True(t, resp.Metadata.CompressionDegraded)
	assert.Len(t, resp.History, 10, "history bounded to the recent pairs")
	assert.Len(t, h, 24, "input history stays intact")
	assert.Equal(t, []string{events.TypeQueryProcessed, events.TypeQueryDegraded}, pub.types())
}
