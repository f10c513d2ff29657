package handler

import (
	"context"
	"log"
	"strings"
	"testing"

	"f1-assistant-be/pkg/assistant"
	"f1-assistant-be/pkg/assistant/vision"
	"f1-assistant-be/pkg/llm"
)

type stubProvider struct {
	responses []string
	calls     int
}

func (p *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	p.calls++
	idx := p.calls - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return &llm.Result{Content: p.responses[idx], Model: "test-model", TokensUsed: 30}, nil
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Result, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func testRegistry(provider llm.LLMProvider) Registry {
	pipeline := vision.NewPipeline(provider, log.Default())
	return NewRegistry(provider, pipeline, log.Default())
}

func TestRegistryIsTotal(t *testing.T) {
	r := testRegistry(&stubProvider{responses: []string{"ok"}})
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, c := range assistant.Categories() {
		h, err := r.Resolve(c)
		if err != nil {
			t.Errorf("Resolve(%s) error = %v", c, err)
		}
		if h == nil {
			t.Errorf("Resolve(%s) returned nil handler", c)
		}
	}
}

func TestRegistryValidateRejectsMissingHandler(t *testing.T) {
	r := testRegistry(&stubProvider{responses: []string{"ok"}})
	delete(r, assistant.CategoryReport)
	if err := r.Validate(); err == nil {
		t.Fatalf("Validate() error = nil, want missing handler error")
	}
}

func TestDownloadHandlerNeverCallsLLM(t *testing.T) {
	h := NewDownloadHandler(log.Default())

	out, err := h.Handle(context.Background(), &Input{
		Text: "Download the lap data as CSV",
		Context: &assistant.SessionContext{
			Year: 2024, EventName: "Monaco Grand Prix", SessionType: "Q",
			DriverCodes: []string{"VER", "LEC"},
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if out.UsedImage {
		t.Errorf("UsedImage = true, want false")
	}
	if out.TokensUsed != 0 {
		t.Errorf("TokensUsed = %d, want 0 (no inference)", out.TokensUsed)
	}
	if !strings.Contains(out.Answer, "CSV") {
		t.Errorf("Answer does not mention the requested format: %q", out.Answer)
	}
	if !strings.Contains(out.Answer, "VER, LEC") {
		t.Errorf("Answer does not mention the session drivers: %q", out.Answer)
	}
}

func TestDownloadHandlerFormatDetection(t *testing.T) {
	h := NewDownloadHandler(log.Default())
	sc := &assistant.SessionContext{Year: 2024, EventName: "Monza"}

	tests := []struct {
		text string
		want string
	}{
		{text: "export as json please", want: "JSON"},
		{text: "give me an excel file", want: "EXCEL"},
		{text: "download the data", want: "CSV"},
	}
	for _, tt := range tests {
		out, err := h.Handle(context.Background(), &Input{Text: tt.text, Context: sc})
		if err != nil {
			t.Fatalf("Handle(%q) error = %v", tt.text, err)
		}
		if !strings.Contains(out.Answer, tt.want) {
			t.Errorf("Handle(%q) answer = %q, want format %s", tt.text, out.Answer, tt.want)
		}
	}
}

func TestDownloadHandlerWithoutContext(t *testing.T) {
	h := NewDownloadHandler(log.Default())
	out, err := h.Handle(context.Background(), &Input{Text: "download the laps as csv"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(out.Answer, "don't have any data to export") {
		t.Errorf("Answer = %q, want no-data explanation", out.Answer)
	}
}

func TestReportHandlerEmptyHistory(t *testing.T) {
	provider := &stubProvider{responses: []string{"should not be called"}}
	h := NewReportHandler(provider, log.Default())

	out, err := h.Handle(context.Background(), &Input{Text: "generate a report", MaxTokens: 1000})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0 for empty history", provider.calls)
	}
	if !strings.Contains(out.Answer, "conversation history") {
		t.Errorf("Answer = %q, want no-history explanation", out.Answer)
	}
}

func TestReportHandlerGeneratesFromHistory(t *testing.T) {
	provider := &stubProvider{responses: []string{"## Executive Summary\nshort report"}}
	h := NewReportHandler(provider, log.Default())

	out, err := h.Handle(context.Background(), &Input{
		Text:      "generate a report",
		MaxTokens: 1000,
		History: assistant.History{
			{Role: assistant.RoleUser, Content: "compare VER and LEC"},
			{Role: assistant.RoleAssistant, Content: "VER was faster in S3"},
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if out.Answer != "## Executive Summary\nshort report" {
		t.Errorf("Answer = %q", out.Answer)
	}
}

func TestReportHandlerRequestsShorterSynthesis(t *testing.T) {
	// First answer fills the whole token budget, so the handler must ask
	// for a shorter rewrite exactly once.
	long := strings.Repeat("data ", 150) // ~187 estimated tokens
	provider := &stubProvider{responses: []string{long, "short version"}}
	h := NewReportHandler(provider, log.Default())

	out, err := h.Handle(context.Background(), &Input{
		Text:      "generate a report",
		MaxTokens: 100,
		History: assistant.History{
			{Role: assistant.RoleUser, Content: "q"},
			{Role: assistant.RoleAssistant, Content: "a"},
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", provider.calls)
	}
	if out.Answer != "short version" {
		t.Errorf("Answer = %q, want the rewritten report", out.Answer)
	}
	if out.TokensUsed != 60 {
		t.Errorf("TokensUsed = %d, want combined usage of both calls", out.TokensUsed)
	}
}

func TestBasicHandlerSkipsContextInjection(t *testing.T) {
	provider := &capturingProvider{}
	h := NewBasicHandler(provider, log.Default())

	_, err := h.Handle(context.Background(), &Input{
		Text:        "What is DRS?",
		Context:     &assistant.SessionContext{Year: 2024, EventName: "Monaco Grand Prix"},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if strings.Contains(provider.lastMessages[0].Content, "Session Context") {
		t.Errorf("basic handler injected session context into the system prompt")
	}
}

func TestTechnicalHandlerInjectsContext(t *testing.T) {
	provider := &capturingProvider{}
	pipeline := vision.NewPipeline(provider, log.Default())
	h := NewTechnicalHandler(pipeline, log.Default())

	_, err := h.Handle(context.Background(), &Input{
		Text:        "analyze the throttle trace",
		Context:     &assistant.SessionContext{Year: 2024, EventName: "Monaco Grand Prix"},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	system := provider.lastMessages[0].Content
	if !strings.Contains(system, "Current F1 Session Context") {
		t.Errorf("system prompt missing context block:\n%s", system)
	}
	if !strings.Contains(system, "Monaco Grand Prix") {
		t.Errorf("system prompt missing event name")
	}
}

// capturingProvider records the last message list it was sent.
type capturingProvider struct {
	lastMessages []llm.Message
}

func (p *capturingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Result, error) {
	p.lastMessages = history
	return &llm.Result{Content: "answer", Model: "test-model", TokensUsed: 5}, nil
}

func (p *capturingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Result, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
