package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role     string // "user", "assistant", "system"
	Content  string
	ImageURL string // optional data URI (data:image/jpeg;base64,...) for vision models
}

// HasImage reports whether the message carries an image part.
func (m Message) HasImage() bool {
	return m.ImageURL != ""
}

// Result is the provider response: generated text plus usage accounting.
type Result struct {
	Content    string
	Model      string
	TokensUsed int
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	NoTimeout   bool   // Disable the transport timeout (vision calls)
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithoutTimeout removes the transport timeout ceiling for this call.
// Multimodal chart analysis is allowed unbounded wall-clock time; only
// caller-side ctx cancellation can abort it.
func WithoutTimeout() Option {
	return func(o *Options) {
		o.NoTimeout = true
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (*Result, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (*Result, error)
}

// HealthStatus reports reachability of a provider endpoint.
type HealthStatus struct {
	Healthy         bool
	ModelsAvailable int
	Message         string
}

// HealthChecker is implemented by providers that expose a health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) *HealthStatus
	Models(ctx context.Context) ([]string, error)
}
