package handler

import (
	"context"
	"fmt"

	"f1-assistant-be/pkg/assistant"
)

// Input is the payload every handler receives from the router. History has
// already been compressed and the request validated.
type Input struct {
	Text        string
	Image       string // data URI, empty when absent
	History     assistant.History
	Context     *assistant.SessionContext
	Model       string
	Temperature float64
	MaxTokens   int
}

// Outcome is the handler result consumed by the router.
type Outcome struct {
	Answer        string
	Model         string
	TokensUsed    int
	UsedImage     bool
	ImageDegraded bool
}

// Handler is the per-category strategy: build the category prompt, obtain
// an answer from the inference endpoint.
type Handler interface {
	Name() string
	Handle(ctx context.Context, in *Input) (*Outcome, error)
}

// Registry is the closed category-to-handler mapping.
type Registry map[assistant.Category]Handler

// Validate checks that the mapping is total: every category resolves to
// exactly one non-nil handler.
func (r Registry) Validate() error {
	for _, c := range assistant.Categories() {
		h, ok := r[c]
		if !ok || h == nil {
			return fmt.Errorf("no handler registered for category %s", c)
		}
	}
	return nil
}

// Resolve returns the handler for a category.
func (r Registry) Resolve(c assistant.Category) (Handler, error) {
	h, ok := r[c]
	if !ok || h == nil {
		return nil, fmt.Errorf("no handler registered for category %s", c)
	}
	return h, nil
}
