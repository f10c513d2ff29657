package lmstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"f1-assistant-be/pkg/llm"
)

// LMStudioProvider speaks the OpenAI-compatible chat completions API that
// LM Studio exposes, including multimodal image_url parts for vision models.
type LMStudioProvider struct {
	BaseURL   string
	ModelName string

	// Client is used for bounded calls; unboundedClient has no timeout and
	// serves vision requests (llm.WithoutTimeout).
	Client          *http.Client
	unboundedClient *http.Client
}

var _ llm.LLMProvider = &LMStudioProvider{}
var _ llm.HealthChecker = &LMStudioProvider{}

func NewLMStudioProvider(baseURL, modelName string, timeout time.Duration) *LMStudioProvider {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &LMStudioProvider{
		BaseURL:         baseURL,
		ModelName:       modelName,
		Client:          &http.Client{Timeout: timeout},
		unboundedClient: &http.Client{},
	}
}

// --- Request/Response structs (OpenAI compatible, internal to this package) ---

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []contentPart
}

type contentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"` // data:image/jpeg;base64,...
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// --- Interface Implementation ---

func (p *LMStudioProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Result, error) {
	options := &llm.Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}

	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		if msg.HasImage() {
			// Multimodal message for vision models (OpenAI Vision API format)
			messages[i] = chatMessage{
				Role: role,
				Content: []contentPart{
					{Type: "text", Text: msg.Content},
					{Type: "image_url", ImageURL: &imageURL{URL: msg.ImageURL}},
				},
			}
		} else {
			messages[i] = chatMessage{Role: role, Content: msg.Content}
		}
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
		Stream:      false,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := p.Client
	if options.NoTimeout {
		client = p.unboundedClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lmstudio request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("lmstudio endpoint not found: start the server in LM Studio (Developer > Start Server)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lmstudio error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("lmstudio api returned error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices from lmstudio api")
	}

	return &llm.Result{
		Content:    chatResp.Choices[0].Message.Content,
		Model:      chatResp.Model,
		TokensUsed: chatResp.Usage.TotalTokens,
	}, nil
}

func (p *LMStudioProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Result, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// Health checks whether the LM Studio server is reachable and reports how
// many models are loaded.
func (p *LMStudioProvider) Health(ctx context.Context) *llm.HealthStatus {
	models, err := p.Models(ctx)
	if err != nil {
		return &llm.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("cannot reach LM Studio: %v", err),
		}
	}
	return &llm.HealthStatus{
		Healthy:         true,
		ModelsAvailable: len(models),
		Message:         "LM Studio is running",
	}
}

// Models lists the model IDs currently loaded on the server.
func (p *LMStudioProvider) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+"/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lmstudio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lmstudio models: status %d", resp.StatusCode)
	}

	var modelsResp modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("unmarshal models response: %w", err)
	}

	ids := make([]string, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
