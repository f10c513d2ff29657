package main

import (
	"context"
	"fmt"
	"log"

	"f1-assistant-be/internal/bootstrap"
	"f1-assistant-be/internal/config"
	"f1-assistant-be/internal/dto"
)

// End-to-end flow simulation against a live LLM backend. Exercises every
// handler once, including the no-inference download path and the empty
// history report short-circuit.
func main() {
	fmt.Println("=== SIMULATION: FULL QUERY FLOW ===")

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	sessionCtx := &dto.SessionContextDTO{
		Year:        2024,
		EventName:   "Monaco Grand Prix",
		SessionType: "Q",
		DriverCodes: []string{"VER", "LEC"},
	}

	scenarios := []struct {
		name    string
		request dto.ProcessQueryRequest
	}{
		{
			name: "basic concept question",
			request: dto.ProcessQueryRequest{
				Text:        "What is DRS and when can drivers use it?",
				Temperature: 0.7,
				MaxTokens:   500,
			},
		},
		{
			name: "technical with session context",
			request: dto.ProcessQueryRequest{
				Text:        "How does throttle application in sector 3 affect lap time here?",
				Context:     sessionCtx,
				Temperature: 0.7,
				MaxTokens:   800,
			},
		},
		{
			name: "driver comparison",
			request: dto.ProcessQueryRequest{
				Text:        "Compare VER and LEC qualifying pace",
				Context:     sessionCtx,
				Temperature: 0.7,
				MaxTokens:   800,
			},
		},
		{
			name: "report without history",
			request: dto.ProcessQueryRequest{
				Text:        "Generate a session report",
				Temperature: 0.5,
				MaxTokens:   2000,
			},
		},
		{
			name: "download request (no inference)",
			request: dto.ProcessQueryRequest{
				Text:        "Download the lap data as CSV",
				Context:     sessionCtx,
				Temperature: 0.7,
				MaxTokens:   500,
			},
		},
	}

	history := []dto.ChatMessageDTO{}
	for _, sc := range scenarios {
		fmt.Printf("\n--- %s ---\n", sc.name)
		sc.request.History = history

		resp, err := container.AssistantService.ProcessQuery(context.Background(), &sc.request)
		if err != nil {
			log.Printf("FAILED: %v", err)
			continue
		}

		history = resp.History
		fmt.Printf("category=%s handler=%s method=%s tokens=%d elapsed=%.0fms\n",
			resp.Category, resp.Handler, resp.Metadata.ClassifierMethod,
			resp.Metadata.TokensUsed, resp.Metadata.ProcessingTimeMs)
		fmt.Println(resp.Response)
	}

	fmt.Printf("\nFinal history length: %d messages\n", len(history))
}
