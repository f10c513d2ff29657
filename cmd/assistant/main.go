package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"f1-assistant-be/internal/bootstrap"
	"f1-assistant-be/internal/config"
	"f1-assistant-be/internal/dto"
	"f1-assistant-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	// 3. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 4. Interactive loop
	health := container.AssistantService.Health(context.Background())
	fmt.Printf("LLM backend: %s (%s)\n", health.Status, health.Message)
	fmt.Println("Type a query and press enter. Ctrl+D to exit.")

	history := []dto.ChatMessageDTO{}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		resp, err := container.AssistantService.ProcessQuery(context.Background(), &dto.ProcessQueryRequest{
			Text:        text,
			History:     history,
			Temperature: 0.7,
			MaxTokens:   1000,
		})
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}

		history = resp.History
		fmt.Printf("\n[%s via %s]\n%s\n\n", resp.Category, resp.Handler, resp.Response)

		meta, _ := json.Marshal(resp.Metadata)
		fmt.Printf("meta: %s\n", meta)
	}
}
