package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"f1-assistant-be/pkg/assistant/intent"
	"f1-assistant-be/pkg/llm/lmstudio"
)

// Live classification check against a running LM Studio server.
// Falls back to keyword matching when the server is down, which is
// also useful to eyeball: the fallback ordering is visible in the
// "method" column.
func main() {
	fmt.Println("=== LIVE TEST: QUERY CLASSIFICATION ===")

	llmProvider := lmstudio.NewLMStudioProvider("http://localhost:1234", "qwen2-vl-7b-instruct", 60*time.Second)
	classifier := intent.NewClassifier(llmProvider, intent.DefaultKeywords(), 0, log.Default())

	testQueries := []string{
		"What is DRS?",
		"Compare Hamilton vs Verstappen lap times",
		"Show me the throttle trace for lap 23",
		"Generate a session report for qualifying",
		"Download the lap data as CSV",
		"compare and download the laps as csv",
		"who won the 2021 championship",
	}

	for _, query := range testQueries {
		start := time.Now()
		result := classifier.Classify(context.Background(), query)
		fmt.Printf("%-50q -> %-18s (method=%s, %s)\n",
			query, result.Category, result.Method, time.Since(start).Round(time.Millisecond))
	}
}
