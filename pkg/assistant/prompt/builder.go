package prompt

import (
	"fmt"
	"strings"

	"f1-assistant-be/pkg/assistant"
	"f1-assistant-be/pkg/llm"
)

// WithSessionContext appends the structured session metadata block to a
// system prompt. Only populated fields are written.
func WithSessionContext(systemPrompt string, sc *assistant.SessionContext) string {
	if sc.IsZero() {
		return systemPrompt
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nCurrent F1 Session Context:\n")
	if sc.Year != 0 {
		b.WriteString(fmt.Sprintf("Year: %d\n", sc.Year))
	}
	if sc.EventName != "" {
		b.WriteString(fmt.Sprintf("Grand Prix: %s\n", sc.EventName))
	}
	if sc.SessionType != "" {
		b.WriteString(fmt.Sprintf("Session: %s\n", sc.SessionType))
	}
	if len(sc.DriverCodes) > 0 {
		b.WriteString(fmt.Sprintf("Drivers: %s\n", strings.Join(sc.DriverCodes, ", ")))
	}
	return b.String()
}

// BuildMessages assembles the outbound message list: system prompt, prior
// conversation, then the current user turn with its optional image.
func BuildMessages(systemPrompt string, history assistant.History, userText, imageURL string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})

	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		messages = append(messages, llm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	messages = append(messages, llm.Message{
		Role:     "user",
		Content:  userText,
		ImageURL: imageURL,
	})
	return messages
}

// BuildReportPrompt renders the conversation transcript and session context
// into a single report-generation request.
func BuildReportPrompt(userRequest string, history assistant.History, sc *assistant.SessionContext) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("User Request: %s\n\n", userRequest))
	b.WriteString("Please generate a professional report summarizing the following conversation:\n\n")

	if !sc.IsZero() {
		b.WriteString("## Session Context\n")
		if sc.Year != 0 {
			b.WriteString(fmt.Sprintf("- Year: %d\n", sc.Year))
		}
		if sc.EventName != "" {
			b.WriteString(fmt.Sprintf("- Grand Prix: %s\n", sc.EventName))
		}
		if sc.SessionType != "" {
			b.WriteString(fmt.Sprintf("- Session: %s\n", sc.SessionType))
		}
		if len(sc.DriverCodes) > 0 {
			b.WriteString(fmt.Sprintf("- Drivers: %s\n", strings.Join(sc.DriverCodes, ", ")))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Conversation History\n\n")
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("**%s**: %s\n\n", capitalize(string(msg.Role)), msg.Content))
	}

	b.WriteString("\n---\n\n")
	b.WriteString("Generate a comprehensive report following the standard report structure.")
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
