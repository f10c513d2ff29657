package assistant

import (
	"strings"
	"time"
)

// Category is the closed set of query intents handled by the engine.
type Category string

const (
	CategoryBasic      Category = "BASIC_QUERY"
	CategoryTechnical  Category = "TECHNICAL_QUERY"
	CategoryComparison Category = "COMPARISON_QUERY"
	CategoryReport     Category = "REPORT_REQUEST"
	CategoryDownload   Category = "DOWNLOAD_REQUEST"
)

// Categories returns all valid categories. The handler registry is checked
// against this list at construction so every category stays routable.
func Categories() []Category {
	return []Category{
		CategoryBasic,
		CategoryTechnical,
		CategoryComparison,
		CategoryReport,
		CategoryDownload,
	}
}

// ParseCategory parses raw model output into a Category. The output is an
// untrusted string: only an exact token match (trimmed, case-insensitive)
// is accepted, never a partial match.
func ParseCategory(raw string) (Category, bool) {
	normalized := Category(strings.ToUpper(strings.TrimSpace(raw)))
	for _, c := range Categories() {
		if normalized == c {
			return c, true
		}
	}
	return "", false
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single immutable conversation turn. ImageURL, when set, is a
// self-describing data URI (data:image/jpeg;base64,...).
type Message struct {
	Role      Role
	Content   string
	ImageURL  string
	Timestamp time.Time
}

// History is an ordered conversation, oldest message first. The engine
// receives it by value and returns a possibly-compressed copy; it never
// retains a reference across calls.
type History []Message

// Pairs counts user/assistant message pairs. A leading synthetic summary
// message (role system) does not count toward the pair total.
func (h History) Pairs() int {
	n := 0
	for _, m := range h {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			n++
		}
	}
	return n / 2
}

// Clone returns an independent copy of the history.
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// SessionContext is structured session metadata injected into prompts.
// Read-only input, never mutated by the engine.
type SessionContext struct {
	Year        int
	EventName   string
	SessionType string
	DriverCodes []string
}

// IsZero reports whether no context field is populated.
func (c *SessionContext) IsZero() bool {
	if c == nil {
		return true
	}
	return c.Year == 0 && c.EventName == "" && c.SessionType == "" && len(c.DriverCodes) == 0
}

// ClassificationMethod records which path produced a classification.
type ClassificationMethod string

const (
	MethodLLM      ClassificationMethod = "llm"
	MethodFallback ClassificationMethod = "fallback"
)

// Classification is the result of intent detection for one query.
type Classification struct {
	Category       Category
	Method         ClassificationMethod
	RawModelOutput string
}

// Request is the single inbound payload of the engine.
type Request struct {
	Text        string
	Image       string // optional data URI
	History     History
	Context     *SessionContext
	Model       string // optional model override
	Temperature float64
	MaxTokens   int
}

// Metadata carries per-request observability fields.
type Metadata struct {
	RequestID           string
	ProcessingTimeMs    float64
	TokensUsed          int
	LLMModel            string
	ClassifierMethod    ClassificationMethod
	UsedImage           bool
	ImageDegraded       bool
	UsedContext         bool
	UsedHistory         bool
	CompressionDegraded bool
	Timestamp           time.Time
}

// Response is the engine output. History is the (possibly compressed)
// conversation the caller should carry into the next request.
type Response struct {
	Category    Category
	HandlerName string
	Answer      string
	History     History
	Metadata    Metadata
}
