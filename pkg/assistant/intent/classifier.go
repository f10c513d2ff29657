package intent

import (
	"context"
	"log"
	"strings"
	"time"

	"f1-assistant-be/pkg/assistant"
	"f1-assistant-be/pkg/llm"

	gocache "github.com/patrickmn/go-cache"
)

const classifierSystemPrompt = `You are a query classifier for an F1 telemetry assistant.
Classify the user query into exactly one of these categories:

BASIC_QUERY: general F1 concepts, rules, terminology, history
TECHNICAL_QUERY: telemetry data, performance metrics, setup analysis
COMPARISON_QUERY: comparing drivers, laps, sessions or cars
REPORT_REQUEST: generating a report or summary of the conversation
DOWNLOAD_REQUEST: exporting or downloading data (CSV, JSON, Excel)

Return ONLY the category name, nothing else.`

// Keywords holds the fallback keyword tables, scanned in fixed priority
// order: download, report, comparison, technical. The tables are
// configurable; these checks run over lower-cased query text.
type Keywords struct {
	Download   []string
	Report     []string
	Comparison []string
	Technical  []string
}

// DefaultKeywords returns the stock tables.
func DefaultKeywords() Keywords {
	return Keywords{
		Download:   []string{"download", "export", "csv", "json", "excel", "xlsx"},
		Report:     []string{"report", "summary", "summarize", "document", "pdf"},
		Comparison: []string{"compare", "versus", " vs", "difference between", "delta"},
		Technical: []string{
			"telemetry", "speed", "throttle", "brake", "rpm", "gear",
			"temperature", "tire", "tyre", "sector", "lap time", "data",
		},
	}
}

// Classifier performs LLM-based intent detection with a deterministic
// keyword fallback. Classify never fails: any inference error is downgraded
// to the fallback path.
type Classifier struct {
	llmProvider llm.LLMProvider
	keywords    Keywords
	cache       *gocache.Cache
	logger      *log.Logger
	temperature float64
	maxTokens   int
}

// NewClassifier creates a new classifier. A zero cacheTTL disables the
// result cache; caching is sound because classification is idempotent for
// fixed input.
func NewClassifier(llmProvider llm.LLMProvider, keywords Keywords, cacheTTL time.Duration, logger *log.Logger) *Classifier {
	var cache *gocache.Cache
	if cacheTTL > 0 {
		cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &Classifier{
		llmProvider: llmProvider,
		keywords:    keywords,
		cache:       cache,
		logger:      logger,
		temperature: 0.1, // low temperature for consistent classification
		maxTokens:   50,  // short response expected
	}
}

// Classify maps free text to a category. The LLM path is primary; its raw
// output is untrusted and must parse to an exact category token, otherwise
// the keyword fallback decides.
func (c *Classifier) Classify(ctx context.Context, text string) *assistant.Classification {
	cacheKey := strings.ToLower(strings.TrimSpace(text))
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			result := cached.(assistant.Classification)
			return &result
		}
	}

	result := c.classify(ctx, text)

	if c.cache != nil {
		c.cache.SetDefault(cacheKey, *result)
	}
	return result
}

func (c *Classifier) classify(ctx context.Context, text string) *assistant.Classification {
	if c.llmProvider == nil {
		return c.fallbackClassify(text, "")
	}

	messages := []llm.Message{
		{Role: "system", Content: classifierSystemPrompt},
		{Role: "user", Content: "Classify this query: " + text},
	}

	result, err := c.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(c.temperature),
		llm.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		c.logger.Printf("[CLASSIFIER] LLM classification failed, using fallback: %v", err)
		return c.fallbackClassify(text, "")
	}

	category, ok := assistant.ParseCategory(result.Content)
	if !ok {
		c.logger.Printf("[CLASSIFIER] Unparsable classification %q, using fallback", truncateLog(result.Content, 80))
		return c.fallbackClassify(text, result.Content)
	}

	c.logger.Printf("[CLASSIFIER] Query classified as: %s", category)
	return &assistant.Classification{
		Category:       category,
		Method:         assistant.MethodLLM,
		RawModelOutput: result.Content,
	}
}

// fallbackClassify is the deterministic keyword scan. Priority order is
// fixed so a text matching multiple tables always resolves the same way.
// It cannot fail: the default is BASIC_QUERY.
func (c *Classifier) fallbackClassify(text, rawOutput string) *assistant.Classification {
	lower := strings.ToLower(text)

	category := assistant.CategoryBasic
	switch {
	case containsAny(lower, c.keywords.Download):
		category = assistant.CategoryDownload
	case containsAny(lower, c.keywords.Report):
		category = assistant.CategoryReport
	case containsAny(lower, c.keywords.Comparison):
		category = assistant.CategoryComparison
	case containsAny(lower, c.keywords.Technical):
		category = assistant.CategoryTechnical
	}

	c.logger.Printf("[CLASSIFIER] Fallback classified as %s", category)
	return &assistant.Classification{
		Category:       category,
		Method:         assistant.MethodFallback,
		RawModelOutput: rawOutput,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// truncateLog truncates string for logging
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
