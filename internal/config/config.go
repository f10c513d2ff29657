package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Ai     AIConfig
	Engine EngineConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	EventTopic  string
}

type AIConfig struct {
	LLMProvider    string // "lmstudio" or "ollama"
	LLMModel       string // e.g. "qwen2-vl-7b-instruct"
	LLMBaseURL     string
	TimeoutSeconds int // bounded calls only; the vision path has no ceiling
}

// EngineConfig carries the query engine knobs. It is passed into the
// router at construction so tests can vary values per case.
type EngineConfig struct {
	MaxInteractions       int
	MaxImageSizeMB        float64
	ClassifierCacheTTLSec int // 0 disables the classification cache
	DownloadKeywords      []string
	ReportKeywords        []string
	ComparisonKeywords    []string
	TechnicalKeywords     []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "app.log"),
			EventTopic:  getEnv("QUERY_EVENT_TOPIC_NAME", "QUERY_EVENTS"),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "lmstudio"),
			LLMModel:       getEnv("LLM_MODEL", ""),
			LLMBaseURL:     getEnv("LLM_BASE_URL", "http://localhost:1234"),
			TimeoutSeconds: getEnvAsInt("LLM_TIMEOUT_SECONDS", 120),
		},
		Engine: EngineConfig{
			MaxInteractions:       getEnvAsInt("MAX_INTERACTIONS", 5),
			MaxImageSizeMB:        getEnvAsFloat("MAX_IMAGE_SIZE_MB", 5.0),
			ClassifierCacheTTLSec: getEnvAsInt("CLASSIFIER_CACHE_TTL_SECONDS", 300),
			DownloadKeywords:      getEnvAsList("KEYWORDS_DOWNLOAD", nil),
			ReportKeywords:        getEnvAsList("KEYWORDS_REPORT", nil),
			ComparisonKeywords:    getEnvAsList("KEYWORDS_COMPARISON", nil),
			TechnicalKeywords:     getEnvAsList("KEYWORDS_TECHNICAL", nil),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList parses a comma-separated env value; fallback when unset.
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
