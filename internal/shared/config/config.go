package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"

	EventsNone = "none"
	EventsSQS  = "sqs"
	EventsAMQP = "amqp"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	LLM LLMConfig

	DatabaseURL string

	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	DiagnosticsArchive bool

	EventsBackend string
	SQSQueueURL   string
	AMQPURL       string
	AMQPExchange  string

	SessionTTL           time.Duration
	EnhanceRatePerMinute int
	EnhanceBurst         int
}

// LLMConfig parameterises the enhancement provider.
type LLMConfig struct {
	Provider      string
	Model         string
	BaseURL       string
	APIKeyEnv     string
	Timeout       time.Duration
	Temperature   float32
	TopP          float32
	MaxTokens     int
	PromptVersion string
	SystemPrompt  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is not set; enhancement runs are kept in memory")
	}

	return Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  env,
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		LLM:                  loadLLM(),
		DatabaseURL:          dbURL,
		ObjectStoreType:      normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:        getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:          getEnv("SSE_KMS_KEY_ID", ""),
		DiagnosticsArchive:   getBool("DIAGNOSTICS_ARCHIVE", false),
		EventsBackend:        normalizeEvents(getEnv("EVENTS_BACKEND", EventsNone)),
		SQSQueueURL:          getEnv("SQS_QUEUE_URL", ""),
		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "resume.enhancements"),
		SessionTTL:           getDuration("SESSION_TTL", 2*time.Hour),
		EnhanceRatePerMinute: getInt("ENHANCE_RATE_PER_MINUTE", 10),
		EnhanceBurst:         getInt("ENHANCE_BURST", 3),
	}
}

func loadLLM() LLMConfig {
	provider := normalizeProvider(getEnv("LLM_PROVIDER", ProviderDeepSeek))
	cfg := LLMConfig{
		Provider:      provider,
		Model:         getEnv("LLM_MODEL", defaultModel(provider)),
		BaseURL:       getEnv("LLM_BASE_URL", ""),
		APIKeyEnv:     getEnv("LLM_API_KEY_ENV", defaultAPIKeyEnv(provider)),
		Timeout:       time.Duration(getInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		Temperature:   getFloat32("LLM_TEMPERATURE", 0.3),
		TopP:          getFloat32("LLM_TOP_P", 0.95),
		MaxTokens:     getInt("LLM_MAX_TOKENS", 4000),
		PromptVersion: getEnv("LLM_PROMPT_VERSION", "v1"),
	}
	if path := strings.TrimSpace(os.Getenv("LLM_SYSTEM_PROMPT_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("LLM_SYSTEM_PROMPT_FILE unreadable, using built-in prompt: %v", err)
		} else {
			cfg.SystemPrompt = strings.TrimSpace(string(data))
		}
	}
	return cfg
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "deepseek-chat"
	}
}

func defaultAPIKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "DEEPSEEK_API_KEY"
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return parsed
}

func getFloat32(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 32)
	if err != nil || parsed < 0 {
		log.Printf("invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return float32(parsed)
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		log.Printf("invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderGemini, "google":
		return ProviderGemini
	default:
		return ProviderDeepSeek
	}
}

func normalizeEvents(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case EventsSQS:
		return EventsSQS
	case EventsAMQP, "rabbitmq":
		return EventsAMQP
	default:
		return EventsNone
	}
}
