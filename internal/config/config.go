package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every configuration section of the service.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	RAG     RAGConfig
	Cache   CacheConfig
	Session SessionConfig
	Log     LogConfig
}

// Load reads all sections from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	rag, err := loadRAGConfig()
	if err != nil {
		return nil, err
	}

	cache, err := loadCacheConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		RAG:     rag,
		Cache:   cache,
		Session: session,
		Log:     loadLogConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	if strings.Contains(port, ":") {
		// Accept ":8000" or "127.0.0.1:8000" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model used for routing and response generation.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: set ARK_API_KEY (or AK/SK pair) and ARK_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// RAGConfig describes the retrieval backend and its embedding endpoint.
type RAGConfig struct {
	DatabaseURL    string
	EmbeddingURL   string
	EmbeddingModel string
	TopK           int
}

// Enabled reports whether a retrieval database is configured.
func (c RAGConfig) Enabled() bool {
	return c.DatabaseURL != ""
}

func loadRAGConfig() (RAGConfig, error) {
	topK := 3
	if override, err := parseOptionalIntEnv("RAG_TOP_K"); err != nil {
		return RAGConfig{}, err
	} else if override != nil && *override > 0 {
		topK = *override
	}

	return RAGConfig{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		EmbeddingURL:   strings.TrimSpace(os.Getenv("EMBEDDING_BASE_URL")),
		EmbeddingModel: strings.TrimSpace(os.Getenv("EMBEDDING_MODEL")),
		TopK:           topK,
	}, nil
}

// CacheConfig controls the blocking endpoint's response cache.
type CacheConfig struct {
	TTL time.Duration
}

func loadCacheConfig() (CacheConfig, error) {
	ttl := 60 * time.Second
	if override, err := parseOptionalIntEnv("RESPONSE_CACHE_TTL_SECONDS"); err != nil {
		return CacheConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return CacheConfig{}, fmt.Errorf("RESPONSE_CACHE_TTL_SECONDS must be >= 0")
		}
		ttl = time.Duration(*override) * time.Second
	}
	return CacheConfig{TTL: ttl}, nil
}

// SessionConfig bounds the in-memory session store.
type SessionConfig struct {
	Capacity int
}

func loadSessionConfig() (SessionConfig, error) {
	capacity := 1000
	if override, err := parseOptionalIntEnv("SESSION_CAPACITY"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SessionConfig{}, fmt.Errorf("SESSION_CAPACITY must be >= 1")
		}
		capacity = *override
	}
	return SessionConfig{Capacity: capacity}, nil
}

// LogConfig controls logger output.
type LogConfig struct {
	FilePath string
	Prod     bool
}

func loadLogConfig() LogConfig {
	return LogConfig{
		FilePath: strings.TrimSpace(os.Getenv("LOG_FILE")),
		Prod:     strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production"),
	}
}

func getEnvOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return &value, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return &value, nil
}
