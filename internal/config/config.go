// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabasePath string
	JWTSecretKey string
	Environment  string

	// LLM gateway
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	LLMTimeoutSeconds int
	LLMMaxRetries     int
	LLMBackoffBaseMS  int

	// Chat orchestration
	ChatHistoryDepth      int
	ContextCapPerCategory int
	MaxMessageLength      int
	FallbackReply         string

	// Pagination
	HistoryPageDefault       int
	HistoryPageMax           int
	ConversationsPageDefault int
	ConversationsPageMax     int
}

// Load reads configuration from environment variables or a .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "advisor.db"),
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		Environment:  env,

		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSeconds: getEnvAsInt("LLM_TIMEOUT_SECONDS", 10),
		LLMMaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 3),
		LLMBackoffBaseMS:  getEnvAsInt("LLM_BACKOFF_BASE_MS", 1000),

		ChatHistoryDepth:      getEnvAsInt("CHAT_HISTORY_DEPTH", 10),
		ContextCapPerCategory: getEnvAsInt("CONTEXT_CAP_PER_CATEGORY", 5),
		MaxMessageLength:      getEnvAsInt("MAX_MESSAGE_LENGTH", 500),
		FallbackReply:         getEnv("CHAT_FALLBACK_REPLY", ""),

		HistoryPageDefault:       getEnvAsInt("HISTORY_PAGE_DEFAULT", 20),
		HistoryPageMax:           getEnvAsInt("HISTORY_PAGE_MAX", 50),
		ConversationsPageDefault: getEnvAsInt("CONVERSATIONS_PAGE_DEFAULT", 10),
		ConversationsPageMax:     getEnvAsInt("CONVERSATIONS_PAGE_MAX", 50),
	}

	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
