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

	// OpenAI-compatible model endpoints. Embedding and completion may live on
	// different providers, so each carries its own key and base URL.
	EmbeddingAPIKey    string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	LLMAPIKey          string
	LLMBaseURL         string
	ChatModelName      string

	// Drug label lookup API.
	LabelAPIBaseURL string

	// Retrieval pipeline tuning.
	ChunkSize        int
	ChunkOverlap     int
	RetrievalTopK    int
	EmbedConcurrency int

	// Optional external vector index. When PINECONE_API_KEY is empty the
	// server runs with the in-process index.
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	Environment string
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
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "medlabel.db"),
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		ChatModelName:      getEnv("CHAT_MODEL_NAME", "gpt-4o-mini"),
		LabelAPIBaseURL:    getEnv("LABEL_API_BASE_URL", "https://api.fda.gov"),
		ChunkSize:          getEnvAsInt("CHUNK_SIZE", 1000),
		ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 20),
		RetrievalTopK:      getEnvAsInt("RAG_TOPK", 4),
		EmbedConcurrency:   getEnvAsInt("EMBED_CONCURRENCY", 4),
		PineconeAPIKey:     getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost:  getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace:  getEnv("PINECONE_NAMESPACE", "drug-labels"),
		Environment:        env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.EmbeddingAPIKey == "" {
			missing = append(missing, "EMBEDDING_API_KEY")
		}
		if cfg.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if cfg.PineconeAPIKey != "" && cfg.PineconeIndexHost == "" {
			missing = append(missing, "PINECONE_INDEX_HOST")
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
