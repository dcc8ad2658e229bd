// Package config reads settings from the environment and optional
// .env.local / .env files.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StorageS3    = "s3"
	StorageLocal = "local"
)

type Config struct {
	DatabaseURL string

	// object storage
	StorageBackend  string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3UseSSL        bool
	LocalStorageDir string

	// cross-run hash cache, optional
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PushgatewayURL string

	// embeddings
	EmbeddingProvider    string
	OpenAIKey            string
	OpenAIEmbeddingModel string
	GoogleAPIKey         string
	GeminiEmbeddingModel string
	GeminiModel          string
	EmbeddingDimensions  int

	LogLevel  string
	RenderDPI int
}

// Load reads .env.local then .env, never overriding variables already set,
// and builds a Config from the environment.
func Load() *Config {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),

		StorageBackend:  getEnv("STORAGE_BACKEND", StorageS3),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Bucket:        getEnv("S3_BUCKET", "source-images"),
		S3UseSSL:        getEnvBool("S3_USE_SSL", true),
		LocalStorageDir: getEnv("LOCAL_STORAGE_DIR", "source-images"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),

		EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "openai"),
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		GoogleAPIKey:         getEnv("GOOGLE_API_KEY", ""),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		EmbeddingDimensions:  getEnvInt("EMBEDDING_DIMENSIONS", 1536),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		RenderDPI: getEnvInt("RENDER_DPI", 200),
	}
}

func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func (c *Config) RequireStorage() error {
	switch c.StorageBackend {
	case StorageS3:
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return errors.New("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required for the s3 storage backend")
		}
	case StorageLocal:
		if c.LocalStorageDir == "" {
			return errors.New("LOCAL_STORAGE_DIR is required for the local storage backend")
		}
	default:
		return errors.New("STORAGE_BACKEND must be s3 or local")
	}
	return nil
}

// EmbeddingKey returns the API key of the configured provider.
func (c *Config) EmbeddingKey() string {
	if c.EmbeddingProvider == "gemini" {
		return c.GoogleAPIKey
	}
	return c.OpenAIKey
}

func (c *Config) EmbeddingModel() string {
	if c.EmbeddingProvider == "gemini" {
		return c.GeminiEmbeddingModel
	}
	return c.OpenAIEmbeddingModel
}

func (c *Config) RequireEmbeddings() error {
	switch c.EmbeddingProvider {
	case "openai":
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required for embedding generation")
		}
	case "gemini":
		if c.GoogleAPIKey == "" {
			return errors.New("GOOGLE_API_KEY is required for embedding generation")
		}
	default:
		return errors.New("EMBEDDING_PROVIDER must be openai or gemini")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
