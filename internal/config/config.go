// Package config centralises all environment configuration for the blog server.
// It should be imported only by the cmd packages (and test code). Business‑logic
// layers receive an already‑built Config instance via dependency‑injection.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Embedding providers.
const (
	EmbedderLocal  = "local"
	EmbedderVertex = "vertex"
)

// LLM providers.
const (
	LLMGemini = "gemini"
	LLMVertex = "vertex"
	LLMDummy  = "dummy"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple—prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string

	// Data stores
	StoreDriver string
	SQLitePath  string
	MongoURI    string
	DBName      string

	// Embedding cache; disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EmbedCacheTTL time.Duration

	// Retrieval
	Embedder         string
	VertexEmbedModel string
	EmbedTimeout     time.Duration
	RAGMinScore      float64

	// Generation
	LLMProvider  string
	LLMModel     string
	GeminiAPIKey string
	LLMTimeout   time.Duration

	// ProjectID and Location for Vertex AI.
	ProjectID       string
	Location        string
	CredentialsFile string

	// Sessions
	SessionTTL     time.Duration
	CookieSecure   bool
	ChatHistoryMax int

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// Missing variables required by the selected drivers are reported together.
func Load() (Config, error) {
	// godotenv.Load() is a no‑op if .env doesn't exist—safe in production.
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8000"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		SQLitePath:       getEnv("SQLITE_PATH", "blog.db"),
		MongoURI:         os.Getenv("MONGODB_URI"),
		DBName:           getEnv("MONGODB_DB", "blogsage"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getInt("REDIS_DB", 0),
		EmbedCacheTTL:    getDuration("EMBED_CACHE_TTL_SEC", 24*60*60),
		Embedder:         strings.ToLower(getEnv("EMBEDDER", EmbedderLocal)),
		VertexEmbedModel: getEnv("VERTEX_EMBED_MODEL", "text-embedding-005"),
		EmbedTimeout:     getDuration("EMBED_TIMEOUT_SEC", 20),
		RAGMinScore:      getFloat("RAG_MIN_SCORE", 0),
		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", LLMGemini)),
		LLMModel:         getEnv("LLM_MODEL", "gemini-2.0-flash-lite-001"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LLMTimeout:       getDuration("LLM_TIMEOUT_SEC", 30),
		ProjectID:        os.Getenv("GCP_PROJECT_ID"),
		Location:         getEnv("GCP_LOCATION", "us-central1"),
		CredentialsFile:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SessionTTL:       time.Duration(getInt("SESSION_HOURS", 24)) * time.Hour,
		CookieSecure:     getEnv("COOKIE_SECURE", "false") == "true",
		ChatHistoryMax:   getInt("CHAT_HISTORY_MAX", 50),
		ReadTimeout:      getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout:     getDuration("WRITE_TIMEOUT_SEC", 60),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	require := func(key, val string) {
		if val == "" {
			errs = append(errs, fmt.Errorf("env var %s is required", key))
		}
	}

	switch c.StoreDriver {
	case DriverSQLite:
		require("SQLITE_PATH", c.SQLitePath)
	case DriverMongo:
		require("MONGODB_URI", c.MongoURI)
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.Embedder {
	case EmbedderLocal:
	case EmbedderVertex:
		require("GCP_PROJECT_ID", c.ProjectID)
	default:
		errs = append(errs, fmt.Errorf("unsupported EMBEDDER %q", c.Embedder))
	}

	switch c.LLMProvider {
	case LLMDummy:
	case LLMGemini:
		require("GEMINI_API_KEY", c.GeminiAPIKey)
	case LLMVertex:
		require("GCP_PROJECT_ID", c.ProjectID)
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider))
	}

	return errors.Join(errs...)
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt reads an integer from env, falling back to defaultVal on absence or
// parse failure.
func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	return time.Duration(getInt(key, defaultSec)) * time.Second
}
