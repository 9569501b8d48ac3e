// Package config builds the application configuration from the
// environment. The configuration object is constructed once at startup
// and passed into component constructors; nothing reads the environment
// after that.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mike-a-ellis/careerbase/internal/chunker"
)

// Index backends.
const (
	IndexPinecone = "pinecone"
	IndexQdrant   = "qdrant"
	IndexMemory   = "memory"
)

// Embedding providers.
const (
	EmbedderGemini = "gemini"
	EmbedderOpenAI = "openai"
)

// Config carries every recognized option. Missing index credentials are a
// valid state: index-backed functionality is disabled and the rest of the
// application keeps working.
type Config struct {
	// Embedding / generation credentials.
	GeminiAPIKey string
	OpenAIAPIKey string
	Embedder     string // gemini | openai

	// Index backend selection and credentials.
	IndexBackend     string // pinecone | qdrant | memory
	PineconeAPIKey   string
	PineconeIndexURL string
	QdrantHost       string
	QdrantPort       int

	// Optional token for the GitHub import command.
	GitHubToken string

	ChunkSize    int
	ChunkOverlap int
}

// FromEnv reads the configuration from the environment.
func FromEnv() *Config {
	return &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		Embedder:     getEnv("CAREERBASE_EMBEDDER", EmbedderGemini),

		IndexBackend:     getEnv("CAREERBASE_INDEX", IndexPinecone),
		PineconeAPIKey:   os.Getenv("PINECONE_API_KEY"),
		PineconeIndexURL: os.Getenv("PINECONE_INDEX_URL"),
		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334),

		GitHubToken: os.Getenv("GITHUB_TOKEN"),

		ChunkSize:    getEnvInt("CAREERBASE_CHUNK_SIZE", chunker.DefaultSize),
		ChunkOverlap: getEnvInt("CAREERBASE_CHUNK_OVERLAP", chunker.DefaultOverlap),
	}
}

// Validate checks internal consistency. Missing credentials are not an
// error; impossible chunk windows and unknown selections are.
func (c *Config) Validate() error {
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be less than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	switch c.IndexBackend {
	case IndexPinecone, IndexQdrant, IndexMemory:
	default:
		return fmt.Errorf("unknown index backend %q", c.IndexBackend)
	}
	switch c.Embedder {
	case EmbedderGemini, EmbedderOpenAI:
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedder)
	}
	return nil
}

// IndexConfigured reports whether the selected index backend has the
// credentials it needs. When false, the application degrades to
// local-only behavior rather than failing.
func (c *Config) IndexConfigured() bool {
	switch c.IndexBackend {
	case IndexPinecone:
		return c.PineconeAPIKey != "" && c.PineconeIndexURL != ""
	case IndexQdrant:
		return c.QdrantHost != ""
	case IndexMemory:
		return true
	default:
		return false
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}
