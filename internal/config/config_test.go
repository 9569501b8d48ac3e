package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "CAREERBASE_EMBEDDER",
		"CAREERBASE_INDEX", "PINECONE_API_KEY", "PINECONE_INDEX_URL",
		"QDRANT_HOST", "QDRANT_PORT", "GITHUB_TOKEN",
		"CAREERBASE_CHUNK_SIZE", "CAREERBASE_CHUNK_OVERLAP",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, EmbedderGemini, cfg.Embedder)
	assert.Equal(t, IndexPinecone, cfg.IndexBackend)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.False(t, cfg.IndexConfigured(), "pinecone without credentials is not configured")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CAREERBASE_INDEX", "qdrant")
	t.Setenv("CAREERBASE_EMBEDDER", "openai")
	t.Setenv("QDRANT_PORT", "7001")
	t.Setenv("CAREERBASE_CHUNK_SIZE", "500")
	t.Setenv("CAREERBASE_CHUNK_OVERLAP", "50")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, IndexQdrant, cfg.IndexBackend)
	assert.Equal(t, EmbedderOpenAI, cfg.Embedder)
	assert.Equal(t, 7001, cfg.QdrantPort)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.True(t, cfg.IndexConfigured())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Embedder:     EmbedderGemini,
			IndexBackend: IndexMemory,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("overlap must be below size", func(t *testing.T) {
		cfg := base()
		cfg.ChunkOverlap = 1000
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.IndexBackend = "chroma"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown embedder", func(t *testing.T) {
		cfg := base()
		cfg.Embedder = "cohere"
		assert.Error(t, cfg.Validate())
	})
}

func TestIndexConfigured(t *testing.T) {
	cfg := &Config{IndexBackend: IndexPinecone, PineconeAPIKey: "k", PineconeIndexURL: "https://idx.example"}
	assert.True(t, cfg.IndexConfigured())

	cfg.PineconeIndexURL = ""
	assert.False(t, cfg.IndexConfigured())

	assert.True(t, (&Config{IndexBackend: IndexMemory}).IndexConfigured())
}
