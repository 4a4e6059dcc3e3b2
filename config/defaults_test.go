package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.NotEqual(t, StoreConfig{}, cfg.Store)
	assert.NotEqual(t, RetrievalConfig{}, cfg.Retrieval)
	assert.NotEqual(t, ResearchConfig{}, cfg.Research)
	assert.NotEqual(t, RedisConfig{}, cfg.Redis)
	assert.NotEqual(t, LLMConfig{}, cfg.LLM)
	assert.NotEqual(t, EmbeddingConfig{}, cfg.Embedding)
	assert.NotEqual(t, LogConfig{}, cfg.Log)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
}

// --- Individual Default*Config functions ---

func TestDefaultStoreConfig(t *testing.T) {
	cfg := DefaultStoreConfig()
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "memoryd", cfg.User)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, "memoryd", cfg.Name)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestDefaultRetrievalConfig(t *testing.T) {
	cfg := DefaultRetrievalConfig()
	assert.Empty(t, cfg.KeywordBackend)
	assert.Equal(t, 1536, cfg.VectorDimensions)
	assert.Equal(t, 10, cfg.DefaultMaxResults)
}

func TestDefaultResearchConfig(t *testing.T) {
	cfg := DefaultResearchConfig()
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 10, cfg.MaxPagesPerIteration)
	assert.Equal(t, 8000, cfg.MaxContextTokens)
	assert.InDelta(t, 0.3, cfg.MinRelevanceScore, 0.001)
	assert.NotEmpty(t, cfg.PlanModel)
	assert.NotEmpty(t, cfg.ReflectModel)
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 2, cfg.MinIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestDefaultLLMConfig(t *testing.T) {
	cfg := DefaultLLMConfig()
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.BaseURL)
	assert.NotEmpty(t, cfg.Model)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestDefaultEmbeddingConfig(t *testing.T) {
	cfg := DefaultEmbeddingConfig()
	assert.Equal(t, "https://api.openai.com", cfg.BaseURL)
	assert.Equal(t, "text-embedding-3-large", cfg.Model)
	assert.Equal(t, 1536, cfg.Dimensions)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.EnableCaller)
	assert.False(t, cfg.EnableStacktrace)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "memoryd", cfg.ServiceName)
	assert.InDelta(t, 0.1, cfg.SampleRate, 0.001)
}
