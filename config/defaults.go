// Package config: default values for every configuration section.
package config

import "time"

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store:     DefaultStoreConfig(),
		Retrieval: DefaultRetrievalConfig(),
		Research:  DefaultResearchConfig(),
		Redis:     DefaultRedisConfig(),
		LLM:       DefaultLLMConfig(),
		Embedding: DefaultEmbeddingConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "memoryd",
		Password:        "",
		Name:            "memoryd",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultRetrievalConfig returns the default retrieval configuration.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		KeywordBackend:    "",
		VectorDimensions:  1536,
		DefaultMaxResults: 10,
	}
}

// DefaultResearchConfig returns the spec's documented research-loop
// defaults.
func DefaultResearchConfig() ResearchConfig {
	return ResearchConfig{
		MaxIterations:        5,
		MaxPagesPerIteration: 10,
		MaxContextTokens:     8000,
		MinRelevanceScore:    0.3,
		PlanModel:            "claude-sonnet-4-5",
		ReflectModel:         "claude-sonnet-4-5",
	}
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		TTL:          5 * time.Minute,
	}
}

// DefaultLLMConfig returns the default completion-provider configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL:    "",
		Model:      "claude-sonnet-4-5",
		Timeout:    2 * time.Minute,
		MaxRetries: 3,
	}
}

// DefaultEmbeddingConfig returns the default embedding-provider
// configuration.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		BaseURL:    "https://api.openai.com",
		Model:      "text-embedding-3-large",
		Dimensions: 1536,
		Timeout:    30 * time.Second,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:     false,
		ServiceName: "memoryd",
		SampleRate:  0.1,
	}
}
