// Package config: unified configuration loading with YAML file plus
// environment-variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("MEMORYD").
//	    Load()
//
// Precedence: defaults -> YAML file -> environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration tree for the memory service.
type Config struct {
	Store     StoreConfig     `yaml:"store" env:"STORE"`
	Retrieval RetrievalConfig `yaml:"retrieval" env:"RETRIEVAL"`
	Research  ResearchConfig  `yaml:"research" env:"RESEARCH"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"`
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// StoreConfig configures the transactional page/abstract store.
type StoreConfig struct {
	// Driver selects the SQL dialect: postgres or sqlite.
	Driver string `yaml:"driver" env:"DRIVER"`
	Host   string `yaml:"host" env:"HOST"`
	Port   int    `yaml:"port" env:"PORT"`
	User   string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	// Name is the database name for postgres, or the file path for sqlite.
	Name            string        `yaml:"name" env:"NAME"`
	SSLMode         string        `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	// MigrationsPath is loaded from configuration but not read by the
	// migration factory, which always uses the embedded migration files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
}

// RetrievalConfig configures the keyword, vector, and header-index
// retrievers.
type RetrievalConfig struct {
	// KeywordBackend is loaded from configuration but not read by the
	// keyword retriever, which always auto-detects its backend.
	KeywordBackend string `yaml:"keyword_backend" env:"KEYWORD_BACKEND"`
	// VectorDimensions is the embedding width used by the vector column
	// and the in-memory fallback retriever.
	VectorDimensions int `yaml:"vector_dimensions" env:"VECTOR_DIMENSIONS"`
	// DefaultMaxResults bounds a single retriever invocation when the
	// caller's RetrievalQuery leaves MaxResults unset.
	DefaultMaxResults int `yaml:"default_max_results" env:"DEFAULT_MAX_RESULTS"`
}

// ResearchConfig configures the bounded Plan -> Search -> Integrate ->
// Reflect loop's defaults, mirrored into types.ResearchOptions when a
// caller does not override them.
type ResearchConfig struct {
	MaxIterations        int     `yaml:"max_iterations" env:"MAX_ITERATIONS"`
	MaxPagesPerIteration int     `yaml:"max_pages_per_iteration" env:"MAX_PAGES_PER_ITERATION"`
	MaxContextTokens     int     `yaml:"max_context_tokens" env:"MAX_CONTEXT_TOKENS"`
	MinRelevanceScore    float64 `yaml:"min_relevance_score" env:"MIN_RELEVANCE_SCORE"`
	PlanModel            string  `yaml:"plan_model" env:"PLAN_MODEL"`
	ReflectModel         string  `yaml:"reflect_model" env:"REFLECT_MODEL"`
}

// RedisConfig configures the write-through owner-stats cache.
type RedisConfig struct {
	Addr         string `yaml:"addr" env:"ADDR"`
	Password     string `yaml:"password" env:"PASSWORD"`
	DB           int    `yaml:"db" env:"DB"`
	PoolSize     int    `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int    `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	// TTL bounds how long a cached OwnerStats entry is trusted before a
	// fresh read-through from the store.
	TTL time.Duration `yaml:"ttl" env:"TTL"`
}

// LLMConfig configures the single completion-model provider (Anthropic)
// used by the Plan/Reflect/Abstract phases.
type LLMConfig struct {
	APIKey     string        `yaml:"api_key" env:"API_KEY"`
	BaseURL    string        `yaml:"base_url" env:"BASE_URL"`
	Model      string        `yaml:"model" env:"MODEL"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES"`
}

// EmbeddingConfig configures the embedding provider used to vectorize
// pages on ingest and queries on recall.
type EmbeddingConfig struct {
	APIKey     string        `yaml:"api_key" env:"API_KEY"`
	BaseURL    string        `yaml:"base_url" env:"BASE_URL"`
	Model      string        `yaml:"model" env:"MODEL"`
	Dimensions int           `yaml:"dimensions" env:"DIMENSIONS"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL"`
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig configures the OpenTelemetry tracer provider.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" env:"ENABLED"`
	ServiceName string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate  float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Loader loads a Config via the builder pattern.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a configuration loader with the default env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "MEMORYD",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a config validator run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load builds a Config: defaults, then the YAML file if configured, then
// environment variable overrides, then the registered validators.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads a config, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads a config from environment variables only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate checks the config for internally inconsistent values.
func (c *Config) Validate() error {
	var errs []string

	if c.Store.Driver != "postgres" && c.Store.Driver != "sqlite" {
		errs = append(errs, "store.driver must be postgres or sqlite")
	}
	if c.Research.MaxIterations <= 0 {
		errs = append(errs, "research.max_iterations must be positive")
	}
	if c.Research.MaxPagesPerIteration <= 0 {
		errs = append(errs, "research.max_pages_per_iteration must be positive")
	}
	if c.Research.MaxContextTokens <= 0 {
		errs = append(errs, "research.max_context_tokens must be positive")
	}
	if c.Research.MinRelevanceScore < 0 || c.Research.MinRelevanceScore > 1 {
		errs = append(errs, "research.min_relevance_score must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DSN returns the store's database connection string.
func (s *StoreConfig) DSN() string {
	switch s.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			s.Host, s.Port, s.User, s.Password, s.Name, s.SSLMode,
		)
	case "sqlite":
		return s.Name
	default:
		return ""
	}
}
