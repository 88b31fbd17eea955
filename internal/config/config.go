package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Analysis  AnalysisConfig
	Qdrant    QdrantConfig
	Embedding EmbeddingConfig
	CORS      CORSConfig
	Segmenter SegmenterConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ProviderConfig holds settings for a single LLM reasoning provider.
type ProviderConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Configured reports whether the provider has an API key set.
func (p *ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// AnalysisConfig holds clause analysis settings with multi-provider support.
type AnalysisConfig struct {
	// Preference names the provider to try first: "openai" or "gemini".
	Preference    string         `mapstructure:"preference"`
	MaxAttempts   int            `mapstructure:"max_attempts"`
	BaseDelaySecs int            `mapstructure:"base_delay_secs"`
	MaxDelaySecs  int            `mapstructure:"max_delay_secs"`
	OpenAI        ProviderConfig `mapstructure:"openai"`
	Gemini        ProviderConfig `mapstructure:"gemini"`
}

// QdrantConfig holds vector store settings. An empty host disables vector
// storage and related-clause lookup.
type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
	Collection string `mapstructure:"collection"`
}

// Configured reports whether a qdrant host is set.
func (q *QdrantConfig) Configured() bool {
	return q.Host != ""
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Dimension   int    `mapstructure:"dimension"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Configured reports whether the embedding provider has an API key set.
func (e *EmbeddingConfig) Configured() bool {
	return e.APIKey != ""
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SegmenterConfig holds clause segmentation thresholds.
type SegmenterConfig struct {
	MinClauseLen   int `mapstructure:"min_clause_len"`
	MergeThreshold int `mapstructure:"merge_threshold"`
	MaxClauses     int `mapstructure:"max_clauses"`
}

// Load reads configuration from environment variables with the CLAUSELENS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAUSELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "clauselens")
	v.SetDefault("db.password", "clauselens_secret")
	v.SetDefault("db.name", "clauselens_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Analysis defaults
	v.SetDefault("analysis.preference", "openai")
	v.SetDefault("analysis.max_attempts", 3)
	v.SetDefault("analysis.base_delay_secs", 4)
	v.SetDefault("analysis.max_delay_secs", 10)
	v.SetDefault("analysis.openai.api_key", "")
	v.SetDefault("analysis.openai.model", "gpt-4o-mini")
	v.SetDefault("analysis.openai.timeout_secs", 60)
	v.SetDefault("analysis.gemini.api_key", "")
	v.SetDefault("analysis.gemini.model", "gemini-2.0-flash")
	v.SetDefault("analysis.gemini.timeout_secs", 60)

	// Qdrant defaults (empty host disables vector features)
	v.SetDefault("qdrant.host", "")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.api_key", "")
	v.SetDefault("qdrant.use_tls", false)
	v.SetDefault("qdrant.collection", "legal_clauses")

	// Embedding defaults
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimension", 1536)
	v.SetDefault("embedding.timeout_secs", 30)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Segmenter defaults
	v.SetDefault("segmenter.min_clause_len", 50)
	v.SetDefault("segmenter.merge_threshold", 200)
	v.SetDefault("segmenter.max_clauses", 50)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "CLAUSELENS_SERVER_PORT",
		"server.read_timeout":          "CLAUSELENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "CLAUSELENS_SERVER_WRITE_TIMEOUT",
		"server.environment":           "CLAUSELENS_SERVER_ENVIRONMENT",
		"db.host":                      "CLAUSELENS_DB_HOST",
		"db.port":                      "CLAUSELENS_DB_PORT",
		"db.user":                      "CLAUSELENS_DB_USER",
		"db.password":                  "CLAUSELENS_DB_PASSWORD",
		"db.name":                      "CLAUSELENS_DB_NAME",
		"db.sslmode":                   "CLAUSELENS_DB_SSLMODE",
		"db.max_open":                  "CLAUSELENS_DB_MAX_OPEN",
		"db.max_idle":                  "CLAUSELENS_DB_MAX_IDLE",
		"analysis.preference":          "CLAUSELENS_ANALYSIS_PREFERENCE",
		"analysis.max_attempts":        "CLAUSELENS_ANALYSIS_MAX_ATTEMPTS",
		"analysis.base_delay_secs":     "CLAUSELENS_ANALYSIS_BASE_DELAY_SECS",
		"analysis.max_delay_secs":      "CLAUSELENS_ANALYSIS_MAX_DELAY_SECS",
		"analysis.openai.api_key":      "CLAUSELENS_ANALYSIS_OPENAI_API_KEY",
		"analysis.openai.model":        "CLAUSELENS_ANALYSIS_OPENAI_MODEL",
		"analysis.openai.timeout_secs": "CLAUSELENS_ANALYSIS_OPENAI_TIMEOUT_SECS",
		"analysis.gemini.api_key":      "CLAUSELENS_ANALYSIS_GEMINI_API_KEY",
		"analysis.gemini.model":        "CLAUSELENS_ANALYSIS_GEMINI_MODEL",
		"analysis.gemini.timeout_secs": "CLAUSELENS_ANALYSIS_GEMINI_TIMEOUT_SECS",
		"qdrant.host":                  "CLAUSELENS_QDRANT_HOST",
		"qdrant.port":                  "CLAUSELENS_QDRANT_PORT",
		"qdrant.api_key":               "CLAUSELENS_QDRANT_API_KEY",
		"qdrant.use_tls":               "CLAUSELENS_QDRANT_USE_TLS",
		"qdrant.collection":            "CLAUSELENS_QDRANT_COLLECTION",
		"embedding.api_key":            "CLAUSELENS_EMBEDDING_API_KEY",
		"embedding.model":              "CLAUSELENS_EMBEDDING_MODEL",
		"embedding.dimension":          "CLAUSELENS_EMBEDDING_DIMENSION",
		"embedding.timeout_secs":       "CLAUSELENS_EMBEDDING_TIMEOUT_SECS",
		"cors.allowed_origins":         "CLAUSELENS_CORS_ALLOWED_ORIGINS",
		"segmenter.min_clause_len":     "CLAUSELENS_SEGMENTER_MIN_CLAUSE_LEN",
		"segmenter.merge_threshold":    "CLAUSELENS_SEGMENTER_MERGE_THRESHOLD",
		"segmenter.max_clauses":        "CLAUSELENS_SEGMENTER_MAX_CLAUSES",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CLAUSELENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CLAUSELENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Analysis = AnalysisConfig{
		Preference:    v.GetString("analysis.preference"),
		MaxAttempts:   v.GetInt("analysis.max_attempts"),
		BaseDelaySecs: v.GetInt("analysis.base_delay_secs"),
		MaxDelaySecs:  v.GetInt("analysis.max_delay_secs"),
		OpenAI: ProviderConfig{
			APIKey:      v.GetString("analysis.openai.api_key"),
			Model:       v.GetString("analysis.openai.model"),
			TimeoutSecs: v.GetInt("analysis.openai.timeout_secs"),
		},
		Gemini: ProviderConfig{
			APIKey:      v.GetString("analysis.gemini.api_key"),
			Model:       v.GetString("analysis.gemini.model"),
			TimeoutSecs: v.GetInt("analysis.gemini.timeout_secs"),
		},
	}
	cfg.Qdrant = QdrantConfig{
		Host:       v.GetString("qdrant.host"),
		Port:       v.GetInt("qdrant.port"),
		APIKey:     v.GetString("qdrant.api_key"),
		UseTLS:     v.GetBool("qdrant.use_tls"),
		Collection: v.GetString("qdrant.collection"),
	}
	cfg.Embedding = EmbeddingConfig{
		APIKey:      v.GetString("embedding.api_key"),
		Model:       v.GetString("embedding.model"),
		Dimension:   v.GetInt("embedding.dimension"),
		TimeoutSecs: v.GetInt("embedding.timeout_secs"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Segmenter = SegmenterConfig{
		MinClauseLen:   v.GetInt("segmenter.min_clause_len"),
		MergeThreshold: v.GetInt("segmenter.merge_threshold"),
		MaxClauses:     v.GetInt("segmenter.max_clauses"),
	}

	return cfg, nil
}
