// Package config provides configuration management for the paper discovery service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NEXUS"

// SSL mode constants for database connections.
const (
	// SSLModeDisable disables SSL (use only for local development).
	SSLModeDisable = "disable"
	// SSLModeRequire requires SSL but does not verify certificates.
	SSLModeRequire = "require"
	// SSLModeVerifyCA verifies the server certificate against a CA.
	SSLModeVerifyCA = "verify-ca"
	// SSLModeVerifyFull verifies the server certificate and hostname.
	SSLModeVerifyFull = "verify-full"
)

// Config holds all configuration for the paper discovery service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database"`
	// Redis contains the resolution cache and preference store settings.
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka contains the realtime insert feed settings.
	Kafka KafkaConfig `mapstructure:"kafka"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Resolver contains metadata resolution settings.
	Resolver ResolverConfig `mapstructure:"resolver"`
	// PaperSources contains per-source API settings.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	// Catalog contains catalog bootstrap settings.
	Catalog CatalogConfig `mapstructure:"catalog"`
	// Assistant contains chat assistant settings.
	Assistant AssistantConfig `mapstructure:"assistant"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP API port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response. It must
	// exceed the resolver timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// Enabled turns on the shared PostgreSQL paper store.
	Enabled bool `mapstructure:"enabled"`
	// Host is the PostgreSQL server hostname.
	Host string `mapstructure:"host"`
	// Port is the PostgreSQL server port (default: 5432).
	Port int `mapstructure:"port"`
	// User is the database username.
	User string `mapstructure:"user"`
	// Password is the database password (use environment variable in production).
	Password string `mapstructure:"password"`
	// Name is the database name.
	Name string `mapstructure:"name"`
	// SSLMode controls SSL connection security (require, verify-ca, verify-full, disable).
	SSLMode string `mapstructure:"ssl_mode"`
	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32 `mapstructure:"max_conns"`
	// MinConns is the minimum number of connections to keep open.
	MinConns int32 `mapstructure:"min_conns"`
	// MaxConnLifetime is the maximum lifetime of a connection before it's closed.
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// MaxConnIdleTime is the maximum time a connection can be idle before it's closed.
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	// HealthCheckPeriod is the interval between health checks of idle connections.
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	// ConnectTimeout is the maximum time to wait for a connection.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// MigrationPath is the path to migration files (relative or absolute).
	MigrationPath string `mapstructure:"migration_path"`
	// MigrationAutoRun enables automatic migration on startup (default: false).
	MigrationAutoRun bool `mapstructure:"migration_auto_run"`
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	// Enabled switches the resolution cache and preference store to Redis.
	Enabled bool `mapstructure:"enabled"`
	// Addr is the host:port of the Redis server.
	Addr string `mapstructure:"addr"`
	// Password is loaded from NEXUS_REDIS_PASSWORD only.
	Password string `mapstructure:"-"`
	// DB is the Redis logical database.
	DB int `mapstructure:"db"`
	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	// CacheTTL is how long successful resolutions stay cached.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// KeyPrefix namespaces preference keys.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// KafkaConfig holds the realtime feed settings.
type KafkaConfig struct {
	// Enabled controls whether inserts are published and consumed.
	Enabled bool `mapstructure:"enabled"`
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers"`
	// Topic is the insert feed topic.
	Topic string `mapstructure:"topic"`
	// GroupID is the consumer group. Leave empty to derive a per-instance group.
	GroupID string `mapstructure:"group_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
}

// ResolverConfig holds metadata resolution settings.
type ResolverConfig struct {
	// Timeout bounds a whole resolution, across every source in the chain.
	Timeout time.Duration `mapstructure:"timeout"`
	// AttemptTimeout bounds a single HTTP attempt.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	// RateLimit is the maximum outbound requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the outbound request burst.
	BurstSize int `mapstructure:"burst_size"`
	// UserAgent is sent with every outbound request.
	UserAgent string `mapstructure:"user_agent"`
	// RelaysEnabled adds the public relay fallbacks after the direct attempt.
	RelaysEnabled bool `mapstructure:"relays_enabled"`
}

// PaperSourcesConfig holds configuration for all metadata sources.
type PaperSourcesConfig struct {
	ArXiv    PaperSourceConfig `mapstructure:"arxiv"`
	PubMed   PaperSourceConfig `mapstructure:"pubmed"`
	BioRxiv  PaperSourceConfig `mapstructure:"biorxiv"`
	CrossRef PaperSourceConfig `mapstructure:"crossref"`
}

// PaperSourceConfig holds configuration for a single source API.
type PaperSourceConfig struct {
	// Enabled controls whether this source is registered.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is loaded from NEXUS_PAPER_SOURCES_<SOURCE>_API_KEY only.
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// MaxResults caps listing sizes where the source supports listings.
	MaxResults int `mapstructure:"max_results"`
	// Mailto identifies the caller to APIs with a polite pool.
	Mailto string `mapstructure:"mailto"`
}

// CatalogConfig holds catalog bootstrap settings.
type CatalogConfig struct {
	// Categories are the arXiv categories listed at bootstrap.
	Categories []string `mapstructure:"categories"`
	// ListingsEnabled turns the arXiv category listings on.
	ListingsEnabled bool `mapstructure:"listings_enabled"`
	// GeneratedCount is the number of synthetic papers added at bootstrap.
	GeneratedCount int `mapstructure:"generated_count"`
	// BootstrapTimeout bounds the initial aggregation.
	BootstrapTimeout time.Duration `mapstructure:"bootstrap_timeout"`
}

// AssistantConfig holds chat assistant settings.
type AssistantConfig struct {
	// Provider is "anthropic", "openai", "vertex" or empty to disable.
	Provider    string         `mapstructure:"provider"`
	Temperature float64        `mapstructure:"temperature"`
	Timeout     time.Duration  `mapstructure:"timeout"`
	MaxRetries  int            `mapstructure:"max_retries"`
	Anthropic   LLMAPIConfig   `mapstructure:"anthropic"`
	OpenAI      LLMAPIConfig   `mapstructure:"openai"`
	Vertex      VertexAIConfig `mapstructure:"vertex"`
}

// LLMAPIConfig holds settings for an API-key LLM provider.
type LLMAPIConfig struct {
	// APIKey is loaded from the environment only.
	APIKey  string `mapstructure:"-"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// VertexAIConfig holds Gemini on Vertex AI settings. Credentials come from
// Application Default Credentials.
type VertexAIConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
	Model    string `mapstructure:"model"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nexus")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets use mapstructure:"-" so that config files can never carry them.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadSecrets(cfg *Config) {
	cfg.Assistant.Anthropic.APIKey = os.Getenv("NEXUS_ASSISTANT_ANTHROPIC_API_KEY")
	cfg.Assistant.OpenAI.APIKey = os.Getenv("NEXUS_ASSISTANT_OPENAI_API_KEY")
	cfg.Redis.Password = os.Getenv("NEXUS_REDIS_PASSWORD")
	cfg.PaperSources.PubMed.APIKey = os.Getenv("NEXUS_PAPER_SOURCES_PUBMED_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "nexus")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "nexus")
	// Use NEXUS_DATABASE_SSL_MODE=disable for local development.
	v.SetDefault("database.ssl_mode", SSLModeRequire)
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.migration_path", "migrations")
	v.SetDefault("database.migration_auto_run", false)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.cache_ttl", "24h")
	v.SetDefault("redis.key_prefix", "nexus:kv:")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "nexus.papers.inserted")
	v.SetDefault("kafka.group_id", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Resolver defaults
	v.SetDefault("resolver.timeout", "45s")
	v.SetDefault("resolver.attempt_timeout", "15s")
	v.SetDefault("resolver.rate_limit", 10.0)
	v.SetDefault("resolver.burst_size", 10)
	v.SetDefault("resolver.user_agent", "Nexus-PaperDiscovery/1.0")
	v.SetDefault("resolver.relays_enabled", true)

	// Paper source defaults
	v.SetDefault("paper_sources.arxiv.enabled", true)
	v.SetDefault("paper_sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("paper_sources.arxiv.max_results", 1000)
	v.SetDefault("paper_sources.pubmed.enabled", true)
	v.SetDefault("paper_sources.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("paper_sources.biorxiv.enabled", true)
	v.SetDefault("paper_sources.biorxiv.base_url", "https://api.biorxiv.org")
	v.SetDefault("paper_sources.crossref.enabled", true)
	v.SetDefault("paper_sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("paper_sources.crossref.mailto", "")

	// Catalog defaults
	v.SetDefault("catalog.categories", []string{"cs.AI", "cs.CL", "cs.LG", "physics.optics", "math.PR"})
	v.SetDefault("catalog.listings_enabled", true)
	v.SetDefault("catalog.generated_count", 5000)
	v.SetDefault("catalog.bootstrap_timeout", "60s")

	// Assistant defaults. API keys come from the environment (see loadSecrets).
	v.SetDefault("assistant.provider", "")
	v.SetDefault("assistant.temperature", 0.7)
	v.SetDefault("assistant.timeout", "60s")
	v.SetDefault("assistant.max_retries", 2)
	v.SetDefault("assistant.anthropic.model", "claude-sonnet-4-5")
	v.SetDefault("assistant.anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("assistant.openai.model", "gpt-4o-mini")
	v.SetDefault("assistant.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("assistant.vertex.project", "")
	v.SetDefault("assistant.vertex.location", "us-central1")
	v.SetDefault("assistant.vertex.model", "gemini-2.5-flash")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max_body_bytes must be positive")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			return fmt.Errorf("max_conns (%d) must be >= min_conns (%d)", c.Database.MaxConns, c.Database.MinConns)
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required when kafka is enabled")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Resolver.Timeout <= 0 {
		return fmt.Errorf("resolver timeout must be positive")
	}
	if c.Resolver.AttemptTimeout <= 0 {
		return fmt.Errorf("resolver attempt_timeout must be positive")
	}
	if c.Resolver.RateLimit <= 0 || c.Resolver.BurstSize <= 0 {
		return fmt.Errorf("resolver rate_limit and burst_size must be positive")
	}

	if c.Catalog.GeneratedCount < 0 {
		return fmt.Errorf("catalog generated_count must not be negative")
	}
	if c.PaperSources.ArXiv.MaxResults <= 0 {
		return fmt.Errorf("arxiv max_results must be positive")
	}

	// A provider without credentials is allowed: the assistant then answers
	// with the fixed missing-key reply.
	switch strings.ToLower(c.Assistant.Provider) {
	case "", "anthropic", "openai", "vertex":
	default:
		return fmt.Errorf("unsupported assistant provider: %q", c.Assistant.Provider)
	}

	return nil
}
