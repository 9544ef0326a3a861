package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported LLM provider names. "azure_openai" is accepted as an alias for
// "azure" on the command line and over HTTP.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderAzure     = "azure"
	ProviderDeepSeek  = "deepseek"
	ProviderGemini    = "gemini"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Providers     ProvidersConfig
	Search        SearchConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP gateway configuration (agentctl serve)
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the optional PostgreSQL audit log configuration.
// Audit recording is disabled entirely when DATABASE_URL is unset.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Enabled reports whether an audit database was configured
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "host=<from DATABASE_URL>"
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s database=%s", host, port, strings.TrimPrefix(u.Path, "/"))
}

// ProvidersConfig holds LLM provider configurations
type ProvidersConfig struct {
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Azure     AzureConfig
	DeepSeek  DeepSeekConfig
	Gemini    GeminiConfig
}

// OpenAIConfig holds OpenAI provider configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic provider configuration
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// AzureConfig holds Azure OpenAI provider configuration.
// Requests go to {Endpoint}/openai/deployments/{Deployment}/chat/completions.
type AzureConfig struct {
	APIKey     string
	Endpoint   string
	Deployment string
	Timeout    time.Duration
}

// DeepSeekConfig holds DeepSeek provider configuration
type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// GeminiConfig holds Google Gemini provider configuration
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// SearchConfig holds search engine credentials. The DuckDuckGo Lite fallback
// needs none, so search works out of the box.
type SearchConfig struct {
	SerpAPIKey   string
	GoogleAPIKey string
	GoogleCX     string
	Timeout      time.Duration
}

// AuthConfig holds the optional gateway authentication configuration.
// When JWTSecret is empty the HTTP gateway runs unauthenticated.
type AuthConfig struct {
	JWTSecret string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// Generation and tool defaults, shared by the CLI flags and the HTTP gateway
// so both surfaces behave identically.
const (
	DefaultTemperature   = 0.7
	DefaultMaxTokens     = 4000
	DefaultMaxConcurrent = 5
	DefaultNumResults    = 5
)

// New creates a Config by loading the optional YAML defaults file, .env, and
// environment variables. Environment variables always win over file values.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	src, err := newValueSource(os.Getenv("AGENTCTL_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: src.getString("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            src.getString("SERVER_HOST", "0.0.0.0"),
			Port:            src.getPort(),
			ReadTimeout:     src.getDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    src.getDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: src.getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             src.getString("DATABASE_URL", ""),
			MaxOpenConns:    src.getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    src.getInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: src.getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKey:  src.getString("OPENAI_API_KEY", ""),
				BaseURL: src.getString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Timeout: src.getDuration("OPENAI_TIMEOUT", 60*time.Second),
			},
			Anthropic: AnthropicConfig{
				APIKey:  src.getString("ANTHROPIC_API_KEY", ""),
				BaseURL: src.getString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Timeout: src.getDuration("ANTHROPIC_TIMEOUT", 60*time.Second),
			},
			Azure: AzureConfig{
				APIKey:     src.getString("AZURE_OPENAI_API_KEY", ""),
				Endpoint:   src.getString("AZURE_OPENAI_ENDPOINT", ""),
				Deployment: src.getString("AZURE_OPENAI_MODEL_DEPLOYMENT", "gpt-4o-ms"),
				Timeout:    src.getDuration("AZURE_OPENAI_TIMEOUT", 60*time.Second),
			},
			DeepSeek: DeepSeekConfig{
				APIKey:  src.getString("DEEPSEEK_API_KEY", ""),
				BaseURL: src.getString("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
				Timeout: src.getDuration("DEEPSEEK_TIMEOUT", 60*time.Second),
			},
			Gemini: GeminiConfig{
				APIKey:  src.getString("GEMINI_API_KEY", ""),
				BaseURL: src.getString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
				Timeout: src.getDuration("GEMINI_TIMEOUT", 60*time.Second),
			},
		},
		Search: SearchConfig{
			SerpAPIKey:   src.getString("SERPAPI_KEY", ""),
			GoogleAPIKey: src.getString("GOOGLE_API_KEY", ""),
			GoogleCX:     src.getString("GOOGLE_CX", ""),
			Timeout:      src.getDuration("SEARCH_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: src.getString("AUTH_JWT_SECRET", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:  src.getString("LOG_LEVEL", "info"),
			LogFormat: src.getString("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the loaded configuration for internally inconsistent values.
// Missing provider credentials are not an error here: the dispatcher reports
// them per call so that unconfigured providers fail only when selected.
func (c *Config) Validate() error {
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Observability.LogFormat)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Providers.Azure.Endpoint != "" {
		if _, err := url.ParseRequestURI(c.Providers.Azure.Endpoint); err != nil {
			return fmt.Errorf("invalid AZURE_OPENAI_ENDPOINT: %w", err)
		}
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Address returns the HTTP gateway listen address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// valueSource resolves configuration keys against the environment first and
// an optional YAML defaults file second.
type valueSource struct {
	file map[string]string
}

func newValueSource(path string) (*valueSource, error) {
	src := &valueSource{file: make(map[string]string)}
	if path == "" {
		if _, err := os.Stat("agentctl.yaml"); err == nil {
			path = "agentctl.yaml"
		} else {
			return src, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	for k, v := range values {
		src.file[strings.ToUpper(k)] = fmt.Sprintf("%v", v)
	}
	return src, nil
}

func (s *valueSource) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s *valueSource) getString(key, defaultValue string) string {
	if v := s.lookup(key); v != "" {
		return v
	}
	return defaultValue
}

func (s *valueSource) getInt(key string, defaultValue int) int {
	v := s.lookup(key)
	if v == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *valueSource) getDuration(key string, defaultValue time.Duration) time.Duration {
	v := s.lookup(key)
	if v == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return value
}

// getPort returns the gateway port from PORT or SERVER_PORT (default: 8080)
func (s *valueSource) getPort() int {
	if v := s.lookup("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			return p
		}
	}
	if v := s.lookup("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			return p
		}
	}
	return 8080
}
