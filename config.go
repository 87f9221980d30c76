package quizstream

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSessionSecret signs session cookies when nothing else is configured.
const DefaultSessionSecret = "quizstream-dev-secret"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env       string          `mapstructure:"env"`     // local, dev, production
	Verbose   bool            `mapstructure:"verbose"` // debug-level logging
	Server    ServerConfig    `mapstructure:"server"`
	Dispense  DispenseConfig  `mapstructure:"dispense"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Store     StoreConfig     `mapstructure:"store"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
	SecureCookies bool   `mapstructure:"secure_cookies"` // set when served behind HTTPS
}

// DispenseConfig configures request batches.
type DispenseConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

// GeneratorConfig configures the background generation loop.
type GeneratorConfig struct {
	ProviderConfig `mapstructure:",squash"`

	BatchSize     int           `mapstructure:"batch_size"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SingleFlight  bool          `mapstructure:"single_flight"`
	TranscriptDir string        `mapstructure:"transcript_dir"` // empty disables the LLM transcript
}

// LoadConfig reads .env, the optional config file and the environment.
// An empty path searches ./config and the working directory for config.yaml.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Nested keys map to ENV style names, e.g. generator.batch_size -> GENERATOR_BATCH_SIZE.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("verbose", "VERBOSE")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.session_secret", "SESSION_SECRET")
	_ = v.BindEnv("server.secure_cookies", "SECURE_COOKIES")
	_ = v.BindEnv("generator.provider", "LLM_PROVIDER")
	_ = v.BindEnv("generator.model", "LLM_MODEL")
	_ = v.BindEnv("store.backend", "STORE_BACKEND")
	_ = v.BindEnv("store.redis_url", "REDIS_URL")
	_ = v.BindEnv("store.postgres_url", "DATABASE_URL")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini_base_url", "GEMINI_BASE_URL")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai_base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// API keys are read under their conventional env names, outside the generator section.
	cfg.Generator.GeminiAPIKey = v.GetString("gemini_api_key")
	cfg.Generator.GeminiBaseURL = v.GetString("gemini_base_url")
	cfg.Generator.OpenAIAPIKey = v.GetString("openai_api_key")
	cfg.Generator.OpenAIBaseURL = v.GetString("openai_base_url")
	cfg.Generator.AnthropicAPIKey = v.GetString("anthropic_api_key")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("verbose", false)
	v.SetDefault("server.port", "5001")
	v.SetDefault("server.session_secret", DefaultSessionSecret)
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("dispense.batch_size", DefaultDispenseCount)
	v.SetDefault("generator.provider", "gemini")
	v.SetDefault("generator.model", "")
	v.SetDefault("generator.batch_size", DefaultBatchSize)
	v.SetDefault("generator.interval", DefaultInterval.String())
	v.SetDefault("generator.timeout", DefaultGenerationTimeout.String())
	v.SetDefault("generator.single_flight", false)
	v.SetDefault("generator.transcript_dir", "")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.sqlite_path", "./quiz.db")
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.postgres_url", "")
}

// ValidateProvider checks that the selected model provider has its API key.
func (c *Config) ValidateProvider() error {
	g := c.Generator
	switch g.Provider {
	case "gemini":
		if g.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openai":
		if g.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if g.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", g.Provider)
	}
	return nil
}

// Validate checks the settings every command needs: the store and batch sizes.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite store")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	case "postgres":
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}

	if c.Dispense.BatchSize <= 0 {
		return fmt.Errorf("dispense.batch_size must be positive, got %d", c.Dispense.BatchSize)
	}
	if c.Generator.BatchSize <= 0 {
		return fmt.Errorf("generator.batch_size must be positive, got %d", c.Generator.BatchSize)
	}
	return nil
}
