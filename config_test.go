package quizstream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray .env or
// config.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)
	for _, key := range []string{"APP_ENV", "PORT", "SESSION_SECRET", "SECURE_COOKIES", "LLM_PROVIDER", "STORE_BACKEND"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "5001", cfg.Server.Port)
	assert.Equal(t, DefaultSessionSecret, cfg.Server.SessionSecret)
	assert.False(t, cfg.Server.SecureCookies)
	assert.Equal(t, DefaultDispenseCount, cfg.Dispense.BatchSize)
	assert.Equal(t, "gemini", cfg.Generator.Provider)
	assert.Equal(t, DefaultBatchSize, cfg.Generator.BatchSize)
	assert.Equal(t, DefaultInterval, cfg.Generator.Interval)
	assert.Equal(t, DefaultGenerationTimeout, cfg.Generator.Timeout)
	assert.False(t, cfg.Generator.SingleFlight)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Environment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GENERATOR_INTERVAL", "5s")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, "openai", cfg.Generator.Provider)
	assert.Equal(t, "sk-test", cfg.Generator.OpenAIAPIKey)
	assert.Equal(t, 5*time.Second, cfg.Generator.Interval)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis://cache:6379/2", cfg.Store.RedisURL)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateProvider())
}

func TestLoadConfig_File(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "quiz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: dev
generator:
  provider: mock
  batch_size: 3
  single_flight: true
store:
  backend: sqlite
  sqlite_path: /tmp/quiz.db
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "mock", cfg.Generator.Provider)
	assert.Equal(t, 3, cfg.Generator.BatchSize)
	assert.True(t, cfg.Generator.SingleFlight)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/quiz.db", cfg.Store.SQLitePath)
	assert.NoError(t, cfg.ValidateProvider())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := LoadConfig("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QUIZSTREAM_DOTENV_PROBE=1\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("QUIZSTREAM_DOTENV_PROBE") })

	_, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "1", os.Getenv("QUIZSTREAM_DOTENV_PROBE"))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Dispense:  DispenseConfig{BatchSize: 5},
			Generator: GeneratorConfig{BatchSize: 5},
			Store:     StoreConfig{Backend: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"memory", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }, "unknown store backend"},
		{"redis without url", func(c *Config) { c.Store.Backend = "redis" }, "REDIS_URL"},
		{"postgres without url", func(c *Config) { c.Store.Backend = "postgres" }, "DATABASE_URL"},
		{"sqlite without path", func(c *Config) { c.Store.Backend = "sqlite" }, "sqlite_path"},
		{"zero dispense batch", func(c *Config) { c.Dispense.BatchSize = 0 }, "dispense.batch_size"},
		{"negative generator batch", func(c *Config) { c.Generator.BatchSize = -1 }, "generator.batch_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		provider string
		keys     ProviderConfig
		wantErr  bool
	}{
		{"gemini", ProviderConfig{}, true},
		{"gemini", ProviderConfig{GeminiAPIKey: "k"}, false},
		{"openai", ProviderConfig{}, true},
		{"openai", ProviderConfig{OpenAIAPIKey: "k"}, false},
		{"anthropic", ProviderConfig{}, true},
		{"anthropic", ProviderConfig{AnthropicAPIKey: "k"}, false},
		{"mock", ProviderConfig{}, false},
		{"llama", ProviderConfig{}, true},
	}
	for _, tt := range tests {
		tt.keys.Provider = tt.provider
		c := &Config{Generator: GeneratorConfig{ProviderConfig: tt.keys}}
		err := c.ValidateProvider()
		if tt.wantErr {
			assert.Error(t, err, tt.provider)
		} else {
			assert.NoError(t, err, tt.provider)
		}
	}
}
