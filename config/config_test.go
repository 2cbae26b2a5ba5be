package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderGateway, cfg.LLMProvider)
	assert.Equal(t, "https://ai.gateway.lovable.dev/v1", cfg.AIBaseURL)
	assert.Equal(t, "google/gemini-2.5-flash", cfg.AIModel)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigins)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("AI_TIMEOUT", "15s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_KEY", "sk")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, 15*time.Second, cfg.AITimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.StorageEnabled())
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", LLMProvider: ProviderGateway, AIAPIKey: "k", AITimeout: time.Second}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"gateway without key", func(c *Config) { c.AIAPIKey = "" }, "AI_API_KEY"},
		{"gemini without key", func(c *Config) { c.LLMProvider = ProviderGemini }, "GEMINI_API_KEY"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "other" }, "unknown LLM_PROVIDER"},
		{"zero timeout", func(c *Config) { c.AITimeout = 0 }, "AI_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "h", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "1", DBSSLMode: "disable", DBTimeZone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", cfg.DSN())
}
