package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad_ValidConfig(t *testing.T) {
	configContent := `
env: test
storage:
  driver: memory
redis_connection:
  addressredis: "localhost:6379"
  password: "redis_pass"
  user: "redis_user"
  db: 1
  max_retries: 3
  dial_timeout: 5s
  timeoutredis: 10s
http_server:
  addresshttp: ":3001"
  timeouthttp: 30s
  idle_timeout: 60s
jwttoken:
  jwt_secret_key: "test_secret_key"
  token_ttl: 24h
anthropic:
  api_key: "test_api_key"
  base_url: "https://api.anthropic.com"
  model: "claude-3-sonnet-20240229"
  timeout: 15s
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))
	t.Setenv("CONFIG_PATH", configPath)

	cfg := MustLoad()

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "memory", cfg.Driver)
	assert.Equal(t, ":3001", cfg.AddressHTTP)
	assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, "localhost:6379", cfg.AddressRedis)
	assert.Equal(t, "test_secret_key", cfg.JWTSecretKey)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "test_api_key", cfg.APIKey)
	assert.Equal(t, "claude-3-sonnet-20240229", cfg.Model)
	assert.Equal(t, 15*time.Second, cfg.Anthropic.Timeout)
}

func TestMustLoad_Defaults(t *testing.T) {
	configContent := `
env: local
jwttoken:
  jwt_secret_key: "k"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))
	t.Setenv("CONFIG_PATH", configPath)

	cfg := MustLoad()

	assert.Equal(t, "memory", cfg.Driver)
	assert.Equal(t, ":3001", cfg.AddressHTTP)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "https://api.anthropic.com", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Anthropic.Timeout)
	assert.Empty(t, cfg.AddressRedis)
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := &Config{
		JWTToken:  JWTToken{JWTSecretKey: "very-secret"},
		Anthropic: Anthropic{APIKey: "sk-ant-xxx"},
	}

	out := cfg.String()
	assert.NotContains(t, out, "very-secret")
	assert.NotContains(t, out, "sk-ant-xxx")
	assert.Contains(t, out, "<set>")
}
