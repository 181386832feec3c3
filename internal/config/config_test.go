package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// load reads config from an empty directory, so only defaults and the
// environment apply.
func load(t *testing.T) Config {
	t.Helper()
	viper.Reset()
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := load(t)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	assert.Equal(t, "halimcho", cfg.GithubUsername)
	assert.True(t, cfg.RequireGeo)
	assert.InDelta(t, 37.5662952, cfg.FallbackLat, 1e-9)
	assert.InDelta(t, 126.9779451, cfg.FallbackLng, 1e-9)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_USERNAME", "someone-else")
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")
	t.Setenv("KAKAO_API_KEY", "test-key")

	cfg := load(t)
	assert.Equal(t, "someone-else", cfg.GithubUsername)
	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddress)
	assert.Equal(t, "test-key", cfg.KakaoAPIKey)
}

func TestLoadConfigAllowedOriginsFromEnv(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173,https://halimcho.dev")

	cfg := load(t)
	assert.Equal(t,
		[]string{"http://localhost:5173", "https://halimcho.dev"},
		cfg.AllowedOrigins)
}

func TestLoadConfigSingleAllowedOrigin(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://halimcho.dev")

	cfg := load(t)
	assert.Equal(t, []string{"https://halimcho.dev"}, cfg.AllowedOrigins)
}
