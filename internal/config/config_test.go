package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/config"
)

func TestAssistantConfig_Providers(t *testing.T) {
	cfg := config.AssistantConfig{
		Secondary: config.AssistantProviderConfig{Provider: "openai", APIKey: "sk-secondary"},
	}
	providers := cfg.Providers()
	require.Len(t, providers, 1)
	assert.Equal(t, "openai", providers[0].Provider)

	cfg.Primary = config.AssistantProviderConfig{Provider: "claude"}
	providers = cfg.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "claude", providers[0].Provider)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "terroir.db", cfg.DB.SQLitePath)
	assert.Equal(t, 128, cfg.Import.CacheSize)
	assert.Equal(t, int64(2<<20), cfg.Import.MaxInputBytes)
	assert.False(t, cfg.Import.Strict)
	assert.Empty(t, cfg.Assistant.Providers())
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TERROIR_DB_DRIVER", "sqlite")
	t.Setenv("TERROIR_IMPORT_STRICT", "true")
	t.Setenv("TERROIR_IMPORT_CACHE_SIZE", "4")
	t.Setenv("TERROIR_ASSISTANT_PRIMARY_PROVIDER", "claude")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.True(t, cfg.Import.Strict)
	assert.Equal(t, 4, cfg.Import.CacheSize)
	assert.Equal(t, "claude", cfg.Assistant.Primary.Provider)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("TERROIR_DB_DRIVER", "mysql")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("TERROIR_SERVER_ENVIRONMENT", "production")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("TERROIR_AUTH_SECRET", "s3cret")
	_, err = config.Load()
	assert.NoError(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
}
