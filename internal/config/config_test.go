package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:           "prod",
		Port:          8080,
		APIPrefix:     "/api",
		StorageDriver: StoragePostgres,
		JWTSecret:     "s3cret",
		JWTTTLHours:   24,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{name: "secret required in prod", mutate: func(c *Config) { c.JWTSecret = "" }, wantMsg: "JWT_SECRET"},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "sqlite" }, wantMsg: "STORAGE_DRIVER"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantMsg: "PORT"},
		{name: "zero ttl", mutate: func(c *Config) { c.JWTTTLHours = 0 }, wantMsg: "JWT_TTL_HOURS"},
		{name: "prefix without slash", mutate: func(c *Config) { c.APIPrefix = "api" }, wantMsg: "API_PREFIX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_DevAllowsMissingSecret(t *testing.T) {
	c := validConfig()
	c.Env = "dev"
	c.JWTSecret = ""

	require.NoError(t, c.Validate())
	require.Equal(t, "taskhub-dev-secret", c.SigningSecret())
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("METRICS_ENABLED", "false")

	c := Load()

	require.Equal(t, 9090, c.Port)
	require.Equal(t, StorageMemory, c.StorageDriver)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSAllowedOrigins)
	require.Equal(t, 24, c.JWTTTLHours)
	require.Equal(t, "postgres://u:p@db:5432/x", c.DBURL)
	require.False(t, c.MetricsEnabled)
}
