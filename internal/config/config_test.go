package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads. Viper treats an empty
// variable as unset, so defaults apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CORS_ALLOWED_ORIGINS", "DB_DRIVER", "DB_DSN", "DB_AUTO_MIGRATE",
		"AUTH_MODE", "JWT_SECRET", "JWT_ISSUER", "JWT_AUDIENCE", "JWT_TOKEN_TTL",
		"AUTH_REMOTE_USER_URL", "AUTH_REMOTE_API_KEY", "OIDC_ISSUER", "OIDC_CLIENT_ID",
		"SMTP_HOST", "SMTP_PORT", "NOTIFY_EMAIL", "NOTIFY_PASSWORD", "NOTIFY_FROM_NAME",
		"SETTINGS_ATOMIC_WRITES", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/athletix.db", cfg.Database.DSN)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, AuthModeJWT, cfg.Auth.Mode)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Mail.Enabled())
	assert.False(t, cfg.Settings.AtomicWrites)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://athletix.app")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://localhost/athletix")
	t.Setenv("AUTH_MODE", "oidc")
	t.Setenv("OIDC_ISSUER", "https://issuer.example.com")
	t.Setenv("NOTIFY_EMAIL", "security@athletix.app")
	t.Setenv("NOTIFY_PASSWORD", "app-password")
	t.Setenv("SETTINGS_ATOMIC_WRITES", "true")
	t.Setenv("JWT_TOKEN_TTL", "15m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://athletix.app"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, AuthModeOIDC, cfg.Auth.Mode)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Mail.Enabled())
	assert.True(t, cfg.Settings.AtomicWrites)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=secret-from-env-file\nLOG_LEVEL=DEBUG\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides a variable that exists, even empty, so
	// these two must be truly unset. t.Setenv restores them afterwards.
	clearEnv(t)
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 5000},
			Database: DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
			Auth:     AuthConfig{Mode: AuthModeJWT, JWTSecret: "a-very-long-test-secret"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"jwt without secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 16 characters"},
		{"remote without url", func(c *Config) { c.Auth.Mode = AuthModeRemote }, "AUTH_REMOTE_USER_URL is required"},
		{"oidc without issuer", func(c *Config) { c.Auth.Mode = AuthModeOIDC }, "OIDC_ISSUER is required"},
		{"unknown mode", func(c *Config) { c.Auth.Mode = "saml" }, `AUTH_MODE "saml"`},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, `DB_DRIVER "mysql"`},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "PORT 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
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
