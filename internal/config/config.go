// Package config loads the process configuration once at startup. Nothing
// else in the module reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth modes select how bearer tokens on /api/settings are verified.
const (
	AuthModeJWT    = "jwt"    // HS256 tokens signed with JWT_SECRET
	AuthModeRemote = "remote" // identity provider's user endpoint
	AuthModeOIDC   = "oidc"   // OpenID Connect ID tokens
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Mail     MailConfig
	Settings SettingsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        int
	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver      string // sqlite | postgres
	DSN         string
	AutoMigrate bool
}

type AuthConfig struct {
	Mode          string
	JWTSecret     string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration
	RemoteUserURL string
	RemoteAPIKey  string
	OIDCIssuer    string
	OIDCClientID  string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

// Enabled reports whether an SMTP account is configured.
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

type SettingsConfig struct {
	// AtomicWrites runs a settings save in one store transaction.
	AtomicWrites bool
}

type LogConfig struct {
	Level  string
	Format string // text | json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 5000)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "data/athletix.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("AUTH_MODE", AuthModeJWT)
	v.SetDefault("JWT_TOKEN_TTL", "1h")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("NOTIFY_FROM_NAME", "Athletix Security")

	v.SetDefault("SETTINGS_ATOMIC_WRITES", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads envFile into the process environment when it exists, then
// builds a Config from the environment and defaults. Variables already set
// in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	ttl, err := time.ParseDuration(v.GetString("JWT_TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("config: JWT_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetInt("PORT"),
			CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:         v.GetString("DB_DSN"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			Mode:          strings.ToLower(v.GetString("AUTH_MODE")),
			JWTSecret:     v.GetString("JWT_SECRET"),
			JWTIssuer:     v.GetString("JWT_ISSUER"),
			JWTAudience:   v.GetString("JWT_AUDIENCE"),
			TokenTTL:      ttl,
			RemoteUserURL: v.GetString("AUTH_REMOTE_USER_URL"),
			RemoteAPIKey:  v.GetString("AUTH_REMOTE_API_KEY"),
			OIDCIssuer:    v.GetString("OIDC_ISSUER"),
			OIDCClientID:  v.GetString("OIDC_CLIENT_ID"),
		},
		Mail: MailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("NOTIFY_EMAIL"),
			Password: v.GetString("NOTIFY_PASSWORD"),
			FromName: v.GetString("NOTIFY_FROM_NAME"),
		},
		Settings: SettingsConfig{
			AtomicWrites: v.GetBool("SETTINGS_ATOMIC_WRITES"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected auth mode has what it needs.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE=jwt"))
		}
	case AuthModeRemote:
		if c.Auth.RemoteUserURL == "" {
			errs = append(errs, errors.New("AUTH_REMOTE_USER_URL is required when AUTH_MODE=remote"))
		}
	case AuthModeOIDC:
		if c.Auth.OIDCIssuer == "" {
			errs = append(errs, errors.New("OIDC_ISSUER is required when AUTH_MODE=oidc"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE %q is not supported", c.Auth.Mode))
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
