package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/startin-app/startin/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "https://jobs.example.edu", cfg.Server.BaseURL)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "startin-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 6, cfg.Auth.Signup.CodeDigits)
	require.Equal(t, 5*time.Minute, cfg.Auth.Signup.CodeTTL)
	require.Equal(t, 2*time.Hour, cfg.Auth.Reset.TokenTTL)
	require.Equal(t, 48, cfg.Auth.Reset.TokenLength)
	require.Equal(t, "admin@example.edu", cfg.Auth.Admin.Email)
	require.Equal(t, 10, cfg.Auth.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.Auth.RateLimit.Window)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, "s3", cfg.Storage.Driver)
	require.Equal(t, "startin-resumes", cfg.Storage.S3.Bucket)
	require.Equal(t, int64(5242880), cfg.Storage.Limits.MaxUploadBytes)

	require.False(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@every 30m", cfg.Maintenance.Schedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 6, cfg.Auth.Signup.CodeDigits)
	require.Equal(t, 10*time.Minute, cfg.Auth.Signup.CodeTTL)
	require.Equal(t, time.Hour, cfg.Auth.Reset.TokenTTL)
	require.Equal(t, "local", cfg.Storage.Driver)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.Schedule)
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := AuthConfig{
		JWT: JWTSettings{
			Secret: "secret",
			Issuer: "issuer",
			TTL:    30 * time.Minute,
		},
	}

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.JWTConfig{
		Secret:         "secret",
		Issuer:         "issuer",
		AccessTokenTTL: 30 * time.Minute,
	}, jwtCfg)
}

func TestAuthConfigAdaptersFallback(t *testing.T) {
	var cfg AuthConfig

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.DefaultAccessTokenTTL, jwtCfg.AccessTokenTTL)

	require.Equal(t, defaultCodeDigits, cfg.CodeDigits())
	require.Equal(t, defaultCodeTTL, cfg.CodeTTL())
	require.Equal(t, defaultResetTTL, cfg.ResetTokenTTL())
	require.Equal(t, defaultResetLength, cfg.ResetTokenLength())
}

func TestEmailConfigAdapter(t *testing.T) {
	cfg := EmailConfig{
		SMTP: SMTPConfig{
			Enabled:  true,
			Host:     "smtp.example.com",
			Port:     2525,
			Username: "user",
			Password: "pass",
			From:     "no-reply@example.com",
			UseTLS:   true,
			Timeout:  10 * time.Second,
		},
	}

	settings := cfg.SMTPSettings()
	require.True(t, settings.Enabled)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, 2525, settings.Port)
	require.Equal(t, "no-reply@example.com", settings.From)
	require.Equal(t, 10*time.Second, settings.Timeout)
}

func TestApplyRuntimeDefaultsGeneratesJWTSecret(t *testing.T) {
	cfg := &Config{}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.True(t, generated["auth.jwt.secret"])
	require.NotEmpty(t, cfg.Auth.JWT.Secret)

	// A configured secret is never overwritten.
	cfg.Auth.JWT.Secret = "keep-me"
	generated, err = ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.False(t, generated["auth.jwt.secret"])
	require.Equal(t, "keep-me", cfg.Auth.JWT.Secret)
}
