package app

import (
	"time"

	"github.com/startin-app/startin/internal/auth"
)

const (
	defaultCodeDigits  = 6
	defaultCodeTTL     = 10 * time.Minute
	defaultResetTTL    = time.Hour
	defaultResetLength = 32
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// CodeDigits returns the configured verification code length with fallback.
func (c AuthConfig) CodeDigits() int {
	if c.Signup.CodeDigits <= 0 {
		return defaultCodeDigits
	}
	return c.Signup.CodeDigits
}

// CodeTTL returns the configured verification code validity with fallback.
func (c AuthConfig) CodeTTL() time.Duration {
	if c.Signup.CodeTTL <= 0 {
		return defaultCodeTTL
	}
	return c.Signup.CodeTTL
}

// ResetTokenTTL returns the configured reset token validity with fallback.
func (c AuthConfig) ResetTokenTTL() time.Duration {
	if c.Reset.TokenTTL <= 0 {
		return defaultResetTTL
	}
	return c.Reset.TokenTTL
}

// ResetTokenLength returns the configured reset token byte length with fallback.
func (c AuthConfig) ResetTokenLength() int {
	if c.Reset.TokenLength <= 0 {
		return defaultResetLength
	}
	return c.Reset.TokenLength
}
