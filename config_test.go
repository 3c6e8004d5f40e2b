package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ID", "app-123")
	t.Setenv("APP_SECRET", "s3cret")
	t.Setenv("BASE_URL", "https://tokens.example.com")
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	for _, key := range []string{"PORT", "AUTH_URL", "TOKEN_URL", "LONG_LIVED_URL", "SCOPES", "HTTP_TIMEOUT", "STATE_SIGNING_KEY", "ENVIRONMENT", "LOG_LEVEL"} {
		unsetEnv(t, key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "app-123", cfg.AppID)
	assert.Equal(t, "s3cret", cfg.AppSecret)
	assert.Equal(t, "https://www.instagram.com/oauth/authorize", cfg.AuthURL)
	assert.Equal(t, "https://api.instagram.com/oauth/access_token", cfg.TokenURL)
	assert.Equal(t, "https://graph.instagram.com/access_token", cfg.LongLivedURL)
	assert.Equal(t, []string{
		"instagram_business_basic",
		"instagram_business_manage_messages",
		"instagram_business_manage_comments",
		"instagram_business_content_publish",
		"instagram_business_manage_insights",
	}, cfg.Scopes)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.StateSigningKey)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "https://tokens.example.com/auth/callback", cfg.RedirectURI())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SCOPES", "instagram_business_basic,instagram_business_manage_insights")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("STATE_SIGNING_KEY", "secret-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"instagram_business_basic", "instagram_business_manage_insights"}, cfg.Scopes)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []byte("secret-key"), cfg.StateSigningKey)
}

func TestLoadConfig_RequiredVars(t *testing.T) {
	for _, key := range []string{"APP_ID", "APP_SECRET", "BASE_URL"} {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			unsetEnv(t, key)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadConfig_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"tokens.example.com", "ftp://tokens.example.com", "https://", "https://tokens.example.com?x=1"} {
		t.Run(base, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("BASE_URL", base)

			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_TIMEOUT", "0s")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfig_RedirectURI(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://tokens.example.com", "https://tokens.example.com/auth/callback"},
		{"https://tokens.example.com/", "https://tokens.example.com/auth/callback"},
		{"https://tokens.example.com//", "https://tokens.example.com/auth/callback"},
		{"https://example.com/ig", "https://example.com/ig/auth/callback"},
		{"http://localhost:8000/", "http://localhost:8000/auth/callback"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			cfg := Config{BaseURL: tt.base}
			assert.Equal(t, tt.want, cfg.RedirectURI())
		})
	}
}

func TestConfig_Endpoints(t *testing.T) {
	cfg := Config{
		AuthURL:      "https://auth.example.com/authorize",
		TokenURL:     "https://auth.example.com/token",
		LongLivedURL: "https://graph.example.com/access_token",
	}

	ep := cfg.Endpoints()
	assert.Equal(t, "https://auth.example.com/authorize", ep.OAuth.AuthURL)
	assert.Equal(t, "https://auth.example.com/token", ep.OAuth.TokenURL)
	assert.Equal(t, oauth2.AuthStyleInParams, ep.OAuth.AuthStyle)
	assert.Equal(t, "https://graph.example.com/access_token", ep.LongLivedURL)
}
