package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

const callbackPath = "/auth/callback"

type Config struct {
	Port int `envconfig:"port" default:"8000"`

	AppID     string `envconfig:"app_id" required:"true"`
	AppSecret string `envconfig:"app_secret" required:"true"`

	// BaseURL is the externally reachable URL of this service. The
	// redirect URI registered with Instagram is derived from it.
	BaseURL string `envconfig:"base_url" required:"true"`

	AuthURL      string   `envconfig:"auth_url" default:"https://www.instagram.com/oauth/authorize"`
	TokenURL     string   `envconfig:"token_url" default:"https://api.instagram.com/oauth/access_token"`
	LongLivedURL string   `envconfig:"long_lived_url" default:"https://graph.instagram.com/access_token"`
	Scopes       []string `envconfig:"scopes" default:"instagram_business_basic,instagram_business_manage_messages,instagram_business_manage_comments,instagram_business_content_publish,instagram_business_manage_insights"`

	HTTPTimeout time.Duration `envconfig:"http_timeout" default:"10s"`

	StateSigningKey []byte `envconfig:"state_signing_key"`

	Environment string `envconfig:"environment" default:"development"`
	LogLevel    string `envconfig:"log_level" default:"info"`
}

// LoadConfig reads an optional .env file and then the process
// environment. It is called once at startup.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.New("BASE_URL must not carry a query or fragment")
	}

	if len(c.Scopes) == 0 {
		return errors.New("SCOPES must not be empty")
	}

	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}

	return nil
}

// RedirectURI is the callback URL presented to Instagram on /login and on
// the short-lived token exchange. Both must match exactly.
func (c Config) RedirectURI() string {
	return strings.TrimRight(c.BaseURL, "/") + callbackPath
}

func (c Config) ClientCredentials() ClientCredentials {
	return ClientCredentials{
		ClientID:     c.AppID,
		ClientSecret: c.AppSecret,
	}
}

func (c Config) Endpoints() Endpoints {
	return Endpoints{
		OAuth: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		LongLivedURL: c.LongLivedURL,
	}
}

func newOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.AppID,
		ClientSecret: cfg.AppSecret,
		// Instagram expects a comma separated scope list, while oauth2
		// joins Scopes with spaces.
		Scopes:      []string{strings.Join(cfg.Scopes, ",")},
		Endpoint:    cfg.Endpoints().OAuth,
		RedirectURL: cfg.RedirectURI(),
	}
}
