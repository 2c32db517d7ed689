package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultUserCacheTTL    = 2 * time.Minute
	DefaultServiceTokenTTL = time.Hour
	DefaultTokenRenewLead  = time.Minute
	DefaultAttrID          = "mail"
)

type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay   time.Duration `koanf:"base_delay" mapstructure:"base_delay"`
	MaxDelay    time.Duration `koanf:"max_delay" mapstructure:"max_delay"`
}

type Config struct {
	Server          string        `koanf:"server" mapstructure:"server"`
	ClientID        string        `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret    string        `koanf:"client_secret" mapstructure:"client_secret"`
	Scope           string        `koanf:"scope" mapstructure:"scope"`
	AttrID          string        `koanf:"attr_id" mapstructure:"attr_id"`
	JWTSecret       string        `koanf:"jwt_secret" mapstructure:"jwt_secret"`
	JWTAlgorithm    string        `koanf:"jwt_algorithm" mapstructure:"jwt_algorithm"`
	RequestTimeout  time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
	UserCacheTTL    time.Duration `koanf:"user_cache_ttl" mapstructure:"user_cache_ttl"`
	ServiceTokenTTL time.Duration `koanf:"service_token_ttl" mapstructure:"service_token_ttl"`
	TokenRenewLead  time.Duration `koanf:"token_renew_lead" mapstructure:"token_renew_lead"`
	AutoRenewToken  bool          `koanf:"auto_renew_token" mapstructure:"auto_renew_token"`
	Retry           RetryConfig   `koanf:"retry" mapstructure:"retry"`
}

func DefaultConfig() Config {
	return Config{
		AttrID:          DefaultAttrID,
		JWTAlgorithm:    "HS256",
		RequestTimeout:  DefaultRequestTimeout,
		UserCacheTTL:    DefaultUserCacheTTL,
		ServiceTokenTTL: DefaultServiceTokenTTL,
		TokenRenewLead:  DefaultTokenRenewLead,
		Retry: RetryConfig{
			MaxAttempts: defaultRetryMaxAttempts,
			BaseDelay:   defaultRetryBaseDelay,
			MaxDelay:    defaultRetryMaxDelay,
		},
	}
}

func (c Config) Validate() error {
	server := strings.TrimSpace(c.Server)
	if server == "" {
		return fmt.Errorf("core: server is required")
	}
	if _, err := url.Parse(server); err != nil {
		return fmt.Errorf("core: server is not a valid url: %w", err)
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("core: client_id is required")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("core: client_secret is required")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("core: retry.max_attempts must not be negative")
	}
	return nil
}

func (c Config) retryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay,
		MaxDelay:    c.Retry.MaxDelay,
	}
}
