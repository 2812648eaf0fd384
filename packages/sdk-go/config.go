package sdk

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SecureAI-Team/aiguardrails/internal/config"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 5 * time.Second

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Config holds the connection settings of a Client. A Client copies its Config
// at construction and never changes it afterwards.
type Config struct {
	BaseURL string        `validate:"required,http_url"`
	AppID   string        `validate:"required"`
	Secret  string        `validate:"required"`
	Timeout time.Duration `validate:"gt=0"`
}

// normalize strips a single trailing slash so BaseURL+path never doubles the
// separator, and applies the default timeout.
func (c Config) normalize() Config {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

func (c Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("aiguardrails: invalid client config: %w", err)
	}
	return nil
}

// AuthHeaders returns the headers attached to every request. They are derived
// from cfg on each call.
func AuthHeaders(cfg Config) http.Header {
	h := make(http.Header, 3)
	h.Set("Content-Type", "application/json")
	h.Set("X-App-Id", cfg.AppID)
	h.Set("X-App-Secret", cfg.Secret)
	return h
}

// ConfigFromEnv reads AIGUARDRAILS_BASE_URL, AIGUARDRAILS_APP_ID,
// AIGUARDRAILS_APP_SECRET (or AIGUARDRAILS_APP_SECRET_FILE) and
// AIGUARDRAILS_TIMEOUT.
func ConfigFromEnv() (Config, error) {
	settings, err := config.Resolve(config.Profile{}, DefaultTimeout)
	if err != nil {
		return Config{}, err
	}
	return configFromSettings(settings), nil
}

func configFromSettings(s config.Settings) Config {
	return Config{
		BaseURL: s.BaseURL,
		AppID:   s.AppID,
		Secret:  s.Secret,
		Timeout: s.Timeout,
	}
}
