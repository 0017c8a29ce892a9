package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"fundi/internal/pkg/validator"
)

const (
	defaultMpesaBaseURL = "https://sandbox.safaricom.co.ke"
	defaultMpesaTimeout = "30s"
)

// MpesaRuntimeConfig carries everything the gateway client and payment
// ledger need. It is loaded once and threaded into constructors; nothing
// reads M-Pesa settings from the environment after startup.
type MpesaRuntimeConfig struct {
	BaseURL        string `validate:"required,url"`
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string `validate:"omitempty,numeric"`
	Passkey        string
	CallbackURL    string `validate:"omitempty,url"`
	Timeout        time.Duration
}

func LoadMpesaRuntimeConfig() (*MpesaRuntimeConfig, error) {
	cfg := &MpesaRuntimeConfig{
		BaseURL:        strings.TrimRight(strings.TrimSpace(getEnv("MPESA_API_URL", defaultMpesaBaseURL)), "/"),
		ConsumerKey:    strings.TrimSpace(os.Getenv("MPESA_CONSUMER_KEY")),
		ConsumerSecret: strings.TrimSpace(os.Getenv("MPESA_CONSUMER_SECRET")),
		Shortcode:      strings.TrimSpace(os.Getenv("MPESA_SHORTCODE")),
		Passkey:        strings.TrimSpace(os.Getenv("MPESA_PASSKEY")),
		CallbackURL:    strings.TrimSpace(os.Getenv("MPESA_CALLBACK_URL")),
	}

	var err error
	cfg.Timeout, err = parseDurationEnv("MPESA_TIMEOUT", defaultMpesaTimeout)
	if err != nil {
		return nil, err
	}

	if problems := validator.Validate(cfg); problems != nil {
		return nil, fmt.Errorf("invalid M-Pesa configuration: %v", problems)
	}
	return cfg, nil
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(name, def string) (time.Duration, error) {
	raw := getEnv(name, def)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s=%q: must be positive", name, raw)
	}
	return d, nil
}
