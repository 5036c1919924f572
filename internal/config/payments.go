package config

import (
	"fmt"
	"os"
)

// Payments holds the payment provider credentials. Loaded once at startup;
// a misconfigured provider fails the process instead of every request.
type Payments struct {
	KeyID         string
	KeySecret     string
	BaseURL       string
	Currency      string
	WebhookSecret string
}

func LoadPayments() (*Payments, error) {
	p := &Payments{
		KeyID:         os.Getenv("PAYMENT_KEY_ID"),
		KeySecret:     os.Getenv("PAYMENT_KEY_SECRET"),
		BaseURL:       envOrDefault("PAYMENT_BASE_URL", "https://api.payments.example.com"),
		Currency:      envOrDefault("PAYMENT_CURRENCY", "INR"),
		WebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
	}

	if p.KeyID == "" || p.KeySecret == "" {
		return nil, fmt.Errorf("payments: PAYMENT_KEY_ID and PAYMENT_KEY_SECRET are required")
	}
	if p.WebhookSecret == "" {
		// Provider signs verification callbacks with the key secret by default.
		p.WebhookSecret = p.KeySecret
	}
	return p, nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
