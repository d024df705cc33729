// Package config reads service configuration from the environment.
// Missing money-critical settings (database, payment key) are not
// fatal at startup; the affected endpoints fail per request instead.
package config

import (
	"os"
	"strings"
)

type Config struct {
	Port        string
	DatabaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string

	AdminUsername string
	AdminPassword string
	AdminAPIToken string

	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	NotifyFrom string
	NotifyTo   []string
}

func Load() *Config {
	return &Config{
		Port:                getenv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		AdminUsername:       os.Getenv("ADMIN_USERNAME"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		AdminAPIToken:       os.Getenv("ADMIN_API_TOKEN"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getenv("SMTP_PORT", "587"),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		NotifyFrom:          os.Getenv("ORDER_NOTIFY_FROM"),
		NotifyTo:            splitList(os.Getenv("ORDER_NOTIFY_TO")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
