package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Mail providers understood by the email sender
const (
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
)

// Config holds application configuration
type Config struct {
	Port           string
	LogLevel       string
	APIBaseURL     string
	APITimeout     time.Duration
	SessionCookie  string
	AppHost        string
	MailProvider   string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
	SenderName     string
	SendGridAPIKey string
	ProbeSchedule  string
	ProbePath      string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	timeout, err := getEnvAsDuration("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000"),
		APITimeout:     timeout,
		SessionCookie:  getEnv("SESSION_COOKIE", "access_token"),
		AppHost:        getEnv("APP_HOST", "http://localhost:5173"),
		MailProvider:   getEnv("MAIL_PROVIDER", MailProviderSMTP),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "1025"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "no-reply@pricetracker.local"),
		SenderName:     getEnv("SENDER_NAME", "PriceTracker"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		ProbeSchedule:  getEnv("PROBE_SCHEDULE", "@every 1m"),
		ProbePath:      getEnv("PROBE_PATH", "/api/docs"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}
	if cfg.SessionCookie == "" {
		return nil, fmt.Errorf("SESSION_COOKIE is required")
	}
	if cfg.AppHost == "" {
		return nil, fmt.Errorf("APP_HOST is required")
	}
	switch cfg.MailProvider {
	case MailProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required")
		}
	case MailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required")
		}
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SENDER_EMAIL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
