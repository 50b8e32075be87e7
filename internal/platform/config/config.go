package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                 string
	DatabaseURL          string
	JWTSecret            string
	DataEncryptionKey    string
	Environment          string
	SeedTenantName       string
	SeedAdminEmail       string
	SeedAdminPassword    string
	SeedSystemAdminEmail    string
	SeedSystemAdminPassword string
	EmailFrom            string
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SMTPUseTLS           bool
	FrontendBaseURL      string
	PasswordResetTTL     time.Duration
	RunMigrations        bool
	RunSeed              bool
	MaxBodyBytes         int64
	RateLimitPerMinute   int
	RequestTimeout       time.Duration
	HRMSBaseURL          string
	HRMSAPIToken         string
	HRMSTimeout          time.Duration
	HRMSSyncInterval     time.Duration
	OverdueSweepInterval time.Duration
	ReadinessThreshold   int
	AllowDirectComplete  bool
	MetricsEnabled       bool
}

func Load() Config {
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		DataEncryptionKey:    getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:          getEnv("APP_ENV", "development"),
		SeedTenantName:       getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedAdminEmail:       getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedSystemAdminEmail:    getEnv("SEED_SYSADMIN_EMAIL", ""),
		SeedSystemAdminPassword: getEnv("SEED_SYSADMIN_PASSWORD", ""),
		EmailFrom:            getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:         getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:           getEnvBool("SMTP_USE_TLS", true),
		FrontendBaseURL:      getEnv("FRONTEND_BASE_URL", "http://localhost:8080"),
		PasswordResetTTL:     getEnvDuration("PASSWORD_RESET_TTL", 2*time.Hour),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:              getEnvBool("RUN_SEED", true),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		HRMSBaseURL:          getEnv("HRMS_BASE_URL", ""),
		HRMSAPIToken:         getEnv("HRMS_API_TOKEN", ""),
		HRMSTimeout:          getEnvDuration("HRMS_TIMEOUT", 10*time.Second),
		HRMSSyncInterval:     getEnvDuration("HRMS_SYNC_INTERVAL", 6*time.Hour),
		OverdueSweepInterval: getEnvDuration("OVERDUE_SWEEP_INTERVAL", 24*time.Hour),
		ReadinessThreshold:   getEnvInt("READINESS_THRESHOLD", 70),
		AllowDirectComplete:  getEnvBool("ALLOW_DIRECT_COMPLETE", false),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ReadinessThreshold < 0 || c.ReadinessThreshold > 100 {
		return fmt.Errorf("READINESS_THRESHOLD must be between 0 and 100")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.HRMSBaseURL != "" && c.HRMSTimeout <= 0 {
		return fmt.Errorf("HRMS_TIMEOUT must be positive when HRMS_BASE_URL is set")
	}
	return nil
}
