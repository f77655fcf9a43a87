package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"safeher/logger"
	"safeher/utils"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	URI             string
	DatabaseName    string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	RetryWrites     bool
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	Issuer     string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	CountryCode string
}

func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m MailConfig) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

type WatchdogConfig struct {
	GracePeriod       time.Duration
	ReconcileInterval time.Duration
	SendTimeout       time.Duration
	Timezone          string
}

type Config struct {
	Env           string
	Port          string
	GinMode       string
	ClientURL     string
	EncryptionKey string
	RedisURL      string
	RateLimit     string
	AuthRateLimit string

	Database DatabaseConfig
	JWT      JWTConfig
	Twilio   TwilioConfig
	Mail     MailConfig
	Watchdog WatchdogConfig
	Log      logger.LogConfig
}

var requiredEnvVars = []string{
	"MONGO_URI",
	"JWT_SECRET_KEY",
	"ENCRYPTION_KEY",
	"CLIENT_URL",
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	for _, key := range requiredEnvVars {
		if utils.IsPlaceholder(os.Getenv(key)) {
			return nil, fmt.Errorf("missing or invalid environment variable: %s", key)
		}
	}

	cfg := &Config{
		Env:           utils.GetEnvAsString("GO_ENV", "development"),
		Port:          utils.GetEnvAsString("PORT", "5000"),
		GinMode:       utils.GetEnvAsString("GIN_MODE", "release"),
		ClientURL:     os.Getenv("CLIENT_URL"),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		RedisURL:      utils.GetEnvAsString("REDIS_URL", ""),
		RateLimit:     utils.GetEnvAsString("RATE_LIMIT", "100-15M"),
		AuthRateLimit: utils.GetEnvAsString("AUTH_RATE_LIMIT", "20-15M"),
		Database: DatabaseConfig{
			URI:             os.Getenv("MONGO_URI"),
			DatabaseName:    utils.GetEnvAsString("MONGO_DB", "safeher"),
			MaxPoolSize:     utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
			MinPoolSize:     utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
			MaxConnIdleTime: time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
			RetryWrites:     utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),
		},
		JWT: JWTConfig{
			SecretKey:  os.Getenv("JWT_SECRET_KEY"),
			Expiration: time.Duration(utils.GetEnvAsInt("JWT_EXPIRATION_TIME", 30*24*3600)) * time.Second,
			Issuer:     utils.GetEnvAsString("JWT_ISSUER", "safeher"),
		},
		Twilio: TwilioConfig{
			AccountSID:  utils.GetEnvAsString("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   utils.GetEnvAsString("TWILIO_AUTH_TOKEN", ""),
			FromNumber:  utils.GetEnvAsString("TWILIO_PHONE_NUMBER", ""),
			CountryCode: utils.GetEnvAsString("SMS_COUNTRY_CODE", "91"),
		},
		Mail: MailConfig{
			Host:     utils.GetEnvAsString("MAIL_HOST", "smtp.gmail.com"),
			Port:     utils.GetEnvAsInt("MAIL_PORT", 587),
			Username: utils.GetEnvAsString("MAIL_USERNAME", ""),
			Password: utils.GetEnvAsString("MAIL_PASSWORD", ""),
			From:     utils.GetEnvAsString("MAIL_FROM", ""),
		},
		Watchdog: WatchdogConfig{
			GracePeriod:       utils.GetEnvAsDuration("ALERT_GRACE_PERIOD", 2*time.Minute),
			ReconcileInterval: utils.GetEnvAsDuration("RECONCILE_INTERVAL", 30*time.Second),
			SendTimeout:       utils.GetEnvAsDuration("SEND_TIMEOUT", 10*time.Second),
			Timezone:          utils.GetEnvAsString("ALERT_TIMEZONE", "Asia/Kolkata"),
		},
		Log: logger.LogConfig{
			Level:      utils.GetEnvAsString("LOG_LEVEL", "info"),
			Filename:   utils.GetEnvAsString("LOG_FILENAME", ""),
			MaxSize:    utils.GetEnvAsInt("LOG_MAX_SIZE", 100),
			MaxAge:     utils.GetEnvAsInt("LOG_MAX_AGE", 30),
			MaxBackups: utils.GetEnvAsInt("LOG_MAX_BACKUPS", 5),
		},
	}

	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(c.EncryptionKey))
	}
	if c.Watchdog.GracePeriod < 0 {
		return fmt.Errorf("ALERT_GRACE_PERIOD must not be negative")
	}
	if c.Watchdog.ReconcileInterval < time.Second {
		return fmt.Errorf("RECONCILE_INTERVAL must be at least 1s")
	}
	if c.Watchdog.SendTimeout <= 0 {
		return fmt.Errorf("SEND_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Watchdog.Timezone); err != nil {
		return fmt.Errorf("invalid ALERT_TIMEZONE %q: %w", c.Watchdog.Timezone, err)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
