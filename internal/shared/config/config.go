package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv string
	Port   string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	SMTP     SMTPConfig
	S3       S3Config

	JWTSecret     string
	SessionSecret string
	HashSecret    string

	// PublicBaseURL is used to build the invite link sent to employees.
	PublicBaseURL string

	Lifecycle LifecycleConfig
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Broker string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// S3Config is optional; without a bucket uploaded documents are not purged
// on hard delete.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// LifecycleConfig holds the tunables of the onboarding lifecycle. Defaults
// come from DefaultLifecycle and may be overridden by the YAML file named in
// LIFECYCLE_CONFIG.
type LifecycleConfig struct {
	InviteTTL         time.Duration `yaml:"invite_ttl"`
	OtpTTL            time.Duration `yaml:"otp_ttl"`
	OtpMaxAttempts    int           `yaml:"otp_max_attempts"`
	OtpLockDuration   time.Duration `yaml:"otp_lock_duration"`
	OtpResendInterval time.Duration `yaml:"otp_resend_interval"`
	MailTimeout       time.Duration `yaml:"mail_timeout"`
	SummaryCacheTTL   time.Duration `yaml:"summary_cache_ttl"`
}

func DefaultLifecycle() LifecycleConfig {
	return LifecycleConfig{
		InviteTTL:         7 * 24 * time.Hour,
		OtpTTL:            10 * time.Minute,
		OtpMaxAttempts:    3,
		OtpLockDuration:   15 * time.Minute,
		OtpResendInterval: 60 * time.Second,
		MailTimeout:       10 * time.Second,
		SummaryCacheTTL:   time.Minute,
	}
}

// Load reads the process environment. godotenv is expected to have populated
// it from .env already.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv: getenv("APP_ENV", "development"),
		Port:   getenv("PORT", "3000"),
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getenv("DB_PORT", "5432"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{Addr: getenv("REDIS_ADDR", "localhost:6379")},
		Kafka: KafkaConfig{Broker: os.Getenv("KAFKA_BROKER")},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		S3: S3Config{
			Bucket:       os.Getenv("S3_BUCKET"),
			Region:       getenv("S3_REGION", "us-east-1"),
			BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
		},
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		HashSecret:    os.Getenv("HASH_SECRET"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:5173"),
		Lifecycle:     DefaultLifecycle(),
	}

	if path := os.Getenv("LIFECYCLE_CONFIG"); path != "" {
		lc, err := LoadLifecycle(path, cfg.Lifecycle)
		if err != nil {
			return nil, err
		}
		cfg.Lifecycle = lc
	}

	if v := os.Getenv("OTP_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: OTP_MAX_ATTEMPTS: %w", err)
		}
		cfg.Lifecycle.OtpMaxAttempts = n
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLifecycle overlays the YAML file at path on top of base. Fields absent
// from the file keep their base value.
func LoadLifecycle(path string, base LifecycleConfig) (LifecycleConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: read file %s: %w", path, err)
	}

	out := base
	if err := yaml.Unmarshal(b, &out); err != nil {
		return base, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := out.validate(); err != nil {
		return base, err
	}
	return out, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must be set")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("config: HASH_SECRET must be set")
	}
	if c.SessionSecret == "" {
		c.SessionSecret = c.JWTSecret
	}
	return c.Lifecycle.validate()
}

func (l LifecycleConfig) validate() error {
	if l.InviteTTL <= 0 {
		return fmt.Errorf("config: invite_ttl must be positive")
	}
	if l.OtpTTL <= 0 {
		return fmt.Errorf("config: otp_ttl must be positive")
	}
	if l.OtpMaxAttempts < 1 {
		return fmt.Errorf("config: otp_max_attempts must be at least 1")
	}
	if l.OtpLockDuration <= 0 {
		return fmt.Errorf("config: otp_lock_duration must be positive")
	}
	if l.MailTimeout <= 0 {
		return fmt.Errorf("config: mail_timeout must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
