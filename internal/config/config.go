package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Completion CompletionConfig `mapstructure:"completion"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Mail       MailConfig       `mapstructure:"mail"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	SetupCache SetupCacheConfig `mapstructure:"setup_cache"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the persistence backend. Driver is "mongo" or "memory".
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	Expiration             time.Duration `mapstructure:"expiration"`
	VerificationExpiration time.Duration `mapstructure:"verification_expiration"`
}

// CompletionConfig points at an OpenAI-compatible chat completion endpoint.
// An empty APIKey selects the mock generation strategy.
type CompletionConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	Stdout      bool   `mapstructure:"stdout"`
	JSON        bool   `mapstructure:"json"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// MailConfig configures Mailgun. Mail is disabled unless both Domain and APIKey are set.
type MailConfig struct {
	Domain      string `mapstructure:"domain"`
	APIKey      string `mapstructure:"api_key"`
	SenderEmail string `mapstructure:"sender_email"`
	SenderName  string `mapstructure:"sender_name"`
	BaseURL     string `mapstructure:"base_url"` // public URL used in verification links
}

type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	PerSecond     int  `mapstructure:"per_second"`
	Burst         int  `mapstructure:"burst"`
	AuthPerMinute int  `mapstructure:"auth_per_minute"`
}

type SetupCacheConfig struct {
	SizeBytes int           `mapstructure:"size_bytes"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s") // plan generation can be slow

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fittrack")

	// Every key must have a default for AutomaticEnv to reach it through Unmarshal.
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("jwt.verification_expiration", "24h")

	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.base_url", "")
	v.SetDefault("completion.model", "gpt-4o-mini")
	v.SetDefault("completion.temperature", 0.7)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.stdout", true)
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.sentry_dsn", "")
	v.SetDefault("logging.environment", "development")

	v.SetDefault("mail.domain", "")
	v.SetDefault("mail.api_key", "")
	v.SetDefault("mail.sender_email", "no-reply@fittrack.local")
	v.SetDefault("mail.sender_name", "FitTrack")
	v.SetDefault("mail.base_url", "http://localhost:8080")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.per_second", 20)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.auth_per_minute", 5)

	v.SetDefault("setup_cache.size_bytes", 1024*1024)
	v.SetDefault("setup_cache.ttl", "24h")
}
