package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	AWS       AWSConfig       `yaml:"aws"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	APNs      APNsConfig      `yaml:"apns"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// TrustedProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustedProxy bool `yaml:"trusted_proxy"`
}

// DatabaseConfig holds database configuration.
// Driver is "postgres" (default) or "memory".
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds the S3 settings for avatar storage
type AWSConfig struct {
	Region     string `yaml:"region"`
	S3Bucket   string `yaml:"s3_bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"`
	PublicURL  string `yaml:"public_url"`
	DisableSSL bool   `yaml:"disable_ssl"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret  string `yaml:"secret"`
	ExpDays int    `yaml:"exp_days"`
}

// LogConfig holds logging configuration.
// When File is set, logs are also written there with rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// RedisConfig holds the analytics cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// APNsConfig holds push notification settings. An empty CertFile disables push.
type APNsConfig struct {
	CertFile     string `yaml:"cert_file"`
	CertPassword string `yaml:"cert_password"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// RateLimitConfig bounds register/login attempts per client IP
type RateLimitConfig struct {
	AuthPerMinute int `yaml:"auth_per_minute"`
	AuthBurst     int `yaml:"auth_burst"`
}

// Load reads configuration from a YAML file, then applies environment overrides.
// A .env file next to the process is loaded first when present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults and environment overrides
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// missing .env is fine
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	overrideString(&c.Database.Host, "DATABASE_HOST")
	overrideString(&c.Database.Password, "DATABASE_PASSWORD")
	overrideString(&c.JWT.Secret, "JWT_SECRET")
	overrideString(&c.AWS.AccessKey, "AWS_ACCESS_KEY")
	overrideString(&c.AWS.SecretKey, "AWS_SECRET_KEY")
	overrideString(&c.Redis.Addr, "REDIS_ADDR")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	overrideString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5001
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.ExpDays == 0 {
		c.JWT.ExpDays = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 300
	}
	if c.RateLimit.AuthPerMinute == 0 {
		c.RateLimit.AuthPerMinute = 20
	}
	if c.RateLimit.AuthBurst == 0 {
		c.RateLimit.AuthBurst = 5
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
