package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers for the document store.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	AppEnv      string `validate:"required,oneof=development production test"`
	AppPort     string `validate:"required"`
	BodyLimitMB int    `validate:"gt=0"`

	StorageDriver  string `validate:"required,oneof=mongo memory"`
	MongoURI       string `validate:"required_if=StorageDriver mongo"`
	MongoDatabase  string `validate:"required_if=StorageDriver mongo"`
	DatabaseDriver string `validate:"required,oneof=postgres sqlite"`
	DatabaseDSN    string `validate:"required"`

	JWTSecret     string `validate:"required"`
	AdminEmail    string `validate:"required,email"`
	AdminPassword string `validate:"required"`

	RabbitMQURL    string
	RedisURL       string
	ReviewCacheTTL time.Duration

	S3Bucket        string
	S3PublicBaseURL string
	AWSRegion       string
	AWSEndpoint     string

	StripeSecretKey string
	StripeCurrency  string
	FrontendURL     string
}

// IsDevelopment reports whether internal error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads an optional .env file, then environment variables through viper.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds and validates a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:          v.GetString("APP_ENV"),
		AppPort:         v.GetString("APP_PORT"),
		BodyLimitMB:     v.GetInt("BODY_LIMIT_MB"),
		StorageDriver:   v.GetString("STORAGE_DRIVER"),
		MongoURI:        v.GetString("MONGODB_URI"),
		MongoDatabase:   v.GetString("MONGODB_DATABASE"),
		DatabaseDriver:  v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		RedisURL:        v.GetString("REDIS_URL"),
		ReviewCacheTTL:  v.GetDuration("REVIEW_CACHE_TTL"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3PublicBaseURL: v.GetString("S3_PUBLIC_BASE_URL"),
		AWSRegion:       v.GetString("AWS_REGION"),
		AWSEndpoint:     v.GetString("AWS_ENDPOINT"),
		StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
		StripeCurrency:  v.GetString("STRIPE_CURRENCY"),
		FrontendURL:     v.GetString("FRONTEND_URL"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewViper returns a viper instance carrying the service defaults, for tests
// and tools. Secrets have no defaults and must be set before FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_PORT", ":4000")
	v.SetDefault("BODY_LIMIT_MB", 10)
	v.SetDefault("STORAGE_DRIVER", StorageMongo)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "shopfront")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=shopfront port=5432 sslmode=disable")
	v.SetDefault("REVIEW_CACHE_TTL", 5*time.Minute)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("STRIPE_CURRENCY", "usd")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
}
