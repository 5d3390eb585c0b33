// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	JWT         JWTConfig
	Cookie      CookieConfig
	CORS        CORSConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Email       EmailConfig
	Events      EventsConfig
	I18n        I18nConfig
	Frontend    FrontendConfig
	Admin       AdminConfig
}

type FrontendConfig struct {
	BaseURL       string
	ResetPassPath string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// StoreConfig selects the persistence adapter: postgres, mongo or memory.
type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  int // seconds
}

type JWTConfig struct {
	SecretKey      string
	ResetSecretKey string
	AccessTokenTTL int // in hours
	ResetTokenTTL  int // in minutes
}

type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
	// LocalUploadDir receives uploads when no AWS credentials are configured.
	LocalUploadDir  string
}

type PaymentConfig struct {
	StripeSecretKey string
	Currency        string
}

type EmailConfig struct {
	MailgunDomain string
	MailgunAPIKey string
	Sender        string
}

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "storefront"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "storefront"),
			Timeout:  getEnvAsInt("MONGO_TIMEOUT", 10),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			ResetSecretKey: getEnv("JWT_RESET_SECRET", defaultJWTSecret+"-reset"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 1), // 1 hour
			ResetTokenTTL:  getEnvAsInt("JWT_RESET_TTL", 60), // 1 hour
		},
		Cookie: CookieConfig{
			Name:   getEnv("COOKIE_NAME", "accessToken"),
			Domain: getEnv("COOKIE_DOMAIN", ""),
			Secure: getEnvAsBool("COOKIE_SECURE", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "storefront-assets"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
			LocalUploadDir:  getEnv("UPLOADS_DIR", "./uploads"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:        getEnv("PAYMENT_CURRENCY", "usd"),
		},
		Email: EmailConfig{
			MailgunDomain: getEnv("MAILGUN_DOMAIN", ""),
			MailgunAPIKey: getEnv("MAILGUN_API_KEY", ""),
			Sender:        getEnv("MAIL_SENDER", "Storefront <noreply@storefront.local>"),
		},
		Events: EventsConfig{
			RabbitMQURL: getEnv("RABBITMQ_URL", ""),
			Exchange:    getEnv("RABBITMQ_EXCHANGE", "storefront.events"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Frontend: FrontendConfig{
			BaseURL:       getEnv("FRONTEND_URL", "http://localhost:8080"),
			ResetPassPath: getEnv("RESET_PASSWORD_PATH", "/reset-password"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@storefront.local"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "mongo", "memory":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	if c.Environment != "production" {
		return nil
	}

	if c.JWT.SecretKey == defaultJWTSecret {
		return fmt.Errorf("JWT secret key must be changed in production")
	}
	if c.JWT.ResetSecretKey == defaultJWTSecret+"-reset" || c.JWT.ResetSecretKey == c.JWT.SecretKey {
		return fmt.Errorf("JWT reset secret must be set and differ from the access secret in production")
	}
	if c.Store.Driver == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in production")
	}
	if c.Store.Driver == "memory" {
		return fmt.Errorf("memory store is not allowed in production")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
