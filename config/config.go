package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// History dispatch modes
const (
	DispatchInline = "inline"
	DispatchQueue  = "queue"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string
	LogLevel       string

	// Recommendation service
	RecommenderURL     string
	RecommenderTimeout time.Duration
	FormDataTTL        time.Duration

	// History store
	MongoURI        string
	MongoDatabase   string
	HistoryDispatch string
	HistoryTimeout  time.Duration

	// Profile database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Session result cache
	CacheTTL time.Duration

	// Submission limits
	RateLimitRPS   float64
	RateLimitBurst int
	MaxImageBytes  int64
	MaxImageSide   int
	MaxImagePixels int64

	// Presentation
	DefaultImageURL string

	// Query image archive
	S3BucketName string
	AWSRegion    string

	// JWT configuration
	JWTSecret string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	env := GetEnvironment()
	cfg := &Config{}

	// Load configuration based on environment
	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadShared reads the settings that are plain environment variables in every environment.
func loadShared(cfg *Config) error {
	var err error

	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.RecommenderURL = getEnv("RECOMMENDER_URL", "http://localhost:5000")
	if cfg.RecommenderTimeout, err = getEnvDuration("RECOMMENDER_TIMEOUT", 30*time.Second); err != nil {
		return err
	}
	if cfg.FormDataTTL, err = getEnvDuration("FORM_DATA_TTL", 10*time.Minute); err != nil {
		return err
	}

	cfg.MongoDatabase = getEnv("MONGO_DATABASE", "recipefinder")
	cfg.HistoryDispatch = getEnv("HISTORY_DISPATCH", DispatchInline)
	if cfg.HistoryTimeout, err = getEnvDuration("HISTORY_TIMEOUT", 10*time.Second); err != nil {
		return err
	}

	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBName = getEnv("DB_NAME", "recipefinder")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")

	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisDB = 0 // This is a constant, not a secret

	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 2*time.Hour); err != nil {
		return err
	}
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 2); err != nil {
		return err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 5); err != nil {
		return err
	}
	maxImage, err := getEnvInt("MAX_IMAGE_BYTES", 10<<20)
	if err != nil {
		return err
	}
	cfg.MaxImageBytes = int64(maxImage)
	if cfg.MaxImageSide, err = getEnvInt("MAX_IMAGE_SIDE", 1024); err != nil {
		return err
	}
	maxPixels, err := getEnvInt("MAX_IMAGE_PIXELS", 40_000_000)
	if err != nil {
		return err
	}
	cfg.MaxImagePixels = int64(maxPixels)

	cfg.DefaultImageURL = getEnv("DEFAULT_IMAGE_URL", "/static/default.png")
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = getEnv("AWS_REGION", "us-east-1")

	return nil
}

// loadCIConfig loads configuration for CI environment using ONLY environment variables
func loadCIConfig(cfg *Config) error {
	if err := loadShared(cfg); err != nil {
		return err
	}

	cfg.MongoURI = os.Getenv("TEST_MONGO_URI")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("TEST_REDIS_URL")
	if cfg.JWTSecret == "" {
		return fmt.Errorf("TEST_JWT_SECRET environment variable is required in CI environment")
	}

	return nil
}

// loadDevConfig loads configuration for development and tests: environment
// variables (a .env file has already been merged in), with Docker secrets as a
// fallback for credentials.
func loadDevConfig(cfg *Config) error {
	if err := loadShared(cfg); err != nil {
		return err
	}

	cfg.MongoURI = secretOrEnv("mongo_uri", "MONGO_URI", "mongodb://localhost:27017")
	cfg.DBUser = secretOrEnv("db_user", "DB_USER", "postgres")
	cfg.DBPassword = secretOrEnv("db_password", "DB_PASSWORD", "")
	cfg.JWTSecret = secretOrEnv("jwt_secret", "JWT_SECRET", "")
	cfg.RedisPassword = secretOrEnv("redis_password", "REDIS_PASSWORD", "")
	cfg.RedisURL = secretOrEnv("redis_url", "REDIS_URL", "")

	return nil
}

// loadProdConfig loads configuration for production; credentials come ONLY from Docker secrets
func loadProdConfig(cfg *Config) error {
	if err := loadShared(cfg); err != nil {
		return err
	}

	cfg.MongoURI = readSecret("mongo_uri")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.RedisURL = readSecret("redis_url")

	return nil
}

// RedisAddr returns host:port for clients that cannot take a URL.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// PostgresDSN returns the profile database connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func secretOrEnv(secret, key, fallback string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return getEnv(key, fallback)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("must be an integer, got %q", v)}
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("must be a number, got %q", v)}
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("must be a duration, got %q", v)}
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
