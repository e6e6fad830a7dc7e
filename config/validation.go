package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the loaded configuration and reports every problem at once
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errors []string
	add := func(field, msg string) {
		errors = append(errors, ValidationError{Field: field, Message: msg}.Error())
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	if u, err := url.Parse(cfg.RecommenderURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("RECOMMENDER_URL", "must be an absolute URL")
	}
	if cfg.RecommenderTimeout <= 0 {
		add("RECOMMENDER_TIMEOUT", "must be positive")
	}

	if cfg.MongoURI == "" {
		add("MONGO_URI", "is required")
	}
	switch cfg.HistoryDispatch {
	case DispatchInline, DispatchQueue:
	default:
		add("HISTORY_DISPATCH", fmt.Sprintf("must be %q or %q", DispatchInline, DispatchQueue))
	}

	if cfg.CacheTTL <= 0 {
		add("CACHE_TTL", "must be positive")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		add("RATE_LIMIT_RPS", "rate and burst must be positive")
	}
	if cfg.MaxImageBytes <= 0 {
		add("MAX_IMAGE_BYTES", "must be positive")
	}
	if cfg.MaxImagePixels <= 0 {
		add("MAX_IMAGE_PIXELS", "must be positive")
	}

	// Sensitive values
	if cfg.JWTSecret == "" {
		if env == CI {
			add("TEST_JWT_SECRET", "environment variable is required in CI environment")
		} else {
			add("jwt_secret", "secret is required")
		}
	}
	if env == Production {
		if cfg.RedisURL == "" {
			add("redis_url", "secret is required")
		}
		if cfg.DBPassword == "" {
			add("db_password", "secret is required")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
