package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is the deployment the process runs in.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

var environmentAliases = map[string]Environment{
	"":            Development,
	"dev":         Development,
	"development": Development,
	"local":       Development,
	"test":        Test,
	"testing":     Test,
	"ci":          CI,
	"prod":        Production,
	"production":  Production,
}

// ParseEnvironment maps an APP_ENV/ENV value to an Environment.
func ParseEnvironment(value string) (Environment, error) {
	env, ok := environmentAliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("unknown environment %q", value)
	}
	return env, nil
}

// environmentValue returns the raw setting. APP_ENV wins over ENV.
func environmentValue() string {
	if v := os.Getenv("APP_ENV"); v != "" {
		return v
	}
	return os.Getenv("ENV")
}

// GetEnvironment determines the current environment. CI=true always means
// CI. An unrecognised value is returned as-is so LoadConfig can reject it.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	value := environmentValue()
	env, err := ParseEnvironment(value)
	if err != nil {
		return Environment(value)
	}
	return env
}

// IsDevelopment reports whether logs should be human-readable and local
// fallbacks (in-memory cache, relaxed redis) are allowed.
func IsDevelopment() bool {
	return GetEnvironment() == Development
}

// IsProduction reports whether infrastructure failures must be fatal.
func IsProduction() bool {
	return GetEnvironment() == Production
}

// loadDotEnv reads ./.env into the process environment without overriding
// anything already set, so APP_ENV may come from the file. CI and production
// deployments never read it.
func loadDotEnv() error {
	if os.Getenv("CI") == "true" {
		return nil
	}
	if env, err := ParseEnvironment(environmentValue()); err == nil && env == Production {
		return nil
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
