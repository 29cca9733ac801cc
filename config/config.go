package config

import (
	"time"

	"github.com/natours/natours-api/log"
)

const (
	Development = "development"
	Production  = "production"
)

type Config interface {
	// Environment is either "development" or "production". Failure details are only exposed in development.
	Environment() string
	Naming() NamingConvention
	SupportedOperations() Operations
	Auth() AuthConfig
	Logger() log.Logger
}

type AuthConfig struct {
	JWTSecret       string
	JWTExpiresIn    time.Duration
	CookieExpiresIn time.Duration
}

// IsDevelopment reports whether cfg runs in the development environment
func IsDevelopment(cfg Config) bool {
	return cfg.Environment() == Development
}
