// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything main needs to wire the service.
type Config struct {
	Addr             string
	DatabaseURL      string
	LogMode          string
	OIDCIssuer       string
	OIDCClientID     string
	TrustForwardAuth bool
	ShutdownTimeout  time.Duration
}

// Load reads the environment. An empty DatabaseURL selects the in-memory store.
func Load() (Config, error) {
	cfg := Config{
		Addr:         env("ADDR", ":8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LogMode:      env("LOG_MODE", "production"),
		OIDCIssuer:   os.Getenv("OIDC_ISSUER"),
		OIDCClientID: os.Getenv("OIDC_CLIENT_ID"),
	}

	var err error
	if cfg.TrustForwardAuth, err = boolEnv("TRUST_FORWARD_AUTH", false); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if (cfg.OIDCIssuer == "") != (cfg.OIDCClientID == "") {
		return Config{}, errors.New("OIDC_ISSUER and OIDC_CLIENT_ID must be set together")
	}
	if cfg.OIDCIssuer == "" && !cfg.TrustForwardAuth {
		return Config{}, errors.New("no identity source: set OIDC_ISSUER/OIDC_CLIENT_ID or TRUST_FORWARD_AUTH=true")
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
