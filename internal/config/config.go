// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultDBPassword = "changeme"
	defaultJWTSecret  = "dev-insecure-secret"
)

// defaults lists every key Load reads together with its fallback value.
// Keys double as environment variable names.
var defaults = map[string]any{
	"APP_HOST": "0.0.0.0",
	"APP_PORT": "8080",
	"APP_ENV":  "development",

	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "inkwell",
	"POSTGRES_PASSWORD": defaultDBPassword,
	"POSTGRES_DB":       "inkwell",

	"VALKEY_HOST":     "localhost",
	"VALKEY_PORT":     "6379",
	"VALKEY_PASSWORD": "",

	"S3_ENDPOINT":   "",
	"S3_REGION":     "fsn1",
	"S3_ACCESS_KEY": "",
	"S3_SECRET_KEY": "",
	"S3_BUCKET":     "inkwell-media",
	"S3_PUBLIC_URL": "",

	"JWT_SECRET":      defaultJWTSecret,
	"JWT_ACCESS_TTL":  "5m",
	"JWT_REFRESH_TTL": "24h",

	"PAGE_SIZE":             10,
	"PUBLIC_BASE_URL":       "",
	"RATE_LIMIT_PER_MINUTE": 120,
	"CORS_ALLOWED_ORIGINS":  "*",
	"STRICT_OWNERSHIP":      false,
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible session store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible media storage. Left unconfigured, uploads answer 503.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Bearer tokens
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration

	// API behaviour
	PageSize        int
	PublicBaseURL   *url.URL // nil means derive from the request
	RateLimit       int      // requests per minute per IP, 0 disables
	CORSOrigins     []string
	StrictOwnership bool
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),

		S3Endpoint:  v.GetString("S3_ENDPOINT"),
		S3Region:    v.GetString("S3_REGION"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),
		S3Bucket:    v.GetString("S3_BUCKET"),
		S3PublicURL: v.GetString("S3_PUBLIC_URL"),

		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTAccessTTL:  v.GetDuration("JWT_ACCESS_TTL"),
		JWTRefreshTTL: v.GetDuration("JWT_REFRESH_TTL"),

		PageSize:        v.GetInt("PAGE_SIZE"),
		RateLimit:       v.GetInt("RATE_LIMIT_PER_MINUTE"),
		CORSOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		StrictOwnership: v.GetBool("STRICT_OWNERSHIP"),
	}

	if raw := v.GetString("PUBLIC_BASE_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("PUBLIC_BASE_URL must be an absolute URL, got %q", raw)
		}
		cfg.PublicBaseURL = u
	}

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	if cfg.JWTAccessTTL <= 0 || cfg.JWTRefreshTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive durations")
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SecureCookies reports whether session and CSRF cookies get the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
