// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is loaded first when present
// (github.com/joho/godotenv). Variables already set in the environment win
// over the file, so production can ignore it entirely.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds all configuration for the server.
type Config struct {
	Port        int
	Environment string
	TokenSecret string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string

	CORSOrigins []string

	LogLevel  slog.Level
	LogFormat string // "text" or "json"
}

// Production reports whether the server runs with production cookie rules.
func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return fromEnv(os.LookupEnv)
}

func fromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := &Config{
		Environment:   get("APP_ENV", EnvDevelopment),
		TokenSecret:   get("ACCESS_TOKEN_SECRET", ""),
		StoreDriver:   get("STORE_DRIVER", DriverMongo),
		MongoDatabase: get("MONGODB_DATABASE", "jobPostDB"),
		SQLitePath:    get("SQLITE_PATH", "data/jobpost.db"),
		LogFormat:     get("LOG_FORMAT", "text"),
		CORSOrigins:   splitList(get("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
	}

	port, err := strconv.Atoi(get("PORT", "5000"))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("config: PORT must be a port number, got %q", get("PORT", ""))
	}
	cfg.Port = port

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	switch cfg.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return nil, fmt.Errorf("config: APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Environment)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.TokenSecret == "" {
		return nil, errors.New("config: ACCESS_TOKEN_SECRET environment variable is required")
	}

	switch cfg.StoreDriver {
	case DriverMongo:
		cfg.MongoURI = get("MONGODB_URI", "")
		if cfg.MongoURI == "" {
			cfg.MongoURI, err = atlasURI(get("DB_USER", get("DB_NAME", "")), get("DB_PASS", ""), get("DB_HOST", ""))
			if err != nil {
				return nil, err
			}
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("config: STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverSQLite, cfg.StoreDriver)
	}

	return cfg, nil
}

// atlasURI assembles a MongoDB Atlas SRV connection string from its parts.
func atlasURI(user, pass, host string) (string, error) {
	if user == "" || pass == "" || host == "" {
		return "", errors.New("config: set MONGODB_URI, or DB_USER, DB_PASS and DB_HOST")
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String(), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
