// Package config loads process configuration from .env files and the
// environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the configuration of the notes server.
type Config struct {
	Addr            string
	LogLevel        string
	LogHandler      string
	DBPath          string
	ShutdownTimeout time.Duration
	// SequentialDeps disables concurrent dependency resolution.
	SequentialDeps bool
}

// Load reads the given .env files (".env" when none are given) if they exist
// and builds a Config from environment variables. Variables already set in
// the environment win over the files.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// Non-fatal: the file is optional outside development.
		_ = godotenv.Load(f)
	}

	return &Config{
		Addr:            env("APP_ADDR", ":8080"),
		LogLevel:        env("LOG_LEVEL", "info"),
		LogHandler:      env("LOG_HANDLER", "text"),
		DBPath:          env("DB_PATH", "file:grove-notes.db?_foreign_keys=on"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SequentialDeps:  envBool("SEQUENTIAL_DEPS", false),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
