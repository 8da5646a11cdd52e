package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Config holds the process-wide settings. The OpenAI API key is not part of
// it; the user types the key into the running program.
type Config struct {
	LogFile     string
	LogFormat   string
	LogLevel    string
	BaseURL     string
	StylesParam string
}

// Load reads the environment, after loading a .env file from the working
// directory if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		LogFile:     getenv("DALLE_STUDIO_LOG_FILE", filepath.Join(os.TempDir(), "dallestudio.log")),
		LogFormat:   getenv("DALLE_STUDIO_LOG_FORMAT", "json"),
		LogLevel:    getenv("DALLE_STUDIO_LOG_LEVEL", "info"),
		BaseURL:     os.Getenv("OPENAI_BASE_URL"),
		StylesParam: os.Getenv("DALLE_STUDIO_STYLES_PARAM"),
	}

	if !lo.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return nil, fmt.Errorf("DALLE_STUDIO_LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
