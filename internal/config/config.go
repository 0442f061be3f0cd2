package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Arxiv    ArxivConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL string // postgres://... or sqlite://<path>
}

type ArxivConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RateInterval time.Duration // minimum gap between requests
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Mode string // "prod" for JSON output
}

// Load reads the configuration from the environment. Values in a .env file
// in the working directory are used for keys the environment does not set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnvMulti([]string{"PORT", "SERVER_PORT"}, "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "sqlite://goodpapers.db"),
		},
		Arxiv: ArxivConfig{
			BaseURL:      getEnv("ARXIV_API_URL", "http://export.arxiv.org/api/query"),
			Timeout:      getDurationEnv("ARXIV_TIMEOUT", 30*time.Second),
			RateInterval: getDurationEnv("ARXIV_RATE_INTERVAL", 3*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getSliceEnv("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "development"),
		},
	}
}

func getEnvMulti(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return defaultValue
}

// getDurationEnv accepts whole seconds ("30") or a Go duration ("1m30s").
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
