package config

import (
	"os"
	"strings"
)

// Config is the externally supplied process configuration. Everything
// has a default; the server runs with no environment at all.
type Config struct {
	Env         string
	Port        string
	CORSOrigins []string
	StaticDir   string
}

func Load() Config {
	cfg := Config{
		Env:       getEnvOrDefault("APP_ENV", "dev"),
		Port:      getEnvOrDefault("PORT", "3000"),
		StaticDir: getEnvOrDefault("STATIC_DIR", "public"),
	}
	cfg.CORSOrigins = splitCSV(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
