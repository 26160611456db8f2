package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DataSource    string
	RecipesSource string
	DBPath        string
	OutputDir     string
	ListenAddr    string
	EnableCORS    bool

	FetchTimeoutMs int
	DefaultSort    string

	SnapshotIntervalSec int
	SnapshotAutoExport  bool

	GoogleAPIKey       string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataSource:    getEnv("DATA_SOURCE", filepath.Join(cwd, "data.json")),
		RecipesSource: getEnv("RECIPES_SOURCE", filepath.Join(cwd, "recipes.json")),
		DBPath:        getEnv("DB_PATH", filepath.Join(cwd, "data", "itemdb.db")),
		OutputDir:     getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		FetchTimeoutMs: getEnvInt("FETCH_TIMEOUT_MS", 30000),
		DefaultSort:    getEnv("DEFAULT_SORT", "name-az"),

		SnapshotIntervalSec: getEnvInt("SNAPSHOT_INTERVAL_SEC", 3600),
		SnapshotAutoExport:  getEnvBool("SNAPSHOT_AUTO_EXPORT", false),

		GoogleAPIKey:       getEnv("GOOGLE_API_KEY", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
