package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultScheduleURL is the provider's public shutdowns page.
	DefaultScheduleURL = "https://www.dtek-oem.com.ua/ua/shutdowns"
	// DefaultAjaxURL is the endpoint the page posts address lookups to.
	DefaultAjaxURL = "https://www.dtek-oem.com.ua/ua/ajax"
	// DefaultRequestTimeoutSec applies to every network call.
	DefaultRequestTimeoutSec = 30
	// DefaultCacheTTLSec is how long the HTTP service keeps a schedule in Redis.
	DefaultCacheTTLSec = 300
	// DefaultTimezone is the zone the provider's day timestamps are anchored to.
	DefaultTimezone = "Europe/Kyiv"
)

type Config struct {
	ScheduleURL    string
	AjaxURL        string
	RequestTimeout time.Duration
	Timezone       string
	Port           string
	RedisURL       string // empty disables the schedule cache
	CacheTTL       time.Duration
	BotToken       string
	ConfigPath     string // default address store
	LogLevel       string
}

// Load reads settings from the environment, loading .env first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ScheduleURL:    getEnv("DTEK_SCHEDULE_URL", DefaultScheduleURL),
		AjaxURL:        getEnv("DTEK_AJAX_URL", DefaultAjaxURL),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT", DefaultRequestTimeoutSec)) * time.Second,
		Timezone:       getEnv("SCHEDULE_TIMEZONE", DefaultTimezone),
		Port:           getEnv("PORT", "8090"),
		RedisURL:       getEnv("REDIS_URL", ""),
		CacheTTL:       time.Duration(getEnvInt("CACHE_TTL", DefaultCacheTTLSec)) * time.Second,
		BotToken:       getEnv("BOT_TOKEN", ""),
		ConfigPath:     getEnv("CONFIG_PATH", DefaultStorePath()),
		LogLevel:       getEnv("LOG_LEVEL", ""),
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultStorePath is shutdowns-checker/config.json under the user config dir.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(".", ".config")
	}
	return filepath.Join(dir, "shutdowns-checker", "config.json")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
