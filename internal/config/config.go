package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingBaseURL     = errors.New("COURT_BASE_URL is required")
	ErrMissingCredentials = errors.New("COURT_USERNAME and COURT_PASSWORD are required")
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Storage settings
	OutputDir    string
	DatabasePath string
	CachePath    string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize int
	CacheTTL  time.Duration

	// Court settings
	CourtBaseURL string
	CasePath     string
	LoginPath    string
	Username     string
	Password     string

	// Fetch settings
	RequestTimeout  time.Duration
	RequestInterval time.Duration
	SkipExisting    bool
	UserAgent       string
}

var defaults = map[string]string{
	"host":             "127.0.0.1",
	"port":             "8080",
	"output_dir":       "./data",
	"database_path":    "./data/fetch_log.db",
	"cache_path":       "./data/response_cache.gob",
	"log_level":        "info",
	"log_format":       "json",
	"cache_size":       "1000",
	"cache_ttl":        "1440",
	"case_path":        "/case/search",
	"request_timeout":  "120",
	"request_interval": "2000",
	"skip_existing":    "false",
	"user_agent":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
}

// Load reads configuration from .env, the environment and any flags bound into viper
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	viper.AutomaticEnv()
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	cfg := &Config{
		Host:         viper.GetString("host"),
		Port:         viper.GetString("port"),
		OutputDir:    viper.GetString("output_dir"),
		DatabasePath: viper.GetString("database_path"),
		CachePath:    viper.GetString("cache_path"),
		LogLevel:     viper.GetString("log_level"),
		LogFormat:    viper.GetString("log_format"),
		CourtBaseURL: viper.GetString("court_base_url"),
		CasePath:     viper.GetString("case_path"),
		LoginPath:    viper.GetString("login_path"),
		Username:     viper.GetString("court_username"),
		Password:     viper.GetString("court_password"),
		UserAgent:    viper.GetString("user_agent"),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(viper.GetString("cache_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(viper.GetString("cache_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	requestTimeout, err := strconv.Atoi(viper.GetString("request_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = time.Duration(requestTimeout) * time.Second

	requestInterval, err := strconv.Atoi(viper.GetString("request_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_INTERVAL: %w", err)
	}
	cfg.RequestInterval = time.Duration(requestInterval) * time.Millisecond

	cfg.SkipExisting, err = strconv.ParseBool(viper.GetString("skip_existing"))
	if err != nil {
		return nil, fmt.Errorf("invalid SKIP_EXISTING: %w", err)
	}

	return cfg, nil
}

// Validate reports settings without which no fetch can start
func (c *Config) Validate() error {
	if c.CourtBaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
