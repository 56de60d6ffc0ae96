package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Redis (DataForSEO result cache)
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// DataForSEO
	DataForSEOBaseURL  string
	DataForSEOLogin    string
	DataForSEOPassword string
	DataForSEOCacheTTL time.Duration

	// Review
	MutationTimeout    time.Duration
	DraftAutosaveDelay time.Duration
	// SlotDisplayStrategy is "target" or "position".
	SlotDisplayStrategy string

	// Server
	Port        string
	Environment string
	BaseURL     string
	CORSOrigins []string
	Debug       bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "order-exports"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DataForSEOBaseURL:  getEnv("DATAFORSEO_BASE_URL", "https://api.dataforseo.com"),
		DataForSEOLogin:    getEnv("DATAFORSEO_LOGIN", ""),
		DataForSEOPassword: getEnv("DATAFORSEO_PASSWORD", ""),
		DataForSEOCacheTTL: getEnvDuration("DATAFORSEO_CACHE_TTL", 24*time.Hour),

		MutationTimeout:    getEnvDuration("MUTATION_TIMEOUT", 15*time.Second),
		DraftAutosaveDelay: getEnvDuration("DRAFT_AUTOSAVE_DELAY", 2*time.Second),

		SlotDisplayStrategy: strings.ToLower(getEnv("SLOT_DISPLAY_STRATEGY", "target")),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		Debug:       getEnv("APP_DEBUG", "") == "true",
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.MutationTimeout <= 0 {
		return fmt.Errorf("MUTATION_TIMEOUT must be positive")
	}
	if c.DraftAutosaveDelay <= 0 {
		return fmt.Errorf("DRAFT_AUTOSAVE_DELAY must be positive")
	}
	switch c.SlotDisplayStrategy {
	case "", "target", "position":
	default:
		return fmt.Errorf("SLOT_DISPLAY_STRATEGY must be target or position, got %q", c.SlotDisplayStrategy)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
