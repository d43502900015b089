package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// JWT Token Secrets
	AccessSecret  string
	RefreshSecret string
	BcryptCost    int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// External engines (opaque HTTP collaborators)
	ScanEngineURL    string
	QAGateURL        string
	NotifyServiceURL string
	EngineTimeout    int // seconds

	// Website-import suggestion handling
	SuggestionMinConfidence float64

	// Launch checklist knowledge-base minimums
	KBMinServices    int
	KBMinFAQs        int
	KBMinPolicyChars int

	// System prompt drafting
	GeminiAPIKey string

	// Widget embedding
	WidgetBaseURL string

	// Scheduled re-scan of live bots
	RescanCron string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/admin_console"),
		DBName:      getEnv("DB_NAME", "admin_console"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		AccessSecret:  getEnv("ACCESS_SECRET", ""),
		RefreshSecret: getEnv("REFRESH_SECRET", ""),
		BcryptCost:    getEnvInt("BCRYPT_COST", 12),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		ScanEngineURL:    getEnv("SCAN_ENGINE_URL", "http://localhost:8001"),
		QAGateURL:        getEnv("QA_GATE_URL", "http://localhost:8002"),
		NotifyServiceURL: getEnv("NOTIFY_SERVICE_URL", "http://localhost:8003"),
		EngineTimeout:    getEnvInt("ENGINE_TIMEOUT", 120),

		SuggestionMinConfidence: getEnvFloat64("SUGGESTION_MIN_CONFIDENCE", 0.6),

		KBMinServices:    getEnvInt("KB_MIN_SERVICES", 6),
		KBMinFAQs:        getEnvInt("KB_MIN_FAQS", 8),
		KBMinPolicyChars: getEnvInt("KB_MIN_POLICY_CHARS", 80),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		WidgetBaseURL: getEnv("WIDGET_BASE_URL", "http://localhost:8080"),

		RescanCron: getEnv("RESCAN_CRON", "0 4 * * 1"),
	}

	// Validate required fields
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("ACCESS_SECRET is required - set it in .env file")
	}

	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("REFRESH_SECRET is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
