package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string

	MLServiceURL     string
	MLServiceTimeout time.Duration

	AutoPredictEnabled   bool
	AutoPredictSchedule  time.Duration
	AutoPredictBatchSize int

	CacheDefaultTTL    time.Duration
	CacheCheckInterval time.Duration
}

// PendingTTL is how long an in-flight scoring marker stays alive before
// it expires on its own (e.g. after a crash mid-score).
const PendingTTL = 10 * time.Minute

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MLServiceURL:     getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		MLServiceTimeout: getDuration("ML_SERVICE_TIMEOUT", 10*time.Second),

		AutoPredictEnabled:   getBool("AUTO_PREDICT_ENABLED", true),
		AutoPredictSchedule:  getDuration("AUTO_PREDICT_SCHEDULE", 2*time.Minute),
		AutoPredictBatchSize: getInt("AUTO_PREDICT_BATCH_SIZE", 50),

		CacheDefaultTTL:    getDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		CacheCheckInterval: getDuration("CACHE_CHECK_INTERVAL", 60*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}
