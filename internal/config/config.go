package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment-backed settings for the service.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	TokenExpiry time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
	SenderName   string

	BaseURL string

	RedisAddr     string
	RedisPassword string

	SendDelay time.Duration

	CronSpecDailyCampaign string
	CronSpecWeeklyDigest  string
	CronSpecTokenCleanup  string
}

// LoadConfig reads configuration from the environment (and .env, if present).
// Missing required values are fatal: the pipeline must not start without its
// mail and store credentials.
func LoadConfig() *Config {
	// Errors are ignored if the .env file doesn't exist; existing env
	// variables are never overridden.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		MongoURI:              mustGetEnv("MONGO_URI"),
		DBName:                getEnv("DB_NAME", "opositest"),
		JWTSecret:             mustGetEnv("JWT_SECRET"),
		SMTPHost:              mustGetEnv("SMTP_HOST"),
		SMTPPort:              getEnv("SMTP_PORT", "587"),
		SMTPSender:            mustGetEnv("SMTP_SENDER"),
		SMTPPassword:          mustGetEnv("SMTP_PASSWORD"),
		SenderName:            getEnv("SENDER_NAME", "Opositest"),
		BaseURL:               mustGetEnv("BASE_URL"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		CronSpecDailyCampaign: getEnv("CRON_SPEC_DAILY_CAMPAIGN", "0 9 * * *"),
		CronSpecWeeklyDigest:  getEnv("CRON_SPEC_WEEKLY_DIGEST", "0 8 * * 1"),
		CronSpecTokenCleanup:  getEnv("CRON_SPEC_TOKEN_CLEANUP", "0 3 * * *"),
	}

	expiryHours, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "24"))
	if err != nil {
		log.Fatalf("Invalid TOKEN_EXPIRY_HOURS: %v", err)
	}
	cfg.TokenExpiry = time.Duration(expiryHours) * time.Hour

	delayMs, err := strconv.Atoi(getEnv("SEND_DELAY_MS", "300"))
	if err != nil {
		log.Fatalf("Invalid SEND_DELAY_MS: %v", err)
	}
	cfg.SendDelay = time.Duration(delayMs) * time.Millisecond

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Required environment variable %s is not set", key)
	}
	return value
}
