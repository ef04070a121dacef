package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	AppEnv  string
	GinMode string

	// Firebase / Google Cloud
	FirebaseCredentials string
	GoogleProjectID     string
	PubSubTopic         string

	// Postgres backs device tokens and the payment ledger; optional.
	DatabaseURL string

	StripeSecretKey      string
	StripePublishableKey string
	StripeAPIVersion     string

	// Used only when Firebase is not configured.
	JWTSecret       string
	JWTAccessExpiry time.Duration

	SweepInterval time.Duration
	Timezone      string
	PushWorkers   int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:    getEnv("PORT", "8080"),
		AppEnv:  getEnv("APP_ENV", "development"),
		GinMode: getEnv("GIN_MODE", "release"),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		PubSubTopic:         getEnv("PUBSUB_TOPIC", "ride-events"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		StripeAPIVersion:     getEnv("STRIPE_API_VERSION", "2020-08-27"),

		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),

		SweepInterval: getDuration("SWEEP_INTERVAL", 5*time.Minute),
		Timezone:      getEnv("TIMEZONE", "America/Los_Angeles"),
		PushWorkers:   getInt("PUSH_WORKERS", 3),
	}
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

// FirebaseEnabled reports whether Firebase Auth and Firestore should be used.
func (c *Config) FirebaseEnabled() bool {
	return c.GoogleProjectID != "" || c.FirebaseCredentials != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
