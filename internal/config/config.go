package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️ No .env file found — using system environment variables")
	} else {
		log.Println("✅ .env file loaded")
	}
}

// StripeSecretKey is the provider API key. Empty means intent creation
// must fail with a configuration error, not that checkout is disabled.
func StripeSecretKey() string {
	return os.Getenv("STRIPE_SECRET_KEY")
}

// StripeWebhookSecret signs inbound webhook payloads. Empty means every
// webhook delivery must be rejected; events are never accepted unverified.
func StripeWebhookSecret() string {
	return os.Getenv("STRIPE_WEBHOOK_SECRET")
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func RedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

func FrontendURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

func Port() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
