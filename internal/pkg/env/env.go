package env

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var Env map[string]string

// requiredKeys are configuration values the application cannot meaningfully
// run without. A missing key degrades to a loud startup warning rather than
// a silent failure.
var requiredKeys = []string{
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"STRIPE_SECRET_KEY",
	"STRIPE_PUBLISHABLE_KEY",
	"STRIPE_WEBHOOK_SECRET",
}

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func SetupEnvFile() {
	// Look for .env file in project root
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/smartrisk to project root
		"../../../.env", // Fallback for deeper nesting
	}

	loaded := false
	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			loaded = true
			break
		}
	}
	if !loaded {
		log.Printf("WARNING: no .env file found, falling back to OS environment only")
	}

	warnMissingRequired()
}

func warnMissingRequired() {
	for _, key := range requiredKeys {
		if GetEnv(key, "") == "" {
			log.Printf("WARNING: required configuration %s is not set", key)
		}
	}
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
