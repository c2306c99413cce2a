package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using system environment")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// IsProduction reports whether the app runs in production mode.
// Secure cookies are only set when this is true.
func IsProduction() bool {
	return GetEnv("APP_ENV", "development") == "production"
}

// UploadDir is the directory uploaded images are written to and
// served from under /uploads.
func UploadDir() string {
	return GetEnv("UPLOAD_DIR", "./uploads")
}
