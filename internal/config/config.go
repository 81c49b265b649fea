package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string

	JWTSecret string

	AccessTokenMaxAge  int
	RefreshTokenMaxAge int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	DefaultProfileImageURL string
	DefaultPostImageURL    string

	// RedisURL enables the activity-event publisher when set.
	RedisURL string

	PageSize int

	// UnauthenticatedStatus is returned when an anonymous viewer attempts a write.
	UnauthenticatedStatus int

	LogLevel  string
	LogFormat string
}

// MediaConfigured reports whether every R2 setting needed for uploads is present.
func (c *Config) MediaConfigured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found or error loading it, relying on environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	unauthStatus := intEnv("UNAUTHENTICATED_STATUS", http.StatusForbidden)
	if unauthStatus != http.StatusUnauthorized && unauthStatus != http.StatusForbidden {
		return nil, fmt.Errorf("UNAUTHENTICATED_STATUS must be 401 or 403, got %d", unauthStatus)
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  stringEnv("DB_SSLMODE", "require"),

		ServerPort: stringEnv("SERVER_PORT", "8080"),

		JWTSecret: jwtSecret,

		AccessTokenMaxAge:  intEnv("ACCESS_TOKEN_MAX_AGE", 900),
		RefreshTokenMaxAge: intEnv("REFRESH_TOKEN_MAX_AGE", 2592000),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		DefaultProfileImageURL: os.Getenv("DEFAULT_PROFILE_IMAGE_URL"),
		DefaultPostImageURL:    os.Getenv("DEFAULT_POST_IMAGE_URL"),

		RedisURL: os.Getenv("REDIS_URL"),

		PageSize: intEnv("PAGE_SIZE", 10),

		UnauthenticatedStatus: unauthStatus,

		LogLevel:  stringEnv("LOG_LEVEL", "info"),
		LogFormat: stringEnv("LOG_FORMAT", "text"),
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// intEnv falls back on missing, malformed and non-positive values.
func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
