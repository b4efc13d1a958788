package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	ServerPort string

	DBDriver   string // postgres, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins string

	CertificatesStorage string // local, gcs
	CertificatesDir     string
	CertificatesBucket  string

	DefaultAdminEmail    string
	DefaultAdminPassword string
	DefaultAdminName     string

	OTelEnabled     bool
	OTelEndpoint    string
	OTelInsecure    bool
	OTelSampleRatio float64
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "72"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_HOURS: %q", os.Getenv("JWT_TTL_HOURS"))
	}

	cfg := &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "course_platform"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "course_platform.db"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),
		JWTTTL:    time.Duration(ttlHours) * time.Hour,

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		CertificatesStorage: strings.ToLower(getEnv("CERTIFICATES_STORAGE", "local")),
		CertificatesDir:     getEnv("CERTIFICATES_DIR", "certificates"),
		CertificatesBucket:  getEnv("CERTIFICATES_BUCKET", ""),

		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@courseplatform.local"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
		DefaultAdminName:     getEnv("DEFAULT_ADMIN_NAME", "Platform Admin"),

		OTelEnabled:     getBool("OTEL_ENABLED"),
		OTelEndpoint:    strings.TrimSpace(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "")),
		OTelInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE"),
		OTelSampleRatio: 1,
	}

	if raw := getEnv("OTEL_SAMPLER_RATIO", ""); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return nil, fmt.Errorf("invalid OTEL_SAMPLER_RATIO: %q", raw)
		}
		cfg.OTelSampleRatio = ratio
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	switch cfg.CertificatesStorage {
	case "local":
	case "gcs":
		if cfg.CertificatesBucket == "" {
			return nil, fmt.Errorf("CERTIFICATES_BUCKET is required when CERTIFICATES_STORAGE=gcs")
		}
	default:
		return nil, fmt.Errorf("unsupported CERTIFICATES_STORAGE %q", cfg.CertificatesStorage)
	}

	return cfg, nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func getBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
