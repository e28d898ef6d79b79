package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBDriver   string // postgres, mysql or sqlite
	DBDSN      string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey           string
	SaltRound        int
	UserTokenTTLHrs  int
	AdminTokenTTLHrs int

	DefaultSponsorID string
	Timezone         string

	FirstAdminID       string
	FirstAdminName     string
	FirstAdminEmail    string
	FirstAdminPassword string

	SendGridAPIKey string
	EmailSender    string

	SandboxApiURL     string
	SandboxApiKey     string
	SandboxSecretKey  string
	SandboxApiVersion string

	LogLevel  string
	LogFormat string // text or json

	HousekeepingSpec string // cron expression for the nightly job

	UploadDir string // KYC documents are stored below this directory
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port: getEnv("PORT", "3000"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBDSN:      getEnv("DB_DSN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "capitalrise"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:           getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound:        getEnvInt("SALT_ROUND", 10),
		UserTokenTTLHrs:  getEnvInt("USER_TOKEN_TTL_HOURS", 24),
		AdminTokenTTLHrs: getEnvInt("ADMIN_TOKEN_TTL_HOURS", 8),

		DefaultSponsorID: getEnv("DEFAULT_SPONSOR_ID", "CAPITAL01"),
		Timezone:         getEnv("TIMEZONE", "Asia/Kolkata"),

		FirstAdminID:       getEnv("FIRST_ADMIN_ID", "ADMIN001"),
		FirstAdminName:     getEnv("FIRST_ADMIN_NAME", "Super Admin"),
		FirstAdminEmail:    getEnv("FIRST_ADMIN_EMAIL", "admin@capitalrise.in"),
		FirstAdminPassword: getEnv("FIRST_ADMIN_PASSWORD", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@capitalrise.in"),

		SandboxApiURL:     getEnv("SANDBOX_API_URL", "https://api.sandbox.co.in/"),
		SandboxApiKey:     getEnv("SANDBOX_API_KEY", ""),
		SandboxSecretKey:  getEnv("SANDBOX_SECRET_KEY", ""),
		SandboxApiVersion: getEnv("SANDBOX_API_VERSION", "2.0"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		HousekeepingSpec: getEnv("HOUSEKEEPING_CRON", "5 0 * * *"),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
	}

	// Validate critical configuration
	if cfg.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.FirstAdminPassword == "" {
		log.Println("Warning: FIRST_ADMIN_PASSWORD is empty. No admin will be seeded.")
	}

	return cfg
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
