package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	JWTTTL    int // hours
	SaltRound int

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBLogLevel string

	EmailSender    string
	Password       string // SMTP Password
	SMTPHost       string
	SMTPPort       string
	SendGridAPIKey string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	StripeCurrency      string

	FrontendURL string
	UploadDir   string

	InstructorRevenuePercent decimal.Decimal
	OrderTTLMinutes          int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTL:    getEnvInt("JWT_TTL_HOURS", 24),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "edumarket"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		EmailSender:    getEnv("EMAIL_SENDER", ""),
		Password:       getEnv("PASSWORD", ""),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIURL:        getEnv("STRIPE_API_URL", "https://api.stripe.com/v1"),
		StripeCurrency:      getEnv("STRIPE_CURRENCY", "usd"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5500"),
		UploadDir:   getEnv("UPLOAD_DIR", "./public/uploads"),

		InstructorRevenuePercent: getEnvDecimal("INSTRUCTOR_REVENUE_PERCENT", decimal.NewFromInt(70)),
		OrderTTLMinutes:          getEnvInt("ORDER_TTL_MINUTES", 30),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY is empty. Paid checkouts will fail.")
	}
	if AppConfig.InstructorRevenuePercent.LessThan(decimal.Zero) || AppConfig.InstructorRevenuePercent.GreaterThan(decimal.NewFromInt(100)) {
		log.Println("Warning: INSTRUCTOR_REVENUE_PERCENT out of range, falling back to 70.")
		AppConfig.InstructorRevenuePercent = decimal.NewFromInt(70)
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

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to decimal: %v", key, err)
		return defaultValue
	}
	return d
}
