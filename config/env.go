package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port     string
	Env      string
	DBDriver string // "mongo" or "memory"
	MongoURI string
	DBName   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StripeSecretKey    string
	StripeCurrency     string
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	StorageDisk string // "local" or "s3"
	UploadDir   string
	PublicURL   string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string

	CORSAllowedOrigins []string
}

// Load reads .env when present and builds Settings from the environment.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Settings{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		DBDriver: getEnv("DB_DRIVER", "mongo"),
		MongoURI: firstEnv("MONGO_URI", "MONGODB_URI"),
		DBName:   getEnv("DB_NAME", "shop"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:     strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
		CheckoutSuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/success"),
		CheckoutCancelURL:  getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/cancel"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		StorageDisk: getEnv("STORAGE_DISK", "local"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		PublicURL:   strings.TrimRight(os.Getenv("PUBLIC_URL"), "/"),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Region:   getEnv("S3_REGION", "us-east-1"),
		S3Key:      os.Getenv("S3_KEY"),
		S3Secret:   os.Getenv("S3_SECRET"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),
		S3URL:      strings.TrimRight(os.Getenv("S3_URL"), "/"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
}

// IsDevelopment reports whether the service runs in a dev environment.
func (s Settings) IsDevelopment() bool {
	return s.Env == "development" || s.Env == "dev"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
