package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "fallback-secret-key"

// Config holds everything the server reads from the environment.
type Config struct {
	HTTP struct {
		Addr        string
		CORSOrigins string
	}
	DatabaseURL string
	AutoMigrate bool

	JWT struct {
		Secret string
		Expire time.Duration
	}
	BcryptCost int
	OTPTTL     time.Duration

	Log struct {
		Level  string
		Format string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	SMS struct {
		GatewayURL string
		AccountSID string
		AuthToken  string
		From       string
	}

	SMTP struct {
		Host       string
		Port       int
		User       string
		Pass       string
		AdminEmail string
	}

	Cloudinary struct {
		CloudName    string
		APIKey       string
		APISecret    string
		UploadPreset string
	}

	OTPSweepSchedule string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8000")
	cfg.HTTP.CORSOrigins = getEnv("CORS_ORIGINS", "*")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.AutoMigrate = parseBool(getEnv("AUTO_MIGRATE", "true"), true)

	cfg.JWT.Secret = getEnv("JWT_SECRET", defaultJWTSecret)
	cfg.JWT.Expire = ParseDuration(getEnv("JWT_EXPIRE", "7d"), 7*24*time.Hour)
	cfg.BcryptCost = parseInt(getEnv("BCRYPT_COST", "12"), 12)
	cfg.OTPTTL = ParseDuration(getEnv("OTP_TTL", "10m"), 10*time.Minute)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.SMS.GatewayURL = os.Getenv("SMS_GATEWAY_URL")
	cfg.SMS.AccountSID = os.Getenv("SMS_ACCOUNT_SID")
	cfg.SMS.AuthToken = os.Getenv("SMS_AUTH_TOKEN")
	cfg.SMS.From = os.Getenv("SMS_FROM")

	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	cfg.SMTP.Port = parseInt(getEnv("SMTP_PORT", "587"), 587)
	cfg.SMTP.User = os.Getenv("EMAIL_USER")
	cfg.SMTP.Pass = os.Getenv("EMAIL_PASS")
	cfg.SMTP.AdminEmail = os.Getenv("ADMIN_EMAIL")

	cfg.Cloudinary.CloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	cfg.Cloudinary.APIKey = os.Getenv("CLOUDINARY_API_KEY")
	cfg.Cloudinary.APISecret = os.Getenv("CLOUDINARY_API_SECRET")
	cfg.Cloudinary.UploadPreset = os.Getenv("CLOUDINARY_UPLOAD_PRESET")

	cfg.OTPSweepSchedule = getEnv("OTP_SWEEP_SCHEDULE", "@every 30m")

	return cfg
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.Secret == defaultJWTSecret
}

// ParseDuration accepts Go durations ("15m", "168h") and whole days ("7d").
// Unparseable input yields def.
func ParseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return def
		}
		return time.Duration(days) * 24 * time.Hour
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}
