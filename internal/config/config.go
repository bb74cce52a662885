package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/learnza/learnza-api/internal/pkg/validate"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string `validate:"required"`
	AppEnv  string
	AppURL  string // base URL used in password-reset links

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// JWTSecret signs bearer tokens. Mandatory — the server refuses to start
	// without it rather than falling back to an insecure default.
	JWTSecret string        `validate:"required,min=32"`
	JWTTTL    time.Duration `validate:"min=1m"`

	GoogleClientID string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	// Bcrypt work factors. Passwords and verification codes deliberately use
	// different costs; both must stay within bcrypt's accepted range.
	PasswordHashCost int `validate:"min=4,max=31"`
	CodeHashCost     int `validate:"min=4,max=31"`
	// MaxConcurrentHashes caps simultaneous bcrypt computations.
	MaxConcurrentHashes int64 `validate:"min=1"`

	// ResendCooldown gates verification-code resends; ResetCooldown gates
	// password-reset requests.
	ResendCooldown time.Duration `validate:"min=1s"`
	ResetCooldown  time.Duration `validate:"min=1s"`

	AllowedOrigins []string // CORS allowed origins

	// TrustProxyHeaders enables X-Forwarded-For / X-Real-Ip as the client
	// address for rate limiting. Only set this when a trusted reverse proxy
	// terminates all traffic; a directly exposed server must leave it off.
	TrustProxyHeaders bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users     string
	Languages string
}

// Load reads all configuration from environment variables and validates it.
// A failed validation is a fatal configuration error.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppURL:  getEnv("APP_URL", "https://learnza.net.ng"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:     getEnv("DYNAMO_TABLE_USERS", "users"),
			Languages: getEnv("DYNAMO_TABLE_LANGUAGES", "languages"),
		},

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@learnza.net.ng"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		PasswordHashCost:    getEnvInt("PASSWORD_HASH_COST", 10),
		CodeHashCost:        getEnvInt("CODE_HASH_COST", 5),
		MaxConcurrentHashes: int64(getEnvInt("MAX_CONCURRENT_HASHES", 8)),

		ResendCooldown: time.Duration(getEnvInt("RESEND_COOLDOWN_SECONDS", 180)) * time.Second,
		ResetCooldown:  time.Duration(getEnvInt("RESET_COOLDOWN_SECONDS", 300)) * time.Second,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
