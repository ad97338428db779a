package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Checker-Finance/blogctl/pkg/config"
)

// Credential storage backends accepted by CRED_BACKEND.
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendRedis   = "redis"
	BackendKeyring = "keyring"
	BackendAWS     = "aws"
)

// Config holds the runtime configuration for blogctl.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	Lang        string

	BaseURL      string
	HTTPTimeout  time.Duration
	HTTPRetryMax int
	MaxRefreshes int
	RateRPS      int
	RateBurst    int

	// CredBackend selects where the access token and the cookie string live.
	CredBackend    string
	CredFile       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	RedisPrefix    string
	KeyringService string
	AWSRegion      string
	AWSSecretName  string
	CacheTTL       time.Duration

	PushgatewayURL string
	ConfirmCreate  bool
}

// Load loads configuration from environment variables and an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:    pkgconfig.GetEnv("SERVICE_NAME", "blogctl"),
		Env:            pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:       pkgconfig.GetEnv("LOG_LEVEL", "warn"),
		Lang:           pkgconfig.GetEnv("BLOG_LANG", "ko"),
		BaseURL:        pkgconfig.GetEnv("BLOG_BASE_URL", "http://localhost:8080/"),
		HTTPTimeout:    pkgconfig.GetEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPRetryMax:   pkgconfig.GetEnvInt("HTTP_RETRY_MAX", 0),
		MaxRefreshes:   pkgconfig.GetEnvInt("MAX_REFRESHES", 1),
		RateRPS:        pkgconfig.GetEnvInt("RATE_RPS", 10),
		RateBurst:      pkgconfig.GetEnvInt("RATE_BURST", 20),
		CredBackend:    pkgconfig.GetEnv("CRED_BACKEND", BackendFile),
		CredFile:       pkgconfig.GetEnv("CRED_FILE", ".blogctl/credentials.json"),
		RedisAddr:      pkgconfig.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        pkgconfig.GetEnvInt("REDIS_DB", 0),
		RedisPass:      pkgconfig.GetEnv("REDIS_PASS", ""),
		RedisPrefix:    pkgconfig.GetEnv("REDIS_PREFIX", "blogctl:"),
		KeyringService: pkgconfig.GetEnv("KEYRING_SERVICE", "blogctl"),
		AWSRegion:      pkgconfig.GetEnv("AWS_REGION", "us-east-2"),
		AWSSecretName:  pkgconfig.GetEnv("AWS_SECRET_NAME", "dev/blogctl/credentials"),
		CacheTTL:       pkgconfig.GetEnvDuration("CACHE_TTL", 5*time.Minute),
		PushgatewayURL: pkgconfig.GetEnv("PUSHGATEWAY_URL", ""),
		ConfirmCreate:  pkgconfig.GetEnvBool("CONFIRM_CREATE", false),
	}
}
