package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Documents  DocumentsConfig
	Enrollment EnrollmentConfig
	Resolver   ResolverConfig
	Jobs       JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DocumentsConfig controls compliance document storage and validation.
type DocumentsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	AutoReview       bool
}

// EnrollmentConfig carries defaults for pathway-specific financial setup.
type EnrollmentConfig struct {
	BridgeDownPayment      float64
	BridgeMonthlyPayment   float64
	BridgeMinDownPayment   float64
	BridgeMinMonthly       float64
	BridgeMaxTermMonths    int
	BridgeMaxTermDays      int
	SponsorshipMonthly     float64
	SponsorshipTermMonths  int
	SponsorshipMinMonthly  float64
	SponsorshipMaxMonthly  float64
	SponsorshipMinTermMos  int
	SponsorshipMaxTermMos  int
	ProgramTuitionFallback float64
}

// ResolverConfig tunes the unified enrollment read model.
type ResolverConfig struct {
	CacheTTL      time.Duration
	CacheEnabled  bool
	PortalBaseURL string
}

// JobsConfig configures the background worker queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxDocSize := v.GetInt64("DOCUMENTS_MAX_FILE_SIZE")
	if maxDocSize <= 0 {
		maxDocSize = 10 * 1024 * 1024
	}
	cfg.Documents = DocumentsConfig{
		StorageDir:       v.GetString("DOCUMENTS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("DOCUMENTS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("DOCUMENTS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxDocSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("DOCUMENTS_ALLOWED_MIME_TYPES")),
		AutoReview:       v.GetBool("DOCUMENTS_AUTO_REVIEW"),
	}

	cfg.Enrollment = EnrollmentConfig{
		BridgeDownPayment:      v.GetFloat64("BRIDGE_DOWN_PAYMENT"),
		BridgeMonthlyPayment:   v.GetFloat64("BRIDGE_MONTHLY_PAYMENT"),
		BridgeMinDownPayment:   v.GetFloat64("BRIDGE_MIN_DOWN_PAYMENT"),
		BridgeMinMonthly:       v.GetFloat64("BRIDGE_MIN_MONTHLY_PAYMENT"),
		BridgeMaxTermMonths:    v.GetInt("BRIDGE_MAX_TERM_MONTHS"),
		BridgeMaxTermDays:      v.GetInt("BRIDGE_MAX_TERM_DAYS"),
		SponsorshipMonthly:     v.GetFloat64("SPONSORSHIP_MONTHLY_REIMBURSEMENT"),
		SponsorshipTermMonths:  v.GetInt("SPONSORSHIP_TERM_MONTHS"),
		SponsorshipMinMonthly:  v.GetFloat64("SPONSORSHIP_MIN_MONTHLY"),
		SponsorshipMaxMonthly:  v.GetFloat64("SPONSORSHIP_MAX_MONTHLY"),
		SponsorshipMinTermMos:  v.GetInt("SPONSORSHIP_MIN_TERM_MONTHS"),
		SponsorshipMaxTermMos:  v.GetInt("SPONSORSHIP_MAX_TERM_MONTHS"),
		ProgramTuitionFallback: v.GetFloat64("PROGRAM_TUITION_FALLBACK"),
	}

	cfg.Resolver = ResolverConfig{
		CacheTTL:      parseDuration(v.GetString("RESOLVER_CACHE_TTL"), 5*time.Minute),
		CacheEnabled:  v.GetBool("RESOLVER_CACHE_ENABLED"),
		PortalBaseURL: strings.TrimRight(v.GetString("PORTAL_BASE_URL"), "/"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "workforce_platform")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DOCUMENTS_STORAGE_DIR", "./documents")
	v.SetDefault("DOCUMENTS_SIGNED_URL_SECRET", "dev_documents_secret")
	v.SetDefault("DOCUMENTS_SIGNED_URL_TTL", "30m")
	v.SetDefault("DOCUMENTS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("DOCUMENTS_ALLOWED_MIME_TYPES", "application/pdf,image/jpeg,image/png")
	v.SetDefault("DOCUMENTS_AUTO_REVIEW", true)

	v.SetDefault("BRIDGE_DOWN_PAYMENT", 250.0)
	v.SetDefault("BRIDGE_MONTHLY_PAYMENT", 150.0)
	v.SetDefault("BRIDGE_MIN_DOWN_PAYMENT", 50.0)
	v.SetDefault("BRIDGE_MIN_MONTHLY_PAYMENT", 25.0)
	v.SetDefault("BRIDGE_MAX_TERM_MONTHS", 3)
	v.SetDefault("BRIDGE_MAX_TERM_DAYS", 90)
	v.SetDefault("SPONSORSHIP_MONTHLY_REIMBURSEMENT", 400.0)
	v.SetDefault("SPONSORSHIP_TERM_MONTHS", 12)
	v.SetDefault("SPONSORSHIP_MIN_MONTHLY", 100.0)
	v.SetDefault("SPONSORSHIP_MAX_MONTHLY", 2000.0)
	v.SetDefault("SPONSORSHIP_MIN_TERM_MONTHS", 3)
	v.SetDefault("SPONSORSHIP_MAX_TERM_MONTHS", 24)
	v.SetDefault("PROGRAM_TUITION_FALLBACK", 4980.0)

	v.SetDefault("RESOLVER_CACHE_TTL", "5m")
	v.SetDefault("RESOLVER_CACHE_ENABLED", false)
	v.SetDefault("PORTAL_BASE_URL", "https://portal.elevateforhumanity.org")

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER_SIZE", 16)
	v.SetDefault("JOBS_MAX_RETRIES", 3)
	v.SetDefault("JOBS_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
