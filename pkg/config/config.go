package config

import (
	"errors"
	"os"
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
	Env   string
	Port  int
	Debug bool

	AllowedHosts        []string
	CSRFTrustedOrigins  []string
	ShutdownGracePeriod time.Duration

	Database     DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Session      SessionConfig
	Registration RegistrationConfig
	Media        MediaConfig
	Feedback     FeedbackConfig
	Log          LogConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs the Redis backed cache for aggregate pages.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SessionConfig controls the login session token and its cookie.
type SessionConfig struct {
	Secret     string
	Lifetime   time.Duration
	CookieName string
	Secure     bool
	Issuer     string
}

// RegistrationConfig restricts which roles visitors may pick at sign-up.
type RegistrationConfig struct {
	AllowedRoles []string
}

// MediaConfig configures avatar storage and signed download links.
type MediaConfig struct {
	Dir             string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	AvatarMaxBytes  int64
}

// FeedbackConfig sizes the feedback delivery queue.
type FeedbackConfig struct {
	Workers int
	Retries int
}

type LogConfig struct {
	Level  string
	Format string
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.Debug = parseBool(v.GetString("DEBUG"))
	cfg.AllowedHosts = splitAndTrim(v.GetString("ALLOWED_HOSTS"))
	cfg.CSRFTrustedOrigins = splitAndTrim(v.GetString("CSRF_TRUSTED_ORIGINS"))
	cfg.ShutdownGracePeriod = parseDuration(v.GetString("SHUTDOWN_GRACE_PERIOD"), 10*time.Second)

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		Lifetime:   parseDuration(v.GetString("SESSION_LIFETIME"), 14*24*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		Secure:     !cfg.Debug,
		Issuer:     v.GetString("SESSION_ISSUER"),
	}

	cfg.Registration = RegistrationConfig{
		AllowedRoles: splitAndTrim(strings.ToUpper(v.GetString("REGISTRATION_ROLES"))),
	}

	maxAvatar := v.GetInt64("AVATAR_MAX_SIZE")
	if maxAvatar <= 0 {
		maxAvatar = 2 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		Dir:             v.GetString("MEDIA_DIR"),
		SignedURLSecret: v.GetString("MEDIA_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("MEDIA_SIGNED_URL_TTL"), time.Hour),
		AvatarMaxBytes:  maxAvatar,
	}

	cfg.Feedback = FeedbackConfig{
		Workers: v.GetInt("FEEDBACK_WORKERS"),
		Retries: v.GetInt("FEEDBACK_RETRIES"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("DEBUG", "false")
	v.SetDefault("ALLOWED_HOSTS", "localhost 127.0.0.1 [::1]")
	v.SetDefault("CSRF_TRUSTED_ORIGINS", "http://localhost http://127.0.0.1")
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "fefu_lab")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_LIFETIME", "336h")
	v.SetDefault("SESSION_COOKIE_NAME", "sessionid")
	v.SetDefault("SESSION_ISSUER", "fefu-lab")
	v.SetDefault("REGISTRATION_ROLES", "STUDENT,TEACHER")

	v.SetDefault("MEDIA_DIR", "./media")
	v.SetDefault("MEDIA_SIGNED_URL_SECRET", "dev_media_secret")
	v.SetDefault("MEDIA_SIGNED_URL_TTL", "1h")
	v.SetDefault("AVATAR_MAX_SIZE", 2*1024*1024)

	v.SetDefault("FEEDBACK_WORKERS", 1)
	v.SetDefault("FEEDBACK_RETRIES", 3)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
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

// splitAndTrim accepts both the comma separated and the space separated list forms.
func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
