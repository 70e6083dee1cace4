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

// Platforms the companion service can run on. Native platforms deliver
// exports through the share cache and may host a home-screen widget.
const (
	PlatformWeb     = "web"
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Platform  string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Widget   WidgetConfig
	Export   ExportConfig
}

type DatabaseConfig struct {
	Driver       string
	Path         string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// WidgetConfig controls the home-screen widget mirror.
type WidgetConfig struct {
	Enabled    bool
	RedisKey   string
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
}

// ExportConfig configures the share cache used by native export delivery.
type ExportConfig struct {
	CacheDir        string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CacheTTL        time.Duration
	CleanupInterval time.Duration
}

// IsNative reports whether the configured platform is a native shell.
func (c *Config) IsNative() bool {
	return c.Platform == PlatformAndroid || c.Platform == PlatformIOS
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Platform = normalizePlatform(v.GetString("PLATFORM"))

	cfg.Database = DatabaseConfig{
		Driver:       v.GetString("DB_DRIVER"),
		Path:         v.GetString("DB_PATH"),
		DSN:          v.GetString("DB_DSN"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
		File:   v.GetString("LOG_FILE"),
	}

	cfg.Widget = WidgetConfig{
		Enabled:    v.GetBool("ENABLE_WIDGET_SYNC"),
		RedisKey:   v.GetString("WIDGET_REDIS_KEY"),
		QueueSize:  v.GetInt("WIDGET_QUEUE_SIZE"),
		MaxRetries: v.GetInt("WIDGET_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("WIDGET_RETRY_DELAY"), 500*time.Millisecond),
		MaxDelay:   parseDuration(v.GetString("WIDGET_MAX_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Export = ExportConfig{
		CacheDir:        v.GetString("EXPORT_CACHE_DIR"),
		SignedURLSecret: v.GetString("EXPORT_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORT_SIGNED_URL_TTL"), 15*time.Minute),
		CacheTTL:        parseDuration(v.GetString("EXPORT_CACHE_TTL"), time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORT_CLEANUP_INTERVAL"), 10*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PLATFORM", PlatformWeb)

	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("DB_PATH", "./data/timetable.db")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 1)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("ENABLE_WIDGET_SYNC", true)
	v.SetDefault("WIDGET_REDIS_KEY", "TimetablePrefs:subjects")
	v.SetDefault("WIDGET_QUEUE_SIZE", 16)
	v.SetDefault("WIDGET_MAX_RETRIES", 5)
	v.SetDefault("WIDGET_RETRY_DELAY", "500ms")
	v.SetDefault("WIDGET_MAX_RETRY_DELAY", "30s")

	v.SetDefault("EXPORT_CACHE_DIR", "./cache/share")
	v.SetDefault("EXPORT_SIGNED_URL_SECRET", "dev_share_secret")
	v.SetDefault("EXPORT_SIGNED_URL_TTL", "15m")
	v.SetDefault("EXPORT_CACHE_TTL", "1h")
	v.SetDefault("EXPORT_CLEANUP_INTERVAL", "10m")
}

func normalizePlatform(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PlatformAndroid:
		return PlatformAndroid
	case PlatformIOS:
		return PlatformIOS
	default:
		return PlatformWeb
	}
}

// viper reports a missing explicit config file as a path error rather than
// ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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
