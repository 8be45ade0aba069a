package config

import (
	"errors"
	"io/fs"
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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Reports   ReportsConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig governs the due-report scan.
type SchedulerConfig struct {
	// Enabled registers the in-process cron trigger; the HTTP trigger is always mounted.
	Enabled       bool
	Cron          string
	TriggerSecret string
	BatchLimit    int
	ClaimEnabled  bool
	ClaimLease    time.Duration
	ScanLockTTL   time.Duration
}

// ReportsConfig tunes report generation.
type ReportsConfig struct {
	FilePrefix       string
	DefaultFormat    string
	MetricFieldMap   map[string]string
	TemplateCacheTTL time.Duration
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:       v.GetBool("SCHEDULER_ENABLED"),
		Cron:          v.GetString("SCHEDULER_CRON"),
		TriggerSecret: v.GetString("SCHEDULER_TRIGGER_SECRET"),
		BatchLimit:    v.GetInt("SCHEDULER_BATCH_LIMIT"),
		ClaimEnabled:  v.GetBool("SCHEDULER_CLAIM_ENABLED"),
		ClaimLease:    parseDuration(v.GetString("SCHEDULER_CLAIM_LEASE"), 15*time.Minute),
		ScanLockTTL:   parseDuration(v.GetString("SCHEDULER_SCAN_LOCK_TTL"), 10*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		FilePrefix:       v.GetString("REPORTS_FILE_PREFIX"),
		DefaultFormat:    v.GetString("REPORTS_DEFAULT_FORMAT"),
		MetricFieldMap:   parseMapping(v.GetString("REPORTS_METRIC_FIELD_MAP")),
		TemplateCacheTTL: parseDuration(v.GetString("REPORTS_TEMPLATE_CACHE_TTL"), 5*time.Minute),
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
	v.SetDefault("DB_NAME", "salon_platform")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_CRON", "*/15 * * * *")
	v.SetDefault("SCHEDULER_TRIGGER_SECRET", "")
	v.SetDefault("SCHEDULER_BATCH_LIMIT", 0)
	v.SetDefault("SCHEDULER_CLAIM_ENABLED", true)
	v.SetDefault("SCHEDULER_CLAIM_LEASE", "15m")
	v.SetDefault("SCHEDULER_SCAN_LOCK_TTL", "10m")

	v.SetDefault("REPORTS_FILE_PREFIX", "scheduled-reports")
	v.SetDefault("REPORTS_DEFAULT_FORMAT", "pdf")
	v.SetDefault("REPORTS_METRIC_FIELD_MAP", "")
	v.SetDefault("REPORTS_TEMPLATE_CACHE_TTL", "5m")
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

// parseMapping reads "key=value,key2=value2" pairs, skipping malformed entries.
func parseMapping(raw string) map[string]string {
	pairs := splitAndTrim(raw)
	if len(pairs) == 0 {
		return nil
	}
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			continue
		}
		result[key] = value
	}
	return result
}
