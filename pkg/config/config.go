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
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Enrollment EnrollmentConfig
	Shifts     ShiftConfig
	Metrics    MetricsConfig
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
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EnrollmentConfig tunes the staging planner and batch submission.
type EnrollmentConfig struct {
	PlanTTL              time.Duration
	SubmitTimeout        time.Duration
	RejectEmptySchedule  bool
	MaxStagedClasses     int
	TimetableTitlePrefix string
}

// ShiftConfig governs shift reference data caching and name classification.
type ShiftConfig struct {
	CacheTTL          time.Duration
	MorningKeywords   []string
	AfternoonKeywords []string
	FullKeywords      []string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
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
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxStaged := v.GetInt("ENROLLMENT_MAX_STAGED_CLASSES")
	if maxStaged <= 0 {
		maxStaged = 20
	}
	cfg.Enrollment = EnrollmentConfig{
		PlanTTL:              parseDuration(v.GetString("ENROLLMENT_PLAN_TTL"), 30*time.Minute),
		SubmitTimeout:        parseDuration(v.GetString("ENROLLMENT_SUBMIT_TIMEOUT"), 10*time.Second),
		RejectEmptySchedule:  v.GetBool("ENROLLMENT_REJECT_EMPTY_SCHEDULE"),
		MaxStagedClasses:     maxStaged,
		TimetableTitlePrefix: v.GetString("ENROLLMENT_TIMETABLE_TITLE"),
	}

	cfg.Shifts = ShiftConfig{
		CacheTTL:          parseDuration(v.GetString("SHIFT_CACHE_TTL"), time.Hour),
		MorningKeywords:   splitKeywords(v.GetString("SHIFT_MORNING_KEYWORDS")),
		AfternoonKeywords: splitKeywords(v.GetString("SHIFT_AFTERNOON_KEYWORDS")),
		FullKeywords:      splitKeywords(v.GetString("SHIFT_FULL_KEYWORDS")),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

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
	v.SetDefault("DB_NAME", "university_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENROLLMENT_PLAN_TTL", "30m")
	v.SetDefault("ENROLLMENT_SUBMIT_TIMEOUT", "10s")
	v.SetDefault("ENROLLMENT_REJECT_EMPTY_SCHEDULE", false)
	v.SetDefault("ENROLLMENT_MAX_STAGED_CLASSES", 20)
	v.SetDefault("ENROLLMENT_TIMETABLE_TITLE", "Weekly timetable")

	v.SetDefault("SHIFT_CACHE_TTL", "1h")
	v.SetDefault("SHIFT_MORNING_KEYWORDS", "morning")
	v.SetDefault("SHIFT_AFTERNOON_KEYWORDS", "afternoon")
	v.SetDefault("SHIFT_FULL_KEYWORDS", "full")

	v.SetDefault("ENABLE_METRICS", true)
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

func splitKeywords(raw string) []string {
	keywords := splitAndTrim(raw)
	for i, k := range keywords {
		keywords[i] = strings.ToLower(k)
	}
	return keywords
}
