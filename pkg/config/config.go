package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
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
	Timetable TimetableConfig
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

// JWTConfig holds the shared secret used to verify access tokens issued by the auth service.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PeriodSpec describes one daily period as supplied in TIMETABLE_PERIODS.
type PeriodSpec struct {
	Label string `mapstructure:"label"`
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
	Lunch bool   `mapstructure:"lunch"`
}

// TimetableConfig defines the week grid, room pools and draft behaviour.
type TimetableConfig struct {
	Days             []string
	Periods          []PeriodSpec
	PeriodCount      int
	LunchIndex       int
	DayStart         string
	PeriodLength     time.Duration
	Rooms            []string
	Labs             []string
	DraftTTL         time.Duration
	WorkloadCacheTTL time.Duration
	CacheEnabled     bool
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
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	periods, err := decodePeriods(v.GetString("TIMETABLE_PERIODS"))
	if err != nil {
		return nil, err
	}
	cfg.Timetable = TimetableConfig{
		Days:             splitAndTrim(v.GetString("TIMETABLE_DAYS")),
		Periods:          periods,
		PeriodCount:      v.GetInt("TIMETABLE_PERIOD_COUNT"),
		LunchIndex:       v.GetInt("TIMETABLE_LUNCH_INDEX"),
		DayStart:         v.GetString("TIMETABLE_DAY_START"),
		PeriodLength:     time.Duration(v.GetInt("TIMETABLE_PERIOD_MINUTES")) * time.Minute,
		Rooms:            splitAndTrim(v.GetString("TIMETABLE_ROOMS")),
		Labs:             splitAndTrim(v.GetString("TIMETABLE_LABS")),
		DraftTTL:         parseDuration(v.GetString("TIMETABLE_DRAFT_TTL"), 2*time.Hour),
		WorkloadCacheTTL: parseDuration(v.GetString("TIMETABLE_WORKLOAD_CACHE_TTL"), 10*time.Minute),
		CacheEnabled:     v.GetBool("TIMETABLE_CACHE_ENABLED"),
	}

	return cfg, nil
}

// Grid builds the week grid described by the timetable section.
func (c TimetableConfig) Grid() (*timetable.Grid, error) {
	days := make([]timetable.Day, 0, len(c.Days))
	for _, raw := range c.Days {
		day, err := timetable.ParseDay(raw)
		if err != nil {
			return nil, fmt.Errorf("TIMETABLE_DAYS: %w", err)
		}
		days = append(days, day)
	}

	var periods []timetable.Period
	if len(c.Periods) > 0 {
		periods = make([]timetable.Period, len(c.Periods))
		for i, spec := range c.Periods {
			label := spec.Label
			if label == "" {
				label = fmt.Sprintf("Period %d", i+1)
			}
			periods[i] = timetable.Period{Index: i, Start: spec.Start, End: spec.End, Label: label, Lunch: spec.Lunch}
		}
	} else {
		built, err := timetable.BuildPeriods(c.PeriodCount, c.LunchIndex, c.DayStart, c.PeriodLength)
		if err != nil {
			return nil, fmt.Errorf("timetable periods: %w", err)
		}
		periods = built
	}

	return timetable.NewGrid(days, periods, c.Rooms, c.Labs)
}

func decodePeriods(raw string) ([]PeriodSpec, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var generic []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("TIMETABLE_PERIODS must be a JSON array: %w", err)
	}
	var periods []PeriodSpec
	if err := mapstructure.Decode(generic, &periods); err != nil {
		return nil, fmt.Errorf("decode TIMETABLE_PERIODS: %w", err)
	}
	return periods, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIMETABLE_DAYS", "MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY,SATURDAY")
	v.SetDefault("TIMETABLE_PERIODS", "")
	v.SetDefault("TIMETABLE_PERIOD_COUNT", 8)
	v.SetDefault("TIMETABLE_LUNCH_INDEX", 4)
	v.SetDefault("TIMETABLE_DAY_START", "09:00")
	v.SetDefault("TIMETABLE_PERIOD_MINUTES", 50)
	v.SetDefault("TIMETABLE_ROOMS", "101,102,103,104,105,106")
	v.SetDefault("TIMETABLE_LABS", "LAB-1,LAB-2,LAB-3")
	v.SetDefault("TIMETABLE_DRAFT_TTL", "2h")
	v.SetDefault("TIMETABLE_WORKLOAD_CACHE_TTL", "10m")
	v.SetDefault("TIMETABLE_CACHE_ENABLED", true)
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
