package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
	TokenTTL  time.Duration

	Port           string
	AllowedOrigins []string

	Location  *time.Location
	WeekStart time.Weekday

	BackupDir      string
	BackupSchedule string
	SessionFile    string
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Файл .env не загружен: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		StoreDriver:    strings.ToLower(valueOr(getenv("STORE_DRIVER"), DriverPostgres)),
		DatabaseURL:    getenv("DATABASE_URL"),
		SQLitePath:     valueOr(getenv("SQLITE_PATH"), "data/tracker.db"),
		JWTSecret:      strings.TrimSpace(getenv("JWT_SECRET")),
		TokenTTL:       30 * 24 * time.Hour,
		Port:           valueOr(getenv("PORT"), "8080"),
		AllowedOrigins: splitList(valueOr(getenv("ALLOWED_ORIGINS"), "http://localhost:3000,http://localhost:3001")),
		Location:       time.Local,
		WeekStart:      time.Sunday,
		BackupDir:      getenv("BACKUP_DIR"),
		BackupSchedule: valueOr(getenv("BACKUP_SCHEDULE"), "@daily"),
		SessionFile:    getenv("SESSION_FILE"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("неизвестный STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		port := valueOr(getenv("DB_PORT"), "5432")
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			getenv("DB_USER"), getenv("DB_PASSWORD"), valueOr(getenv("DB_HOST"), "localhost"), port, getenv("DB_NAME"))
	}

	if cfg.JWTSecret == "" {
		if cfg.StoreDriver != DriverMemory {
			return Config{}, errors.New("JWT_SECRET не задан")
		}
		cfg.JWTSecret = "dev-secret"
	}

	if v := strings.TrimSpace(getenv("TOKEN_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("некорректный TOKEN_TTL %q", v)
		}
		cfg.TokenTTL = ttl
	}

	if tz := strings.TrimSpace(getenv("TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("некорректный TIMEZONE %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	switch strings.ToLower(strings.TrimSpace(getenv("WEEK_START"))) {
	case "", "sunday":
	case "monday":
		cfg.WeekStart = time.Monday
	default:
		return Config{}, fmt.Errorf("некорректный WEEK_START %q", getenv("WEEK_START"))
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("некорректный PORT %q", cfg.Port)
	}
	return cfg, nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
