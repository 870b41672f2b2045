package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type SeedConfig struct {
	StartDate   time.Time
	Days        int
	FirstHour   int
	LastHour    int
	MaxCapacity int
}

type Config struct {
	Storage  string
	DataFile string
	DB       *DBConfig
	Redis    RedisConfig

	GRPCAddr string
	Venue    string
	Location *time.Location

	PersistTimeout   time.Duration
	CancelWindow     time.Duration
	CutoffFailClosed bool

	Seed SeedConfig

	RateLimitRPS   float64
	RateLimitBurst int

	LogDir   string
	LogDebug bool
}

// Load читает конфигурацию из окружения. Если envFile существует,
// его значения подмешиваются в окружение (уже заданные переменные не перекрываются).
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	storage := strings.ToLower(getEnv("STORAGE", StorageJSON))
	switch storage {
	case StorageJSON, StorageSQLite, StoragePostgres, StorageRedis:
	default:
		return nil, fmt.Errorf("invalid STORAGE %q: want json, sqlite, postgres or redis", storage)
	}

	dbCfg, err := loadDBConfig(storage)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Europe/Moscow"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	seedStart, err := time.ParseInLocation("2006-01-02", getEnv("SEED_START_DATE", "2025-10-01"), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_START_DATE: %w", err)
	}

	cfg := &Config{
		Storage:  storage,
		DataFile: getEnv("DATA_FILE", "data.json"),
		DB:       dbCfg,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Key:      getEnv("REDIS_KEY", "slotbook:catalog"),
		},
		GRPCAddr:         getEnv("GRPC_ADDR", ":50051"),
		Venue:            getEnv("VENUE_ADDRESS", "Вешняковский проезд, 4"),
		Location:         loc,
		PersistTimeout:   time.Duration(getEnvInt("PERSIST_TIMEOUT_MS", 5000)) * time.Millisecond,
		CancelWindow:     time.Duration(getEnvInt("CANCEL_WINDOW_HOURS", 24)) * time.Hour,
		CutoffFailClosed: getEnvBool("CUTOFF_FAIL_CLOSED", false),
		Seed: SeedConfig{
			StartDate:   seedStart,
			Days:        getEnvInt("SEED_DAYS", 7),
			FirstHour:   getEnvInt("SEED_FIRST_HOUR", 10),
			LastHour:    getEnvInt("SEED_LAST_HOUR", 21),
			MaxCapacity: getEnvInt("SEED_MAX_CAPACITY", 3),
		},
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		LogDir:         getEnv("LOG_DIR", ""),
		LogDebug:       getEnvBool("LOG_DEBUG", false),
	}

	if cfg.PersistTimeout <= 0 {
		return nil, fmt.Errorf("invalid PERSIST_TIMEOUT_MS: must be positive")
	}
	if cfg.CancelWindow <= 0 {
		return nil, fmt.Errorf("invalid CANCEL_WINDOW_HOURS: must be positive")
	}
	if cfg.Seed.FirstHour < 0 || cfg.Seed.LastHour > 24 || cfg.Seed.FirstHour >= cfg.Seed.LastHour {
		return nil, fmt.Errorf("invalid seed hours: %d..%d", cfg.Seed.FirstHour, cfg.Seed.LastHour)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
