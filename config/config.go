package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string `validate:"required_without=HTTPAddr"`
	HTTPAddr      string `validate:"required_without=TelegramToken"`

	AppEnv   string `validate:"required"`
	LogLevel string `validate:"oneof=trace debug info warn warning error"`
	LogFile  string

	RedisAddress  string
	RedisPassword string
	RedisDB       int `validate:"gte=0,lte=15"`

	ModelDir       string `validate:"required"`
	ORTLibraryPath string

	DetectorMode     string        `validate:"oneof=auto precise heuristic"`
	DetectorPatience time.Duration `validate:"gte=0"`
	InitTimeout      time.Duration `validate:"gt=0"`
	ModelLoadTimeout time.Duration `validate:"gt=0"`
	InitRetryBase    time.Duration `validate:"gte=0"`
	InitMaxAttempts  int           `validate:"gte=1,lte=10"`

	MaxImageSide   int     `validate:"gte=64"`
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gte=1"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	env := reader{lookup: lookup}

	cfg := &Config{
		TelegramToken: env.str("TELEGRAM_TOKEN", ""),
		HTTPAddr:      env.str("HTTP_ADDR", ""),

		AppEnv:   env.str("APP_ENV", "development"),
		LogLevel: env.str("LOG_LEVEL", "info"),
		LogFile:  env.str("LOG_FILE", "./storage/logs/face-shape.log"),

		RedisAddress:  env.str("REDIS_ADDRESS", ""),
		RedisPassword: env.str("REDIS_PASSWORD", ""),
		RedisDB:       env.integer("REDIS_DB", 0),

		ModelDir:       env.str("MODEL_DIR", "./models"),
		ORTLibraryPath: env.str("ORT_LIBRARY_PATH", ""),

		DetectorMode:     env.str("DETECTOR_MODE", "auto"),
		DetectorPatience: env.duration("DETECTOR_PATIENCE", 2*time.Second),
		InitTimeout:      env.duration("INIT_TIMEOUT", 30*time.Second),
		ModelLoadTimeout: env.duration("MODEL_LOAD_TIMEOUT", 10*time.Second),
		InitRetryBase:    env.duration("INIT_RETRY_BASE", 500*time.Millisecond),
		InitMaxAttempts:  env.integer("INIT_MAX_ATTEMPTS", 3),

		MaxImageSide:   env.integer("MAX_IMAGE_SIDE", 1024),
		RateLimitRPS:   env.number("RATE_LIMIT_RPS", 2),
		RateLimitBurst: env.integer("RATE_LIMIT_BURST", 5),
	}
	if env.err != nil {
		return nil, env.err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// reader читает переменные окружения и запоминает первую ошибку разбора
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return n
}

func (r *reader) number(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return f
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return d
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("parse %s: %w", key, err)
	}
}
