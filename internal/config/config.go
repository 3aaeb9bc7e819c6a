package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AllowedOrigin string
	RedisURL      string
	TurnDuration  time.Duration
	LogLevel      string
	LogJSON       bool
}

// Load читает .env (если есть) и окружение. Отсутствующие переменные
// получают значения по умолчанию; сервер стартует и без Redis.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("config: .env не найден, используется окружение процесса")
	}

	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "3000"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		RedisURL:      os.Getenv("REDIS_URL"),
		TurnDuration:  30 * time.Second,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogJSON:       os.Getenv("LOG_FORMAT") == "json",
	}

	if raw := os.Getenv("TURN_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.TurnDuration = time.Duration(secs) * time.Second
		} else {
			log.Printf("config: неверный TURN_SECONDS=%q, остается %s", raw, cfg.TurnDuration)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
