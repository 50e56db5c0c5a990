package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	StoreBackend       string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	GameTTL            time.Duration
	AdminPollInterval  time.Duration
	PlayerPollInterval time.Duration
	PinAttempts        int
	AnswerPolicy       string
}

func Load() *Config {
	return &Config{
		StoreBackend:       getEnv("STORE_BACKEND", "memory"),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		GameTTL:            getDurationEnv("GAME_TTL", 2*time.Hour),
		AdminPollInterval:  getDurationEnv("ADMIN_POLL_INTERVAL", 2*time.Second),
		PlayerPollInterval: getDurationEnv("PLAYER_POLL_INTERVAL", time.Second),
		PinAttempts:        getIntEnv("PIN_ATTEMPTS", 100),
		AnswerPolicy:       getEnv("ANSWER_POLICY", "overwrite"),
	}
}

func (c *Config) Validate() error {
	if c.StoreBackend != "memory" && c.StoreBackend != "redis" {
		return fmt.Errorf("invalid store backend (must be memory or redis): %s", c.StoreBackend)
	}
	if c.AnswerPolicy != "overwrite" && c.AnswerPolicy != "reject" {
		return fmt.Errorf("invalid answer policy (must be overwrite or reject): %s", c.AnswerPolicy)
	}
	if c.AdminPollInterval <= 0 || c.PlayerPollInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.PinAttempts < 1 {
		return fmt.Errorf("pin attempts must be at least 1: %d", c.PinAttempts)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})
}
