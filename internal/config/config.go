package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DoyleJ11/tetris-server/internal/engine"
	"github.com/DoyleJ11/tetris-server/internal/room"
	"github.com/joho/godotenv"
)

var ErrInvalid = errors.New("invalid config value")

type Config struct {
	Addr           string
	TickInterval   time.Duration
	MoveThreshold  int
	Seed           int64
	LogLevel       string
	LogDev         bool
	AllowedOrigins []string
	ReadTimeout    time.Duration
}

// Load reads envFile when it exists, then the environment. Variables already
// set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	tick, err := GetEnvAsDuration("TETRIS_TICK_INTERVAL", 50*time.Millisecond)
	if err != nil {
		return nil, err
	}
	threshold, err := GetEnvAsInt("TETRIS_MOVE_THRESHOLD", engine.DefaultMoveThreshold)
	if err != nil {
		return nil, err
	}
	if threshold < 1 {
		return nil, fmt.Errorf("TETRIS_MOVE_THRESHOLD=%d: %w", threshold, ErrInvalid)
	}
	seed, err := GetEnvAsInt("TETRIS_SEED", 0)
	if err != nil {
		return nil, err
	}
	logDev, err := GetEnvAsBool("TETRIS_LOG_DEV", false)
	if err != nil {
		return nil, err
	}
	readTimeout, err := GetEnvAsDuration("TETRIS_WS_READ_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Addr:           GetEnv("TETRIS_ADDR", ":8080"),
		TickInterval:   tick,
		MoveThreshold:  threshold,
		Seed:           int64(seed),
		LogLevel:       GetEnv("TETRIS_LOG_LEVEL", "info"),
		LogDev:         logDev,
		AllowedOrigins: GetEnvAsList("TETRIS_ALLOWED_ORIGINS"),
		ReadTimeout:    readTimeout,
	}, nil
}

func (c *Config) Room() room.Config {
	return room.Config{
		TickInterval:  c.TickInterval,
		MoveThreshold: c.MoveThreshold,
		Seed:          c.Seed,
	}
}

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int) (int, error) {
	v := GetEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalid)
	}
	return n, nil
}

func GetEnvAsBool(key string, fallback bool) (bool, error) {
	v := GetEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q: %w", key, v, ErrInvalid)
	}
	return b, nil
}

func GetEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := GetEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrInvalid)
	}
	return d, nil
}

// GetEnvAsList splits a comma separated value, dropping blanks.
func GetEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(GetEnv(key, ""), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
