// Package config layers the timetabler's settings the way noah-isme's
// pkg/config does: hard-coded defaults, then an optional .env file
// loaded with joho/godotenv, then the environment, then CLI flags.
// spf13/viper mediates the defaults and the environment (which carries
// the .env values); cmd/timetabler applies explicitly passed CLI flags
// on top of the loaded Config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Database DatabaseConfig
	Redis    RedisConfig
	GA       GAConfig
	Log      LogConfig
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
	TTL      time.Duration
}

// GAConfig holds the search tunables; cmd/timetabler's schedule command
// overrides a field only when its CLI flag was explicitly passed.
type GAConfig struct {
	PopulationSize int
	Generations    int
	MutationChance float64
	Workers        int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present, via godotenv so its line-numbered parse
// errors surface as-is), then layers environment variables and
// defaults through viper. The .env file itself is optional: a missing
// file is not an error, but a malformed line fails fast.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env: v.GetString("ENV"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_CACHE_TTL"),
		},
		GA: GAConfig{
			PopulationSize: v.GetInt("GA_POPULATION_SIZE"),
			Generations:    v.GetInt("GA_GENERATIONS"),
			MutationChance: v.GetFloat64("GA_MUTATION_CHANCE"),
			Workers:        v.GetInt("GA_WORKERS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetabler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CACHE_TTL", "10m")

	v.SetDefault("GA_POPULATION_SIZE", 25)
	v.SetDefault("GA_GENERATIONS", 10)
	v.SetDefault("GA_MUTATION_CHANCE", 0.2)
	v.SetDefault("GA_WORKERS", 4)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}
