package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string `env:"DB_PORT" envDefault:"5431"`
	DBUser         string `env:"DB_USER" envDefault:"taskup_user"`
	DBPassword     string `env:"DB_PASSWORD" envDefault:"taskup_pass"`
	DBName         string `env:"DB_NAME" envDefault:"taskup_db"`
	DBSSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	LogSQL         bool   `env:"LOG_SQL" envDefault:"false"`

	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`

	JWTSecret       string        `env:"JWT_SECRET" envDefault:"supersecretkey"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"taskup"`
	JWTExpiry       time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Timezone used for "today" and week/month windows.
	Timezone string `env:"APP_TIMEZONE" envDefault:"UTC"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
