package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver   string `env:"DB_DRIVER" env-default:"postgres"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"task_user"`
	DBPassword string `env:"DB_PASSWORD" env-default:"task_pass"`
	DBName     string `env:"DB_NAME" env-default:"task_db"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
	DBPath     string `env:"DB_PATH" env-default:"tasks.db"`

	ServerPort     string `env:"SERVER_PORT" env-default:"8080"`
	JWTSecret      string `env:"JWT_SECRET" env-default:"supersecretkey"`
	JWTExpiryHours int    `env:"JWT_EXPIRY_HOURS" env-default:"24"`
	LogLevel       string `env:"LOG_LEVEL" env-default:"INFO"`
	GinMode        string `env:"GIN_MODE" env-default:"debug"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("❌ cannot read configuration: %v", err)
	}
	return &cfg
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// MigrationURL returns the same database in the URL form golang-migrate expects.
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword), c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) TokenTTL() time.Duration {
	if c.JWTExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTExpiryHours) * time.Hour
}
