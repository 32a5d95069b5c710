package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBHost          string        `mapstructure:"DB_HOST"`
	DBPort          string        `mapstructure:"DB_PORT"`
	DBUser          string        `mapstructure:"DB_USER"`
	DBPassword      string        `mapstructure:"DB_PASSWORD"`
	DBName          string        `mapstructure:"DB_NAME"`
	DBTimeZone      string        `mapstructure:"DB_TIMEZONE"`
	AutoMigrate     bool          `mapstructure:"AUTO_MIGRATE"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogPretty       bool          `mapstructure:"LOG_PRETTY"`
	SQLLogLevel     string        `mapstructure:"SQL_LOG_LEVEL"`
	ProductFeedURL  string        `mapstructure:"PRODUCT_FEED_URL"`
	FeedTimeout     time.Duration `mapstructure:"FEED_TIMEOUT"`
	LowStockLimit   int64         `mapstructure:"LOW_STOCK_LIMIT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"PORT":             "3000",
	"DATABASE_URL":     "",
	"DB_HOST":          "localhost",
	"DB_PORT":          "5432",
	"DB_USER":          "postgres",
	"DB_PASSWORD":      "",
	"DB_NAME":          "inventory",
	"DB_TIMEZONE":      "UTC",
	"AUTO_MIGRATE":     true,
	"LOG_LEVEL":        "info",
	"LOG_PRETTY":       false,
	"SQL_LOG_LEVEL":    "warn",
	"PRODUCT_FEED_URL": "https://dummyjson.com/products",
	"FEED_TIMEOUT":     "10s",
	"LOW_STOCK_LIMIT":  10,
	"SHUTDOWN_TIMEOUT": "30s",
}

// Load reads the optional .env files, then the process environment. Environment wins.
// A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load(envFiles...)

	return fromEnv(viper.New())
}

func fromEnv(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DatabaseURL == "" && (c.DBHost == "" || c.DBName == "") {
		return fmt.Errorf("DATABASE_URL or DB_HOST/DB_NAME is required")
	}
	if c.ProductFeedURL == "" {
		return fmt.Errorf("PRODUCT_FEED_URL is required")
	}
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBTimeZone,
	)
}
