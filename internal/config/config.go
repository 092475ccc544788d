package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                  string        `mapstructure:"PORT"`
	Env                   string        `mapstructure:"ENV"`
	MongoURI              string        `mapstructure:"MONGO_URI"`
	MongoDatabase         string        `mapstructure:"MONGO_DATABASE"`
	StoreTimeout          time.Duration `mapstructure:"STORE_TIMEOUT"`
	JWTSecret             string        `mapstructure:"JWT_SECRET"`
	JWTTTL                time.Duration `mapstructure:"JWT_TTL"`
	CORSOrigins           []string      `mapstructure:"CORS_ORIGINS"`
	TrustedProxies        []string      `mapstructure:"TRUSTED_PROXIES"`
	RedisAddr             string        `mapstructure:"REDIS_ADDR"`
	CatalogCacheTTL       time.Duration `mapstructure:"CATALOG_CACHE_TTL"`
	BookingRateLimitRPS   float64       `mapstructure:"BOOKING_RATE_LIMIT_RPS"`
	BookingRateLimitBurst int           `mapstructure:"BOOKING_RATE_LIMIT_BURST"`
	TextbeltAPIKey        string        `mapstructure:"TEXTBELT_API_KEY"`
}

var keys = []string{
	"PORT", "ENV", "MONGO_URI", "MONGO_DATABASE", "STORE_TIMEOUT", "JWT_SECRET", "JWT_TTL",
	"CORS_ORIGINS", "TRUSTED_PROXIES", "REDIS_ADDR", "CATALOG_CACHE_TTL", "BOOKING_RATE_LIMIT_RPS",
	"BOOKING_RATE_LIMIT_BURST", "TEXTBELT_API_KEY",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGO_DATABASE", "doctors_portal")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("JWT_TTL", "1h")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("BOOKING_RATE_LIMIT_RPS", 5)
	v.SetDefault("BOOKING_RATE_LIMIT_BURST", 10)

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	// Empty means no proxy is trusted and the client IP is the peer address.
	cfg.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks the settings every command needs. Serving additionally
// requires ValidateServe.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("MONGO_DATABASE must not be empty")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	return nil
}

func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.BookingRateLimitRPS <= 0 || c.BookingRateLimitBurst <= 0 {
		return fmt.Errorf("BOOKING_RATE_LIMIT_RPS and BOOKING_RATE_LIMIT_BURST must be positive")
	}
	if c.RedisAddr != "" && c.CatalogCacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be positive when REDIS_ADDR is set")
	}
	return nil
}
