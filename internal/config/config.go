// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable; nested structs group optional subsystems.
type Config struct {
	Env  string // APP_ENV (dev, test, prod)
	Port string // APP_PORT

	DB DBConfig

	JWTSecret    string // JWT_SECRET; empty leaves the admin surface unauthenticated
	AccessTTLMin int    // ACCESS_TOKEN_TTL_MIN, lifetime of minted admin tokens

	Booking         BookingConfig
	Redis           RedisConfig
	Cache           CacheConfig
	RateLimit       RateLimitConfig
	BrokerURL       string        // RABBITMQ_URL or AMQP_URL; empty disables booking events
	AuditLogPath    string        // BOOKING_LOG_PATH, where the consumer appends booking events
	ShutdownTimeout time.Duration // SHUTDOWN_TIMEOUT
}

// DBConfig describes the MySQL connection.
type DBConfig struct {
	User        string
	Pass        string
	Host        string
	Port        string
	Name        string
	AutoMigrate bool // DB_AUTO_MIGRATE, create tables on startup
}

// BookingConfig tunes the ledger and review rules.
type BookingConfig struct {
	Location                *time.Location // SHOW_TIMEZONE, zone show date/time strings are written in
	ReviewRequireAttendance bool           // REVIEW_REQUIRE_ATTENDANCE
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first, without overriding variables that
// are already set. Every missing or malformed required value is reported
// in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load()

	r := &reader{}
	cfg := Config{
		Env:  r.must("APP_ENV"),
		Port: r.must("APP_PORT"),
		DB: DBConfig{
			User:        r.must("DB_USER"),
			Pass:        envStr("DB_PASS", ""),
			Host:        r.must("DB_HOST"),
			Port:        r.must("DB_PORT"),
			Name:        r.must("DB_NAME"),
			AutoMigrate: envBool("DB_AUTO_MIGRATE", true),
		},
		JWTSecret:    envStr("JWT_SECRET", ""),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		Booking: BookingConfig{
			Location:                r.location("SHOW_TIMEZONE", "UTC"),
			ReviewRequireAttendance: envBool("REVIEW_REQUIRE_ATTENDANCE", false),
		},
		Redis:           LoadRedisConfig(),
		Cache:           LoadCacheConfig(),
		RateLimit:       LoadRateLimitConfig(),
		BrokerURL:       envStr("RABBITMQ_URL", envStr("AMQP_URL", "")),
		AuditLogPath:    envStr("BOOKING_LOG_PATH", "logs/booking.log"),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Development reports whether the app runs in a local environment.
// AuthConfig is the token subset of Config.
type AuthConfig struct {
	JWTSecret    string
	AccessTTLMin int
}

// LoadAuth reads only the token settings, for tools that never touch the
// database.
func LoadAuth() AuthConfig {
	_ = godotenv.Load()
	return AuthConfig{
		JWTSecret:    envStr("JWT_SECRET", ""),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
	}
}

func (c Config) Development() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

// reader collects errors for required values instead of exiting on the
// first one.
type reader struct {
	errs []error
}

func (r *reader) must(key string) string {
	v := envStr(key, "")
	if v == "" {
		r.errs = append(r.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (r *reader) location(key, def string) *time.Location {
	name := envStr(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s %q: %w", key, name, err))
		return time.UTC
	}
	return loc
}
