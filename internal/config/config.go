package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	NATSSubject         string
	JWTSecret           string
	JWTTTL              time.Duration
	CORSAllowOrigins    string
	ReportCacheTTL      time.Duration
	NotificationBuffer  int
	NotificationWorkers int
	ErrorLogPath        string
	RateLimitMax        int
	RateLimitWindow     time.Duration
	SeedEnabled         bool
	SeedToken           string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsDevelopment reports whether the service runs in a development environment.
func (c Config) IsDevelopment() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "" || env == "development" || env == "dev" || env == "local"
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SCHOOL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Sekolah API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "sekolah.notifications.attendance")
	v.SetDefault("report.cache_ttl", "10m")
	v.SetDefault("notification.buffer", 256)
	v.SetDefault("notification.workers", 2)
	v.SetDefault("error_log.path", "logs/error.log")
	v.SetDefault("rate_limit.max", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("jwt.ttl", "12h")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("seed.enabled", false)

	ttl, err := parseDuration(v.GetString("report.cache_ttl"), 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	tokenTTL, err := parseDuration(v.GetString("jwt.ttl"), 12*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		NATSSubject:         v.GetString("nats.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTTTL:              tokenTTL,
		CORSAllowOrigins:    v.GetString("cors.allow_origins"),
		ReportCacheTTL:      ttl,
		NotificationBuffer:  v.GetInt("notification.buffer"),
		NotificationWorkers: v.GetInt("notification.workers"),
		ErrorLogPath:        v.GetString("error_log.path"),
		RateLimitMax:        v.GetInt("rate_limit.max"),
		RateLimitWindow:     window,
		SeedEnabled:         v.GetBool("seed.enabled"),
		SeedToken:           v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.NotificationBuffer <= 0 {
		cfg.NotificationBuffer = 256
	}

	if cfg.NotificationWorkers <= 0 {
		cfg.NotificationWorkers = 2
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 30
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
