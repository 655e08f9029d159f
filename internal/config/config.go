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
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	SQLitePath         string
	RedisURL           string
	PreferenceCacheTTL time.Duration
	CanvasDomainSuffix string
	CanvasTimeout      time.Duration
	CanvasConcurrency  int
	WindowDays         int
	CycleTimeout       time.Duration
	AIProvider         string
	AIModel            string
	AIBaseURL          string
	AIAPIKey           string
	AIRequestInterval  time.Duration
	AllowedOrigins     string
	RateLimitMax       int
	RateLimitWindow    time.Duration
	AuthJWTSecret      string
	AuthTokenTTL       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CANVAS_HELPER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Canvas Helper API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.sqlite_path", "canvas-helper.db")
	v.SetDefault("preferences.cache_ttl", "5m")
	v.SetDefault("canvas.domain_suffix", "instructure.com")
	v.SetDefault("canvas.timeout", "15s")
	v.SetDefault("canvas.max_concurrency", 8)
	v.SetDefault("planner.window_days", 30)
	v.SetDefault("planner.cycle_timeout", "2m")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.request_interval", "200ms")
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("rate_limit.max", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("auth.token_ttl", "720h")

	cacheTTL, err := parseDuration(v, "preferences.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	canvasTimeout, err := parseDuration(v, "canvas.timeout")
	if err != nil {
		return Config{}, err
	}
	cycleTimeout, err := parseDuration(v, "planner.cycle_timeout")
	if err != nil {
		return Config{}, err
	}
	interval, err := parseDuration(v, "ai.request_interval")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "rate_limit.window")
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := parseDuration(v, "auth.token_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		SQLitePath:         v.GetString("database.sqlite_path"),
		RedisURL:           v.GetString("redis.url"),
		PreferenceCacheTTL: cacheTTL,
		CanvasDomainSuffix: strings.ToLower(strings.TrimSpace(v.GetString("canvas.domain_suffix"))),
		CanvasTimeout:      canvasTimeout,
		CanvasConcurrency:  v.GetInt("canvas.max_concurrency"),
		WindowDays:         v.GetInt("planner.window_days"),
		CycleTimeout:       cycleTimeout,
		AIProvider:         strings.ToLower(v.GetString("ai.provider")),
		AIModel:            v.GetString("ai.model"),
		AIBaseURL:          v.GetString("ai.base_url"),
		AIAPIKey:           v.GetString("ai.api_key"),
		AIRequestInterval:  interval,
		AllowedOrigins:     v.GetString("cors.allowed_origins"),
		RateLimitMax:       v.GetInt("rate_limit.max"),
		RateLimitWindow:    rateWindow,
		AuthJWTSecret:      strings.TrimSpace(v.GetString("auth.jwt_secret")),
		AuthTokenTTL:       tokenTTL,
	}

	if cfg.CanvasDomainSuffix == "" {
		return Config{}, fmt.Errorf("canvas domain suffix must be provided")
	}

	if cfg.AuthJWTSecret == "" {
		return Config{}, fmt.Errorf("auth jwt secret must be provided")
	}

	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}

	if cfg.CanvasConcurrency <= 0 {
		cfg.CanvasConcurrency = 8
	}

	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		return Config{}, fmt.Errorf("either database url or sqlite path must be provided")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ReplaceAll(key, "_", " "), err)
	}

	return value, nil
}
