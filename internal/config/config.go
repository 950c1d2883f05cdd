package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultCookieName     = "queueless_session"
	defaultCookieSameSite = "Lax"
	defaultCookiePath     = "/"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Uploads    UploadsConfig    `yaml:"uploads"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Seed       SeedConfig       `yaml:"-"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RateLimit      RateLimit     `yaml:"rate_limit"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	SlowQuery       time.Duration `yaml:"slow_query"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	CookieName     string        `yaml:"cookie_name"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	CookieSameSite string        `yaml:"cookie_samesite"`
	CookieDomain   string        `yaml:"cookie_domain"`
	CookiePath     string        `yaml:"cookie_path"`
}

type SchedulingConfig struct {
	Timezone           string        `yaml:"timezone"`
	DefaultSlotMinutes int           `yaml:"default_slot_minutes"`
	AvailabilityTTL    time.Duration `yaml:"availability_cache_ttl"`
	QueuePollSeconds   int           `yaml:"queue_poll_seconds"`
}

type UploadsConfig struct {
	Dir           string `yaml:"dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	MaxBytes      int64  `yaml:"max_bytes"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	MetricsPath    string `yaml:"metrics_path"`
}

// SeedConfig is read from the environment only.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	DemoCompany   bool
}

// Load reads .env (if present), the YAML file at path (optional, may be
// empty), applies env overrides and defaults, then validates.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Parse expands ${VAR} references and decodes YAML into cfg.
func Parse(data []byte, cfg *Config) error {
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := getEnv("APP_ENV", getEnv("ENV", "")); v != "" {
		c.App.Environment = v
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		c.Database.DSN = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := getEnv("REDIS_ADDR", ""); v != "" {
		c.Redis.Address = v
		c.Redis.Enabled = true
	}
	if v := getEnv("HTTP_PORT", ""); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = port
		}
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.HTTP.AllowedOrigins = splitList(v)
	}
	if v := getEnv("COOKIE_SECURE", ""); v != "" {
		c.Auth.CookieSecure = parseBool(v)
	}

	c.Seed.AdminEmail = strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))
	c.Seed.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	c.Seed.AdminName = getEnv("ADMIN_NAME", "Platform Admin")
	c.Seed.DemoCompany = parseBool(getEnv("SEED_DEMO_COMPANY", "false"))
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "queueless"
	}
	if c.App.Environment == "" {
		c.App.Environment = "dev"
	}
	c.App.Environment = strings.ToLower(strings.TrimSpace(c.App.Environment))

	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.RateLimit.RPS == 0 {
		c.HTTP.RateLimit.RPS = 20
	}
	if c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 40
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:queueless.db?_pragma=foreign_keys(1)"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = time.Hour
	}
	if c.Database.SlowQuery == 0 {
		c.Database.SlowQuery = 200 * time.Millisecond
	}

	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = defaultJWTSecret
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = defaultCookieName
	}
	if c.Auth.CookieSameSite == "" {
		c.Auth.CookieSameSite = defaultCookieSameSite
	}
	if c.Auth.CookiePath == "" {
		c.Auth.CookiePath = defaultCookiePath
	}

	if c.Scheduling.Timezone == "" {
		c.Scheduling.Timezone = "UTC"
	}
	if c.Scheduling.DefaultSlotMinutes == 0 {
		c.Scheduling.DefaultSlotMinutes = 30
	}
	if c.Scheduling.AvailabilityTTL == 0 {
		c.Scheduling.AvailabilityTTL = 2 * time.Minute
	}
	if c.Scheduling.QueuePollSeconds == 0 {
		c.Scheduling.QueuePollSeconds = 5
	}

	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "./uploads"
	}
	if c.Uploads.PublicBaseURL == "" {
		c.Uploads.PublicBaseURL = "/static/uploads"
	}
	if c.Uploads.MaxBytes == 0 {
		c.Uploads.MaxBytes = 6 * 1024 * 1024
	}

	if c.Monitoring.MetricsPath == "" {
		c.Monitoring.MetricsPath = "/metrics"
	}
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be in 1..65535")
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be > 0")
	}
	if c.Auth.CookieName == "" {
		return errors.New("auth.cookie_name must not be empty")
	}
	sameSite := strings.ToLower(strings.TrimSpace(c.Auth.CookieSameSite))
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return errors.New("auth.cookie_samesite must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !c.Auth.CookieSecure {
		return errors.New("auth.cookie_secure must be true when cookie_samesite=None")
	}
	if c.Scheduling.DefaultSlotMinutes < 5 || c.Scheduling.DefaultSlotMinutes > 480 {
		return errors.New("scheduling.default_slot_minutes must be in 5..480")
	}
	if _, err := time.LoadLocation(c.Scheduling.Timezone); err != nil {
		return fmt.Errorf("scheduling.timezone: %w", err)
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when redis is enabled")
	}

	if c.IsProdLike() {
		if isEmptyOrDefault(c.Auth.JWTSecret, defaultJWTSecret) {
			return errors.New("in prod/release JWT_SECRET must be set and not default")
		}
		if !c.Auth.CookieSecure {
			return errors.New("in prod/release auth.cookie_secure must be true")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.App.Environment))
	return env == "prod" || env == "production" || env == "release"
}

// Location returns the business timezone used to interpret calendar dates.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduling.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
