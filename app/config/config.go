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

	"github.com/mytheresa/storefront/app/log"
)

// DefaultFile is read when Load is given no explicit path.
const DefaultFile = "storefront.yml"

const (
	SessionStoreMemory   = "memory"
	SessionStoreDatabase = "database"
)

// Config holds the complete storefront configuration
type Config struct {
	// Server settings
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`

	DatabaseURL string `yaml:"database_url"`

	// Uploads
	UploadDir      string `yaml:"upload_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	// Sessions and login
	SessionStore     string        `yaml:"session_store"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	CookieSecure     bool          `yaml:"cookie_secure"`
	LoginMaxAttempts int           `yaml:"login_max_attempts"`
	LoginWindow      time.Duration `yaml:"login_window"`

	LogLevel string `yaml:"log_level"`
}

// Load reads .env (if present), then the YAML file at path, then falls back to
// environment variables and finally defaults for anything still unset.
// An empty path reads DefaultFile when it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		log.Debug("loaded config file", "path", path)
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnvFallbacks(cfg)
	setDefaults(cfg)

	return cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreDatabase:
	default:
		return fmt.Errorf("session_store must be %q or %q, got %q", SessionStoreMemory, SessionStoreDatabase, c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	if c.LoginMaxAttempts < 1 {
		return errors.New("login_max_attempts must be at least 1")
	}
	if c.LoginWindow <= 0 {
		return errors.New("login_window must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// applyEnvFallbacks applies environment variable values to any unset config fields
func applyEnvFallbacks(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = getEnv("STOREFRONT_HOST", "")
	}
	if cfg.Port == 0 {
		cfg.Port = getEnvInt("STOREFRONT_PORT", getEnvInt("PORT", 0))
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = splitList(getEnv("STOREFRONT_ALLOWED_ORIGINS", ""))
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = getEnv("STOREFRONT_DATABASE_URL", getEnv("DATABASE_URL", ""))
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = getEnv("STOREFRONT_UPLOAD_DIR", "")
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = int64(getEnvInt("STOREFRONT_MAX_UPLOAD_BYTES", 0))
	}
	if cfg.SessionStore == "" {
		cfg.SessionStore = getEnv("STOREFRONT_SESSION_STORE", "")
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = getEnvDuration("STOREFRONT_SESSION_TTL", 0)
	}
	// Booleans can only be switched on from the environment
	if !cfg.CookieSecure {
		cfg.CookieSecure = strings.ToLower(getEnv("STOREFRONT_COOKIE_SECURE", "")) == "true"
	}
	if !cfg.TrustProxy {
		cfg.TrustProxy = strings.ToLower(getEnv("STOREFRONT_TRUST_PROXY", "")) == "true"
	}
	if cfg.LoginMaxAttempts == 0 {
		cfg.LoginMaxAttempts = getEnvInt("STOREFRONT_LOGIN_MAX_ATTEMPTS", 0)
	}
	if cfg.LoginWindow == 0 {
		cfg.LoginWindow = getEnvDuration("STOREFRONT_LOGIN_WINDOW", 0)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = getEnv("STOREFRONT_LOG_LEVEL", "")
	}
}

// setDefaults sets default values for any empty fields
func setDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "sqlite://storefront.db"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./uploads"
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 5 << 20
	}
	if cfg.SessionStore == "" {
		cfg.SessionStore = SessionStoreMemory
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.LoginMaxAttempts == 0 {
		cfg.LoginMaxAttempts = 5
	}
	if cfg.LoginWindow == 0 {
		cfg.LoginWindow = 15 * time.Minute
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// getEnv gets an environment variable or returns the default value
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt gets an environment variable as an integer or returns the default value
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
