// Package config resolves settings from, in increasing priority: built-in
// defaults, an optional YAML config file, a .env file, and the process
// environment. Environment keys use the HEALTHSYNC_ prefix, e.g.
// HEALTHSYNC_WEB_PORT; DATABASE_URL and JWT_SECRET are honored too.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "HEALTHSYNC"

type Config struct {
	WebPort        string
	GRPCPort       string
	Secret         string
	DatabaseURL    string
	SeedFile       string
	DataDir        string
	Server         string
	LoginDelay     time.Duration
	TokenTTL       time.Duration
	LogLevel       string
	LogFormat      string
	RateLimitRPS   float64
	RateLimitBurst int
	SecureCookies  bool
}

// DefaultDataDir is where the terminal client keeps its session database.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".healthsync"
	}
	return filepath.Join(home, ".healthsync")
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("web_port", "8080")
	v.SetDefault("grpc_port", "50051")
	v.SetDefault("secret", "")
	v.SetDefault("database_url", "")
	v.SetDefault("seed_file", "")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("server", "")
	v.SetDefault("login_delay", "1s")
	v.SetDefault("token_ttl", "168h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("rate_limit_rps", 5.0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("secure_cookies", false)
}

// New returns a viper instance with defaults and environment binding set
// up. It does not read .env or any config file.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// unprefixed names used by existing deployments
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("secret", EnvPrefix+"_SECRET", "JWT_SECRET")
	return v
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load reads .env (if present) and returns the resolved configuration.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if v == nil {
		v = New()
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		WebPort:        v.GetString("web_port"),
		GRPCPort:       v.GetString("grpc_port"),
		Secret:         v.GetString("secret"),
		DatabaseURL:    v.GetString("database_url"),
		SeedFile:       v.GetString("seed_file"),
		DataDir:        v.GetString("data_dir"),
		Server:         v.GetString("server"),
		LoginDelay:     v.GetDuration("login_delay"),
		TokenTTL:       v.GetDuration("token_ttl"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		SecureCookies:  v.GetBool("secure_cookies"),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.LoginDelay < 0 {
		return fmt.Errorf("login_delay must not be negative, got %s", c.LoginDelay)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v/%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// RequireSecret is checked by the server, which signs cookies and tokens.
func (c *Config) RequireSecret() error {
	if c.Secret == "" {
		return errors.New("JWT_SECRET (or HEALTHSYNC_SECRET) is required")
	}
	if len(c.Secret) < 32 {
		return errors.New("secret must be at least 32 bytes")
	}
	return nil
}
