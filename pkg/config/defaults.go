// Package config provides centralized configuration for Edify. Values come from
// built-in defaults, an optional .edify.yaml file and EDIFY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. EDIFY_PORT.
const EnvPrefix = "EDIFY"

// DefaultStorageKey is the single well-known key the progress collection lives under.
const DefaultStorageKey = "edify-progress"

// Storage drivers understood by the persistence layer.
const (
	StorageDriverFile   = "file"
	StorageDriverSQLite = "sqlite"
	StorageDriverLibSQL = "libsql"
	StorageDriverMemory = "memory"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CORSConfig holds the allowed browser origins for the JSON API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects and configures the progress storage backend
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	Key         string `mapstructure:"key"`
	LibSQLURL   string `mapstructure:"libsql_url"`
	LibSQLToken string `mapstructure:"libsql_token"`
}

// CatalogConfig points at an optional external catalog file
type CatalogConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// LogConfig mirrors the options of the channeled logger
type LogConfig struct {
	Directory string            `mapstructure:"directory"`
	ToFile    bool              `mapstructure:"to_file"`
	ToConsole bool              `mapstructure:"to_console"`
	JSON      bool              `mapstructure:"json"`
	Source    bool              `mapstructure:"source"`
	Level     string            `mapstructure:"level"`
	Channels  map[string]string `mapstructure:"channels"`
}

// SysopConfig protects the operator endpoints
type SysopConfig struct {
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

// ContactConfig configures delivery of contact form submissions
type ContactConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromEmail    string `mapstructure:"from_email"`
	FromName     string `mapstructure:"from_name"`
	ToEmail      string `mapstructure:"to_email"`
}

// SSEConfig tunes server-sent event streams
type SSEConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	ClientBuffer      int           `mapstructure:"client_buffer"`
}

// Config is the complete runtime configuration.
type Config struct {
	Port    string        `mapstructure:"port"`
	GinMode string        `mapstructure:"gin_mode"`
	Server  ServerConfig  `mapstructure:"server"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Log     LogConfig     `mapstructure:"log"`
	Sysop   SysopConfig   `mapstructure:"sysop"`
	Contact ContactConfig `mapstructure:"contact"`
	SSE     SSEConfig     `mapstructure:"sse"`
}

var defaults = map[string]any{
	"port":                   "8080",
	"gin_mode":               "debug",
	"server.read_timeout":    15 * time.Second,
	"server.write_timeout":   15 * time.Second,
	"server.idle_timeout":    60 * time.Second,
	"cors.allowed_origins":   []string{"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:8080"},
	"storage.driver":         StorageDriverFile,
	"storage.path":           "data/progress.json",
	"storage.key":            DefaultStorageKey,
	"storage.libsql_url":     "",
	"storage.libsql_token":   "",
	"catalog.path":           "",
	"catalog.watch":          false,
	"log.directory":          "logs",
	"log.to_file":            false,
	"log.to_console":         true,
	"log.json":               true,
	"log.source":             false,
	"log.level":              "info",
	"log.channels":           map[string]string{},
	"sysop.password_hash":    "",
	"sysop.jwt_secret":       "",
	"sysop.token_ttl":        time.Hour,
	"contact.resend_api_key": "",
	"contact.from_email":     "noreply@edify.local",
	"contact.from_name":      "Edify",
	"contact.to_email":       "",
	"sse.heartbeat_interval": 30 * time.Second,
	"sse.client_buffer":      16,
}

// SetDefaults registers every built-in default on v.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Default returns the built-in configuration without reading files or
// the environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid built-in defaults: %v", err))
	}
	return &cfg
}

// New returns a viper instance wired for Edify: defaults, EDIFY_* env
// overrides, and the config file at path (or .edify.yaml in the working or
// home directory when path is empty).
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".edify")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (a missing file is fine) and unmarshals the
// merged result into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Printf("Loaded configuration from %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	logOverrides(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverFile, StorageDriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", c.Storage.Driver)
		}
	case StorageDriverLibSQL:
		if c.Storage.LibSQLURL == "" {
			return fmt.Errorf("storage.libsql_url is required for the libsql driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key cannot be empty")
	}
	if c.Sysop.PasswordHash != "" && c.Sysop.JWTSecret == "" {
		return fmt.Errorf("sysop.jwt_secret is required when sysop.password_hash is set")
	}
	return nil
}

// ContactDeliveryEnabled reports whether contact submissions are sent for real.
func (c *Config) ContactDeliveryEnabled() bool {
	return c.Contact.ResendAPIKey != "" && c.Contact.ToEmail != ""
}

func logOverrides(v *viper.Viper) {
	for key, def := range defaults {
		if !v.IsSet(key) {
			continue
		}
		val := v.Get(key)
		if fmt.Sprint(val) != fmt.Sprint(def) {
			if strings.Contains(key, "secret") || strings.HasSuffix(key, "token") || strings.Contains(key, "api_key") || strings.Contains(key, "password") {
				log.Printf("Config override: %s=<redacted>", key)
				continue
			}
			log.Printf("Config override: %s=%v (default: %v)", key, val, def)
		}
	}
}
