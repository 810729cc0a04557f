package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: STATER_STORE_DRIVER, STATER_SERVER_ADDR...
const EnvPrefix = "STATER"

// Config is the CLI configuration, read from flags, STATER_* variables and an optional config file.
type Config struct {
	Manifest string        `mapstructure:"manifest"`
	Log      LogConfig     `mapstructure:"log"`
	Store    StoreConfig   `mapstructure:"store"`
	Server   ServerConfig  `mapstructure:"server"`
	Runner   RunnerConfig  `mapstructure:"runner"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	MCP      MCPConfig     `mapstructure:"mcp"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// StoreConfig selects the state store: memory, file or redis.
// EncryptionKey and FallbackKeys are base64 AES-256 keys; when set, stored states are sealed.
// Strict rejects writes of states the manifest never mentions.
type StoreConfig struct {
	Driver        string      `mapstructure:"driver"`
	Dir           string      `mapstructure:"dir"`
	Redis         RedisConfig `mapstructure:"redis"`
	EncryptionKey string      `mapstructure:"encryption_key"`
	FallbackKeys  []string    `mapstructure:"fallback_keys"`
	Strict        bool        `mapstructure:"strict"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RunnerConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// MCPConfig selects the transport of stater mcp: stdio or sse. Addr is used by sse only.
type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Addr      string `mapstructure:"addr"`
}

// SetDefaults registers the default of every key, which also makes each key
// visible to AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("manifest", "routes.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dir", ".stater/state")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "stater:state:")
	v.SetDefault("store.redis.ttl", time.Duration(0))
	v.SetDefault("store.redis.lock_ttl", 30*time.Second)
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("store.strict", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("runner.workers", 4)
	v.SetDefault("runner.queue_size", 64)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "stater")
	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.addr", ":8090")
}

// NewViper returns a viper instance with defaults and STATER_* environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the config file, if any, and decodes v.
func LoadConfig(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	switch cfg.Store.Driver {
	case "memory", "file", "redis":
	default:
		return Config{}, fmt.Errorf("unknown store driver %q (memory, file or redis)", cfg.Store.Driver)
	}
	return cfg, nil
}
