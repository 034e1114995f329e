package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all service settings.
const envPrefix = "VERIFLOW"

// envKeys lists every leaf key so env-only overrides survive Unmarshal;
// viper ignores unbound keys that appear in no config file.
var envKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
	"database.host", "database.port", "database.database", "database.username", "database.password",
	"database.ssl_mode", "database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time", "database.connect_timeout",
	"neo4j.uri", "neo4j.username", "neo4j.password", "neo4j.database",
	"neo4j.max_connection_pool_size", "neo4j.max_connection_lifetime",
	"redis.addr", "redis.username", "redis.password", "redis.db", "redis.pool_size",
	"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"kafka.brokers", "kafka.acks", "kafka.batch_size", "kafka.batch_timeout",
	"kafka.write_timeout", "kafka.max_attempts",
	"opensearch.addresses", "opensearch.username", "opensearch.password", "opensearch.index",
	"minio.endpoint", "minio.access_key_id", "minio.secret_access_key",
	"minio.use_ssl", "minio.region", "minio.bucket",
	"provider.name", "provider.base_url", "provider.secret", "provider.timeout", "provider.cache_ttl",
	"auth.rate_limit", "auth.rate_window", "auth.disable_auth",
	"risk.home_country", "risk.threshold_low", "risk.threshold_medium",
	"log.level", "log.format", "log.enable_caller",
	"migrations_path",
}

// newViper builds a pre-configured viper instance: YAML file type, VERIFLOW_
// env prefix, automatic env binding, and a key replacer so nested keys like
// "database.host" resolve to "VERIFLOW_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges VERIFLOW_* environment
// overrides, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from VERIFLOW_* environment variables
// with no config file. Preferred for containerised deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk. Intended for hot-reloading
// non-critical settings such as log level and rate limits; a change that
// fails to parse or validate is dropped without invoking the callback.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on error; for use in main() where a config
// load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
