// Package config provides configuration loading, defaults, and validation
// for the verification service.
package config

import (
	"fmt"
	"time"

	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/internal/infrastructure/database/neo4j"
	"github.com/veriflowhq/veriflow/internal/infrastructure/database/postgres"
	"github.com/veriflowhq/veriflow/internal/infrastructure/database/redis"
	"github.com/veriflowhq/veriflow/internal/infrastructure/messaging/kafka"
	"github.com/veriflowhq/veriflow/internal/infrastructure/search/opensearch"
	"github.com/veriflowhq/veriflow/internal/infrastructure/storage/minio"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ProviderConfig selects and configures the identity provider.
type ProviderConfig struct {
	// Name selects the provider implementation: "verifyme" or "mock".
	Name     string        `mapstructure:"name"`
	BaseURL  string        `mapstructure:"base_url"`
	Secret   string        `mapstructure:"secret"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// AuthConfig holds API authentication and rate limiting settings.
type AuthConfig struct {
	// APIKeys maps client IDs to their shared keys.
	APIKeys     map[string]string `mapstructure:"api_keys"`
	RateLimit   int               `mapstructure:"rate_limit"`
	RateWindow  time.Duration     `mapstructure:"rate_window"`
	DisableAuth bool              `mapstructure:"disable_auth"`
}

// RiskConfig overrides the built-in scoring tables. Empty fields keep the
// defaults.
type RiskConfig struct {
	HomeCountry     string         `mapstructure:"home_country"`
	SectorScores    map[string]int `mapstructure:"sector_scores"`
	GreyList        []string       `mapstructure:"grey_list"`
	BlackList       []string       `mapstructure:"black_list"`
	ThresholdLow    int            `mapstructure:"threshold_low"`
	ThresholdMedium int            `mapstructure:"threshold_medium"`
}

// Tables merges the overrides onto the default scoring tables.
func (r RiskConfig) Tables() risk.Tables {
	tables := risk.DefaultTables()
	if r.HomeCountry != "" {
		tables.HomeCountry = r.HomeCountry
	}
	for sector, score := range r.SectorScores {
		tables.Sectors[sector] = score
	}
	if len(r.GreyList) > 0 {
		tables.GreyList = r.GreyList
	}
	if len(r.BlackList) > 0 {
		tables.BlackList = r.BlackList
	}
	if r.ThresholdLow > 0 {
		tables.ThresholdLow = r.ThresholdLow
	}
	if r.ThresholdMedium > 0 {
		tables.ThresholdMedium = r.ThresholdMedium
	}
	return tables
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// Config is the root configuration for the service.
type Config struct {
	Server     ServerConfig         `mapstructure:"server"`
	Database   postgres.Config      `mapstructure:"database"`
	Neo4j      neo4j.Config         `mapstructure:"neo4j"`
	Redis      redis.Config         `mapstructure:"redis"`
	Kafka      kafka.ProducerConfig `mapstructure:"kafka"`
	OpenSearch opensearch.Config    `mapstructure:"opensearch"`
	MinIO      minio.Config         `mapstructure:"minio"`
	Provider   ProviderConfig       `mapstructure:"provider"`
	Auth       AuthConfig           `mapstructure:"auth"`
	Risk       RiskConfig           `mapstructure:"risk"`
	Log        LogConfig            `mapstructure:"log"`

	MigrationsPath string `mapstructure:"migrations_path"`
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release, or test, got %q", c.Server.Mode)
	}

	switch c.Provider.Name {
	case "mock":
	case "verifyme":
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required for the verifyme provider")
		}
		if c.Provider.Secret == "" {
			return fmt.Errorf("provider.secret is required for the verifyme provider")
		}
	default:
		return fmt.Errorf("provider.name must be verifyme or mock, got %q", c.Provider.Name)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}

	if !c.Auth.DisableAuth && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys is required unless auth.disable_auth is set")
	}

	if c.Risk.ThresholdLow > 0 && c.Risk.ThresholdMedium > 0 &&
		c.Risk.ThresholdLow >= c.Risk.ThresholdMedium {
		return fmt.Errorf("risk.threshold_low must be below risk.threshold_medium")
	}
	return nil
}
