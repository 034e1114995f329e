// Package neo4j stores traced ownership structures as a graph, so reviewers
// can walk shareholding chains across companies instead of re-tracing them
// per verification.
package neo4j

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Config holds the graph database connection settings.
type Config struct {
	URI                   string        `mapstructure:"uri"`
	Username              string        `mapstructure:"username"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	MaxConnectionLifetime time.Duration `mapstructure:"max_connection_lifetime"`
}

// Driver wraps the neo4j driver with config and lifecycle management.
type Driver struct {
	driver neo4j.DriverWithContext
	cfg    Config
	logger logging.Logger
}

// NewDriver connects to neo4j and verifies connectivity.
func NewDriver(ctx context.Context, cfg Config, log logging.Logger) (*Driver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
			if cfg.MaxConnectionLifetime > 0 {
				c.MaxConnectionLifetime = cfg.MaxConnectionLifetime
			}
		})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to create neo4j driver")
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to verify neo4j connectivity")
	}

	log.Info("connected to neo4j", logging.String("uri", cfg.URI))
	return &Driver{driver: driver, cfg: cfg, logger: log}, nil
}

// Session opens a session against the configured database.
func (d *Driver) Session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: d.cfg.Database,
	})
}

// Ping verifies the connection is still alive.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.driver.VerifyConnectivity(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "neo4j ping failed")
	}
	return nil
}

// Close shuts the driver down.
func (d *Driver) Close(ctx context.Context) error {
	if err := d.driver.Close(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to close neo4j driver")
	}
	d.logger.Info("neo4j connection closed")
	return nil
}
