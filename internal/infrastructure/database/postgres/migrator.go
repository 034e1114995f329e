package postgres

import (
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Migrator applies schema migrations from a file source.
type Migrator struct {
	sourceURL string
	dbURL     string
	logger    logging.Logger
}

// NewMigrator creates a migrator for the given migrations directory.
func NewMigrator(migrationsPath string, cfg Config, log logging.Logger) *Migrator {
	sourceURL := migrationsPath
	if !strings.Contains(sourceURL, "://") {
		sourceURL = "file://" + sourceURL
	}
	// golang-migrate selects its pgx/v5 driver by URL scheme.
	dbURL := strings.Replace(cfg.DSN(), "postgres://", "pgx5://", 1)
	return &Migrator{sourceURL: sourceURL, dbURL: dbURL, logger: log}
}

// Up applies all pending migrations. A database already at the latest
// version is not an error.
func (m *Migrator) Up() error {
	mg, err := migrate.New(m.sourceURL, m.dbURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to initialise migrator")
	}
	defer func() {
		srcErr, dbErr := mg.Close()
		if srcErr != nil {
			m.logger.Warn("migration source close failed", logging.Err(srcErr))
		}
		if dbErr != nil {
			m.logger.Warn("migration database close failed", logging.Err(dbErr))
		}
	}()

	if err := mg.Up(); err != nil {
		if err == migrate.ErrNoChange {
			m.logger.Info("database schema already up to date")
			return nil
		}
		return errors.Wrap(err, errors.CodeDatabase, "migration failed")
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to read migration version")
	}
	m.logger.Info("database migrated",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back a single migration step.
func (m *Migrator) Down() error {
	mg, err := migrate.New(m.sourceURL, m.dbURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to initialise migrator")
	}
	defer mg.Close()

	if err := mg.Steps(-1); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "rollback failed")
	}
	return nil
}
