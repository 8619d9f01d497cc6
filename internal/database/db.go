// Package database opens the Postgres connection behind the users store
// and brings the users schema up to date.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/config"
)

const pingTimeout = 5 * time.Second

// DB is the pooled connection shared by the Postgres user repository
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New connects to the users database described by cfg. The pool is
// sized from cfg and the connection is verified before returning.
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	pool, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("open users database: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach users database at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	db := &DB{
		DB:  pool,
		log: log.With().Str("store", config.StorePostgres).Logger(),
	}

	db.log.Info().
		Str("db_host", cfg.Host).
		Str("db_name", cfg.Name).
		Int("pool_size", cfg.MaxOpenConns).
		Msg("Users database connected")

	return db, nil
}

// RunMigrations applies the pending users schema migrations found in dir.
// An already current schema is not an error.
func (db *DB) RunMigrations(dir string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("users schema driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("load users schema migrations from %s: %w", dir, err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		db.log.Debug().Str("migrations_dir", dir).Msg("Users schema already current")
	case err != nil:
		return fmt.Errorf("migrate users schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read users schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("users schema version %d is dirty, fix it manually", version)
	}

	db.log.Info().
		Str("migrations_dir", dir).
		Uint("schema_version", version).
		Msg("Users schema ready")

	return nil
}
