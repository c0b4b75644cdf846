// Package pgrepo stores users, counters and history in postgres.
package pgrepo

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/xxxsen/dermaai/internal/config"
	"github.com/xxxsen/dermaai/internal/repo"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	repo.Register("postgres", openStore)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*repo.Store, error) {
	db, err := Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wires the repositories over an already migrated database.
func NewStore(db *sql.DB) *repo.Store {
	return repo.NewStore(NewUserRepo(db), NewCounterRepo(db), NewHistoryRepo(db), func(context.Context) error {
		return db.Close()
	})
}

func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func DSN(cfg config.PostgresConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslmode)
}

func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}
