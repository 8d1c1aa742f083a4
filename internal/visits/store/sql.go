package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agedist/migrations"
)

// Dialect holds the statements that differ between SQL engines.
type Dialect struct {
	Name   string
	Select string
	Upsert string
}

var (
	Postgres = Dialect{
		Name:   "postgres",
		Select: `SELECT value FROM visit_counters WHERE key = $1`,
		Upsert: `
			INSERT INTO visit_counters (key, value, updated_at)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = EXCLUDED.updated_at
		`,
	}
	SQLite = Dialect{
		Name:   "sqlite",
		Select: `SELECT value FROM visit_counters WHERE key = ?`,
		Upsert: `
			INSERT INTO visit_counters (key, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`,
	}
)

// SQLStore keeps counters in the visit_counters table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// NewPostgresStore expects a *sql.DB opened with the pgx stdlib driver.
func NewPostgresStore(db *sql.DB) *SQLStore {
	return NewSQLStore(db, Postgres)
}

// NewSQLiteStore expects a *sql.DB opened with the modernc "sqlite" driver.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return NewSQLStore(db, SQLite)
}

// Migrate creates the visit_counters table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmts, err := migrations.Up()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %s migration: %w", s.dialect.Name, err)
		}
	}
	return nil
}

func (s *SQLStore) Read(ctx context.Context, key string) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx, s.dialect.Select, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read visit counter: %w", err)
	}
	return value, nil
}

func (s *SQLStore) Write(ctx context.Context, key string, value int) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, key, value); err != nil {
		return fmt.Errorf("write visit counter: %w", err)
	}
	return nil
}

func (s *SQLStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
