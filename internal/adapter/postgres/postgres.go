// Package postgres implements the measurement store using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain.MeasurementStore.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// NewFromSQL wraps an already opened connection without migrating it.
func NewFromSQL(s *sql.DB) *DB {
	return &DB{sql: s}
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS measurements (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			measured_at DATE NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('weight','height','head_circumference','bmi')),
			value DOUBLE PRECISION NOT NULL CHECK(value > 0),
			unit TEXT NOT NULL,
			percentile DOUBLE PRECISION CHECK(percentile BETWEEN 0 AND 100),
			z_score DOUBLE PRECISION,
			source TEXT NOT NULL DEFAULT 'manual',
			device_info JSONB,
			is_estimated BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_measurements_subject_date ON measurements(subject_id, measured_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_measurements_owner_id ON measurements(owner_id);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
