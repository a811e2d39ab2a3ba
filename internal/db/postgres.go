package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createPostgresRecordsSQL = `
CREATE TABLE IF NOT EXISTS stored_records (
  scope TEXT NOT NULL,
  record_key TEXT NOT NULL,
  value TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (scope, record_key)
)`

func OpenPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createPostgresRecordsSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create stored_records table: %w", err)
	}
	return pool, nil
}

// PostgresRecordStore persists installation records in PostgreSQL.
type PostgresRecordStore struct {
	pool *pgxpool.Pool
}

func NewPostgresRecordStore(pool *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{pool: pool}
}

func (repo *PostgresRecordStore) Get(ctx context.Context, scope string, key string) ([]byte, bool, error) {
	var value string
	err := repo.pool.QueryRow(ctx,
		`SELECT value FROM stored_records WHERE scope = $1 AND record_key = $2`,
		scope, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (repo *PostgresRecordStore) Put(ctx context.Context, scope string, key string, value []byte) error {
	_, err := repo.pool.Exec(ctx, `
INSERT INTO stored_records (scope, record_key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (scope, record_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		scope, key, string(value),
	)
	return err
}

func (repo *PostgresRecordStore) ListScopes(ctx context.Context) ([]string, error) {
	rows, err := repo.pool.Query(ctx, `SELECT DISTINCT scope FROM stored_records ORDER BY scope`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
