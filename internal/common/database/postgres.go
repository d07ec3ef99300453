// internal/common/database/postgres.go

// Package database holds the thin connection wrappers shared by the stores:
// Postgres for durable evaluation records, Redis for the result cache and the
// work queue, Elasticsearch for the search index.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"appraisal-engine/internal/common/config"

	_ "github.com/lib/pq"
)

// Connections are recycled aggressively; evaluation queries are short and
// bursty, so idle connections buy nothing.
const connMaxLifetime = 5 * time.Minute

// PostgresClient wraps the SQL connection pool backing the evaluation store.
type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxLifetime)

	return &PostgresClient{DB: db}, nil
}

// Ping probes the connection; the readiness endpoint calls this.
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Query runs a row-returning statement bound to ctx.
func (c *PostgresClient) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, query, args...)
}

// QueryRow runs a statement expected to return at most one row.
func (c *PostgresClient) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// Exec runs a statement with no result rows.
func (c *PostgresClient) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}
