// Package database implements the warehouse/source DB executor over
// database/sql and github.com/jackc/pgx/v5/stdlib, grounded on
// glassflow-clickhouse-etl's Postgres storage adapter.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// Executor runs a model's rendered `CREATE ... AS ...` statement against a
// single Postgres connection pool.
type Executor struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open establishes the connection pool and verifies reachability with a ping.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*Executor, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, ferrors.NewExecution("", fmt.Errorf("open postgres connection: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, ferrors.NewExecution("", fmt.Errorf("ping postgres: %w", err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info().Int("max_open_conns", 25).Int("max_idle_conns", 5).Msg("postgres connection established")

	return &Executor{db: db, logger: logger}, nil
}

// ExecuteModel runs a model's wrapped materialization statement.
func (e *Executor) ExecuteModel(ctx context.Context, nodeName, statement string) error {
	if _, err := e.db.ExecContext(ctx, statement); err != nil {
		return ferrors.NewExecution(nodeName, err)
	}
	return nil
}

func (e *Executor) Close() error {
	return e.db.Close()
}
