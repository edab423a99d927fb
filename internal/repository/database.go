package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIntervalNotSupported = errors.New("timeframe not supported")

// Database is a candle source backed by Postgres. One row per bar in the
// candles table, keyed by symbol, timeframe and time.
type Database struct {
	rows candleRows
	pool *pgxpool.Pool
}

// candleRows is the query surface, split out so tests can stub it.
type candleRows interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewDatabase creates a Database instance and verifies connectivity.
func NewDatabase(dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	return &Database{rows: pool, pool: pool}, nil
}

func (db *Database) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}
