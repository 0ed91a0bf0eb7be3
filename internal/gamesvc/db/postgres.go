package db

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Dialer opens a fresh, pinged connection pool.
type Dialer func(ctx context.Context) (*pgxpool.Pool, error)

// DialURL returns a Dialer for the given DSN, falling back to POSTGRES_URL.
func DialURL(dsn string) Dialer {
	if dsn == "" {
		dsn = os.Getenv("POSTGRES_URL")
	}
	return func(ctx context.Context) (*pgxpool.Pool, error) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, err
		}

		// Try pinging to make sure it's valid
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}
}

// Connect initializes the connection pool
func Connect(dsn string) (*Conn, error) {
	dial := DialURL(dsn)
	pool, err := dial(context.Background())
	if err != nil {
		return nil, err
	}
	return NewConn(pool, dial), nil
}
