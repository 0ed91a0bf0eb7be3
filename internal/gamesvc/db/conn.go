package db

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// Conn owns the pool and replaces it when the connection to the server is
// lost. Every operation is retried exactly once after a reconnect.
type Conn struct {
	mu   sync.RWMutex
	pool *pgxpool.Pool
	gen  uint64
	dial Dialer
}

func NewConn(pool *pgxpool.Pool, dial Dialer) *Conn {
	return &Conn{pool: pool, dial: dial}
}

func (c *Conn) current() (*pgxpool.Pool, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool, c.gen
}

// Run executes fn against the pool. On a connection-class failure it
// reconnects and runs fn once more; whatever still fails is returned as a
// *models.StoreError.
func (c *Conn) Run(ctx context.Context, op string, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	pool, gen := c.current()
	err := fn(ctx, pool)
	if err == nil {
		return nil
	}
	if !IsConnectionError(err) {
		return &models.StoreError{Op: op, Err: err}
	}

	log.Warnf("db: %s failed on a broken connection, reconnecting: %s", op, err)
	if rerr := c.reconnect(ctx, gen); rerr != nil {
		log.Errorf("db: reconnect failed: %s", rerr)
		return &models.StoreError{Op: op, Err: rerr}
	}

	pool, _ = c.current()
	if err := fn(ctx, pool); err != nil {
		return &models.StoreError{Op: op, Err: err}
	}
	return nil
}

// reconnect swaps the pool unless another caller already did so since gen.
func (c *Conn) reconnect(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}

	pool, err := c.dial(ctx)
	if err != nil {
		return err
	}
	if c.pool != nil {
		c.pool.Close()
	}
	c.pool = pool
	c.gen++
	log.Infof("db: reconnected (generation %d)", c.gen)
	return nil
}

// Close is for graceful shutdown
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// IsConnectionError reports whether err means the link to the server is
// gone, as opposed to the server rejecting the statement.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception, 57P01..03 are admin/crash shutdowns.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}

	// fallback for pgxpool, which does not export these
	msg := err.Error()
	return strings.Contains(msg, "closed pool") || strings.Contains(msg, "conn closed")
}
