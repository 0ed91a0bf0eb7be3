package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// schema is applied statement by statement and is safe to re-run.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS groups (
		id       TEXT PRIMARY KEY,
		language TEXT NOT NULL DEFAULT 'en',
		role     TEXT,
		game     BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id         BIGSERIAL PRIMARY KEY,
		guild      TEXT NOT NULL,
		host       TEXT NOT NULL,
		channel    TEXT NOT NULL,
		sus        TEXT NOT NULL,
		word       TEXT NOT NULL,
		link       TEXT,
		malus      BOOLEAN NOT NULL DEFAULT false,
		status     TEXT NOT NULL DEFAULT 'playing'
		           CHECK (status IN ('playing', 'voting', 'ended', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS games_guild_status_idx ON games (guild, status, id DESC)`,
	`CREATE TABLE IF NOT EXISTS votes (
		game  BIGINT NOT NULL REFERENCES games (id),
		voter TEXT NOT NULL,
		voted TEXT NOT NULL,
		word  TEXT,
		PRIMARY KEY (game, voter)
	)`,
	`CREATE TABLE IF NOT EXISTS scores (
		guild  TEXT NOT NULL,
		"user" TEXT NOT NULL,
		score  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (guild, "user")
	)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, c *Conn) error {
	return c.Run(ctx, "migrate", func(ctx context.Context, pool *pgxpool.Pool) error {
		for _, stmt := range schema {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		log.Infof("db: schema up to date (%d statements)", len(schema))
		return nil
	})
}
