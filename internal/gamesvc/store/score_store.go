package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avvvet/sus-services/internal/gamesvc/db"
)

// incrementScoreSQL adds to the stored total in a single statement, so
// concurrent increments of the same (guild, user) never lose an update.
const incrementScoreSQL = `
	INSERT INTO scores (guild, "user", score)
	VALUES ($1, $2, $3)
	ON CONFLICT (guild, "user") DO UPDATE SET score = scores.score + EXCLUDED.score
	RETURNING score
`

type ScorePGStore struct {
	conn *db.Conn
}

func NewScoreStore(conn *db.Conn) *ScorePGStore {
	return &ScorePGStore{conn: conn}
}

func (s *ScorePGStore) GetScores(ctx context.Context, guild string) (map[string]int, error) {
	query := `SELECT "user", score FROM scores WHERE guild = $1`

	var scores map[string]int
	err := s.conn.Run(ctx, "get scores", func(ctx context.Context, pool *pgxpool.Pool) error {
		scores = make(map[string]int)
		rows, err := pool.Query(ctx, query, guild)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				user  string
				score int
			)
			if err := rows.Scan(&user, &score); err != nil {
				return fmt.Errorf("scan score: %w", err)
			}
			scores[user] = score
		}
		return rows.Err()
	})
	return scores, err
}

// IncrementScore backs cache.Cache.IncrementScore. Resolution does not go
// through here; it runs the same statement inside the ResolveGame
// transaction. Outside of that, only tests reach it.
func (s *ScorePGStore) IncrementScore(ctx context.Context, guild, user string, delta int) (int, error) {
	var total int
	err := s.conn.Run(ctx, "increment score", func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.QueryRow(ctx, incrementScoreSQL, guild, user, delta).Scan(&total)
	})
	return total, err
}
