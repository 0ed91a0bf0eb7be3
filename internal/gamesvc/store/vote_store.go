package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avvvet/sus-services/internal/gamesvc/db"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

type VotePGStore struct {
	conn *db.Conn
}

func NewVoteStore(conn *db.Conn) *VotePGStore {
	return &VotePGStore{conn: conn}
}

func (s *VotePGStore) GetVotes(ctx context.Context, game int64) ([]models.Vote, error) {
	query := `
		SELECT game, voter, voted, word
		FROM votes
		WHERE game = $1
	`

	var votes []models.Vote
	err := s.conn.Run(ctx, "get votes", func(ctx context.Context, pool *pgxpool.Pool) error {
		votes = nil
		rows, err := pool.Query(ctx, query, game)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				v    models.Vote
				word *string
			)
			if err := rows.Scan(&v.GameID, &v.VoterID, &v.AccusedID, &word); err != nil {
				return fmt.Errorf("scan vote: %w", err)
			}
			if word != nil {
				v.Word = *word
			}
			votes = append(votes, v)
		}
		return rows.Err()
	})
	return votes, err
}

// InsertVote relies on the (game, voter) primary key: a second vote from
// the same voter inserts nothing. The game row is share-locked for the
// insert, so a vote can never land after the game left voting.
func (s *VotePGStore) InsertVote(ctx context.Context, v models.Vote) (bool, error) {
	const gate = `SELECT status FROM games WHERE id = $1 FOR SHARE`
	const insert = `
		INSERT INTO votes (game, voter, voted, word)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game, voter) DO NOTHING
	`

	var word *string
	if v.Word != "" {
		word = &v.Word
	}

	var (
		inserted bool
		status   string
	)
	err := s.conn.Run(ctx, "insert vote", func(ctx context.Context, pool *pgxpool.Pool) error {
		inserted, status = false, ""
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := tx.QueryRow(ctx, gate, v.GameID).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("lock game: %w", err)
		}
		if models.GameStatus(status) != models.StatusVoting {
			return nil
		}

		res, err := tx.Exec(ctx, insert, v.GameID, v.VoterID, v.AccusedID, word)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		inserted = res.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	switch {
	case status == "":
		return false, models.ErrGameNotFound
	case models.GameStatus(status) != models.StatusVoting:
		return false, fmt.Errorf("%w: game %d is %s", models.ErrNotVoting, v.GameID, status)
	}
	return inserted, nil
}
