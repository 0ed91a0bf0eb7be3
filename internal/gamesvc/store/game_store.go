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

const gameColumns = `id, guild, host, channel, sus, word, link, malus, status, created_at`

type GamePGStore struct {
	conn *db.Conn
}

func NewGameStore(conn *db.Conn) *GamePGStore {
	return &GamePGStore{conn: conn}
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var (
		g      models.Game
		link   *string
		status string
	)
	err := row.Scan(
		&g.ID,
		&g.GuildID,
		&g.HostID,
		&g.ChannelID,
		&g.ImposterID,
		&g.Word,
		&link,
		&g.Malus,
		&status,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if link != nil {
		g.Link = *link
	}
	g.Status = models.GameStatus(status)
	return &g, nil
}

func (s *GamePGStore) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	var game *models.Game
	err := s.conn.Run(ctx, "get game", func(ctx context.Context, pool *pgxpool.Pool) error {
		g, err := scanGame(pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil // Game not found
			}
			return fmt.Errorf("failed to get game by ID: %w", err)
		}
		game = g
		return nil
	})
	return game, err
}

// CreateGame inserts the game and claims the group pointer in one
// transaction. The pointer is only taken when it is empty or references a
// game that already reached a terminal status.
func (s *GamePGStore) CreateGame(ctx context.Context, ng models.NewGame) (*models.Game, error) {
	const insert = `
		INSERT INTO games (guild, host, channel, sus, word)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + gameColumns

	const claim = `
		INSERT INTO groups (id, game) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET game = EXCLUDED.game
		WHERE groups.game IS NULL
		   OR groups.game IN (SELECT id FROM games WHERE status IN ('ended', 'cancelled'))
	`

	var (
		game   *models.Game
		active bool
	)
	err := s.conn.Run(ctx, "create game", func(ctx context.Context, pool *pgxpool.Pool) error {
		active = false
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		// Serialize concurrent starts in the same group on the group row.
		if _, err := tx.Exec(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, ng.GuildID); err != nil {
			return fmt.Errorf("lock group: %w", err)
		}

		g, err := scanGame(tx.QueryRow(ctx, insert, ng.GuildID, ng.HostID, ng.ChannelID, ng.ImposterID, ng.Word))
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}

		res, err := tx.Exec(ctx, claim, ng.GuildID, g.ID)
		if err != nil {
			return fmt.Errorf("claim group: %w", err)
		}
		if res.RowsAffected() != 1 {
			active = true
			return nil
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	if active {
		return nil, models.ErrAlreadyActive
	}
	return game, nil
}

func (s *GamePGStore) SetGameLink(ctx context.Context, id int64, link string) (bool, error) {
	query := `
		UPDATE games SET link = $2
		WHERE id = $1 AND link IS NULL AND status IN ('playing', 'voting')
	`

	var set bool
	err := s.conn.Run(ctx, "set game link", func(ctx context.Context, pool *pgxpool.Pool) error {
		res, err := pool.Exec(ctx, query, id, link)
		if err != nil {
			return err
		}
		set = res.RowsAffected() == 1
		return nil
	})
	return set, err
}

func (s *GamePGStore) OpenVoting(ctx context.Context, id int64) (*models.Game, error) {
	query := `
		UPDATE games SET status = $2, malus = malus OR link IS NULL
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + gameColumns

	var game *models.Game
	err := s.conn.Run(ctx, "open voting", func(ctx context.Context, pool *pgxpool.Pool) error {
		g, err := scanGame(pool.QueryRow(ctx, query, id, string(models.StatusVoting), sources(models.StatusVoting)))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				game = nil
				return nil
			}
			return err
		}
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, s.rejectTransition(ctx, id)
	}
	return game, nil
}

func (s *GamePGStore) CancelGame(ctx context.Context, id int64) (*models.Game, error) {
	query := `
		UPDATE games SET status = $2
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + gameColumns

	var game *models.Game
	err := s.conn.Run(ctx, "cancel game", func(ctx context.Context, pool *pgxpool.Pool) error {
		game = nil
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		g, err := scanGame(tx.QueryRow(ctx, query, id, string(models.StatusCancelled), sources(models.StatusCancelled)))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("update game status: %w", err)
		}
		if err := releaseGroup(ctx, tx, g); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, s.rejectTransition(ctx, id)
	}
	return game, nil
}

func (s *GamePGStore) ResolveGame(ctx context.Context, id int64, awards []models.Award) (*models.Game, map[string]int, error) {
	const end = `
		UPDATE games SET status = $2
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + gameColumns

	var (
		game   *models.Game
		totals map[string]int
	)
	err := s.conn.Run(ctx, "resolve game", func(ctx context.Context, pool *pgxpool.Pool) error {
		game, totals = nil, nil
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		g, err := scanGame(tx.QueryRow(ctx, end, id, string(models.StatusEnded), sources(models.StatusEnded)))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Already resolved or cancelled by someone else.
				return nil
			}
			return fmt.Errorf("update game status: %w", err)
		}
		if err := releaseGroup(ctx, tx, g); err != nil {
			return err
		}

		newTotals := make(map[string]int, len(awards))
		for _, a := range awards {
			var total int
			if err := tx.QueryRow(ctx, incrementScoreSQL, g.GuildID, a.UserID, a.Points).Scan(&total); err != nil {
				return fmt.Errorf("increment score of %s: %w", a.UserID, err)
			}
			newTotals[a.UserID] = total
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		game, totals = g, newTotals
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if game == nil {
		return nil, nil, s.rejectTransition(ctx, id)
	}
	return game, totals, nil
}

func (s *GamePGStore) ListFinishedGames(ctx context.Context, guild string, limit, offset int) ([]*models.Game, int, error) {
	const count = `SELECT COUNT(*) FROM games WHERE guild = $1 AND status IN ('ended', 'cancelled')`
	const page = `
		SELECT ` + gameColumns + `
		FROM games
		WHERE guild = $1 AND status IN ('ended', 'cancelled')
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`

	var (
		games []*models.Game
		total int
	)
	err := s.conn.Run(ctx, "list games", func(ctx context.Context, pool *pgxpool.Pool) error {
		games = nil
		if err := pool.QueryRow(ctx, count, guild).Scan(&total); err != nil {
			return fmt.Errorf("count games: %w", err)
		}
		if total == 0 {
			return nil
		}

		rows, err := pool.Query(ctx, page, guild, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			g, err := scanGame(rows)
			if err != nil {
				return err
			}
			games = append(games, g)
		}
		return rows.Err()
	})
	return games, total, err
}

// sources lists, as query arguments, the statuses a game may move to "to"
// from, so the compare-and-set follows the same transition table as the
// rest of the service.
func sources(to models.GameStatus) []string {
	from := to.Sources()
	out := make([]string, len(from))
	for i, st := range from {
		out[i] = string(st)
	}
	return out
}

// rejectTransition tells a missing game apart from a status mismatch after
// a compare-and-set touched no row.
func (s *GamePGStore) rejectTransition(ctx context.Context, id int64) error {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return models.ErrGameNotFound
	}
	return fmt.Errorf("%w: game %d is %s", models.ErrIllegalTransition, id, g.Status)
}

// releaseGroup clears the group pointer if it still references g.
func releaseGroup(ctx context.Context, tx pgx.Tx, g *models.Game) error {
	_, err := tx.Exec(ctx, `UPDATE groups SET game = NULL WHERE id = $1 AND game = $2`, g.GuildID, g.ID)
	if err != nil {
		return fmt.Errorf("clear group game: %w", err)
	}
	return nil
}
