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

type GroupPGStore struct {
	conn *db.Conn
}

func NewGroupStore(conn *db.Conn) *GroupPGStore {
	return &GroupPGStore{conn: conn}
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	var (
		g    models.Group
		lang string
		role *string
	)
	if err := row.Scan(&g.ID, &lang, &role, &g.GameID); err != nil {
		return nil, err
	}
	g.Language = models.Language(lang)
	if role != nil {
		g.RoleID = *role
	}
	return &g, nil
}

func (s *GroupPGStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	query := `
		SELECT id, language, role, game
		FROM groups
		WHERE id = $1
	`

	var group *models.Group
	err := s.conn.Run(ctx, "get group", func(ctx context.Context, pool *pgxpool.Pool) error {
		g, err := scanGroup(pool.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil // Group not found
			}
			return fmt.Errorf("failed to get group %s: %w", id, err)
		}
		group = g
		return nil
	})
	return group, err
}

func (s *GroupPGStore) CreateGroup(ctx context.Context, id string, lang models.Language) (*models.Group, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO groups (id, language)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, language, role, game
	`

	var group *models.Group
	err := s.conn.Run(ctx, "create group", func(ctx context.Context, pool *pgxpool.Pool) error {
		g, err := scanGroup(pool.QueryRow(ctx, query, id, string(lang)))
		if err != nil {
			return fmt.Errorf("could not create group %s: %w", id, err)
		}
		group = g
		return nil
	})
	return group, err
}

func (s *GroupPGStore) SetGroupRole(ctx context.Context, id, role string) error {
	query := `
		INSERT INTO groups (id, role)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role
	`
	return s.conn.Run(ctx, "set group role", func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query, id, role)
		return err
	})
}

func (s *GroupPGStore) SetGroupLanguage(ctx context.Context, id string, lang models.Language) error {
	query := `
		INSERT INTO groups (id, language)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET language = EXCLUDED.language
	`
	return s.conn.Run(ctx, "set group language", func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query, id, string(lang))
		return err
	})
}
