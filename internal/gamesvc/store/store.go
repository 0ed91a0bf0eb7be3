package store

import (
	"context"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// GroupStore persists group settings. Not-found reads return nil, nil.
type GroupStore interface {
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	// CreateGroup inserts the group unless it exists and returns the stored row.
	CreateGroup(ctx context.Context, id string, lang models.Language) (*models.Group, error)
	SetGroupRole(ctx context.Context, id, role string) error
	SetGroupLanguage(ctx context.Context, id string, lang models.Language) error
}

// GameStore persists games. Status changes are compare-and-set: a change
// whose source status does not match returns models.ErrIllegalTransition.
type GameStore interface {
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	// CreateGame inserts a playing game and points the group at it, or
	// returns models.ErrAlreadyActive when the group has a live game.
	CreateGame(ctx context.Context, g models.NewGame) (*models.Game, error)
	// SetGameLink records the placement once; it reports whether this call set it.
	SetGameLink(ctx context.Context, id int64, link string) (bool, error)
	// OpenVoting moves playing -> voting, raising malus when no link is set.
	OpenVoting(ctx context.Context, id int64) (*models.Game, error)
	// CancelGame moves playing|voting -> cancelled and clears the group pointer.
	CancelGame(ctx context.Context, id int64) (*models.Game, error)
	// ResolveGame moves voting -> ended, clears the group pointer and applies
	// every award, all or nothing. It returns the new totals of awarded users.
	ResolveGame(ctx context.Context, id int64, awards []models.Award) (*models.Game, map[string]int, error)
	// ListFinishedGames pages through ended and cancelled games, newest first.
	ListFinishedGames(ctx context.Context, guild string, limit, offset int) ([]*models.Game, int, error)
}

type VoteStore interface {
	GetVotes(ctx context.Context, game int64) ([]models.Vote, error)
	// InsertVote reports false when the voter already voted in this game.
	// It fails with models.ErrNotVoting unless the stored game is voting,
	// whatever status the caller last saw.
	InsertVote(ctx context.Context, v models.Vote) (bool, error)
}

type ScoreStore interface {
	GetScores(ctx context.Context, guild string) (map[string]int, error)
	// IncrementScore atomically adds delta and returns the new total.
	IncrementScore(ctx context.Context, guild, user string, delta int) (int, error)
}

// Backend is everything the cache layer needs from the durable store.
type Backend interface {
	GroupStore
	GameStore
	VoteStore
	ScoreStore
}
