package store

import (
	"github.com/avvvet/sus-services/internal/gamesvc/db"
)

// Postgres bundles the table stores over one connection.
type Postgres struct {
	*GroupPGStore
	*GamePGStore
	*VotePGStore
	*ScorePGStore
}

func NewPostgres(conn *db.Conn) *Postgres {
	return &Postgres{
		GroupPGStore: NewGroupStore(conn),
		GamePGStore:  NewGameStore(conn),
		VotePGStore:  NewVoteStore(conn),
		ScorePGStore: NewScoreStore(conn),
	}
}

// Ensure Postgres implements the interface
var _ Backend = (*Postgres)(nil)
