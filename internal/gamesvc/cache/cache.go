package cache

import (
	"sync"

	"github.com/avvvet/sus-services/internal/gamesvc/locks"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/store"
)

// PageSize is the number of games per history page.
const PageSize = 10

// Cache mirrors groups, games, per-game votes and per-group scores in
// memory and is the only component that talks to the durable store.
//
// Writes go to the store first; the maps change only after the store
// acknowledged. Misses and writes on the same key are serialized by a
// keyed lock, so a lazy load can never overwrite a newer value. Hits only
// take the read lock. Everything handed out is a copy.
//
// Lock order, when more than one is held: game, group, scores.
type Cache struct {
	backend store.Backend

	mu     sync.RWMutex
	groups map[string]*models.Group
	games  map[int64]*models.Game
	votes  map[int64]map[string]models.Vote
	scores map[string]map[string]int

	groupLocks *locks.Keyed[string]
	gameLocks  *locks.Keyed[int64]
	scoreLocks *locks.Keyed[string]
}

func New(backend store.Backend) *Cache {
	return &Cache{
		backend:    backend,
		groups:     make(map[string]*models.Group),
		games:      make(map[int64]*models.Game),
		votes:      make(map[int64]map[string]models.Vote),
		scores:     make(map[string]map[string]int),
		groupLocks: locks.NewKeyed[string](),
		gameLocks:  locks.NewKeyed[int64](),
		scoreLocks: locks.NewKeyed[string](),
	}
}

func cloneGame(g *models.Game) *models.Game {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}
