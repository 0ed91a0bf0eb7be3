package cache

import (
	"context"
	"errors"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// Game returns the game or nil when the store has no such row.
func (c *Cache) Game(ctx context.Context, id int64) (*models.Game, error) {
	if g, ok := c.cachedGame(id); ok {
		return g, nil
	}

	unlock := c.gameLocks.Lock(id)
	defer unlock()
	return c.loadGame(ctx, id)
}

// CreateGame persists a new playing game and points its group at it.
// It fails with models.ErrAlreadyActive when the group has a live game.
func (c *Cache) CreateGame(ctx context.Context, ng models.NewGame) (*models.Game, error) {
	unlock := c.groupLocks.Lock(ng.GuildID)
	defer unlock()

	g, err := c.backend.CreateGame(ctx, ng)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.games[g.ID] = cloneGame(g)
	if grp, ok := c.groups[g.GuildID]; ok {
		id := g.ID
		grp.GameID = &id
	}
	c.mu.Unlock()
	return g, nil
}

// RecordPlacement stores the placement link; only the first call for a
// game has an effect. It reports whether this call recorded it.
func (c *Cache) RecordPlacement(ctx context.Context, id int64, link string) (bool, error) {
	unlock := c.gameLocks.Lock(id)
	defer unlock()

	if g, ok := c.cachedGame(id); ok && !g.AcceptsPlacement() {
		return false, nil
	}
	set, err := c.backend.SetGameLink(ctx, id, link)
	if err != nil || !set {
		return false, err
	}

	c.mu.Lock()
	if g, ok := c.games[id]; ok {
		g.Link = link
	}
	c.mu.Unlock()
	return true, nil
}

// OpenVoting moves a playing game to voting. Malus is raised in the same
// write when the word was never placed.
func (c *Cache) OpenVoting(ctx context.Context, id int64) (*models.Game, error) {
	unlock := c.gameLocks.Lock(id)
	defer unlock()

	g, err := c.backend.OpenVoting(ctx, id)
	if err != nil {
		return nil, c.rejected(ctx, id, err)
	}
	c.putGame(g)
	return g, nil
}

// CancelGame moves a live game to cancelled and clears its group pointer.
func (c *Cache) CancelGame(ctx context.Context, id int64) (*models.Game, error) {
	unlock := c.gameLocks.Lock(id)
	defer unlock()

	cur, err := c.loadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, models.ErrGameNotFound
	}

	unlockGroup := c.groupLocks.Lock(cur.GuildID)
	defer unlockGroup()

	g, err := c.backend.CancelGame(ctx, id)
	if err != nil {
		return nil, c.rejected(ctx, id, err)
	}

	c.mu.Lock()
	c.games[id] = cloneGame(g)
	c.releaseGroup(g)
	c.mu.Unlock()
	return g, nil
}

// ResolveGame ends a voting game and applies awards in a single store
// write. Exactly one caller per game succeeds; the others get
// models.ErrIllegalTransition and nothing is applied twice.
func (c *Cache) ResolveGame(ctx context.Context, id int64, awards []models.Award) (*models.Game, error) {
	unlock := c.gameLocks.Lock(id)
	defer unlock()

	cur, err := c.loadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, models.ErrGameNotFound
	}

	unlockGroup := c.groupLocks.Lock(cur.GuildID)
	defer unlockGroup()
	unlockScores := c.scoreLocks.Lock(cur.GuildID)
	defer unlockScores()

	g, totals, err := c.backend.ResolveGame(ctx, id, awards)
	if err != nil {
		return nil, c.rejected(ctx, id, err)
	}

	c.mu.Lock()
	c.games[id] = cloneGame(g)
	c.releaseGroup(g)
	if scores, ok := c.scores[g.GuildID]; ok {
		for user, total := range totals {
			scores[user] = total
		}
	}
	c.mu.Unlock()
	return g, nil
}

// GamesPage returns one page of the group's finished games, newest
// first. Pages are 1-based; a page past the end falls back to page 1.
func (c *Cache) GamesPage(ctx context.Context, guild string, page int) (*models.GamesPage, error) {
	if page < 1 {
		page = 1
	}

	games, total, err := c.backend.ListFinishedGames(ctx, guild, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	pages := (total + PageSize - 1) / PageSize
	if page > 1 && page > pages {
		page = 1
		games, total, err = c.backend.ListFinishedGames(ctx, guild, PageSize, 0)
		if err != nil {
			return nil, err
		}
		pages = (total + PageSize - 1) / PageSize
	}

	// Finished games never change again, so they can be cached without
	// holding their key.
	c.mu.Lock()
	for _, g := range games {
		if _, ok := c.games[g.ID]; !ok {
			c.games[g.ID] = cloneGame(g)
		}
	}
	c.mu.Unlock()

	return &models.GamesPage{Games: games, Page: page, Pages: pages, Total: total}, nil
}

// RefreshGame rereads the game from the store, bypassing the cached copy.
func (c *Cache) RefreshGame(ctx context.Context, id int64) (*models.Game, error) {
	unlock := c.gameLocks.Lock(id)
	defer unlock()

	c.mu.Lock()
	delete(c.games, id)
	c.mu.Unlock()
	g, err := c.loadGame(ctx, id)
	if err != nil || g == nil || !g.Status.Terminal() {
		return g, err
	}
	c.mu.Lock()
	c.releaseGroup(g)
	c.mu.Unlock()
	return g, nil
}

// rejected refreshes the cached game after the store refused a
// transition, since the refusal means the cached status was stale.
func (c *Cache) rejected(ctx context.Context, id int64, err error) error {
	if errors.Is(err, models.ErrIllegalTransition) || errors.Is(err, models.ErrNotVoting) {
		c.refreshGame(ctx, id)
	}
	return err
}

// refreshGame replaces the cached game with the stored row. A game that
// turned out to be finished no longer holds its group. Callers hold the
// game lock.
func (c *Cache) refreshGame(ctx context.Context, id int64) {
	g, err := c.backend.GetGame(ctx, id)
	if err != nil || g == nil {
		return
	}
	c.mu.Lock()
	c.games[id] = cloneGame(g)
	if g.Status.Terminal() {
		c.releaseGroup(g)
	}
	c.mu.Unlock()
}

// loadGame reads through to the store. Callers hold the game lock.
func (c *Cache) loadGame(ctx context.Context, id int64) (*models.Game, error) {
	if g, ok := c.cachedGame(id); ok {
		return g, nil
	}
	g, err := c.backend.GetGame(ctx, id)
	if err != nil || g == nil {
		return nil, err
	}
	c.putGame(g)
	return cloneGame(g), nil
}

func (c *Cache) cachedGame(id int64) (*models.Game, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.games[id]
	return cloneGame(g), ok
}

func (c *Cache) putGame(g *models.Game) {
	c.mu.Lock()
	c.games[g.ID] = cloneGame(g)
	c.mu.Unlock()
}

// releaseGroup clears the cached group pointer if it references g.
// Callers hold mu.
func (c *Cache) releaseGroup(g *models.Game) {
	if grp, ok := c.groups[g.GuildID]; ok && grp.GameID != nil && *grp.GameID == g.ID {
		grp.GameID = nil
	}
}
