package cache

import (
	"context"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// Votes returns the votes of a game keyed by voter.
func (c *Cache) Votes(ctx context.Context, game int64) (map[string]models.Vote, error) {
	if votes, ok := c.cachedVotes(game); ok {
		return votes, nil
	}

	unlock := c.gameLocks.Lock(game)
	defer unlock()
	return c.loadVotes(ctx, game)
}

// AddVote records the vote and returns how many distinct voters the game
// has now. A second vote by the same voter fails with
// *models.AlreadyVotedError carrying the vote on record. When the store
// says the game is no longer voting the cached game is refreshed and
// models.ErrNotVoting is returned.
func (c *Cache) AddVote(ctx context.Context, v models.Vote) (int, error) {
	unlock := c.gameLocks.Lock(v.GameID)
	defer unlock()

	votes, err := c.loadVotes(ctx, v.GameID)
	if err != nil {
		return 0, err
	}
	if existing, ok := votes[v.VoterID]; ok {
		return 0, &models.AlreadyVotedError{Existing: existing}
	}

	inserted, err := c.backend.InsertVote(ctx, v)
	if err != nil {
		return 0, c.rejected(ctx, v.GameID, err)
	}
	if !inserted {
		// Someone else wrote this voter's row; resync the partition from the store.
		c.mu.Lock()
		delete(c.votes, v.GameID)
		c.mu.Unlock()
		votes, err := c.loadVotes(ctx, v.GameID)
		if err != nil {
			return 0, err
		}
		return 0, &models.AlreadyVotedError{Existing: votes[v.VoterID]}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	partition := c.votes[v.GameID]
	partition[v.VoterID] = v
	return len(partition), nil
}

// loadVotes reads the partition through to the store. Callers hold the
// game lock.
func (c *Cache) loadVotes(ctx context.Context, game int64) (map[string]models.Vote, error) {
	if votes, ok := c.cachedVotes(game); ok {
		return votes, nil
	}
	list, err := c.backend.GetVotes(ctx, game)
	if err != nil {
		return nil, err
	}

	partition := make(map[string]models.Vote, len(list))
	for _, v := range list {
		partition[v.VoterID] = v
	}
	c.mu.Lock()
	c.votes[game] = partition
	c.mu.Unlock()
	return copyVotes(partition), nil
}

func (c *Cache) cachedVotes(game int64) (map[string]models.Vote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	votes, ok := c.votes[game]
	if !ok {
		return nil, false
	}
	return copyVotes(votes), true
}

func copyVotes(votes map[string]models.Vote) map[string]models.Vote {
	out := make(map[string]models.Vote, len(votes))
	for k, v := range votes {
		out[k] = v
	}
	return out
}
