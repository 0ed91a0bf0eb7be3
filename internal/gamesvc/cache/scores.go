package cache

import (
	"context"
)

// Scores returns every user total recorded for the group.
func (c *Cache) Scores(ctx context.Context, guild string) (map[string]int, error) {
	if scores, ok := c.cachedScores(guild); ok {
		return scores, nil
	}

	unlock := c.scoreLocks.Lock(guild)
	defer unlock()
	return c.loadScores(ctx, guild)
}

// IncrementScore adds delta to the user's total and returns the new total.
// Increments of the same group are serialized and the store applies them
// atomically, so concurrent calls never lose an update.
//
// This is the standalone score contract of the cache. The game flow does
// not call it: resolution applies its awards inside ResolveGame. Only
// tests exercise it directly.
func (c *Cache) IncrementScore(ctx context.Context, guild, user string, delta int) (int, error) {
	unlock := c.scoreLocks.Lock(guild)
	defer unlock()

	if _, err := c.loadScores(ctx, guild); err != nil {
		return 0, err
	}
	total, err := c.backend.IncrementScore(ctx, guild, user, delta)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.scores[guild][user] = total
	c.mu.Unlock()
	return total, nil
}

// loadScores reads the partition through to the store. Callers hold the
// score lock of the group.
func (c *Cache) loadScores(ctx context.Context, guild string) (map[string]int, error) {
	if scores, ok := c.cachedScores(guild); ok {
		return scores, nil
	}
	scores, err := c.backend.GetScores(ctx, guild)
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = make(map[string]int)
	}

	c.mu.Lock()
	c.scores[guild] = copyScores(scores)
	c.mu.Unlock()
	return scores, nil
}

func (c *Cache) cachedScores(guild string) (map[string]int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	scores, ok := c.scores[guild]
	if !ok {
		return nil, false
	}
	return copyScores(scores), true
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}
