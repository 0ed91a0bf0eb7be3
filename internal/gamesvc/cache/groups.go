package cache

import (
	"context"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// Group returns the group or nil when the store has no such row.
func (c *Cache) Group(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := c.cachedGroup(id); ok {
		return g, nil
	}

	unlock := c.groupLocks.Lock(id)
	defer unlock()
	return c.loadGroup(ctx, id)
}

// EnsureGroup returns the group, creating it with lang on first sight.
func (c *Cache) EnsureGroup(ctx context.Context, id string, lang models.Language) (*models.Group, error) {
	if g, ok := c.cachedGroup(id); ok {
		return g, nil
	}

	unlock := c.groupLocks.Lock(id)
	defer unlock()

	if g, ok := c.cachedGroup(id); ok {
		return g, nil
	}
	g, err := c.backend.CreateGroup(ctx, id, lang)
	if err != nil {
		return nil, err
	}
	c.putGroup(g)
	return g.Clone(), nil
}

func (c *Cache) SetGroupRole(ctx context.Context, id, role string) error {
	unlock := c.groupLocks.Lock(id)
	defer unlock()

	if err := c.backend.SetGroupRole(ctx, id, role); err != nil {
		return err
	}
	c.updateGroup(id, func(g *models.Group) { g.RoleID = role })
	return nil
}

func (c *Cache) SetGroupLanguage(ctx context.Context, id string, lang models.Language) error {
	unlock := c.groupLocks.Lock(id)
	defer unlock()

	if err := c.backend.SetGroupLanguage(ctx, id, lang); err != nil {
		return err
	}
	c.updateGroup(id, func(g *models.Group) { g.Language = lang })
	return nil
}

// loadGroup reads through to the store. Callers hold the group lock.
func (c *Cache) loadGroup(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := c.cachedGroup(id); ok {
		return g, nil
	}
	g, err := c.backend.GetGroup(ctx, id)
	if err != nil || g == nil {
		return nil, err
	}
	c.putGroup(g)
	return g.Clone(), nil
}

func (c *Cache) cachedGroup(id string) (*models.Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.groups[id]
	return g.Clone(), ok
}

func (c *Cache) putGroup(g *models.Group) {
	c.mu.Lock()
	c.groups[g.ID] = g.Clone()
	c.mu.Unlock()
}

// updateGroup mutates the cached group, if any. A group that is not
// cached yet will be read from the store on its next lookup.
func (c *Cache) updateGroup(id string, fn func(g *models.Group)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[id]; ok {
		fn(g)
	}
}
