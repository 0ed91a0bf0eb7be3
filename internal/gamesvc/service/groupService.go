package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// GroupService manages per-group settings.
type GroupService struct {
	cache *cache.Cache
}

func NewGroupService(c *cache.Cache) *GroupService {
	return &GroupService{cache: c}
}

// Ensure registers the group on first sight. The platform locale, when
// supported, becomes the group language.
func (s *GroupService) Ensure(ctx context.Context, groupID, locale string) (*models.Group, error) {
	lang, ok := models.ParseLanguage(locale)
	if !ok {
		lang = models.DefaultLanguage
	}
	grp, err := s.cache.EnsureGroup(ctx, groupID, lang)
	if err != nil {
		return nil, err
	}
	log.WithField("group", groupID).Debug("Group registered")
	return grp, nil
}

func (s *GroupService) SetRole(ctx context.Context, groupID, roleID string) error {
	if _, err := s.cache.EnsureGroup(ctx, groupID, models.DefaultLanguage); err != nil {
		return err
	}
	return s.cache.SetGroupRole(ctx, groupID, roleID)
}

func (s *GroupService) SetLanguage(ctx context.Context, groupID, language string) (models.Language, error) {
	lang, ok := models.ParseLanguage(language)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownLanguage, language)
	}
	if _, err := s.cache.EnsureGroup(ctx, groupID, lang); err != nil {
		return "", err
	}
	if err := s.cache.SetGroupLanguage(ctx, groupID, lang); err != nil {
		return "", err
	}
	return lang, nil
}

// Lookup returns the group, or nil when it was never seen.
func (s *GroupService) Lookup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.cache.Group(ctx, groupID)
}

// Language returns the group language, or the default for unknown groups.
func (s *GroupService) Language(ctx context.Context, groupID string) models.Language {
	grp, err := s.cache.Group(ctx, groupID)
	if err != nil || grp == nil {
		return models.DefaultLanguage
	}
	return grp.Language
}
