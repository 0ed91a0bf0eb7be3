package service

import (
	"context"
	"errors"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/messages"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/notify"
)

// RoleResolver lists the users currently holding the player role.
type RoleResolver interface {
	Members(ctx context.Context, group, role string) (members []string, found bool, err error)
}

// WordSupplier hands out secret words.
type WordSupplier interface {
	Word(ctx context.Context, lang models.Language) (string, error)
}

// Random picks the imposter.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// activeGame returns the group and its live game, or models.ErrNoActiveGame.
func activeGame(ctx context.Context, c *cache.Cache, groupID string) (*models.Group, *models.Game, error) {
	grp, err := c.EnsureGroup(ctx, groupID, models.DefaultLanguage)
	if err != nil {
		return nil, nil, err
	}
	if !grp.HasActiveGame() {
		return grp, nil, models.ErrNoActiveGame
	}
	game, err := c.Game(ctx, *grp.GameID)
	if err != nil {
		return grp, nil, err
	}
	if game == nil || game.Status.Terminal() {
		return grp, nil, models.ErrNoActiveGame
	}
	return grp, game, nil
}

// players resolves the group's player role, live.
func players(ctx context.Context, roles RoleResolver, grp *models.Group) ([]string, error) {
	if grp.RoleID == "" {
		return nil, models.ErrNoEligibleRole
	}
	members, found, err := roles.Members(ctx, grp.ID, grp.RoleID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNoEligibleRole
	}
	return members, nil
}

// announce posts to a channel. Announcements never fail the operation
// that triggered them.
func announce(ctx context.Context, n notify.Notifier, channelID, text string) {
	if _, err := n.Send(ctx, notify.Channel(channelID), text); err != nil {
		log.WithField("channel", channelID).Warnf("announcement failed: %v", err)
	}
}

// whisper sends a best-effort direct message.
func whisper(ctx context.Context, n notify.Notifier, userID, text string) {
	if _, err := n.Send(ctx, notify.User(userID), text); err != nil {
		log.WithField("user", userID).Warnf("direct message failed: %v", err)
	}
}

// transitionRejected turns a lost compare-and-set into the rejection the
// caller would have seen had it arrived a moment later.
func transitionRejected(ctx context.Context, c *cache.Cache, gameID int64, err error) error {
	if !errors.Is(err, models.ErrIllegalTransition) {
		return err
	}
	game, gerr := c.Game(ctx, gameID)
	if gerr != nil || game == nil || game.Status.Terminal() {
		return models.ErrNoActiveGame
	}
	if game.Status == models.StatusVoting {
		return models.ErrAlreadyVoting
	}
	return models.ErrNotVoting
}

func roleMention(grp *models.Group) string {
	if grp.RoleID == "" {
		return ""
	}
	return messages.RoleMention(grp.RoleID)
}
