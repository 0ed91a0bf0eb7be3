package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/locks"
	"github.com/avvvet/sus-services/internal/gamesvc/messages"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/notify"
	"github.com/avvvet/sus-services/internal/gamesvc/placement"
)

// GameService drives a game from its start to the opening of the votes,
// or to its cancellation.
type GameService struct {
	cache    *cache.Cache
	roles    RoleResolver
	words    WordSupplier
	notifier notify.Notifier
	random   Random
	starts   *locks.Keyed[string]
}

func NewGameService(c *cache.Cache, roles RoleResolver, words WordSupplier, notifier notify.Notifier, random Random) *GameService {
	if random == nil {
		random = globalRandom{}
	}
	return &GameService{
		cache:    c,
		roles:    roles,
		words:    words,
		notifier: notifier,
		random:   random,
		starts:   locks.NewKeyed[string](),
	}
}

// StartGame picks a word and an imposter among the player role, tells
// every player their part and only then persists the game. When one of
// them cannot be reached, the messages already sent are voided and
// nothing is persisted.
func (s *GameService) StartGame(ctx context.Context, groupID, hostID, channelID string) (*models.Game, error) {
	unlock := s.starts.Lock(groupID)
	defer unlock()

	grp, game, err := activeGame(ctx, s.cache, groupID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: game %d", models.ErrAlreadyActive, game.ID)
	case !errors.Is(err, models.ErrNoActiveGame):
		return nil, err
	}

	members, err := players(ctx, s.roles, grp)
	if err != nil {
		return nil, err
	}
	if len(members) < models.MinPlayers {
		return nil, models.ErrTooFewPlayers
	}
	if len(members) > models.MaxPlayers {
		return nil, models.ErrTooManyPlayers
	}

	word, err := s.words.Word(ctx, grp.Language)
	if err != nil {
		return nil, fmt.Errorf("get word: %w", err)
	}
	word = strings.ToLower(word)
	imposter := members[s.random.IntN(len(members))]

	sent := make([]notify.Sent, 0, len(members))
	for _, m := range members {
		text := messages.Format(grp.Language, messages.DMCrew, nil)
		if m == imposter {
			text = messages.Format(grp.Language, messages.DMImposter, map[string]string{"word": word})
		}
		msg, err := s.notifier.Send(ctx, notify.User(m), text)
		if err != nil {
			log.WithFields(log.Fields{"group": groupID, "user": m}).Errorf("Attempt to start a game failed, DM could not be sent: %v", err)
			s.void(ctx, grp.Language, sent)
			return nil, &models.NotificationError{UserID: m, Err: err}
		}
		sent = append(sent, msg)
	}

	game, err = s.Create(ctx, models.NewGame{
		GuildID:    groupID,
		ChannelID:  channelID,
		HostID:     hostID,
		ImposterID: imposter,
		Word:       word,
	})
	if err != nil {
		s.void(ctx, grp.Language, sent)
		return nil, err
	}

	log.WithFields(log.Fields{"group": groupID, "game": game.ID, "players": len(members)}).Info("Game started")
	announce(ctx, s.notifier, channelID, messages.Format(grp.Language, messages.GameLaunch, map[string]string{
		"mention": roleMention(grp),
		"id":      strconv.FormatInt(game.ID, 10),
	}))
	return game, nil
}

// void strikes through the start-up messages of a game that never began.
func (s *GameService) void(ctx context.Context, lang models.Language, sent []notify.Sent) {
	note := messages.Format(lang, messages.DMVoided, nil)
	for _, m := range sent {
		if err := s.notifier.Void(ctx, m, note); err != nil {
			log.WithField("user", m.To.ID).Warnf("could not void start message: %v", err)
		}
	}
}

// Create persists a playing game and makes it the group's active game.
func (s *GameService) Create(ctx context.Context, ng models.NewGame) (*models.Game, error) {
	ng.Word = strings.ToLower(ng.Word)
	return s.cache.CreateGame(ctx, ng)
}

// RecordPlacement stores where the imposter placed the word. Only the
// first placement of a game counts.
func (s *GameService) RecordPlacement(ctx context.Context, gameID int64, link string) (bool, error) {
	return s.cache.RecordPlacement(ctx, gameID, link)
}

// HandleMessage watches group chat for the imposter placing the word.
func (s *GameService) HandleMessage(ctx context.Context, msg models.ChatMessage) (bool, error) {
	grp, err := s.cache.Group(ctx, msg.GroupID)
	if err != nil || grp == nil || !grp.HasActiveGame() {
		return false, err
	}
	game, err := s.cache.Game(ctx, *grp.GameID)
	if err != nil || game == nil {
		return false, err
	}
	if msg.AuthorID != game.ImposterID || !game.AcceptsPlacement() {
		return false, nil
	}
	if !placement.Contains(msg.Content, game.Word) {
		return false, nil
	}

	placed, err := s.RecordPlacement(ctx, game.ID, msg.Link)
	if err != nil || !placed {
		return false, err
	}
	log.WithFields(log.Fields{"group": grp.ID, "game": game.ID, "user": msg.AuthorID}).Info("Word placed")
	whisper(ctx, s.notifier, msg.AuthorID, messages.Format(grp.Language, messages.DMPlaced, nil))
	return true, nil
}

// OpenVoting lets the host move the game to its voting phase. An imposter
// who has not placed the word yet gets the malus and is told so.
func (s *GameService) OpenVoting(ctx context.Context, groupID, actorID string) (*models.Game, error) {
	grp, game, err := activeGame(ctx, s.cache, groupID)
	if err != nil {
		return nil, err
	}
	if game.Status == models.StatusVoting {
		return nil, models.ErrAlreadyVoting
	}
	if game.HostID != actorID {
		return nil, models.ErrNotHost
	}

	opened, err := s.cache.OpenVoting(ctx, game.ID)
	if err != nil {
		return nil, transitionRejected(ctx, s.cache, game.ID, err)
	}

	if opened.Malus {
		whisper(ctx, s.notifier, opened.ImposterID, messages.Format(grp.Language, messages.DMPlaceDuringVote, nil))
	}
	log.WithFields(log.Fields{"group": groupID, "game": opened.ID, "malus": opened.Malus}).Info("Votes opened")
	announce(ctx, s.notifier, opened.ChannelID, messages.Format(grp.Language, messages.VoteOpen, map[string]string{
		"mention": roleMention(grp),
	}))
	return opened, nil
}

// Cancel lets the host abandon the game. No points are awarded.
func (s *GameService) Cancel(ctx context.Context, groupID, actorID string) (*models.Game, error) {
	grp, game, err := activeGame(ctx, s.cache, groupID)
	if err != nil {
		return nil, err
	}
	if game.HostID != actorID {
		return nil, models.ErrNotHost
	}

	cancelled, err := s.cache.CancelGame(ctx, game.ID)
	if err != nil {
		return nil, transitionRejected(ctx, s.cache, game.ID, err)
	}

	log.WithFields(log.Fields{"group": groupID, "game": cancelled.ID}).Info("Game cancelled")
	announce(ctx, s.notifier, cancelled.ChannelID, messages.Format(grp.Language, messages.GameCancelled, map[string]string{
		"mention": roleMention(grp),
	}))
	return cancelled, nil
}
