package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/locks"
	"github.com/avvvet/sus-services/internal/gamesvc/messages"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/notify"
	"github.com/avvvet/sus-services/internal/gamesvc/scoring"
)

// VoteReceipt tells a voter where the vote stands.
type VoteReceipt struct {
	Count    int  // Distinct voters so far
	Players  int  // Current size of the player role, 0 when unknown
	Resolved bool // This vote completed the game
}

// Resolution is the outcome of a finished game.
type Resolution struct {
	Game   *models.Game
	Awards []models.Award // Sorted by points, highest first
}

// ResolvedHook runs once per game after its scores were applied.
type ResolvedHook func(ctx context.Context, grp *models.Group, res *Resolution)

// VoteService collects votes and resolves games.
type VoteService struct {
	cache    *cache.Cache
	roles    RoleResolver
	notifier notify.Notifier
	games    *locks.Keyed[int64]
	hooks    []ResolvedHook
}

func NewVoteService(c *cache.Cache, roles RoleResolver, notifier notify.Notifier) *VoteService {
	s := &VoteService{
		cache:    c,
		roles:    roles,
		notifier: notifier,
		games:    locks.NewKeyed[int64](),
	}
	s.OnResolved(s.announceResolution)
	return s
}

// OnResolved registers a hook. Hooks are not safe to add once games run.
func (s *VoteService) OnResolved(h ResolvedHook) {
	s.hooks = append(s.hooks, h)
}

// SubmitVote records a vote. Votes are not validated against the player
// role: voting for yourself or for a non-player is allowed. When the
// number of voters reaches the current size of the player role the game
// is resolved right away.
func (s *VoteService) SubmitVote(ctx context.Context, groupID, voterID, accusedID, word string) (*VoteReceipt, error) {
	grp, game, err := activeGame(ctx, s.cache, groupID)
	if err != nil {
		return nil, err
	}

	unlock := s.games.Lock(game.ID)
	defer unlock()

	// The game may have been resolved while we waited.
	game, err = s.cache.Game(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	if game != nil && game.Status == models.StatusPlaying {
		// Only the store knows whether voting opened since we cached it.
		game, err = s.cache.RefreshGame(ctx, game.ID)
		if err != nil {
			return nil, err
		}
	}
	if game == nil || game.Status.Terminal() {
		return nil, models.ErrNoActiveGame
	}
	if !game.AcceptsVotes() {
		return nil, models.ErrNotVoting
	}

	count, err := s.cache.AddVote(ctx, models.Vote{
		GameID:    game.ID,
		VoterID:   voterID,
		AccusedID: accusedID,
		Word:      strings.TrimSpace(word),
	})
	if errors.Is(err, models.ErrNotVoting) {
		// The store saw the game leave voting; the cache now agrees.
		if g, gerr := s.cache.Game(ctx, game.ID); gerr == nil && (g == nil || g.Status.Terminal()) {
			return nil, models.ErrNoActiveGame
		}
		return nil, models.ErrNotVoting
	}
	if err != nil {
		return nil, err
	}

	receipt := &VoteReceipt{Count: count}
	members, err := players(ctx, s.roles, grp)
	if err != nil {
		log.WithFields(log.Fields{"group": groupID, "game": game.ID}).Warnf("could not count players: %v", err)
	} else {
		receipt.Players = len(members)
	}

	announce(ctx, s.notifier, game.ChannelID, messages.Format(grp.Language, messages.Voted, map[string]string{
		"mention":     messages.Mention(voterID),
		"voteCount":   strconv.Itoa(count),
		"playerCount": strconv.Itoa(receipt.Players),
	}))

	if receipt.Players > 0 && count == receipt.Players {
		res, err := s.Resolve(ctx, game.ID)
		if err != nil {
			return receipt, err
		}
		receipt.Resolved = res != nil
	}
	return receipt, nil
}

// CloseEarly lets the host end the votes before everybody voted.
func (s *VoteService) CloseEarly(ctx context.Context, groupID, actorID string) (*Resolution, error) {
	_, game, err := activeGame(ctx, s.cache, groupID)
	if err != nil {
		return nil, err
	}
	if !game.AcceptsVotes() {
		return nil, models.ErrNotVoting
	}
	if game.HostID != actorID {
		return nil, models.ErrNotHost
	}

	unlock := s.games.Lock(game.ID)
	defer unlock()

	res, err := s.Resolve(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, models.ErrNoActiveGame
	}
	return res, nil
}

// Resolve scores a voting game and ends it. Every path that ends a game
// goes through here and the store only lets one of them through; the
// others get a nil Resolution.
func (s *VoteService) Resolve(ctx context.Context, gameID int64) (*Resolution, error) {
	game, err := s.cache.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, models.ErrGameNotFound
	}
	if !game.AcceptsVotes() {
		return nil, nil
	}

	byVoter, err := s.cache.Votes(ctx, gameID)
	if err != nil {
		return nil, err
	}
	votes := make([]models.Vote, 0, len(byVoter))
	for _, v := range byVoter {
		votes = append(votes, v)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].VoterID < votes[j].VoterID })

	result := scoring.Resolve(game, votes)
	ended, err := s.cache.ResolveGame(ctx, gameID, applicable(game, result.Awards))
	if errors.Is(err, models.ErrIllegalTransition) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"group":  ended.GuildID,
		"game":   ended.ID,
		"wins":   result.Wins,
		"losses": result.Losses,
		"malus":  ended.Malus,
	}).Info("Game resolved")

	res := &Resolution{Game: ended, Awards: result.Awards}
	grp, err := s.cache.EnsureGroup(ctx, ended.GuildID, models.DefaultLanguage)
	if err != nil {
		log.WithField("game", ended.ID).Warnf("resolved hooks skipped: %v", err)
		return res, nil
	}
	for _, h := range s.hooks {
		h(ctx, grp, res)
	}
	return res, nil
}

// applicable drops zero awards: a player who guessed wrong gets no score
// row. The imposter always gets one, even at zero.
func applicable(game *models.Game, awards []models.Award) []models.Award {
	out := make([]models.Award, 0, len(awards))
	for _, a := range awards {
		if a.Points != 0 || a.UserID == game.ImposterID {
			out = append(out, a)
		}
	}
	return out
}

// RemainingVoters lists the players who have not voted yet.
func (s *VoteService) RemainingVoters(ctx context.Context, groupID string) ([]string, error) {
	grp, game, err := activeGame(ctx, s.cache, groupID)
	if err != nil {
		return nil, err
	}
	if !game.AcceptsVotes() {
		return nil, models.ErrNotVoting
	}

	members, err := players(ctx, s.roles, grp)
	if err != nil {
		return nil, err
	}
	votes, err := s.cache.Votes(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	remaining := make([]string, 0, len(members))
	for _, m := range members {
		if _, voted := votes[m]; !voted {
			remaining = append(remaining, m)
		}
	}
	return remaining, nil
}

func (s *VoteService) announceResolution(ctx context.Context, grp *models.Group, res *Resolution) {
	game := res.Game
	lang := grp.Language

	announce(ctx, s.notifier, game.ChannelID, messages.Format(lang, messages.VoteEnd, map[string]string{
		"mention": roleMention(grp),
	}))

	reveal := messages.RevealNormal
	switch {
	case !game.Placed():
		reveal = messages.RevealNotPlaced
	case game.Malus:
		reveal = messages.RevealMalus
	}
	announce(ctx, s.notifier, game.ChannelID, messages.Format(lang, reveal, map[string]string{
		"sus":  messages.Mention(game.ImposterID),
		"word": game.Word,
		"link": game.Link,
	}))

	var earnings strings.Builder
	for _, a := range res.Awards {
		earnings.WriteString(messages.Format(lang, messages.PointsEarned, map[string]string{
			"mention": messages.Mention(a.UserID),
			"amount":  strconv.Itoa(a.Points),
		}))
		earnings.WriteString("\n")
	}
	announce(ctx, s.notifier, game.ChannelID, earnings.String())
}
