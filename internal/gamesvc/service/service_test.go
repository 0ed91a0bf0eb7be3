package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/messages"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/notify"
	"github.com/avvvet/sus-services/internal/gamesvc/store/memory"
)

const (
	group   = "g1"
	channel = "c1"
	role    = "players"
	host    = "alice"
	sus     = "dave"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	storage  *memory.Storage
	cache    *cache.Cache
	roles    *fakeRoles
	notifier *fakeNotifier
	groups   *GroupService
	games    *GameService
	votes    *VoteService
	queries  *QueryService

	resolved []*Resolution
	mu       sync.Mutex
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.cache = cache.New(s.storage)
	s.roles = newFakeRoles()
	s.roles.set(role, "alice", "bob", "carol", "dave")
	s.notifier = newFakeNotifier()

	s.groups = NewGroupService(s.cache)
	s.games = NewGameService(s.cache, s.roles, &fakeWords{word: "Apple"}, s.notifier, fixedRandom(3))
	s.votes = NewVoteService(s.cache, s.roles, s.notifier)
	s.queries = NewQueryService(s.cache)

	s.resolved = nil
	s.votes.OnResolved(func(ctx context.Context, grp *models.Group, res *Resolution) {
		s.mu.Lock()
		s.resolved = append(s.resolved, res)
		s.mu.Unlock()
	})

	_, err := s.groups.Ensure(s.ctx, group, "en-US")
	s.Require().NoError(err)
	s.Require().NoError(s.groups.SetRole(s.ctx, group, role))
}

func (s *ServiceSuite) start() *models.Game {
	g, err := s.games.StartGame(s.ctx, group, host, channel)
	s.Require().NoError(err)
	return g
}

func (s *ServiceSuite) place(g *models.Game) {
	placed, err := s.games.HandleMessage(s.ctx, models.ChatMessage{
		GroupID: group, ChannelID: channel, AuthorID: sus, Content: "I ate an apple today", Link: "msg-1",
	})
	s.Require().NoError(err)
	s.Require().True(placed)
}

func (s *ServiceSuite) open() {
	_, err := s.games.OpenVoting(s.ctx, group, host)
	s.Require().NoError(err)
}

func (s *ServiceSuite) vote(voter, accused, word string) *VoteReceipt {
	r, err := s.votes.SubmitVote(s.ctx, group, voter, accused, word)
	s.Require().NoError(err)
	return r
}

func (s *ServiceSuite) scores() map[string]int {
	scores, err := s.cache.Scores(s.ctx, group)
	s.Require().NoError(err)
	return scores
}

func (s *ServiceSuite) activeGame() bool {
	grp, err := s.cache.Group(s.ctx, group)
	s.Require().NoError(err)
	return grp.HasActiveGame()
}

// Start

func (s *ServiceSuite) TestStartGame() {
	g := s.start()

	s.Equal(models.StatusPlaying, g.Status)
	s.Equal(sus, g.ImposterID)
	s.Equal("apple", g.Word)
	s.Equal(host, g.HostID)
	s.Equal(channel, g.ChannelID)
	s.True(s.activeGame())

	s.Contains(s.notifier.to(notify.User(sus))[0], "apple")
	s.NotContains(s.notifier.to(notify.User("bob"))[0], "apple")
	s.Len(s.notifier.to(notify.Channel(channel)), 1)
}

func (s *ServiceSuite) TestStartRejectsSecondGame() {
	s.start()

	_, err := s.games.StartGame(s.ctx, group, "bob", channel)
	s.ErrorIs(err, models.ErrAlreadyActive)
}

func (s *ServiceSuite) TestStartRequiresRole() {
	_, err := s.games.StartGame(s.ctx, "other", host, channel)
	s.ErrorIs(err, models.ErrNoEligibleRole)

	s.Require().NoError(s.groups.SetRole(s.ctx, "other", "deleted-role"))
	_, err = s.games.StartGame(s.ctx, "other", host, channel)
	s.ErrorIs(err, models.ErrNoEligibleRole)
}

func (s *ServiceSuite) TestStartPlayerBounds() {
	s.roles.set(role, "a", "b")
	_, err := s.games.StartGame(s.ctx, group, host, channel)
	s.ErrorIs(err, models.ErrTooFewPlayers)

	many := make([]string, models.MaxPlayers+1)
	for i := range many {
		many[i] = string(rune('a' + i))
	}
	s.roles.set(role, many...)
	_, err = s.games.StartGame(s.ctx, group, host, channel)
	s.ErrorIs(err, models.ErrTooManyPlayers)

	s.roles.set(role, many[:models.MaxPlayers]...)
	_, err = s.games.StartGame(s.ctx, group, host, channel)
	s.NoError(err)
}

func (s *ServiceSuite) TestStartVoidsMessagesWhenOneFails() {
	s.notifier.refuse["carol"] = true

	_, err := s.games.StartGame(s.ctx, group, host, channel)
	s.ErrorIs(err, models.ErrNotificationFailed)
	var nerr *models.NotificationError
	s.Require().ErrorAs(err, &nerr)
	s.Equal("carol", nerr.UserID)

	// alice and bob were reached before carol and get their message voided.
	s.Equal([]string{"alice", "bob"}, s.notifier.voided())
	s.Zero(s.notifier.editCount())
	s.False(s.activeGame())
	s.Empty(s.notifier.to(notify.Channel(channel)))

	page, err := s.queries.GamesPage(s.ctx, group, 1)
	s.Require().NoError(err)
	s.Zero(page.Total)

	delete(s.notifier.refuse, "carol")
	s.start()
}

// Placement

func (s *ServiceSuite) TestHandleMessage() {
	g := s.start()

	for _, msg := range []models.ChatMessage{
		{GroupID: group, AuthorID: "bob", Content: "apple", Link: "x"},
		{GroupID: group, AuthorID: sus, Content: "nothing here", Link: "x"},
		{GroupID: group, AuthorID: sus, Content: "https://cdn.example.com/apple.png", Link: "x"},
	} {
		placed, err := s.games.HandleMessage(s.ctx, msg)
		s.Require().NoError(err)
		s.False(placed)
	}

	s.place(g)
	got, _ := s.queries.Game(s.ctx, g.ID)
	s.Equal("msg-1", got.Link)
	s.Contains(s.notifier.to(notify.User(sus)), messages.Format(models.LanguageEnglish, messages.DMPlaced, nil))

	placed, err := s.games.HandleMessage(s.ctx, models.ChatMessage{GroupID: group, AuthorID: sus, Content: "APPLE again", Link: "msg-2"})
	s.Require().NoError(err)
	s.False(placed)
	got, _ = s.queries.Game(s.ctx, g.ID)
	s.Equal("msg-1", got.Link)
}

func (s *ServiceSuite) TestHandleMessageWithoutGame() {
	placed, err := s.games.HandleMessage(s.ctx, models.ChatMessage{GroupID: "unknown", AuthorID: sus, Content: "apple"})
	s.NoError(err)
	s.False(placed)
}

// Voting phase

func (s *ServiceSuite) TestOpenVotingRejections() {
	_, err := s.games.OpenVoting(s.ctx, group, host)
	s.ErrorIs(err, models.ErrNoActiveGame)

	s.start()
	_, err = s.games.OpenVoting(s.ctx, group, "bob")
	s.ErrorIs(err, models.ErrNotHost)

	s.open()
	_, err = s.games.OpenVoting(s.ctx, group, host)
	s.ErrorIs(err, models.ErrAlreadyVoting)
}

func (s *ServiceSuite) TestOpenVotingWithoutPlacementRaisesMalus() {
	s.start()

	g, err := s.games.OpenVoting(s.ctx, group, host)
	s.Require().NoError(err)
	s.True(g.Malus)
	s.Contains(s.notifier.to(notify.User(sus)), messages.Format(models.LanguageEnglish, messages.DMPlaceDuringVote, nil))
}

func (s *ServiceSuite) TestOpenVotingAfterPlacement() {
	g := s.start()
	s.place(g)

	opened, err := s.games.OpenVoting(s.ctx, group, host)
	s.Require().NoError(err)
	s.False(opened.Malus)
	s.Equal(models.StatusVoting, opened.Status)
}

func (s *ServiceSuite) TestVoteRejections() {
	_, err := s.votes.SubmitVote(s.ctx, group, "bob", sus, "")
	s.ErrorIs(err, models.ErrNoActiveGame)

	s.start()
	_, err = s.votes.SubmitVote(s.ctx, group, "bob", sus, "")
	s.ErrorIs(err, models.ErrNotVoting)
}

func (s *ServiceSuite) TestAlreadyVotedKeepsFirstVote() {
	g := s.start()
	s.open()
	s.vote("bob", "carol", "")

	_, err := s.votes.SubmitVote(s.ctx, group, "bob", sus, "apple")
	var already *models.AlreadyVotedError
	s.Require().ErrorAs(err, &already)
	s.Equal("carol", already.Existing.AccusedID)

	votes, _ := s.cache.Votes(s.ctx, g.ID)
	s.Equal("carol", votes["bob"].AccusedID)
	s.Len(votes, 1)
}

func (s *ServiceSuite) TestSelfAndOffRosterVotesAccepted() {
	s.start()
	s.open()

	r := s.vote("bob", "bob", "")
	s.Equal(1, r.Count)
	r = s.vote("outsider", "nobody", "")
	s.Equal(2, r.Count)
	s.Equal(4, r.Players)
}

// Resolution scenarios

func (s *ServiceSuite) TestWordNeverPlaced() {
	s.start()
	s.open()

	s.vote("alice", sus, "")
	s.vote("bob", sus, "")
	s.vote("carol", "bob", "")
	r := s.vote(sus, "alice", "")
	s.True(r.Resolved)

	s.Equal(map[string]int{"alice": 1, "bob": 1, "carol": 1, sus: -8}, s.scores())
	s.False(s.activeGame())
	s.Require().Len(s.resolved, 1)
	s.Equal(models.Award{UserID: sus, Points: -8}, s.resolved[0].Awards[3])
}

func (s *ServiceSuite) TestMixedOutcome() {
	g := s.start()
	s.place(g)
	s.open()

	s.vote("alice", sus, "APPLE")
	s.vote("bob", sus, "pear")
	s.vote("carol", "bob", "")
	r := s.vote(sus, "alice", "")
	s.True(r.Resolved)

	s.Equal(map[string]int{"alice": 4, "bob": 2, sus: -2}, s.scores())
	s.Require().Len(s.resolved, 1)
	s.Equal([]models.Award{
		{UserID: "alice", Points: 4},
		{UserID: "bob", Points: 2},
		{UserID: "carol", Points: 0},
		{UserID: sus, Points: -2},
	}, s.resolved[0].Awards)

	ended, _ := s.queries.Game(s.ctx, g.ID)
	s.Equal(models.StatusEnded, ended.Status)
}

func (s *ServiceSuite) TestMalusCapsImposter() {
	s.start()
	s.open()
	// Placed after the votes opened: recorded, but the malus stays.
	placed, err := s.games.HandleMessage(s.ctx, models.ChatMessage{GroupID: group, AuthorID: sus, Content: "apple", Link: "late"})
	s.Require().NoError(err)
	s.True(placed)

	s.vote("alice", sus, "")
	s.vote("bob", "carol", "")
	s.vote("carol", "bob", "")
	s.vote(sus, "alice", "")

	s.Equal(map[string]int{"alice": 2, sus: -5}, s.scores())
	reveal := s.notifier.to(notify.Channel(channel))
	s.Contains(reveal, messages.Format(models.LanguageEnglish, messages.RevealMalus, map[string]string{
		"sus": messages.Mention(sus), "word": "apple", "link": "late",
	}))
}

func (s *ServiceSuite) TestRoleRecountedOnEveryVote() {
	s.start()
	s.open()

	r := s.vote("alice", sus, "")
	s.Equal(4, r.Players)
	s.vote("bob", sus, "")

	s.roles.set(role, "alice", "bob", "carol")
	r = s.vote("carol", sus, "")
	s.Equal(3, r.Players)
	s.True(r.Resolved)
}

func (s *ServiceSuite) TestCloseEarly() {
	g := s.start()
	s.place(g)
	s.open()
	s.vote("alice", sus, "")

	_, err := s.votes.CloseEarly(s.ctx, group, "bob")
	s.ErrorIs(err, models.ErrNotHost)

	res, err := s.votes.CloseEarly(s.ctx, group, host)
	s.Require().NoError(err)
	s.Equal(models.StatusEnded, res.Game.Status)
	// One catch, no loss.
	s.Equal(map[string]int{"alice": 2, sus: -5}, s.scores())

	_, err = s.votes.CloseEarly(s.ctx, group, host)
	s.ErrorIs(err, models.ErrNoActiveGame)
}

func (s *ServiceSuite) TestCloseEarlyBeforeVoting() {
	s.start()

	_, err := s.votes.CloseEarly(s.ctx, group, host)
	s.ErrorIs(err, models.ErrNotVoting)
}

func (s *ServiceSuite) TestResolvesExactlyOnce() {
	g := s.start()
	s.place(g)
	s.open()
	s.vote("alice", sus, "")
	s.vote("bob", sus, "")

	var (
		wg       sync.WaitGroup
		resolved atomic.Int32
	)
	for _, voter := range []string{"carol", sus} {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()
			if r, err := s.votes.SubmitVote(s.ctx, group, voter, "alice", ""); err == nil && r.Resolved {
				resolved.Add(1)
			}
		}(voter)
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.votes.CloseEarly(s.ctx, group, host); err == nil {
				resolved.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), resolved.Load())
	s.Require().Len(s.resolved, 1)

	applied := make(map[string]int)
	for _, a := range applicable(s.resolved[0].Game, s.resolved[0].Awards) {
		applied[a.UserID] += a.Points
	}
	s.Equal(applied, s.scores())
}

func (s *ServiceSuite) TestResolveIsNoOpOnceEnded() {
	g := s.start()
	s.open()
	_, err := s.votes.CloseEarly(s.ctx, group, host)
	s.Require().NoError(err)

	res, err := s.votes.Resolve(s.ctx, g.ID)
	s.NoError(err)
	s.Nil(res)
	s.Len(s.resolved, 1)
}

func (s *ServiceSuite) TestRemainingVoters() {
	s.start()
	_, err := s.votes.RemainingVoters(s.ctx, group)
	s.ErrorIs(err, models.ErrNotVoting)

	s.open()
	s.vote("bob", sus, "")
	s.vote(sus, "bob", "")

	remaining, err := s.votes.RemainingVoters(s.ctx, group)
	s.Require().NoError(err)
	s.Equal([]string{"alice", "carol"}, remaining)
}

func (s *ServiceSuite) TestSecondCacheOverSameStore() {
	g := s.start()

	// A second cache over the same store, as a stray second instance would have.
	other := cache.New(s.storage)
	otherGames := NewGameService(other, s.roles, &fakeWords{word: "Apple"}, s.notifier, fixedRandom(3))
	otherVotes := NewVoteService(other, s.roles, s.notifier)

	_, err := otherGames.OpenVoting(s.ctx, group, host)
	s.Require().NoError(err)

	// This cache still holds the game as playing.
	r, err := s.votes.SubmitVote(s.ctx, group, "bob", sus, "")
	s.Require().NoError(err)
	s.Equal(1, r.Count)

	_, err = otherVotes.CloseEarly(s.ctx, group, host)
	s.Require().NoError(err)

	_, err = s.votes.SubmitVote(s.ctx, group, "carol", sus, "")
	s.ErrorIs(err, models.ErrNoActiveGame)

	votes, err := s.storage.GetVotes(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Len(votes, 1)
	s.False(s.activeGame())
}

// Cancel

func (s *ServiceSuite) TestCancel() {
	_, err := s.games.Cancel(s.ctx, group, host)
	s.ErrorIs(err, models.ErrNoActiveGame)

	s.start()
	_, err = s.games.Cancel(s.ctx, group, "bob")
	s.ErrorIs(err, models.ErrNotHost)

	g, err := s.games.Cancel(s.ctx, group, host)
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, g.Status)
	s.False(s.activeGame())
	s.Empty(s.scores())

	_, err = s.games.Cancel(s.ctx, group, host)
	s.ErrorIs(err, models.ErrNoActiveGame)

	s.start()
}

func (s *ServiceSuite) TestCancelDuringVoting() {
	s.start()
	s.open()
	s.vote("bob", sus, "")

	_, err := s.games.Cancel(s.ctx, group, host)
	s.Require().NoError(err)

	_, err = s.votes.SubmitVote(s.ctx, group, "carol", sus, "")
	s.ErrorIs(err, models.ErrNoActiveGame)
	s.Empty(s.resolved)
}

// Queries and settings

func (s *ServiceSuite) TestScoreboard() {
	_, _ = s.cache.IncrementScore(s.ctx, group, "bob", 3)
	_, _ = s.cache.IncrementScore(s.ctx, group, "alice", 3)
	_, _ = s.cache.IncrementScore(s.ctx, group, "carol", 7)
	_, _ = s.cache.IncrementScore(s.ctx, group, sus, -2)

	board, err := s.queries.Scoreboard(s.ctx, group)
	s.Require().NoError(err)
	s.Equal([]models.Standing{
		{Rank: 1, UserID: "carol", Score: 7},
		{Rank: 2, UserID: "alice", Score: 3},
		{Rank: 3, UserID: "bob", Score: 3},
		{Rank: 4, UserID: sus, Score: -2},
	}, board)
}

func (s *ServiceSuite) TestGameNotFound() {
	_, err := s.queries.Game(s.ctx, 404)
	s.ErrorIs(err, models.ErrGameNotFound)
}

func (s *ServiceSuite) TestGamesPageListsFinishedGames() {
	first := s.start()
	_, err := s.games.Cancel(s.ctx, group, host)
	s.Require().NoError(err)
	second := s.start()
	s.open()
	_, err = s.votes.CloseEarly(s.ctx, group, host)
	s.Require().NoError(err)
	s.start()

	page, err := s.queries.GamesPage(s.ctx, group, 1)
	s.Require().NoError(err)
	s.Equal(2, page.Total)
	s.Require().Len(page.Games, 2)
	s.Equal(second.ID, page.Games[0].ID)
	s.Equal(first.ID, page.Games[1].ID)
}

func (s *ServiceSuite) TestGroupSettings() {
	grp, err := s.groups.Ensure(s.ctx, "fr-group", "fr")
	s.Require().NoError(err)
	s.Equal(models.LanguageFrench, grp.Language)

	grp, err = s.groups.Ensure(s.ctx, "de-group", "de")
	s.Require().NoError(err)
	s.Equal(models.DefaultLanguage, grp.Language)

	lang, err := s.groups.SetLanguage(s.ctx, "de-group", "ko")
	s.Require().NoError(err)
	s.Equal(models.LanguageKorean, lang)
	s.Equal(models.LanguageKorean, s.groups.Language(s.ctx, "de-group"))

	_, err = s.groups.SetLanguage(s.ctx, "de-group", "klingon")
	s.ErrorIs(err, models.ErrUnknownLanguage)
}
