package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
	"github.com/avvvet/sus-services/internal/gamesvc/store"
)

// Storage is an in-memory implementation of the durable store. It mirrors
// the Postgres semantics: compare-and-set transitions, all-or-nothing
// resolution and atomic score increments.
type Storage struct {
	mu sync.Mutex

	groups map[string]*models.Group
	games  map[int64]*models.Game
	votes  map[int64]map[string]models.Vote
	scores map[scoreKey]int
	nextID int64
	now    func() time.Time
}

type scoreKey struct {
	guild string
	user  string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		groups: make(map[string]*models.Group),
		games:  make(map[int64]*models.Game),
		votes:  make(map[int64]map[string]models.Vote),
		scores: make(map[scoreKey]int),
		now:    time.Now,
	}
}

// Ensure Storage implements the interface
var _ store.Backend = (*Storage)(nil)

// Group operations

func (s *Storage) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups[id].Clone(), nil
}

func (s *Storage) CreateGroup(ctx context.Context, id string, lang models.Language) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group(id, lang).Clone(), nil
}

func (s *Storage) SetGroupRole(ctx context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group(id, models.DefaultLanguage).RoleID = role
	return nil
}

func (s *Storage) SetGroupLanguage(ctx context.Context, id string, lang models.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group(id, lang).Language = lang
	return nil
}

// group returns the stored group, inserting it first if needed. Callers hold mu.
func (s *Storage) group(id string, lang models.Language) *models.Group {
	g, ok := s.groups[id]
	if !ok {
		g = &models.Group{ID: id, Language: lang}
		s.groups[id] = g
	}
	return g
}

// Game operations

func (s *Storage) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneGame(s.games[id]), nil
}

func (s *Storage) CreateGame(ctx context.Context, ng models.NewGame) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grp := s.group(ng.GuildID, models.DefaultLanguage)
	if grp.GameID != nil {
		if cur, ok := s.games[*grp.GameID]; ok && !cur.Status.Terminal() {
			return nil, models.ErrAlreadyActive
		}
	}

	s.nextID++
	g := &models.Game{
		ID:         s.nextID,
		GuildID:    ng.GuildID,
		ChannelID:  ng.ChannelID,
		HostID:     ng.HostID,
		ImposterID: ng.ImposterID,
		Word:       ng.Word,
		Status:     models.StatusPlaying,
		CreatedAt:  s.now(),
	}
	s.games[g.ID] = g
	id := g.ID
	grp.GameID = &id
	return cloneGame(g), nil
}

func (s *Storage) SetGameLink(ctx context.Context, id int64, link string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok || !g.AcceptsPlacement() {
		return false, nil
	}
	g.Link = link
	return true, nil
}

func (s *Storage) OpenVoting(ctx context.Context, id int64) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.transition(id, models.StatusVoting)
	if err != nil {
		return nil, err
	}
	if !g.Placed() {
		g.Malus = true
	}
	return cloneGame(g), nil
}

func (s *Storage) CancelGame(ctx context.Context, id int64) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.transition(id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.release(g)
	return cloneGame(g), nil
}

func (s *Storage) ResolveGame(ctx context.Context, id int64, awards []models.Award) (*models.Game, map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.transition(id, models.StatusEnded)
	if err != nil {
		return nil, nil, err
	}
	s.release(g)

	totals := make(map[string]int, len(awards))
	for _, a := range awards {
		k := scoreKey{guild: g.GuildID, user: a.UserID}
		s.scores[k] += a.Points
		totals[a.UserID] = s.scores[k]
	}
	return cloneGame(g), totals, nil
}

func (s *Storage) ListFinishedGames(ctx context.Context, guild string, limit, offset int) ([]*models.Game, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var finished []*models.Game
	for _, g := range s.games {
		if g.GuildID == guild && g.Status.Terminal() {
			finished = append(finished, g)
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].ID > finished[j].ID })

	total := len(finished)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*models.Game, 0, end-offset)
	for _, g := range finished[offset:end] {
		page = append(page, cloneGame(g))
	}
	return page, total, nil
}

// transition applies a legal status change in place. Callers hold mu.
func (s *Storage) transition(id int64, to models.GameStatus) (*models.Game, error) {
	g, ok := s.games[id]
	if !ok {
		return nil, models.ErrGameNotFound
	}
	if !g.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: game %d is %s", models.ErrIllegalTransition, id, g.Status)
	}
	g.Status = to
	return g, nil
}

// release clears the group pointer if it still references g. Callers hold mu.
func (s *Storage) release(g *models.Game) {
	if grp, ok := s.groups[g.GuildID]; ok && grp.GameID != nil && *grp.GameID == g.ID {
		grp.GameID = nil
	}
}

// Vote operations

func (s *Storage) GetVotes(ctx context.Context, game int64) ([]models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	votes := make([]models.Vote, 0, len(s.votes[game]))
	for _, v := range s.votes[game] {
		votes = append(votes, v)
	}
	return votes, nil
}

func (s *Storage) InsertVote(ctx context.Context, v models.Vote) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[v.GameID]
	if !ok {
		return false, models.ErrGameNotFound
	}
	if g.Status != models.StatusVoting {
		return false, fmt.Errorf("%w: game %d is %s", models.ErrNotVoting, g.ID, g.Status)
	}
	byVoter, ok := s.votes[v.GameID]
	if !ok {
		byVoter = make(map[string]models.Vote)
		s.votes[v.GameID] = byVoter
	}
	if _, voted := byVoter[v.VoterID]; voted {
		return false, nil
	}
	byVoter[v.VoterID] = v
	return true, nil
}

// Score operations

func (s *Storage) GetScores(ctx context.Context, guild string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make(map[string]int)
	for k, v := range s.scores {
		if k.guild == guild {
			scores[k.user] = v
		}
	}
	return scores, nil
}

func (s *Storage) IncrementScore(ctx context.Context, guild, user string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scoreKey{guild: guild, user: user}
	s.scores[k] += delta
	return s.scores[k], nil
}

func cloneGame(g *models.Game) *models.Game {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}
