package service

import (
	"context"
	"sort"

	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// QueryService answers the read-only queries.
type QueryService struct {
	cache *cache.Cache
}

func NewQueryService(c *cache.Cache) *QueryService {
	return &QueryService{cache: c}
}

func (s *QueryService) Game(ctx context.Context, id int64) (*models.Game, error) {
	g, err := s.cache.Game(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, models.ErrGameNotFound
	}
	return g, nil
}

// Scoreboard ranks the group's players by score, highest first.
func (s *QueryService) Scoreboard(ctx context.Context, groupID string) ([]models.Standing, error) {
	scores, err := s.cache.Scores(ctx, groupID)
	if err != nil {
		return nil, err
	}

	standings := make([]models.Standing, 0, len(scores))
	for user, score := range scores {
		standings = append(standings, models.Standing{UserID: user, Score: score})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].UserID < standings[j].UserID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

// GamesPage returns one page of the group's finished games.
func (s *QueryService) GamesPage(ctx context.Context, groupID string, page int) (*models.GamesPage, error) {
	return s.cache.GamesPage(ctx, groupID, page)
}
