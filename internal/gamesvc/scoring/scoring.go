package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

const (
	// maxImposterScore bounds the imposter's earnings in both directions.
	maxImposterScore = 5

	catchPoints      = 2
	catchAndWord     = 4
	notPlacedVoter   = 1
	notPlacedPenalty = -8
)

// ImposterScore converts the number of players who caught the imposter (wins)
// and who did not (losses) into the imposter's points, from -5 when everyone
// caught them to +5 when nobody did.
func ImposterScore(wins, losses int) int {
	if wins == losses {
		return 0
	}
	ratio := float64(losses) / float64(losses+wins)
	return int(math.Round(2*maxImposterScore*ratio)) - maxImposterScore
}

// Result is the outcome of scoring one game.
type Result struct {
	Awards []models.Award // Sorted by points, highest first
	Wins   int
	Losses int
	Placed bool
}

// Resolve scores a game from its complete vote set. Every user appears at
// most once in the awards.
func Resolve(game *models.Game, votes []models.Vote) Result {
	res := Result{Placed: game.Placed()}
	earned := make(map[string]int, len(votes)+1)

	if !res.Placed {
		for _, v := range votes {
			if v.VoterID == game.ImposterID {
				continue
			}
			earned[v.VoterID] = notPlacedVoter
		}
		earned[game.ImposterID] = notPlacedPenalty
		res.Awards = sorted(earned)
		return res
	}

	for _, v := range votes {
		// The imposter's own vote only serves to mislead the others.
		if v.VoterID == game.ImposterID {
			continue
		}
		if v.AccusedID == game.ImposterID {
			points := catchPoints
			if v.Word != "" && strings.ToLower(v.Word) == strings.ToLower(game.Word) {
				points = catchAndWord
			}
			earned[v.VoterID] = points
			res.Wins++
		} else {
			earned[v.VoterID] = 0
			res.Losses++
		}
	}

	losses := res.Losses
	if game.Malus {
		losses = 0
	}
	earned[game.ImposterID] = ImposterScore(res.Wins, losses)
	res.Awards = sorted(earned)
	return res
}

func sorted(earned map[string]int) []models.Award {
	awards := make([]models.Award, 0, len(earned))
	for user, points := range earned {
		awards = append(awards, models.Award{UserID: user, Points: points})
	}
	sort.Slice(awards, func(i, j int) bool {
		if awards[i].Points != awards[j].Points {
			return awards[i].Points > awards[j].Points
		}
		return awards[i].UserID < awards[j].UserID
	})
	return awards
}
