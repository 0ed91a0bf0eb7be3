package models

import (
	"time"
)

type GameStatus string

const (
	StatusPlaying   GameStatus = "playing"
	StatusVoting    GameStatus = "voting"
	StatusEnded     GameStatus = "ended"
	StatusCancelled GameStatus = "cancelled"
)

// Terminal reports whether no further transition can leave s.
func (s GameStatus) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// CanTransition reports whether s -> next is one of the legal edges:
// playing -> voting -> ended, or playing|voting -> cancelled.
func (s GameStatus) CanTransition(next GameStatus) bool {
	switch s {
	case StatusPlaying:
		return next == StatusVoting || next == StatusCancelled
	case StatusVoting:
		return next == StatusEnded || next == StatusCancelled
	default:
		return false
	}
}

// Sources returns every status from which s may be reached.
func (s GameStatus) Sources() []GameStatus {
	var from []GameStatus
	for _, prev := range []GameStatus{StatusPlaying, StatusVoting, StatusEnded, StatusCancelled} {
		if prev.CanTransition(s) {
			from = append(from, prev)
		}
	}
	return from
}

type Game struct {
	ID         int64      `json:"id"`          // Assigned by the store on creation
	GuildID    string     `json:"guild"`       // Owning group
	ChannelID  string     `json:"channel"`     // Announcement channel
	HostID     string     `json:"host"`        // User who started the game
	ImposterID string     `json:"sus"`         // User who has to place the word
	Word       string     `json:"word"`        // Lowercased secret word
	Link       string     `json:"link"`        // Message where the word was placed, empty until placed
	Malus      bool       `json:"malus"`       // Raised when voting opened before placement
	Status     GameStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Placed reports whether the imposter placed the word.
func (g *Game) Placed() bool {
	return g.Link != ""
}

// AcceptsVotes reports whether votes may be recorded.
func (g *Game) AcceptsVotes() bool {
	return g.Status == StatusVoting
}

// AcceptsPlacement reports whether a placement may still be recorded.
func (g *Game) AcceptsPlacement() bool {
	return (g.Status == StatusPlaying || g.Status == StatusVoting) && g.Link == ""
}

// NewGame carries what a host start needs to persist a game.
type NewGame struct {
	GuildID    string
	ChannelID  string
	HostID     string
	ImposterID string
	Word       string
}

// GamesPage is one page of a group's finished games.
type GamesPage struct {
	Games []*Game `json:"games"`
	Page  int     `json:"page"`
	Pages int     `json:"pages"`
	Total int     `json:"total"`
}
