package models

type Vote struct {
	GameID    int64  `json:"game"`
	VoterID   string `json:"voter"`
	AccusedID string `json:"voted"`
	Word      string `json:"word,omitempty"` // Guessed word, empty when none
}

// Award is the point delta a user earns from a resolved game.
type Award struct {
	UserID string `json:"user"`
	Points int    `json:"points"`
}

// Standing is one row of a group's scoreboard.
type Standing struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user"`
	Score  int    `json:"score"`
}
