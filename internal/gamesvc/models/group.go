package models

import "strings"

const (
	MinPlayers = 3
	MaxPlayers = 15
)

// Language is an ISO 639-1 code the bot has messages for.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
	LanguageKorean  Language = "ko"

	DefaultLanguage = LanguageEnglish
)

var Languages = []Language{LanguageFrench, LanguageEnglish, LanguageKorean}

// ParseLanguage accepts plain codes as well as platform locales such as en-US.
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	for _, l := range Languages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Group holds the settings of one chat group.
type Group struct {
	ID       string   `json:"id"`
	Language Language `json:"language"`
	GameID   *int64   `json:"game,omitempty"` // Active game, if any
	RoleID   string   `json:"role,omitempty"` // Player role, empty when unset
}

func (g *Group) HasActiveGame() bool {
	return g.GameID != nil
}

// Clone returns a copy that shares nothing with g.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	c := *g
	if g.GameID != nil {
		id := *g.GameID
		c.GameID = &id
	}
	return &c
}
