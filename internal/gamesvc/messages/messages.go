package messages

import (
	"regexp"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

type Key string

// Direct messages
const (
	DMImposter        Key = "dm.sus"
	DMCrew            Key = "dm.notSus"
	DMVoided          Key = "dm.cancelled"
	DMPlaced          Key = "dm.placed"
	DMPlaceDuringVote Key = "dm.placeDuringVote"
)

// Channel announcements
const (
	GameLaunch       Key = "announcements.gameLaunch"
	VoteOpen         Key = "announcements.voteOpen"
	GameCancelled    Key = "announcements.gameCancelled"
	Voted            Key = "announcements.voted"
	VoteEnd          Key = "announcements.voteEnd"
	RevealNormal     Key = "announcements.reveal.normal"
	RevealMalus      Key = "announcements.reveal.malus"
	RevealNotPlaced  Key = "announcements.reveal.notPlaced"
	PointsEarned     Key = "announcements.pointsEarned"
	ScoreboardTitle  Key = "scoreboard.title"
	ScoreboardRow    Key = "scoreboard.row"
	GamesTitle       Key = "games.title"
	GamesRow         Key = "games.row"
	GamesFooter      Key = "games.footer"
	GamesEmpty       Key = "games.noGame"
	GameDetails      Key = "game.details"
	RemainingVoters  Key = "remaining.voters"
	RemainingNone    Key = "remaining.none"
	VoteRegistered   Key = "ephemeral.voteRegistered"
	VotesClosed      Key = "ephemeral.votesClosed"
	RoleSet          Key = "ephemeral.roleSet"
	LanguageSet      Key = "ephemeral.langSet"
	PlacementNoticed Key = "ephemeral.placementNoticed"
)

// Rejections
const (
	MissingRole      Key = "ephemeral.missingRole"
	AlreadyInGame    Key = "ephemeral.alreadyInGame"
	NotEnoughPlayers Key = "ephemeral.notEnoughPlayers"
	TooManyPlayers   Key = "ephemeral.tooManyPlayers"
	DMError          Key = "ephemeral.dmError"
	NotInGame        Key = "ephemeral.notInGame"
	NotInVote        Key = "ephemeral.notInVote"
	AlreadyInVote    Key = "ephemeral.alreadyInVote"
	NotHost          Key = "ephemeral.notHost"
	AlreadyVoted     Key = "ephemeral.alreadyVoted"
	NoScores         Key = "ephemeral.noScores"
	UnknownGame      Key = "ephemeral.unknownGame"
	UnknownLanguage  Key = "ephemeral.unknownLanguage"
	SystemError      Key = "ephemeral.systemError"
)

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Format renders key in lang, substituting {name} placeholders from vars.
// Placeholders without a value are left as they are. Unknown languages and
// keys missing from a translation fall back to English.
func Format(lang models.Language, key Key, vars map[string]string) string {
	tpl, ok := catalog[lang][key]
	if !ok {
		tpl, ok = catalog[models.DefaultLanguage][key]
	}
	if !ok {
		return string(key)
	}
	if len(vars) == 0 {
		return tpl
	}
	return placeholder.ReplaceAllStringFunc(tpl, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok && v != "" {
			return v
		}
		return m
	})
}

// ForError returns the rejection message matching err. Errors that are
// not game-rule rejections get the generic system error text.
func ForError(lang models.Language, err error, vars map[string]string) string {
	key, ok := rejections[models.Reason(err)]
	if !ok {
		key = SystemError
	}
	return Format(lang, key, vars)
}

var rejections = map[string]Key{
	"no-eligible-role":    MissingRole,
	"already-active":      AlreadyInGame,
	"too-few-players":     NotEnoughPlayers,
	"too-many-players":    TooManyPlayers,
	"notification-failed": DMError,
	"not-host":            NotHost,
	"already-voting":      AlreadyInVote,
	"no-active-game":      NotInGame,
	"already-voted":       AlreadyVoted,
	"not-voting":          NotInVote,
	"game-not-found":      UnknownGame,
	"unknown-language":    UnknownLanguage,
}

// Mention renders a user mention the chat gateway expands.
func Mention(userID string) string { return "<@" + userID + ">" }

// RoleMention renders a role mention the chat gateway expands.
func RoleMention(roleID string) string { return "<@&" + roleID + ">" }
