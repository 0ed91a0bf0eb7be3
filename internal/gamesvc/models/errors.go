package models

import (
	"errors"
	"fmt"
)

// Rejections. These are game-rule outcomes the command layer renders
// as a short message, never system failures.
var (
	ErrNoEligibleRole     = errors.New("no player role configured or role not found")
	ErrAlreadyActive      = errors.New("a game is already running in this group")
	ErrTooFewPlayers      = errors.New("not enough players in the player role")
	ErrTooManyPlayers     = errors.New("too many players in the player role")
	ErrNotificationFailed = errors.New("a participant could not be notified")
	ErrNotHost            = errors.New("user is not the host of the game")
	ErrAlreadyVoting      = errors.New("votes are already open")
	ErrNoActiveGame       = errors.New("no game in progress")
	ErrAlreadyVoted       = errors.New("user already voted")
	ErrNotVoting          = errors.New("votes are not open")

	ErrIllegalTransition = errors.New("illegal game status transition")
	ErrGameNotFound      = errors.New("game not found")
	ErrUnknownLanguage   = errors.New("unsupported language")
)

// ErrStore marks failures of the durable store that survived the
// reconnect-and-retry policy.
var ErrStore = errors.New("store failure")

// StoreError wraps a durable store failure with the operation name.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// AlreadyVotedError carries the vote already on record.
type AlreadyVotedError struct {
	Existing Vote
}

func (e *AlreadyVotedError) Error() string {
	return fmt.Sprintf("user %s already voted for %s", e.Existing.VoterID, e.Existing.AccusedID)
}

func (e *AlreadyVotedError) Is(target error) bool { return target == ErrAlreadyVoted }

// NotificationError names the participant a start-up message could not reach.
type NotificationError struct {
	UserID string
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.UserID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

func (e *NotificationError) Is(target error) bool { return target == ErrNotificationFailed }

// Reason returns the rejection code sent back to the chat gateway.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoEligibleRole):
		return "no-eligible-role"
	case errors.Is(err, ErrAlreadyActive):
		return "already-active"
	case errors.Is(err, ErrTooFewPlayers):
		return "too-few-players"
	case errors.Is(err, ErrTooManyPlayers):
		return "too-many-players"
	case errors.Is(err, ErrNotificationFailed):
		return "notification-failed"
	case errors.Is(err, ErrNotHost):
		return "not-host"
	case errors.Is(err, ErrAlreadyVoting):
		return "already-voting"
	case errors.Is(err, ErrNoActiveGame):
		return "no-active-game"
	case errors.Is(err, ErrAlreadyVoted):
		return "already-voted"
	case errors.Is(err, ErrNotVoting):
		return "not-voting"
	case errors.Is(err, ErrGameNotFound):
		return "game-not-found"
	case errors.Is(err, ErrUnknownLanguage):
		return "unknown-language"
	default:
		return "system-error"
	}
}
