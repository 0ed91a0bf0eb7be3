package comm

import (
	"encoding/json"
	"time"

	"github.com/avvvet/sus-services/internal/gamesvc/models"
)

// WSMessage is the envelope exchanged with the chat gateway.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "start", "vote"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"` // Correlation id set by the gateway
}

// Reply answers a command. Reason is empty when OK is true.
type Reply struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service id
	Timestamp time.Time `json:"timestamp"`
}

// Command payloads

type GroupCreate struct {
	GroupID string `json:"group"`
	Locale  string `json:"locale"`
}

type StartRequest struct {
	GroupID   string `json:"group"`
	HostID    string `json:"host"`
	ChannelID string `json:"channel"`
}

type VoteRequest struct {
	GroupID   string `json:"group"`
	VoterID   string `json:"voter"`
	AccusedID string `json:"accused"`
	Word      string `json:"word,omitempty"`
}

// HostRequest carries host commands: open-votes, close-votes, cancel.
type HostRequest struct {
	GroupID string `json:"group"`
	UserID  string `json:"user"`
}

type GroupRequest struct {
	GroupID string `json:"group"`
}

type SetRoleRequest struct {
	GroupID string `json:"group"`
	RoleID  string `json:"role"`
}

type SetLanguageRequest struct {
	GroupID  string `json:"group"`
	Language string `json:"language"`
}

type GamesRequest struct {
	GroupID string `json:"group"`
	Page    int    `json:"page"`
}

type GameRequest struct {
	GroupID string `json:"group"`
	GameID  int64  `json:"id"`
}

type ChatMessage = models.ChatMessage

// Reply payloads

// GameRef identifies a game without revealing its word or imposter.
type GameRef struct {
	ID     int64             `json:"id"`
	Status models.GameStatus `json:"status"`
}

type PlacementData struct {
	Placed bool `json:"placed"`
}

type VoteData struct {
	Count    int  `json:"count"`
	Players  int  `json:"players"`
	Resolved bool `json:"resolved"`
}

type RemainingData struct {
	Voters []string `json:"voters"`
}

type ScoreboardData struct {
	Standings []models.Standing `json:"standings"`
}

// Collaborator requests

// RolesRequest asks the gateway for the members of a role.
type RolesRequest struct {
	GroupID string `json:"group"`
	RoleID  string `json:"role"`
}

type RolesReply struct {
	Found   bool     `json:"found"`
	Members []string `json:"members"`
	Error   string   `json:"error,omitempty"`
}

// NotifyRequest asks the gateway to send or edit a message.
type NotifyRequest struct {
	Action    string `json:"action"` // "send" or "edit"
	Kind      string `json:"kind"`   // "user" or "channel"
	Target    string `json:"target"`
	MessageID string `json:"message_id,omitempty"`
	Text      string `json:"text"`
}

type NotifyReply struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
